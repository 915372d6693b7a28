package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/csheth/souljournal/internal/journal"
)

const maxPromptChars = 20_000

const systemPrompt = "You are a gentle journaling companion. You read one journal entry and reply with JSON only."

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func buildAnalysisPrompt(entry string) string {
	var b strings.Builder
	b.WriteString("Read the journal entry below and reply with a single JSON object with exactly these keys:\n")
	b.WriteString(`- "sentiment": one of "POSITIVE", "NEGATIVE", "NEUTRAL", "MIXED"` + "\n")
	b.WriteString(`- "summary": one or two warm sentences reflecting the entry back to the writer` + "\n")
	b.WriteString(`- "prompt": one open question inviting the writer to reflect further` + "\n")
	b.WriteString(`- "key_phrases": up to five short phrases taken from the entry` + "\n")
	b.WriteString("Do not add commentary outside the JSON object.\n\n")
	b.WriteString("Journal entry:\n")
	b.WriteString(clipText(entry, maxPromptChars))
	return b.String()
}

// parseAnalysis accepts the bare JSON object or one wrapped in prose or code
// fences, which chat models tend to add.
func parseAnalysis(raw string) (journal.AnalysisResult, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return journal.AnalysisResult{}, fmt.Errorf("empty analysis response")
	}
	candidates := []string{raw}
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			candidates = append(candidates, raw[start:end+1])
		}
	}
	for _, candidate := range candidates {
		var result journal.AnalysisResult
		if err := json.Unmarshal([]byte(candidate), &result); err != nil {
			continue
		}
		result.Sentiment = journal.Sentiment(strings.ToUpper(strings.TrimSpace(string(result.Sentiment))))
		if result.Sentiment == "" {
			continue
		}
		result.Summary = strings.TrimSpace(result.Summary)
		result.Prompt = strings.TrimSpace(result.Prompt)
		result.KeyPhrases = sanitizePhrases(result.KeyPhrases)
		return result, nil
	}
	return journal.AnalysisResult{}, fmt.Errorf("unable to parse analysis payload")
}

func sanitizePhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	seen := map[string]bool{}
	for _, phrase := range phrases {
		phrase = strings.TrimSpace(phrase)
		key := strings.ToLower(phrase)
		if phrase == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, phrase)
	}
	return out
}
