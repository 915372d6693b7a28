package journal

import (
	"strings"
	"time"
)

// Sentiment is the mood category returned by the analysis service.
type Sentiment string

const (
	Positive Sentiment = "POSITIVE"
	Negative Sentiment = "NEGATIVE"
	Neutral  Sentiment = "NEUTRAL"
	Mixed    Sentiment = "MIXED"
)

// Mood carries the presentation hints attached to a sentiment.
type Mood struct {
	Emoji string
	Color string
}

var moods = map[Sentiment]Mood{
	Positive: {Emoji: "✨", Color: "#d4a574"},
	Negative: {Emoji: "🍂", Color: "#8b4513"},
	Neutral:  {Emoji: "🌱", Color: "#9c7a5b"},
	Mixed:    {Emoji: "🌿", Color: "#b8855f"},
}

// Mood resolves the emoji and color for s. Unknown sentiments report false
// and are rendered without decoration.
func (s Sentiment) Mood() (Mood, bool) {
	mood, ok := moods[s]
	return mood, ok
}

// Label is the lowercase form shown next to the mood emoji.
func (s Sentiment) Label() string {
	return strings.ToLower(string(s))
}

// AnalysisResult is one successful response from the analysis service.
type AnalysisResult struct {
	Sentiment  Sentiment `json:"sentiment"`
	Summary    string    `json:"summary"`
	Prompt     string    `json:"prompt"`
	KeyPhrases []string  `json:"key_phrases"`
}

func (r AnalysisResult) clone() AnalysisResult {
	r.KeyPhrases = append([]string(nil), r.KeyPhrases...)
	return r
}

// HistoryRecord is a persisted past submission together with its analysis.
type HistoryRecord struct {
	Entry      string    `json:"entry"`
	Sentiment  Sentiment `json:"sentiment"`
	Summary    string    `json:"summary"`
	Prompt     string    `json:"prompt"`
	KeyPhrases []string  `json:"key_phrases"`
	Timestamp  string    `json:"timestamp"`
}

// timestampLayout is millisecond-precision UTC ISO 8601.
const timestampLayout = "2006-01-02T15:04:05.000Z"

func newHistoryRecord(entry string, result AnalysisResult, at time.Time) HistoryRecord {
	return HistoryRecord{
		Entry:      entry,
		Sentiment:  result.Sentiment,
		Summary:    result.Summary,
		Prompt:     result.Prompt,
		KeyPhrases: append([]string(nil), result.KeyPhrases...),
		Timestamp:  at.UTC().Format(timestampLayout),
	}
}

// Time parses the record timestamp. Records written by other clients may use
// any RFC 3339 variant.
func (r HistoryRecord) Time() (time.Time, bool) {
	parsed, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// Preview shortens an entry for list display. The stored entry is never
// truncated.
func Preview(entry string) string {
	runes := []rune(entry)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}
