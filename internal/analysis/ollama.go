package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/csheth/souljournal/internal/journal"
)

type ollamaAnalyzer struct {
	host   string
	model  string
	client *http.Client
}

func (a *ollamaAnalyzer) Name() string {
	return fmt.Sprintf("Ollama (%s)", a.model)
}

func (a *ollamaAnalyzer) Analyze(ctx context.Context, text string) (journal.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return journal.AnalysisResult{}, fmt.Errorf("entry empty; nothing to analyze")
	}
	raw, err := a.generate(ctx, buildAnalysisPrompt(text))
	if err != nil {
		return journal.AnalysisResult{}, err
	}
	return parseAnalysis(raw)
}

func (a *ollamaAnalyzer) generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  a.model,
		"system": systemPrompt,
		"prompt": prompt,
		"format": "json",
		"stream": false,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/api/generate", bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", &journal.RequestFailedError{StatusCode: resp.StatusCode}
	}

	var parsed struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if parsed.Response == "" {
		return "", fmt.Errorf("ollama returned an empty response")
	}
	return strings.TrimSpace(parsed.Response), nil
}
