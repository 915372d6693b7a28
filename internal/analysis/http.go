package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/csheth/souljournal/internal/journal"
	"github.com/csheth/souljournal/internal/logging"
)

// httpAnalyzer speaks the journal analysis contract: POST {"text": ...},
// reply with the AnalysisResult JSON object.
type httpAnalyzer struct {
	endpoint string
	client   *http.Client
}

const maxResponseBytes = 1 << 20

type analyzeRequest struct {
	Text string `json:"text"`
}

func (a *httpAnalyzer) Name() string {
	if parsed, err := url.Parse(a.endpoint); err == nil && parsed.Host != "" {
		return fmt.Sprintf("HTTP (%s)", parsed.Host)
	}
	return "HTTP"
}

func (a *httpAnalyzer) Analyze(ctx context.Context, text string) (journal.AnalysisResult, error) {
	buf, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return journal.AnalysisResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(buf))
	if err != nil {
		return journal.AnalysisResult{}, err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := a.client.Do(req)
	if err != nil {
		return journal.AnalysisResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logging.Warn("analysis request rejected", "request_id", requestID, "status", resp.Status, "body", string(body))
		return journal.AnalysisResult{}, &journal.RequestFailedError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return journal.AnalysisResult{}, fmt.Errorf("read analysis response: %w", err)
	}
	// Unmarshal rejects anything after the object, unlike a streaming Decoder.
	var result journal.AnalysisResult
	if err := json.Unmarshal(body, &result); err != nil {
		return journal.AnalysisResult{}, fmt.Errorf("decode analysis response: %w", err)
	}
	logging.Debug("analysis received", "request_id", requestID, "sentiment", result.Sentiment)
	return result, nil
}
