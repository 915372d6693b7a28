package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/csheth/souljournal/internal/journal"
)

type openAIAnalyzer struct {
	client *openai.Client
	model  string
}

func newOpenAIAnalyzer(apiKey, baseURL, model string, httpClient *http.Client) *openAIAnalyzer {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}
	clientConfig.HTTPClient = httpClient
	if model == "" {
		model = defaultOpenAIModel
	}
	return &openAIAnalyzer{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

func (a *openAIAnalyzer) Name() string {
	return fmt.Sprintf("OpenAI (%s)", a.model)
}

func (a *openAIAnalyzer) Analyze(ctx context.Context, text string) (journal.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return journal.AnalysisResult{}, fmt.Errorf("entry empty; nothing to analyze")
	}
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildAnalysisPrompt(text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.3,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
			return journal.AnalysisResult{}, &journal.RequestFailedError{StatusCode: apiErr.HTTPStatusCode}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
			return journal.AnalysisResult{}, &journal.RequestFailedError{StatusCode: reqErr.HTTPStatusCode}
		}
		return journal.AnalysisResult{}, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return journal.AnalysisResult{}, fmt.Errorf("openai returned no choices")
	}
	return parseAnalysis(resp.Choices[0].Message.Content)
}
