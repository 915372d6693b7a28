// Package analysis talks to the service that classifies a journal entry.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/csheth/souljournal/internal/journal"
)

const (
	BackendHTTP   = "http"
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	// Local models routinely need more than a minute on a cold start.
	defaultModelTimeout = 3 * time.Minute
	defaultOllamaHost   = "http://localhost:11434"
	defaultOllamaModel  = "ministral-3:latest"
	defaultOpenAIModel  = "gpt-4o-mini"
)

// ErrNotConfigured is returned when the selected backend lacks its endpoint
// or credentials.
var ErrNotConfigured = errors.New("analysis endpoint not configured")

// Analyzer classifies one journal entry.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (journal.AnalysisResult, error)
	Name() string
}

// Config describes how to build an Analyzer.
type Config struct {
	Backend    string
	Endpoint   string
	Timeout    time.Duration
	HTTPClient *http.Client

	OllamaHost  string
	OllamaModel string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
}

// New builds the analyzer for cfg.Backend.
func New(cfg Config) (Analyzer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendHTTP:
		endpoint := strings.TrimSpace(cfg.Endpoint)
		if endpoint == "" {
			return nil, ErrNotConfigured
		}
		return &httpAnalyzer{
			endpoint: endpoint,
			client:   pickHTTPClient(cfg.HTTPClient, cfg.Timeout, defaultHTTPTimeout),
		}, nil
	case BackendOllama:
		host := cfg.OllamaHost
		if host == "" {
			if env := os.Getenv("OLLAMA_HOST"); env != "" {
				host = env
			} else {
				host = defaultOllamaHost
			}
		}
		model := cfg.OllamaModel
		if model == "" {
			if env := os.Getenv("OLLAMA_MODEL"); env != "" {
				model = env
			} else {
				model = defaultOllamaModel
			}
		}
		return &ollamaAnalyzer{
			host:   strings.TrimRight(host, "/"),
			model:  model,
			client: pickHTTPClient(cfg.HTTPClient, cfg.Timeout, defaultModelTimeout),
		}, nil
	case BackendOpenAI:
		key := cfg.OpenAIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openai backend: %w (missing API key)", ErrNotConfigured)
		}
		return newOpenAIAnalyzer(key, cfg.OpenAIBaseURL, cfg.OpenAIModel,
			pickHTTPClient(cfg.HTTPClient, cfg.Timeout, defaultModelTimeout)), nil
	default:
		return nil, fmt.Errorf("unknown analysis backend %q", cfg.Backend)
	}
}

// EffectiveTimeout is the per-request timeout New applies: the configured
// value, or the backend default when Timeout is zero.
func (c Config) EffectiveTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case BackendOllama, BackendOpenAI:
		return defaultModelTimeout
	default:
		return defaultHTTPTimeout
	}
}

func pickHTTPClient(custom *http.Client, timeout, fallback time.Duration) *http.Client {
	if custom != nil {
		return custom
	}
	if timeout <= 0 {
		timeout = fallback
	}
	return &http.Client{Timeout: timeout}
}

// Unavailable returns an Analyzer that fails every call with cause. It lets
// the client start (and show history) when no backend is configured.
func Unavailable(cause error) Analyzer {
	return unavailable{cause: cause}
}

type unavailable struct {
	cause error
}

func (u unavailable) Analyze(context.Context, string) (journal.AnalysisResult, error) {
	return journal.AnalysisResult{}, u.cause
}

func (u unavailable) Name() string { return "unavailable" }
