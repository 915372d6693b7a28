// Package journal holds the submission-and-history state machine behind the
// journaling client: draft validation, rate limiting, single-flight
// submission, and the bounded history persisted to a key-value store.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/csheth/souljournal/internal/logging"
	"github.com/csheth/souljournal/internal/storage"
)

const (
	// MaxDraftLength caps the draft, counted in Unicode code points.
	MaxDraftLength = 5000
	// MaxHistory bounds the persisted history.
	MaxHistory = 10
	// RateLimitInterval is the minimum gap between successful submissions.
	RateLimitInterval = 10 * time.Second
	// HistoryKey names the storage slot holding the history.
	HistoryKey = "journal_entries"

	previewLength = 50
)

// Analyzer performs the outbound analysis call for one draft.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (AnalysisResult, error)
}

// Store is the key-value slot storage the history is persisted into.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
}

// Config wires the controller's collaborators.
type Config struct {
	Analyzer Analyzer
	Store    Store
	// Now defaults to time.Now.
	Now func() time.Time
}

// State is a point-in-time copy of everything the presentation layer renders.
type State struct {
	Draft       string
	Loading     bool
	Error       string
	Result      *AnalysisResult
	History     []HistoryRecord
	LastSuccess time.Time
}

// Controller owns the draft, the transient request state and the history.
// It is safe for concurrent use; at most one submission runs at a time.
type Controller struct {
	analyzer Analyzer
	store    Store
	now      func() time.Time

	mu          sync.Mutex
	draft       string
	loading     bool
	errMessage  string
	result      *AnalysisResult
	history     []HistoryRecord
	lastSuccess time.Time
}

// New builds a controller and hydrates the history from the store once.
func New(cfg Config) (*Controller, error) {
	if cfg.Analyzer == nil {
		return nil, errors.New("journal: analyzer is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("journal: store is required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		analyzer: cfg.Analyzer,
		store:    cfg.Store,
		now:      now,
		history:  LoadHistory(cfg.Store),
	}, nil
}

// LoadHistory reads the persisted history. A missing or unreadable slot
// yields an empty history rather than an error.
func LoadHistory(store Store) []HistoryRecord {
	raw, err := store.Get(HistoryKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logging.Warn("history unavailable, starting empty", "error", err)
		}
		return nil
	}
	var records []HistoryRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		logging.Warn("history is malformed, starting empty", "error", err)
		return nil
	}
	if len(records) > MaxHistory {
		records = records[:MaxHistory]
	}
	return records
}

// SetDraft replaces the draft if it fits within MaxDraftLength. An
// over-long draft is rejected with ErrTooLong and leaves the draft as it was.
func (c *Controller) SetDraft(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if utf8.RuneCountInString(text) > MaxDraftLength {
		c.errMessage = UserMessage(ErrTooLong)
		return ErrTooLong
	}
	c.draft = text
	c.errMessage = ""
	return nil
}

// ClearDraft empties the draft and, like any accepted edit, clears the error.
func (c *Controller) ClearDraft() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = ""
	c.errMessage = ""
}

// Draft returns the current draft.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// CheckSubmit evaluates the submission preconditions without issuing a
// request. A failed check is surfaced in State().Error exactly as a rejected
// Submit would be.
func (c *Controller) CheckSubmit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		return ErrInFlight
	}
	if err := c.preconditionsLocked(c.now()); err != nil {
		c.errMessage = UserMessage(err)
		return err
	}
	return nil
}

// Submit sends the draft for analysis. Preconditions are checked in order:
// no submission in flight, non-blank draft, rate limit elapsed. On success
// the result is prepended to the history, which is persisted and truncated
// to MaxHistory. On failure the draft, history and rate-limit clock are left
// untouched.
func (c *Controller) Submit(ctx context.Context) (AnalysisResult, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return AnalysisResult{}, ErrInFlight
	}
	if err := c.preconditionsLocked(c.now()); err != nil {
		c.errMessage = UserMessage(err)
		c.mu.Unlock()
		return AnalysisResult{}, err
	}
	text := c.draft
	c.loading = true
	c.errMessage = ""
	c.mu.Unlock()

	result, err := c.analyzer.Analyze(ctx, text)
	if err == nil {
		err = c.commit(text, result)
	}
	if err != nil {
		c.mu.Lock()
		c.loading = false
		c.result = nil
		c.errMessage = UserMessage(err)
		c.mu.Unlock()
		logging.Warn("submission failed", "error", err)
		return AnalysisResult{}, err
	}
	return result.clone(), nil
}

func (c *Controller) commit(text string, result AnalysisResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	updated := make([]HistoryRecord, 0, MaxHistory)
	updated = append(updated, newHistoryRecord(text, result, now))
	updated = append(updated, c.history...)
	if len(updated) > MaxHistory {
		updated = updated[:MaxHistory]
	}

	payload, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := c.store.Set(HistoryKey, payload); err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	stored := result.clone()
	c.history = updated
	c.lastSuccess = now
	c.result = &stored
	c.errMessage = ""
	c.loading = false
	logging.Debug("submission stored", "sentiment", result.Sentiment, "history", len(updated))
	return nil
}

func (c *Controller) preconditionsLocked(now time.Time) error {
	if strings.TrimSpace(c.draft) == "" {
		return ErrEmptyInput
	}
	if c.lastSuccess.IsZero() {
		return nil
	}
	if elapsed := now.Sub(c.lastSuccess); elapsed < RateLimitInterval {
		return &RateLimitedError{RetryAfter: RateLimitInterval - elapsed}
	}
	return nil
}

// History returns a copy of the history, newest first.
func (c *Controller) History() []HistoryRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyHistory(c.history)
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{
		Draft:       c.draft,
		Loading:     c.loading,
		Error:       c.errMessage,
		History:     copyHistory(c.history),
		LastSuccess: c.lastSuccess,
	}
	if c.result != nil {
		result := c.result.clone()
		state.Result = &result
	}
	return state
}

func copyHistory(records []HistoryRecord) []HistoryRecord {
	if len(records) == 0 {
		return nil
	}
	out := make([]HistoryRecord, len(records))
	for i, record := range records {
		record.KeyPhrases = append([]string(nil), record.KeyPhrases...)
		out[i] = record
	}
	return out
}
