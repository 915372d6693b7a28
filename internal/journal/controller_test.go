package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/csheth/souljournal/internal/storage"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   []string
	result  AnalysisResult
	err     error
	release chan struct{}
	started chan struct{}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (AnalysisResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	release, started := f.release, f.started
	result, err := f.result, f.err
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if release != nil {
		<-release
	}
	return result, err
}

func (f *fakeAnalyzer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type failingStore struct {
	storage.Store
	err error
}

func (s failingStore) Set(string, []byte) error { return s.err }

var wonderful = AnalysisResult{
	Sentiment:  Positive,
	Summary:    "A bright, grateful day.",
	Prompt:     "What made it wonderful?",
	KeyPhrases: []string{"wonderful day"},
}

func newController(t *testing.T, analyzer Analyzer, store Store, clock *fakeClock) *Controller {
	t.Helper()
	ctrl, err := New(Config{Analyzer: analyzer, Store: store, Now: clock.Now})
	require.NoError(t, err)
	return ctrl
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{Store: storage.NewMemoryStore()})
	require.Error(t, err)
	_, err = New(Config{Analyzer: &fakeAnalyzer{}})
	require.Error(t, err)
}

func TestSetDraftEnforcesMaximumLength(t *testing.T) {
	ctrl := newController(t, &fakeAnalyzer{}, storage.NewMemoryStore(), newFakeClock())

	atLimit := strings.Repeat("a", MaxDraftLength)
	require.NoError(t, ctrl.SetDraft(atLimit))
	require.Equal(t, atLimit, ctrl.Draft())

	err := ctrl.SetDraft(atLimit + "b")
	require.ErrorIs(t, err, ErrTooLong)
	require.Equal(t, atLimit, ctrl.Draft())
	require.Equal(t, "Max 5000 characters.", ctrl.State().Error)

	require.NoError(t, ctrl.SetDraft("shorter"))
	require.Empty(t, ctrl.State().Error)
}

func TestSetDraftCountsCodePoints(t *testing.T) {
	ctrl := newController(t, &fakeAnalyzer{}, storage.NewMemoryStore(), newFakeClock())
	require.NoError(t, ctrl.SetDraft(strings.Repeat("é", MaxDraftLength)))
	require.ErrorIs(t, ctrl.SetDraft(strings.Repeat("é", MaxDraftLength+1)), ErrTooLong)
}

func TestSubmitRejectsBlankDraftWithoutNetwork(t *testing.T) {
	for _, draft := range []string{"", "   ", "\n\t "} {
		analyzer := &fakeAnalyzer{result: wonderful}
		ctrl := newController(t, analyzer, storage.NewMemoryStore(), newFakeClock())
		require.NoError(t, ctrl.SetDraft(draft))

		_, err := ctrl.Submit(context.Background())
		require.ErrorIs(t, err, ErrEmptyInput)
		require.Zero(t, analyzer.Calls())

		state := ctrl.State()
		require.False(t, state.Loading)
		require.Equal(t, "Please write something first.", state.Error)
	}
}

func TestSubmitSuccessStoresResultAndHistory(t *testing.T) {
	analyzer := &fakeAnalyzer{result: wonderful}
	store := storage.NewMemoryStore()
	clock := newFakeClock()
	ctrl := newController(t, analyzer, store, clock)
	require.NoError(t, ctrl.SetDraft("I had a wonderful day"))

	got, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, wonderful, got)
	require.Equal(t, []string{"I had a wonderful day"}, analyzer.calls)

	state := ctrl.State()
	require.False(t, state.Loading)
	require.Empty(t, state.Error)
	require.NotNil(t, state.Result)
	require.Equal(t, wonderful, *state.Result)
	require.Equal(t, "I had a wonderful day", state.Draft)
	require.Equal(t, clock.Now(), state.LastSuccess)

	require.Len(t, state.History, 1)
	first := state.History[0]
	require.Equal(t, "I had a wonderful day", first.Entry)
	require.Equal(t, Positive, first.Sentiment)
	require.Equal(t, wonderful.Summary, first.Summary)
	require.Equal(t, wonderful.Prompt, first.Prompt)
	require.Equal(t, []string{"wonderful day"}, first.KeyPhrases)
	require.Equal(t, "2024-03-09T18:30:00.000Z", first.Timestamp)

	raw, err := store.Get(HistoryKey)
	require.NoError(t, err)
	var persisted []HistoryRecord
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.Equal(t, state.History, persisted)
}

func TestSubmitTooSoonIsRateLimited(t *testing.T) {
	analyzer := &fakeAnalyzer{result: wonderful}
	clock := newFakeClock()
	ctrl := newController(t, analyzer, storage.NewMemoryStore(), clock)
	require.NoError(t, ctrl.SetDraft("first"))
	_, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, ctrl.SetDraft("second"))
	_, err = ctrl.Submit(context.Background())
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	require.EqualValues(t, 10000, limited.RetryAfterMillis())
	require.Equal(t, "Wait 10s before submitting again.", ctrl.State().Error)
	require.Equal(t, 1, analyzer.Calls())

	clock.Advance(3*time.Second + 250*time.Millisecond)
	_, err = ctrl.Submit(context.Background())
	require.ErrorAs(t, err, &limited)
	require.EqualValues(t, 6750, limited.RetryAfterMillis())
	require.Equal(t, "Wait 7s before submitting again.", ctrl.State().Error)
	require.False(t, ctrl.State().Loading)

	clock.Advance(6750 * time.Millisecond)
	_, err = ctrl.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, analyzer.Calls())
}

func TestRetryAfterRoundsUp(t *testing.T) {
	err := &RateLimitedError{RetryAfter: 1500*time.Microsecond + time.Nanosecond}
	require.EqualValues(t, 2, err.RetryAfterMillis())
	require.EqualValues(t, 1, err.RetryAfterSeconds())
}

func TestFailedSubmissionLeavesStateUntouched(t *testing.T) {
	analyzer := &fakeAnalyzer{result: wonderful}
	clock := newFakeClock()
	ctrl := newController(t, analyzer, storage.NewMemoryStore(), clock)
	require.NoError(t, ctrl.SetDraft("first"))
	_, err := ctrl.Submit(context.Background())
	require.NoError(t, err)
	before := ctrl.State()

	clock.Advance(RateLimitInterval)
	analyzer.err = errors.New("dial tcp: connection refused")
	require.NoError(t, ctrl.SetDraft("second"))
	_, err = ctrl.Submit(context.Background())
	require.Error(t, err)

	after := ctrl.State()
	require.Equal(t, "dial tcp: connection refused", after.Error)
	require.Nil(t, after.Result)
	require.False(t, after.Loading)
	require.Equal(t, "second", after.Draft)
	require.Equal(t, before.History, after.History)
	require.Equal(t, before.LastSuccess, after.LastSuccess)

	// Failure does not arm the rate limit.
	analyzer.err = nil
	_, err = ctrl.Submit(context.Background())
	require.NoError(t, err)
}

func TestRequestFailureUsesGenericMessage(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &RequestFailedError{StatusCode: 502}}
	ctrl := newController(t, analyzer, storage.NewMemoryStore(), newFakeClock())
	require.NoError(t, ctrl.SetDraft("entry"))

	_, err := ctrl.Submit(context.Background())
	var failed *RequestFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, 502, failed.StatusCode)
	require.Equal(t, "Something went wrong with analysis.", ctrl.State().Error)
}

func TestStorageFailureIsReportedAndHistoryUnchanged(t *testing.T) {
	store := failingStore{Store: storage.NewMemoryStore(), err: errors.New("disk full")}
	ctrl := newController(t, &fakeAnalyzer{result: wonderful}, store, newFakeClock())
	require.NoError(t, ctrl.SetDraft("entry"))

	_, err := ctrl.Submit(context.Background())
	require.ErrorContains(t, err, "disk full")

	state := ctrl.State()
	require.Empty(t, state.History)
	require.Nil(t, state.Result)
	require.True(t, state.LastSuccess.IsZero())
	require.Contains(t, state.Error, "save history")
}

func TestHistoryIsBoundedNewestFirst(t *testing.T) {
	clock := newFakeClock()
	ctrl := newController(t, &fakeAnalyzer{result: wonderful}, storage.NewMemoryStore(), clock)

	for i := 1; i <= MaxHistory+1; i++ {
		require.NoError(t, ctrl.SetDraft(fmt.Sprintf("entry %d", i)))
		_, err := ctrl.Submit(context.Background())
		require.NoError(t, err)
		require.LessOrEqual(t, len(ctrl.History()), MaxHistory)
		require.Equal(t, fmt.Sprintf("entry %d", i), ctrl.History()[0].Entry)
		clock.Advance(RateLimitInterval)
	}

	history := ctrl.History()
	require.Len(t, history, MaxHistory)
	require.Equal(t, "entry 11", history[0].Entry)
	require.Equal(t, "entry 2", history[MaxHistory-1].Entry)
}

func TestHistoryRoundTripsThroughStore(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := newFakeClock()
	ctrl := newController(t, &fakeAnalyzer{result: wonderful}, store, clock)
	for i := 0; i < 4; i++ {
		require.NoError(t, ctrl.SetDraft(fmt.Sprintf("day %d", i)))
		_, err := ctrl.Submit(context.Background())
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}

	reloaded := newController(t, &fakeAnalyzer{}, store, clock)
	require.Equal(t, ctrl.History(), reloaded.History())
	require.True(t, reloaded.State().LastSuccess.IsZero())
}

func TestMalformedHistoryLoadsEmpty(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(HistoryKey, []byte("{not json")))

	ctrl := newController(t, &fakeAnalyzer{}, store, newFakeClock())
	require.Empty(t, ctrl.History())
}

func TestOversizedStoredHistoryIsTrimmed(t *testing.T) {
	records := make([]HistoryRecord, MaxHistory+3)
	for i := range records {
		records[i] = HistoryRecord{Entry: fmt.Sprintf("e%d", i)}
	}
	raw, err := json.Marshal(records)
	require.NoError(t, err)
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(HistoryKey, raw))

	history := LoadHistory(store)
	require.Len(t, history, MaxHistory)
	require.Equal(t, "e0", history[0].Entry)
}

func TestConcurrentSubmitIsRejected(t *testing.T) {
	analyzer := &fakeAnalyzer{
		result:  wonderful,
		release: make(chan struct{}),
		started: make(chan struct{}),
	}
	ctrl := newController(t, analyzer, storage.NewMemoryStore(), newFakeClock())
	require.NoError(t, ctrl.SetDraft("slow entry"))

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.Submit(context.Background())
		done <- err
	}()
	<-analyzer.started
	require.True(t, ctrl.State().Loading)

	_, err := ctrl.Submit(context.Background())
	require.ErrorIs(t, err, ErrInFlight)
	require.ErrorIs(t, ctrl.CheckSubmit(), ErrInFlight)
	require.Empty(t, ctrl.State().Error)

	close(analyzer.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, analyzer.Calls())
	require.False(t, ctrl.State().Loading)
}

func TestCheckSubmitDoesNotCallAnalyzer(t *testing.T) {
	analyzer := &fakeAnalyzer{result: wonderful}
	ctrl := newController(t, analyzer, storage.NewMemoryStore(), newFakeClock())

	require.ErrorIs(t, ctrl.CheckSubmit(), ErrEmptyInput)
	require.Equal(t, "Please write something first.", ctrl.State().Error)

	require.NoError(t, ctrl.SetDraft("ready"))
	require.NoError(t, ctrl.CheckSubmit())
	require.Zero(t, analyzer.Calls())
}

func TestClearDraft(t *testing.T) {
	ctrl := newController(t, &fakeAnalyzer{}, storage.NewMemoryStore(), newFakeClock())
	require.NoError(t, ctrl.SetDraft("something"))
	ctrl.ClearDraft()
	require.Empty(t, ctrl.Draft())
}

func TestClearDraftClearsError(t *testing.T) {
	ctrl := newController(t, &fakeAnalyzer{}, storage.NewMemoryStore(), newFakeClock())
	require.ErrorIs(t, ctrl.SetDraft(strings.Repeat("a", MaxDraftLength+1)), ErrTooLong)
	require.Equal(t, "Max 5000 characters.", ctrl.State().Error)

	ctrl.ClearDraft()
	require.Empty(t, ctrl.State().Error)
}

func TestStateIsACopy(t *testing.T) {
	ctrl := newController(t, &fakeAnalyzer{result: wonderful}, storage.NewMemoryStore(), newFakeClock())
	require.NoError(t, ctrl.SetDraft("entry"))
	_, err := ctrl.Submit(context.Background())
	require.NoError(t, err)

	state := ctrl.State()
	state.Result.KeyPhrases[0] = "mutated"
	state.History[0].KeyPhrases[0] = "mutated"

	fresh := ctrl.State()
	require.Equal(t, "wonderful day", fresh.Result.KeyPhrases[0])
	require.Equal(t, "wonderful day", fresh.History[0].KeyPhrases[0])
}
