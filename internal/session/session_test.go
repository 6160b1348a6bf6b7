package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/danielpatrickdp/launch-gate/internal/journal"
	"github.com/danielpatrickdp/launch-gate/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// #region fakes
type fetchResult struct {
	status gate.AppUpdateStatus
	err    error
}

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	results []fetchResult
	release chan struct{} // when set, each fetch waits for a value
}

func (f *fakeFetcher) Fetch(ctx context.Context) (gate.AppUpdateStatus, error) {
	f.mu.Lock()
	i := f.calls
	f.calls++
	f.mu.Unlock()

	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if i >= len(f.results) {
		i = len(f.results) - 1
	}
	return f.results[i].status, f.results[i].err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeOpener struct {
	mu   sync.Mutex
	urls []string
}

func (o *fakeOpener) Open(url string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
}

func (o *fakeOpener) URLs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.urls...)
}

type fakeTerminator struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (f *fakeTerminator) ScheduleExit(after time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, after)
}

func (f *fakeTerminator) Delays() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.delays...)
}

type memJournal struct {
	mu       sync.Mutex
	sessions []string
	entries  []journal.Entry
}

func (j *memJournal) BeginSession(id, _ string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sessions = append(j.sessions, id)
	return nil
}

func (j *memJournal) Append(e journal.Entry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return nil
}

func (j *memJournal) Entries() []journal.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.Entry(nil), j.entries...)
}

// #endregion fakes

type harness struct {
	session    *Session
	fetcher    *fakeFetcher
	opener     *fakeOpener
	terminator *fakeTerminator
	journal    *memJournal
	metrics    *metrics.Recorder
	ctx        context.Context
}

func start(t *testing.T, fetcher *fakeFetcher) *harness {
	t.Helper()
	h := &harness{
		fetcher:    fetcher,
		opener:     &fakeOpener{},
		terminator: &fakeTerminator{},
		journal:    &memJournal{},
		metrics:    metrics.NewRecorder(nil),
	}
	s, err := New(Config{
		AppName:     "Launchpad",
		DefaultText: gate.NewDefaultText("Launchpad"),
		Fetcher:     fetcher,
		Opener:      h.opener,
		Terminator:  h.terminator,
		Journal:     h.journal,
		Metrics:     h.metrics,
	})
	require.NoError(t, err)
	h.session = s

	ctx, cancel := context.WithCancel(context.Background())
	h.ctx = ctx
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(waitFor):
			t.Error("session did not stop")
		}
	})
	return h
}

func (h *harness) eventually(t *testing.T, cond func(gate.State) bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(h.session.State()) }, waitFor, tick, msg)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{Opener: &fakeOpener{}, Terminator: &fakeTerminator{}})
	assert.ErrorContains(t, err, "status fetcher")

	_, err = New(Config{Fetcher: &fakeFetcher{}, Terminator: &fakeTerminator{}})
	assert.ErrorContains(t, err, "url opener")

	_, err = New(Config{Fetcher: &fakeFetcher{}, Opener: &fakeOpener{}})
	assert.ErrorContains(t, err, "process terminator")
}

func TestValidStatusShowsContent(t *testing.T) {
	h := start(t, &fakeFetcher{results: []fetchResult{{status: gate.Valid{}}}})

	require.NoError(t, h.session.Start(h.ctx))
	h.eventually(t, func(s gate.State) bool { return s.CanShowContent() }, "content never became visible")

	st := h.session.State()
	assert.False(t, st.IsFetching)
	assert.Equal(t, 0, st.PopulatedSlots())
	assert.Equal(t, 1, h.fetcher.Calls())

	entries := h.journal.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "request_fetch", entries[0].IntentKind)
	assert.Equal(t, []string{"call_fetch"}, entries[0].Effects)
	assert.Equal(t, "fetch_succeeded", entries[1].IntentKind)
	assert.Equal(t, "valid", entries[1].StatusKind)
	assert.Equal(t, h.session.ID(), entries[1].SessionID)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.StatusTotal.WithLabelValues("valid")))
}

func TestFetchFailureThenManualRetry(t *testing.T) {
	h := start(t, &fakeFetcher{results: []fetchResult{
		{err: gate.NewFetchError("timeout", context.DeadlineExceeded)},
		{status: gate.Valid{}},
	}})

	require.NoError(t, h.session.Start(h.ctx))
	h.eventually(t, func(s gate.State) bool { return s.FetchErrorAlert != nil }, "no fetch error alert")

	st := h.session.State()
	assert.Equal(t, "timeout", st.FetchErrorAlert.Message)
	assert.False(t, st.IsFetching)
	assert.Equal(t, 1, h.fetcher.Calls(), "failure must not retry automatically")

	require.NoError(t, h.session.Submit(h.ctx, gate.FetchErrorAlertDismissed{}))
	h.eventually(t, func(s gate.State) bool { return s.CanShowContent() }, "retry never succeeded")

	assert.Equal(t, 2, h.fetcher.Calls())
	assert.Nil(t, h.session.State().FetchErrorAlert)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.FetchTotal.WithLabelValues(metrics.ResultError)))
}

func TestForcedUpdateDismissOpensAndTerminates(t *testing.T) {
	const link = "https://example.com/app"
	h := start(t, &fakeFetcher{results: []fetchResult{{status: gate.ForcedUpdateRequired{Message: "Please update", ConfirmLinkURL: link}}}})

	require.NoError(t, h.session.Start(h.ctx))
	h.eventually(t, func(s gate.State) bool { return s.ForceUpdateAlert != nil }, "no force update alert")

	st := h.session.State()
	assert.Equal(t, "Launchpad", st.ForceUpdateAlert.Title)
	assert.False(t, st.CanShowContent())

	require.NoError(t, h.session.Submit(h.ctx, gate.ForceAlertDismissed{}))
	require.Eventually(t, func() bool { return len(h.terminator.Delays()) == 1 }, waitFor, tick)

	assert.Equal(t, []string{link}, h.opener.URLs())
	assert.Equal(t, []time.Duration{gate.TerminateDelay}, h.terminator.Delays())
}

func TestDuplicateRequestFetchCallsOnce(t *testing.T) {
	f := &fakeFetcher{results: []fetchResult{{status: gate.Valid{}}}, release: make(chan struct{})}
	h := start(t, f)

	require.NoError(t, h.session.Start(h.ctx))
	require.NoError(t, h.session.Resume(h.ctx))
	require.NoError(t, h.session.Resume(h.ctx))
	require.Eventually(t, func() bool { return len(h.journal.Entries()) == 3 }, waitFor, tick)

	assert.True(t, h.session.State().IsFetching)
	require.Eventually(t, func() bool { return f.Calls() == 1 }, waitFor, tick)

	close(f.release)
	h.eventually(t, func(s gate.State) bool { return s.CanShowContent() }, "fetch never completed")
	assert.Equal(t, 1, f.Calls())
}

func TestOptionalUpdateConfirm(t *testing.T) {
	const link = "https://example.com/update"
	h := start(t, &fakeFetcher{results: []fetchResult{{status: gate.OptionalUpdateRequired{ConfirmLinkURL: link}}}})

	require.NoError(t, h.session.Start(h.ctx))
	h.eventually(t, func(s gate.State) bool { return s.OptionalUpdateAlert != nil }, "no optional alert")
	assert.True(t, h.session.State().CanShowContent())

	confirm := h.session.State().OptionalUpdateAlert.Buttons[1].Intent
	require.NoError(t, h.session.Submit(h.ctx, confirm))
	require.Eventually(t, func() bool { return len(h.opener.URLs()) == 1 }, waitFor, tick)
	assert.Equal(t, link, h.opener.URLs()[0])
	assert.Empty(t, h.terminator.Delays())
}

func TestObserverSeesEveryTransition(t *testing.T) {
	var mu sync.Mutex
	var seen []bool
	s, err := New(Config{
		DefaultText: gate.NewDefaultText("Launchpad"),
		Fetcher:     &fakeFetcher{results: []fetchResult{{status: gate.Valid{}}}},
		Opener:      &fakeOpener{},
		Terminator:  &fakeTerminator{},
		Observer: func(st gate.State) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, st.CanShowContent())
		},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.NoError(t, s.Start(ctx))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, waitFor, tick)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{false, true}, seen)
}

func TestSubmitAfterRunReturnsErrClosed(t *testing.T) {
	s, err := New(Config{
		Fetcher:    &fakeFetcher{results: []fetchResult{{status: gate.Valid{}}}},
		Opener:     &fakeOpener{},
		Terminator: &fakeTerminator{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))

	assert.ErrorIs(t, s.Submit(context.Background(), gate.RequestFetch{}), ErrClosed)
}
