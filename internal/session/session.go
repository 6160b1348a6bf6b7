// Package session runs a launch-gate reducer as a single-consumer actor:
// intents are processed one at a time in arrival order and effects are
// executed against injected collaborators.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/danielpatrickdp/launch-gate/internal/journal"
	"github.com/danielpatrickdp/launch-gate/internal/metrics"
	"github.com/danielpatrickdp/launch-gate/internal/wire"
	"github.com/google/uuid"
)

// ErrClosed is returned by Submit once the session loop has stopped.
var ErrClosed = errors.New("session closed")

const defaultQueueSize = 16

// #region collaborators
// StatusFetcher supplies the remote application status.
// Failures should be *gate.FetchError; any other error is shown by its text.
type StatusFetcher interface {
	Fetch(ctx context.Context) (gate.AppUpdateStatus, error)
}

// URLOpener opens a URL in the host environment. Best-effort.
type URLOpener interface {
	Open(url string)
}

// ProcessTerminator exits the process after a grace delay. Must not block.
type ProcessTerminator interface {
	ScheduleExit(after time.Duration)
}

// Journal receives one entry per processed intent.
type Journal interface {
	BeginSession(sessionID, appName string) error
	Append(entry journal.Entry) error
}

// #endregion collaborators

// #region config
// Config wires a session.
type Config struct {
	AppName      string
	DefaultText  gate.DefaultText
	Fetcher      StatusFetcher
	Opener       URLOpener
	Terminator   ProcessTerminator
	FetchTimeout time.Duration // 0 disables the per-fetch timeout

	// Optional
	Journal   Journal
	Metrics   *metrics.Recorder
	Logger    *slog.Logger
	Observer  func(gate.State) // called on the loop goroutine after every transition
	QueueSize int
}

// #endregion config

// #region session-struct
// Session owns one gate.State for the lifetime of a launch-gate session.
type Session struct {
	id     string
	cfg    Config
	logger *slog.Logger

	intents chan gate.Intent
	done    chan struct{}
	once    sync.Once

	mu    sync.RWMutex
	state gate.State
	seq   int64

	fetches sync.WaitGroup
}

// #endregion session-struct

// #region constructor
// New validates the collaborators, assigns a session id and records the session start.
func New(cfg Config) (*Session, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("session: status fetcher is required")
	}
	if cfg.Opener == nil {
		return nil, fmt.Errorf("session: url opener is required")
	}
	if cfg.Terminator == nil {
		return nil, fmt.Errorf("session: process terminator is required")
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		id:      uuid.New().String(),
		cfg:     cfg,
		intents: make(chan gate.Intent, cfg.QueueSize),
		done:    make(chan struct{}),
		state:   gate.NewState(cfg.DefaultText),
	}
	s.logger = logger.With("session", s.id)

	if cfg.Journal != nil {
		if err := cfg.Journal.BeginSession(s.id, cfg.AppName); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}
	return s, nil
}

// #endregion constructor

// #region accessors
// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// State returns a snapshot of the current gate state.
func (s *Session) State() gate.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// #endregion accessors

// #region submit
// Submit enqueues an intent. It blocks while the queue is full.
func (s *Session) Submit(ctx context.Context, intent gate.Intent) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}
	select {
	case s.intents <- intent:
		return nil
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start requests the initial fetch.
func (s *Session) Start(ctx context.Context) error {
	return s.Submit(ctx, gate.RequestFetch{})
}

// Resume re-checks the status when the host returns to the foreground.
func (s *Session) Resume(ctx context.Context) error {
	return s.Submit(ctx, gate.RequestFetch{})
}

// #endregion submit

// #region run
// Run processes intents until ctx is cancelled. It waits for in-flight fetches
// to observe the cancellation before returning.
func (s *Session) Run(ctx context.Context) error {
	defer s.fetches.Wait()
	defer s.once.Do(func() { close(s.done) })

	var pending []gate.Intent
	for {
		var next gate.Intent
		if len(pending) > 0 {
			next, pending = pending[0], pending[1:]
		} else {
			select {
			case <-ctx.Done():
				return nil
			case next = <-s.intents:
			}
		}
		pending = append(pending, s.process(ctx, next)...)
	}
}

// process applies one intent and executes its effects. Intents re-issued by
// EmitFetch are returned so they run before anything still queued.
func (s *Session) process(ctx context.Context, intent gate.Intent) []gate.Intent {
	s.mu.Lock()
	prev := s.state
	next, effects := gate.Reduce(prev, intent)
	s.state = next
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	kinds := effectNames(effects)
	s.logger.Debug("intent processed",
		"seq", seq,
		"intent", intent.IntentKind(),
		"effects", kinds,
		"can_show_content", next.CanShowContent(),
	)
	s.cfg.Metrics.RecordIntent(string(intent.IntentKind()), kinds)
	s.observeResult(prev, intent)
	s.record(seq, intent, kinds, next)
	if s.cfg.Observer != nil {
		s.cfg.Observer(next)
	}

	var reissued []gate.Intent
	for _, e := range effects {
		switch eff := e.(type) {
		case gate.CallFetch:
			s.fetches.Add(1)
			go s.fetch(ctx, eff.Request)
		case gate.OpenURL:
			s.logger.Info("opening url", "url", eff.URL)
			s.cfg.Opener.Open(eff.URL)
		case gate.ScheduleTerminate:
			s.logger.Info("scheduling termination", "after", eff.Delay)
			s.cfg.Terminator.ScheduleExit(eff.Delay)
		case gate.EmitFetch:
			reissued = append(reissued, gate.RequestFetch{})
		}
	}
	return reissued
}

// #endregion run

// #region fetch
// fetch runs the status fetch off the loop and feeds the result back as an intent.
func (s *Session) fetch(ctx context.Context, request uint64) {
	defer s.fetches.Done()

	fetchCtx := ctx
	if s.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.cfg.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	status, err := s.cfg.Fetcher.Fetch(fetchCtx)
	elapsed := time.Since(start)

	var result gate.Intent
	switch {
	case err != nil:
		s.logger.Warn("status fetch failed", "request", request, "error", err)
		s.cfg.Metrics.RecordFetch(metrics.ResultError, elapsed)
		result = gate.FetchFailed{Request: request, Message: gate.FetchMessage(err)}
	case status == nil:
		s.cfg.Metrics.RecordFetch(metrics.ResultError, elapsed)
		result = gate.FetchFailed{Request: request, Message: "empty status"}
	default:
		s.cfg.Metrics.RecordFetch(metrics.ResultSuccess, elapsed)
		result = gate.FetchSucceeded{Request: request, Status: status}
	}

	if err := s.Submit(ctx, result); err != nil {
		s.logger.Debug("dropping fetch result", "request", request, "error", err)
	}
}

// #endregion fetch

// #region helpers
func (s *Session) observeResult(prev gate.State, intent gate.Intent) {
	var request uint64
	switch in := intent.(type) {
	case gate.FetchSucceeded:
		request = in.Request
		if prev.AcceptsResult(request) {
			if in.Status != nil {
				s.cfg.Metrics.RecordStatus(string(in.Status.Kind()))
			}
			return
		}
	case gate.FetchFailed:
		request = in.Request
		if prev.AcceptsResult(request) {
			return
		}
	default:
		return
	}
	s.logger.Info("discarding stale fetch result", "request", request, "generation", prev.Generation)
	s.cfg.Metrics.RecordFetch(metrics.ResultStale, 0)
}

func (s *Session) record(seq int64, intent gate.Intent, effects []string, st gate.State) {
	if s.cfg.Journal == nil {
		return
	}
	encoded, err := wire.EncodeIntent(intent)
	if err != nil {
		s.logger.Warn("journal encode failed", "seq", seq, "error", err)
		return
	}
	entry := journal.Entry{
		SessionID:      s.id,
		Seq:            seq,
		IntentKind:     string(intent.IntentKind()),
		IntentJSON:     encoded,
		Effects:        effects,
		ContentVisible: st.ContentVisible,
		CanShowContent: st.CanShowContent(),
		ActiveAlert:    string(st.ActiveSlot()),
		Fetching:       st.IsFetching,
		CreatedAt:      time.Now().UTC(),
	}
	if st.Status != nil {
		entry.StatusKind = string(st.Status.Kind())
	}
	if err := s.cfg.Journal.Append(entry); err != nil {
		s.logger.Warn("journal append failed", "seq", seq, "error", err)
	}
}

func effectNames(effects []gate.Effect) []string {
	if len(effects) == 0 {
		return nil
	}
	names := make([]string, len(effects))
	for i, e := range effects {
		names[i] = string(e.EffectKind())
	}
	return names
}

// #endregion helpers
