// Package replay re-runs recorded or fixture intents through gate.Reduce in
// memory so reducer changes can be checked against known sessions.
package replay

import (
	"fmt"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/danielpatrickdp/launch-gate/internal/journal"
	"github.com/danielpatrickdp/launch-gate/internal/wire"
)

// #region types
// Result captures the outcome of replaying one intent.
type Result struct {
	Seq       int
	Intent    gate.Intent
	Effects   []gate.Effect
	State     gate.State // state after the intent
	Discarded bool       // fetch result that did not match the in-flight request
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalIntents   int
	Fetches        int
	Discarded      int
	OpenedURLs     []string
	Terminated     bool
	FinalStatus    string
	CanShowContent bool
}

// #endregion types

// #region replay
// Replay folds intents through Reduce starting from gate.NewState(text).
// Effects are recorded, never executed, so EmitFetch is not re-fed.
func Replay(text gate.DefaultText, intents []gate.Intent) []Result {
	current := gate.NewState(text)
	results := make([]Result, 0, len(intents))

	for i, in := range intents {
		discarded := false
		switch v := in.(type) {
		case gate.FetchSucceeded:
			discarded = !current.AcceptsResult(v.Request)
		case gate.FetchFailed:
			discarded = !current.AcceptsResult(v.Request)
		}

		next, effects := gate.Reduce(current, in)
		results = append(results, Result{
			Seq:       i + 1,
			Intent:    in,
			Effects:   effects,
			State:     next,
			Discarded: discarded,
		})
		current = next
	}

	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{TotalIntents: len(results)}
	for _, r := range results {
		if r.Discarded {
			s.Discarded++
		}
		for _, e := range r.Effects {
			switch v := e.(type) {
			case gate.CallFetch:
				s.Fetches++
			case gate.OpenURL:
				s.OpenedURLs = append(s.OpenedURLs, v.URL)
			case gate.ScheduleTerminate:
				s.Terminated = true
			}
		}
	}
	if len(results) > 0 {
		last := results[len(results)-1].State
		if last.Status != nil {
			s.FinalStatus = string(last.Status.Kind())
		}
		s.CanShowContent = last.CanShowContent()
	}
	return s
}

// #endregion replay

// #region journal
// FromJournal decodes journal rows back into intents, in row order.
func FromJournal(entries []journal.Entry) ([]gate.Intent, error) {
	intents := make([]gate.Intent, 0, len(entries))
	for _, e := range entries {
		in, err := wire.DecodeIntent(e.IntentJSON)
		if err != nil {
			return nil, fmt.Errorf("journal seq %d: %w", e.Seq, err)
		}
		intents = append(intents, in)
	}
	return intents, nil
}

// VerifyJournal replays a recorded session and reports every row whose
// recorded outcome differs from what Reduce produces now.
func VerifyJournal(text gate.DefaultText, entries []journal.Entry) ([]Mismatch, error) {
	intents, err := FromJournal(entries)
	if err != nil {
		return nil, err
	}
	results := Replay(text, intents)

	var out []Mismatch
	for i, r := range results {
		e := entries[i]
		out = append(out, compare(i+1, r, Outcome{
			Effects:        e.Effects,
			ContentVisible: &e.ContentVisible,
			CanShowContent: &e.CanShowContent,
			Alert:          &e.ActiveAlert,
			Fetching:       &e.Fetching,
		})...)
	}
	return out, nil
}

// #endregion journal
