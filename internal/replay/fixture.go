package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
	"github.com/danielpatrickdp/launch-gate/internal/journal"
	"github.com/danielpatrickdp/launch-gate/internal/wire"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string      `json:"description"`
	AppName     string      `json:"app_name"`
	DefaultText FixtureText `json:"default_text"`
	Steps       []Step      `json:"steps"`
}

// FixtureText mirrors gate.DefaultText with JSON tags. Empty fields take the
// defaults for AppName.
type FixtureText struct {
	ForceUpdate    FixtureAlertText `json:"force_update"`
	OptionalUpdate FixtureAlertText `json:"optional_update"`
	Notice         FixtureAlertText `json:"notice"`
	FetchError     FixtureAlertText `json:"fetch_error"`
}

// FixtureAlertText is the text of one alert kind.
type FixtureAlertText struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Cancel  string `json:"cancel"`
	Done    string `json:"done"`
}

// Step is one intent and the outcome expected after it.
type Step struct {
	Intent wire.Intent `json:"intent"`
	Expect Outcome     `json:"expect"`
}

// Outcome is the expected result of a step. Effects are always compared
// (missing means none); nil pointer fields are not checked.
type Outcome struct {
	Effects        []string `json:"effects"`
	ContentVisible *bool    `json:"content_visible,omitempty"`
	CanShowContent *bool    `json:"can_show_content,omitempty"`
	Alert          *string  `json:"alert,omitempty"`
	Fetching       *bool    `json:"fetching,omitempty"`
}

// Mismatch is one difference between an expected and actual step outcome.
type Mismatch struct {
	Step  int
	Field string
	Want  string
	Got   string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("step %d: %s want %s, got %s", m.Step, m.Field, m.Want, m.Got)
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToDefaultText converts the fixture text to the gate fallback text.
func (f *Fixture) ToDefaultText() gate.DefaultText {
	base := gate.NewDefaultText(f.AppName)
	t := f.DefaultText
	return gate.DefaultText{
		ForceUpdate: gate.ForceUpdateText{
			Title:   pick(t.ForceUpdate.Title, base.ForceUpdate.Title),
			Message: t.ForceUpdate.Message,
			Done:    pick(t.ForceUpdate.Done, base.ForceUpdate.Done),
		},
		OptionalUpdate: gate.OptionalUpdateText{
			Title:   pick(t.OptionalUpdate.Title, base.OptionalUpdate.Title),
			Message: t.OptionalUpdate.Message,
			Cancel:  pick(t.OptionalUpdate.Cancel, base.OptionalUpdate.Cancel),
			Done:    pick(t.OptionalUpdate.Done, base.OptionalUpdate.Done),
		},
		Notice: gate.NoticeText{
			Title:   pick(t.Notice.Title, base.Notice.Title),
			Message: t.Notice.Message,
			Cancel:  pick(t.Notice.Cancel, base.Notice.Cancel),
			Done:    pick(t.Notice.Done, base.Notice.Done),
		},
		FetchError: gate.FetchErrorText{
			Title: pick(t.FetchError.Title, base.FetchError.Title),
			Done:  pick(t.FetchError.Done, base.FetchError.Done),
		},
	}
}

// Intents decodes every step's intent.
func (f *Fixture) Intents() ([]gate.Intent, error) {
	intents := make([]gate.Intent, len(f.Steps))
	for i, step := range f.Steps {
		in, err := step.Intent.ToIntent()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		intents[i] = in
	}
	return intents, nil
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

// #endregion fixture-loader

// #region check

// Check replays the fixture and returns every step whose outcome differs
// from its expectation. An empty slice means the fixture passes.
func Check(f *Fixture) ([]Mismatch, error) {
	intents, err := f.Intents()
	if err != nil {
		return nil, err
	}
	results := Replay(f.ToDefaultText(), intents)

	var out []Mismatch
	for i, r := range results {
		out = append(out, compare(i+1, r, f.Steps[i].Expect)...)
	}
	return out, nil
}

func compare(step int, r Result, want Outcome) []Mismatch {
	var out []Mismatch
	add := func(field, w, g string) {
		if w != g {
			out = append(out, Mismatch{Step: step, Field: field, Want: w, Got: g})
		}
	}

	got := make([]string, len(r.Effects))
	for i, e := range r.Effects {
		got[i] = string(e.EffectKind())
	}
	add("effects", "["+strings.Join(want.Effects, ",")+"]", "["+strings.Join(got, ",")+"]")

	if want.ContentVisible != nil {
		add("content_visible", fmt.Sprint(*want.ContentVisible), fmt.Sprint(r.State.ContentVisible))
	}
	if want.CanShowContent != nil {
		add("can_show_content", fmt.Sprint(*want.CanShowContent), fmt.Sprint(r.State.CanShowContent()))
	}
	if want.Alert != nil {
		add("alert", quote(*want.Alert), quote(string(r.State.ActiveSlot())))
	}
	if want.Fetching != nil {
		add("fetching", fmt.Sprint(*want.Fetching), fmt.Sprint(r.State.IsFetching))
	}
	return out
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

// #endregion check

// #region export

// ExportFixture turns a journaled session into a fixture whose expectations
// are the recorded outcomes, so the session can be kept as a regression case.
func ExportFixture(description, appName string, entries []journal.Entry) (*Fixture, error) {
	f := &Fixture{Description: description, AppName: appName}
	for _, e := range entries {
		var w wire.Intent
		if err := json.Unmarshal([]byte(e.IntentJSON), &w); err != nil {
			return nil, fmt.Errorf("journal seq %d: %w", e.Seq, err)
		}
		visible, canShow, alert, fetching := e.ContentVisible, e.CanShowContent, e.ActiveAlert, e.Fetching
		effects := e.Effects
		if effects == nil {
			effects = []string{}
		}
		f.Steps = append(f.Steps, Step{
			Intent: w,
			Expect: Outcome{
				Effects:        effects,
				ContentVisible: &visible,
				CanShowContent: &canShow,
				Alert:          &alert,
				Fetching:       &fetching,
			},
		})
	}
	return f, nil
}

// WriteFixture writes f to path as indented JSON.
func WriteFixture(f *Fixture, path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion export
