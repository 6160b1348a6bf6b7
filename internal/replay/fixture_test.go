package replay

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
)

// #region fixture-tests

// TestFixtures runs every fixture under testdata. This is the primary
// regression test: a reducer change that alters a recorded session shows up here.
func TestFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.json"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatal("no fixtures found")
	}

	for _, path := range paths {
		t.Run(strings.TrimSuffix(filepath.Base(path), ".json"), func(t *testing.T) {
			f, err := LoadFixture(path)
			if err != nil {
				t.Fatalf("LoadFixture: %v", err)
			}
			mismatches, err := Check(f)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			for _, m := range mismatches {
				t.Errorf("%s: %s", f.Description, m)
			}
		})
	}
}

func TestFixture_DefaultTextApplied(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "forced_update.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	intents, err := f.Intents()
	if err != nil {
		t.Fatalf("Intents: %v", err)
	}

	results := Replay(f.ToDefaultText(), intents)
	alert := results[1].State.ForceUpdateAlert
	if alert == nil {
		t.Fatal("expected force update alert")
	}
	if alert.Title != "Shop" {
		t.Errorf("expected title from app name, got %q", alert.Title)
	}
	if alert.Message != "A new version is required" {
		t.Errorf("expected fixture message, got %q", alert.Message)
	}
	if alert.Buttons[0].Label != "update" {
		t.Errorf("expected default done label, got %q", alert.Buttons[0].Label)
	}
}

func TestCheck_ReportsMismatch(t *testing.T) {
	visible := true
	alert := "notice"
	f := &Fixture{
		AppName: "Shop",
		Steps: []Step{
			{Intent: mustWireIntent(t, gate.RequestFetch{}), Expect: Outcome{Effects: []string{"open_url"}, ContentVisible: &visible, Alert: &alert}},
		},
	}

	mismatches, err := Check(f)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(mismatches) != 3 {
		t.Fatalf("expected 3 mismatches, got %d: %v", len(mismatches), mismatches)
	}
	want := `step 1: effects want [open_url], got [call_fetch]`
	if mismatches[0].String() != want {
		t.Errorf("expected %q, got %q", want, mismatches[0].String())
	}
	if mismatches[2].Field != "alert" || mismatches[2].Got != `""` {
		t.Errorf("unexpected alert mismatch: %+v", mismatches[2])
	}
}

func TestCheck_BadIntent(t *testing.T) {
	f := &Fixture{Steps: []Step{{}}}
	if _, err := Check(f); err == nil {
		t.Fatal("expected error for step without intent kind")
	}
}

// #endregion fixture-tests

// #region loader-tests

func TestLoadFixture_Errors(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFixture(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

// #endregion loader-tests
