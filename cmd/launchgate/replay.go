package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/danielpatrickdp/launch-gate/internal/config"
	"github.com/danielpatrickdp/launch-gate/internal/journal"
	"github.com/danielpatrickdp/launch-gate/internal/replay"
	"github.com/spf13/cobra"
)

func newReplayCmd() *cobra.Command {
	var dbPath, sessionID, exportPath string

	cmd := &cobra.Command{
		Use:   "replay [fixture.json...]",
		Short: "Re-run fixtures or a recorded session through the reducer",
		Example: `  # Check regression fixtures
  launchgate replay internal/replay/testdata/*.json

  # Re-verify a journaled session
  launchgate replay --db launchgate.db --session 0b6f...

  # Keep a journaled session as a fixture
  launchgate replay --session 0b6f... --export testdata/regression.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if sessionID != "" && exportPath != "" {
				return runExport(out, dbPath, sessionID, exportPath)
			}
			if sessionID != "" {
				return runReplayJournal(out, dbPath, sessionID)
			}
			if len(args) == 0 {
				return errors.New("give fixture files or --session")
			}
			return runReplayFixtures(out, args)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Journal database (defaults to journal_path from config)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to re-verify")
	cmd.Flags().StringVar(&exportPath, "export", "", "Write the session as a fixture to this path instead of verifying it")

	return cmd
}

// #region fixtures
func runReplayFixtures(out io.Writer, paths []string) error {
	failed := 0
	for _, path := range paths {
		f, err := replay.LoadFixture(path)
		if err != nil {
			return err
		}
		mismatches, err := replay.Check(f)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if len(mismatches) == 0 {
			fmt.Fprintf(out, "ok    %s (%d steps)\n", path, len(f.Steps))
			continue
		}
		failed++
		fmt.Fprintf(out, "FAIL  %s\n", path)
		for _, m := range mismatches {
			fmt.Fprintf(out, "      %s\n", m)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d fixtures failed", failed, len(paths))
	}
	return nil
}

// #endregion fixtures

// #region journal
func loadSession(dbPath, sessionID string) (config.Config, []journal.Entry, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if dbPath == "" {
		dbPath = cfg.JournalPath
	}

	store, err := journal.NewStore(dbPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	entries, err := store.List(sessionID, 0)
	if err != nil {
		return config.Config{}, nil, err
	}
	if len(entries) == 0 {
		return config.Config{}, nil, fmt.Errorf("no journal rows for session %s", sessionID)
	}
	return cfg, entries, nil
}

func runReplayJournal(out io.Writer, dbPath, sessionID string) error {
	cfg, entries, err := loadSession(dbPath, sessionID)
	if err != nil {
		return err
	}

	text := cfg.DefaultText()
	mismatches, err := replay.VerifyJournal(text, entries)
	if err != nil {
		return err
	}
	intents, err := replay.FromJournal(entries)
	if err != nil {
		return err
	}
	sum := replay.Summarize(replay.Replay(text, intents))

	fmt.Fprintf(out, "session %s: %d intents, %d fetches, %d discarded, final=%s content=%t terminated=%t\n",
		sessionID, sum.TotalIntents, sum.Fetches, sum.Discarded, orNone(sum.FinalStatus), sum.CanShowContent, sum.Terminated)
	for _, u := range sum.OpenedURLs {
		fmt.Fprintf(out, "  opened %s\n", u)
	}
	for _, m := range mismatches {
		fmt.Fprintf(out, "  %s\n", m)
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%d mismatches", len(mismatches))
	}
	return nil
}

func runExport(out io.Writer, dbPath, sessionID, exportPath string) error {
	cfg, entries, err := loadSession(dbPath, sessionID)
	if err != nil {
		return err
	}
	f, err := replay.ExportFixture("session "+sessionID, cfg.AppName, entries)
	if err != nil {
		return err
	}
	if err := replay.WriteFixture(f, exportPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d steps to %s\n", len(f.Steps), exportPath)
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

// #endregion journal
