package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/danielpatrickdp/launch-gate/internal/config"
	"github.com/danielpatrickdp/launch-gate/internal/journal"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	var (
		dbPath    string
		sessionID string
		last      int
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List journaled sessions or the rows of one session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := config.Load(configPath)
				if err != nil {
					return err
				}
				dbPath = cfg.JournalPath
			}
			store, err := journal.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if sessionID != "" {
				return runDetailMode(out, store, sessionID, last, jsonOut)
			}
			return runListMode(out, store, last, jsonOut)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Journal database (defaults to journal_path from config)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Show the journal rows of one session")
	cmd.Flags().IntVar(&last, "last", 20, "Show N most recent sessions, or the first N rows with --session")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON instead of table")

	return cmd
}

// #region list-mode

type sessionRow struct {
	SessionID string `json:"session_id"`
	AppName   string `json:"app_name"`
	StartedAt string `json:"started_at"`
	Intents   int64  `json:"intents"`
}

func runListMode(out io.Writer, store *journal.Store, last int, jsonOut bool) error {
	sessions, err := store.Sessions(last)
	if err != nil {
		return err
	}

	rows := make([]sessionRow, len(sessions))
	for i, s := range sessions {
		rows[i] = sessionRow{
			SessionID: s.SessionID,
			AppName:   s.AppName,
			StartedAt: s.StartedAt.Format("2006-01-02T15:04:05Z"),
			Intents:   s.Intents,
		}
	}

	if jsonOut {
		return printJSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "no sessions found")
		return nil
	}
	fmt.Fprintf(out, "%-36s  %-16s  %7s  %s\n", "Session", "App", "Intents", "Started")
	fmt.Fprintf(out, "%-36s+-%-16s+-%7s+-%s\n", strings.Repeat("-", 36), strings.Repeat("-", 16), "-------", "--------------------")
	for _, r := range rows {
		fmt.Fprintf(out, "%-36s  %-16s  %7d  %s\n", r.SessionID, r.AppName, r.Intents, r.StartedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type journalRow struct {
	Seq            int64    `json:"seq"`
	Intent         string   `json:"intent"`
	Effects        []string `json:"effects"`
	Status         string   `json:"status,omitempty"`
	ContentVisible bool     `json:"content_visible"`
	CanShowContent bool     `json:"can_show_content"`
	Alert          string   `json:"alert,omitempty"`
	Fetching       bool     `json:"fetching"`
	CreatedAt      string   `json:"created_at"`
}

func runDetailMode(out io.Writer, store *journal.Store, sessionID string, limit int, jsonOut bool) error {
	entries, err := store.List(sessionID, limit)
	if err != nil {
		return err
	}

	rows := make([]journalRow, len(entries))
	for i, e := range entries {
		rows[i] = journalRow{
			Seq:            e.Seq,
			Intent:         e.IntentKind,
			Effects:        e.Effects,
			Status:         e.StatusKind,
			ContentVisible: e.ContentVisible,
			CanShowContent: e.CanShowContent,
			Alert:          e.ActiveAlert,
			Fetching:       e.Fetching,
			CreatedAt:      e.CreatedAt.Format("2006-01-02T15:04:05.000Z"),
		}
	}

	if jsonOut {
		return printJSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintf(out, "no journal rows for session %s\n", sessionID)
		return nil
	}
	fmt.Fprintf(out, "%4s  %-28s  %-30s  %-15s  %-7s  %-15s  %s\n",
		"Seq", "Intent", "Effects", "Status", "Content", "Alert", "Fetching")
	for _, r := range rows {
		fmt.Fprintf(out, "%4d  %-28s  %-30s  %-15s  %-7t  %-15s  %t\n",
			r.Seq, r.Intent, strings.Join(r.Effects, ","), orNone(r.Status), r.CanShowContent, orNone(r.Alert), r.Fetching)
	}
	return nil
}

// #endregion detail-mode

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
