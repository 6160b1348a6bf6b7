package journal

import "time"

// #region entry
// Entry is a single row in the gate_journal table: one processed intent.
type Entry struct {
	SessionID      string
	Seq            int64
	IntentKind     string
	IntentJSON     string
	Effects        []string // effect kinds, in emission order
	StatusKind     string   // "" before the first successful fetch
	ContentVisible bool
	CanShowContent bool
	ActiveAlert    string // alert slot name, "" for none
	Fetching       bool
	CreatedAt      time.Time
}

// #endregion entry

// #region session-record
// SessionRecord is a row in gate_sessions.
type SessionRecord struct {
	SessionID string
	AppName   string
	StartedAt time.Time
	Intents   int64
}

// #endregion session-record
