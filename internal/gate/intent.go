package gate

import "time"

// #region intent
// IntentKind names an intent for logging, metrics and the journal.
type IntentKind string

const (
	IntentRequestFetch             IntentKind = "request_fetch"
	IntentFetchSucceeded           IntentKind = "fetch_succeeded"
	IntentFetchFailed              IntentKind = "fetch_failed"
	IntentForceAlertDismissed      IntentKind = "force_alert_dismissed"
	IntentOptionalAlertDismissed   IntentKind = "optional_alert_dismissed"
	IntentOptionalAlertConfirmed   IntentKind = "optional_alert_confirmed"
	IntentFetchErrorAlertDismissed IntentKind = "fetch_error_alert_dismissed"
	IntentNoticeAlertDismissed     IntentKind = "notice_alert_dismissed"
)

// Intent is a discrete event submitted to the reducer.
type Intent interface {
	IntentKind() IntentKind
}

// RequestFetch asks for a fresh status fetch.
type RequestFetch struct{}

// FetchSucceeded delivers the result of the fetch identified by Request.
type FetchSucceeded struct {
	Request uint64
	Status  AppUpdateStatus
}

// FetchFailed delivers the failure of the fetch identified by Request.
type FetchFailed struct {
	Request uint64
	Message string
}

type ForceAlertDismissed struct{}

type OptionalAlertDismissed struct{}

// OptionalAlertConfirmed is sent by the optional alert's update button.
type OptionalAlertConfirmed struct {
	URL string
}

type FetchErrorAlertDismissed struct{}

type NoticeAlertDismissed struct{}

func (RequestFetch) IntentKind() IntentKind             { return IntentRequestFetch }
func (FetchSucceeded) IntentKind() IntentKind           { return IntentFetchSucceeded }
func (FetchFailed) IntentKind() IntentKind              { return IntentFetchFailed }
func (ForceAlertDismissed) IntentKind() IntentKind      { return IntentForceAlertDismissed }
func (OptionalAlertDismissed) IntentKind() IntentKind   { return IntentOptionalAlertDismissed }
func (OptionalAlertConfirmed) IntentKind() IntentKind   { return IntentOptionalAlertConfirmed }
func (FetchErrorAlertDismissed) IntentKind() IntentKind { return IntentFetchErrorAlertDismissed }
func (NoticeAlertDismissed) IntentKind() IntentKind     { return IntentNoticeAlertDismissed }

// #endregion intent

// #region effect
// EffectKind names an effect.
type EffectKind string

const (
	EffectCallFetch         EffectKind = "call_fetch"
	EffectOpenURL           EffectKind = "open_url"
	EffectScheduleTerminate EffectKind = "schedule_terminate"
	EffectEmitFetch         EffectKind = "emit_fetch"
)

// Effect is a side-effecting instruction for the caller to execute.
// An empty effect list is the None effect.
type Effect interface {
	EffectKind() EffectKind
}

// CallFetch asks the caller to run the status fetch tagged with Request.
type CallFetch struct {
	Request uint64
}

// OpenURL asks the caller to open URL, fire-and-forget.
type OpenURL struct {
	URL string
}

// ScheduleTerminate asks the caller to exit the process after Delay.
type ScheduleTerminate struct {
	Delay time.Duration
}

// EmitFetch asks the caller to re-submit RequestFetch.
type EmitFetch struct{}

func (CallFetch) EffectKind() EffectKind         { return EffectCallFetch }
func (OpenURL) EffectKind() EffectKind           { return EffectOpenURL }
func (ScheduleTerminate) EffectKind() EffectKind { return EffectScheduleTerminate }
func (EmitFetch) EffectKind() EffectKind         { return EffectEmitFetch }

// EffectKinds flattens effects to their kinds, preserving order.
func EffectKinds(effects []Effect) []EffectKind {
	kinds := make([]EffectKind, len(effects))
	for i, e := range effects {
		kinds[i] = e.EffectKind()
	}
	return kinds
}

// #endregion effect
