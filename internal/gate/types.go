package gate

import "time"

// TerminateDelay is how long the host waits before exiting, so a pending
// UI transition can finish.
const TerminateDelay = 200 * time.Millisecond

// #region status
// StatusKind names the four AppUpdateStatus variants.
type StatusKind string

const (
	KindValid          StatusKind = "valid"
	KindForcedUpdate   StatusKind = "forced_update"
	KindOptionalUpdate StatusKind = "optional_update"
	KindNotice         StatusKind = "notice"
)

// AppUpdateStatus is the closed set of remote launch statuses.
// Implemented by Valid, ForcedUpdateRequired, OptionalUpdateRequired and Notice.
type AppUpdateStatus interface {
	Kind() StatusKind
	isStatus()
}

// Valid lets the application proceed.
type Valid struct{}

// ForcedUpdateRequired blocks the application until the process exits.
// Empty Title or Message means "use default".
type ForcedUpdateRequired struct {
	Title          string
	Message        string
	ConfirmLinkURL string
}

// OptionalUpdateRequired lets the application proceed and offers an update link.
type OptionalUpdateRequired struct {
	Title          string
	Message        string
	ConfirmLinkURL string
}

// Notice is an informational prompt. DoneURL is optional (empty when absent).
type Notice struct {
	Title           string
	Message         string
	DoneURL         string
	IsAppTerminated bool
}

func (Valid) Kind() StatusKind                  { return KindValid }
func (ForcedUpdateRequired) Kind() StatusKind   { return KindForcedUpdate }
func (OptionalUpdateRequired) Kind() StatusKind { return KindOptionalUpdate }
func (Notice) Kind() StatusKind                 { return KindNotice }

func (Valid) isStatus()                  {}
func (ForcedUpdateRequired) isStatus()   {}
func (OptionalUpdateRequired) isStatus() {}
func (Notice) isStatus()                 {}

// #endregion status

// #region alert
// ButtonRole tells the presentation layer how to style a button.
type ButtonRole string

const (
	RoleDefault ButtonRole = "default"
	RoleCancel  ButtonRole = "cancel"
)

// AlertButton is one action on an alert. Intent is submitted when the user picks it.
type AlertButton struct {
	Label  string
	Role   ButtonRole
	Intent Intent
}

// Alert is a plain alert record. Rendering is the caller's job.
type Alert struct {
	Title   string
	Message string
	Buttons []AlertButton
}

// AlertSlot names one of the four independent alert slots.
type AlertSlot string

const (
	SlotNone        AlertSlot = ""
	SlotForceUpdate AlertSlot = "force_update"
	SlotOptional    AlertSlot = "optional_update"
	SlotFetchError  AlertSlot = "fetch_error"
	SlotNotice      AlertSlot = "notice"
)

// #endregion alert

// #region default-text
// ForceUpdateText is the fallback text for a forced-update alert.
type ForceUpdateText struct {
	Title   string
	Message string
	Done    string
}

// OptionalUpdateText is the fallback text for an optional-update alert.
type OptionalUpdateText struct {
	Title   string
	Message string
	Cancel  string
	Done    string
}

// NoticeText is the fallback text for a notice alert.
type NoticeText struct {
	Title   string
	Message string
	Cancel  string
	Done    string
}

// FetchErrorText is the fallback text for the fetch error alert.
type FetchErrorText struct {
	Title string
	Done  string
}

// DefaultText is the fallback text set, fixed for the lifetime of a State.
type DefaultText struct {
	ForceUpdate    ForceUpdateText
	OptionalUpdate OptionalUpdateText
	Notice         NoticeText
	FetchError     FetchErrorText
}

// NewDefaultText returns the documented defaults, titled with the app display name.
func NewDefaultText(displayName string) DefaultText {
	return DefaultText{
		ForceUpdate:    ForceUpdateText{Title: displayName, Done: "update"},
		OptionalUpdate: OptionalUpdateText{Title: displayName, Cancel: "cancel", Done: "update"},
		Notice:         NoticeText{Title: displayName, Cancel: "cancel", Done: "done"},
		FetchError:     FetchErrorText{Title: displayName, Done: "done"},
	}
}

// #endregion default-text

// #region state
// State is the gate state owned by a single reducer.
type State struct {
	Status         AppUpdateStatus // nil until the first successful fetch
	IsFetching     bool
	Generation     uint64 // id of the most recent RequestFetch
	ContentVisible bool
	Terminating    bool // a ScheduleTerminate effect has been emitted

	ForceUpdateAlert    *Alert
	OptionalUpdateAlert *Alert
	FetchErrorAlert     *Alert
	NoticeAlert         *Alert

	DefaultText DefaultText
}

// NewState creates the initial state for a launch-gate session.
func NewState(text DefaultText) State {
	return State{DefaultText: text}
}

// CanShowContent reports whether the host may display main content.
// A forced-update alert re-blocks entry even after content became visible.
func (s State) CanShowContent() bool {
	return s.ContentVisible && s.ForceUpdateAlert == nil && !s.Terminating
}

// ActiveSlot returns the first populated alert slot, in priority order.
func (s State) ActiveSlot() AlertSlot {
	switch {
	case s.ForceUpdateAlert != nil:
		return SlotForceUpdate
	case s.NoticeAlert != nil:
		return SlotNotice
	case s.FetchErrorAlert != nil:
		return SlotFetchError
	case s.OptionalUpdateAlert != nil:
		return SlotOptional
	}
	return SlotNone
}

// ActiveAlert returns the alert in ActiveSlot, or nil.
func (s State) ActiveAlert() *Alert {
	switch s.ActiveSlot() {
	case SlotForceUpdate:
		return s.ForceUpdateAlert
	case SlotNotice:
		return s.NoticeAlert
	case SlotFetchError:
		return s.FetchErrorAlert
	case SlotOptional:
		return s.OptionalUpdateAlert
	}
	return nil
}

// PopulatedSlots counts non-nil alert slots.
func (s State) PopulatedSlots() int {
	n := 0
	for _, a := range []*Alert{s.ForceUpdateAlert, s.OptionalUpdateAlert, s.FetchErrorAlert, s.NoticeAlert} {
		if a != nil {
			n++
		}
	}
	return n
}

// #endregion state
