package wire

import (
	"encoding/json"
	"fmt"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
)

// #region intent
// Intent is the JSON-serializable form of gate.Intent.
type Intent struct {
	Kind    gate.IntentKind `json:"kind"`
	Request uint64          `json:"request,omitempty"`
	Status  *Status         `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	URL     string          `json:"url,omitempty"`
}

// FromIntent converts a domain intent to its wire form.
func FromIntent(in gate.Intent) (Intent, error) {
	switch v := in.(type) {
	case gate.RequestFetch, gate.ForceAlertDismissed, gate.OptionalAlertDismissed,
		gate.FetchErrorAlertDismissed, gate.NoticeAlertDismissed:
		return Intent{Kind: in.IntentKind()}, nil
	case gate.FetchSucceeded:
		st := FromStatus(v.Status)
		if st == nil {
			return Intent{}, fmt.Errorf("fetch result without status")
		}
		return Intent{Kind: in.IntentKind(), Request: v.Request, Status: st}, nil
	case gate.FetchFailed:
		return Intent{Kind: in.IntentKind(), Request: v.Request, Message: v.Message}, nil
	case gate.OptionalAlertConfirmed:
		return Intent{Kind: in.IntentKind(), URL: v.URL}, nil
	}
	return Intent{}, fmt.Errorf("unsupported intent %T", in)
}

// ToIntent converts the wire form back to a domain intent.
func (w Intent) ToIntent() (gate.Intent, error) {
	switch w.Kind {
	case gate.IntentRequestFetch:
		return gate.RequestFetch{}, nil
	case gate.IntentFetchSucceeded:
		if w.Status == nil {
			return nil, fmt.Errorf("%s: missing status", w.Kind)
		}
		st, err := w.Status.ToStatus()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", w.Kind, err)
		}
		return gate.FetchSucceeded{Request: w.Request, Status: st}, nil
	case gate.IntentFetchFailed:
		return gate.FetchFailed{Request: w.Request, Message: w.Message}, nil
	case gate.IntentForceAlertDismissed:
		return gate.ForceAlertDismissed{}, nil
	case gate.IntentOptionalAlertDismissed:
		return gate.OptionalAlertDismissed{}, nil
	case gate.IntentOptionalAlertConfirmed:
		return gate.OptionalAlertConfirmed{URL: w.URL}, nil
	case gate.IntentFetchErrorAlertDismissed:
		return gate.FetchErrorAlertDismissed{}, nil
	case gate.IntentNoticeAlertDismissed:
		return gate.NoticeAlertDismissed{}, nil
	}
	return nil, fmt.Errorf("unknown intent kind %q", w.Kind)
}

// EncodeIntent renders an intent as compact JSON.
func EncodeIntent(in gate.Intent) (string, error) {
	w, err := FromIntent(in)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode intent: %w", err)
	}
	return string(data), nil
}

// DecodeIntent parses JSON produced by EncodeIntent.
func DecodeIntent(data string) (gate.Intent, error) {
	var w Intent
	if err := json.Unmarshal([]byte(data), &w); err != nil {
		return nil, fmt.Errorf("decode intent: %w", err)
	}
	return w.ToIntent()
}

// #endregion intent
