// Package wire holds the JSON shapes for launch statuses and intents shared by
// the gRPC adapter, the decision journal and the replay harness.
package wire

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/danielpatrickdp/launch-gate/internal/gate"
)

// #region status
// Status is the JSON-serializable form of gate.AppUpdateStatus.
type Status struct {
	Kind       gate.StatusKind `json:"kind"`
	Title      string          `json:"title,omitempty"`
	Message    string          `json:"message,omitempty"`
	ConfirmURL string          `json:"confirm_url,omitempty"`
	DoneURL    string          `json:"done_url,omitempty"`
	Terminate  bool            `json:"terminate,omitempty"`
}

// FromStatus converts a domain status to its wire form. nil yields nil.
func FromStatus(s gate.AppUpdateStatus) *Status {
	switch st := s.(type) {
	case gate.Valid:
		return &Status{Kind: gate.KindValid}
	case gate.ForcedUpdateRequired:
		return &Status{Kind: gate.KindForcedUpdate, Title: st.Title, Message: st.Message, ConfirmURL: st.ConfirmLinkURL}
	case gate.OptionalUpdateRequired:
		return &Status{Kind: gate.KindOptionalUpdate, Title: st.Title, Message: st.Message, ConfirmURL: st.ConfirmLinkURL}
	case gate.Notice:
		return &Status{Kind: gate.KindNotice, Title: st.Title, Message: st.Message, DoneURL: st.DoneURL, Terminate: st.IsAppTerminated}
	}
	return nil
}

// ToStatus validates the wire form and converts it to a domain status.
func (w *Status) ToStatus() (gate.AppUpdateStatus, error) {
	switch w.Kind {
	case gate.KindValid:
		return gate.Valid{}, nil
	case gate.KindForcedUpdate, gate.KindOptionalUpdate:
		if err := checkURL("confirm_url", w.ConfirmURL, true); err != nil {
			return nil, err
		}
		if w.Kind == gate.KindForcedUpdate {
			return gate.ForcedUpdateRequired{Title: w.Title, Message: w.Message, ConfirmLinkURL: w.ConfirmURL}, nil
		}
		return gate.OptionalUpdateRequired{Title: w.Title, Message: w.Message, ConfirmLinkURL: w.ConfirmURL}, nil
	case gate.KindNotice:
		if err := checkURL("done_url", w.DoneURL, false); err != nil {
			return nil, err
		}
		return gate.Notice{Title: w.Title, Message: w.Message, DoneURL: w.DoneURL, IsAppTerminated: w.Terminate}, nil
	}
	return nil, fmt.Errorf("unknown status kind %q", w.Kind)
}

// ParseStatus decodes a JSON status document.
func ParseStatus(data []byte) (gate.AppUpdateStatus, error) {
	var w Status
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return w.ToStatus()
}

// StatusFromMap decodes a generic map, as produced by structpb.Struct.AsMap.
func StatusFromMap(m map[string]any) (gate.AppUpdateStatus, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode status map: %w", err)
	}
	return ParseStatus(data)
}

// StatusToMap is the inverse of StatusFromMap.
func StatusToMap(s gate.AppUpdateStatus) (map[string]any, error) {
	w := FromStatus(s)
	if w == nil {
		return nil, fmt.Errorf("unsupported status %T", s)
	}
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode status map: %w", err)
	}
	return m, nil
}

func checkURL(field, raw string, required bool) error {
	if raw == "" {
		if required {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("%s %q is not an absolute URL", field, raw)
	}
	return nil
}

// #endregion status
