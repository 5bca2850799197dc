package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// ErrUnrecognizedShape is returned when a sessions payload matches none of
// the documented wire shapes.
var ErrUnrecognizedShape = errors.New("unrecognized sessions payload shape")

// wireSession mirrors one raw session entry. Both identity keys and both
// last-used keys are optional on the wire; Normalize reconciles them.
type wireSession struct {
	ID         string          `json:"id"`
	TokenID    string          `json:"tokenId"`
	Device     json.RawMessage `json:"device"`
	IPAddress  string          `json:"ipAddress"`
	CreatedAt  time.Time       `json:"createdAt"`
	ExpiresAt  time.Time       `json:"expiresAt"`
	LastUsed   *time.Time      `json:"lastUsed"`
	LastUsedAt *time.Time      `json:"lastUsedAt"`
	IsCurrent  bool            `json:"isCurrent"`
}

// wireDevice is the structured variant of the device field.
type wireDevice struct {
	Type    string `json:"type"`
	Browser string `json:"browser"`
	OS      string `json:"os"`
}

// envelope covers the three wrapped shapes. Data is decoded twice because it
// is either a bare array or a nested {"sessions": [...]} object.
type envelope struct {
	Sessions []wireSession   `json:"sessions"`
	Data     json.RawMessage `json:"data"`
}

type dataEnvelope struct {
	Sessions []wireSession `json:"sessions"`
}

// Normalize decodes any of the four documented wire shapes into the
// canonical session list, preserving server order. Every returned entry has
// both ID and TokenID populated (falling back to each other) and a single
// reconciled LastUsedAt.
func Normalize(payload []byte) ([]Session, error) {
	entries, err := decodeEntries(payload)
	if err != nil {
		return nil, err
	}

	out := make([]Session, 0, len(entries))
	for _, w := range entries {
		id, tokenID := reconcileKeys(w.ID, w.TokenID)
		if tokenID == "" {
			// An entry with no identity at all cannot be revoked or
			// displayed; drop it rather than emit a half record.
			continue
		}

		out = append(out, Session{
			ID:         id,
			TokenID:    tokenID,
			Device:     decodeDevice(w.Device),
			IPAddress:  w.IPAddress,
			CreatedAt:  w.CreatedAt,
			ExpiresAt:  w.ExpiresAt,
			LastUsedAt: reconcileLastUsed(w.LastUsed, w.LastUsedAt),
			Current:    w.IsCurrent,
		})
	}
	return out, nil
}

func decodeEntries(payload []byte) ([]wireSession, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, ErrUnrecognizedShape
	}

	// Shape 1: bare array.
	if trimmed[0] == '[' {
		var entries []wireSession
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	if trimmed[0] != '{' {
		return nil, ErrUnrecognizedShape
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}

	// Shape 2: {"sessions": [...]}.
	if env.Sessions != nil {
		return env.Sessions, nil
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrUnrecognizedShape
	}

	// Shape 3: {"data": [...]}.
	if data[0] == '[' {
		var entries []wireSession
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	// Shape 4: {"data": {"sessions": [...]}}.
	if data[0] == '{' {
		var inner dataEnvelope
		if err := json.Unmarshal(data, &inner); err != nil {
			return nil, err
		}
		if inner.Sessions != nil {
			return inner.Sessions, nil
		}
	}

	return nil, ErrUnrecognizedShape
}

func reconcileKeys(id, tokenID string) (string, string) {
	switch {
	case id == "" && tokenID == "":
		return "", ""
	case id == "":
		return tokenID, tokenID
	case tokenID == "":
		return id, id
	default:
		return id, tokenID
	}
}

func reconcileLastUsed(lastUsed, lastUsedAt *time.Time) time.Time {
	if lastUsedAt != nil {
		return *lastUsedAt
	}
	if lastUsed != nil {
		return *lastUsed
	}
	return time.Time{}
}

func decodeDevice(raw json.RawMessage) Device {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Device{}
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Device{}
		}
		return Device{Raw: s}
	}

	var d wireDevice
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return Device{}
	}
	return Device{Type: d.Type, Browser: d.Browser, OS: d.OS}
}
