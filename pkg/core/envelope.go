package core

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Envelope is the body shape every admin API endpoint answers with.
// Non-2xx responses always carry a human-readable Message.
type Envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message"`
}

// HasData reports whether the envelope carries a non-null data payload.
func (e *Envelope) HasData() bool {
	return e != nil && len(e.Data) > 0 && string(e.Data) != "null"
}

// Flag is the backend's integer boolean encoding: 1 means true,
// anything else (2 by default, or absent) means false.
type Flag uint

// Flag values used by the backend.
const (
	FlagUnset Flag = 0
	FlagTrue  Flag = 1
	FlagFalse Flag = 2
)

// Bool translates the integer encoding to a Go bool.
func (f Flag) Bool() bool {
	return f == FlagTrue
}

// FlagOf converts a Go bool to the backend encoding.
func FlagOf(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

// Status is the enabled/disabled marker on users, roles and menus.
type Status uint

// Status values used by the backend.
const (
	StatusNormal   Status = 1
	StatusDisabled Status = 2
)

// String returns a human-readable label.
func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Page holds the pagination fields shared by list requests.
type Page struct {
	PageNum  uint `json:"pageNum,omitempty"`
	PageSize uint `json:"pageSize,omitempty"`
}

func (p Page) encode(v url.Values) {
	if p.PageNum > 0 {
		v.Set("pageNum", strconv.FormatUint(uint64(p.PageNum), 10))
	}
	if p.PageSize > 0 {
		v.Set("pageSize", strconv.FormatUint(uint64(p.PageSize), 10))
	}
}

func setString(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setUint(v url.Values, key string, val uint) {
	if val > 0 {
		v.Set(key, strconv.FormatUint(uint64(val), 10))
	}
}
