package core

import "time"

// Status is the outward state of an availability check.
type Status string

const (
	StatusIdle        Status = "idle"
	StatusChecking    Status = "checking"
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
	StatusError       Status = "error"
)

// Terminal reports whether the status is a settled outcome rather than an
// intermediate state.
func (s Status) Terminal() bool {
	switch s {
	case StatusAvailable, StatusUnavailable, StatusError:
		return true
	default:
		return false
	}
}

// Provenance source labels.
const (
	SourceValidation = "validation"
	SourceIdentity   = "identity"
	SourceRateLimit  = "ratelimit"
	SourceCache      = "cache"
	SourceStore      = "store"
)

// Provenance captures metadata about how a check was resolved.
type Provenance struct {
	CheckID     string    `json:"check_id"`
	RequestedAt time.Time `json:"requested_at"`
	ResolvedAt  time.Time `json:"resolved_at"`
	Source      string    `json:"source"`
	FromCache   bool      `json:"from_cache"`
	ToolVersion string    `json:"tool_version,omitempty"`
}

// CheckResult reports the outcome of one availability check.
//
// Valid reflects syntactic validity of the input; Available is only ever
// true together with Valid. Idle results carry neither.
type CheckResult struct {
	Nickname   string     `json:"nickname"`
	Canonical  string     `json:"canonical"`
	Status     Status     `json:"status"`
	Message    string     `json:"message,omitempty"`
	Valid      bool       `json:"valid"`
	Available  bool       `json:"available"`
	Provenance Provenance `json:"provenance"`
}

// Profile is a stored account record. Canonical is the lowercase nickname
// every lookup and uniqueness decision keys on; Nickname keeps the casing
// the owner chose.
type Profile struct {
	ID          string    `json:"id"`
	Nickname    string    `json:"nickname"`
	Canonical   string    `json:"canonical"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
