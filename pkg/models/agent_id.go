package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AgentIDPrefix is the fixed literal every agent identifier starts with.
const AgentIDPrefix = "agent-"

// AgentID is a prefixed agent identifier. The zero value is empty; any other
// value is built from a suffix or parsed from a full identifier, so code in
// this module cannot construct an unprefixed identifier.
//
// The gateway accepts any agent_id on create, so a listed agent may carry an
// unprefixed value. Decoding keeps such a value verbatim as a legacy
// identifier: it renders and can be bound to, but its agent cannot be edited.
type AgentID struct {
	suffix string
	set    bool
	legacy bool
}

// AgentIDFromSuffix builds an identifier from the user-editable suffix.
func AgentIDFromSuffix(suffix string) AgentID {
	return AgentID{suffix: suffix, set: true}
}

// ParseAgentID parses a full identifier. It fails if the prefix is missing.
func ParseAgentID(full string) (AgentID, error) {
	if !strings.HasPrefix(full, AgentIDPrefix) {
		return AgentID{}, fmt.Errorf("agent id %q does not start with %q", full, AgentIDPrefix)
	}
	return AgentID{suffix: strings.TrimPrefix(full, AgentIDPrefix), set: true}, nil
}

// StripAgentPrefix returns the suffix of a full identifier.
func StripAgentPrefix(full string) (string, error) {
	id, err := ParseAgentID(full)
	if err != nil {
		return "", err
	}
	return id.Suffix(), nil
}

// WithAgentPrefix returns the full identifier for a suffix.
func WithAgentPrefix(suffix string) string {
	return AgentIDFromSuffix(suffix).String()
}

// Suffix is the editable part. For a legacy identifier it is the whole value.
func (a AgentID) Suffix() string {
	return a.suffix
}

// String returns the full identifier, or "" for the zero value.
func (a AgentID) String() string {
	switch {
	case !a.set:
		return ""
	case a.legacy:
		return a.suffix
	}
	return AgentIDPrefix + a.suffix
}

// IsLegacy reports whether the identifier was decoded without the prefix.
func (a AgentID) IsLegacy() bool {
	return a.legacy
}

// IsZero reports whether the identifier was never set.
func (a AgentID) IsZero() bool {
	return !a.set
}

func (a AgentID) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *AgentID) UnmarshalJSON(data []byte) error {
	var full string
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	if full == "" {
		*a = AgentID{}
		return nil
	}
	parsed, err := ParseAgentID(full)
	if err != nil {
		*a = AgentID{suffix: full, set: true, legacy: true}
		return nil
	}
	*a = parsed
	return nil
}
