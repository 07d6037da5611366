package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
)

// AgentStatus is computed by the gateway from its live agent connections.
type AgentStatus string

const (
	AgentStatusConnected    AgentStatus = "connected"
	AgentStatusDisconnected AgentStatus = "disconnected"
)

// Agent is a registered remote worker. AgentID is immutable after creation.
type Agent struct {
	ID          int         `json:"id"`
	AgentID     AgentID     `json:"agent_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      AgentStatus `json:"status,omitempty"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
}

func (a Agent) EntityID() int { return a.ID }

// AgentForm holds the editable Agent fields. Only the identifier suffix is
// ever edited; the full identifier is rebuilt at submission time.
type AgentForm struct {
	AgentIDSuffix string
	Name          string
	Description   string

	// IdentifierLocked is set in edit mode: the suffix is shown read-only.
	IdentifierLocked bool

	// LegacyIdentifier is set when the agent being edited has an unprefixed
	// identifier. Such an agent cannot be updated from this form.
	LegacyIdentifier bool
}

// NewAgentForm seeds an edit-mode form from an existing agent.
func NewAgentForm(a Agent) AgentForm {
	return AgentForm{
		AgentIDSuffix:    a.AgentID.Suffix(),
		Name:             a.Name,
		Description:      a.Description,
		IdentifierLocked: true,
		LegacyIdentifier: a.AgentID.IsLegacy(),
	}
}

// AgentID rebuilds the full identifier from the suffix.
func (f AgentForm) AgentID() AgentID {
	return AgentIDFromSuffix(f.AgentIDSuffix)
}

// Validate requires the identifier suffix and the name.
func (f AgentForm) Validate() error {
	switch {
	case f.LegacyIdentifier:
		return apperrors.NewValidationError("agent_id",
			fmt.Sprintf("Agent ID %q has no %q prefix and cannot be edited", f.AgentIDSuffix, AgentIDPrefix))
	case strings.TrimSpace(f.AgentIDSuffix) == "":
		return apperrors.NewValidationError("agent_id", "Agent ID is required")
	case strings.TrimSpace(f.Name) == "":
		return apperrors.NewValidationError("name", "Name is required")
	}
	return nil
}

// MarshalJSON emits the gateway request body.
func (f AgentForm) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AgentID     AgentID `json:"agent_id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
	}{
		AgentID:     f.AgentID(),
		Name:        f.Name,
		Description: f.Description,
	})
}
