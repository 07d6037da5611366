package services

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
	_ "github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource/engines"
	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

// FormMode is whether a form creates a new entity or edits an existing one.
type FormMode string

const (
	FormClosed FormMode = "closed"
	FormCreate FormMode = "create"
	FormEdit   FormMode = "edit"
)

// ErrFormClosed is returned when submitting a form that is not open.
var ErrFormClosed = errors.New("form is not open")

// FormController runs the open/edit/submit/close lifecycle of one form over a
// registry. It never retries or debounces; every Submit is one registry call.
type FormController[T models.Entity, F models.Form] struct {
	registry *Registry[T, F]
	defaults func() F
	seed     func(T) F

	mu        sync.Mutex
	mode      FormMode
	editingID *int
	form      F
	err       string
}

// NewFormController creates a closed form. defaults builds a create-mode
// form; seed builds an edit-mode form from an existing entity.
func NewFormController[T models.Entity, F models.Form](registry *Registry[T, F], defaults func() F, seed func(T) F) *FormController[T, F] {
	return &FormController[T, F]{
		registry: registry,
		defaults: defaults,
		seed:     seed,
		mode:     FormClosed,
	}
}

// Open seeds the form from existing (edit mode) or from defaults (create mode
// when existing is nil).
func (c *FormController[T, F]) Open(existing *T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.err = ""
	if existing == nil {
		c.mode = FormCreate
		c.editingID = nil
		c.form = c.defaults()
		return
	}
	id := (*existing).EntityID()
	c.mode = FormEdit
	c.editingID = &id
	c.form = c.seed(*existing)
}

// Close clears the form and any pending scoped error.
func (c *FormController[T, F]) Close() {
	c.mu.Lock()
	var zero F
	c.mode = FormClosed
	c.editingID = nil
	c.form = zero
	c.err = ""
	c.mu.Unlock()

	c.registry.ClearError()
}

// Form returns the current form values.
func (c *FormController[T, F]) Form() F {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Edit applies fn to the form values.
func (c *FormController[T, F]) Edit(fn func(form *F)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.form)
}

// Mode returns the form's mode.
func (c *FormController[T, F]) Mode() FormMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// IsOpen reports whether the form is open in either mode.
func (c *FormController[T, F]) IsOpen() bool {
	return c.Mode() != FormClosed
}

// EditingID returns the id being edited, if in edit mode.
func (c *FormController[T, F]) EditingID() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editingID == nil {
		return 0, false
	}
	return *c.editingID, true
}

// Error returns the message from the last failed submission.
func (c *FormController[T, F]) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Submit delegates to the registry. On success the form closes; on failure it
// stays open with the error message for correction.
func (c *FormController[T, F]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.mode == FormClosed {
		c.mu.Unlock()
		return ErrFormClosed
	}
	form := c.form
	var editingID *int
	if c.editingID != nil {
		id := *c.editingID
		editingID = &id
	}
	c.mu.Unlock()

	if err := c.registry.Submit(ctx, form, editingID); err != nil {
		c.mu.Lock()
		c.err = apperrors.UserMessage(err)
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	var zero F
	c.mode = FormClosed
	c.editingID = nil
	c.form = zero
	c.err = ""
	c.mu.Unlock()
	return nil
}

// Option is one entry of a selector.
type Option struct {
	Value string
	Label string
}

// AgentPlaceholder is the empty first entry of the database form's agent
// selector.
var AgentPlaceholder = Option{Value: "", Label: "Select an agent"}

// AgentOptions lists the agents a database can be bound to, after the empty
// placeholder. With no agents only the placeholder is offered.
func AgentOptions(agents []models.Agent) []Option {
	options := make([]Option, 0, len(agents)+1)
	options = append(options, AgentPlaceholder)
	for _, agent := range agents {
		options = append(options, Option{
			Value: agent.AgentID.String(),
			Label: agent.Name + " (" + agent.AgentID.String() + ")",
		})
	}
	return options
}

// DatabaseTypeOptions lists the registered engines.
func DatabaseTypeOptions() []Option {
	engines := datasource.RegisteredEngines()
	options := make([]Option, 0, len(engines))
	for _, engine := range engines {
		options = append(options, Option{Value: string(engine.Type), Label: engine.DisplayName})
	}
	return options
}

// Form defaults and seeds for each kind.

func DefaultUserForm() models.UserForm {
	return models.UserForm{}
}

func DefaultAgentForm() models.AgentForm {
	return models.AgentForm{}
}

// DefaultDatabaseForm starts with MySQL and its default port.
func DefaultDatabaseForm() models.DatabaseForm {
	form := models.DatabaseForm{Type: models.DatabaseTypeMySQL}
	if port := datasource.DefaultPort(form.Type); port > 0 {
		form.Port = strconv.Itoa(port)
	}
	return form
}

// ValidateDatabaseConnection checks the form's settings against the engine's
// driver. Used as an extra registry validator for databases.
func ValidateDatabaseConnection(form models.DatabaseForm) error {
	return datasource.Validate(form.AsDatabase())
}
