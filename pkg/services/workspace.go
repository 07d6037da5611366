package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/praveenpotnurii/BifrostLink/pkg/config"
	"github.com/praveenpotnurii/BifrostLink/pkg/gateway"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

// Tab is one view of the console.
type Tab string

const (
	TabConsole   Tab = "console"
	TabUsers     Tab = "users"
	TabAgents    Tab = "agents"
	TabDatabases Tab = "databases"
)

// Tabs lists the views in display order.
var Tabs = []Tab{TabConsole, TabUsers, TabAgents, TabDatabases}

// ParseTab accepts a tab name, case-insensitively.
func ParseTab(s string) (Tab, error) {
	for _, tab := range Tabs {
		if strings.EqualFold(s, string(tab)) {
			return tab, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q (expected console, users, agents or databases)", s)
}

// Workspace wires the registries, forms, selection, console and probe
// together and decides what each tab fetches.
type Workspace struct {
	Users     *Registry[models.User, models.UserForm]
	Agents    *Registry[models.Agent, models.AgentForm]
	Databases *Registry[models.Database, models.DatabaseForm]

	UserForm     *FormController[models.User, models.UserForm]
	AgentForm    *FormController[models.Agent, models.AgentForm]
	DatabaseForm *FormController[models.Database, models.DatabaseForm]

	Selection *SelectionGuard
	Console   *QueryConsole
	Probe     *ConnectivityProbe // nil when probing is disabled

	logger *zap.Logger

	mu     sync.Mutex
	active Tab
}

// NewWorkspace builds a workspace over a gateway client.
func NewWorkspace(client *gateway.Client, cfg config.ConsoleConfig, logger *zap.Logger) *Workspace {
	w := &Workspace{
		Users:     NewRegistry[models.User, models.UserForm](client.Users(), cfg.SuccessTTL, logger),
		Agents:    NewRegistry[models.Agent, models.AgentForm](client.Agents(), cfg.SuccessTTL, logger),
		Databases: NewRegistry[models.Database, models.DatabaseForm](client.Databases(), cfg.SuccessTTL, logger),
		Selection: NewSelectionGuard(logger),
		logger:    logger.Named("workspace"),
		active:    TabConsole,
	}
	w.Databases.AddValidator(ValidateDatabaseConnection)
	w.Selection.Attach(w.Databases)

	w.UserForm = NewFormController(w.Users, DefaultUserForm, models.NewUserForm)
	w.AgentForm = NewFormController(w.Agents, DefaultAgentForm, models.NewAgentForm)
	w.DatabaseForm = NewFormController(w.Databases, DefaultDatabaseForm, models.NewDatabaseForm)

	var gate ConnectionGate
	if cfg.ProbeEnabled {
		w.Probe = NewConnectivityProbe(client, cfg.ProbeInterval, logger)
		if cfg.RequireConnected {
			gate = w.Probe
		}
	}
	w.Console = NewQueryConsole(client, w.Selection, gate, cfg.DefaultQuery, logger)
	return w
}

// Start launches the probe (when enabled) and activates the console tab.
func (w *Workspace) Start(ctx context.Context) error {
	if w.Probe != nil {
		if err := w.Probe.Start(ctx); err != nil {
			return err
		}
	}
	return w.Activate(ctx, TabConsole)
}

// Activate switches tabs and fetches the collections the tab shows. The
// console needs the databases for selection; the databases tab also needs
// the agents for its form's agent selector. Failures are held in each
// collection's scope and joined in the returned error.
func (w *Workspace) Activate(ctx context.Context, tab Tab) error {
	w.mu.Lock()
	w.active = tab
	w.mu.Unlock()

	w.logger.Debug("Activated tab", zap.String("tab", string(tab)))

	var errs []error
	for _, fetch := range w.fetchersFor(tab) {
		if err := fetch(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ActiveTab returns the current tab.
func (w *Workspace) ActiveTab() Tab {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

// Close stops the probe and releases timers.
func (w *Workspace) Close() {
	if w.Probe != nil {
		w.Probe.Stop()
	}
	w.Console.Close()
	w.Users.Close()
	w.Agents.Close()
	w.Databases.Close()
}

func (w *Workspace) fetchersFor(tab Tab) []func(context.Context) error {
	switch tab {
	case TabConsole:
		return []func(context.Context) error{w.Databases.FetchAll}
	case TabUsers:
		return []func(context.Context) error{w.Users.FetchAll}
	case TabAgents:
		return []func(context.Context) error{w.Agents.FetchAll}
	case TabDatabases:
		return []func(context.Context) error{w.Databases.FetchAll, w.Agents.FetchAll}
	}
	return nil
}
