package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
	"github.com/praveenpotnurii/BifrostLink/pkg/services"
)

var errQuit = errors.New("quit")

const shellHelp = `Commands:
  tab <console|users|agents|databases>  switch view and refresh it
  list                                  refresh and print the current view
  use <database-id>                     select the database queries run against
  query <sql>                           set the query text and run it
  set query <sql>                       set the query text without running it
  run                                   run the current query text
  new                                   create an entry in the current view
  edit <id>                             edit an entry in the current view
  delete <id>                           delete an entry in the current view
  show <id> [--dsn]                     print an entry as YAML
  status                                print agent connectivity
  clear                                 reset query text, result and error
  help                                  show this help
  quit                                  leave the shell

In forms, an empty answer keeps the value in brackets and "-" clears it.
`

// shell is the interactive loop over a workspace.
type shell struct {
	ws     *services.Workspace
	prompt *prompter
	out    io.Writer
	logger *zap.Logger
}

func newShell(ws *services.Workspace, prompt *prompter, out io.Writer, logger *zap.Logger) *shell {
	return &shell{ws: ws, prompt: prompt, out: out, logger: logger.Named("shell")}
}

// Run starts the workspace and reads commands until quit or end of input.
func (s *shell) Run(ctx context.Context) error {
	if err := s.ws.Start(ctx); err != nil {
		s.printError(err)
	}
	fmt.Fprintln(s.out, `BifrostLink console. Type "help" for commands.`)
	s.printSelection()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := s.prompt.line(s.promptText())
		if errors.Is(err, errInputClosed) {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return err
		}

		err = s.dispatch(ctx, strings.TrimSpace(line))
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			s.printError(err)
		}
	}
}

func (s *shell) promptText() string {
	status := ""
	if s.ws.Probe != nil {
		report := s.ws.Probe.Report()
		if report.Connected {
			status = " ok"
		} else {
			status = " ! " + report.Message
		}
	}
	return fmt.Sprintf("bifrost[%s%s]> ", s.ws.ActiveTab(), status)
}

func (s *shell) dispatch(ctx context.Context, line string) error {
	if line == "" {
		return nil
	}
	verb, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch strings.ToLower(verb) {
	case "quit", "exit":
		return errQuit
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
		return nil
	case "tab":
		if len(args) != 1 {
			return errors.New("usage: tab <console|users|agents|databases>")
		}
		tab, err := services.ParseTab(args[0])
		if err != nil {
			return err
		}
		return s.refresh(ctx, tab)
	case "list", "ls":
		return s.refresh(ctx, s.ws.ActiveTab())
	case "use":
		return s.use(args)
	case "set":
		name, value, _ := strings.Cut(rest, " ")
		if name != "query" {
			return errors.New("usage: set query <sql>")
		}
		s.ws.Console.SetQuery(strings.TrimSpace(value))
		return nil
	case "query":
		s.ws.Console.SetQuery(rest)
		return s.run(ctx)
	case "run":
		return s.run(ctx)
	case "clear":
		s.ws.Console.Clear()
		fmt.Fprintln(s.out, "Cleared")
		return nil
	case "status":
		return s.status(ctx)
	case "new":
		return s.create(ctx)
	case "edit":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return s.edit(ctx, id)
	case "delete", "rm":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return s.remove(ctx, id)
	case "show":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return s.show(id, len(args) > 1 && args[1] == "--dsn")
	}
	return fmt.Errorf("unknown command %q, type \"help\" for a list", verb)
}

// refresh activates tab and prints what it shows. Fetch failures are
// printed per collection; whatever loaded is still rendered.
func (s *shell) refresh(ctx context.Context, tab services.Tab) error {
	if err := s.ws.Activate(ctx, tab); err != nil {
		s.printError(err)
	}
	if tab == services.TabConsole {
		s.printSelection()
		fmt.Fprintf(s.out, "Query: %s\n", s.ws.Console.Query())
		return nil
	}
	return renderCollection(s.out, s.ws, tab)
}

func (s *shell) use(args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := s.ws.Selection.Select(id); err != nil {
		return fmt.Errorf("unknown database %d, run \"tab console\" or \"list\" to refresh", id)
	}
	s.printSelection()
	return nil
}

func (s *shell) run(ctx context.Context) error {
	err := s.ws.Console.Run(ctx)
	if errors.Is(err, services.ErrSuperseded) {
		return nil
	}
	return renderConsole(s.out, s.ws.Console.State())
}

func (s *shell) status(ctx context.Context) error {
	if s.ws.Probe == nil {
		fmt.Fprintln(s.out, "Connectivity probing is disabled")
		return nil
	}
	return renderStatus(s.out, s.ws.Probe.Check(ctx))
}

func (s *shell) printSelection() {
	id, ok := s.ws.Selection.Selected()
	if !ok {
		fmt.Fprintln(s.out, "No database selected")
		return
	}
	name := "unknown"
	if db, found := s.ws.Databases.Find(id); found {
		name = db.DatabaseName
	}
	fmt.Fprintf(s.out, "Using database %d (%s)\n", id, name)
	if s.ws.Selection.Stale() {
		fmt.Fprintf(s.out, "Warning: database %d is no longer listed by the gateway\n", id)
	}
}

func (s *shell) printError(err error) {
	s.logger.Debug("Command failed", zap.Error(err))
	fmt.Fprintf(s.out, "Error: %s\n", apperrors.UserMessage(err))
}

// collectionTab returns the active tab if it manages a collection.
func (s *shell) collectionTab() (services.Tab, error) {
	tab := s.ws.ActiveTab()
	if tab == services.TabConsole {
		return tab, errors.New(`switch to a collection first: "tab users", "tab agents" or "tab databases"`)
	}
	return tab, nil
}

func (s *shell) create(ctx context.Context) error {
	tab, err := s.collectionTab()
	if err != nil {
		return err
	}
	switch tab {
	case services.TabUsers:
		return runForm(ctx, s, s.ws.UserForm, s.ws.Users, nil, s.fillUser)
	case services.TabAgents:
		return runForm(ctx, s, s.ws.AgentForm, s.ws.Agents, nil, s.fillAgent)
	default:
		return runForm(ctx, s, s.ws.DatabaseForm, s.ws.Databases, nil, s.fillDatabase)
	}
}

func (s *shell) edit(ctx context.Context, id int) error {
	tab, err := s.collectionTab()
	if err != nil {
		return err
	}
	switch tab {
	case services.TabUsers:
		existing, err := find(s.ws.Users, id)
		if err != nil {
			return err
		}
		return runForm(ctx, s, s.ws.UserForm, s.ws.Users, &existing, s.fillUser)
	case services.TabAgents:
		existing, err := find(s.ws.Agents, id)
		if err != nil {
			return err
		}
		if existing.AgentID.IsLegacy() {
			return fmt.Errorf("agent %d has identifier %q without the %q prefix and cannot be edited", id, existing.AgentID, models.AgentIDPrefix)
		}
		return runForm(ctx, s, s.ws.AgentForm, s.ws.Agents, &existing, s.fillAgent)
	default:
		existing, err := find(s.ws.Databases, id)
		if err != nil {
			return err
		}
		return runForm(ctx, s, s.ws.DatabaseForm, s.ws.Databases, &existing, s.fillDatabase)
	}
}

func (s *shell) remove(ctx context.Context, id int) error {
	tab, err := s.collectionTab()
	if err != nil {
		return err
	}
	switch tab {
	case services.TabUsers:
		return removeEntity(ctx, s, s.ws.Users, id)
	case services.TabAgents:
		return removeEntity(ctx, s, s.ws.Agents, id)
	default:
		return removeEntity(ctx, s, s.ws.Databases, id)
	}
}

func (s *shell) show(id int, withDSN bool) error {
	tab, err := s.collectionTab()
	if err != nil {
		return err
	}
	switch tab {
	case services.TabUsers:
		u, err := find(s.ws.Users, id)
		if err != nil {
			return err
		}
		return renderYAML(s.out, newUserView(u))
	case services.TabAgents:
		a, err := find(s.ws.Agents, id)
		if err != nil {
			return err
		}
		return renderYAML(s.out, newAgentView(a))
	default:
		db, err := find(s.ws.Databases, id)
		if err != nil {
			return err
		}
		view, err := newDatabaseView(db, withDSN)
		if err != nil {
			return err
		}
		return renderYAML(s.out, view)
	}
}

func (s *shell) fillUser(form *models.UserForm) error {
	var err error
	if form.Username, err = s.prompt.field("Username", form.Username); err != nil {
		return err
	}
	if form.Email, err = s.prompt.field("Email", form.Email); err != nil {
		return err
	}
	form.Teamname, err = s.prompt.field("Teamname", form.Teamname)
	return err
}

func (s *shell) fillAgent(form *models.AgentForm) error {
	var err error
	if form.IdentifierLocked {
		fmt.Fprintf(s.out, "Agent ID: %s (read-only)\n", form.AgentID())
	} else {
		fmt.Fprintf(s.out, "Agent ID is prefixed with %q\n", models.AgentIDPrefix)
		if form.AgentIDSuffix, err = s.prompt.field("Agent ID suffix", form.AgentIDSuffix); err != nil {
			return err
		}
	}
	if form.Name, err = s.prompt.field("Name", form.Name); err != nil {
		return err
	}
	form.Description, err = s.prompt.field("Description", form.Description)
	return err
}

func (s *shell) fillDatabase(form *models.DatabaseForm) error {
	var err error
	if form.DatabaseName, err = s.prompt.field("Database name", form.DatabaseName); err != nil {
		return err
	}

	previous := form.Type
	engine, err := s.prompt.choose("Type", services.DatabaseTypeOptions(), string(form.Type))
	if err != nil {
		return err
	}
	form.Type = models.DatabaseType(engine)
	if form.Type != previous && (form.Port == "" || form.Port == strconv.Itoa(datasource.DefaultPort(previous))) {
		form.Port = strconv.Itoa(datasource.DefaultPort(form.Type))
	}

	if form.AgentID, err = s.prompt.choose("Agent", services.AgentOptions(s.ws.Agents.Items()), form.AgentID); err != nil {
		return err
	}
	if form.Host, err = s.prompt.field("Host", form.Host); err != nil {
		return err
	}
	if form.Port, err = s.prompt.field("Port", form.Port); err != nil {
		return err
	}
	if form.Username, err = s.prompt.field("Username", form.Username); err != nil {
		return err
	}
	if form.Password, err = s.prompt.secret("Password", form.Password); err != nil {
		return err
	}
	if form.DBName, err = s.prompt.field("DB name", form.DBName); err != nil {
		return err
	}
	form.Description, err = s.prompt.field("Description", form.Description)
	return err
}

// runForm opens the form, fills it and submits. A failed submission keeps
// the values and offers another round of editing.
func runForm[T models.Entity, F models.Form](
	ctx context.Context,
	s *shell,
	fc *services.FormController[T, F],
	registry *services.Registry[T, F],
	existing *T,
	fill func(*F) error,
) error {
	fc.Open(existing)
	defer fc.Close()

	for {
		form := fc.Form()
		if err := fill(&form); err != nil {
			return err
		}
		fc.Edit(func(f *F) { *f = form })

		err := fc.Submit(ctx)
		if err == nil {
			fmt.Fprintln(s.out, registry.Success())
			return nil
		}
		fmt.Fprintf(s.out, "Error: %s\n", fc.Error())

		again, confirmErr := s.prompt.Confirm(ctx, "Edit and resubmit?")
		if confirmErr != nil {
			return confirmErr
		}
		if !again {
			return nil
		}
	}
}

func removeEntity[T models.Entity, F models.Form](ctx context.Context, s *shell, registry *services.Registry[T, F], id int) error {
	if _, err := find(registry, id); err != nil {
		return err
	}
	err := registry.Remove(ctx, id, s.prompt)
	switch {
	case errors.Is(err, apperrors.ErrConfirmationDeclined):
		fmt.Fprintln(s.out, "Cancelled")
		return nil
	case err != nil:
		return err
	}
	fmt.Fprintln(s.out, registry.Success())
	return nil
}

func find[T models.Entity, F models.Form](registry *services.Registry[T, F], id int) (T, error) {
	entity, ok := registry.Find(id)
	if !ok {
		return entity, fmt.Errorf("%s %d not found, run \"list\" to refresh", registry.Kind(), id)
	}
	return entity, nil
}

func parseID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, errors.New("an id is required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// fetchCollection refreshes the registry behind a collection tab.
func fetchCollection(ctx context.Context, ws *services.Workspace, tab services.Tab) error {
	switch tab {
	case services.TabUsers:
		return ws.Users.FetchAll(ctx)
	case services.TabAgents:
		return ws.Agents.FetchAll(ctx)
	case services.TabDatabases:
		return ws.Databases.FetchAll(ctx)
	}
	return fmt.Errorf("%q is not a collection", tab)
}

func renderCollection(out io.Writer, ws *services.Workspace, tab services.Tab) error {
	switch tab {
	case services.TabUsers:
		return renderUsers(out, ws.Users.Items())
	case services.TabAgents:
		return renderAgents(out, ws.Agents.Items())
	case services.TabDatabases:
		selected, ok := ws.Selection.Selected()
		return renderDatabases(out, ws.Databases.Items(), selected, ok)
	}
	return nil
}
