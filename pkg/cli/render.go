package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
	"github.com/praveenpotnurii/BifrostLink/pkg/resultset"
	"github.com/praveenpotnurii/BifrostLink/pkg/services"
)

func writeTable(out io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func renderUsers(out io.Writer, users []models.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(out, "No users found")
		return err
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{strconv.Itoa(u.ID), u.Username, u.Email, u.Teamname, u.CreatedAt})
	}
	return writeTable(out, []string{"ID", "USERNAME", "EMAIL", "TEAM", "CREATED"}, rows)
}

func renderAgents(out io.Writer, agents []models.Agent) error {
	if len(agents) == 0 {
		_, err := fmt.Fprintln(out, "No agents found")
		return err
	}
	rows := make([][]string, 0, len(agents))
	for _, a := range agents {
		status := string(a.Status)
		if status == "" {
			status = string(models.AgentStatusDisconnected)
		}
		rows = append(rows, []string{strconv.Itoa(a.ID), a.AgentID.String(), a.Name, status, a.Description})
	}
	return writeTable(out, []string{"ID", "AGENT ID", "NAME", "STATUS", "DESCRIPTION"}, rows)
}

// renderDatabases marks the selected database with "*".
func renderDatabases(out io.Writer, databases []models.Database, selected int, hasSelection bool) error {
	if len(databases) == 0 {
		_, err := fmt.Fprintln(out, "No databases found")
		return err
	}
	rows := make([][]string, 0, len(databases))
	for _, db := range databases {
		marker := ""
		if hasSelection && db.ID == selected {
			marker = "*"
		}
		rows = append(rows, []string{
			marker,
			strconv.Itoa(db.ID),
			db.DatabaseName,
			engineName(db.Type),
			db.Host + ":" + db.Port.String(),
			db.DBName,
			db.AgentID,
		})
	}
	return writeTable(out, []string{"", "ID", "NAME", "TYPE", "ADDRESS", "DB", "AGENT"}, rows)
}

func engineName(t models.DatabaseType) string {
	if reg, ok := datasource.Lookup(t); ok {
		return reg.Info.DisplayName
	}
	return string(t)
}

// renderResultTable prints the parsed result followed by the row count and
// the server-reported duration.
func renderResultTable(out io.Writer, table resultset.Table, duration string) error {
	if len(table.Headers) > 0 {
		if err := writeTable(out, table.Headers, table.Rows); err != nil {
			return err
		}
	}
	summary := table.RowCountLabel()
	if duration != "" {
		summary += " (" + duration + ")"
	}
	_, err := fmt.Fprintln(out, summary)
	return err
}

func renderConsole(out io.Writer, state services.ConsoleState) error {
	switch state.Status {
	case services.StatusError:
		_, err := fmt.Fprintf(out, "Error: %s\n", state.Error)
		return err
	case services.StatusSuccess:
		duration := ""
		if state.Result != nil {
			duration = state.Result.Duration
		}
		return renderResultTable(out, state.Table, duration)
	}
	return nil
}

func renderStatus(out io.Writer, report models.AgentStatusReport) error {
	state := "disconnected"
	if report.Connected {
		state = "connected"
	}
	_, err := fmt.Fprintf(out, "Agent %s: %s\n", state, report.Message)
	return err
}

// renderYAML prints v as YAML. Database passwords are redacted by the caller.
func renderYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to render yaml: %w", err)
	}
	return enc.Close()
}

// userView and friends are the YAML shapes used by "show".
type userView struct {
	ID        int    `yaml:"id"`
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Teamname  string `yaml:"teamname"`
	CreatedAt string `yaml:"created_at,omitempty"`
	UpdatedAt string `yaml:"updated_at,omitempty"`
}

type agentView struct {
	ID          int    `yaml:"id"`
	AgentID     string `yaml:"agent_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Status      string `yaml:"status,omitempty"`
	CreatedAt   string `yaml:"created_at,omitempty"`
	UpdatedAt   string `yaml:"updated_at,omitempty"`
}

type databaseView struct {
	ID           int    `yaml:"id"`
	DatabaseName string `yaml:"database_name"`
	Type         string `yaml:"type"`
	AgentID      string `yaml:"agent_id"`
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password,omitempty"`
	DBName       string `yaml:"db_name"`
	Description  string `yaml:"description,omitempty"`
	DSN          string `yaml:"dsn,omitempty"`
	CreatedAt    string `yaml:"created_at,omitempty"`
	UpdatedAt    string `yaml:"updated_at,omitempty"`
}

func newUserView(u models.User) userView {
	return userView{
		ID: u.ID, Username: u.Username, Email: u.Email, Teamname: u.Teamname,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func newAgentView(a models.Agent) agentView {
	return agentView{
		ID: a.ID, AgentID: a.AgentID.String(), Name: a.Name, Description: a.Description,
		Status: string(a.Status), CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

// newDatabaseView always redacts the password. withDSN adds the redacted
// engine connection string.
func newDatabaseView(db models.Database, withDSN bool) (databaseView, error) {
	redacted := db.Redacted()
	view := databaseView{
		ID:           redacted.ID,
		DatabaseName: redacted.DatabaseName,
		Type:         string(redacted.Type),
		AgentID:      redacted.AgentID,
		Host:         redacted.Host,
		Port:         redacted.Port.String(),
		Username:     redacted.Username,
		Password:     redacted.Password,
		DBName:       redacted.DBName,
		Description:  redacted.Description,
		CreatedAt:    redacted.CreatedAt,
		UpdatedAt:    redacted.UpdatedAt,
	}
	if withDSN {
		dsn, err := datasource.ConnectionString(db, true)
		if err != nil {
			return view, err
		}
		view.DSN = dsn
	}
	return view, nil
}
