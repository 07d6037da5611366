package models

import (
	"strconv"
	"strings"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
	"github.com/praveenpotnurii/BifrostLink/pkg/jsonutil"
	"github.com/praveenpotnurii/BifrostLink/pkg/logging"
)

// DatabaseType is the engine behind a registered database.
type DatabaseType string

const (
	DatabaseTypeMySQL    DatabaseType = "mysql"
	DatabaseTypePostgres DatabaseType = "postgres"
	DatabaseTypeMSSQL    DatabaseType = "mssql"
	DatabaseTypeMongoDB  DatabaseType = "mongodb"
)

// ValidDatabaseTypes lists the supported engines in display order.
var ValidDatabaseTypes = []DatabaseType{
	DatabaseTypeMySQL,
	DatabaseTypePostgres,
	DatabaseTypeMSSQL,
	DatabaseTypeMongoDB,
}

// IsValidDatabaseType checks if the given type is supported.
func IsValidDatabaseType(t DatabaseType) bool {
	for _, v := range ValidDatabaseTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Database is a registered connection profile. AgentID is a soft reference to
// Agent.AgentID and is not validated client-side.
type Database struct {
	ID           int                 `json:"id"`
	DatabaseName string              `json:"database_name"`
	Type         DatabaseType        `json:"type"`
	AgentID      string              `json:"agent_id"`
	Host         string              `json:"host"`
	Port         jsonutil.FlexString `json:"port"`
	Username     string              `json:"username"`
	Password     string              `json:"password"`
	DBName       string              `json:"db_name"`
	Description  string              `json:"description"`
	CreatedAt    string              `json:"created_at,omitempty"`
	UpdatedAt    string              `json:"updated_at,omitempty"`
}

func (d Database) EntityID() int { return d.ID }

// Redacted returns a copy safe to print or log.
func (d Database) Redacted() Database {
	if d.Password != "" {
		d.Password = logging.RedactedText
	}
	return d
}

// DatabaseForm holds the editable Database fields.
type DatabaseForm struct {
	DatabaseName string       `json:"database_name"`
	Type         DatabaseType `json:"type"`
	AgentID      string       `json:"agent_id"`
	Host         string       `json:"host"`
	Port         string       `json:"port"`
	Username     string       `json:"username"`
	Password     string       `json:"password"`
	DBName       string       `json:"db_name"`
	Description  string       `json:"description"`
}

// NewDatabaseForm seeds a form from an existing database.
func NewDatabaseForm(d Database) DatabaseForm {
	return DatabaseForm{
		DatabaseName: d.DatabaseName,
		Type:         d.Type,
		AgentID:      d.AgentID,
		Host:         d.Host,
		Port:         d.Port.String(),
		Username:     d.Username,
		Password:     d.Password,
		DBName:       d.DBName,
		Description:  d.Description,
	}
}

// Validate requires every field except password and description, a known
// engine type and a numeric port.
func (f DatabaseForm) Validate() error {
	required := []struct {
		field, label, value string
	}{
		{"database_name", "Database name", f.DatabaseName},
		{"type", "Type", string(f.Type)},
		{"agent_id", "Agent", f.AgentID},
		{"host", "Host", f.Host},
		{"port", "Port", f.Port},
		{"username", "Username", f.Username},
		{"db_name", "DB name", f.DBName},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperrors.NewValidationError(r.field, r.label+" is required")
		}
	}
	if !IsValidDatabaseType(f.Type) {
		return apperrors.NewValidationError("type", "Unsupported database type: "+string(f.Type))
	}
	port, err := strconv.Atoi(strings.TrimSpace(f.Port))
	if err != nil || port <= 0 || port > 65535 {
		return apperrors.NewValidationError("port", "Port must be a number between 1 and 65535")
	}
	return nil
}

// AsDatabase projects the form onto a Database (without id / timestamps).
func (f DatabaseForm) AsDatabase() Database {
	return Database{
		DatabaseName: f.DatabaseName,
		Type:         f.Type,
		AgentID:      f.AgentID,
		Host:         f.Host,
		Port:         jsonutil.FlexString(strings.TrimSpace(f.Port)),
		Username:     f.Username,
		Password:     f.Password,
		DBName:       f.DBName,
		Description:  f.Description,
	}
}
