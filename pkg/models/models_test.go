package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
)

func TestKind_Paths(t *testing.T) {
	assert.Equal(t, "users", KindUser.Plural())
	assert.Equal(t, "/api/agents", KindAgent.CollectionPath())
	assert.Equal(t, "/api/databases", KindDatabase.CollectionPath())
	assert.Equal(t, "Database", KindDatabase.Title())
}

func TestUserForm_Validate(t *testing.T) {
	valid := UserForm{Username: "alice", Email: "alice@example.com", Teamname: "core"}
	require.NoError(t, valid.Validate())

	missingTeam := valid
	missingTeam.Teamname = "  "
	err := missingTeam.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	var validationErr *apperrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "teamname", validationErr.Field)
}

func validDatabaseForm() DatabaseForm {
	return DatabaseForm{
		DatabaseName: "orders",
		Type:         DatabaseTypePostgres,
		AgentID:      "agent-east",
		Host:         "db.internal",
		Port:         "5432",
		Username:     "app",
		DBName:       "orders",
	}
}

func TestDatabaseForm_Validate(t *testing.T) {
	require.NoError(t, validDatabaseForm().Validate(), "password and description are optional")

	tests := []struct {
		name   string
		mutate func(f *DatabaseForm)
		field  string
	}{
		{"missing name", func(f *DatabaseForm) { f.DatabaseName = "" }, "database_name"},
		{"missing agent", func(f *DatabaseForm) { f.AgentID = "" }, "agent_id"},
		{"missing host", func(f *DatabaseForm) { f.Host = "" }, "host"},
		{"missing db name", func(f *DatabaseForm) { f.DBName = "" }, "db_name"},
		{"unknown type", func(f *DatabaseForm) { f.Type = "oracle" }, "type"},
		{"non numeric port", func(f *DatabaseForm) { f.Port = "abc" }, "port"},
		{"port out of range", func(f *DatabaseForm) { f.Port = "70000" }, "port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validDatabaseForm()
			tt.mutate(&form)
			var validationErr *apperrors.ValidationError
			require.ErrorAs(t, form.Validate(), &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestDatabase_PortAcceptsNumbers(t *testing.T) {
	var db Database
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"database_name":"orders","type":"mysql","port":3306}`), &db))
	assert.Equal(t, "3306", db.Port.String())
	assert.Equal(t, "3306", NewDatabaseForm(db).Port)
}

func TestDatabase_Redacted(t *testing.T) {
	db := Database{ID: 1, Password: "hunter2"}
	assert.Equal(t, "[REDACTED]", db.Redacted().Password)
	assert.Equal(t, "hunter2", db.Password, "original is untouched")
	assert.Equal(t, "", Database{}.Redacted().Password)
}
