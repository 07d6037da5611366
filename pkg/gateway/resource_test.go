package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
	"github.com/praveenpotnurii/BifrostLink/pkg/testhelpers"
)

func TestResource_ListKeepsServerOrder(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	fake.AddDatabase(models.Database{DatabaseName: "zeta", Port: "5432"})
	fake.AddDatabase(models.Database{DatabaseName: "alpha", Port: "3306"})
	client := newTestClient(t, fake.URL(), 0)

	dbs, err := client.Databases().List(context.Background())
	require.NoError(t, err)
	require.Len(t, dbs, 2)
	assert.Equal(t, "zeta", dbs[0].DatabaseName)
	assert.Equal(t, "alpha", dbs[1].DatabaseName)
	assert.Equal(t, "3306", dbs[1].Port.String())
}

func TestResource_ListEmptyIsNotNil(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	client := newTestClient(t, fake.URL(), 0)

	users, err := client.Users().List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestResource_ListRetriesServerErrors(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	fake.AddUser(models.User{Username: "alice"})
	fake.FailNext(http.MethodGet, "/api/users", http.StatusServiceUnavailable, "")
	client := newTestClient(t, fake.URL(), 2)

	users, err := client.Users().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 2, fake.Calls(http.MethodGet, "/api/users"))
}

func TestResource_ListFallbackMessage(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	fake.FailNext(http.MethodGet, "/api/databases", http.StatusInternalServerError, "")
	client := newTestClient(t, fake.URL(), 0)

	_, err := client.Databases().List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch databases", apperrors.UserMessage(err))
}

func TestResource_CreateAgentSendsPrefixedID(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	client := newTestClient(t, fake.URL(), 0)

	created, err := client.Agents().Create(context.Background(), models.AgentForm{AgentIDSuffix: "test1", Name: "Test"})
	require.NoError(t, err)
	assert.Equal(t, "agent-test1", created.AgentID.String())
	assert.Equal(t, models.AgentStatusDisconnected, created.Status)

	assert.JSONEq(t, `{"agent_id":"agent-test1","name":"Test","description":""}`,
		string(fake.LastBody(http.MethodPost, "/api/agents")))
}

func TestResource_ServerErrorField(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	fake.AddAgent(models.Agent{AgentID: models.AgentIDFromSuffix("dup"), Name: "first"})
	client := newTestClient(t, fake.URL(), 0)

	_, err := client.Agents().Create(context.Background(), models.AgentForm{AgentIDSuffix: "dup", Name: "second"})
	var serverErr *apperrors.ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "Agent ID already exists", serverErr.Message)
	assert.Equal(t, "create agent", serverErr.Op)
}

func TestResource_UpdateAndDelete(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	user := fake.AddUser(models.User{Username: "alice", Email: "a@example.com", Teamname: "core"})
	client := newTestClient(t, fake.URL(), 0)
	users := client.Users()

	updated, err := users.Update(context.Background(), user.ID, models.UserForm{Username: "alice", Email: "alice@example.com", Teamname: "core"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", updated.Email)

	require.NoError(t, users.Delete(context.Background(), user.ID))
	assert.Empty(t, fake.Users())

	err = users.Delete(context.Background(), user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, "User not found", apperrors.UserMessage(err))
}

func TestResource_MutationFallbackMessages(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	fake.FailNext(http.MethodDelete, "/api/agents/9", http.StatusInternalServerError, "boom")
	client := newTestClient(t, fake.URL(), 3)

	err := client.Agents().Delete(context.Background(), 9)
	assert.Equal(t, "Failed to delete agent", apperrors.UserMessage(err))
	assert.Equal(t, 1, fake.Calls(http.MethodDelete, "/api/agents/9"), "mutations are never retried")

	assert.Equal(t, "Failed to update database", MutationFailedMessage("update", models.KindDatabase))
	assert.Equal(t, "Failed to fetch agents", FetchFailedMessage(models.KindAgent))
}

func TestResource_ListKeepsUnprefixedAgentRows(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"agent_id":"agent-ok","name":"OK"},{"id":2,"agent_id":"legacy","name":"Old"}]`))
	}))
	defer server.Close()
	client := newTestClient(t, server.URL, 2)

	agents, err := client.Agents().List(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "ok", agents[0].AgentID.Suffix())
	assert.False(t, agents[0].AgentID.IsLegacy())
	assert.Equal(t, "legacy", agents[1].AgentID.String())
	assert.True(t, agents[1].AgentID.IsLegacy())
	assert.Equal(t, int32(1), calls.Load())
}

func TestResource_ListDoesNotRetryUndecodableBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"agent_id":`))
	}))
	defer server.Close()
	client := newTestClient(t, server.URL, 2)

	_, err := client.Agents().List(context.Background())
	var transportErr *apperrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.True(t, transportErr.Permanent)
	assert.Contains(t, apperrors.UserMessage(err), "Failed to fetch agents: failed to parse response")
	assert.Equal(t, int32(1), calls.Load())
}
