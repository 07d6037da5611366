package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveenpotnurii/BifrostLink/pkg/config"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
	"github.com/praveenpotnurii/BifrostLink/pkg/testhelpers"
)

func newWorkspace(t *testing.T, fake *testhelpers.FakeGateway, cfg config.ConsoleConfig) *Workspace {
	t.Helper()
	if cfg.SuccessTTL == 0 {
		cfg.SuccessTTL = testTTL
	}
	if cfg.ProbeInterval == 0 {
		cfg.ProbeInterval = time.Second
	}
	if cfg.DefaultQuery == "" {
		cfg.DefaultQuery = "SELECT * FROM users;"
	}
	w := NewWorkspace(newTestClient(t, fake), cfg, testLogger(t))
	t.Cleanup(w.Close)
	return w
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		in      string
		want    Tab
		wantErr bool
	}{
		{"console", TabConsole, false},
		{"Users", TabUsers, false},
		{"AGENTS", TabAgents, false},
		{"databases", TabDatabases, false},
		{"settings", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTab(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWorkspace_ActivateFetchesPerTab(t *testing.T) {
	tests := []struct {
		tab  Tab
		want map[string]int
	}{
		{TabConsole, map[string]int{"/api/databases": 1}},
		{TabUsers, map[string]int{"/api/users": 1}},
		{TabAgents, map[string]int{"/api/agents": 1}},
		{TabDatabases, map[string]int{"/api/databases": 1, "/api/agents": 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tab), func(t *testing.T) {
			fake := testhelpers.NewFakeGateway(t)
			w := newWorkspace(t, fake, config.ConsoleConfig{})

			require.NoError(t, w.Activate(context.Background(), tt.tab))

			assert.Equal(t, tt.tab, w.ActiveTab())
			total := 0
			for path, n := range tt.want {
				assert.Equal(t, n, fake.Calls(http.MethodGet, path), path)
				total += n
			}
			assert.Equal(t, total, fake.TotalCalls())
		})
	}
}

func TestWorkspace_ConsoleAutoSelectsFirstDatabase(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	first := fake.AddDatabase(models.Database{DatabaseName: "orders"})
	fake.AddDatabase(models.Database{DatabaseName: "billing"})
	w := newWorkspace(t, fake, config.ConsoleConfig{})

	require.NoError(t, w.Start(context.Background()))

	id, ok := w.Selection.Selected()
	require.True(t, ok)
	assert.Equal(t, first.ID, id)

	require.NoError(t, w.Console.Run(context.Background()))
	assert.Equal(t, StatusSuccess, w.Console.State().Status)
}

func TestWorkspace_FetchErrorsAreScoped(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	for i := 0; i < 3; i++ {
		fake.FailNext(http.MethodGet, "/api/agents", http.StatusInternalServerError, `{"error":"agents down"}`)
	}
	w := newWorkspace(t, fake, config.ConsoleConfig{})

	err := w.Activate(context.Background(), TabDatabases)
	require.Error(t, err)

	assert.Equal(t, "agents down", w.Agents.Error())
	assert.Empty(t, w.Databases.Error())
	assert.Equal(t, StatusSuccess, w.Databases.State().Status)
}

func TestWorkspace_GatedByProbe(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	fake.AddDatabase(models.Database{DatabaseName: "orders"})
	fake.SetAgentStatus(false, "Agent disconnected")
	w := newWorkspace(t, fake, config.ConsoleConfig{ProbeEnabled: true, RequireConnected: true})

	require.NotNil(t, w.Probe)
	require.NoError(t, w.Start(context.Background()))
	require.Eventually(t, func() bool {
		return w.Probe.Report().Message == "Agent disconnected"
	}, time.Second, 10*time.Millisecond)

	err := w.Console.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, MsgAgentNotConnected, w.Console.State().Error)
	assert.Equal(t, 0, fake.Calls(http.MethodPost, "/api/execute-query"))

	fake.SetAgentStatus(true, "Agent connected")
	w.Probe.Check(context.Background())
	require.NoError(t, w.Console.Run(context.Background()))
}

func TestWorkspace_ProbeDisabled(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	w := newWorkspace(t, fake, config.ConsoleConfig{ProbeEnabled: false})

	assert.Nil(t, w.Probe)
	require.NoError(t, w.Start(context.Background()))
	assert.Equal(t, 0, fake.Calls(http.MethodGet, "/api/agent-status"))
}
