package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveenpotnurii/BifrostLink/pkg/models"
	"github.com/praveenpotnurii/BifrostLink/pkg/testhelpers"
)

// stubChecker answers from a fixed report or error and counts calls.
type stubChecker struct {
	mu     sync.Mutex
	report models.AgentStatusReport
	err    error
	calls  int
}

func (s *stubChecker) AgentStatus(context.Context) (*models.AgentStatusReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	report := s.report
	return &report, nil
}

func (s *stubChecker) set(report models.AgentStatusReport, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report, s.err = report, err
}

func (s *stubChecker) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestConnectivityProbe_InitialStatus(t *testing.T) {
	probe := NewConnectivityProbe(&stubChecker{}, time.Second, testLogger(t))

	assert.Equal(t, models.AgentStatusReport{Connected: false, Message: "Checking..."}, probe.Report())
	assert.False(t, probe.Connected())
}

func TestConnectivityProbe_CheckAgainstGateway(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	probe := NewConnectivityProbe(newTestClient(t, fake), time.Second, testLogger(t))

	report := probe.Check(context.Background())
	assert.True(t, report.Connected)
	assert.Equal(t, "Agent connected", report.Message)

	fake.SetAgentStatus(false, "Agent disconnected")
	report = probe.Check(context.Background())
	assert.False(t, report.Connected)
	assert.Equal(t, "Agent disconnected", report.Message)

	fake.Server.Close()
	report = probe.Check(context.Background())
	assert.Equal(t, models.AgentStatusReport{Connected: false, Message: "API unreachable"}, report)
	assert.False(t, probe.Connected())
}

func TestConnectivityProbe_OnChangeFiresOnlyOnChange(t *testing.T) {
	checker := &stubChecker{report: models.AgentStatusReport{Connected: true, Message: "Agent connected"}}
	probe := NewConnectivityProbe(checker, time.Second, testLogger(t))

	var seen []models.AgentStatusReport
	probe.OnChange(func(r models.AgentStatusReport) { seen = append(seen, r) })

	probe.Check(context.Background())
	probe.Check(context.Background())
	checker.set(models.AgentStatusReport{}, errors.New("dial tcp: connection refused"))
	probe.Check(context.Background())

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Connected)
	assert.Equal(t, "API unreachable", seen[1].Message)
	assert.Equal(t, 3, checker.count())
}

func TestConnectivityProbe_StartChecksImmediately(t *testing.T) {
	checker := &stubChecker{report: models.AgentStatusReport{Connected: true, Message: "Agent connected"}}
	probe := NewConnectivityProbe(checker, time.Second, testLogger(t))

	require.NoError(t, probe.Start(context.Background()))
	t.Cleanup(probe.Stop)

	require.Eventually(t, probe.Connected, 500*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, 1, checker.count())

	// Starting again does not schedule a second poller.
	require.NoError(t, probe.Start(context.Background()))
}

func TestConnectivityProbe_PollsOnInterval(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the cron schedule")
	}

	checker := &stubChecker{report: models.AgentStatusReport{Connected: true, Message: "Agent connected"}}
	probe := NewConnectivityProbe(checker, time.Second, testLogger(t))
	require.NoError(t, probe.Start(context.Background()))

	require.Eventually(t, func() bool { return checker.count() >= 2 }, 3*time.Second, 50*time.Millisecond)

	probe.Stop()
	calls := checker.count()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, calls, checker.count(), "no checks after Stop")
}

func TestConnectivityProbe_StopsWhenContextEnds(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the cron schedule")
	}

	checker := &stubChecker{report: models.AgentStatusReport{Connected: true, Message: "Agent connected"}}
	probe := NewConnectivityProbe(checker, time.Second, testLogger(t))
	var changes int
	var mu sync.Mutex
	probe.OnChange(func(models.AgentStatusReport) {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, probe.Start(ctx))
	t.Cleanup(probe.Stop)
	require.Eventually(t, probe.Connected, 500*time.Millisecond, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool { return !probe.Running() }, time.Second, 10*time.Millisecond)

	calls := checker.count()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, calls, checker.count(), "no checks after the context ends")
	assert.True(t, probe.Connected())
	mu.Lock()
	assert.Equal(t, 1, changes)
	mu.Unlock()

	// A stopped probe can be started again.
	require.NoError(t, probe.Start(context.Background()))
	assert.True(t, probe.Running())
}

func TestConnectivityProbe_CancelledCheckKeepsReport(t *testing.T) {
	fake := testhelpers.NewFakeGateway(t)
	probe := NewConnectivityProbe(newTestClient(t, fake), time.Second, testLogger(t))
	require.True(t, probe.Check(context.Background()).Connected)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := probe.Check(ctx)
	assert.Equal(t, models.AgentStatusReport{Connected: true, Message: "Agent connected"}, report)
	assert.True(t, probe.Connected())
}

func TestConnectivityProbe_StopWithoutStart(t *testing.T) {
	probe := NewConnectivityProbe(&stubChecker{}, time.Second, testLogger(t))
	probe.Stop()
}
