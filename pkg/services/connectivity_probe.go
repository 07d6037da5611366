package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/praveenpotnurii/BifrostLink/pkg/gateway"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

// StatusChecker reports gateway-side agent connectivity.
// *gateway.Client satisfies it.
type StatusChecker interface {
	AgentStatus(ctx context.Context) (*models.AgentStatusReport, error)
}

// InitialStatus is reported until the first check completes.
var InitialStatus = models.AgentStatusReport{Connected: false, Message: "Checking..."}

// ConnectivityProbe polls agent status on a fixed interval. Any failure to
// reach the gateway is reported as disconnected with "API unreachable".
type ConnectivityProbe struct {
	checker  StatusChecker
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	report  models.AgentStatusReport
	sched   *cron.Cron
	cancel  context.CancelFunc
	changed []func(models.AgentStatusReport)
	wg      sync.WaitGroup
}

// NewConnectivityProbe creates a stopped probe.
func NewConnectivityProbe(checker StatusChecker, interval time.Duration, logger *zap.Logger) *ConnectivityProbe {
	return &ConnectivityProbe{
		checker:  checker,
		interval: interval,
		logger:   logger.Named("probe"),
		report:   InitialStatus,
	}
}

// OnChange registers fn to be called whenever the connected flag or message
// changes.
func (p *ConnectivityProbe) OnChange(fn func(models.AgentStatusReport)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, fn)
}

// Check runs one probe and records the result.
func (p *ConnectivityProbe) Check(ctx context.Context) models.AgentStatusReport {
	checkCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	report := models.AgentStatusReport{Connected: false, Message: gateway.MsgAgentUnreachable}
	got, err := p.checker.AgentStatus(checkCtx)
	switch {
	case err != nil && ctx.Err() != nil:
		// The caller gave up; that says nothing about the gateway.
		p.logger.Debug("Agent status check abandoned", zap.Error(err))
		return p.Report()
	case err != nil:
		p.logger.Debug("Agent status check failed", zap.Error(err))
	default:
		report = *got
	}

	p.mu.Lock()
	changed := report != p.report
	p.report = report
	hooks := append(([]func(models.AgentStatusReport))(nil), p.changed...)
	p.mu.Unlock()

	if changed {
		p.logger.Info("Agent status changed",
			zap.Bool("connected", report.Connected),
			zap.String("message", report.Message))
		for _, hook := range hooks {
			hook(report)
		}
	}
	return report
}

// Start checks immediately and then every interval until Stop or ctx ends.
// Calling Start on a running probe is a no-op.
func (p *ConnectivityProbe) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sched != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	logger := cronLogger{p.logger.Sugar()}
	sched := cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger)))
	if _, err := sched.AddFunc(fmt.Sprintf("@every %s", p.interval), func() { p.Check(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("failed to schedule agent status probe: %w", err)
	}
	sched.Start()

	p.sched = sched
	p.cancel = cancel
	p.wg.Add(2)
	go func() {
		defer p.wg.Done()
		p.Check(runCtx)
	}()
	go func() {
		defer p.wg.Done()
		<-runCtx.Done()
		<-sched.Stop().Done()

		p.mu.Lock()
		if p.sched == sched {
			p.sched, p.cancel = nil, nil
			p.logger.Debug("Connectivity probe context ended")
		}
		p.mu.Unlock()
	}()

	p.logger.Debug("Started connectivity probe", zap.Duration("interval", p.interval))
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (p *ConnectivityProbe) Stop() {
	p.mu.Lock()
	sched, cancel := p.sched, p.cancel
	p.sched, p.cancel = nil, nil
	p.mu.Unlock()

	if sched != nil {
		cancel()
		<-sched.Stop().Done()
		p.logger.Debug("Stopped connectivity probe")
	}
	p.wg.Wait()
}

// Running reports whether the schedule is active.
func (p *ConnectivityProbe) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched != nil
}

// Report returns the latest status.
func (p *ConnectivityProbe) Report() models.AgentStatusReport {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.report
}

// Connected reports the latest connected flag.
func (p *ConnectivityProbe) Connected() bool {
	return p.Report().Connected
}

// cronLogger routes cron's internal logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
