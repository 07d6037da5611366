package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
	"github.com/praveenpotnurii/BifrostLink/pkg/gateway"
	"github.com/praveenpotnurii/BifrostLink/pkg/logging"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
	"github.com/praveenpotnurii/BifrostLink/pkg/resultset"
)

// Local validation messages shown by the console.
const (
	MsgEmptyQuery        = "Please enter a SQL query"
	MsgNoDatabase        = "Please select a database"
	MsgAgentNotConnected = "Agent is not connected"
)

// ErrSuperseded is returned by an execution whose response was discarded
// because a newer execution started.
var ErrSuperseded = errors.New("query superseded by a newer execution")

// QueryFailedError is a completed execution with a non-zero exit code.
type QueryFailedError struct {
	ExitCode int
	Message  string
}

func (e *QueryFailedError) Error() string {
	return e.Message
}

// QueryExecutor runs one query. *gateway.Client satisfies it.
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, req models.ExecuteQueryRequest) (*models.QueryResult, error)
}

// ConnectionGate reports whether execution is currently allowed.
// *ConnectivityProbe satisfies it.
type ConnectionGate interface {
	Connected() bool
}

// ConsoleState is what the console displays.
type ConsoleState struct {
	Query  string
	Status Status
	Error  string

	// Result and Table hold only the latest successful execution.
	Result *models.QueryResult
	Table  resultset.Table
}

// QueryConsole submits ad hoc queries against the selected database.
//
// Concurrent executions are cancel-and-replace: starting a new one cancels
// the request in flight, and a response that lands after a newer execution
// started is discarded.
type QueryConsole struct {
	executor  QueryExecutor
	selection *SelectionGuard
	gate      ConnectionGate // nil disables gating
	logger    *zap.Logger

	mu         sync.Mutex
	state      ConsoleState
	generation uint64
	cancel     context.CancelFunc
}

// NewQueryConsole creates a console seeded with defaultQuery. gate may be nil.
func NewQueryConsole(executor QueryExecutor, selection *SelectionGuard, gate ConnectionGate, defaultQuery string, logger *zap.Logger) *QueryConsole {
	return &QueryConsole{
		executor:  executor,
		selection: selection,
		gate:      gate,
		logger:    logger.Named("console"),
		state: ConsoleState{
			Query:  defaultQuery,
			Status: StatusIdle,
			Table:  resultset.Parse(nil),
		},
	}
}

// SetQuery replaces the query text.
func (c *QueryConsole) SetQuery(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Query = query
}

// Query returns the current query text.
func (c *QueryConsole) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Query
}

// State returns a snapshot of the console.
func (c *QueryConsole) State() ConsoleState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run executes the current query text against the current selection.
func (c *QueryConsole) Run(ctx context.Context) error {
	var databaseID *int
	if id, ok := c.selection.Selected(); ok {
		databaseID = &id
	}
	return c.Execute(ctx, c.Query(), databaseID)
}

// Execute runs queryText against databaseID. The checks for empty text,
// missing database and a disconnected agent happen locally and issue no
// request. Exactly one request is issued otherwise.
//
// A failed check still supersedes any execution in flight, so its response
// cannot replace the validation error.
func (c *QueryConsole) Execute(ctx context.Context, queryText string, databaseID *int) error {
	if err := c.precheck(queryText, databaseID); err != nil {
		c.mu.Lock()
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
			c.logger.Debug("Cancelled in-flight query", zap.Uint64("generation", c.generation))
		}
		c.generation++
		c.state.Status = StatusError
		c.state.Error = err.Message
		c.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.logger.Debug("Cancelled in-flight query", zap.Uint64("generation", c.generation))
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.state.Query = queryText
	c.state.Status = StatusLoading
	c.state.Error = ""
	c.state.Result = nil
	c.state.Table = resultset.Parse(nil)
	c.mu.Unlock()

	c.logger.Info("Executing query",
		zap.Int("database_id", *databaseID),
		zap.Uint64("generation", gen),
		zap.String("query", logging.SanitizeQuery(queryText)))

	result, err := c.executor.ExecuteQuery(runCtx, models.ExecuteQueryRequest{
		Query:      queryText,
		DatabaseID: *databaseID,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("Discarded superseded query response", zap.Uint64("generation", gen))
		return ErrSuperseded
	}
	c.cancel = nil

	if err != nil {
		c.state.Status = StatusError
		c.state.Error = apperrors.UserMessage(err)
		c.logger.Warn("Query execution failed",
			zap.Int("database_id", *databaseID),
			zap.String("error", logging.SanitizeError(err)))
		return err
	}

	if !result.Succeeded() {
		message := result.Error
		if message == "" {
			message = gateway.MsgQueryFailed
		}
		c.state.Status = StatusError
		c.state.Error = message
		c.logger.Warn("Query returned non-zero exit code",
			zap.Int("database_id", *databaseID),
			zap.Int("exit_code", result.ExitCode),
			zap.String("error", logging.SanitizeText(message)))
		return &QueryFailedError{ExitCode: result.ExitCode, Message: message}
	}

	c.state.Status = StatusSuccess
	c.state.Result = result
	c.state.Table = resultset.ParseString(result.Results)
	c.logger.Info("Query succeeded",
		zap.Int("database_id", *databaseID),
		zap.String("duration", result.Duration),
		zap.Int("rows", c.state.Table.RowCount()))
	return nil
}

// Clear resets the query text, result and error, and cancels any execution
// in flight.
func (c *QueryConsole) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.state = ConsoleState{Status: StatusIdle, Table: resultset.Parse(nil)}
}

// Close cancels any execution in flight.
func (c *QueryConsole) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *QueryConsole) precheck(queryText string, databaseID *int) *apperrors.ValidationError {
	switch {
	case strings.TrimSpace(queryText) == "":
		return apperrors.NewValidationError("query", MsgEmptyQuery)
	case databaseID == nil:
		return apperrors.NewValidationError("database_id", MsgNoDatabase)
	case c.gate != nil && !c.gate.Connected():
		return apperrors.NewValidationError("agent", MsgAgentNotConnected)
	}
	return nil
}
