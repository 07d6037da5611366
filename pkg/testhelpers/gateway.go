// Package testhelpers provides utilities for testing BifrostLink components.
package testhelpers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

// Executor answers POST /api/execute-query. It may block; ctx is cancelled
// when the client abandons the request.
type Executor func(ctx context.Context, req models.ExecuteQueryRequest) models.QueryResult

// fault is a one-shot forced response for a route.
type fault struct {
	status int
	body   string
}

// FakeGateway is an in-memory implementation of the gateway HTTP contract
// backed by httptest.Server. It is safe for concurrent use.
type FakeGateway struct {
	Server *httptest.Server

	mu          sync.Mutex
	collections map[models.Kind][]map[string]any
	nextID      int
	connected   bool
	statusMsg   string
	executor    Executor
	faults      map[string][]fault
	latency     map[string]time.Duration
	calls       map[string]int
	requests    map[string][]json.RawMessage
}

// NewFakeGateway starts a fake gateway that is closed when the test ends.
// Agents start connected and queries echo a one-column result.
func NewFakeGateway(t *testing.T) *FakeGateway {
	t.Helper()

	g := &FakeGateway{
		collections: map[models.Kind][]map[string]any{
			models.KindUser:     {},
			models.KindAgent:    {},
			models.KindDatabase: {},
		},
		connected: true,
		statusMsg: "Agent connected",
		executor: func(_ context.Context, req models.ExecuteQueryRequest) models.QueryResult {
			return models.QueryResult{ExitCode: 0, Results: "query\n" + req.Query, Duration: "1ms"}
		},
		faults:   make(map[string][]fault),
		latency:  make(map[string]time.Duration),
		calls:    make(map[string]int),
		requests: make(map[string][]json.RawMessage),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/agent-status", g.handleAgentStatus)
	mux.HandleFunc("POST /api/execute-query", g.handleExecuteQuery)
	mux.HandleFunc("GET /api/{kind}", g.handleList)
	mux.HandleFunc("POST /api/{kind}", g.handleCreate)
	mux.HandleFunc("PUT /api/{kind}/{id}", g.handleUpdate)
	mux.HandleFunc("DELETE /api/{kind}/{id}", g.handleDelete)

	g.Server = httptest.NewServer(g.intercept(mux))
	t.Cleanup(g.Server.Close)
	return g
}

// URL returns the fake gateway's base URL.
func (g *FakeGateway) URL() string {
	return g.Server.URL
}

// FailNext makes the next request on method+path answer status with a raw
// body. Use a JSON body such as {"error":"boom"} or plain text to exercise
// the fallback message. Faults queue in order.
func (g *FakeGateway) FailNext(method, path string, status int, body string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := routeKey(method, path)
	g.faults[key] = append(g.faults[key], fault{status: status, body: body})
}

// SetLatency delays every request on method+path by d.
func (g *FakeGateway) SetLatency(method, path string, d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latency[routeKey(method, path)] = d
}

// Calls returns how many requests reached method+path.
func (g *FakeGateway) Calls(method, path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[routeKey(method, path)]
}

// TotalCalls returns the number of requests across all routes.
func (g *FakeGateway) TotalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

// LastBody returns the most recent request body sent to method+path.
func (g *FakeGateway) LastBody(method, path string) json.RawMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	bodies := g.requests[routeKey(method, path)]
	if len(bodies) == 0 {
		return nil
	}
	return bodies[len(bodies)-1]
}

// SetAgentStatus controls GET /api/agent-status.
func (g *FakeGateway) SetAgentStatus(connected bool, message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = connected
	g.statusMsg = message
}

// SetExecutor replaces the query responder.
func (g *FakeGateway) SetExecutor(fn Executor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.executor = fn
}

// AddUser seeds a user and returns it with its assigned id.
func (g *FakeGateway) AddUser(u models.User) models.User {
	return seed(g, models.KindUser, u)
}

// AddAgent seeds an agent and returns it with its assigned id.
func (g *FakeGateway) AddAgent(a models.Agent) models.Agent {
	return seed(g, models.KindAgent, a)
}

// AddDatabase seeds a database and returns it with its assigned id.
func (g *FakeGateway) AddDatabase(d models.Database) models.Database {
	return seed(g, models.KindDatabase, d)
}

// Users returns the stored users in server order.
func (g *FakeGateway) Users() []models.User {
	return snapshot[models.User](g, models.KindUser)
}

// Agents returns the stored agents in server order.
func (g *FakeGateway) Agents() []models.Agent {
	return snapshot[models.Agent](g, models.KindAgent)
}

// Databases returns the stored databases in server order.
func (g *FakeGateway) Databases() []models.Database {
	return snapshot[models.Database](g, models.KindDatabase)
}

// RemoveDirect deletes a row without going through HTTP, to simulate another
// operator's change.
func (g *FakeGateway) RemoveDirect(kind models.Kind, id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx := g.indexOf(kind, id); idx >= 0 {
		rows := g.collections[kind]
		g.collections[kind] = append(rows[:idx], rows[idx+1:]...)
	}
}

func seed[T any](g *FakeGateway, kind models.Kind, entity T) T {
	row := toRow(entity)

	g.mu.Lock()
	g.nextID++
	row["id"] = g.nextID
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	g.collections[kind] = append(g.collections[kind], row)
	g.mu.Unlock()

	var out T
	fromRow(row, &out)
	return out
}

func snapshot[T any](g *FakeGateway, kind models.Kind) []T {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]T, 0, len(g.collections[kind]))
	for _, row := range g.collections[kind] {
		var item T
		fromRow(row, &item)
		out = append(out, item)
	}
	return out
}

// intercept applies counters, recorded bodies, latency and queued faults
// before routing.
func (g *FakeGateway) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r.Method, r.URL.Path)

		var body json.RawMessage
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}

		g.mu.Lock()
		g.calls[key]++
		if len(body) > 0 {
			g.requests[key] = append(g.requests[key], body)
		}
		delay := g.latency[key]
		var forced *fault
		if queued := g.faults[key]; len(queued) > 0 {
			forced = &queued[0]
			g.faults[key] = queued[1:]
		}
		g.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if forced != nil {
			w.WriteHeader(forced.status)
			_, _ = w.Write([]byte(forced.body))
			return
		}

		r.Body = http.NoBody
		r = r.WithContext(withBody(r.Context(), body))
		next.ServeHTTP(w, r)
	})
}

func (g *FakeGateway) handleAgentStatus(w http.ResponseWriter, _ *http.Request) {
	g.mu.Lock()
	report := models.AgentStatusReport{Connected: g.connected, Message: g.statusMsg}
	g.mu.Unlock()
	_ = WriteJSON(w, http.StatusOK, report)
}

func (g *FakeGateway) handleExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req models.ExecuteQueryRequest
	if err := json.Unmarshal(bodyFrom(r.Context()), &req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Query == "" {
		http.Error(w, "Query cannot be empty", http.StatusBadRequest)
		return
	}
	if req.DatabaseID == 0 {
		http.Error(w, "Database ID is required", http.StatusBadRequest)
		return
	}

	g.mu.Lock()
	executor := g.executor
	known := g.indexOf(models.KindDatabase, req.DatabaseID) >= 0
	g.mu.Unlock()

	if !known {
		_ = WriteJSON(w, http.StatusOK, models.QueryResult{
			ExitCode: 1,
			Error:    "database not found or invalid database_id",
		})
		return
	}

	result := executor(r.Context(), req)
	if r.Context().Err() != nil {
		return
	}
	_ = WriteJSON(w, http.StatusOK, result)
}

func (g *FakeGateway) handleList(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	g.mu.Lock()
	rows := append([]map[string]any(nil), g.collections[kind]...)
	g.mu.Unlock()

	if len(rows) == 0 {
		_ = WriteJSON(w, http.StatusOK, nil)
		return
	}
	_ = WriteJSON(w, http.StatusOK, rows)
}

func (g *FakeGateway) handleCreate(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var row map[string]any
	if err := json.Unmarshal(bodyFrom(r.Context()), &row); err != nil || row == nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	delete(row, "id")

	g.mu.Lock()
	defer g.mu.Unlock()

	if kind == models.KindAgent {
		if g.agentIDTaken(row["agent_id"], -1) {
			_ = ErrorResponse(w, http.StatusBadRequest, "Agent ID already exists")
			return
		}
		row["status"] = string(models.AgentStatusDisconnected)
	}

	g.nextID++
	row["id"] = g.nextID
	row["created_at"] = time.Now().UTC().Format(time.RFC3339)
	g.collections[kind] = append(g.collections[kind], row)

	_ = WriteJSON(w, http.StatusCreated, row)
}

func (g *FakeGateway) handleUpdate(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := kindAndID(w, r)
	if !ok {
		return
	}

	var patch map[string]any
	if err := json.Unmarshal(bodyFrom(r.Context()), &patch); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.indexOf(kind, id)
	if idx < 0 {
		_ = ErrorResponse(w, http.StatusNotFound, notFoundMessage(kind))
		return
	}
	if kind == models.KindAgent && g.agentIDTaken(patch["agent_id"], id) {
		_ = ErrorResponse(w, http.StatusBadRequest, "Agent ID already exists")
		return
	}

	row := g.collections[kind][idx]
	for k, v := range patch {
		if k == "id" {
			continue
		}
		row[k] = v
	}
	row["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	_ = WriteJSON(w, http.StatusOK, row)
}

func (g *FakeGateway) handleDelete(w http.ResponseWriter, r *http.Request) {
	kind, id, ok := kindAndID(w, r)
	if !ok {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	idx := g.indexOf(kind, id)
	if idx < 0 {
		_ = ErrorResponse(w, http.StatusNotFound, notFoundMessage(kind))
		return
	}
	rows := g.collections[kind]
	g.collections[kind] = append(rows[:idx], rows[idx+1:]...)

	_ = WriteJSON(w, http.StatusOK, map[string]string{
		"message": kind.Title() + " deleted successfully",
	})
}

// indexOf must be called with g.mu held.
func (g *FakeGateway) indexOf(kind models.Kind, id int) int {
	for i, row := range g.collections[kind] {
		if rowID(row) == id {
			return i
		}
	}
	return -1
}

// agentIDTaken must be called with g.mu held.
func (g *FakeGateway) agentIDTaken(agentID any, exceptID int) bool {
	s, _ := agentID.(string)
	if s == "" {
		return false
	}
	for _, row := range g.collections[models.KindAgent] {
		if row["agent_id"] == s && rowID(row) != exceptID {
			return true
		}
	}
	return false
}

func kindFromPath(r *http.Request) (models.Kind, bool) {
	for _, kind := range []models.Kind{models.KindUser, models.KindAgent, models.KindDatabase} {
		if r.PathValue("kind") == kind.Plural() {
			return kind, true
		}
	}
	return "", false
}

func kindAndID(w http.ResponseWriter, r *http.Request) (models.Kind, int, bool) {
	kind, ok := kindFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return "", 0, false
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid "+string(kind)+" ID", http.StatusBadRequest)
		return "", 0, false
	}
	return kind, id, true
}

func notFoundMessage(kind models.Kind) string {
	return kind.Title() + " not found"
}

func routeKey(method, path string) string {
	return method + " " + path
}

func rowID(row map[string]any) int {
	switch v := row["id"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func toRow(v any) map[string]any {
	data, _ := json.Marshal(v)
	row := map[string]any{}
	_ = json.Unmarshal(data, &row)
	for k, val := range row {
		if s, ok := val.(string); ok && s == "" && (k == "created_at" || k == "updated_at") {
			delete(row, k)
		}
	}
	return row
}

func fromRow(row map[string]any, out any) {
	data, _ := json.Marshal(row)
	_ = json.Unmarshal(data, out)
}

type bodyKey struct{}

func withBody(ctx context.Context, body json.RawMessage) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(ctx context.Context) json.RawMessage {
	body, _ := ctx.Value(bodyKey{}).(json.RawMessage)
	return body
}
