package services

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

// SelectionGuard maintains the selected database id across refreshes.
//
// The first successful non-empty fetch selects the first database in server
// order when nothing is selected. A selection is never replaced by a refresh,
// even when its row has disappeared; Stale reports that case and execution
// surfaces the failure.
type SelectionGuard struct {
	logger *zap.Logger

	mu       sync.Mutex
	selected *int
	known    map[int]struct{} // every id ever observed
	latest   map[int]struct{} // ids in the most recent fetch
	observed bool
}

// NewSelectionGuard creates a guard with no selection.
func NewSelectionGuard(logger *zap.Logger) *SelectionGuard {
	return &SelectionGuard{
		logger: logger.Named("selection"),
		known:  make(map[int]struct{}),
		latest: make(map[int]struct{}),
	}
}

// Attach observes every applied fetch of the databases registry.
func (g *SelectionGuard) Attach(databases *Registry[models.Database, models.DatabaseForm]) {
	databases.OnFetched(g.Observe)
}

// Observe applies one successful fetch result.
func (g *SelectionGuard) Observe(databases []models.Database) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.observed = true
	g.latest = make(map[int]struct{}, len(databases))
	for _, db := range databases {
		g.known[db.ID] = struct{}{}
		g.latest[db.ID] = struct{}{}
	}

	if g.selected == nil && len(databases) > 0 {
		id := databases[0].ID
		g.selected = &id
		g.logger.Debug("Auto-selected database", zap.Int("database_id", id))
	}
}

// Select makes id the explicit selection. id must have been observed in some
// fetch.
func (g *SelectionGuard) Select(id int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.known[id]; !ok {
		return fmt.Errorf("database %d: %w", id, apperrors.ErrNotFound)
	}
	g.selected = &id
	return nil
}

// Clear removes the selection. Only an explicit operator action calls it.
func (g *SelectionGuard) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selected = nil
}

// Selected returns the selected id, if any.
func (g *SelectionGuard) Selected() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selected == nil {
		return 0, false
	}
	return *g.selected, true
}

// Stale reports whether the selection is missing from the latest fetch.
func (g *SelectionGuard) Stale() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.selected == nil || !g.observed {
		return false
	}
	_, ok := g.latest[*g.selected]
	return !ok
}
