package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/praveenpotnurii/BifrostLink/pkg/config"
	"github.com/praveenpotnurii/BifrostLink/pkg/gateway"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
	"github.com/praveenpotnurii/BifrostLink/pkg/testhelpers"
)

const testTTL = 50 * time.Millisecond

func newTestClient(t *testing.T, fake *testhelpers.FakeGateway) *gateway.Client {
	t.Helper()
	return gateway.NewClient(config.GatewayConfig{
		BaseURL: fake.URL(),
		Timeout: 2 * time.Second,
	}, zap.NewNop())
}

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

func accept() Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
}

func decline(prompts *[]string) Confirmer {
	return ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		*prompts = append(*prompts, prompt)
		return false, nil
	})
}

// scriptedStore is an EntityStore whose List calls block until released, so
// tests can control the order in which responses land.
type scriptedStore struct {
	kind models.Kind

	mu      sync.Mutex
	pending []chan listResponse
	calls   int
}

type listResponse struct {
	items []models.Database
	err   error
}

func newScriptedStore() *scriptedStore {
	return &scriptedStore{kind: models.KindDatabase}
}

func (s *scriptedStore) Kind() models.Kind { return s.kind }

func (s *scriptedStore) List(ctx context.Context) ([]models.Database, error) {
	ch := make(chan listResponse, 1)
	s.mu.Lock()
	s.pending = append(s.pending, ch)
	s.calls++
	s.mu.Unlock()

	select {
	case resp := <-ch:
		return resp.items, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// release answers the n-th List call (0-based).
func (s *scriptedStore) release(n int, items []models.Database, err error) {
	s.mu.Lock()
	ch := s.pending[n]
	s.mu.Unlock()
	ch <- listResponse{items: items, err: err}
}

func (s *scriptedStore) waiting() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *scriptedStore) Create(context.Context, any) (models.Database, error) {
	return models.Database{}, nil
}

func (s *scriptedStore) Update(context.Context, int, any) (models.Database, error) {
	return models.Database{}, nil
}

func (s *scriptedStore) Delete(context.Context, int) error {
	return nil
}
