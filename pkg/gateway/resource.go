package gateway

import (
	"context"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/praveenpotnurii/BifrostLink/pkg/models"
	"github.com/praveenpotnurii/BifrostLink/pkg/retry"
)

// Resource is the CRUD surface for one entity collection
// (GET|POST /api/<plural>, PUT|DELETE /api/<plural>/{id}).
type Resource[T models.Entity] struct {
	client *Client
	kind   models.Kind
	logger *zap.Logger
}

// NewResource binds a collection kind to a client.
func NewResource[T models.Entity](c *Client, kind models.Kind) *Resource[T] {
	return &Resource[T]{
		client: c,
		kind:   kind,
		logger: c.logger.With(zap.String("kind", string(kind))),
	}
}

// Users returns the user collection.
func (c *Client) Users() *Resource[models.User] {
	return NewResource[models.User](c, models.KindUser)
}

// Agents returns the agent collection.
func (c *Client) Agents() *Resource[models.Agent] {
	return NewResource[models.Agent](c, models.KindAgent)
}

// Databases returns the database collection.
func (c *Client) Databases() *Resource[models.Database] {
	return NewResource[models.Database](c, models.KindDatabase)
}

// Kind returns the collection kind.
func (r *Resource[T]) Kind() models.Kind {
	return r.kind
}

// List fetches the whole collection in server order. Transient failures are
// retried according to gateway.fetch_retries.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	op := "fetch " + r.kind.Plural()
	req := request{
		op:       op,
		method:   http.MethodGet,
		segments: []string{"api", r.kind.Plural()},
		fallback: FetchFailedMessage(r.kind),
	}

	items, err := retry.DoWithResult(ctx, r.client.retry, func() ([]T, error) {
		var items []T
		if err := r.client.doJSON(ctx, req, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		// The gateway encodes an empty table as null.
		items = []T{}
	}

	r.logger.Debug("Fetched collection", zap.Int("count", len(items)))
	return items, nil
}

// Create posts a new entity. body is the entity's form.
func (r *Resource[T]) Create(ctx context.Context, body any) (T, error) {
	var created T
	req := request{
		op:       "create " + string(r.kind),
		method:   http.MethodPost,
		segments: []string{"api", r.kind.Plural()},
		body:     body,
		fallback: MutationFailedMessage("create", r.kind),
	}
	err := r.client.doJSON(ctx, req, &created)
	return created, err
}

// Update replaces an entity's editable fields.
func (r *Resource[T]) Update(ctx context.Context, id int, body any) (T, error) {
	var updated T
	req := request{
		op:       "update " + string(r.kind),
		method:   http.MethodPut,
		segments: []string{"api", r.kind.Plural(), strconv.Itoa(id)},
		body:     body,
		fallback: MutationFailedMessage("update", r.kind),
	}
	err := r.client.doJSON(ctx, req, &updated)
	return updated, err
}

// Delete removes an entity.
func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	req := request{
		op:       "delete " + string(r.kind),
		method:   http.MethodDelete,
		segments: []string{"api", r.kind.Plural(), strconv.Itoa(id)},
		fallback: MutationFailedMessage("delete", r.kind),
	}
	return r.client.doJSON(ctx, req, nil)
}

// FetchFailedMessage is the generic message for a failed list request,
// e.g. "Failed to fetch databases".
func FetchFailedMessage(kind models.Kind) string {
	return "Failed to fetch " + kind.Plural()
}

// MutationFailedMessage is the generic message for a failed create, update or
// delete, e.g. "Failed to create agent".
func MutationFailedMessage(verb string, kind models.Kind) string {
	return "Failed to " + verb + " " + string(kind)
}
