package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

// EntityStore is the gateway surface a registry synchronizes with.
// *gateway.Resource satisfies it.
type EntityStore[T models.Entity] interface {
	Kind() models.Kind
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, body any) (T, error)
	Update(ctx context.Context, id int, body any) (T, error)
	Delete(ctx context.Context, id int) error
}

// Confirmer asks the operator to approve a destructive action before any
// request is made.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Registry keeps one entity collection in sync with the gateway.
//
// Reads replace the collection wholesale. Mutations never patch locally: on
// success they set a success message and refetch, so the collection shows
// pre-mutation data until the refetch lands.
type Registry[T models.Entity, F models.Form] struct {
	kind       models.Kind
	store      EntityStore[T]
	validators []func(F) error
	flash      *Flash
	logger     *zap.Logger

	mu      sync.Mutex
	state   CollectionState[T]
	fetched []func([]T)

	// notifyMu serializes OnFetched delivery; delivered is the newest
	// generation handed to the hooks.
	notifyMu  sync.Mutex
	delivered uint64
}

// NewRegistry creates a registry for store's collection.
func NewRegistry[T models.Entity, F models.Form](store EntityStore[T], successTTL time.Duration, logger *zap.Logger) *Registry[T, F] {
	kind := store.Kind()
	return &Registry[T, F]{
		kind:   kind,
		store:  store,
		flash:  NewFlash(successTTL),
		logger: logger.Named("registry." + kind.Plural()),
		state:  CollectionState[T]{Status: StatusIdle},
	}
}

// AddValidator appends a local check run after the form's own Validate.
func (r *Registry[T, F]) AddValidator(fn func(F) error) {
	r.validators = append(r.validators, fn)
}

// OnFetched registers fn to be called with the items of every applied fetch.
// Calls are serialized and arrive in generation order; stale responses and
// fetches overtaken during delivery do not trigger it.
func (r *Registry[T, F]) OnFetched(fn func(items []T)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetched = append(r.fetched, fn)
}

// Kind returns the collection kind.
func (r *Registry[T, F]) Kind() models.Kind {
	return r.kind
}

// FetchAll issues one list request. On success the collection is replaced;
// on failure the scoped error is set and the previous items stay visible.
func (r *Registry[T, F]) FetchAll(ctx context.Context) error {
	r.mu.Lock()
	gen := r.state.Issued + 1
	r.state = reduce(r.state, action[T]{kind: actionFetchStarted, generation: gen})
	r.mu.Unlock()

	items, err := r.store.List(ctx)
	if err != nil {
		r.mu.Lock()
		r.state = reduce(r.state, action[T]{kind: actionFetchFailed, generation: gen, message: apperrors.UserMessage(err)})
		r.mu.Unlock()

		r.logger.Warn("Failed to fetch collection",
			zap.Uint64("generation", gen),
			zap.Error(err))
		return err
	}

	r.mu.Lock()
	r.state = reduce(r.state, action[T]{kind: actionFetchSucceeded, generation: gen, items: items})
	applied := r.state.Applied == gen
	hooks := append(([]func([]T))(nil), r.fetched...)
	r.mu.Unlock()

	if !applied {
		r.logger.Debug("Dropped stale fetch response", zap.Uint64("generation", gen))
		return nil
	}

	r.logger.Debug("Fetched collection",
		zap.Uint64("generation", gen),
		zap.Int("count", len(items)))
	r.notify(gen, items, hooks)
	return nil
}

func (r *Registry[T, F]) notify(gen uint64, items []T, hooks []func([]T)) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	if gen <= r.delivered {
		r.logger.Debug("Skipped fetch hooks for overtaken generation",
			zap.Uint64("generation", gen),
			zap.Uint64("delivered", r.delivered))
		return
	}
	r.delivered = gen
	for _, hook := range hooks {
		hook(append([]T(nil), items...))
	}
}

// Validate runs the required-field checks. It never performs I/O.
func (r *Registry[T, F]) Validate(form F) error {
	if err := form.Validate(); err != nil {
		return err
	}
	for _, validate := range r.validators {
		if err := validate(form); err != nil {
			return err
		}
	}
	return nil
}

// Submit creates the entity when editingID is nil and updates it otherwise.
// A validation failure issues no request. On any failure the message is held
// in this collection's scope and the error returned, so the caller can keep
// its form open.
func (r *Registry[T, F]) Submit(ctx context.Context, form F, editingID *int) error {
	if err := r.Validate(form); err != nil {
		r.dispatch(action[T]{kind: actionMutationFailed, message: apperrors.UserMessage(err)})
		return err
	}

	verb, past := "create", "created"
	var err error
	if editingID == nil {
		_, err = r.store.Create(ctx, form)
	} else {
		verb, past = "update", "updated"
		_, err = r.store.Update(ctx, *editingID, form)
	}

	if err != nil {
		r.dispatch(action[T]{kind: actionMutationFailed, message: apperrors.UserMessage(err)})
		r.logger.Warn("Failed to "+verb+" "+string(r.kind), zap.Error(err))
		return err
	}

	r.dispatch(action[T]{kind: actionMutationSucceeded})
	r.flash.Set(fmt.Sprintf("%s %s successfully", r.kind.Title(), past))
	if editingID != nil {
		r.logger.Info("Updated "+string(r.kind), zap.Int("id", *editingID))
	} else {
		r.logger.Info("Created " + string(r.kind))
	}

	// Refetch failures are reported in scope; the mutation itself succeeded.
	_ = r.FetchAll(ctx)
	return nil
}

// Remove deletes an entity after confirm approves it. A declined or failed
// confirmation issues no request and changes no state.
func (r *Registry[T, F]) Remove(ctx context.Context, id int, confirm Confirmer) error {
	if confirm == nil {
		return apperrors.ErrConfirmationDeclined
	}
	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete this %s?", r.kind))
	if err != nil {
		return fmt.Errorf("failed to confirm delete: %w", err)
	}
	if !ok {
		return apperrors.ErrConfirmationDeclined
	}

	if err := r.store.Delete(ctx, id); err != nil {
		r.dispatch(action[T]{kind: actionMutationFailed, message: apperrors.UserMessage(err)})
		r.logger.Warn("Failed to delete "+string(r.kind), zap.Int("id", id), zap.Error(err))
		return err
	}

	r.dispatch(action[T]{kind: actionMutationSucceeded})
	r.flash.Set(fmt.Sprintf("%s deleted successfully", r.kind.Title()))
	r.logger.Info("Deleted "+string(r.kind), zap.Int("id", id))

	_ = r.FetchAll(ctx)
	return nil
}

// State returns a snapshot of the collection state.
func (r *Registry[T, F]) State() CollectionState[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.clone()
}

// Items returns a copy of the current collection in server order.
func (r *Registry[T, F]) Items() []T {
	return r.State().Items
}

// Find returns the entity with the given id from the current collection.
func (r *Registry[T, F]) Find(id int) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.state.Items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Error returns this collection's scoped error message.
func (r *Registry[T, F]) Error() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Error
}

// Success returns the current success message, if its window is still open.
func (r *Registry[T, F]) Success() string {
	return r.flash.Message()
}

// ClearError drops the scoped error.
func (r *Registry[T, F]) ClearError() {
	r.dispatch(action[T]{kind: actionClearError})
}

// Close stops the success-message timer.
func (r *Registry[T, F]) Close() {
	r.flash.Stop()
}

func (r *Registry[T, F]) dispatch(a action[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = reduce(r.state, a)
}
