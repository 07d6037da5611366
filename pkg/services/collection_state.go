package services

// Status is the lifecycle of one collection or workflow.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// CollectionState is the single source of truth for one entity collection.
// It changes only through reduce.
type CollectionState[T any] struct {
	Items  []T
	Status Status
	Error  string // scoped to this collection; never set by another kind

	// Issued is the newest fetch generation handed out, Applied the newest one
	// whose response was accepted. A response older than Applied is stale.
	Issued  uint64
	Applied uint64
}

// Loaded reports whether any fetch has succeeded.
func (s CollectionState[T]) Loaded() bool {
	return s.Applied > 0
}

type actionType int

const (
	actionFetchStarted actionType = iota
	actionFetchSucceeded
	actionFetchFailed
	actionMutationFailed
	actionMutationSucceeded
	actionClearError
)

type action[T any] struct {
	kind       actionType
	generation uint64
	items      []T
	message    string
}

// reduce returns the next state. Fetch results carry the generation they were
// issued with and are dropped when a newer response has already been applied.
// A failure never touches Items.
func reduce[T any](s CollectionState[T], a action[T]) CollectionState[T] {
	switch a.kind {
	case actionFetchStarted:
		s.Issued = a.generation
		s.Status = StatusLoading

	case actionFetchSucceeded:
		if a.generation <= s.Applied {
			return s
		}
		s.Items = a.items
		s.Applied = a.generation
		s.Error = ""
		if a.generation == s.Issued {
			s.Status = StatusSuccess
		}

	case actionFetchFailed:
		if a.generation <= s.Applied || a.generation != s.Issued {
			// A newer fetch is in flight or already applied.
			return s
		}
		s.Status = StatusError
		s.Error = a.message

	case actionMutationFailed:
		s.Status = StatusError
		s.Error = a.message

	case actionMutationSucceeded:
		s.Error = ""
		if s.Status == StatusError {
			s.Status = StatusIdle
		}

	case actionClearError:
		s.Error = ""
		if s.Status == StatusError {
			s.Status = StatusIdle
		}
	}
	return s
}

// clone copies the state so callers cannot alias the registry's slice.
func (s CollectionState[T]) clone() CollectionState[T] {
	if s.Items != nil {
		s.Items = append([]T(nil), s.Items...)
	}
	return s
}
