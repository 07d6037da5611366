package models

import (
	"strings"

	"github.com/jinzhu/inflection"
)

// Kind names one of the managed entity collections.
type Kind string

// Managed entity kinds.
const (
	KindUser     Kind = "user"
	KindAgent    Kind = "agent"
	KindDatabase Kind = "database"
)

// Plural returns the collection name ("users", "agents", "databases").
func (k Kind) Plural() string {
	return inflection.Plural(string(k))
}

// Title is the capitalized singular ("User"), used in operator messages.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// CollectionPath is the gateway path for list and create.
func (k Kind) CollectionPath() string {
	return "/api/" + k.Plural()
}

// Entity is implemented by every managed entity.
type Entity interface {
	EntityID() int
}

// Form is implemented by every create/edit form.
type Form interface {
	// Validate checks required fields locally. It must not perform I/O.
	Validate() error
}
