package datasource

import (
	"fmt"
	"sync"

	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

// EngineInfo describes a registered database engine for form discovery.
type EngineInfo struct {
	Type        models.DatabaseType `json:"type"`         // "mysql", "postgres", "mssql", "mongodb"
	DisplayName string              `json:"display_name"` // "PostgreSQL", "Microsoft SQL Server"
	Description string              `json:"description"`
	DefaultPort int                 `json:"default_port"`
}

// EngineRegistration contains info plus the engine's connection string codec.
type EngineRegistration struct {
	Info EngineInfo

	// Build returns the engine-native connection string for p.
	// When redact is set the password is replaced by logging.RedactedText.
	Build func(p Params, redact bool) (string, error)

	// Parse checks a connection string with the engine's driver package.
	Parse func(dsn string) error
}

var (
	registryMu sync.RWMutex
	registry   = make(map[models.DatabaseType]EngineRegistration)
)

// Register is called by each engine's init() function.
// Thread-safe for concurrent init() calls.
func Register(reg EngineRegistration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[reg.Info.Type] = reg
}

// RegisteredEngines returns info for all registered engines in the display
// order of models.ValidDatabaseTypes.
func RegisteredEngines() []EngineInfo {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]EngineInfo, 0, len(registry))
	for _, t := range models.ValidDatabaseTypes {
		if reg, ok := registry[t]; ok {
			result = append(result, reg.Info)
		}
	}
	return result
}

// Lookup returns the registration for an engine type.
func Lookup(t models.DatabaseType) (EngineRegistration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[t]
	return reg, ok
}

// IsRegistered checks if an engine type is available.
func IsRegistered(t models.DatabaseType) bool {
	_, ok := Lookup(t)
	return ok
}

// DefaultPort returns the engine's default port, or 0 when unknown.
func DefaultPort(t models.DatabaseType) int {
	if reg, ok := Lookup(t); ok {
		return reg.Info.DefaultPort
	}
	return 0
}

func lookupOrError(t models.DatabaseType) (EngineRegistration, error) {
	reg, ok := Lookup(t)
	if !ok {
		return EngineRegistration{}, fmt.Errorf("unsupported database type: %q", t)
	}
	return reg, nil
}
