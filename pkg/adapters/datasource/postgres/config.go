package postgres

import (
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"

	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
)

// DefaultPort returns the default PostgreSQL port.
func DefaultPort() int {
	return 5432
}

// BuildURL returns a postgres:// connection URI.
func BuildURL(p datasource.Params, redact bool) (string, error) {
	if p.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	u := &url.URL{
		Scheme: "postgres",
		Host:   p.Address(),
		Path:   "/" + p.Database,
	}
	u.User = datasource.UserInfo(p.User, p.Password)
	return datasource.URLString(u, redact), nil
}

// Parse validates a connection string with pgx.
func Parse(dsn string) error {
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return fmt.Errorf("failed to parse postgres connection string: %w", err)
	}
	return nil
}
