package mssql

import (
	"fmt"
	"net/url"

	"github.com/microsoft/go-mssqldb/msdsn"

	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
)

// DefaultPort returns the default SQL Server port.
func DefaultPort() int {
	return 1433
}

// BuildURL returns a sqlserver:// connection URL with the database as a
// query parameter, the form go-mssqldb expects.
func BuildURL(p datasource.Params, redact bool) (string, error) {
	if p.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	u := &url.URL{
		Scheme: "sqlserver",
		Host:   p.Address(),
	}
	u.User = datasource.UserInfo(p.User, p.Password)
	if p.Database != "" {
		query := url.Values{}
		query.Set("database", p.Database)
		u.RawQuery = query.Encode()
	}
	return datasource.URLString(u, redact), nil
}

// Parse validates a connection string with go-mssqldb's DSN parser.
func Parse(dsn string) error {
	if _, err := msdsn.Parse(dsn); err != nil {
		return fmt.Errorf("failed to parse sqlserver connection string: %w", err)
	}
	return nil
}
