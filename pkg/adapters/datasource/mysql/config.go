package mysql

import (
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
	"github.com/praveenpotnurii/BifrostLink/pkg/logging"
)

// DefaultPort returns the default MySQL port.
func DefaultPort() int {
	return 3306
}

// BuildDSN returns a go-sql-driver DSN (user:pass@tcp(host:port)/db).
func BuildDSN(p datasource.Params, redact bool) (string, error) {
	if p.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	if redact && p.Password != "" {
		cfg.Passwd = logging.RedactedText
	}
	cfg.Net = "tcp"
	cfg.Addr = p.Address()
	cfg.DBName = p.Database
	return cfg.FormatDSN(), nil
}

// Parse validates a DSN with go-sql-driver/mysql.
func Parse(dsn string) error {
	if _, err := mysql.ParseDSN(dsn); err != nil {
		return fmt.Errorf("failed to parse mysql DSN: %w", err)
	}
	return nil
}
