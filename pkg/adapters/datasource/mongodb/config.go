package mongodb

import (
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/praveenpotnurii/BifrostLink/pkg/adapters/datasource"
)

// DefaultPort returns the default MongoDB port.
func DefaultPort() int {
	return 27017
}

// BuildURI returns a mongodb:// connection URI. The database in the path is
// also the authentication database.
func BuildURI(p datasource.Params, redact bool) (string, error) {
	if p.Host == "" {
		return "", fmt.Errorf("host is required")
	}
	u := &url.URL{
		Scheme: "mongodb",
		Host:   p.Address(),
		Path:   "/" + p.Database,
	}
	u.User = datasource.UserInfo(p.User, p.Password)
	return datasource.URLString(u, redact), nil
}

// Parse validates a URI with the mongo driver's client options.
func Parse(uri string) error {
	if err := options.Client().ApplyURI(uri).Validate(); err != nil {
		return fmt.Errorf("failed to parse mongodb URI: %w", err)
	}
	return nil
}
