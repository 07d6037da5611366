package datasource

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/praveenpotnurii/BifrostLink/pkg/apperrors"
	"github.com/praveenpotnurii/BifrostLink/pkg/logging"
	"github.com/praveenpotnurii/BifrostLink/pkg/models"
)

// Params are the connection fields common to every engine.
type Params struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// ParamsFrom extracts connection parameters from a registered database.
// An empty port falls back to the engine default.
func ParamsFrom(db models.Database) (Params, error) {
	p := Params{
		Host:     strings.TrimSpace(db.Host),
		User:     db.Username,
		Password: db.Password,
		Database: db.DBName,
	}

	portStr := strings.TrimSpace(db.Port.String())
	if portStr == "" {
		p.Port = DefaultPort(db.Type)
		return p, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Params{}, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	p.Port = port
	return p, nil
}

// Address returns host:port.
func (p Params) Address() string {
	return p.Host + ":" + strconv.Itoa(p.Port)
}

// ConnectionString builds the engine-native connection string for db. The
// password is replaced with [REDACTED] unless redact is false.
func ConnectionString(db models.Database, redact bool) (string, error) {
	reg, err := lookupOrError(db.Type)
	if err != nil {
		return "", err
	}
	p, err := ParamsFrom(db)
	if err != nil {
		return "", err
	}
	return reg.Build(p, redact)
}

// Validate builds the real connection string for db and parses it with the
// engine's driver, so malformed hosts or ports are caught before the
// database is registered.
func Validate(db models.Database) error {
	reg, err := lookupOrError(db.Type)
	if err != nil {
		return apperrors.NewValidationError("type", "Unsupported database type: "+string(db.Type))
	}
	p, err := ParamsFrom(db)
	if err != nil {
		return apperrors.NewValidationError("port", "Port must be a number between 1 and 65535")
	}
	dsn, err := reg.Build(p, false)
	if err == nil {
		err = reg.Parse(dsn)
	}
	if err != nil {
		return apperrors.NewValidationError("host",
			fmt.Sprintf("Invalid %s connection settings: %s", reg.Info.DisplayName, logging.SanitizeError(err)))
	}
	return nil
}

// UserInfo returns nil without a user, and omits an empty password.
func UserInfo(user, password string) *url.Userinfo {
	switch {
	case user == "":
		return nil
	case password == "":
		return url.User(user)
	}
	return url.UserPassword(user, password)
}

// URLString renders u, substituting [REDACTED] for its password when redact
// is set. URL engines share it so the marker is not percent-encoded.
func URLString(u *url.URL, redact bool) string {
	if !redact || u.User == nil {
		return u.String()
	}
	if _, hasPassword := u.User.Password(); !hasPassword {
		return u.String()
	}

	userOnly := *u
	userOnly.User = url.User(u.User.Username())
	s := userOnly.String()
	marker := "://" + userOnly.User.String() + "@"
	return strings.Replace(s, marker, "://"+userOnly.User.String()+":"+logging.RedactedText+"@", 1)
}
