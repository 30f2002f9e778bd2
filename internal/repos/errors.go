package repos

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"prodcatalog/internal/domain"
)

// classify wraps a driver error with the matching domain error class so
// callers can test it with errors.Is. Unknown errors pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if class := classOf(err); class != nil {
		return fmt.Errorf("%w: %w", class, err)
	}
	return err
}

func classOf(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return domain.ErrUpstreamUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return domain.ErrConflict
		case "23503":
			return domain.ErrReferentialIntegrity
		case "23514", "22003":
			return domain.ErrValidation
		}
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P") {
			return domain.ErrUpstreamUnavailable
		}
		return nil
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return domain.ErrUpstreamUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.ErrUpstreamUnavailable
	}

	// modernc.org/sqlite reports constraint failures only through the message
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return domain.ErrConflict
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return domain.ErrReferentialIntegrity
	case strings.Contains(msg, "CHECK constraint failed"):
		return domain.ErrValidation
	case strings.Contains(msg, "database is closed"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "unable to open database"):
		return domain.ErrUpstreamUnavailable
	}
	return nil
}
