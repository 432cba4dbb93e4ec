package errors

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
)

// Classify maps an arbitrary failure onto the taxonomy. An error that
// already carries a kind passes through untouched, so wrapping layers can
// call Classify without double-mapping. Every component routes raw store
// and transport failures through here exactly once.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if stderrors.As(err, &appErr) && appErr != nil {
		return appErr
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return Wrap(KindNetwork, "request timed out", err)
	case stderrors.Is(err, context.Canceled):
		return Wrap(KindNetwork, "request canceled", err)
	case stderrors.Is(err, sql.ErrNoRows):
		return Wrap(KindNotFound, "record not found", err)
	}

	if isDuplicateText(err) {
		return Wrap(KindDuplicate, "this nickname is already taken", err)
	}
	if isDatabaseText(err) {
		return Wrap(KindDatabase, "database request failed", err)
	}

	return Wrap(KindUnknown, "unexpected error", err)
}

// isDuplicateText sniffs the driver's unique-violation text. go-libsql
// surfaces sqlite errors as plain strings, so there is no typed error to
// match on.
func isDuplicateText(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed")
}

func isDatabaseText(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"sqlite", "libsql", "database", "sql:", "constraint", "connection"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
