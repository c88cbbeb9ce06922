// Package shared holds small helpers used by more than one package.
package shared

import "strings"

// IsSQLiteBusyError reports whether err is a SQLITE_BUSY failure, raised
// when another connection holds the write lock past the busy timeout.
func IsSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "SQLITE_BUSY")
}

// IsSQLiteLockedError reports whether err is a "database is locked" failure,
// the other surface of the same write contention.
func IsSQLiteLockedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "database is locked")
}

// IsSQLiteConflictError reports whether err is either SQLite contention
// error. The store retries a transaction when this returns true; every
// message transaction is short, so contention resolves within a few
// attempts.
func IsSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	return IsSQLiteBusyError(err) || IsSQLiteLockedError(err)
}
