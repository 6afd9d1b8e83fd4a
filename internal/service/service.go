// Package service implements the concept services: User, Post, Tag,
// Save, and Feature. Each wraps its persistent collections and guards
// owner-restricted mutations with an explicit read-then-compare
// ownership check. The check is advisory, not a lock: a concurrent
// delete between check and mutation surfaces as NotFound from the
// mutation itself.
package service

import (
	"cmp"
	"slices"
	"time"

	"github.com/savourapp/savour-server/internal/errors"
	"github.com/savourapp/savour-server/internal/store"
)

// translateStoreErr maps store sentinels onto coded domain errors.
func translateStoreErr(err error, notFoundMsg, conflictMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return errors.NotFound(notFoundMsg)
	case errors.Is(err, store.ErrAlreadyExists), errors.Is(err, store.ErrIndexConflict):
		return errors.AlreadyExists(conflictMsg)
	default:
		return errors.Wrap(err, errors.CodeInternal, "storage failure")
	}
}

// sortByRecency orders records most-recently-updated first. Listings
// across every concept share this ordering.
func sortByRecency[T any](items []*T, updatedAt func(*T) time.Time) {
	slices.SortFunc(items, func(a, b *T) int {
		return cmp.Compare(updatedAt(b).UnixNano(), updatedAt(a).UnixNano())
	})
}
