// Package storage provides PostgreSQL persistence for search configs, the
// job feed and applications. One file per entity; every cross-caller
// invariant (source_url dedup, one application per owner and feed item,
// status compare-and-swap) is enforced by a single SQL statement rather
// than a read-then-write sequence.
package storage

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the connection pool. It implements discovery.ConfigSource,
// discovery.FeedStore, triage.FeedStore and kanban.Store.
type Store struct {
	pool *pgxpool.Pool
}

// New returns a Store backed by pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
