package repository

import "github.com/okian/carwise/internal/domain/model"

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithSeed replaces the embedded garage seed. The seed is only applied to an
// empty garage table.
func WithSeed(garages []model.Garage) Option {
	return func(s *SQLiteStore) {
		s.seed = garages
	}
}

// WithoutSeed leaves an empty garage table empty.
func WithoutSeed() Option {
	return func(s *SQLiteStore) {
		s.seed = nil
		s.skipSeed = true
	}
}

// WithMaxOpenConns limits the connection pool. In-memory databases always
// use a single connection.
func WithMaxOpenConns(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.maxOpenConns = n
		}
	}
}
