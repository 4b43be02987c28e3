package dataset

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// LoadFunc reads a dataset file.
type LoadFunc func(path string) (*Table, error)

// LoadObserver is told how long a successful load took and how many rows it
// produced.
type LoadObserver func(ctx context.Context, duration time.Duration, rows int)

// Store holds the process-wide dataset. The file is read on first use and
// concurrent first callers share that single read. A loaded table is never
// reloaded or modified; a failed load is retried by the next caller.
type Store struct {
	path     string
	load     LoadFunc
	observer LoadObserver
	logger   *slog.Logger

	group singleflight.Group
	mu    sync.RWMutex
	table *Table
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLoadFunc replaces the file loader.
func WithLoadFunc(fn LoadFunc) StoreOption {
	return func(s *Store) {
		s.load = fn
	}
}

// WithLoadObserver registers a callback for successful loads.
func WithLoadObserver(fn LoadObserver) StoreOption {
	return func(s *Store) {
		s.observer = fn
	}
}

// NewStore creates a Store for the dataset at path.
func NewStore(path string, logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		logger: logger.With(slog.String("component", "dataset_store")),
	}
	s.load = NewLoader(logger).Load
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStaticStore wraps an already loaded table.
func NewStaticStore(table *Table) *Store {
	return &Store{
		path:   table.Source,
		logger: slog.Default(),
		table:  table,
	}
}

// Path returns the dataset file path.
func (s *Store) Path() string {
	return s.path
}

// Table returns the dataset, loading it on first use.
func (s *Store) Table(ctx context.Context) (*Table, error) {
	if t := s.cached(); t != nil {
		return t, nil
	}

	ch := s.group.DoChan(s.path, func() (interface{}, error) {
		if t := s.cached(); t != nil {
			return t, nil
		}

		start := time.Now()
		t, err := s.load(s.path)
		if err != nil {
			s.logger.Error("dataset load failed",
				slog.String("path", s.path),
				slog.String("error", err.Error()))
			return nil, err
		}

		s.mu.Lock()
		s.table = t
		s.mu.Unlock()

		if s.observer != nil {
			s.observer(context.WithoutCancel(ctx), time.Since(start), t.Len())
		}
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Table), nil
	}
}

// Loaded reports whether the dataset has been read successfully.
func (s *Store) Loaded() bool {
	return s.cached() != nil
}

func (s *Store) cached() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}
