package config

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/joshu-sajeev/queuectl/common"
)

// Settings is a point-in-time copy of the retry tunables. Jobs capture one
// at creation and keep it for their whole lifetime.
type Settings struct {
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
	BaseTime   int `json:"base_time" yaml:"base_time"`
}

// Persister stores tunables so operator changes survive a restart.
type Persister interface {
	LoadSettings(ctx context.Context) (map[string]int, error)
	SaveSetting(ctx context.Context, key string, value int) error
}

// Store holds the mutable retry tunables. Writes are serialized; reads
// always see both values from the same write.
type Store struct {
	mu        sync.RWMutex
	values    Settings
	persister Persister
}

// NewStore returns a Store seeded with the defaults. p may be nil, in which
// case values live in memory only.
func NewStore(p Persister) *Store {
	return &Store{
		values: Settings{
			MaxRetries: DefaultMaxRetries,
			BaseTime:   DefaultBaseTime,
		},
		persister: p,
	}
}

// Load replaces the defaults with any persisted values. Unknown or
// non-positive rows are ignored.
func (s *Store) Load(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}

	stored, err := s.persister.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, value := range stored {
		if validate(key, value) != nil {
			continue
		}
		s.apply(key, value)
	}
	return nil
}

// Set validates and replaces one tunable. Jobs already created are not
// affected because they carry their own snapshot.
func (s *Store) Set(ctx context.Context, key string, value int) error {
	if err := validate(key, value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persister != nil {
		if err := s.persister.SaveSetting(ctx, key, value); err != nil {
			return fmt.Errorf("save setting %s: %w", key, err)
		}
	}

	s.apply(key, value)
	return nil
}

// Snapshot returns the current tunables.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

func (s *Store) apply(key string, value int) {
	switch key {
	case KeyMaxRetries:
		s.values.MaxRetries = value
	case KeyBaseTime:
		s.values.BaseTime = value
	}
}

func validate(key string, value int) error {
	if !slices.Contains(AllowedConfigKeys, key) {
		return fmt.Errorf("%w: unknown key %q", common.ErrInvalidConfig, key)
	}
	if value < 1 {
		return fmt.Errorf("%w: %s must be a positive integer", common.ErrInvalidConfig, key)
	}
	return nil
}
