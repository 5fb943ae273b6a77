// Package numerator provides sequence-backed code generation
// (EMP-000001 style) on top of a sys_sequences table.
package numerator

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Strategy defines the numbering generation strategy.
type Strategy int

const (
	// StrategyStrict uses UPSERT ... RETURNING for every number.
	// Guarantees gapless sequential numbers.
	StrategyStrict Strategy = iota

	// StrategyCached allocates ranges of numbers in memory. Faster, but
	// a restart loses the unused tail of the current range.
	StrategyCached
)

// Options configures number generation.
type Options struct {
	Strategy Strategy

	// RangeSize is how many numbers to reserve per DB round trip in
	// Cached strategy. Default is 50.
	RangeSize int64
}

// DefaultOptions returns the strict strategy.
func DefaultOptions() *Options {
	return &Options{Strategy: StrategyStrict}
}

// Querier is the database dependency.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds formatting configuration for one code family.
type Config struct {
	// Prefix added to all codes (e.g. "EMP")
	Prefix string

	// PadWidth is the minimum numeric width (default 6)
	PadWidth int
}

// DefaultConfig returns the standard code format: PREFIX-000001.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: 6,
	}
}

type cachedRange struct {
	current int64
	max     int64
}

// Service generates sequential codes. Safe for concurrent use.
type Service struct {
	querier Querier

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

// New creates a numerator service.
func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		ranges:  make(map[string]*cachedRange),
	}
}

// NextCode generates the next code for the prefix using the strict
// strategy and default formatting. Satisfies the code-generator
// collaborator of the employee service.
func (s *Service) NextCode(ctx context.Context, prefix string) (string, error) {
	return s.Next(ctx, DefaultConfig(prefix), nil)
}

// Next generates the next code for the config.
func (s *Service) Next(ctx context.Context, cfg Config, opts *Options) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = DefaultOptions()
	}

	var num int64
	var err error
	switch opts.Strategy {
	case StrategyCached:
		num, err = s.nextCached(ctx, cfg.Prefix, opts)
	default:
		num, err = s.nextStrict(ctx, cfg.Prefix)
	}
	if err != nil {
		return "", err
	}

	return formatCode(cfg, num), nil
}

// nextStrict bumps the sequence row by one and returns the new value.
func (s *Service) nextStrict(ctx context.Context, key string) (int64, error) {
	var num int64
	err := s.querier.QueryRow(ctx, `
        INSERT INTO sys_sequences (key, current_val)
        VALUES ($1, 1)
        ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
        RETURNING current_val
	`, key).Scan(&num)
	if err != nil {
		return 0, fmt.Errorf("next sequence value: %w", err)
	}
	return num, nil
}

// nextCached serves numbers from an in-memory range, reserving a new
// range from the DB when the current one is exhausted. current_val in
// the sequence row is the last number handed out, so reserving a range
// of size N yields (old_val, old_val+N].
func (s *Service) nextCached(ctx context.Context, key string, opts *Options) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, exists := s.ranges[key]
	if !exists {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		size := opts.RangeSize
		if size <= 0 {
			size = 50
		}

		var newMax int64
		err := s.querier.QueryRow(ctx, `
            INSERT INTO sys_sequences (key, current_val)
            VALUES ($1, $2)
            ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
            RETURNING current_val
		`, key, size).Scan(&newMax)
		if err != nil {
			return 0, fmt.Errorf("reserve range: %w", err)
		}

		rng.current = newMax - size
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}

// SetNext pins the sequence so the next generated number is value+1.
// Used by migrations; invalidates any cached range for the prefix.
func (s *Service) SetNext(ctx context.Context, prefix string, value int64) error {
	var result int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, prefix, value).Scan(&result)

	s.cacheMu.Lock()
	delete(s.ranges, prefix)
	s.cacheMu.Unlock()

	return err
}

func formatCode(cfg Config, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 6
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the numeric part from a formatted code.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	var num int64
	if _, err := fmt.Sscanf(formatted, "%*[^-]-%d", &num); err == nil {
		return num
	}
	return -1
}
