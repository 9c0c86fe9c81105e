package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jcalderon/strikelog/internal/models"
	"github.com/jcalderon/strikelog/internal/storage"
)

type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Timeout        time.Duration
}

var DefaultConfig = Config{
	MaxRetries:     3,
	InitialBackoff: 200 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
	Timeout:        30 * time.Second,
}

// Saver wraps a storage.Interface with bounded retries, exponential backoff
// and a circuit breaker around Save. Journal writes hit a file that the user
// may have open in a spreadsheet, so transient failures are expected; the
// breaker stops us hammering a locked file. A failed Save leaves the
// caller's in-memory state untouched - records are only ever passed down by
// value.
type Saver struct {
	store   storage.Interface
	logger  *log.Logger
	config  Config
	breaker *gobreaker.CircuitBreaker
}

// NewSaver creates a retrying saver around store. The breaker trips after
// repeated consecutive failures and recovers on its own after a cool-down.
func NewSaver(store storage.Interface, logger *log.Logger, config ...Config) *Saver {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	settings := gobreaker.Settings{
		Name:     "JournalSaver",
		Interval: 60 * time.Second,
		Timeout:  15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Printf("Circuit breaker %s state changed from %s to %s", name, from, to)
		},
	}

	return &Saver{
		store:   store,
		logger:  logger,
		config:  cfg,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Load passes straight through to the underlying store. Reads are cheap and
// a failed read is surfaced immediately rather than retried.
func (s *Saver) Load() ([]models.LegRecord, error) {
	return s.store.Load()
}

// Save writes the journal, retrying transient failures with exponential
// backoff until the retry budget, the context or the circuit breaker says
// stop.
func (s *Saver) Save(ctx context.Context, records []models.LegRecord) error {
	saveCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var lastErr error
	backoff := s.config.InitialBackoff

	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		if err := saveCtx.Err(); err != nil {
			return fmt.Errorf("save canceled after %d attempts: %w", attempt, err)
		}

		_, err := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.store.Save(records)
		})
		if err == nil {
			if attempt > 0 {
				s.logger.Printf("Journal saved on attempt %d/%d", attempt+1, s.config.MaxRetries+1)
			}
			return nil
		}

		lastErr = err
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// The breaker will not close within our retry window.
			return fmt.Errorf("journal save rejected by circuit breaker: %w", err)
		}

		s.logger.Printf("Journal save attempt %d failed: %v", attempt+1, err)
		if attempt == s.config.MaxRetries {
			break
		}

		select {
		case <-time.After(backoff):
			backoff = s.nextBackoff(backoff)
		case <-saveCtx.Done():
			return fmt.Errorf("save canceled during backoff: %w", saveCtx.Err())
		}
	}

	return fmt.Errorf("failed to save journal after %d attempts: %w", s.config.MaxRetries+1, lastErr)
}

func (s *Saver) nextBackoff(current time.Duration) time.Duration {
	next := time.Duration(float64(current) * 1.5)
	if next > s.config.MaxBackoff {
		next = s.config.MaxBackoff
	}

	maxJitter := int64(next / 4)
	if maxJitter > 0 {
		jitterVal, err := rand.Int(rand.Reader, big.NewInt(maxJitter))
		if err != nil {
			s.logger.Printf("Failed to generate jitter: %v", err)
		} else {
			next += time.Duration(jitterVal.Int64())
		}
	}

	return next
}
