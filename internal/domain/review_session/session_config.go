package reviewsession

import (
	"fmt"
	"math/rand"

	"github.com/wrongbook/backend/internal/domain/problem"
)

// SessionConfig holds the ordering and size constraints of a review session.
type SessionConfig struct {
	Randomize   bool `json:"randomize"`
	SessionSize *int `json:"session_size,omitempty"` // nil = every eligible problem
	AutoAdvance bool `json:"auto_advance"`           // client hint only
}

// DefaultConfig returns a config with no constraints.
func DefaultConfig() SessionConfig {
	return SessionConfig{
		Randomize:   false,
		SessionSize: nil,
		AutoAdvance: false,
	}
}

func (c SessionConfig) Validate() error {
	if c.SessionSize != nil && *c.SessionSize <= 0 {
		return fmt.Errorf("%w: session_size must be positive", ErrInvalidInput)
	}
	return nil
}

// Compose turns the eligible problems into the ordered id sequence of a new
// session. With Randomize the whole list is shuffled before the size cap is
// applied, so a capped random session is a uniform subset. rng may be nil.
func Compose(problems []problem.Problem, config SessionConfig, rng *rand.Rand) ([]string, error) {
	ids := make([]string, len(problems))
	for i, p := range problems {
		ids[i] = p.ID
	}

	if config.Randomize {
		shuffleIDs(ids, rng)
	}

	if config.SessionSize != nil && *config.SessionSize > 0 && *config.SessionSize < len(ids) {
		ids = ids[:*config.SessionSize]
	}

	if len(ids) == 0 {
		return nil, ErrNoMatchingProblems
	}
	return ids, nil
}

func shuffleIDs(ids []string, rng *rand.Rand) {
	swap := func(i, j int) { ids[i], ids[j] = ids[j], ids[i] }
	if rng != nil {
		rng.Shuffle(len(ids), swap)
		return
	}
	rand.Shuffle(len(ids), swap)
}
