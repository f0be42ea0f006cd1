package similarity

import (
	"sync"
	"sync/atomic"

	"github.com/wirkancil/markintel/pkg/errors"
)

// Thresholds holds the per-pass minimum scores plus the overall cutoff.
// Values live in [0,1].  The struct is immutable once published; updates go
// through Store.Update which swaps in a fresh copy.
type Thresholds struct {
	Lexical  float64 `json:"lexical"`
	Phonetic float64 `json:"phonetic"`
	Semantic float64 `json:"semantic"`
	Overall  float64 `json:"overall"`
}

// DefaultThresholds returns the platform defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Lexical:  0.7,
		Phonetic: 0.8,
		Semantic: 0.6,
		Overall:  0.3,
	}
}

// ThresholdPatch is a partial update; nil fields keep their current values.
type ThresholdPatch struct {
	Lexical  *float64
	Phonetic *float64
	Semantic *float64
	Overall  *float64
}

// Store publishes the live Thresholds to concurrent readers.  Readers always
// see a complete, consistent snapshot: Update builds the merged copy first
// and then swaps the pointer atomically, so an analysis that started before
// an update finishes with the values it started with.
type Store struct {
	// mu serializes writers; readers go straight to the atomic pointer.
	mu      sync.Mutex
	current atomic.Pointer[Thresholds]
}

// NewStore creates a Store seeded with initial.
func NewStore(initial Thresholds) *Store {
	s := &Store{}
	t := initial
	s.current.Store(&t)
	return s
}

// Current returns the live threshold snapshot.
func (s *Store) Current() Thresholds {
	return *s.current.Load()
}

// Update merges patch over the current values, validates the result, and
// publishes it atomically.  The merged snapshot is returned.  Out-of-range
// values reject the whole patch (ErrCodeThresholdInvalid) and leave the live
// configuration untouched.
func (s *Store) Update(patch ThresholdPatch) (Thresholds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.Current()
	if patch.Lexical != nil {
		merged.Lexical = *patch.Lexical
	}
	if patch.Phonetic != nil {
		merged.Phonetic = *patch.Phonetic
	}
	if patch.Semantic != nil {
		merged.Semantic = *patch.Semantic
	}
	if patch.Overall != nil {
		merged.Overall = *patch.Overall
	}

	if err := validateThresholds(merged); err != nil {
		return s.Current(), err
	}

	s.current.Store(&merged)
	return merged, nil
}

func validateThresholds(t Thresholds) error {
	for name, v := range map[string]float64{
		"lexical":  t.Lexical,
		"phonetic": t.Phonetic,
		"semantic": t.Semantic,
		"overall":  t.Overall,
	} {
		if v < 0 || v > 1 {
			return errors.Newf(errors.ErrCodeThresholdInvalid,
				"threshold %s out of [0,1]: %g", name, v)
		}
	}
	return nil
}
