package similarity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirkancil/markintel/pkg/errors"
)

func f(v float64) *float64 { return &v }

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.InDelta(t, 0.7, th.Lexical, 1e-9)
	assert.InDelta(t, 0.8, th.Phonetic, 1e-9)
	assert.InDelta(t, 0.6, th.Semantic, 1e-9)
	assert.InDelta(t, 0.3, th.Overall, 1e-9)
}

func TestStoreUpdatePartial(t *testing.T) {
	s := NewStore(DefaultThresholds())

	merged, err := s.Update(ThresholdPatch{Overall: f(0.5)})
	require.NoError(t, err)

	// The patched field changed, the others kept their values.
	assert.InDelta(t, 0.5, merged.Overall, 1e-9)
	assert.InDelta(t, 0.7, merged.Lexical, 1e-9)
	assert.InDelta(t, 0.8, merged.Phonetic, 1e-9)
	assert.InDelta(t, 0.6, merged.Semantic, 1e-9)
	assert.Equal(t, merged, s.Current())
}

func TestStoreUpdateRejectsOutOfRange(t *testing.T) {
	s := NewStore(DefaultThresholds())

	_, err := s.Update(ThresholdPatch{Lexical: f(1.5)})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeThresholdInvalid))

	_, err = s.Update(ThresholdPatch{Semantic: f(-0.1)})
	require.Error(t, err)

	// A rejected patch leaves the live configuration untouched.
	assert.Equal(t, DefaultThresholds(), s.Current())
}

func TestStoreUpdateEmptyPatchIsNoop(t *testing.T) {
	s := NewStore(DefaultThresholds())
	merged, err := s.Update(ThresholdPatch{})
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholds(), merged)
}

func TestStoreConcurrentWritersLoseNoPatch(t *testing.T) {
	s := NewStore(DefaultThresholds())

	// Two writers patch disjoint fields at the same time; both patches must
	// survive into the final configuration.
	var wg sync.WaitGroup
	start := make(chan struct{})
	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, err := s.Update(ThresholdPatch{Lexical: f(0.11)})
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		<-start
		_, err := s.Update(ThresholdPatch{Phonetic: f(0.22)})
		assert.NoError(t, err)
	}()
	close(start)
	wg.Wait()

	got := s.Current()
	assert.InDelta(t, 0.11, got.Lexical, 1e-9)
	assert.InDelta(t, 0.22, got.Phonetic, 1e-9)
}

func TestStoreConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := NewStore(DefaultThresholds())

	var wg sync.WaitGroup
	// Writers flip between two complete configurations; readers must never
	// observe a mix of the two.
	a := Thresholds{Lexical: 0.1, Phonetic: 0.1, Semantic: 0.1, Overall: 0.1}
	b := Thresholds{Lexical: 0.9, Phonetic: 0.9, Semantic: 0.9, Overall: 0.9}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			next := a
			if i%2 == 1 {
				next = b
			}
			_, err := s.Update(ThresholdPatch{
				Lexical: f(next.Lexical), Phonetic: f(next.Phonetic),
				Semantic: f(next.Semantic), Overall: f(next.Overall),
			})
			assert.NoError(t, err)
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				got := s.Current()
				if got != DefaultThresholds() && got != a && got != b {
					t.Errorf("torn threshold snapshot: %+v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}
