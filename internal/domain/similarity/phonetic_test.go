package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneticCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SUPERCOLA", "superkola"},
		{"SUPPERKOLLA", "superkola"},
		{"CAFE", "kape"},
		{"KAVE", "kape"},
		{"JAYA", "yaya"},
		{"ZUPER", "super"},
		{"XEROX", "kseroks"},
		{"QUEEN", "kuen"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PhoneticCode(tt.in), tt.in)
	}
}

func TestPhoneticSimilarity(t *testing.T) {
	t.Run("sound-alike spellings score 1", func(t *testing.T) {
		assert.InDelta(t, 1.0, PhoneticSimilarity("SUPERCOLA", "SUPPERKOLLA"), 1e-9)
		assert.InDelta(t, 1.0, PhoneticSimilarity("CAFE", "KAVE"), 1e-9)
		assert.InDelta(t, 1.0, PhoneticSimilarity("VISTA", "FISTA"), 1e-9)
	})

	t.Run("symmetry", func(t *testing.T) {
		assert.InDelta(t,
			PhoneticSimilarity("SUPERCOLA", "MEGACOLA"),
			PhoneticSimilarity("MEGACOLA", "SUPERCOLA"), 1e-9)
	})

	t.Run("unrelated names score low", func(t *testing.T) {
		assert.Less(t, PhoneticSimilarity("SUPERCOLA", "BATIK"), 0.5)
	})

	t.Run("both empty score 1", func(t *testing.T) {
		assert.InDelta(t, 1.0, PhoneticSimilarity("", ""), 1e-9)
	})
}
