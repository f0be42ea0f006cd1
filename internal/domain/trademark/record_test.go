package trademark

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordValid(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{
			name:   "all mandatory fields present",
			record: Record{ApplicationNumber: "DID2024001234", MarkName: "SUPERCOLA", Class: "25"},
			want:   true,
		},
		{
			name:   "missing application number",
			record: Record{MarkName: "SUPERCOLA", Class: "25"},
			want:   false,
		},
		{
			name:   "missing mark name",
			record: Record{ApplicationNumber: "DID2024001234", Class: "25"},
			want:   false,
		},
		{
			name:   "missing class",
			record: Record{ApplicationNumber: "DID2024001234", MarkName: "SUPERCOLA"},
			want:   false,
		},
		{
			name:   "empty record",
			record: Record{},
			want:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Valid())
		})
	}
}

func TestIdentityKey(t *testing.T) {
	withNumber := &Record{ApplicationNumber: "JID2020123456", SourceDocumentID: "doc-1"}
	assert.Equal(t, "JID2020123456", withNumber.IdentityKey())

	withoutNumber := &Record{SourceDocumentID: "doc-1"}
	assert.Equal(t, "doc:doc-1", withoutNumber.IdentityKey())
}

func TestSearchText(t *testing.T) {
	r := &Record{
		MarkName:         "SUPERCOLA",
		ApplicantName:    "PT ABC",
		GoodsDescription: "Kelas 25: Pakaian jadi, kaos",
		Class:            "25",
	}
	assert.Equal(t,
		"Nama Merek: SUPERCOLA | Pemohon: PT ABC | Barang/Jasa: Pakaian jadi, kaos | Kelas: 25",
		r.SearchText())
}

func TestParseReceptionDate(t *testing.T) {
	t.Run("date with time", func(t *testing.T) {
		r := &Record{ReceptionDate: "01/02/2020 10:00:00"}
		ts, ok := r.ParseReceptionDate()
		require.True(t, ok)
		assert.Equal(t, time.Date(2020, 2, 1, 10, 0, 0, 0, time.UTC), ts)
	})

	t.Run("date only", func(t *testing.T) {
		r := &Record{ReceptionDate: "15/07/2021"}
		ts, ok := r.ParseReceptionDate()
		require.True(t, ok)
		assert.Equal(t, time.Date(2021, 7, 15, 0, 0, 0, 0, time.UTC), ts)
	})

	t.Run("empty and garbage", func(t *testing.T) {
		_, ok := (&Record{}).ParseReceptionDate()
		assert.False(t, ok)
		_, ok = (&Record{ReceptionDate: "not a date"}).ParseReceptionDate()
		assert.False(t, ok)
	})
}

func TestDedupFirstSeen(t *testing.T) {
	first := &Record{ApplicationNumber: "DID2024000001", MarkName: "ALPHA", Class: "9"}
	dup := &Record{ApplicationNumber: "DID2024000001", MarkName: "ALPHA RICHER", Class: "9", ApplicantName: "PT Lengkap"}
	other := &Record{ApplicationNumber: "DID2024000002", MarkName: "BETA", Class: "9"}

	out := DedupFirstSeen([]*Record{first, dup, other})

	require.Len(t, out, 2)
	// First occurrence wins; the richer duplicate is dropped, not merged.
	assert.Same(t, first, out[0])
	assert.Empty(t, out[0].ApplicantName)
	assert.Same(t, other, out[1])
}

func TestDedupFirstSeenFallbackIdentity(t *testing.T) {
	a := &Record{SourceDocumentID: "doc-1", MarkName: "GAMMA"}
	b := &Record{SourceDocumentID: "doc-1", MarkName: "DELTA"}
	out := DedupFirstSeen([]*Record{a, b})
	// Same document, no application numbers: they collapse to one identity.
	require.Len(t, out, 1)
	assert.Same(t, a, out[0])
}
