package trademark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractRecordSingleLineEntry(t *testing.T) {
	// A flattened gazette entry as PDF text extraction typically yields it:
	// every field on one line, labels run together.
	text := "210 220 320 01/02/2020 10:00:00 JID 1234567890 " +
		"Nama Pemohon: PT ABC " +
		"Nama Referensi Label Merek: SUPERCOLA " +
		"Kelas Barang/Jasa: 25"

	e := NewExtractor()
	rec := e.ExtractRecord(text)

	assert.Equal(t, "1234567890", rec.ApplicationNumber)
	assert.Equal(t, "PT ABC", rec.ApplicantName)
	assert.Equal(t, "SUPERCOLA", rec.MarkName)
	assert.Equal(t, "25", rec.Class)
	assert.Equal(t, "01/02/2020 10:00:00", rec.ReceptionDate)
	assert.True(t, rec.Valid())
}

func TestExtractRecordMultiLineEntry(t *testing.T) {
	text := `210 Nomor Permohonan : DID2024001234
220 Tanggal Penerimaan : 15/03/2024 09:30:00
730 Nama Pemohon : PT Maju Bersama
Alamat Pemohon : Jl. Sudirman No. 1, Jakarta
740 Nama Kuasa : Budi Santoso, S.H.
Nama Referensi Label Merek : KOPI NUSANTARA
Tipe Merek : Merek Kata dan Lukisan
566 Arti Bahasa : Tidak Ada Terjemahan
591 Uraian Warna : Hitam, Putih, Emas
511 Kelas Barang/Jasa : 30
510 Uraian Barang/Jasa : Kelas 30: Kopi, teh, kakao`

	e := NewExtractor()
	rec := e.ExtractRecord(text)

	assert.Equal(t, "DID2024001234", rec.ApplicationNumber)
	assert.Equal(t, "15/03/2024 09:30:00", rec.ReceptionDate)
	assert.Equal(t, "PT Maju Bersama", rec.ApplicantName)
	assert.Equal(t, "Jl. Sudirman No. 1, Jakarta", rec.ApplicantAddress)
	assert.Equal(t, "Budi Santoso, S.H.", rec.AgentName)
	assert.Equal(t, "KOPI NUSANTARA", rec.MarkName)
	assert.Equal(t, "Merek Kata dan Lukisan", rec.MarkType)
	assert.Equal(t, "Tidak Ada Terjemahan", rec.LanguageNote)
	assert.Equal(t, "Hitam, Putih, Emas", rec.ColorDescription)
	assert.Equal(t, "30", rec.Class)
	assert.Equal(t, "Kelas 30: Kopi, teh, kakao", rec.GoodsDescription)
}

func TestCascadeFirstMatchWins(t *testing.T) {
	e := NewExtractor()

	// An explicit "Nomor Permohonan" label outranks the bare JID fallback.
	text := "Nomor Permohonan : DID2024009999 JID 1234567890"
	assert.Equal(t, "DID2024009999", e.ExtractField(FieldApplicationNumber, text))

	// Without the label, the series-code fallback fires.
	assert.Equal(t, "1234567890", e.ExtractField(FieldApplicationNumber, "JID 1234567890"))

	// As a last resort any long digit run is accepted.
	assert.Equal(t, "9876543210", e.ExtractField(FieldApplicationNumber, "entri 9876543210 tanpa label"))
}

func TestExtractFieldNoMatch(t *testing.T) {
	e := NewExtractor()
	assert.Empty(t, e.ExtractField(FieldMarkName, "no labels in sight"))
	assert.Empty(t, e.ExtractField(FieldApplicationNumber, "short 123 numbers 4567 only"))
}

func TestDateAssembly(t *testing.T) {
	e := NewExtractor()

	t.Run("labelled date with time", func(t *testing.T) {
		got := e.ExtractField(FieldReceptionDate, "Tanggal Penerimaan : 01/02/2020 10:00:00")
		assert.Equal(t, "01/02/2020 10:00:00", got)
	})

	t.Run("labelled date without time", func(t *testing.T) {
		got := e.ExtractField(FieldReceptionDate, "Tanggal Penerimaan : 01/02/2020")
		assert.Equal(t, "01/02/2020", got)
	})

	t.Run("publication date", func(t *testing.T) {
		got := e.ExtractField(FieldPublicationDate, "Tanggal Pengumuman : 20/05/2024")
		assert.Equal(t, "20/05/2024", got)
	})
}

func TestCleanup(t *testing.T) {
	e := NewExtractor()

	t.Run("collapses whitespace and newlines", func(t *testing.T) {
		got := e.ExtractField(FieldApplicantName, "Nama Pemohon :   PT   Spasi\tGanda  ")
		assert.Equal(t, "PT Spasi Ganda", got)
	})

	t.Run("strips trailing colon", func(t *testing.T) {
		got := e.ExtractField(FieldApplicantName, "Nama Pemohon : PT Titik Dua :")
		assert.Equal(t, "PT Titik Dua", got)
	})
}

func TestBoilerplateSuffixStripped(t *testing.T) {
	e := NewExtractor()

	got := e.ExtractField(FieldMarkName, "Nama Merek: SUPERCOLA Label Merek")
	assert.Equal(t, "SUPERCOLA", got)

	got = e.ExtractField(FieldMarkName, "Nama Merek: SUPERCOLA Tipe Merek :")
	assert.Equal(t, "SUPERCOLA", got)
}

func TestTruncationAtNeighbourLabels(t *testing.T) {
	e := NewExtractor()

	// Free-text fields must not swallow the neighbouring field on
	// single-line layouts.
	text := "Nama Pemohon: PT ABC Alamat Pemohon: Jl. Mawar 5 Nama Kuasa: Budi"
	assert.Equal(t, "PT ABC", e.ExtractField(FieldApplicantName, text))
	assert.Equal(t, "Jl. Mawar 5", e.ExtractField(FieldApplicantAddress, text))
	assert.Equal(t, "Budi", e.ExtractField(FieldAgentName, text))
}

func TestExtractAllOmitsEmptyFields(t *testing.T) {
	e := NewExtractor()
	fields := e.ExtractAll("Nama Merek: SOLO")
	require.Contains(t, fields, FieldMarkName)
	assert.NotContains(t, fields, FieldClass)
	assert.NotContains(t, fields, FieldApplicationNumber)
}
