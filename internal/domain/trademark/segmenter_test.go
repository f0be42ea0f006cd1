package trademark

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultSegmenter() *Segmenter {
	return NewSegmenter(1000, 200, 50, 200)
}

func gazetteEntry(appNo, mark string) string {
	return "210 220 320 01/02/2020 10:00:00 JID " + appNo + "\n" +
		"730 Nama Pemohon : PT Contoh Abadi\n" +
		"Nama Referensi Label Merek : " + mark + "\n" +
		"511 Kelas Barang/Jasa : 25\n" +
		"510 Uraian Barang/Jasa : Pakaian jadi, kaos, celana\n"
}

func TestAnchorWindows(t *testing.T) {
	s := defaultSegmenter()

	t.Run("no anchor returns nil", func(t *testing.T) {
		assert.Nil(t, s.AnchorWindows("plain prose with no gazette structure at all, long enough to matter"))
	})

	t.Run("one window per entry", func(t *testing.T) {
		text := gazetteEntry("1234567890", "SUPERCOLA") + "\n" + gazetteEntry("1234567891", "MEGACOLA")
		windows := s.AnchorWindows(text)
		require.Len(t, windows, 2)
		assert.Contains(t, windows[0].Text, "SUPERCOLA")
		assert.NotContains(t, windows[0].Text, "MEGACOLA")
		assert.Contains(t, windows[1].Text, "MEGACOLA")
		assert.Equal(t, 0, windows[0].Index)
		assert.Equal(t, 1, windows[1].Index)
	})

	t.Run("margin keeps text before the anchor", func(t *testing.T) {
		prefix := "Nomor Permohonan label printed above header\n"
		windows := s.AnchorWindows(prefix + gazetteEntry("1234567890", "SUPERCOLA"))
		require.Len(t, windows, 1)
		assert.True(t, strings.HasPrefix(windows[0].Text, prefix))
	})

	t.Run("margin does not bleed the previous entry into the next window", func(t *testing.T) {
		text := gazetteEntry("1234567890", "SUPERCOLA") + "\n" + gazetteEntry("1234567891", "MEGACOLA")
		windows := s.AnchorWindows(text)
		require.Len(t, windows, 2)
		assert.NotContains(t, windows[1].Text, "1234567890")
		assert.NotContains(t, windows[1].Text, "SUPERCOLA")
		assert.True(t, strings.HasPrefix(windows[1].Text, "210 220 320"))
	})

	t.Run("margin padding does not keep a tiny fragment alive", func(t *testing.T) {
		// The prefix alone exceeds MinFragment; the anchor content does not.
		prefix := strings.Repeat("daftar umum merek halaman 12 ", 4) + "\n"
		windows := s.AnchorWindows(prefix + "210 220 320 JID 9999999999")
		assert.Nil(t, windows)
	})

	t.Run("tiny fragments are dropped", func(t *testing.T) {
		// An anchor with almost no content after it.
		text := gazetteEntry("1234567890", "SUPERCOLA") + "\n210 220 320 JID 9999999999"
		windows := s.AnchorWindows(text)
		require.Len(t, windows, 1)
		assert.Contains(t, windows[0].Text, "SUPERCOLA")
	})

	t.Run("oversized window is re-split on field codes", func(t *testing.T) {
		// One anchor followed by a long body with internal field codes.
		var body strings.Builder
		body.WriteString(gazetteEntry("1234567890", "SUPERCOLA"))
		for i := 0; i < 8; i++ {
			body.WriteString("510 Uraian Barang/Jasa : " + strings.Repeat("jasa perdagangan eceran ", 20) + "\n")
		}
		windows := s.AnchorWindows(body.String())
		require.Greater(t, len(windows), 1)
		for _, w := range windows {
			assert.GreaterOrEqual(t, len(strings.TrimSpace(w.Text)), s.MinFragment)
		}
	})
}

func TestCoarseWindows(t *testing.T) {
	s := defaultSegmenter()

	t.Run("splits on blank runs and rules", func(t *testing.T) {
		a := strings.Repeat("first entry text ", 5)
		b := strings.Repeat("second entry text ", 5)
		c := strings.Repeat("third entry text ", 5)
		windows := s.CoarseWindows(a + "\n\n\n" + b + "\n=====\n" + c)
		require.Len(t, windows, 3)
	})

	t.Run("short text becomes a single window", func(t *testing.T) {
		windows := s.CoarseWindows("tiny")
		require.Len(t, windows, 1)
		assert.Equal(t, "tiny", windows[0].Text)
	})

	t.Run("blank input yields nothing", func(t *testing.T) {
		assert.Empty(t, s.CoarseWindows("   \n  "))
	})
}

func TestChunkText(t *testing.T) {
	s := defaultSegmenter()

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, s.ChunkText(""))
		assert.Nil(t, s.ChunkText("   \n\t  "))
	})

	t.Run("short input is one chunk", func(t *testing.T) {
		chunks := s.ChunkText("a short paragraph")
		require.Len(t, chunks, 1)
		assert.Equal(t, "a short paragraph", chunks[0].Text)
	})

	t.Run("long input overlaps and covers everything", func(t *testing.T) {
		var sb strings.Builder
		for i := 0; i < 120; i++ {
			sb.WriteString("Merek dagang terdaftar untuk kelas barang dan jasa. ")
		}
		text := sb.String()
		chunks := s.ChunkText(text)
		require.Greater(t, len(chunks), 1)

		for i, c := range chunks {
			assert.LessOrEqual(t, len(c.Text), s.ChunkSize+1, "chunk %d too long", i)
			assert.Equal(t, i, c.Index)
		}
		// Last characters of the input survive in the final chunk.
		tail := strings.TrimSpace(text[len(text)-40:])
		assert.Contains(t, chunks[len(chunks)-1].Text, tail)
	})

	t.Run("prefers sentence boundaries", func(t *testing.T) {
		var sb strings.Builder
		for i := 0; i < 60; i++ {
			sb.WriteString("Kalimat pendek nomor satu. ")
		}
		chunks := s.ChunkText(sb.String())
		require.Greater(t, len(chunks), 1)
		assert.True(t, strings.HasSuffix(chunks[0].Text, "."), "expected sentence-boundary cut, got %q", chunks[0].Text[len(chunks[0].Text)-20:])
	})

	t.Run("whitespace cut before the midpoint beats a hard cut", func(t *testing.T) {
		// The only whitespace in the first chunk sits well before its
		// midpoint; the cut must still land there instead of mid-word.
		text := strings.Repeat("a", 400) + " " + strings.Repeat("b", 800)
		chunks := s.ChunkText(text)
		require.NotEmpty(t, chunks)
		assert.Equal(t, strings.Repeat("a", 400), chunks[0].Text)
	})

	t.Run("deterministic", func(t *testing.T) {
		text := strings.Repeat("pasal perlindungan merek terdaftar di Indonesia. ", 80)
		a := s.ChunkText(text)
		b := s.ChunkText(text)
		assert.Equal(t, a, b)
	})

	t.Run("pathological unbroken input still terminates", func(t *testing.T) {
		text := strings.Repeat("x", 3500)
		chunks := s.ChunkText(text)
		require.NotEmpty(t, chunks)
		total := 0
		for _, c := range chunks {
			total += len(c.Text)
		}
		assert.GreaterOrEqual(t, total, len(text))
	})
}
