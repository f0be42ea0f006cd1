package trademark

import (
	"regexp"
	"strings"
)

// anchorRe locates the start of a publication entry: the run of three-digit
// INID field codes that opens every DJKI gazette entry ("210 220 320 ..."),
// followed within the same entry header by a long application-number digit
// sequence, optionally prefixed by its JID/DID series code.
var anchorRe = regexp.MustCompile(`\d{3}\s+\d{3}\s+\d{3}[\s\S]{0,120}?(?:[A-Z]{1,4}\s*)?\d{9,}`)

// fieldCodeRe matches an embedded three-digit INID field code at the start of
// a line or after whitespace, used to re-split oversized windows.
var fieldCodeRe = regexp.MustCompile(`(?m)(?:^|\n)\s*\d{3}\s`)

// coarseSplitRe splits on the weak separators used by the fallback pass:
// runs of blank lines or long dash / equals rules between entries.
var coarseSplitRe = regexp.MustCompile(`\n{3,}|[-=]{5,}`)

// Window is one candidate record region produced by segmentation.
type Window struct {
	// Text is the window content.
	Text string
	// Index is the zero-based window ordinal within the document.
	Index int
	// Start is the byte offset of the window in the source text.
	Start int
}

// Chunk is a fixed-size overlapping fragment produced by the generic chunker
// for full-text indexing.
type Chunk struct {
	Text  string
	Index int
}

// Segmenter slices raw gazette text into per-record windows (anchored
// segmentation) and into overlapping chunks (generic chunking for the
// full-text index).  All thresholds are character counts.
type Segmenter struct {
	// ChunkSize is the target chunk length for the generic chunker and the
	// base unit for the oversized-window re-split (2× ChunkSize).
	ChunkSize int

	// ChunkOverlap is the number of characters consecutive chunks share.
	ChunkOverlap int

	// MinFragment discards segmentation fragments shorter than this; tiny
	// fragments never carry a complete record.
	MinFragment int

	// AnchorMargin is how many characters before an anchor each window
	// begins, so labels printed just above the INID header stay attached.
	AnchorMargin int
}

// NewSegmenter returns a Segmenter with the given tuning, substituting the
// platform defaults for non-positive values.
func NewSegmenter(chunkSize, chunkOverlap, minFragment, anchorMargin int) *Segmenter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 200
		if chunkOverlap >= chunkSize {
			chunkOverlap = chunkSize / 5
		}
	}
	if minFragment <= 0 {
		minFragment = 50
	}
	if anchorMargin < 0 {
		anchorMargin = 200
	}
	return &Segmenter{
		ChunkSize:    chunkSize,
		ChunkOverlap: chunkOverlap,
		MinFragment:  minFragment,
		AnchorMargin: anchorMargin,
	}
}

// AnchorWindows segments text into one window per detected entry anchor.
// Each window spans from AnchorMargin characters before its anchor to the
// start of the next anchor (or end of text).  The margin never re-covers
// text already assigned to the previous window: the first-match field
// cascades would otherwise extract the previous entry's header digits and
// labels again for this entry, so windows after the first start exactly at
// their anchor.  Windows longer than twice ChunkSize are re-split on
// embedded field codes.  An anchor whose content from the anchor onward is
// shorter than MinFragment is dropped; margin padding does not count toward
// the minimum.  Returns nil when no anchor is found.
func (s *Segmenter) AnchorWindows(text string) []Window {
	locs := anchorRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var windows []Window
	for i, loc := range locs {
		start := loc[0]
		if i == 0 {
			start = loc[0] - s.AnchorMargin
			if start < 0 {
				start = 0
			}
		}
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if end <= start {
			continue
		}
		if len(strings.TrimSpace(text[loc[0]:end])) < s.MinFragment {
			continue
		}
		windows = append(windows, s.resplit(text[start:end], start)...)
	}

	out := windows[:0]
	idx := 0
	for _, w := range windows {
		if len(strings.TrimSpace(w.Text)) < s.MinFragment {
			continue
		}
		w.Index = idx
		idx++
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// resplit breaks an oversized window on its embedded field codes.  Windows at
// or under twice ChunkSize pass through unchanged; a window with no internal
// field code also passes through, oversized or not.
func (s *Segmenter) resplit(text string, offset int) []Window {
	if len(text) <= 2*s.ChunkSize {
		return []Window{{Text: text, Start: offset}}
	}

	locs := fieldCodeRe.FindAllStringIndex(text, -1)
	if len(locs) < 2 {
		return []Window{{Text: text, Start: offset}}
	}

	// Split at field codes, greedily accumulating pieces up to ChunkSize.
	var windows []Window
	segStart := 0
	for _, loc := range locs[1:] {
		if loc[0]-segStart >= s.ChunkSize {
			windows = append(windows, Window{Text: text[segStart:loc[0]], Start: offset + segStart})
			segStart = loc[0]
		}
	}
	windows = append(windows, Window{Text: text[segStart:], Start: offset + segStart})
	return windows
}

// CoarseWindows is the fallback segmentation used when no anchor matches:
// the text is split on blank-line runs and dash/equals rules.  Fragments
// shorter than MinFragment are dropped.  If nothing survives, the whole text
// becomes a single window.
func (s *Segmenter) CoarseWindows(text string) []Window {
	parts := coarseSplitRe.Split(text, -1)
	var windows []Window
	idx := 0
	for _, p := range parts {
		if len(strings.TrimSpace(p)) < s.MinFragment {
			continue
		}
		windows = append(windows, Window{Text: p, Index: idx})
		idx++
	}
	if len(windows) == 0 && strings.TrimSpace(text) != "" {
		windows = append(windows, Window{Text: text})
	}
	return windows
}

// sentenceEnders are the punctuation runes the generic chunker prefers to cut
// after.
const sentenceEnders = ".!?"

// ChunkText splits text into overlapping chunks of roughly ChunkSize
// characters for full-text indexing.  Cut points prefer a sentence boundary
// in the second half of the chunk, then the last whitespace before the limit,
// and fall back to a hard cut.  Consecutive chunks overlap by ChunkOverlap
// characters.  Empty or whitespace-only input yields no chunks.
func (s *Segmenter) ChunkText(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []Chunk
	start := 0
	idx := 0
	for start < len(text) {
		end := start + s.ChunkSize
		if end >= len(text) {
			chunk := strings.TrimSpace(text[start:])
			if chunk != "" {
				chunks = append(chunks, Chunk{Text: chunk, Index: idx})
			}
			break
		}

		cut := s.findCut(text, start, end)
		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, Chunk{Text: chunk, Index: idx})
			idx++
		}

		next := cut - s.ChunkOverlap
		if next <= start {
			// Guarantee forward progress on pathological inputs.
			next = start + 1
		}
		start = next
	}
	return chunks
}

// findCut locates the preferred cut position in text[start:end]: the last
// sentence ender past the midpoint, else the nearest preceding whitespace
// anywhere in the chunk, else end.
func (s *Segmenter) findCut(text string, start, end int) int {
	mid := start + (end-start)/2
	for i := end - 1; i > mid; i-- {
		if strings.ContainsRune(sentenceEnders, rune(text[i])) {
			return i + 1
		}
	}
	for i := end - 1; i > start; i-- {
		if text[i] == ' ' || text[i] == '\n' || text[i] == '\t' {
			return i + 1
		}
	}
	return end
}
