package trademark

import (
	"github.com/wirkancil/markintel/internal/infrastructure/monitoring/logging"
	"github.com/wirkancil/markintel/pkg/errors"
)

// Assembler orchestrates the full extraction pipeline for one document:
// anchored segmentation, per-window field extraction, validation, the
// at-most-once coarse fallback, and first-seen deduplication.
type Assembler struct {
	segmenter *Segmenter
	extractor *Extractor
	logger    logging.Logger
}

// NewAssembler wires an Assembler.  A nil logger falls back to the no-op
// implementation so the assembler stays usable in tests.
func NewAssembler(segmenter *Segmenter, extractor *Extractor, logger logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Assembler{
		segmenter: segmenter,
		extractor: extractor,
		logger:    logger.Named("assembler"),
	}
}

// ExtractDocument extracts all valid trademark records from raw document
// text.  The anchored pass runs first; only when it yields no valid record
// does the pipeline escalate once to the coarse fallback.  Records from the
// two passes are never mixed.  Returns ErrCodeDocumentEmpty for blank input
// and ErrCodeNoRecordsFound when both passes come up empty.
func (a *Assembler) ExtractDocument(documentID, text string) ([]*Record, error) {
	if len(text) == 0 {
		return nil, errors.New(errors.ErrCodeDocumentEmpty, "document contains no text").
			WithDetail("document_id=" + documentID)
	}

	records := a.extractPass(documentID, a.segmenter.AnchorWindows(text), MethodAnchorBased)
	if len(records) == 0 {
		a.logger.Info("anchored pass produced no valid records, escalating to coarse fallback",
			logging.String("document_id", documentID))
		records = a.extractPass(documentID, a.segmenter.CoarseWindows(text), MethodFallbackCoarse)
	}

	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeNoRecordsFound, "no valid trademark records found").
			WithDetail("document_id=" + documentID)
	}

	deduped := DedupFirstSeen(records)
	if dropped := len(records) - len(deduped); dropped > 0 {
		a.logger.Debug("dropped duplicate records",
			logging.String("document_id", documentID),
			logging.Int("dropped", dropped))
	}
	return deduped, nil
}

// extractPass runs the extractor over one set of windows, keeping only
// records that satisfy the mandatory-field invariant.  Invalid windows are
// skipped and logged; a bad window never aborts the pass.
func (a *Assembler) extractPass(documentID string, windows []Window, method ExtractionMethod) []*Record {
	var records []*Record
	for _, w := range windows {
		rec := a.extractor.ExtractRecord(w.Text)
		rec.SourceDocumentID = documentID
		rec.Provenance = Provenance{Window: w.Index, Method: method}
		if !rec.Valid() {
			a.logger.Debug("skipping window without a complete record",
				logging.String("document_id", documentID),
				logging.Int("window", w.Index),
				logging.String("method", string(method)))
			continue
		}
		records = append(records, rec)
	}
	return records
}
