// Package trademark contains the extraction domain: the trademark record
// entity, the anchored document segmenter, and the regex-cascade field
// extractor that together turn raw publication text into structured records.
package trademark

import (
	"fmt"
	"strings"
	"time"
)

// ExtractionMethod records which extraction strategy produced a record.
type ExtractionMethod string

const (
	// MethodAnchorBased marks records produced by the primary anchored
	// segmentation pass.
	MethodAnchorBased ExtractionMethod = "anchor-based"

	// MethodFallbackCoarse marks records produced by the coarse whole-text
	// fallback pass that runs when anchored segmentation yields nothing.
	MethodFallbackCoarse ExtractionMethod = "fallback-coarse"
)

// Provenance describes where and how a record was extracted.
type Provenance struct {
	Page   int              `json:"page,omitempty"`
	Window int              `json:"window,omitempty"`
	Method ExtractionMethod `json:"method"`
}

// Record is a single trademark publication entry extracted from an official
// gazette document.  ApplicationNumber, MarkName and Class are mandatory;
// every other field defaults to the empty string when the source text does
// not carry it.
type Record struct {
	ApplicationNumber string `json:"application_number"`
	MarkName          string `json:"mark_name"`
	Class             string `json:"class"`

	ApplicantName     string `json:"applicant_name,omitempty"`
	ApplicantAddress  string `json:"applicant_address,omitempty"`
	GoodsDescription  string `json:"goods_description,omitempty"`
	MarkType          string `json:"mark_type,omitempty"`
	ReceptionDate     string `json:"reception_date,omitempty"`
	PublicationDate   string `json:"publication_date,omitempty"`
	CertificateNumber string `json:"certificate_number,omitempty"`
	CertificateDate   string `json:"certificate_date,omitempty"`
	ValidityPeriod    string `json:"validity_period,omitempty"`
	AgentName         string `json:"agent_name,omitempty"`
	AgentAddress      string `json:"agent_address,omitempty"`
	PriorityClaim     string `json:"priority_claim,omitempty"`
	LanguageNote      string `json:"language_note,omitempty"`
	ColorDescription  string `json:"color_description,omitempty"`

	SourceDocumentID string     `json:"source_document_id,omitempty"`
	Provenance       Provenance `json:"provenance"`
}

// Valid reports whether the record satisfies the mandatory-field invariant:
// a non-empty application number, mark name, and class.
func (r *Record) Valid() bool {
	return r.ApplicationNumber != "" && r.MarkName != "" && r.Class != ""
}

// IdentityKey returns the canonical identity for deduplication and score
// fusion.  The application number wins when present; otherwise the record is
// identified by its source document so fallback extractions without a number
// still fuse consistently across scoring passes.
func (r *Record) IdentityKey() string {
	if r.ApplicationNumber != "" {
		return r.ApplicationNumber
	}
	return "doc:" + r.SourceDocumentID
}

// SearchText builds the canonical flat text representation indexed for
// semantic search: mark name, applicant, goods and class joined into one
// pipe-separated line.
func (r *Record) SearchText() string {
	goods := strings.TrimSpace(classPrefixRe.ReplaceAllString(r.GoodsDescription, ""))
	return fmt.Sprintf("Nama Merek: %s | Pemohon: %s | Barang/Jasa: %s | Kelas: %s",
		r.MarkName, r.ApplicantName, goods, r.Class)
}

// receptionDateLayouts lists the layouts ParseReceptionDate accepts, most
// specific first.
var receptionDateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006-01-02",
}

// ParseReceptionDate parses the record's reception date.  Gazette dates are
// day-first ("02/01/2006"), optionally with a time component.
func (r *Record) ParseReceptionDate() (time.Time, bool) {
	s := strings.TrimSpace(r.ReceptionDate)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range receptionDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DedupFirstSeen removes duplicate records by identity key, keeping the first
// occurrence in input order.  Later duplicates are dropped entirely; no field
// merging takes place.
func DedupFirstSeen(records []*Record) []*Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]*Record, 0, len(records))
	for _, r := range records {
		key := r.IdentityKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}
