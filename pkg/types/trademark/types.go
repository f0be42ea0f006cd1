// Package trademark defines the request and response DTOs exchanged over the
// markintel HTTP API and by the Go client.  These types are wire-level; the
// domain entities live under internal/domain.
package trademark

import (
	"github.com/wirkancil/markintel/pkg/types/common"
)

// AnalysisOptions tunes a single similarity analysis run.
type AnalysisOptions struct {
	// TopK bounds the number of returned matches.  Zero means the server
	// default (20); values above 100 are clamped.
	TopK int `json:"top_k,omitempty"`

	// IncludePhonetic toggles the phonetic scoring pass.  Defaults to true
	// when omitted.
	IncludePhonetic *bool `json:"include_phonetic,omitempty"`

	// IncludeVisual is accepted for forward compatibility.  No visual scoring
	// backend exists; the flag never contributes to the fused score.
	IncludeVisual bool `json:"include_visual,omitempty"`

	// DateRange restricts candidates by reception date when set.
	DateRange *common.DateRange `json:"date_range,omitempty"`
}

// AnalysisRequest asks for similar registered trademarks to a query name.
type AnalysisRequest struct {
	Trademark string          `json:"trademark" binding:"required"`
	Options   AnalysisOptions `json:"options"`
}

// RecordView is the API projection of an extracted trademark record.
type RecordView struct {
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
	SourceDocumentID  string `json:"source_document_id,omitempty"`
	ExtractionMethod  string `json:"extraction_method,omitempty"`
	Page              int    `json:"page,omitempty"`
}

// SimilarityMatch pairs a candidate record with its similarity scores.
// Component scores are pointers: nil means the pass did not produce a score
// for this candidate (e.g. a failed candidate embedding), which is distinct
// from a computed zero.
type SimilarityMatch struct {
	Record   RecordView `json:"record"`
	Lexical  *float64   `json:"lexical_score,omitempty"`
	Phonetic *float64   `json:"phonetic_score,omitempty"`
	Semantic *float64   `json:"semantic_score,omitempty"`
	Overall  *float64   `json:"overall_score,omitempty"`
	Bucket   string     `json:"bucket"`
}

// AnalysisResponse is the result of a similarity analysis.
type AnalysisResponse struct {
	TargetTrademark   string            `json:"target_trademark"`
	TotalCompared     int               `json:"total_compared"`
	SimilarTrademarks []SimilarityMatch `json:"similar_trademarks"`
	AnalysisDate      string            `json:"analysis_date"`
}

// Thresholds is the externally visible threshold configuration.
type Thresholds struct {
	Lexical  float64 `json:"lexical"`
	Phonetic float64 `json:"phonetic"`
	Semantic float64 `json:"semantic"`
	Overall  float64 `json:"overall"`
}

// ThresholdPatch carries a partial threshold update.  Only non-nil fields are
// applied; absent fields keep their current values.
type ThresholdPatch struct {
	Lexical  *float64 `json:"lexical,omitempty"`
	Phonetic *float64 `json:"phonetic,omitempty"`
	Semantic *float64 `json:"semantic,omitempty"`
	Overall  *float64 `json:"overall,omitempty"`
}

// ReportOptions tunes batch report generation.
type ReportOptions struct {
	// MaxAnalyze caps how many targets are analyzed.  Zero means all.
	MaxAnalyze int `json:"max_analyze,omitempty"`
	TopK       int `json:"top_k,omitempty"`
}

// ReportRequest asks for a similarity report over a set of target marks.
type ReportRequest struct {
	TargetTrademarks []string          `json:"target_trademarks" binding:"required"`
	DateRange        *common.DateRange `json:"date_range,omitempty"`
	Options          ReportOptions     `json:"options"`
}

// ReportFinding is the per-target outcome in a similarity report.
type ReportFinding struct {
	TargetTrademark string           `json:"target_trademark"`
	BestMatch       *SimilarityMatch `json:"best_match,omitempty"`
	MatchCount      int              `json:"match_count"`
	Bucket          string           `json:"bucket,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// ReportSummary counts findings per similarity bucket.
type ReportSummary struct {
	High   int `json:"high_similarity"`
	Medium int `json:"medium_similarity"`
	Low    int `json:"low_similarity"`
}

// ReportResponse is a batch similarity report.
type ReportResponse struct {
	GeneratedAt   string            `json:"generated_at"`
	Period        *common.DateRange `json:"period,omitempty"`
	TotalAnalyzed int               `json:"total_analyzed"`
	Findings      []ReportFinding   `json:"findings"`
	Summary       ReportSummary     `json:"summary"`
}

// UploadResponse reports the outcome of a document ingestion.
type UploadResponse struct {
	DocumentID       string `json:"document_id"`
	Filename         string `json:"filename"`
	RecordsExtracted int    `json:"records_extracted"`
	RecordsIndexed   int    `json:"records_indexed"`
	ChunksIndexed    int    `json:"chunks_indexed"`
	Status           string `json:"status"`
}

// StatsResponse summarizes corpus state across the storage backends.
type StatsResponse struct {
	TotalRecords   int64            `json:"total_records"`
	TotalDocuments int64            `json:"total_documents"`
	VectorCount    int64            `json:"vector_count"`
	IndexDimension int              `json:"index_dimension"`
	Thresholds     Thresholds       `json:"thresholds"`
	ClassCounts    map[string]int64 `json:"class_counts,omitempty"`
}
