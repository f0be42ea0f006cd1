// Package kafka carries document lifecycle and analysis events between
// the API server and the ingest worker.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wirkancil/markintel/pkg/errors"
)

const (
	TopicDocumentSubmitted = "trademark.document.submitted"
	TopicDocumentProcessed = "trademark.document.processed"
	TopicDocumentDeleted   = "trademark.document.deleted"
	TopicAnalysisCompleted = "trademark.analysis.completed"
)

// EventEnvelope is the wire format shared by every topic.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// DocumentSubmittedPayload announces a document waiting for extraction.
type DocumentSubmittedPayload struct {
	DocumentID  string    `json:"document_id"`
	Filename    string    `json:"filename,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// DocumentProcessedPayload reports the outcome of an extraction run.
type DocumentProcessedPayload struct {
	DocumentID       string    `json:"document_id"`
	RecordsExtracted int       `json:"records_extracted"`
	RecordsStored    int       `json:"records_stored"`
	Method           string    `json:"method"`
	ProcessedAt      time.Time `json:"processed_at"`
}

// DocumentDeletedPayload announces removal of a document and its
// derived data.
type DocumentDeletedPayload struct {
	DocumentID     string    `json:"document_id"`
	RecordsDeleted int64     `json:"records_deleted"`
	DeletedAt      time.Time `json:"deleted_at"`
}

// AnalysisCompletedPayload summarizes one similarity analysis.
type AnalysisCompletedPayload struct {
	QueryTrademark string    `json:"query_trademark"`
	TotalCompared  int       `json:"total_compared"`
	MatchCount     int       `json:"match_count"`
	CompletedAt    time.Time `json:"completed_at"`
}

// NewEventEnvelope wraps a payload in a fresh envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the envelope payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeSerialization, "event payload is empty")
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode event payload")
	}
	return nil
}
