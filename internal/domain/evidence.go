package domain

import "time"

// EvidenceType is the kind of attachment backing a clearance.
type EvidenceType string

const (
	EvidenceTypePhoto    EvidenceType = "PHOTO"
	EvidenceTypeDocument EvidenceType = "DOCUMENT"
)

// IsValid checks if the evidence type is one of the allowed values.
func (t EvidenceType) IsValid() bool {
	return t == EvidenceTypePhoto || t == EvidenceTypeDocument
}

// Evidence is an immutable attachment owned by one event.
type Evidence struct {
	ID             string
	EventID        string
	StepNumber     *int
	Type           EvidenceType
	Description    string
	FileRef        string
	ContentType    string
	UploadedBy     string
	UploadedByRole Role
	UploadedAt     time.Time
}
