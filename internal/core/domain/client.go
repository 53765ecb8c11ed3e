package domain

import (
	"errors"
	"time"
)

// Stage is the client's position in the fixed sales pipeline. Stored as a
// small integer (1-5) with a fixed display name per value.
type Stage int

const (
	StageFirstContact        Stage = 1
	StageTechnicalDiscussion Stage = 2
	StagePricingProposal     Stage = 3
	StageNegotiation         Stage = 4
	StageConverted           Stage = 5
)

var stageNames = map[Stage]string{
	StageFirstContact:        "First Contact",
	StageTechnicalDiscussion: "Technical Discussion",
	StagePricingProposal:     "Pricing Proposal",
	StageNegotiation:         "Negotiation",
	StageConverted:           "Converted",
}

// Name returns the human-readable name of the stage, or "Unknown" for
// values outside the pipeline.
func (s Stage) Name() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether s is one of the defined pipeline stages.
func (s Stage) Valid() bool {
	_, ok := stageNames[s]
	return ok
}

// Stages returns every pipeline stage in order.
func Stages() []Stage {
	return []Stage{
		StageFirstContact,
		StageTechnicalDiscussion,
		StagePricingProposal,
		StageNegotiation,
		StageConverted,
	}
}

var ErrClientNotFound = errors.New("client not found")
var ErrForbidden = errors.New("access forbidden")
var ErrValidation = errors.New("validation failed")
var ErrInvalidStage = errors.New("invalid pipeline stage")
var ErrDropReasonRequired = errors.New("drop reason required")
var ErrNoteNotFound = errors.New("note not found")
var ErrUnsupportedFileType = errors.New("unsupported file type")
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// Attachment records a stored file linked to a client or to one of its notes.
type Attachment struct {
	ID               string    `json:"id" bson:"id"`
	OriginalFilename string    `json:"original_filename" bson:"original_filename"`
	StoredFilename   string    `json:"filename" bson:"filename"`
	ContentType      string    `json:"file_type" bson:"file_type"`
	Size             int64     `json:"file_size" bson:"file_size"`
	// NoteIndex is the position of the owning note in Client.Notes, or -1
	// for a client-level attachment.
	NoteIndex  int       `json:"note_index" bson:"note_index"`
	UploadedBy string    `json:"uploaded_by" bson:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// Client is the core aggregate of the CRM. Notes are stored newest first as
// pre-formatted strings ("YYYY-MM-DD HH:MM - <author>: <text>"), matching
// the persisted shape. Drop state is independent of stage.
type Client struct {
	ID             string       `json:"id" bson:"id"`
	CompanyName    string       `json:"company_name" bson:"company_name"`
	ContactName    string       `json:"contact_name" bson:"contact_name"`
	Email          string       `json:"email" bson:"email"`
	Phone          string       `json:"phone,omitempty" bson:"phone,omitempty"`
	Budget         float64      `json:"budget" bson:"budget"`
	BudgetCurrency string       `json:"budget_currency" bson:"budget_currency"`
	Source         string       `json:"source,omitempty" bson:"source,omitempty"`
	Referrer       string       `json:"referrer,omitempty" bson:"referrer,omitempty"`
	Requirements   string       `json:"requirements,omitempty" bson:"requirements,omitempty"`
	Timeline       string       `json:"timeline,omitempty" bson:"timeline,omitempty"`
	DecisionMaker  string       `json:"decision_maker,omitempty" bson:"decision_maker,omitempty"`
	Stage          Stage        `json:"stage" bson:"stage"`
	AssignedBDE    string       `json:"assigned_bde" bson:"assigned_bde"`
	IsDropped      bool         `json:"is_dropped" bson:"is_dropped"`
	DropReason     string       `json:"drop_reason,omitempty" bson:"drop_reason,omitempty"`
	Notes          []string     `json:"notes" bson:"notes"`
	Attachments    []Attachment `json:"attachments" bson:"attachments"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at"`
	LastInteraction time.Time   `json:"last_interaction" bson:"last_interaction"`
}
