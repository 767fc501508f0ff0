package models

import (
	"strings"
	"time"
)

// DocumentType is the functional category assigned by the classifier.
type DocumentType string

const (
	DocumentTypeCosting  DocumentType = "construction_costing"
	DocumentTypeSchedule DocumentType = "project_schedule"
	DocumentTypeApproval DocumentType = "construction_approval"
	DocumentTypeCircular DocumentType = "ura_circular"
	DocumentTypeOther    DocumentType = "other"
)

// ParseDocumentType maps a raw label onto a known DocumentType. Unknown
// labels resolve to DocumentTypeOther with ok set to false.
func ParseDocumentType(raw string) (t DocumentType, ok bool) {
	switch DocumentType(strings.ToLower(strings.TrimSpace(raw))) {
	case DocumentTypeCosting:
		return DocumentTypeCosting, true
	case DocumentTypeSchedule:
		return DocumentTypeSchedule, true
	case DocumentTypeApproval, "construction_process":
		return DocumentTypeApproval, true
	case DocumentTypeCircular:
		return DocumentTypeCircular, true
	case DocumentTypeOther:
		return DocumentTypeOther, true
	}
	return DocumentTypeOther, false
}

// StructuralFlags records which kinds of content appear in a document.
type StructuralFlags struct {
	ContainsText        bool `json:"contains_text"`
	ContainsImages      bool `json:"contains_images"`
	ContainsFlowchart   bool `json:"contains_flowchart"`
	ContainsTables      bool `json:"contains_tables"`
	ContainsGantt       bool `json:"contains_gantt"`
	ContainsOtherCharts bool `json:"contains_other_charts"`
	RequiresOCR         bool `json:"requires_ocr"`
}

// Classification is the verdict returned for one document.
type Classification struct {
	DocumentType DocumentType    `json:"pdf_type"`
	LayoutType   string          `json:"layout_type"`
	Flags        StructuralFlags `json:"flags"`
	Reason       string          `json:"reason"`
}

// Document is the header row every structured record and chunk points to.
type Document struct {
	ID             int64           `db:"document_id" json:"document_id"`
	Name           string          `db:"document_name" json:"document_name"`
	Type           DocumentType    `db:"document_type" json:"document_type"`
	LayoutType     string          `db:"layout_type" json:"layout_type"`
	Classification *Classification `db:"classification" json:"classification,omitempty"`
	UploadedAt     time.Time       `db:"uploaded_at" json:"uploaded_at"`
}

// DocumentSummary is a Document with the number of rows stored per record table.
type DocumentSummary struct {
	Document
	CostItems       int `json:"cost_items"`
	ProjectTasks    int `json:"project_tasks"`
	RegulatoryRules int `json:"regulatory_rules"`
	ApprovalSteps   int `json:"approval_steps"`
}

const (
	CostTypeLocal       = "local cost"
	CostTypeForeign     = "foreign cost"
	CostTypeUnspecified = "unspecified"
)

type CostItem struct {
	DocumentID    int64    `db:"document_id" json:"document_id"`
	ItemName      string   `db:"item_name" json:"item_name"`
	Quantity      *float64 `db:"quantity" json:"quantity"`
	UnitOfMeasure *string  `db:"unit_of_measure" json:"unit_of_measure"`
	Currency      *string  `db:"currency" json:"currency"`
	UnitPrice     *float64 `db:"unit_price" json:"unit_price"`
	TotalCost     *float64 `db:"total_cost" json:"total_cost"`
	CostType      string   `db:"cost_type" json:"cost_type"`
	PageNumber    *int     `db:"page_number" json:"page_number"`
}

type ProjectTask struct {
	DocumentID   int64      `db:"document_id" json:"document_id"`
	TaskName     string     `db:"task_name" json:"task_name"`
	DurationDays *int       `db:"duration_days" json:"duration_days"`
	StartDate    *time.Time `db:"start_date" json:"start_date"`
	FinishDate   *time.Time `db:"finish_date" json:"finish_date"`
	PageNumber   *int       `db:"page_number" json:"page_number"`
}

type RegulatoryRule struct {
	DocumentID       int64   `db:"document_id" json:"document_id"`
	RuleSummary      string  `db:"rule_summary" json:"rule_summary"`
	MeasurementBasis *string `db:"measurement_basis" json:"measurement_basis"`
	PageNumber       *int    `db:"page_number" json:"page_number"`
}

type ApprovalStep struct {
	DocumentID  int64  `db:"document_id" json:"document_id"`
	StepNumber  *int   `db:"step_number" json:"step_number"`
	Description string `db:"description" json:"description"`
	PageNumber  *int   `db:"page_number" json:"page_number"`
}

// Records groups the structured rows extracted from one document.
type Records struct {
	CostItems       []CostItem
	ProjectTasks    []ProjectTask
	RegulatoryRules []RegulatoryRule
	ApprovalSteps   []ApprovalStep
}

// Len is the total number of rows across all record kinds.
func (r *Records) Len() int {
	if r == nil {
		return 0
	}
	return len(r.CostItems) + len(r.ProjectTasks) + len(r.RegulatoryRules) + len(r.ApprovalSteps)
}

type ChunkMetadata struct {
	DocumentType DocumentType `json:"pdf_type"`
	PageNumber   int          `json:"page_number"`
	LocalIndex   int          `json:"local_chunk_index"`
	GlobalIndex  int          `json:"global_chunk_index"`
	DocumentID   int64        `json:"document_id,omitempty"`
}

// Chunk is one overlapping window of page text destined for the vector store.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// VectorRecord is a chunk together with its embedding.
type VectorRecord struct {
	ID        string
	Text      string
	Metadata  ChunkMetadata
	Embedding []float32
}

// ChunkMatch is a semantic search hit. Score is the cosine distance, lower is closer.
type ChunkMatch struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Score    float64       `json:"score"`
}

const (
	RecordKindCostItem       = "cost_item"
	RecordKindProjectTask    = "project_task"
	RecordKindRegulatoryRule = "regulatory_rule"
	RecordKindApprovalStep   = "approval_step"
)

// RecordMatch is a keyword search hit over the structured tables.
type RecordMatch struct {
	DocumentID   int64  `json:"document_id"`
	DocumentName string `json:"document_name"`
	Kind         string `json:"kind"`
	Text         string `json:"text"`
	PageNumber   *int   `json:"page_number"`
}
