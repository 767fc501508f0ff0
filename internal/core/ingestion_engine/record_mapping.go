package ingestion_engine

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Shivamm1101/doc-ai/internal/logger"
	"github.com/Shivamm1101/doc-ai/internal/models"
)

// normalizeItems flattens wrapper objects and keeps only JSON objects.
func normalizeItems(items []any, log *logger.Logger) []map[string]any {
	var out []map[string]any
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			log.Warn("dropping non-object item", "item", it)
			continue
		}
		if list, ok := unwrapList(m); ok {
			out = append(out, normalizeItems(list, log)...)
			continue
		}
		out = append(out, m)
	}
	return out
}

// buildRecords maps normalized items onto the rows for docType. Items missing
// their required text field are dropped.
func buildRecords(docType models.DocumentType, items []map[string]any, log *logger.Logger) *models.Records {
	recs := &models.Records{}
	dropped := 0
	switch docType {
	case models.DocumentTypeCosting:
		for _, block := range items {
			for _, raw := range costLines(block) {
				if ci, ok := toCostItem(raw, block); ok {
					recs.CostItems = append(recs.CostItems, ci)
				} else {
					dropped++
				}
			}
		}
	case models.DocumentTypeSchedule:
		for _, it := range items {
			if t, ok := toProjectTask(it); ok {
				recs.ProjectTasks = append(recs.ProjectTasks, t)
			} else {
				dropped++
			}
		}
	case models.DocumentTypeCircular:
		for _, it := range items {
			if r, ok := toRegulatoryRule(it); ok {
				recs.RegulatoryRules = append(recs.RegulatoryRules, r)
			} else {
				dropped++
			}
		}
	case models.DocumentTypeApproval:
		for _, it := range items {
			if s, ok := toApprovalStep(it); ok {
				recs.ApprovalSteps = append(recs.ApprovalSteps, s)
			} else {
				dropped++
			}
		}
	default:
		if len(items) > 0 {
			log.Warn("no record table for document type, skipping items", "type", docType, "items", len(items))
		}
	}
	if dropped > 0 {
		log.Warn("dropped incomplete records", "type", docType, "dropped", dropped)
	}
	return recs
}

// costLines returns the line items of a costing page block. A block that is
// itself a line item is returned as is.
func costLines(block map[string]any) []map[string]any {
	raw, ok := block["items"].([]any)
	if !ok {
		if _, isItem := block["item_name"]; isItem {
			return []map[string]any{block}
		}
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func toCostItem(m, block map[string]any) (models.CostItem, bool) {
	name := asString(m["item_name"])
	if name == nil {
		return models.CostItem{}, false
	}
	page := asInt(m["page_number"])
	if page == nil {
		page = asInt(block["page_number"])
	}
	return models.CostItem{
		ItemName:      *name,
		Quantity:      asFloat(m["quantity"]),
		UnitOfMeasure: asString(m["unit_of_measure"]),
		Currency:      asString(m["currency"]),
		UnitPrice:     asFloat(m["unit_price"]),
		TotalCost:     asFloat(m["total_cost"]),
		CostType:      normalizeCostType(m["cost_type"]),
		PageNumber:    page,
	}, true
}

func toProjectTask(m map[string]any) (models.ProjectTask, bool) {
	name := asString(m["task_name"])
	if name == nil {
		return models.ProjectTask{}, false
	}
	return models.ProjectTask{
		TaskName:     *name,
		DurationDays: asInt(m["duration_days"]),
		StartDate:    asDate(m["start_date"]),
		FinishDate:   asDate(m["finish_date"]),
		PageNumber:   asInt(m["page_number"]),
	}, true
}

func toRegulatoryRule(m map[string]any) (models.RegulatoryRule, bool) {
	summary := asString(m["rule_summary"])
	if summary == nil {
		return models.RegulatoryRule{}, false
	}
	return models.RegulatoryRule{
		RuleSummary:      *summary,
		MeasurementBasis: asString(m["measurement_basis"]),
		PageNumber:       asInt(m["page_number"]),
	}, true
}

func toApprovalStep(m map[string]any) (models.ApprovalStep, bool) {
	desc := asString(m["description"])
	if desc == nil {
		return models.ApprovalStep{}, false
	}
	return models.ApprovalStep{
		StepNumber:  asInt(m["step_number"]),
		Description: *desc,
		PageNumber:  asInt(m["page_number"]),
	}, true
}

func normalizeCostType(v any) string {
	s := asString(v)
	if s == nil {
		return models.CostTypeUnspecified
	}
	switch strings.ToLower(*s) {
	case "local", models.CostTypeLocal:
		return models.CostTypeLocal
	case "foreign", models.CostTypeForeign:
		return models.CostTypeForeign
	}
	return models.CostTypeUnspecified
}

// asString returns trimmed non-empty strings; "null" and "none" count as absent.
func asString(v any) *string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		s = t.String()
	default:
		return nil
	}
	switch strings.ToLower(s) {
	case "", "null", "none", "n/a":
		return nil
	}
	return &s
}

// asFloat accepts numbers and numeric strings with thousands separators or
// currency symbols.
func asFloat(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, t)
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func asInt(v any) *int {
	f := asFloat(v)
	if f == nil {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// asDate parses ISO dates; anything else is absent rather than guessed.
func asDate(v any) *time.Time {
	s := asString(v)
	if s == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}
