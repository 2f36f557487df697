package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Category sentinels reported by the processing backend.
const (
	CategoryInvoice            = "invoice"
	CategoryMarketplaceListing = "marketplace_listing_screenshot"
	CategoryChatScreenshot     = "chat_screenshot"
	CategoryWebsiteScreenshot  = "website_screenshot"
	CategoryOther              = "other"
	CategoryProcessing         = "processing"
)

// SupportedCategories lists the categories the backend can assign, in display order.
var SupportedCategories = []string{
	CategoryInvoice,
	CategoryMarketplaceListing,
	CategoryChatScreenshot,
	CategoryWebsiteScreenshot,
	CategoryOther,
}

const unknownEntityType = "unknown"

// ProcessedDocument is one backend extraction result. It is built once per
// response and never mutated afterwards.
type ProcessedDocument struct {
	FileID          string   `json:"fileId"`
	Filename        string   `json:"filename"`
	FileSize        int64    `json:"fileSize"`
	FileType        string   `json:"fileType"`
	Category        string   `json:"category"`
	ConfidenceScore float64  `json:"confidenceScore"`
	Entities        []Entity `json:"entities"`
	Dates           []string `json:"dates"`
	Tables          []Table  `json:"tables"`
}

// UnmarshalJSON applies defaults for fields the backend omits, sends as null
// or sends with a loose type. Only a payload that is not an object fails.
func (d *ProcessedDocument) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = ProcessedDocument{
		FileID:   looseString(raw["fileId"]),
		Filename: looseString(raw["filename"]),
		FileType: looseString(raw["fileType"]),
		Category: looseString(raw["category"]),
		Entities: []Entity{},
		Dates:    []string{},
		Tables:   []Table{},
	}
	if size, ok := looseFloat(raw["fileSize"]); ok && size > 0 {
		d.FileSize = int64(size)
	}
	d.ConfidenceScore, _ = looseFloat(raw["confidenceScore"])

	for _, item := range looseArray(raw["entities"]) {
		var entity Entity
		if err := json.Unmarshal(item, &entity); err == nil {
			d.Entities = append(d.Entities, entity)
			continue
		}
		var value any
		if err := json.Unmarshal(item, &value); err == nil && value != nil {
			d.Entities = append(d.Entities, Entity{Type: unknownEntityType, Value: CellString(value)})
		}
	}

	for _, item := range looseArray(raw["dates"]) {
		var value any
		if err := json.Unmarshal(item, &value); err != nil || value == nil {
			continue
		}
		d.Dates = append(d.Dates, CellString(value))
	}

	for _, item := range looseArray(raw["tables"]) {
		var table Table
		_ = json.Unmarshal(item, &table)
		d.Tables = append(d.Tables, table)
	}
	return nil
}

type Entity struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// UnmarshalJSON fails only when the entity is not an object.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("entity is null")
	}
	e.Type = unknownEntityType
	if t := looseString(raw["type"]); strings.TrimSpace(t) != "" {
		e.Type = t
	}
	e.Value = looseString(raw["value"])
	e.Confidence, _ = looseFloat(raw["confidence"])
	return nil
}

// Severity derives the presentational tier from the confidence score.
func (e Entity) Severity() Severity {
	return SeverityFor(e.Confidence)
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

func SeverityFor(confidence float64) Severity {
	switch {
	case confidence > 0.8:
		return SeverityHigh
	case confidence > 0.5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// Table is an extracted table as sent by the backend. Raw keeps the original
// payload so malformed tables can be shown unchanged.
type Table struct {
	TableName string          `json:"table_name,omitempty"`
	Headers   []string        `json:"headers"`
	Rows      [][]any         `json:"rows"`
	Raw       json.RawMessage `json:"-"`

	undecodable bool
}

// UnmarshalJSON never fails on shape problems inside the table; they only
// mark it as undecodable so the normalizer can degrade to raw display.
func (t *Table) UnmarshalJSON(data []byte) error {
	*t = Table{Raw: append(json.RawMessage(nil), bytes.TrimSpace(data)...)}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.undecodable = true
		return nil
	}

	if name, ok := raw["table_name"]; ok {
		var s string
		if err := json.Unmarshal(name, &s); err == nil {
			t.TableName = s
		}
	}

	if headers, ok := raw["headers"]; ok {
		var values []any
		if err := json.Unmarshal(headers, &values); err != nil {
			t.undecodable = true
		} else {
			t.Headers = make([]string, 0, len(values))
			for _, v := range values {
				t.Headers = append(t.Headers, CellString(v))
			}
		}
	}

	if rows, ok := raw["rows"]; ok {
		var values []json.RawMessage
		if err := json.Unmarshal(rows, &values); err != nil {
			t.undecodable = true
			return nil
		}
		t.Rows = make([][]any, 0, len(values))
		for _, rawRow := range values {
			var row []any
			if err := json.Unmarshal(rawRow, &row); err != nil {
				t.undecodable = true
				continue
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return nil
}

// Decodable reports whether every part of the table had the expected JSON shape.
func (t Table) Decodable() bool {
	return !t.undecodable
}

// RawJSON returns the original payload, or a re-encoding for tables built in code.
func (t Table) RawJSON() json.RawMessage {
	if len(t.Raw) > 0 {
		return t.Raw
	}
	encoded, err := json.Marshal(map[string]any{
		"table_name": t.TableName,
		"headers":    t.Headers,
		"rows":       t.Rows,
	})
	if err != nil {
		return json.RawMessage("null")
	}
	return encoded
}

// FileSummary is one row of the backend's file listing.
type FileSummary struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Status   string `json:"status"`
	Category string `json:"category,omitempty"`
}

func (f FileSummary) Label() string {
	if f.Category == "" {
		return f.Filename + " (" + f.Status + ")"
	}
	return f.Filename + " (" + f.Status + " • " + f.Category + ")"
}
