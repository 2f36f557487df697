// Package normalizer shapes a successful extraction result into a
// display-ready model. It performs no I/O.
package normalizer

import (
	"encoding/json"
	"strings"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
)

type DisplayModel struct {
	FileID          string        `json:"fileId"`
	Filename        string        `json:"filename"`
	FileSize        int64         `json:"fileSize"`
	FileType        string        `json:"fileType"`
	Category        string        `json:"category"`
	ConfidenceScore float64       `json:"confidenceScore"`
	EntityGroups    []EntityGroup `json:"entityGroups"`
	Dates           []string      `json:"dates"`
	Tables          []TableView   `json:"tables"`
}

// Group returns the entities of one type, in original order.
func (m DisplayModel) Group(entityType string) ([]EntityView, bool) {
	for _, g := range m.EntityGroups {
		if g.Type == entityType {
			return g.Entities, true
		}
	}
	return nil, false
}

type EntityGroup struct {
	Type     string       `json:"type"`
	Label    string       `json:"label"`
	Entities []EntityView `json:"entities"`
}

func (g EntityGroup) Count() int {
	return len(g.Entities)
}

type EntityView struct {
	Value      string          `json:"value"`
	Confidence float64         `json:"confidence"`
	Severity   domain.Severity `json:"severity"`
}

type TableView struct {
	Index     int        `json:"index"`
	Name      string     `json:"name"`
	Malformed bool       `json:"malformed"`
	Headers   []string   `json:"headers,omitempty"`
	Rows      [][]string `json:"rows,omitempty"`
	// Raw is the untouched backend table, set only for malformed tables.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// CSVFileName is the suggested download name for the CSV projection.
func (t TableView) CSVFileName() string {
	return fileStem(t.Name) + ".csv"
}

func (t TableView) XLSXFileName() string {
	return fileStem(t.Name) + ".xlsx"
}

func fileStem(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}
