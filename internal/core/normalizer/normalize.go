package normalizer

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
)

// Normalize must only be called for results classified as success.
func Normalize(doc *domain.ProcessedDocument) DisplayModel {
	if doc == nil {
		return DisplayModel{EntityGroups: []EntityGroup{}, Dates: []string{}, Tables: []TableView{}}
	}

	tables := make([]TableView, 0, len(doc.Tables))
	for i, table := range doc.Tables {
		tables = append(tables, MaterializeTable(i, table))
	}

	dates := make([]string, len(doc.Dates))
	copy(dates, doc.Dates)

	return DisplayModel{
		FileID:          doc.FileID,
		Filename:        doc.Filename,
		FileSize:        doc.FileSize,
		FileType:        doc.FileType,
		Category:        doc.Category,
		ConfidenceScore: doc.ConfidenceScore,
		EntityGroups:    GroupEntities(doc.Entities),
		Dates:           dates,
		Tables:          tables,
	}
}

// GroupEntities keeps the first-seen order of types and the original order
// of entities within a type.
func GroupEntities(entities []domain.Entity) []EntityGroup {
	groups := make([]EntityGroup, 0)
	positions := make(map[string]int)

	for _, entity := range entities {
		pos, ok := positions[entity.Type]
		if !ok {
			pos = len(groups)
			positions[entity.Type] = pos
			groups = append(groups, EntityGroup{
				Type:     entity.Type,
				Label:    GroupLabel(entity.Type),
				Entities: []EntityView{},
			})
		}
		groups[pos].Entities = append(groups[pos].Entities, EntityView{
			Value:      entity.Value,
			Confidence: entity.Confidence,
			Severity:   entity.Severity(),
		})
	}
	return groups
}

// GroupLabel turns an entity type such as "invoice_number" into "Invoice Number".
func GroupLabel(entityType string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(entityType, "_", " "))
}

// MaterializeTable tabulates a well-formed table. Anything else is flagged
// malformed and its raw payload passed through unchanged.
func MaterializeTable(index int, table domain.Table) TableView {
	view := TableView{
		Index: index,
		Name:  tableName(index, table),
	}

	if !wellFormed(table) {
		view.Malformed = true
		view.Raw = table.RawJSON()
		return view
	}

	view.Headers = append([]string(nil), table.Headers...)
	view.Rows = make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = domain.CellString(v)
		}
		view.Rows = append(view.Rows, cells)
	}
	return view
}

func tableName(index int, table domain.Table) string {
	if strings.TrimSpace(table.TableName) != "" {
		return table.TableName
	}
	return fmt.Sprintf("Table %d", index+1)
}

func wellFormed(table domain.Table) bool {
	if !table.Decodable() || len(table.Headers) == 0 {
		return false
	}
	for _, row := range table.Rows {
		if len(row) != len(table.Headers) {
			return false
		}
	}
	return true
}
