package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kirillkom/docresult-viewer/internal/core/domain"
	"github.com/kirillkom/docresult-viewer/internal/core/normalizer"
	"github.com/kirillkom/docresult-viewer/internal/core/outcome"
)

var severityMarker = map[domain.Severity]string{
	domain.SeverityHigh:   "🟢",
	domain.SeverityMedium: "🟡",
	domain.SeverityLow:    "🔴",
}

var categoryLabels = map[string]string{
	domain.CategoryInvoice:            "📧 Invoice",
	domain.CategoryMarketplaceListing: "🛒 Marketplace Listing Screenshot",
	domain.CategoryChatScreenshot:     "💬 Chat Screenshot",
	domain.CategoryWebsiteScreenshot:  "🌐 Website Screenshot",
	domain.CategoryOther:              "📋 Other",
}

var healthLabels = map[domain.HealthStatus]string{
	domain.HealthConnected: "✅ Backend Connected",
	domain.HealthDegraded:  "⚠️ Backend Issues",
	domain.HealthOffline:   "❌ Backend Offline",
}

// Renderer turns outcomes into terminal text.
type Renderer struct {
	styles *Styles
}

func NewRenderer(styles *Styles) *Renderer {
	if styles == nil {
		styles = NewStyles(nil)
	}
	return &Renderer{styles: styles}
}

func (r *Renderer) Outcome(out outcome.Outcome) string {
	switch {
	case out.Succeeded():
		return r.success(*out.View)
	case out.Pending():
		return r.styles.Warning.Render("🔄 Your document is still being processed. Please wait...") + "\n"
	default:
		return r.failure(out)
	}
}

func (r *Renderer) success(view normalizer.DisplayModel) string {
	var b strings.Builder
	s := r.styles

	b.WriteString(s.Title.Render("📊 Processing Results") + "\n\n")
	category := view.Category
	if category == "" {
		category = "Unknown"
	}
	fmt.Fprintf(&b, "%s %s    %s %s\n\n",
		s.Label.Render("Category:"), category,
		s.Label.Render("Confidence:"), normalizer.FormatConfidence(view.ConfidenceScore),
	)

	b.WriteString(s.Subtitle.Render("📁 File Information") + "\n")
	fmt.Fprintf(&b, "  File ID:   %s\n", orNA(view.FileID))
	fmt.Fprintf(&b, "  Filename:  %s\n", orNA(view.Filename))
	fmt.Fprintf(&b, "  File Size: %s\n", normalizer.FormatBytes(view.FileSize))
	fmt.Fprintf(&b, "  File Type: %s\n\n", orNA(view.FileType))

	if len(view.EntityGroups) == 0 {
		b.WriteString(s.Muted.Render("No entities extracted from this document.") + "\n\n")
	} else {
		b.WriteString(s.Subtitle.Render("🏷️ Extracted Entities") + "\n")
		for _, group := range view.EntityGroups {
			fmt.Fprintf(&b, "  %s\n", s.Label.Render(fmt.Sprintf("%s (%d)", group.Label, group.Count())))
			for _, entity := range group.Entities {
				line := fmt.Sprintf("%s %s (confidence: %s)", severityMarker[entity.Severity], entity.Value, normalizer.FormatConfidence(entity.Confidence))
				fmt.Fprintf(&b, "    %s\n", s.Severity(entity.Severity).Render(line))
			}
		}
		b.WriteString("\n")
	}

	if len(view.Dates) > 0 {
		b.WriteString(s.Subtitle.Render("📅 Extracted Dates") + "\n")
		for _, date := range view.Dates {
			fmt.Fprintf(&b, "  • %s\n", date)
		}
		b.WriteString("\n")
	}

	if len(view.Tables) > 0 {
		b.WriteString(s.Subtitle.Render("📋 Extracted Tables") + "\n")
		for _, t := range view.Tables {
			b.WriteString(r.table(t))
		}
	}
	return b.String()
}

func (r *Renderer) table(view normalizer.TableView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", r.styles.Label.Render("📊 "+view.Name))

	if view.Malformed {
		b.WriteString("  " + r.styles.Warning.Render("Empty table or invalid format") + "\n")
		b.WriteString(indent(prettyJSON(view.Raw), "  ") + "\n\n")
		return b.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(r.styles.BorderColor())).
		Headers(view.Headers...).
		Rows(view.Rows...)
	b.WriteString(indent(t.String(), "  ") + "\n")
	fmt.Fprintf(&b, "  %s\n\n", r.styles.Muted.Render(fmt.Sprintf("export: %s (table %d)", view.CSVFileName(), view.Index)))
	return b.String()
}

func (r *Renderer) failure(out outcome.Outcome) string {
	var b strings.Builder
	s := r.styles

	b.WriteString(s.Error.Render("❌ Processing Failed") + "\n")
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Issue:"), out.Classification.Message)

	if rem := out.Remediation; rem != nil {
		lines := []string{s.Label.Render("💡 " + rem.Title)}
		for _, tip := range rem.Tips {
			lines = append(lines, "- "+tip)
		}
		b.WriteString(s.Box.Render(strings.Join(lines, "\n")) + "\n")
		if rem.CanRetry {
			b.WriteString(s.Muted.Render("🔄 Run the command again to retry.") + "\n")
		}
	}
	return b.String()
}

func (r *Renderer) Health(status domain.HealthStatus, backendURL string) string {
	label, ok := healthLabels[status]
	if !ok {
		label = string(status)
	}
	return fmt.Sprintf("%s %s\n", r.styles.Health(status).Render(label), r.styles.Muted.Render(backendURL))
}

func (r *Renderer) Files(files []domain.FileSummary) string {
	if len(files) == 0 {
		return r.styles.Muted.Render("No files found.") + "\n"
	}
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("🗂️ Recent Files") + "\n")
	for _, f := range files {
		fmt.Fprintf(&b, "  %s  %s\n", r.styles.Muted.Render(f.ID), f.Label())
	}
	return b.String()
}

func (r *Renderer) Categories() string {
	var b strings.Builder
	b.WriteString(r.styles.Title.Render("🎯 Supported Categories") + "\n")
	for _, c := range domain.SupportedCategories {
		fmt.Fprintf(&b, "  • %s %s\n", categoryLabels[c], r.styles.Muted.Render("("+c+")"))
	}
	return b.String()
}

func (r *Renderer) Details(details domain.FileDetails) string {
	line := fmt.Sprintf("%s  %s  %s", details.Filename, normalizer.FormatBytes(details.Size), details.MimeType)
	if details.Pages > 0 {
		line += fmt.Sprintf("  %d page(s)", details.Pages)
	}
	return r.styles.Muted.Render(line) + "\n"
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return "N/A"
	}
	return v
}

func prettyJSON(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
