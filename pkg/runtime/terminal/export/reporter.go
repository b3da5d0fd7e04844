package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/trade-sentinel/pkg/adapters"
	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

type TableConfig struct {
	ShipmentWidth int
	LayerWidth    int
	CategoryWidth int
	RuleWidth     int
	SeverityWidth int
	ImpactWidth   int
	ReasonWidth   int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		ShipmentWidth: 10,
		LayerWidth:    5,
		CategoryWidth: 14,
		RuleWidth:     26,
		SeverityWidth: 8,
		ImpactWidth:   12,
		ReasonWidth:   56,
	}
}

var layerNames = map[domain.Layer]string{
	domain.LayerRules:    "rules",
	domain.LayerStats:    "stats",
	domain.LayerSemantic: "semantic",
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

// HandleDetection renders the findings table for one detection run.
func (c *Reporter) HandleDetection(report *domain.DetectionReport) error {
	funcMap := template.FuncMap{
		"headerRow": func() string {
			return c.findingRow("SHIPMENT", "LAYER", "CATEGORY", "RULE", "SEVERITY", "IMPACT", "REASON")
		},
		"findingRow": func(f domain.Finding) string {
			impact := ""
			if f.CostImpact != 0 {
				impact = fmt.Sprintf("%.2f", f.CostImpact)
			}
			return c.findingRow(
				f.ShipmentID,
				fmt.Sprintf("L%d", f.Layer),
				string(f.Category),
				f.RuleID,
				string(adapters.MapSeverityDomainToApi(f.Severity)),
				impact,
				clip(f.Reason, c.config.ReasonWidth),
			)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+%s+%s+",
				strings.Repeat("-", c.config.ShipmentWidth+2),
				strings.Repeat("-", c.config.LayerWidth+2),
				strings.Repeat("-", c.config.CategoryWidth+2),
				strings.Repeat("-", c.config.RuleWidth+2),
				strings.Repeat("-", c.config.SeverityWidth+2),
				strings.Repeat("-", c.config.ImpactWidth+2),
				strings.Repeat("-", c.config.ReasonWidth+2))
		},
	}

	tmpl := `
Detection run {{.RunID}} started {{.StartedAt.Format "2006-01-02 15:04:05"}} UTC
Records: {{.Records}}   Findings: {{len .Findings}}   Skipped checks: {{.Skipped.Total}}
{{if .Findings}}
{{separator}}
{{headerRow}}
{{separator}}
{{range .Findings}}{{findingRow .}}
{{end}}{{separator}}
{{else}}
No anomalies detected.
{{end}}
`

	t, err := template.New("detection").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

// HandleAccuracy renders the scorecard against the planted ground truth.
func (c *Reporter) HandleAccuracy(report *domain.AccuracyReport) error {
	funcMap := template.FuncMap{
		"categoryRow": func(category domain.Category) string {
			m := report.PerCategory[category]
			return fmt.Sprintf("| %-14s | %4d | %4d | %4d | %9.3f | %9.3f | %9.3f |",
				category, m.TruePositives, m.FalsePositives, m.FalseNegatives,
				m.Precision, m.Recall, m.F1)
		},
		"layerRow": func(layer domain.Layer) string {
			counts := report.PerLayer[layer]
			return fmt.Sprintf("  L%d %-10s TP %-4d FP %-4d",
				layer, layerNames[layer], counts.TruePositives, counts.FalsePositives)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+%s+%s+",
				strings.Repeat("-", 16),
				strings.Repeat("-", 6), strings.Repeat("-", 6), strings.Repeat("-", 6),
				strings.Repeat("-", 11), strings.Repeat("-", 11), strings.Repeat("-", 11))
		},
		"categories": domain.Categories,
		"layers": func() []domain.Layer {
			return []domain.Layer{domain.LayerRules, domain.LayerStats, domain.LayerSemantic}
		},
	}

	tmpl := `
Accuracy against planted ground truth

Overall: precision {{printf "%.3f" .Overall.Precision}}   recall {{printf "%.3f" .Overall.Recall}}   F1 {{printf "%.3f" .Overall.F1}}
TP {{.Overall.TruePositives}}   FP {{.Overall.FalsePositives}}   FN {{.Overall.FalseNegatives}}

{{separator}}
| CATEGORY       |   TP |   FP |   FN | PRECISION |    RECALL |        F1 |
{{separator}}
{{range categories}}{{categoryRow .}}
{{end}}{{separator}}

Per layer:
{{range layers}}{{layerRow .}}
{{end}}{{if .MissingFromBatch}}
Ground-truth shipments missing from the batch:
{{range .MissingFromBatch}}  - {{.ShipmentID}} ({{.Category}})
{{end}}{{end}}
`

	t, err := template.New("accuracy").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}

func (c *Reporter) findingRow(shipment, layer, category, rule, severity, impact, reason string) string {
	return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s | %-*s | %*s | %-*s |",
		c.config.ShipmentWidth, shipment,
		c.config.LayerWidth, layer,
		c.config.CategoryWidth, category,
		c.config.RuleWidth, rule,
		c.config.SeverityWidth, severity,
		c.config.ImpactWidth, impact,
		c.config.ReasonWidth, reason)
}

func clip(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
