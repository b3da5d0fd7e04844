package detect

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

// RuleEngine is the deterministic per-record layer.
type RuleEngine interface {
	Evaluate(s domain.Shipment) ([]domain.Finding, []error)
}

// OutlierDetector is the statistical per-group layer.
type OutlierDetector interface {
	Detect(batch []domain.Shipment) ([]domain.Finding, []error)
}

// SemanticValidator is the external-inference layer.
type SemanticValidator interface {
	Validate(ctx context.Context, batch []domain.Shipment) ([]domain.Finding, []error)
}

// Pipeline runs the three detection layers in order and consolidates their
// findings into one report.
type Pipeline struct {
	rules     RuleEngine
	outliers  OutlierDetector
	validator SemanticValidator
}

// NewPipeline assembles the three layers. A nil validator disables the
// semantic layer; the other two always run.
func NewPipeline(rules RuleEngine, outliers OutlierDetector, validator SemanticValidator) *Pipeline {
	return &Pipeline{
		rules:     rules,
		outliers:  outliers,
		validator: validator,
	}
}

// Detect screens the batch with all three layers. Per-record and per-group
// failures are counted in the report, never fatal; an empty batch is the one
// systemic error. Findings are deduplicated on (shipment, category, rule),
// first emission wins, and ordered by shipment id with layer order preserved
// within a shipment.
func (p *Pipeline) Detect(ctx context.Context, batch []domain.Shipment) (*domain.DetectionReport, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty shipment batch")
	}

	logger := zerolog.Ctx(ctx)
	report := &domain.DetectionReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Records:   len(batch),
	}

	var findings []domain.Finding

	for _, s := range batch {
		recordFindings, skipped := p.rules.Evaluate(s)
		findings = append(findings, recordFindings...)
		report.Skipped.RuleChecks += len(skipped)
		for _, err := range skipped {
			logger.Debug().Err(err).Str("shipment_id", s.ID).Msg("rule check skipped")
		}
	}

	outlierFindings, skippedGroups := p.outliers.Detect(batch)
	findings = append(findings, outlierFindings...)
	report.Skipped.StatGroups = len(skippedGroups)
	for _, err := range skippedGroups {
		logger.Debug().Err(err).Msg("outlier group skipped")
	}

	if p.validator != nil {
		semanticFindings, failedCalls := p.validator.Validate(ctx, batch)
		findings = append(findings, semanticFindings...)
		report.Skipped.ValidatorCalls = len(failedCalls)
	}

	report.Findings = dedupe(findings)
	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].ShipmentID < report.Findings[j].ShipmentID
	})

	logger.Info().
		Str("run_id", report.RunID).
		Int("records", report.Records).
		Int("findings", len(report.Findings)).
		Int("skipped_checks", report.Skipped.Total()).
		Msg("detection run complete")

	return report, nil
}

func dedupe(findings []domain.Finding) []domain.Finding {
	type key struct {
		shipmentID string
		category   domain.Category
		ruleID     string
	}

	seen := make(map[key]struct{}, len(findings))
	out := make([]domain.Finding, 0, len(findings))
	for _, f := range findings {
		k := key{f.ShipmentID, f.Category, f.RuleID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, f)
	}
	return out
}
