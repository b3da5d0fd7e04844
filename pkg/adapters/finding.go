package adapters

import (
	"time"

	"github.com/de-tools/trade-sentinel/pkg/models/api"
	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/models/store"
)

func MapSeverityDomainToApi(s domain.Severity) api.Severity {
	switch s {
	case domain.SeverityLow:
		return api.SeverityLow
	case domain.SeverityMedium:
		return api.SeverityMedium
	case domain.SeverityHigh:
		return api.SeverityHigh
	default:
		return api.SeverityLow
	}
}

func MapSeverityApiToDomain(s api.Severity) domain.Severity {
	switch s {
	case api.SeverityHigh:
		return domain.SeverityHigh
	case api.SeverityMedium:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

func MapFindingDomainToApi(f domain.Finding) api.Finding {
	return api.Finding{
		ShipmentID: f.ShipmentID,
		Layer:      int(f.Layer),
		Category:   string(f.Category),
		RuleID:     f.RuleID,
		Severity:   MapSeverityDomainToApi(f.Severity),
		CostImpact: f.CostImpact,
		Reason:     f.Reason,
	}
}

func MapDetectionReportDomainToApi(r domain.DetectionReport) api.DetectionReport {
	res := api.DetectionReport{
		RunID:     r.RunID,
		StartedAt: r.StartedAt,
		Records:   r.Records,
		Findings:  make([]api.Finding, 0, len(r.Findings)),
		Skipped: api.SkippedChecks{
			RuleChecks:     r.Skipped.RuleChecks,
			StatGroups:     r.Skipped.StatGroups,
			ValidatorCalls: r.Skipped.ValidatorCalls,
		},
	}
	for _, f := range r.Findings {
		res.Findings = append(res.Findings, MapFindingDomainToApi(f))
	}
	return res
}

func MapFindingDomainToStore(runID string, f domain.Finding, createdAt time.Time) store.FindingRecord {
	return store.FindingRecord{
		RunID:      runID,
		ShipmentID: f.ShipmentID,
		Layer:      int(f.Layer),
		Category:   string(f.Category),
		RuleID:     f.RuleID,
		Severity:   string(MapSeverityDomainToApi(f.Severity)),
		CostImpact: f.CostImpact,
		Reason:     f.Reason,
		CreatedAt:  createdAt,
	}
}

func MapFindingStoreToDomain(r store.FindingRecord) domain.Finding {
	return domain.Finding{
		ShipmentID: r.ShipmentID,
		Layer:      domain.Layer(r.Layer),
		Category:   domain.Category(r.Category),
		RuleID:     r.RuleID,
		Severity:   MapSeverityApiToDomain(api.Severity(r.Severity)),
		CostImpact: r.CostImpact,
		Reason:     r.Reason,
	}
}

func MapVerdictDomainToStore(key string, v domain.Verdict) store.VerdictRecord {
	return store.VerdictRecord{
		CacheKey:   key,
		IsMismatch: v.IsMismatch,
		Reason:     v.Reason,
		Confidence: v.Confidence,
		CheckedAt:  v.CheckedAt,
	}
}

func MapVerdictStoreToDomain(r store.VerdictRecord) domain.Verdict {
	return domain.Verdict{
		IsMismatch: r.IsMismatch,
		Reason:     r.Reason,
		Confidence: r.Confidence,
		CheckedAt:  r.CheckedAt,
	}
}
