package adapters

import (
	"strconv"

	"github.com/de-tools/trade-sentinel/pkg/models/api"
	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

func MapMetricsDomainToApi(m domain.Metrics) api.Metrics {
	return api.Metrics{
		TruePositives:  m.TruePositives,
		FalsePositives: m.FalsePositives,
		FalseNegatives: m.FalseNegatives,
		Precision:      m.Precision,
		Recall:         m.Recall,
		F1:             m.F1,
	}
}

func MapAccuracyReportDomainToApi(r domain.AccuracyReport) api.AccuracyReport {
	res := api.AccuracyReport{
		Precision:      r.Overall.Precision,
		Recall:         r.Overall.Recall,
		F1:             r.Overall.F1,
		TruePositives:  r.Overall.TruePositives,
		FalsePositives: r.Overall.FalsePositives,
		FalseNegatives: r.Overall.FalseNegatives,
		PerCategory:    map[string]api.Metrics{},
		PerLayer:       map[string]api.LayerCounts{},
	}
	for cat, m := range r.PerCategory {
		res.PerCategory[string(cat)] = MapMetricsDomainToApi(m)
	}
	for layer, c := range r.PerLayer {
		res.PerLayer[strconv.Itoa(int(layer))] = api.LayerCounts{
			TruePositives:  c.TruePositives,
			FalsePositives: c.FalsePositives,
		}
	}
	for _, p := range r.MissingFromBatch {
		res.MissingFromBatch = append(res.MissingFromBatch, api.PlantedAnomaly{
			ShipmentID: p.ShipmentID,
			Category:   string(p.Category),
		})
	}
	return res
}

func MapPlantedAnomalyApiToDomain(p api.PlantedAnomaly) (domain.PlantedAnomaly, error) {
	cat, err := domain.ParseCategory(p.Category)
	if err != nil {
		return domain.PlantedAnomaly{}, err
	}
	return domain.PlantedAnomaly{ShipmentID: p.ShipmentID, Category: cat}, nil
}
