package scoring

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

// MismatchError reports a ground-truth set with no overlap at all with the
// scored batch: the wrong truth file for the wrong batch.
type MismatchError struct {
	ShipmentIDs []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("scoring: none of the %d ground-truth shipments are present in the batch", len(e.ShipmentIDs))
}

// Scorer grades a finding set against the planted ground truth. Detections
// collapse to distinct (shipment, category) pairs; rule ids and severities
// do not matter for credit.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

type pair struct {
	shipmentID string
	category   domain.Category
}

// Score computes precision, recall and F1 overall, per category and per
// layer. Truth entries for shipments absent from the batch are reported
// in-band and still count as misses; an entirely disjoint truth set is a
// *MismatchError.
func (s *Scorer) Score(
	ctx context.Context,
	findings []domain.Finding,
	truth []domain.PlantedAnomaly,
	batch []domain.Shipment,
) (*domain.AccuracyReport, error) {
	logger := zerolog.Ctx(ctx)

	batchIDs := make(map[string]struct{}, len(batch))
	for _, sh := range batch {
		batchIDs[sh.ID] = struct{}{}
	}

	truthSet := make(map[pair]struct{}, len(truth))
	truthIDs := make(map[string]struct{}, len(truth))
	for _, a := range truth {
		truthSet[pair{a.ShipmentID, a.Category}] = struct{}{}
		truthIDs[a.ShipmentID] = struct{}{}
	}

	if len(truth) > 0 {
		overlap := false
		for id := range truthIDs {
			if _, ok := batchIDs[id]; ok {
				overlap = true
				break
			}
		}
		if !overlap {
			ids := make([]string, 0, len(truthIDs))
			for id := range truthIDs {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			return nil, &MismatchError{ShipmentIDs: ids}
		}
	}

	var missing []domain.PlantedAnomaly
	for p := range truthSet {
		if _, ok := batchIDs[p.shipmentID]; !ok {
			missing = append(missing, domain.PlantedAnomaly{ShipmentID: p.shipmentID, Category: p.category})
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].ShipmentID != missing[j].ShipmentID {
			return missing[i].ShipmentID < missing[j].ShipmentID
		}
		return missing[i].Category < missing[j].Category
	})
	for _, m := range missing {
		logger.Warn().
			Str("shipment_id", m.ShipmentID).
			Str("category", string(m.Category)).
			Msg("ground-truth shipment not in batch")
	}

	detected := make(map[pair]struct{}, len(findings))
	layerPairs := make(map[domain.Layer]map[pair]struct{})
	for _, f := range findings {
		p := pair{f.ShipmentID, f.Category}
		detected[p] = struct{}{}
		if layerPairs[f.Layer] == nil {
			layerPairs[f.Layer] = make(map[pair]struct{})
		}
		layerPairs[f.Layer][p] = struct{}{}
	}

	report := &domain.AccuracyReport{
		PerCategory:      make(map[domain.Category]domain.Metrics, len(domain.Categories())),
		PerLayer:         make(map[domain.Layer]domain.LayerCounts),
		MissingFromBatch: missing,
	}

	var tp, fp, fn int
	for p := range detected {
		if _, ok := truthSet[p]; ok {
			tp++
		} else {
			fp++
		}
	}
	for p := range truthSet {
		if _, ok := detected[p]; !ok {
			fn++
		}
	}
	report.Overall = computeMetrics(tp, fp, fn)

	for _, category := range domain.Categories() {
		var ctp, cfp, cfn int
		for p := range detected {
			if p.category != category {
				continue
			}
			if _, ok := truthSet[p]; ok {
				ctp++
			} else {
				cfp++
			}
		}
		for p := range truthSet {
			if p.category != category {
				continue
			}
			if _, ok := detected[p]; !ok {
				cfn++
			}
		}
		report.PerCategory[category] = computeMetrics(ctp, cfp, cfn)
	}

	for _, layer := range []domain.Layer{domain.LayerRules, domain.LayerStats, domain.LayerSemantic} {
		var counts domain.LayerCounts
		for p := range layerPairs[layer] {
			if _, ok := truthSet[p]; ok {
				counts.TruePositives++
			} else {
				counts.FalsePositives++
			}
		}
		report.PerLayer[layer] = counts
	}

	return report, nil
}

// computeMetrics never divides by zero: a metric with an empty denominator
// is 0, not NaN.
func computeMetrics(tp, fp, fn int) domain.Metrics {
	m := domain.Metrics{
		TruePositives:  tp,
		FalsePositives: fp,
		FalseNegatives: fn,
	}
	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
