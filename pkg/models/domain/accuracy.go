package domain

// PlantedAnomaly is one ground-truth pair. Ground truth is consumed only
// by the scorer; detectors never see it.
type PlantedAnomaly struct {
	ShipmentID string
	Category   Category
}

// Metrics holds one precision/recall/F1 triple with its raw counts.
// A metric whose denominator is zero is zero, never NaN.
type Metrics struct {
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
}

// LayerCounts attributes detected pairs to the layer that found them.
// Misses have no layer, so there is no false-negative count here.
type LayerCounts struct {
	TruePositives  int
	FalsePositives int
}

type AccuracyReport struct {
	Overall          Metrics
	PerCategory      map[Category]Metrics
	PerLayer         map[Layer]LayerCounts
	MissingFromBatch []PlantedAnomaly // truth ids absent from the scored batch
}
