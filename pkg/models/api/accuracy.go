package api

type PlantedAnomaly struct {
	ShipmentID string `json:"shipment_id"`
	Category   string `json:"category"`
}

type Metrics struct {
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

type LayerCounts struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
}

type AccuracyReport struct {
	Precision        float64                `json:"precision"`
	Recall           float64                `json:"recall"`
	F1               float64                `json:"f1"`
	TruePositives    int                    `json:"true_positives"`
	FalsePositives   int                    `json:"false_positives"`
	FalseNegatives   int                    `json:"false_negatives"`
	PerCategory      map[string]Metrics     `json:"per_category_breakdown"`
	PerLayer         map[string]LayerCounts `json:"per_layer_breakdown"`
	MissingFromBatch []PlantedAnomaly       `json:"missing_from_batch,omitempty"`
}

type ScoreRequest struct {
	Shipments []Shipment       `json:"shipments"`
	Truth     []PlantedAnomaly `json:"truth"`
}

type ScoreResponse struct {
	Detection DetectionReport `json:"detection"`
	Accuracy  AccuracyReport  `json:"accuracy"`
}
