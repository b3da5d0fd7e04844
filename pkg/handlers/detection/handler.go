package detection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/de-tools/trade-sentinel/pkg/adapters"
	"github.com/de-tools/trade-sentinel/pkg/models/api"
	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/services/rules"
	"github.com/de-tools/trade-sentinel/pkg/services/scoring"
)

type Detector interface {
	Detect(ctx context.Context, batch []domain.Shipment) (*domain.DetectionReport, error)
}

type Scorer interface {
	Score(
		ctx context.Context,
		findings []domain.Finding,
		truth []domain.PlantedAnomaly,
		batch []domain.Shipment,
	) (*domain.AccuracyReport, error)
}

type Handler struct {
	detector    Detector
	scorer      Scorer
	descriptors []rules.Descriptor
}

func NewHandler(detector Detector, scorer Scorer, descriptors []rules.Descriptor) *Handler {
	return &Handler{
		detector:    detector,
		scorer:      scorer,
		descriptors: descriptors,
	}
}

// Detect runs the pipeline over the posted batch and returns the report.
func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.DetectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Shipments) == 0 {
		http.Error(w, "shipment batch is empty", http.StatusUnprocessableEntity)
		return
	}

	batch := mapShipments(req.Shipments)
	report, err := h.detector.Detect(ctx, batch)
	if err != nil {
		logger.Error().Err(err).Msg("detection run failed")
		http.Error(w, "detection run failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, adapters.MapDetectionReportDomainToApi(*report))
}

// Score runs detection and grades the outcome against the posted truth.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req api.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Shipments) == 0 {
		http.Error(w, "shipment batch is empty", http.StatusUnprocessableEntity)
		return
	}

	truth := make([]domain.PlantedAnomaly, 0, len(req.Truth))
	for _, p := range req.Truth {
		entry, err := adapters.MapPlantedAnomalyApiToDomain(p)
		if err != nil {
			http.Error(w, "invalid truth entry: "+err.Error(), http.StatusBadRequest)
			return
		}
		truth = append(truth, entry)
	}

	batch := mapShipments(req.Shipments)
	report, err := h.detector.Detect(ctx, batch)
	if err != nil {
		logger.Error().Err(err).Msg("detection run failed")
		http.Error(w, "detection run failed", http.StatusInternalServerError)
		return
	}

	accuracy, err := h.scorer.Score(ctx, report.Findings, truth, batch)
	if err != nil {
		var mismatch *scoring.MismatchError
		if errors.As(err, &mismatch) {
			http.Error(w, mismatch.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.Error().Err(err).Msg("scoring failed")
		http.Error(w, "scoring failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, logger, api.ScoreResponse{
		Detection: adapters.MapDetectionReportDomainToApi(*report),
		Accuracy:  adapters.MapAccuracyReportDomainToApi(*accuracy),
	})
}

// Rules lists the deterministic checks the pipeline applies.
func (h *Handler) Rules(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	response := make([]api.RuleDescriptor, 0, len(h.descriptors))
	for _, d := range h.descriptors {
		response = append(response, api.RuleDescriptor{
			RuleID:   d.RuleID,
			Category: string(d.Category),
			Severity: adapters.MapSeverityDomainToApi(d.Severity),
			Summary:  d.Summary,
		})
	}

	writeJSON(w, logger, response)
}

func mapShipments(shipments []api.Shipment) []domain.Shipment {
	batch := make([]domain.Shipment, 0, len(shipments))
	for _, s := range shipments {
		batch = append(batch, adapters.MapShipmentApiToDomain(s))
	}
	return batch
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}
