package semantic

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

// DecodeVerdict parses the strict classifier response object. All three
// fields are required; missing fields, wrong types and a confidence outside
// [0, 1] come back as a *ResponseError.
func DecodeVerdict(raw []byte) (domain.Verdict, error) {
	var payload struct {
		IsMismatch *bool    `json:"is_mismatch"`
		Reason     *string  `json:"reason"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.Verdict{}, &ResponseError{Reason: err.Error()}
	}
	if payload.IsMismatch == nil || payload.Reason == nil || payload.Confidence == nil {
		return domain.Verdict{}, &ResponseError{Reason: "missing is_mismatch, reason or confidence"}
	}
	if *payload.Confidence < 0 || *payload.Confidence > 1 {
		return domain.Verdict{}, &ResponseError{
			Reason: fmt.Sprintf("confidence %v outside [0, 1]", *payload.Confidence),
		}
	}
	return domain.Verdict{
		IsMismatch: *payload.IsMismatch,
		Reason:     *payload.Reason,
		Confidence: *payload.Confidence,
		CheckedAt:  time.Now().UTC(),
	}, nil
}
