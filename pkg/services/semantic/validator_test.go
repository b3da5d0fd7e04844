package semantic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	mu     sync.Mutex
	calls  int
	active int
	peak   int
	verify func(req VerifyRequest) (domain.Verdict, error)
}

func (c *stubClassifier) Verify(_ context.Context, req VerifyRequest) (domain.Verdict, error) {
	c.mu.Lock()
	c.calls++
	c.active++
	if c.active > c.peak {
		c.peak = c.active
	}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.active--
		c.mu.Unlock()
	}()
	return c.verify(req)
}

func (c *stubClassifier) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *stubClassifier) peakConcurrency() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peak
}

type memStore struct {
	mu   sync.RWMutex
	data map[string]domain.Verdict
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]domain.Verdict)}
}

func (m *memStore) Get(_ context.Context, key string) (domain.Verdict, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Put(_ context.Context, key string, verdict domain.Verdict) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = verdict
	return nil
}

func (m *memStore) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func mismatchClassifier(confidence float64) *stubClassifier {
	return &stubClassifier{verify: func(_ VerifyRequest) (domain.Verdict, error) {
		return domain.Verdict{
			IsMismatch: true,
			Reason:     "declared chapter does not cover the described goods",
			Confidence: confidence,
			CheckedAt:  time.Now().UTC(),
		}, nil
	}}
}

func eligibleShipment(id, code, description string, fob float64) domain.Shipment {
	return domain.Shipment{
		ID:                 id,
		HSCode:             code,
		ProductDescription: description,
		TotalFOB:           fob,
	}
}

func TestValidator_Validate_MismatchFlaggedAndCached(t *testing.T) {
	classifier := mismatchClassifier(0.92)
	store := newMemStore()
	settings := DefaultSettings()
	settings.ShortlistFraction = 1
	v := NewValidator(classifier, store, settings)

	batch := []domain.Shipment{
		eligibleShipment("SHP-77", "61091000", "Stainless Steel Pipe", 50000),
	}

	findings, errs := v.Validate(context.Background(), batch)

	require.Empty(t, errs)
	require.Len(t, findings, 1)
	assert.Equal(t, "SHP-77", findings[0].ShipmentID)
	assert.Equal(t, RuleHSMismatch, findings[0].RuleID)
	assert.Equal(t, domain.CategoryClassification, findings[0].Category)
	assert.Equal(t, domain.SeverityHigh, findings[0].Severity)
	assert.Equal(t, domain.LayerSemantic, findings[0].Layer)

	// resubmission is served from the cache
	again, errs := v.Validate(context.Background(), batch)
	require.Empty(t, errs)
	require.Len(t, again, 1)
	assert.Equal(t, findings[0].Reason, again[0].Reason)
	assert.Equal(t, 1, classifier.callCount())
}

func TestValidator_Validate_DuplicatePairsShareOneCall(t *testing.T) {
	classifier := mismatchClassifier(0.9)
	settings := DefaultSettings()
	settings.ShortlistFraction = 1
	v := NewValidator(classifier, newMemStore(), settings)

	var batch []domain.Shipment
	for i := 0; i < 5; i++ {
		batch = append(batch, eligibleShipment(
			fmt.Sprintf("SHP-%d", i), "61091000", "Stainless Steel Pipe", 1000))
	}

	findings, errs := v.Validate(context.Background(), batch)

	require.Empty(t, errs)
	assert.Len(t, findings, 5)
	assert.Equal(t, 1, classifier.callCount())
}

func TestValidator_Validate_ConfidenceThreshold(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		flagged    bool
	}{
		{"below threshold", 0.59, false},
		{"at threshold", 0.6, true},
		{"above threshold", 0.95, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DefaultSettings()
			settings.ShortlistFraction = 1
			v := NewValidator(mismatchClassifier(tt.confidence), newMemStore(), settings)

			findings, errs := v.Validate(context.Background(), []domain.Shipment{
				eligibleShipment("SHP-1", "61091000", "Stainless Steel Pipe", 1000),
			})

			require.Empty(t, errs)
			if tt.flagged {
				assert.Len(t, findings, 1)
			} else {
				assert.Empty(t, findings)
			}
		})
	}
}

func TestValidator_Validate_MatchVerdictNotFlagged(t *testing.T) {
	classifier := &stubClassifier{verify: func(_ VerifyRequest) (domain.Verdict, error) {
		return domain.Verdict{IsMismatch: false, Reason: "consistent", Confidence: 0.99}, nil
	}}
	settings := DefaultSettings()
	settings.ShortlistFraction = 1
	v := NewValidator(classifier, newMemStore(), settings)

	findings, errs := v.Validate(context.Background(), []domain.Shipment{
		eligibleShipment("SHP-1", "61091000", "Stainless Steel Pipe", 1000),
	})

	require.Empty(t, errs)
	assert.Empty(t, findings)
	assert.Equal(t, 1, classifier.callCount())
}

func TestValidator_Validate_FailSafeOnServiceError(t *testing.T) {
	classifier := &stubClassifier{verify: func(_ VerifyRequest) (domain.Verdict, error) {
		return domain.Verdict{}, errors.New("connection refused")
	}}
	store := newMemStore()
	settings := DefaultSettings()
	settings.ShortlistFraction = 1
	settings.MaxRetries = 0
	v := NewValidator(classifier, store, settings)

	findings, errs := v.Validate(context.Background(), []domain.Shipment{
		eligibleShipment("SHP-1", "61091000", "Stainless Steel Pipe", 1000),
	})

	assert.Empty(t, findings)
	require.Len(t, errs, 1)

	var svcErr *ServiceError
	require.ErrorAs(t, errs[0], &svcErr)
	assert.Equal(t, 0, store.size(), "failed calls must not populate the cache")
}

func TestValidator_Validate_FailSafeOnResponseError(t *testing.T) {
	classifier := &stubClassifier{verify: func(_ VerifyRequest) (domain.Verdict, error) {
		return domain.Verdict{}, &ResponseError{Reason: "missing is_mismatch, reason or confidence"}
	}}
	settings := DefaultSettings()
	settings.ShortlistFraction = 1
	settings.MaxRetries = 0
	v := NewValidator(classifier, newMemStore(), settings)

	findings, errs := v.Validate(context.Background(), []domain.Shipment{
		eligibleShipment("SHP-1", "61091000", "Stainless Steel Pipe", 1000),
	})

	assert.Empty(t, findings)
	require.Len(t, errs, 1)

	var respErr *ResponseError
	assert.ErrorAs(t, errs[0], &respErr)
}

func TestValidator_Validate_RetriesTransientFailure(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	classifier := &stubClassifier{verify: func(_ VerifyRequest) (domain.Verdict, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return domain.Verdict{}, errors.New("temporary outage")
		}
		return domain.Verdict{IsMismatch: true, Reason: "wrong chapter", Confidence: 0.8}, nil
	}}
	settings := DefaultSettings()
	settings.ShortlistFraction = 1
	v := NewValidator(classifier, newMemStore(), settings)

	findings, errs := v.Validate(context.Background(), []domain.Shipment{
		eligibleShipment("SHP-1", "61091000", "Stainless Steel Pipe", 1000),
	})

	require.Empty(t, errs)
	assert.Len(t, findings, 1)
	assert.Equal(t, 2, classifier.callCount())
}

func TestValidator_Validate_IneligibleRecordsNeverCalled(t *testing.T) {
	classifier := mismatchClassifier(0.9)
	settings := DefaultSettings()
	settings.ShortlistFraction = 1
	v := NewValidator(classifier, newMemStore(), settings)

	findings, errs := v.Validate(context.Background(), []domain.Shipment{
		eligibleShipment("SHP-1", "1234567", "seven digit code", 1000),
		eligibleShipment("SHP-2", "61091000", "", 1000),
		eligibleShipment("SHP-3", "73041990", "Carbon Steel Pipe", 1000), // obvious chapter match
	})

	assert.Empty(t, findings)
	assert.Empty(t, errs)
	assert.Equal(t, 0, classifier.callCount())
}

func TestValidator_Validate_ConcurrencyCapped(t *testing.T) {
	classifier := &stubClassifier{verify: func(_ VerifyRequest) (domain.Verdict, error) {
		time.Sleep(10 * time.Millisecond)
		return domain.Verdict{IsMismatch: false, Reason: "ok", Confidence: 0.9}, nil
	}}
	settings := DefaultSettings()
	settings.ShortlistFraction = 1
	v := NewValidator(classifier, newMemStore(), settings)

	var batch []domain.Shipment
	for i := 0; i < 20; i++ {
		batch = append(batch, eligibleShipment(
			fmt.Sprintf("SHP-%02d", i), "61091000", fmt.Sprintf("unlabeled goods %d", i), float64(1000+i)))
	}

	_, errs := v.Validate(context.Background(), batch)

	require.Empty(t, errs)
	assert.Equal(t, 20, classifier.callCount())
	assert.LessOrEqual(t, classifier.peakConcurrency(), settings.MaxInFlight)
}

func TestValidator_Shortlist(t *testing.T) {
	t.Run("top fraction by declared value", func(t *testing.T) {
		v := NewValidator(nil, nil, Settings{ShortlistFraction: 0.10})

		var batch []domain.Shipment
		for i := 0; i < 20; i++ {
			batch = append(batch, eligibleShipment(
				fmt.Sprintf("S%02d", i), "62034200", fmt.Sprintf("unlabeled goods %d", i), float64(100*(i+1))))
		}

		picked := v.shortlist(batch)

		require.Len(t, picked, 2)
		assert.Equal(t, "S19", picked[0].ID)
		assert.Equal(t, "S18", picked[1].ID)
	})

	t.Run("at least one when any are eligible", func(t *testing.T) {
		v := NewValidator(nil, nil, Settings{ShortlistFraction: 0.10})

		picked := v.shortlist([]domain.Shipment{
			eligibleShipment("S1", "62034200", "unlabeled goods", 100),
			eligibleShipment("S2", "62034200", "unlabeled goods", 200),
			eligibleShipment("S3", "62034200", "unlabeled goods", 300),
		})

		require.Len(t, picked, 1)
		assert.Equal(t, "S3", picked[0].ID)
	})

	t.Run("none eligible yields empty", func(t *testing.T) {
		v := NewValidator(nil, nil, Settings{ShortlistFraction: 1})

		picked := v.shortlist([]domain.Shipment{
			eligibleShipment("S1", "12345", "bad code", 100),
			eligibleShipment("S2", "62034200", "   ", 200),
		})

		assert.Empty(t, picked)
	})
}

func TestObviousMatch(t *testing.T) {
	assert.True(t, obviousMatch("Carbon Steel Pipe", "73041990"))
	assert.True(t, obviousMatch("Diesel engine block", "84099199"))
	assert.False(t, obviousMatch("Stainless Steel Pipe", "61091000"))
	assert.False(t, obviousMatch("mystery goods", "99999999"))
}

func TestCacheKey_Normalization(t *testing.T) {
	assert.Equal(t,
		cacheKey("Stainless Steel Pipe", "61091000"),
		cacheKey("  stainless steel pipe  ", "61091000"))
	assert.NotEqual(t,
		cacheKey("Stainless Steel Pipe", "61091000"),
		cacheKey("Stainless Steel Pipe", "73041990"))
}
