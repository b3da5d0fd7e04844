package semantic

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

const RuleHSMismatch = "HS_DESCRIPTION_MISMATCH"

// VerifyRequest is the question put to a classifier backend: does this
// description plausibly belong under this HS code?
type VerifyRequest struct {
	Description string
	HSCode      string
}

// Classifier answers verification requests through an external inference
// service. Implementations live in the backend subpackages.
type Classifier interface {
	Verify(ctx context.Context, req VerifyRequest) (domain.Verdict, error)
}

// ClassifierFunc adapts a plain function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, req VerifyRequest) (domain.Verdict, error)

func (f ClassifierFunc) Verify(ctx context.Context, req VerifyRequest) (domain.Verdict, error) {
	return f(ctx, req)
}

// VerdictStore caches verdicts by key so repeated description/code pairs
// never trigger a second external call.
type VerdictStore interface {
	Get(ctx context.Context, key string) (domain.Verdict, bool, error)
	Put(ctx context.Context, key string, verdict domain.Verdict) error
}

// Settings contains the tunables for the semantic validation layer
type Settings struct {
	// ConfidenceThreshold is the minimum classifier confidence a mismatch
	// verdict needs to become a finding (default: 0.6)
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	// MaxInFlight caps concurrent classifier calls (default: 5)
	MaxInFlight int `mapstructure:"max_in_flight"`
	// CallTimeout bounds one classifier attempt (default: 10s)
	CallTimeout time.Duration `mapstructure:"call_timeout"`
	// MaxRetries is the number of retries after a failed attempt (default: 2)
	MaxRetries int `mapstructure:"max_retries"`
	// ShortlistFraction is the share of eligible records validated per
	// batch, highest declared value first (default: 0.10)
	ShortlistFraction float64 `mapstructure:"shortlist_fraction"`
}

// DefaultSettings returns the fail-safe validation configuration
func DefaultSettings() Settings {
	return Settings{
		ConfidenceThreshold: 0.6,
		MaxInFlight:         5,
		CallTimeout:         10 * time.Second,
		MaxRetries:          2,
		ShortlistFraction:   0.10,
	}
}

// Validator checks whether product descriptions plausibly match their declared
// HS codes. Verdicts are cached; a classifier failure never flags a record.
type Validator struct {
	classifier Classifier
	store      VerdictStore
	settings   Settings
	group      singleflight.Group
}

func NewValidator(classifier Classifier, store VerdictStore, settings Settings) *Validator {
	return &Validator{
		classifier: classifier,
		store:      store,
		settings:   settings,
	}
}

// Validate runs the shortlist through the classifier, at most MaxInFlight
// calls at a time, and returns mismatch findings plus one error per record
// whose verdict could not be obtained. Failed records are skipped, never
// flagged.
func (v *Validator) Validate(ctx context.Context, batch []domain.Shipment) ([]domain.Finding, []error) {
	shortlist := v.shortlist(batch)
	if len(shortlist) == 0 {
		return nil, nil
	}

	results := make([]*domain.Finding, len(shortlist))
	failures := make([]error, len(shortlist))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.settings.MaxInFlight)
	for i, s := range shortlist {
		g.Go(func() error {
			verdict, err := v.verdictFor(gctx, s)
			if err != nil {
				failures[i] = err
				zerolog.Ctx(gctx).Warn().
					Err(err).
					Str("shipment_id", s.ID).
					Msg("semantic validation skipped")
				return nil
			}
			if verdict.IsMismatch && verdict.Confidence >= v.settings.ConfidenceThreshold {
				results[i] = &domain.Finding{
					ShipmentID: s.ID,
					Layer:      domain.LayerSemantic,
					Category:   domain.CategoryClassification,
					RuleID:     RuleHSMismatch,
					Severity:   domain.SeverityHigh,
					Reason: fmt.Sprintf("%s (confidence %.2f)",
						verdict.Reason, verdict.Confidence),
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	var findings []domain.Finding
	var errs []error
	for i := range shortlist {
		if results[i] != nil {
			findings = append(findings, *results[i])
		}
		if failures[i] != nil {
			errs = append(errs, failures[i])
		}
	}
	return findings, errs
}

// verdictFor consults the cache first; misses go through singleflight so two
// concurrent requests for one key produce one classifier call. The cache is
// populated only after a fully validated response.
func (v *Validator) verdictFor(ctx context.Context, s domain.Shipment) (domain.Verdict, error) {
	key := cacheKey(s.ProductDescription, s.HSCode)

	cached, ok, err := v.store.Get(ctx, key)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("verdict store read failed")
	} else if ok {
		return cached, nil
	}

	result, err, _ := v.group.Do(key, func() (interface{}, error) {
		// a previous flight may have finished between the miss and here
		if cached, ok, err := v.store.Get(ctx, key); err == nil && ok {
			return cached, nil
		}
		verdict, err := v.callClassifier(ctx, VerifyRequest{
			Description: s.ProductDescription,
			HSCode:      s.HSCode,
		})
		if err != nil {
			return nil, err
		}
		if err := v.store.Put(ctx, key, verdict); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("verdict store write failed")
		}
		return verdict, nil
	})
	if err != nil {
		return domain.Verdict{}, err
	}
	return result.(domain.Verdict), nil
}

// callClassifier wraps one verification in the per-call timeout and retries
// transient failures with exponential backoff. Parent cancellation is
// permanent.
func (v *Validator) callClassifier(ctx context.Context, req VerifyRequest) (domain.Verdict, error) {
	var verdict domain.Verdict

	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, v.settings.CallTimeout)
		defer cancel()

		result, err := v.classifier.Verify(callCtx, req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		verdict = result
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(v.settings.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		var respErr *ResponseError
		if errors.As(err, &respErr) {
			return domain.Verdict{}, respErr
		}
		return domain.Verdict{}, &ServiceError{Op: "verify", Err: err}
	}
	return verdict, nil
}

// cacheKey normalizes the pair so trivial whitespace and casing differences
// share one cache entry.
func cacheKey(description, code string) string {
	normalized := strings.ToLower(strings.TrimSpace(description)) + "|" + strings.ToLower(strings.TrimSpace(code))
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
