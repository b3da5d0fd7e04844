package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic"
)

const (
	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
)

// Classifier talks to any service implementing the verification wire
// contract: POST {description, code}, receive the strict verdict object.
type Classifier struct {
	url    string
	token  string
	client *http.Client
}

func NewClassifier(cfg *Config) (*Classifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("classifier url is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Classifier{
		url:    cfg.URL,
		token:  cfg.Token,
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Factory builds a Classifier from a YAML config file, for registry use.
func Factory(configPath string) (semantic.Classifier, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewClassifier(cfg)
}

type verifyPayload struct {
	Description string `json:"description"`
	Code        string `json:"code"`
}

func (c *Classifier) Verify(ctx context.Context, req semantic.VerifyRequest) (domain.Verdict, error) {
	body, err := json.Marshal(verifyPayload{
		Description: req.Description,
		Code:        req.HSCode,
	})
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("encode verify request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("build verify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("call classifier: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return domain.Verdict{}, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("read classifier response: %w", err)
	}
	return semantic.DecodeVerdict(raw)
}
