package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
	"github.com/de-tools/trade-sentinel/pkg/services/semantic"
)

const defaultModel = "gemini-2.0-flash"

// Classifier asks a Gemini model whether a product description plausibly
// belongs under the declared HS code. The model is forced into JSON output
// and the reply goes through the strict verdict decoder.
type Classifier struct {
	client *genai.Client
	model  string
}

func NewClassifier(ctx context.Context, cfg *Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Classifier{client: client, model: model}, nil
}

// Factory builds a Classifier from a YAML config file, for registry use.
func Factory(configPath string) (semantic.Classifier, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return NewClassifier(context.Background(), cfg)
}

func (c *Classifier) Verify(ctx context.Context, req semantic.VerifyRequest) (domain.Verdict, error) {
	temperature := float32(0)
	result, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(buildPrompt(req)),
		&genai.GenerateContentConfig{
			Temperature:      &temperature,
			ResponseMIMEType: "application/json",
		},
	)
	if err != nil {
		return domain.Verdict{}, fmt.Errorf("gemini generate content: %w", err)
	}

	payload := extractJSON(result.Text())
	if payload == "" {
		return domain.Verdict{}, &semantic.ResponseError{Reason: "no JSON object in model output"}
	}
	return semantic.DecodeVerdict([]byte(payload))
}

func buildPrompt(req semantic.VerifyRequest) string {
	var b strings.Builder
	b.WriteString("You are a customs classification reviewer.\n")
	fmt.Fprintf(&b, "Product description: %q\n", req.Description)
	fmt.Fprintf(&b, "Declared HS code: %s\n", req.HSCode)
	b.WriteString("Does the description plausibly belong under this HS code?\n")
	b.WriteString(`Reply with a single JSON object: {"is_mismatch": <bool>, "reason": <string>, "confidence": <number between 0 and 1>}`)
	return b.String()
}

// extractJSON returns the first balanced JSON object in response, or an
// empty string when there is none.
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}
