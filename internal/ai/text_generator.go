package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"

	"instagram-agent-platform/internal/agent"
	"instagram-agent-platform/internal/config"
	"instagram-agent-platform/internal/logger"
)

// GeminiTextGenerator produces the caption and hashtags for a post via
// the Gemini API, behind a circuit breaker and a per-tier rate limiter.
type GeminiTextGenerator struct {
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
	client      *genai.Client
	model       string
}

type RateLimits struct {
	RPM int // Requests per minute
	RPD int // Requests per day
}

func NewGeminiTextGenerator(ctx context.Context, cfg *config.Config) (*GeminiTextGenerator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	limits := getRateLimits(cfg.GeminiTier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	// RPM limit with some buffer
	rateLimiter := rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), 1)

	return &GeminiTextGenerator{
		breaker:     breaker,
		rateLimiter: rateLimiter,
		client:      client,
		model:       cfg.GeminiModel,
	}, nil
}

func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, RPD: 50000}
	default:
		return RateLimits{RPM: 10, RPD: 250}
	}
}

func (g *GeminiTextGenerator) GenerateCaption(ctx context.Context, req agent.CaptionRequest) (*agent.CaptionResult, error) {
	tracer := otel.Tracer("gemini-text")
	ctx, span := tracer.Start(ctx, "gemini.generate_caption")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", g.model),
		attribute.String("agent.theme", req.Theme),
		attribute.String("agent.tone", req.Tone),
	)

	if err := g.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("gemini.rate_limited", true))
		return nil, err
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		model := g.client.GenerativeModel(g.model)
		model.SetTemperature(0.8)
		model.SetMaxOutputTokens(1024)

		resp, err := model.GenerateContent(ctx, genai.Text(buildCaptionPrompt(req)))
		if err != nil {
			span.SetAttributes(attribute.Bool("gemini.error", true))
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			span.SetAttributes(attribute.Bool("gemini.circuit_breaker_open", true))
			return nil, fmt.Errorf("text generation unavailable: circuit breaker open")
		}
		return nil, err
	}

	text := extractResponseText(result.(*genai.GenerateContentResponse))
	caption, err := ParseCaptionResponse(text)
	if err != nil {
		span.SetAttributes(attribute.Bool("gemini.parse_error", true))
		return nil, err
	}

	span.SetAttributes(attribute.Int("agent.generated_hashtags", len(caption.Hashtags)))
	return caption, nil
}

func buildCaptionPrompt(req agent.CaptionRequest) string {
	var prompt strings.Builder

	prompt.WriteString("You are a social media copywriter for an Instagram account.\n\n")
	prompt.WriteString(fmt.Sprintf("Write today's post about: %s\n", req.Theme))
	prompt.WriteString(fmt.Sprintf("Tone of voice: %s\n", req.Tone))
	if strings.TrimSpace(req.CallToAction) != "" {
		prompt.WriteString(fmt.Sprintf("End the caption with this call to action: %s\n", req.CallToAction))
	}
	prompt.WriteString("\nRespond with JSON only, no markdown fences, in this exact shape:\n")
	prompt.WriteString(`{"caption": "the caption text", "hashtags": ["#tag1", "#tag2"]}` + "\n")
	prompt.WriteString("The caption must be under 2000 characters. Suggest 3 to 6 relevant hashtags.")

	return prompt.String()
}

// ParseCaptionResponse extracts the JSON payload from a model reply,
// tolerating markdown fences and leading prose around the object.
func ParseCaptionResponse(text string) (*agent.CaptionResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var payload struct {
		Caption  string   `json:"caption"`
		Hashtags []string `json:"hashtags"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %v", err)
	}

	if strings.TrimSpace(payload.Caption) == "" {
		return nil, fmt.Errorf("model response has an empty caption")
	}

	return &agent.CaptionResult{
		Caption:  strings.TrimSpace(payload.Caption),
		Hashtags: payload.Hashtags,
	}, nil
}

func extractResponseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return sb.String()
}

// Close the client
func (g *GeminiTextGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
