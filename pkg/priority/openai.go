package priority

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const openAIProvider = "openai"

// OpenAIConfig defines configuration options for the OpenAI scorer.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Logger  zerolog.Logger
}

// OpenAIScorer asks a chat model for a priority on the same scale as the
// formula scorer.
type OpenAIScorer struct {
	client *openai.Client
	model  string
	tracer trace.Tracer
	logger zerolog.Logger
	now    func() time.Time
}

// NewOpenAIScorer builds a scorer using the provided configuration.
func NewOpenAIScorer(cfg OpenAIConfig) (*OpenAIScorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIScorer{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		tracer: otel.Tracer("github.com/noah-isme/schedmate-api/pkg/priority/openai"),
		logger: cfg.Logger.With().Str("component", "priority_openai").Logger(),
		now:    time.Now,
	}, nil
}

// Score sends the task attributes to the model and parses priority_score.
func (s *OpenAIScorer) Score(parent context.Context, req Request) (float64, error) {
	ctx, span := s.tracer.Start(parent, "priority.openai.score", trace.WithAttributes(
		attribute.String("model", s.model),
	))
	defer span.End()

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   64,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scorerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: s.userPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	scoreDuration.WithLabelValues(openAIProvider).Observe(time.Since(start).Seconds())
	if err != nil {
		return s.fail(span, fmt.Errorf("openai score: %w", err))
	}

	if len(resp.Choices) == 0 {
		return s.fail(span, fmt.Errorf("no choices returned from openai"))
	}

	var parsed struct {
		PriorityScore *float64 `json:"priority_score"`
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return s.fail(span, fmt.Errorf("parse openai score: %w", err))
	}
	if parsed.PriorityScore == nil {
		return s.fail(span, fmt.Errorf("openai response missing priority_score"))
	}

	span.SetAttributes(attribute.Float64("priority.score", *parsed.PriorityScore))
	return *parsed.PriorityScore, nil
}

func (s *OpenAIScorer) fail(span trace.Span, err error) (float64, error) {
	scoreFailures.WithLabelValues(openAIProvider).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.Warn().Err(err).Msg("priority scoring failed")
	return 0, err
}

func (s *OpenAIScorer) userPrompt(req Request) string {
	hoursLeft := req.Deadline.Sub(s.now()).Hours()
	return fmt.Sprintf("category: %s\nsubject: %s\ndeadline: %s\nhours_left: %.1f",
		req.Category, req.Subject, req.Deadline.Format(DeadlineLayout), hoursLeft)
}

const scorerSystemPrompt = `You rank school tasks for a student planner.
Score urgency from the category (exams highest, extracurricular lowest),
difficulty from the subject, and deadline pressure (<=24h: 6, <=48h: 4, otherwise 2).
Combine as 0.5*urgency + 0.5*difficulty + 3*deadline_pressure with urgency and
difficulty on a 1-5 scale. Reply only with JSON: {"priority_score": <number>}.`
