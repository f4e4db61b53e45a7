package priority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const httpProvider = "http"

// HTTPConfig configures the remote scoring service client.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  zerolog.Logger
}

// HTTPScorer calls the model-backed scoring service over HTTP.
type HTTPScorer struct {
	endpoint string
	client   *http.Client
	tracer   trace.Tracer
	logger   zerolog.Logger
}

type predictRequest struct {
	Task     string `json:"task"`
	Subject  string `json:"subject"`
	Deadline string `json:"deadline"`
}

type predictResponse struct {
	PriorityScore   *float64 `json:"priority_score"`
	Urgency         float64  `json:"urgency"`
	Difficulty      float64  `json:"difficulty"`
	DeadlineImpact  float64  `json:"deadline_impact"`
	ModelPrediction float64  `json:"model_prediction"`
	Error           string   `json:"error"`
}

// NewHTTPScorer builds a scorer for the service rooted at cfg.BaseURL.
func NewHTTPScorer(cfg HTTPConfig) (*HTTPScorer, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("priority service url is required")
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPScorer{
		endpoint: base + "/predict",
		client:   client,
		tracer:   otel.Tracer("github.com/noah-isme/schedmate-api/pkg/priority/http"),
		logger:   cfg.Logger.With().Str("component", "priority_http").Logger(),
	}, nil
}

// Score posts the task attributes and returns priority_score from the reply.
func (s *HTTPScorer) Score(parent context.Context, req Request) (float64, error) {
	ctx, span := s.tracer.Start(parent, "priority.http.score", trace.WithAttributes(
		attribute.String("priority.category", req.Category),
		attribute.String("priority.subject", req.Subject),
	))
	defer span.End()

	start := time.Now()
	score, err := s.do(ctx, req)
	scoreDuration.WithLabelValues(httpProvider).Observe(time.Since(start).Seconds())
	if err != nil {
		scoreFailures.WithLabelValues(httpProvider).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Float64("priority.score", score))
	return score, nil
}

func (s *HTTPScorer) do(ctx context.Context, req Request) (float64, error) {
	body, err := json.Marshal(predictRequest{
		Task:     strings.ToLower(strings.TrimSpace(req.Category)),
		Subject:  strings.ToLower(strings.TrimSpace(req.Subject)),
		Deadline: req.Deadline.Format(DeadlineLayout),
	})
	if err != nil {
		return 0, fmt.Errorf("encode priority request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build priority request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("call priority service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("read priority response: %w", err)
	}

	var payload predictResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, fmt.Errorf("decode priority response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn().Int("status", resp.StatusCode).Str("error", payload.Error).Msg("priority service rejected request")
		return 0, fmt.Errorf("priority service returned status %d: %s", resp.StatusCode, payload.Error)
	}

	if payload.PriorityScore == nil {
		return 0, fmt.Errorf("priority service response missing priority_score")
	}

	return *payload.PriorityScore, nil
}
