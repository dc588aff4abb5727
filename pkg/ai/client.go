package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mock_interview",
		Subsystem: "ai",
		Name:      "request_duration_seconds",
		Help:      "Duration of AI provider requests",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"provider", "model", "operation"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mock_interview",
		Subsystem: "ai",
		Name:      "request_failures_total",
		Help:      "Number of failed or unparsable AI provider requests",
	}, []string{"provider", "model", "operation"})
)

// Client turns a raw Completer into an Evaluator and QuestionGenerator. Every call is bounded by the
// configured timeout, measured and traced; replies that cannot be parsed are errors and are never retried.
type Client struct {
	provider  string
	completer Completer
	timeout   time.Duration
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewClient wraps completer for the named provider.
func NewClient(provider string, completer Completer, timeout time.Duration, logger zerolog.Logger) *Client {
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	return &Client{
		provider:  provider,
		completer: completer,
		timeout:   timeout,
		tracer:    otel.Tracer("github.com/noah-isme/mock-interview-api/pkg/ai"),
		logger:    logger.With().Str("component", "ai_client").Str("provider", provider).Logger(),
	}
}

// Provider returns the configured provider name.
func (c *Client) Provider() string {
	return c.provider
}

// EvaluateAnswer grades one transcript against its question and reference answer.
func (c *Client) EvaluateAnswer(parent context.Context, input AnswerInput) (AnswerEvaluation, error) {
	if strings.TrimSpace(input.Transcript) == "" {
		return AnswerEvaluation{}, fmt.Errorf("transcript is required")
	}

	var evaluation AnswerEvaluation
	err := c.complete(parent, "evaluate_answer", CompletionRequest{
		System:      evaluatorSystemPrompt(),
		Prompt:      buildEvaluationPrompt(input),
		Temperature: 0.2,
		MaxTokens:   1024,
		JSONObject:  true,
	}, func(content string) error {
		parsed, parseErr := parseEvaluation(content)
		evaluation = parsed
		return parseErr
	})
	if err != nil {
		return AnswerEvaluation{}, err
	}

	return evaluation, nil
}

// GenerateQuestions asks the model for a question set. Count defaults to DefaultQuestionCount and is
// capped at MaxQuestionCount.
func (c *Client) GenerateQuestions(parent context.Context, req QuestionRequest) ([]GeneratedQuestion, error) {
	limit := normalizeQuestionCount(req.Count)

	var questions []GeneratedQuestion
	err := c.complete(parent, "generate_questions", CompletionRequest{
		System:      generatorSystemPrompt(),
		Prompt:      buildQuestionPrompt(req),
		Temperature: 0.7,
		MaxTokens:   4096,
	}, func(content string) error {
		parsed, parseErr := parseQuestions(content, limit)
		questions = parsed
		return parseErr
	})
	if err != nil {
		return nil, err
	}

	return questions, nil
}

func (c *Client) complete(parent context.Context, operation string, req CompletionRequest, parse func(string) error) error {
	model := c.completer.Model()
	ctx, span := c.tracer.Start(parent, "ai."+operation, trace.WithAttributes(
		attribute.String("ai.provider", c.provider),
		attribute.String("ai.model", model),
	))
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := c.completer.Complete(ctx, req)
	duration := time.Since(start)
	aiDuration.WithLabelValues(c.provider, model, operation).Observe(duration.Seconds())

	if err == nil {
		err = parse(content)
	}
	if err != nil {
		aiFailures.WithLabelValues(c.provider, model, operation).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Warn().Err(err).Str("operation", operation).Dur("duration", duration).Msg("ai request failed")
		return fmt.Errorf("%s %s: %w", c.provider, operation, err)
	}

	c.logger.Debug().Str("operation", operation).Dur("duration", duration).Msg("ai request completed")
	return nil
}
