package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/mock-interview-api/internal/dto"
	"github.com/noah-isme/mock-interview-api/internal/models"
	"github.com/noah-isme/mock-interview-api/internal/observability"
	"github.com/noah-isme/mock-interview-api/internal/repository"
	"github.com/noah-isme/mock-interview-api/pkg/ai"
	"github.com/noah-isme/mock-interview-api/pkg/events"
)

// InterviewService owns the interview lifecycle: creation, answers, completion and history.
type InterviewService interface {
	Create(ctx context.Context, userID uint, payload dto.CreateInterviewRequest) (dto.CreateInterviewResponse, error)
	GetQuestions(ctx context.Context, interviewID string, userID uint) (dto.InterviewQuestionsResponse, error)
	SubmitAnswer(ctx context.Context, interviewID string, index int, userID uint, payload dto.SubmitAnswerRequest) (dto.QuestionEntryResponse, error)
	EvaluateAndSubmit(ctx context.Context, interviewID string, index int, userID uint, payload dto.EvaluateAnswerRequest) (dto.QuestionEntryResponse, error)
	GetResults(ctx context.Context, interviewID string, userID uint) (dto.InterviewResultsResponse, error)
	Complete(ctx context.Context, interviewID string, userID uint, payload dto.CompleteInterviewRequest) (dto.CompleteInterviewResponse, error)
	ListByUser(ctx context.Context, userID uint) (dto.InterviewHistoryResponse, error)
	GenerateQuestions(ctx context.Context, userID uint, payload dto.GenerateQuestionsRequest) (dto.GenerateQuestionsResponse, error)
}

// InterviewOptions carries the optional collaborators of the interview service.
type InterviewOptions struct {
	Evaluator ai.Evaluator
	Generator ai.QuestionGenerator
	Cache     *redis.Client
	CacheTTL  time.Duration
	Events    events.Publisher
}

const (
	answerSourceClient = "client"
	answerSourceServer = "server"
	answerSourceNone   = "none"
)

type interviewService struct {
	interviews repository.InterviewRepository
	users      repository.UserRepository
	evaluator  ai.Evaluator
	generator  ai.QuestionGenerator
	cache      *redis.Client
	cacheTTL   time.Duration
	events     events.Publisher
	validator  *validator.Validate
	sanitizer  textSanitizer
	tracer     trace.Tracer
	logger     zerolog.Logger
	now        func() time.Time
	newID      func() string
}

// NewInterviewService wires the lifecycle service.
func NewInterviewService(interviews repository.InterviewRepository, users repository.UserRepository, validate *validator.Validate, opts InterviewOptions, logger zerolog.Logger) InterviewService {
	publisher := opts.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	return &interviewService{
		interviews: interviews,
		users:      users,
		evaluator:  opts.Evaluator,
		generator:  opts.Generator,
		cache:      opts.Cache,
		cacheTTL:   ttl,
		events:     publisher,
		validator:  validate,
		sanitizer:  newTextSanitizer(),
		tracer:     otel.Tracer("github.com/noah-isme/mock-interview-api/internal/service/interview"),
		logger:     logger.With().Str("component", "interview_service").Logger(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *interviewService) Create(ctx context.Context, userID uint, payload dto.CreateInterviewRequest) (dto.CreateInterviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.create", trace.WithAttributes(
		attribute.Int64("interview.user_id", int64(userID)),
		attribute.Int("interview.question_count", len(payload.Questions)),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		failSpan(span, err, "validation_failed")
		return dto.CreateInterviewResponse{}, err
	}

	jobRole := s.sanitizer.clean(payload.JobRole)
	jobDescription := s.sanitizer.clean(payload.JobDescription)
	if jobRole == "" || jobDescription == "" {
		err := ValidationFailure("jobRole and jobDescription are required")
		failSpan(span, err, "validation_failed")
		return dto.CreateInterviewResponse{}, err
	}

	entries := make([]models.InterviewQuestion, 0, len(payload.Questions))
	for idx, item := range payload.Questions {
		question := s.sanitizer.clean(item.Question)
		answer := s.sanitizer.clean(item.Answer)
		if question == "" || answer == "" {
			err := ValidationFailure("question %d requires question and answer text", idx)
			failSpan(span, err, "validation_failed")
			return dto.CreateInterviewResponse{}, err
		}
		entries = append(entries, models.InterviewQuestion{
			Position:               idx,
			OriginalQuestion:       question,
			CorrectAnswer:          answer,
			EvaluationStrengths:    datatypes.JSONSlice[string]{},
			EvaluationImprovements: datatypes.JSONSlice[string]{},
		})
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failSpan(span, ErrUserNotFound, "user_not_found")
			return dto.CreateInterviewResponse{}, ErrUserNotFound
		}
		failSpan(span, err, "user_lookup_failed")
		return dto.CreateInterviewResponse{}, fmt.Errorf("load user: %w", err)
	}

	interview := models.Interview{
		ID:             s.newID(),
		UserID:         userID,
		JobRole:        jobRole,
		JobDescription: jobDescription,
		Questions:      entries,
		TotalQuestions: len(entries),
		CreatedAt:      s.now().UTC(),
	}

	if err := s.interviews.Create(ctx, &interview); err != nil {
		failSpan(span, err, "persistence_failed")
		return dto.CreateInterviewResponse{}, fmt.Errorf("create interview: %w", err)
	}

	span.SetAttributes(attribute.String("interview.id", interview.ID))
	observability.InterviewsCreated().Inc()
	s.invalidateHistory(ctx, userID)
	s.publish(ctx, events.Event{
		Type:        events.TypeInterviewCreated,
		InterviewID: interview.ID,
		UserID:      userID,
		OccurredAt:  interview.CreatedAt,
		Payload:     map[string]interface{}{"jobRole": jobRole, "totalQuestions": len(entries)},
	})

	s.logger.Info().Str("interview_id", interview.ID).Uint("user_id", userID).Int("questions", len(entries)).Msg("interview created")

	return dto.CreateInterviewResponse{InterviewID: interview.ID, TotalQuestions: len(entries)}, nil
}

func (s *interviewService) GetQuestions(ctx context.Context, interviewID string, userID uint) (dto.InterviewQuestionsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.questions", trace.WithAttributes(attribute.String("interview.id", interviewID)))
	defer span.End()

	interview, err := s.loadOwned(ctx, span, interviewID, userID)
	if err != nil {
		return dto.InterviewQuestionsResponse{}, err
	}

	return dto.NewInterviewQuestionsResponse(interview), nil
}

func (s *interviewService) SubmitAnswer(ctx context.Context, interviewID string, index int, userID uint, payload dto.SubmitAnswerRequest) (dto.QuestionEntryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.submit_answer", trace.WithAttributes(
		attribute.String("interview.id", interviewID),
		attribute.Int("interview.question_index", index),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		failSpan(span, err, "validation_failed")
		return dto.QuestionEntryResponse{}, err
	}

	transcript := s.sanitizer.clean(payload.AudioTranscript)
	if transcript == "" {
		err := ValidationFailure("audioTranscript is required")
		failSpan(span, err, "validation_failed")
		return dto.QuestionEntryResponse{}, err
	}

	var evaluation *models.Evaluation
	source := answerSourceNone
	if payload.AIEvaluation != nil {
		evaluation = &models.Evaluation{
			Score:        *payload.AIEvaluation.Score,
			Feedback:     s.sanitizer.clean(payload.AIEvaluation.Feedback),
			Strengths:    s.sanitizer.cleanList(payload.AIEvaluation.Strengths),
			Improvements: s.sanitizer.cleanList(payload.AIEvaluation.Improvements),
		}
		source = answerSourceClient
	}

	interview, err := s.loadOwned(ctx, span, interviewID, userID)
	if err != nil {
		return dto.QuestionEntryResponse{}, err
	}

	return s.recordAnswer(ctx, span, interview, index, transcript, evaluation, source)
}

func (s *interviewService) EvaluateAndSubmit(ctx context.Context, interviewID string, index int, userID uint, payload dto.EvaluateAnswerRequest) (dto.QuestionEntryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.evaluate_answer", trace.WithAttributes(
		attribute.String("interview.id", interviewID),
		attribute.Int("interview.question_index", index),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		failSpan(span, err, "validation_failed")
		return dto.QuestionEntryResponse{}, err
	}

	transcript := s.sanitizer.clean(payload.Transcript)
	if transcript == "" {
		err := ValidationFailure("transcript is required")
		failSpan(span, err, "validation_failed")
		return dto.QuestionEntryResponse{}, err
	}

	if s.evaluator == nil {
		failSpan(span, ErrEvaluatorUnavailable, "evaluator_unavailable")
		return dto.QuestionEntryResponse{}, ErrEvaluatorUnavailable
	}

	interview, err := s.loadOwned(ctx, span, interviewID, userID)
	if err != nil {
		return dto.QuestionEntryResponse{}, err
	}
	if err := checkAnswerable(interview, index); err != nil {
		failSpan(span, err, "not_answerable")
		return dto.QuestionEntryResponse{}, err
	}

	entry := interview.Questions[index]
	result, err := s.evaluator.EvaluateAnswer(ctx, ai.AnswerInput{
		Question:       entry.OriginalQuestion,
		Transcript:     transcript,
		ExpectedAnswer: entry.CorrectAnswer,
	})
	if err != nil {
		failSpan(span, err, "evaluation_failed")
		return dto.QuestionEntryResponse{}, fmt.Errorf("evaluate answer: %w", err)
	}

	evaluation := &models.Evaluation{
		Score:        result.Score,
		Feedback:     s.sanitizer.clean(result.Feedback),
		Strengths:    s.sanitizer.cleanList(result.Strengths),
		Improvements: s.sanitizer.cleanList(result.Improvements),
	}

	return s.recordAnswer(ctx, span, interview, index, transcript, evaluation, answerSourceServer)
}

func (s *interviewService) GetResults(ctx context.Context, interviewID string, userID uint) (dto.InterviewResultsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.results", trace.WithAttributes(attribute.String("interview.id", interviewID)))
	defer span.End()

	interview, err := s.loadOwned(ctx, span, interviewID, userID)
	if err != nil {
		return dto.InterviewResultsResponse{}, err
	}

	response := dto.NewInterviewResultsResponse(interview)
	span.SetAttributes(
		attribute.Int("interview.answered", response.TotalQuestionsAnswered),
		attribute.Float64("interview.overall_score", response.OverallScore),
	)

	return response, nil
}

func (s *interviewService) Complete(ctx context.Context, interviewID string, userID uint, payload dto.CompleteInterviewRequest) (dto.CompleteInterviewResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.complete", trace.WithAttributes(attribute.String("interview.id", interviewID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		failSpan(span, err, "validation_failed")
		return dto.CompleteInterviewResponse{}, err
	}

	interview, err := s.loadOwned(ctx, span, interviewID, userID)
	if err != nil {
		return dto.CompleteInterviewResponse{}, err
	}

	if interview.Finished() {
		failSpan(span, ErrInterviewCompleted, "already_completed")
		return dto.CompleteInterviewResponse{}, ErrInterviewCompleted
	}

	summary := interview.ScoreSummary()
	if summary.Answered == 0 {
		failSpan(span, ErrNoEvaluatedAnswers, "no_evaluated_answers")
		return dto.CompleteInterviewResponse{}, ErrNoEvaluatedAnswers
	}

	completedAt := s.now().UTC()
	update := repository.CompletionUpdate{
		OverallScore:    summary.Average,
		OverallFeedback: s.sanitizer.clean(payload.OverallFeedback),
		CompletedAt:     completedAt,
		Answered:        summary.Answered,
		Total:           len(interview.Questions),
	}

	updated, err := s.interviews.MarkCompleted(ctx, interview.ID, update)
	if err != nil {
		failSpan(span, err, "persistence_failed")
		return dto.CompleteInterviewResponse{}, fmt.Errorf("complete interview: %w", err)
	}
	if !updated {
		failSpan(span, ErrInterviewCompleted, "already_completed")
		return dto.CompleteInterviewResponse{}, ErrInterviewCompleted
	}

	span.SetAttributes(attribute.Float64("interview.overall_score", summary.Average))
	observability.InterviewsCompleted().Inc()
	observability.InterviewOverallScore().Observe(summary.Average)
	s.invalidateHistory(ctx, interview.UserID)
	s.publish(ctx, events.Event{
		Type:        events.TypeInterviewCompleted,
		InterviewID: interview.ID,
		UserID:      interview.UserID,
		OccurredAt:  completedAt,
		Payload: map[string]interface{}{
			"overallScore":           summary.Average,
			"totalQuestionsAnswered": summary.Answered,
			"totalQuestions":         len(interview.Questions),
		},
	})

	s.logger.Info().Str("interview_id", interview.ID).Float64("overall_score", summary.Average).Msg("interview completed")

	return dto.CompleteInterviewResponse{
		OverallScore:           summary.Average,
		CompletedAt:            completedAt,
		IsCompleted:            true,
		TotalQuestionsAnswered: summary.Answered,
		TotalQuestions:         len(interview.Questions),
	}, nil
}

func (s *interviewService) ListByUser(ctx context.Context, userID uint) (dto.InterviewHistoryResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.history", trace.WithAttributes(attribute.Int64("interview.user_id", int64(userID))))
	defer span.End()

	cacheKey := historyCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.InterviewHistoryResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("interview history cache hit")
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read interview history cache")
		}
	}

	items, err := s.interviews.ListByUser(ctx, userID)
	if err != nil {
		failSpan(span, err, "list_failed")
		return dto.InterviewHistoryResponse{}, fmt.Errorf("list interviews: %w", err)
	}

	response := dto.InterviewHistoryResponse{Interviews: dto.NewInterviewSummarySlice(items)}

	if s.cache != nil {
		payload, err := json.Marshal(response)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store interview history cache")
			}
		}
	}

	return response, nil
}

func (s *interviewService) GenerateQuestions(ctx context.Context, userID uint, payload dto.GenerateQuestionsRequest) (dto.GenerateQuestionsResponse, error) {
	ctx, span := s.tracer.Start(ctx, "interview.generate_questions", trace.WithAttributes(
		attribute.Int64("interview.user_id", int64(userID)),
		attribute.Int("interview.requested_count", payload.Count),
	))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		failSpan(span, err, "validation_failed")
		return dto.GenerateQuestionsResponse{}, err
	}

	jobRole := s.sanitizer.clean(payload.JobRole)
	jobDescription := s.sanitizer.clean(payload.JobDescription)
	if jobRole == "" || jobDescription == "" {
		err := ValidationFailure("jobRole and jobDescription are required")
		failSpan(span, err, "validation_failed")
		return dto.GenerateQuestionsResponse{}, err
	}

	if s.generator == nil {
		failSpan(span, ErrGeneratorUnavailable, "generator_unavailable")
		return dto.GenerateQuestionsResponse{}, ErrGeneratorUnavailable
	}

	generated, err := s.generator.GenerateQuestions(ctx, ai.QuestionRequest{
		JobRole:        jobRole,
		JobDescription: jobDescription,
		ResumeText:     s.sanitizer.clean(payload.ResumeText),
		Count:          payload.Count,
	})
	if err != nil {
		failSpan(span, err, "generation_failed")
		return dto.GenerateQuestionsResponse{}, fmt.Errorf("generate questions: %w", err)
	}

	questions := make([]dto.QuestionInput, 0, len(generated))
	for _, item := range generated {
		questions = append(questions, dto.QuestionInput{Question: item.Question, Answer: item.Answer})
	}

	s.logger.Info().Uint("user_id", userID).Int("questions", len(questions)).Msg("interview questions generated")

	return dto.GenerateQuestionsResponse{Questions: questions}, nil
}

func (s *interviewService) loadOwned(ctx context.Context, span trace.Span, interviewID string, userID uint) (models.Interview, error) {
	interview, err := s.interviews.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failSpan(span, ErrInterviewNotFound, "interview_not_found")
			return models.Interview{}, ErrInterviewNotFound
		}
		failSpan(span, err, "interview_lookup_failed")
		return models.Interview{}, fmt.Errorf("load interview: %w", err)
	}

	if !interview.OwnedBy(userID) {
		failSpan(span, ErrInterviewNotOwned, "forbidden")
		return models.Interview{}, ErrInterviewNotOwned
	}

	return interview, nil
}

func checkAnswerable(interview models.Interview, index int) error {
	if interview.Finished() {
		return ErrInterviewCompleted
	}
	if index < 0 || index >= len(interview.Questions) {
		return ErrQuestionNotFound
	}
	return nil
}

func (s *interviewService) recordAnswer(ctx context.Context, span trace.Span, interview models.Interview, index int, transcript string, evaluation *models.Evaluation, source string) (dto.QuestionEntryResponse, error) {
	if err := checkAnswerable(interview, index); err != nil {
		failSpan(span, err, "not_answerable")
		return dto.QuestionEntryResponse{}, err
	}

	question, err := s.interviews.SaveAnswer(ctx, interview.ID, index, repository.AnswerUpdate{
		Transcript: transcript,
		Evaluation: evaluation,
		AnsweredAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			failSpan(span, ErrQuestionNotFound, "question_not_found")
			return dto.QuestionEntryResponse{}, ErrQuestionNotFound
		}
		if errors.Is(err, repository.ErrInterviewClosed) {
			failSpan(span, ErrInterviewCompleted, "already_completed")
			return dto.QuestionEntryResponse{}, ErrInterviewCompleted
		}
		failSpan(span, err, "persistence_failed")
		return dto.QuestionEntryResponse{}, fmt.Errorf("save answer: %w", err)
	}

	observability.AnswersSubmitted().WithLabelValues(source).Inc()

	eventPayload := map[string]interface{}{"index": index, "source": source, "evaluated": evaluation != nil}
	if evaluation != nil {
		eventPayload["score"] = evaluation.Score
	}
	s.publish(ctx, events.Event{
		Type:        events.TypeAnswerSubmitted,
		InterviewID: interview.ID,
		UserID:      interview.UserID,
		OccurredAt:  s.now().UTC(),
		Payload:     eventPayload,
	})

	return dto.NewQuestionEntryResponse(question), nil
}

func (s *interviewService) invalidateHistory(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, historyCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate interview history cache")
	}
}

// publish logs broker failures instead of returning them; the transition is already persisted.
func (s *interviewService) publish(ctx context.Context, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event", event.Type).Str("interview_id", event.InterviewID).Msg("failed to publish interview event")
	}
}

func historyCacheKey(userID uint) string {
	return fmt.Sprintf("interviews:user:%d", userID)
}

func failSpan(span trace.Span, err error, status string) {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
}
