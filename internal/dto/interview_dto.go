package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/noah-isme/mock-interview-api/internal/models"
)

const (
	// NotAnsweredPlaceholder replaces a missing candidate answer in result views.
	NotAnsweredPlaceholder = "Not answered"
	// NotEvaluatedPlaceholder replaces missing evaluation feedback in result views.
	NotEvaluatedPlaceholder = "Not evaluated"
)

// ErrQuestionsFormat reports a questions field that is neither a JSON array nor a string holding one.
var ErrQuestionsFormat = errors.New("questions must be a JSON array of {question, answer} objects")

// QuestionInput is one generated question with its reference answer.
type QuestionInput struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// QuestionList accepts the questions either as a JSON array or as a string containing that array.
type QuestionList []QuestionInput

// UnmarshalJSON decodes both accepted shapes once, at the API boundary.
func (l *QuestionList) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if len(raw) > 0 && raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return ErrQuestionsFormat
		}
		raw = bytes.TrimSpace([]byte(encoded))
	}

	if len(raw) == 0 || raw[0] != '[' {
		return ErrQuestionsFormat
	}

	var items []QuestionInput
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("%w: %v", ErrQuestionsFormat, err)
	}

	*l = items
	return nil
}

// CreateInterviewRequest starts a new interview session.
type CreateInterviewRequest struct {
	JobRole        string       `json:"jobRole" validate:"required,max=255"`
	JobDescription string       `json:"jobDescription" validate:"required"`
	Questions      QuestionList `json:"questions" validate:"required,min=1,max=50,dive"`
}

// CreateInterviewResponse is returned once the session is stored.
type CreateInterviewResponse struct {
	InterviewID    string `json:"interviewId"`
	TotalQuestions int    `json:"totalQuestions"`
}

// EvaluationPayload is the structured AI evaluation attached to an answer.
type EvaluationPayload struct {
	Score        *float64 `json:"score" validate:"required,gte=1,lte=10"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// SubmitAnswerRequest records the candidate's answer for one question.
type SubmitAnswerRequest struct {
	AudioTranscript string             `json:"audioTranscript" validate:"required"`
	AIEvaluation    *EvaluationPayload `json:"aiEvaluation"`
}

// EvaluateAnswerRequest asks the server to evaluate a transcript before recording it.
type EvaluateAnswerRequest struct {
	Transcript string `json:"transcript" validate:"required"`
}

// CompleteInterviewRequest finalizes a session.
type CompleteInterviewRequest struct {
	OverallFeedback string `json:"overallFeedback" validate:"max=5000"`
}

// GenerateQuestionsRequest asks the AI provider for a fresh question set.
type GenerateQuestionsRequest struct {
	JobRole        string `json:"jobRole" validate:"required,max=255"`
	JobDescription string `json:"jobDescription" validate:"required"`
	ResumeText     string `json:"resumeText"`
	Count          int    `json:"count" validate:"omitempty,gte=1,lte=20"`
}

// GenerateQuestionsResponse lists generated questions; they are not persisted.
type GenerateQuestionsResponse struct {
	Questions []QuestionInput `json:"questions"`
}

// QuestionPrompt is the pre-answer projection of an entry.
type QuestionPrompt struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"`
}

// InterviewQuestionsResponse is the read-only question view of a session.
type InterviewQuestionsResponse struct {
	JobRole        string           `json:"jobRole"`
	JobDescription string           `json:"jobDescription"`
	Questions      []QuestionPrompt `json:"questions"`
}

// EvaluationResponse serializes an evaluation.
type EvaluationResponse struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// QuestionEntryResponse is the full state of one entry after an answer submission.
type QuestionEntryResponse struct {
	Index            int                 `json:"index"`
	OriginalQuestion string              `json:"originalQuestion"`
	CorrectAnswer    string              `json:"correctAnswer"`
	CandidateAnswer  *string             `json:"candidateAnswer"`
	AudioTranscript  *string             `json:"audioTranscript"`
	AIEvaluation     *EvaluationResponse `json:"aiEvaluation"`
	AnsweredAt       *time.Time          `json:"answeredAt"`
}

// QuestionResult is one entry in the results view; missing values are replaced by placeholders.
type QuestionResult struct {
	Index           int                `json:"index"`
	Question        string             `json:"question"`
	CandidateAnswer string             `json:"candidateAnswer"`
	AIEvaluation    EvaluationResponse `json:"aiEvaluation"`
	AnsweredAt      *time.Time         `json:"answeredAt"`
}

// InterviewResultsResponse is the owner's detailed view of a session.
type InterviewResultsResponse struct {
	JobRole                string           `json:"jobRole"`
	JobDescription         string           `json:"jobDescription"`
	CompletedAt            *time.Time       `json:"completedAt"`
	OverallScore           float64          `json:"overallScore"`
	OverallFeedback        string           `json:"overallFeedback"`
	IsCompleted            bool             `json:"isCompleted"`
	TotalQuestionsAnswered int              `json:"totalQuestionsAnswered"`
	TotalQuestions         int              `json:"totalQuestions"`
	Questions              []QuestionResult `json:"questions"`
}

// CompleteInterviewResponse reports the locked-in score.
type CompleteInterviewResponse struct {
	OverallScore           float64   `json:"overallScore"`
	CompletedAt            time.Time `json:"completedAt"`
	IsCompleted            bool      `json:"isCompleted"`
	TotalQuestionsAnswered int       `json:"totalQuestionsAnswered"`
	TotalQuestions         int       `json:"totalQuestions"`
}

// InterviewSummary is a history row. Score is null until the session is completed.
type InterviewSummary struct {
	ID          string     `json:"id"`
	JobRole     string     `json:"jobRole"`
	Date        time.Time  `json:"date"`
	CompletedAt *time.Time `json:"completedAt"`
	Score       *float64   `json:"score"`
	IsCompleted bool       `json:"isCompleted"`
}

// InterviewHistoryResponse wraps the history list.
type InterviewHistoryResponse struct {
	Interviews []InterviewSummary `json:"interviews"`
}

// NewInterviewQuestionsResponse projects a session without any answer data.
func NewInterviewQuestionsResponse(model models.Interview) InterviewQuestionsResponse {
	questions := make([]QuestionPrompt, 0, len(model.Questions))
	for _, question := range model.Questions {
		questions = append(questions, QuestionPrompt{
			Question:      question.OriginalQuestion,
			CorrectAnswer: question.CorrectAnswer,
		})
	}

	return InterviewQuestionsResponse{
		JobRole:        model.JobRole,
		JobDescription: model.JobDescription,
		Questions:      questions,
	}
}

// NewEvaluationResponse converts an evaluation; nil stays nil.
func NewEvaluationResponse(evaluation *models.Evaluation) *EvaluationResponse {
	if evaluation == nil {
		return nil
	}

	return &EvaluationResponse{
		Score:        evaluation.Score,
		Feedback:     evaluation.Feedback,
		Strengths:    nonNil(evaluation.Strengths),
		Improvements: nonNil(evaluation.Improvements),
	}
}

// NewQuestionEntryResponse converts a stored entry into a DTO.
func NewQuestionEntryResponse(model models.InterviewQuestion) QuestionEntryResponse {
	return QuestionEntryResponse{
		Index:            model.Position,
		OriginalQuestion: model.OriginalQuestion,
		CorrectAnswer:    model.CorrectAnswer,
		CandidateAnswer:  model.CandidateAnswer,
		AudioTranscript:  model.AudioTranscript,
		AIEvaluation:     NewEvaluationResponse(model.Evaluation()),
		AnsweredAt:       model.AnsweredAt,
	}
}

// NewQuestionResult converts an entry for the results view.
func NewQuestionResult(model models.InterviewQuestion) QuestionResult {
	answer := NotAnsweredPlaceholder
	if model.CandidateAnswer != nil && *model.CandidateAnswer != "" {
		answer = *model.CandidateAnswer
	}

	evaluation := EvaluationResponse{
		Score:        0,
		Feedback:     NotEvaluatedPlaceholder,
		Strengths:    []string{},
		Improvements: []string{},
	}
	if stored := NewEvaluationResponse(model.Evaluation()); stored != nil {
		evaluation = *stored
	}

	return QuestionResult{
		Index:           model.Position,
		Question:        model.OriginalQuestion,
		CandidateAnswer: answer,
		AIEvaluation:    evaluation,
		AnsweredAt:      model.AnsweredAt,
	}
}

// NewInterviewResultsResponse builds the results view. A persisted overall score wins over the live average.
func NewInterviewResultsResponse(model models.Interview) InterviewResultsResponse {
	summary := model.ScoreSummary()

	overall := summary.Average
	if model.OverallScore != nil {
		overall = *model.OverallScore
	}

	questions := make([]QuestionResult, 0, len(model.Questions))
	for _, question := range model.Questions {
		questions = append(questions, NewQuestionResult(question))
	}

	return InterviewResultsResponse{
		JobRole:                model.JobRole,
		JobDescription:         model.JobDescription,
		CompletedAt:            model.CompletedAt,
		OverallScore:           overall,
		OverallFeedback:        model.OverallFeedback,
		IsCompleted:            model.Finished(),
		TotalQuestionsAnswered: summary.Answered,
		TotalQuestions:         len(model.Questions),
		Questions:              questions,
	}
}

// NewInterviewSummary converts a session into a history row.
func NewInterviewSummary(model models.Interview) InterviewSummary {
	return InterviewSummary{
		ID:          model.ID,
		JobRole:     model.JobRole,
		Date:        model.CreatedAt,
		CompletedAt: model.CompletedAt,
		Score:       model.OverallScore,
		IsCompleted: model.Finished(),
	}
}

// NewInterviewSummarySlice converts sessions into history rows, preserving order.
func NewInterviewSummarySlice(items []models.Interview) []InterviewSummary {
	summaries := make([]InterviewSummary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, NewInterviewSummary(item))
	}

	return summaries
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
