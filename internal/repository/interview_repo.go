package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/mock-interview-api/internal/models"
)

// ErrInterviewClosed is returned by SaveAnswer when the interview was completed before the write landed.
var ErrInterviewClosed = errors.New("interview already completed")

// AnswerUpdate overwrites the answer fields of one entry. A nil Evaluation clears any previous evaluation.
type AnswerUpdate struct {
	Transcript string
	Evaluation *models.Evaluation
	AnsweredAt time.Time
}

// CompletionUpdate carries the values locked in when an interview is completed.
type CompletionUpdate struct {
	OverallScore    float64
	OverallFeedback string
	CompletedAt     time.Time
	Answered        int
	Total           int
}

// InterviewRepository persists interview sessions and their question entries.
type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	GetByID(ctx context.Context, id string) (models.Interview, error)
	SaveAnswer(ctx context.Context, interviewID string, position int, update AnswerUpdate) (models.InterviewQuestion, error)
	MarkCompleted(ctx context.Context, interviewID string, update CompletionUpdate) (bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Interview, error)
	NormalizeCompletion(ctx context.Context) (int64, error)
}

type interviewRepository struct {
	db *gorm.DB
}

// NewInterviewRepository constructs a repository backed by GORM.
func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	return r.db.WithContext(ctx).Create(interview).Error
}

func (r *interviewRepository) GetByID(ctx context.Context, id string) (models.Interview, error) {
	var interview models.Interview
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&interview, "id = ?", id).Error
	return interview, err
}

// SaveAnswer updates a single (interview_id, position) row so writes to other positions are never touched.
// The write only applies while the parent interview is still open.
func (r *interviewRepository) SaveAnswer(ctx context.Context, interviewID string, position int, update AnswerUpdate) (models.InterviewQuestion, error) {
	values := map[string]interface{}{
		"candidate_answer":        update.Transcript,
		"audio_transcript":        update.Transcript,
		"answered_at":             update.AnsweredAt,
		"evaluation_score":        nil,
		"evaluation_feedback":     "",
		"evaluation_strengths":    jsonSlice(nil),
		"evaluation_improvements": jsonSlice(nil),
	}
	if update.Evaluation != nil {
		score := update.Evaluation.Score
		values["evaluation_score"] = &score
		values["evaluation_feedback"] = update.Evaluation.Feedback
		values["evaluation_strengths"] = jsonSlice(update.Evaluation.Strengths)
		values["evaluation_improvements"] = jsonSlice(update.Evaluation.Improvements)
	}

	var question models.InterviewQuestion
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		open := tx.Model(&models.Interview{}).
			Select("id").
			Where("is_completed = ? AND completed_at IS NULL", false)
		result := tx.Model(&models.InterviewQuestion{}).
			Where("interview_id = ? AND position = ? AND interview_id IN (?)", interviewID, position, open).
			Updates(values)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.InterviewQuestion{}).
				Where("interview_id = ? AND position = ?", interviewID, position).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrInterviewClosed
			}
			return gorm.ErrRecordNotFound
		}

		return tx.Where("interview_id = ? AND position = ?", interviewID, position).First(&question).Error
	})

	return question, err
}

// MarkCompleted sets the completion fields only while the interview is still open. It reports false when
// another request completed the interview first.
func (r *interviewRepository) MarkCompleted(ctx context.Context, interviewID string, update CompletionUpdate) (bool, error) {
	score := update.OverallScore
	completedAt := update.CompletedAt

	result := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ? AND is_completed = ? AND completed_at IS NULL", interviewID, false).
		Updates(map[string]interface{}{
			"overall_score":            &score,
			"overall_feedback":         update.OverallFeedback,
			"completed_at":             &completedAt,
			"is_completed":             true,
			"total_questions_answered": update.Answered,
			"total_questions":          update.Total,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *interviewRepository) ListByUser(ctx context.Context, userID uint) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&interviews).Error
	return interviews, err
}

// NormalizeCompletion repairs legacy rows that carry completed_at without the completion flag.
func (r *interviewRepository) NormalizeCompletion(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("completed_at IS NOT NULL AND is_completed = ?", false).
		Update("is_completed", true)
	return result.RowsAffected, result.Error
}
