package models

import (
	"time"

	"gorm.io/datatypes"
)

// Interview is one mock interview attempt by one user for one job role.
type Interview struct {
	ID                     string              `gorm:"primaryKey;size:36" json:"id"`
	UserID                 uint                `gorm:"not null;index" json:"user_id"`
	JobRole                string              `gorm:"size:255;not null" json:"job_role"`
	JobDescription         string              `gorm:"type:text;not null" json:"job_description"`
	Questions              []InterviewQuestion `gorm:"foreignKey:InterviewID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"questions"`
	OverallScore           *float64            `json:"overall_score"`
	OverallFeedback        string              `gorm:"type:text" json:"overall_feedback"`
	IsCompleted            bool                `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt            *time.Time          `json:"completed_at"`
	TotalQuestionsAnswered int                 `gorm:"not null;default:0" json:"total_questions_answered"`
	TotalQuestions         int                 `gorm:"not null;default:0" json:"total_questions"`
	CreatedAt              time.Time           `gorm:"index" json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

// InterviewQuestion is one question/answer/evaluation entry, addressed by its position in the interview.
type InterviewQuestion struct {
	ID                     uint                        `gorm:"primaryKey" json:"id"`
	InterviewID            string                      `gorm:"size:36;not null;uniqueIndex:idx_interview_question_position" json:"interview_id"`
	Position               int                         `gorm:"not null;uniqueIndex:idx_interview_question_position" json:"position"`
	OriginalQuestion       string                      `gorm:"type:text;not null" json:"original_question"`
	CorrectAnswer          string                      `gorm:"type:text;not null" json:"correct_answer"`
	CandidateAnswer        *string                     `gorm:"type:text" json:"candidate_answer"`
	AudioTranscript        *string                     `gorm:"type:text" json:"audio_transcript"`
	EvaluationScore        *float64                    `json:"evaluation_score"`
	EvaluationFeedback     string                      `gorm:"type:text" json:"evaluation_feedback"`
	EvaluationStrengths    datatypes.JSONSlice[string] `json:"evaluation_strengths"`
	EvaluationImprovements datatypes.JSONSlice[string] `json:"evaluation_improvements"`
	AnsweredAt             *time.Time                  `json:"answered_at"`
}

// Evaluation is the structured AI feedback for a single answer.
type Evaluation struct {
	Score        float64
	Feedback     string
	Strengths    []string
	Improvements []string
}

// ScoreSummary aggregates evaluated entries of an interview.
type ScoreSummary struct {
	Answered int
	Total    float64
	Average  float64
}

// IsEvaluated reports whether the entry carries a numeric evaluation score.
func (q InterviewQuestion) IsEvaluated() bool {
	return q.EvaluationScore != nil
}

// Evaluation returns the stored evaluation, or nil when the entry has not been evaluated.
func (q InterviewQuestion) Evaluation() *Evaluation {
	if q.EvaluationScore == nil {
		return nil
	}

	return &Evaluation{
		Score:        *q.EvaluationScore,
		Feedback:     q.EvaluationFeedback,
		Strengths:    []string(q.EvaluationStrengths),
		Improvements: []string(q.EvaluationImprovements),
	}
}

// ScoreSummary averages the evaluated entries only; unevaluated entries are excluded, never counted as zero.
func (i Interview) ScoreSummary() ScoreSummary {
	summary := ScoreSummary{}
	for _, question := range i.Questions {
		if !question.IsEvaluated() {
			continue
		}
		summary.Answered++
		summary.Total += *question.EvaluationScore
	}

	if summary.Answered > 0 {
		summary.Average = summary.Total / float64(summary.Answered)
	}

	return summary
}

// Finished reports whether the interview reached its terminal state, including rows that only carry completed_at.
func (i Interview) Finished() bool {
	return i.IsCompleted || i.CompletedAt != nil
}

// OwnedBy reports whether userID created the interview.
func (i Interview) OwnedBy(userID uint) bool {
	return userID != 0 && i.UserID == userID
}
