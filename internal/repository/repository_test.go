package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/mock-interview-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Interview{}, &models.InterviewQuestion{}, &models.Resume{}))
	return db
}

func seedInterview(t *testing.T, repo InterviewRepository, id string, userID uint, createdAt time.Time, questions int) models.Interview {
	t.Helper()
	interview := models.Interview{
		ID:             id,
		UserID:         userID,
		JobRole:        "Backend Engineer",
		JobDescription: "Go services",
		TotalQuestions: questions,
		CreatedAt:      createdAt,
	}
	for i := 0; i < questions; i++ {
		interview.Questions = append(interview.Questions, models.InterviewQuestion{
			Position:         i,
			OriginalQuestion: fmt.Sprintf("question %d", i),
			CorrectAnswer:    fmt.Sprintf("answer %d", i),
		})
	}
	require.NoError(t, repo.Create(context.Background(), &interview))
	return interview
}

func TestUserRepositoryLookup(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := models.User{FullName: "Ada Lovelace", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, &user))
	require.NotZero(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx, " ADA@example.com ")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", byID.FullName)

	_, err = repo.GetByID(ctx, user.ID+100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	duplicate := models.User{FullName: "Other", Email: "ada@example.com", PasswordHash: "hash"}
	require.Error(t, repo.Create(ctx, &duplicate))
}

func TestInterviewRepositoryGetByIDOrdersQuestions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)

	seedInterview(t, repo, "iv-1", 1, time.Now(), 3)

	stored, err := repo.GetByID(context.Background(), "iv-1")
	require.NoError(t, err)
	require.Len(t, stored.Questions, 3)
	for i, question := range stored.Questions {
		require.Equal(t, i, question.Position)
		require.Nil(t, question.CandidateAnswer)
		require.False(t, question.IsEvaluated())
	}

	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInterviewRepositorySaveAnswerOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	ctx := context.Background()
	seedInterview(t, repo, "iv-2", 1, time.Now(), 2)

	first, err := repo.SaveAnswer(ctx, "iv-2", 0, AnswerUpdate{
		Transcript: "first",
		Evaluation: &models.Evaluation{Score: 4, Feedback: "thin", Strengths: []string{"brief"}},
		AnsweredAt: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, "first", *first.CandidateAnswer)
	require.Equal(t, 4.0, *first.EvaluationScore)

	second, err := repo.SaveAnswer(ctx, "iv-2", 0, AnswerUpdate{
		Transcript: "second",
		Evaluation: &models.Evaluation{Score: 9, Feedback: "strong", Improvements: []string{"pace"}},
		AnsweredAt: time.Now(),
	})
	require.NoError(t, err)
	require.Equal(t, "second", *second.CandidateAnswer)
	require.Equal(t, "second", *second.AudioTranscript)
	require.Equal(t, 9.0, *second.EvaluationScore)
	require.Equal(t, "strong", second.EvaluationFeedback)
	require.Empty(t, second.EvaluationStrengths)
	require.Equal(t, []string{"pace"}, []string(second.EvaluationImprovements))

	cleared, err := repo.SaveAnswer(ctx, "iv-2", 0, AnswerUpdate{Transcript: "third", AnsweredAt: time.Now()})
	require.NoError(t, err)
	require.Nil(t, cleared.EvaluationScore)

	stored, err := repo.GetByID(ctx, "iv-2")
	require.NoError(t, err)
	require.Nil(t, stored.Questions[1].CandidateAnswer, "other positions must stay untouched")

	_, err = repo.SaveAnswer(ctx, "iv-2", 5, AnswerUpdate{Transcript: "none", AnsweredAt: time.Now()})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInterviewRepositorySaveAnswerRejectsCompletedInterview(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	ctx := context.Background()
	seedInterview(t, repo, "iv-closed", 1, time.Now(), 2)

	_, err := repo.SaveAnswer(ctx, "iv-closed", 0, AnswerUpdate{
		Transcript: "before",
		Evaluation: &models.Evaluation{Score: 6, Feedback: "fine"},
		AnsweredAt: time.Now(),
	})
	require.NoError(t, err)

	updated, err := repo.MarkCompleted(ctx, "iv-closed", CompletionUpdate{OverallScore: 6, CompletedAt: time.Now(), Answered: 1, Total: 2})
	require.NoError(t, err)
	require.True(t, updated)

	_, err = repo.SaveAnswer(ctx, "iv-closed", 1, AnswerUpdate{Transcript: "late", AnsweredAt: time.Now()})
	require.ErrorIs(t, err, ErrInterviewClosed)
	_, err = repo.SaveAnswer(ctx, "iv-closed", 0, AnswerUpdate{Transcript: "rewrite", AnsweredAt: time.Now()})
	require.ErrorIs(t, err, ErrInterviewClosed)

	stored, err := repo.GetByID(ctx, "iv-closed")
	require.NoError(t, err)
	require.Equal(t, "before", *stored.Questions[0].CandidateAnswer)
	require.Nil(t, stored.Questions[1].CandidateAnswer)
	require.Equal(t, 6.0, *stored.Questions[0].EvaluationScore)

	_, err = repo.SaveAnswer(ctx, "iv-closed", 9, AnswerUpdate{Transcript: "none", AnsweredAt: time.Now()})
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInterviewRepositoryMarkCompletedOnce(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	ctx := context.Background()
	seedInterview(t, repo, "iv-3", 1, time.Now(), 3)

	completedAt := time.Now().UTC()
	updated, err := repo.MarkCompleted(ctx, "iv-3", CompletionUpdate{OverallScore: 7, OverallFeedback: "good", CompletedAt: completedAt, Answered: 2, Total: 3})
	require.NoError(t, err)
	require.True(t, updated)

	updated, err = repo.MarkCompleted(ctx, "iv-3", CompletionUpdate{OverallScore: 2, CompletedAt: time.Now(), Answered: 1, Total: 3})
	require.NoError(t, err)
	require.False(t, updated)

	stored, err := repo.GetByID(ctx, "iv-3")
	require.NoError(t, err)
	require.True(t, stored.IsCompleted)
	require.NotNil(t, stored.CompletedAt)
	require.Equal(t, 7.0, *stored.OverallScore)
	require.Equal(t, "good", stored.OverallFeedback)
	require.Equal(t, 2, stored.TotalQuestionsAnswered)
}

func TestInterviewRepositoryListByUserNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	now := time.Now()

	seedInterview(t, repo, "older", 7, now.Add(-2*time.Hour), 1)
	seedInterview(t, repo, "newer", 7, now, 1)
	seedInterview(t, repo, "foreign", 8, now.Add(time.Hour), 1)

	items, err := repo.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "newer", items[0].ID)
	require.Equal(t, "older", items[1].ID)

	empty, err := repo.ListByUser(context.Background(), 99)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestInterviewRepositoryNormalizeCompletion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInterviewRepository(db)
	ctx := context.Background()

	legacy := seedInterview(t, repo, "legacy", 1, time.Now(), 1)
	seedInterview(t, repo, "open", 1, time.Now(), 1)
	require.NoError(t, db.Model(&models.Interview{}).Where("id = ?", legacy.ID).Update("completed_at", time.Now()).Error)

	affected, err := repo.NormalizeCompletion(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	stored, err := repo.GetByID(ctx, "legacy")
	require.NoError(t, err)
	require.True(t, stored.IsCompleted)

	open, err := repo.GetByID(ctx, "open")
	require.NoError(t, err)
	require.False(t, open.IsCompleted)

	affected, err = repo.NormalizeCompletion(ctx)
	require.NoError(t, err)
	require.Zero(t, affected)
}

func TestResumeRepositoryListAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResumeRepository(db)
	ctx := context.Background()
	now := time.Now()

	older := models.Resume{UserID: 3, JobRole: "SRE", JobDescription: "ops", FileName: "a.pdf", FileURL: "/uploads/a.pdf", CreatedAt: now.Add(-time.Hour)}
	newer := models.Resume{UserID: 3, JobRole: "SWE", JobDescription: "code", FileName: "b.pdf", FileURL: "/uploads/b.pdf", CreatedAt: now}
	require.NoError(t, repo.Create(ctx, &older))
	require.NoError(t, repo.Create(ctx, &newer))

	items, err := repo.ListByUser(ctx, 3)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, newer.ID, items[0].ID)

	require.NoError(t, repo.Delete(ctx, older.ID))
	require.ErrorIs(t, repo.Delete(ctx, older.ID), gorm.ErrRecordNotFound)

	_, err = repo.GetByID(ctx, older.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
