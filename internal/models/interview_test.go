package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func scorePtr(v float64) *float64 {
	return &v
}

func TestScoreSummaryExcludesUnevaluatedEntries(t *testing.T) {
	interview := Interview{Questions: []InterviewQuestion{
		{Position: 0, EvaluationScore: scorePtr(6)},
		{Position: 1, EvaluationScore: scorePtr(8)},
		{Position: 2},
	}}

	summary := interview.ScoreSummary()
	require.Equal(t, 2, summary.Answered)
	require.InDelta(t, 14.0, summary.Total, 0.0001)
	require.InDelta(t, 7.0, summary.Average, 0.0001)
}

func TestScoreSummaryWithoutEvaluations(t *testing.T) {
	interview := Interview{Questions: []InterviewQuestion{{Position: 0}, {Position: 1}}}

	summary := interview.ScoreSummary()
	require.Zero(t, summary.Answered)
	require.Zero(t, summary.Average)
}

func TestEvaluationAccessor(t *testing.T) {
	require.Nil(t, InterviewQuestion{}.Evaluation())

	question := InterviewQuestion{
		EvaluationScore:     scorePtr(9),
		EvaluationFeedback:  "clear",
		EvaluationStrengths: []string{"structure"},
	}
	evaluation := question.Evaluation()
	require.NotNil(t, evaluation)
	require.Equal(t, 9.0, evaluation.Score)
	require.Equal(t, []string{"structure"}, evaluation.Strengths)
}

func TestFinishedHonoursLegacyCompletedAt(t *testing.T) {
	now := time.Now()
	require.False(t, Interview{}.Finished())
	require.True(t, Interview{CompletedAt: &now}.Finished())
	require.True(t, Interview{IsCompleted: true}.Finished())
}

func TestOwnedBy(t *testing.T) {
	interview := Interview{UserID: 4}
	require.True(t, interview.OwnedBy(4))
	require.False(t, interview.OwnedBy(5))
	require.False(t, Interview{}.OwnedBy(0))
}
