package ai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEvaluationFromFencedReply(t *testing.T) {
	content := "Here is my assessment:\n```json\n{\"score\": 8, \"feedback\": \"Clear and {structured}\", " +
		"\"strengths\": [\"examples\", \" \"], \"improvements\": [\"depth\"]}\n```"

	evaluation, err := parseEvaluation(content)
	require.NoError(t, err)
	require.Equal(t, 8.0, evaluation.Score)
	require.Equal(t, "Clear and {structured}", evaluation.Feedback)
	require.Equal(t, []string{"examples"}, evaluation.Strengths)
	require.Equal(t, []string{"depth"}, evaluation.Improvements)
}

func TestParseEvaluationAcceptsNumericStringAndScalarLists(t *testing.T) {
	evaluation, err := parseEvaluation(`{"score": "6.5", "feedback": "ok", "strengths": "concise"}`)
	require.NoError(t, err)
	require.Equal(t, 6.5, evaluation.Score)
	require.Equal(t, []string{"concise"}, evaluation.Strengths)
	require.Empty(t, evaluation.Improvements)
}

func TestParseEvaluationSkipsObjectsWithoutScore(t *testing.T) {
	content := "Context {} and source {\"ref\": \"rubric\"}.\n```json\n{\"score\": 9, \"feedback\": \"Strong\"}\n```"

	evaluation, err := parseEvaluation(content)
	require.NoError(t, err)
	require.Equal(t, 9.0, evaluation.Score)
	require.Equal(t, "Strong", evaluation.Feedback)
}

func TestParseEvaluationRejectsInvalidReplies(t *testing.T) {
	cases := map[string]string{
		"no json":        "I cannot evaluate this answer.",
		"missing score":  `{"feedback": "fine"}`,
		"score too low":  `{"score": 0, "feedback": "none"}`,
		"score too high": `{"score": 11, "feedback": "wow"}`,
		"text score":     `{"score": "great"}`,
		"broken json":    `{"score": 7, "feedback": "unterminated}`,
	}

	for name, content := range cases {
		_, err := parseEvaluation(content)
		require.ErrorIs(t, err, ErrMalformedResponse, name)
	}
}

func TestParseQuestionsExtractsFirstArray(t *testing.T) {
	content := `Sure! [{"question": "Tell me about yourself", "answer": "Background summary"},
{"question": "Explain goroutines", "answer": "Lightweight threads [managed] by the runtime"}] Good luck.`

	questions, err := parseQuestions(content, 10)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, "Explain goroutines", questions[1].Question)
	require.Equal(t, "Lightweight threads [managed] by the runtime", questions[1].Answer)
}

func TestParseQuestionsSkipsBracketedProse(t *testing.T) {
	content := "See note [1] below.\n```json\n[{\"question\":\"Q1\",\"answer\":\"A1\"}]\n```"

	questions, err := parseQuestions(content, 10)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Equal(t, "Q1", questions[0].Question)
	require.Equal(t, "A1", questions[0].Answer)

	wrapped := `Options {"style": "short"} then {"questions": [{"question": "Q2", "answer": "A2"}]}`
	questions, err = parseQuestions(wrapped, 10)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Equal(t, "Q2", questions[0].Question)
}

func TestParseQuestionsHonoursLimitAndWrappedObject(t *testing.T) {
	content := `{"questions": [{"question": "a", "answer": "1"}, {"question": "b", "answer": "2"}, {"question": "c", "answer": "3"}]}`

	questions, err := parseQuestions(content, 2)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	require.Equal(t, "b", questions[1].Question)
}

func TestParseQuestionsRejectsIncompleteItems(t *testing.T) {
	_, err := parseQuestions(`[{"question": "a", "answer": ""}]`, 10)
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = parseQuestions(`[]`, 10)
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = parseQuestions(`no questions today`, 10)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestNormalizeQuestionCount(t *testing.T) {
	require.Equal(t, DefaultQuestionCount, normalizeQuestionCount(0))
	require.Equal(t, 5, normalizeQuestionCount(5))
	require.Equal(t, MaxQuestionCount, normalizeQuestionCount(50))
}
