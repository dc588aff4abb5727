package ai

import (
	"fmt"
	"strings"
)

const (
	// DefaultQuestionCount is used when the caller does not ask for a specific number of questions.
	DefaultQuestionCount = 10
	// MaxQuestionCount caps a single generation request.
	MaxQuestionCount = 20
)

func evaluatorSystemPrompt() string {
	return "You are an expert interviewer evaluating a candidate's spoken answer to a job interview question. " +
		"The answer is a speech transcript, so ignore grammar and transcription mistakes. " +
		"Respond only with a JSON object."
}

func buildEvaluationPrompt(input AnswerInput) string {
	expected := strings.TrimSpace(input.ExpectedAnswer)
	if expected == "" {
		expected = "Not provided"
	}

	builder := strings.Builder{}
	builder.WriteString("Question: ")
	builder.WriteString(strings.TrimSpace(input.Question))
	builder.WriteString("\n\nCandidate's Answer: ")
	builder.WriteString(strings.TrimSpace(input.Transcript))
	builder.WriteString("\n\nExpected Answer Elements: ")
	builder.WriteString(expected)
	builder.WriteString("\n\nEvaluate the answer and reply with this JSON object:\n")
	builder.WriteString(`{"score": <number between 1-10>, "feedback": "<overall assessment>", ` +
		`"strengths": ["<strength>", ...], "improvements": ["<area for improvement>", ...]}`)
	return builder.String()
}

func generatorSystemPrompt() string {
	return "You are a senior hiring manager preparing a structured mock interview. Respond only with a JSON array."
}

func normalizeQuestionCount(count int) int {
	if count <= 0 {
		return DefaultQuestionCount
	}
	if count > MaxQuestionCount {
		return MaxQuestionCount
	}
	return count
}

func buildQuestionPrompt(req QuestionRequest) string {
	count := normalizeQuestionCount(req.Count)

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Generate %d interview questions based on the following details.\n\n", count))
	builder.WriteString("Job Position: ")
	builder.WriteString(strings.TrimSpace(req.JobRole))
	builder.WriteString("\nJob Description: ")
	builder.WriteString(strings.TrimSpace(req.JobDescription))
	if resume := strings.TrimSpace(req.ResumeText); resume != "" {
		builder.WriteString("\nResume Text: ")
		builder.WriteString(resume)
	}
	builder.WriteString("\n\nQuestion Guidelines:\n")
	builder.WriteString("- Start with one introduction question\n")
	builder.WriteString("- Ask about projects and technical skills that appear in the resume and match the role\n")
	builder.WriteString("- Include questions specific to the job role and description even if the resume does not cover them\n")
	builder.WriteString("\nReturn a JSON array where every item is ")
	builder.WriteString(`{"question": "<specific question>", "answer": "<detailed answer showing the expected knowledge>"}.`)
	return builder.String()
}
