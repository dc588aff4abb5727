package ai

import "context"

// AnswerInput contains what the evaluator needs to grade one spoken answer.
type AnswerInput struct {
	Question       string
	Transcript     string
	ExpectedAnswer string
}

// AnswerEvaluation is the structured feedback for one answer. Score is always within 1..10.
type AnswerEvaluation struct {
	Score        float64  `json:"score"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// QuestionRequest describes the interview a question set should be generated for.
type QuestionRequest struct {
	JobRole        string
	JobDescription string
	ResumeText     string
	Count          int
}

// GeneratedQuestion is one question with the reference answer used as evaluation context.
type GeneratedQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Evaluator grades candidate answers.
type Evaluator interface {
	EvaluateAnswer(ctx context.Context, input AnswerInput) (AnswerEvaluation, error)
}

// QuestionGenerator produces interview questions for a job.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error)
}

// CompletionRequest is a single prompt sent to a model provider. JSONObject marks prompts whose reply
// must be a single JSON object, which some providers can enforce.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	JSONObject  bool
}

// Completer is implemented by every model provider. It returns the raw text of the model reply.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Model() string
}
