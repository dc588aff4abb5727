package ai

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformedResponse reports a model reply that does not contain the expected JSON document.
var ErrMalformedResponse = errors.New("malformed ai response")

// extractJSON returns the first balanced JSON value opened by open in content that accept approves.
// Models often wrap the document in prose or markdown fences, and the prose may contain brackets of its own.
func extractJSON(content string, open, close byte, accept func(string) bool) (string, bool) {
	for start := strings.IndexByte(content, open); start >= 0; {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(content); i++ {
			ch := content[i]
			switch {
			case escaped:
				escaped = false
			case inString && ch == '\\':
				escaped = true
			case ch == '"':
				inString = !inString
			case inString:
			case ch == open:
				depth++
			case ch == close:
				depth--
				if depth == 0 {
					candidate := content[start : i+1]
					if gjson.Valid(candidate) && (accept == nil || accept(candidate)) {
						return candidate, true
					}
					i = len(content)
				}
			}
		}

		next := strings.IndexByte(content[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}

	return "", false
}

func parseEvaluation(content string) (AnswerEvaluation, error) {
	raw, ok := extractJSON(content, '{', '}', hasScore)
	if !ok {
		return AnswerEvaluation{}, fmt.Errorf("%w: no json object found", ErrMalformedResponse)
	}

	doc := gjson.Parse(raw)
	score, err := numericField(doc.Get("score"))
	if err != nil {
		return AnswerEvaluation{}, err
	}
	if score < 1 || score > 10 {
		return AnswerEvaluation{}, fmt.Errorf("%w: score %.2f outside 1..10", ErrMalformedResponse, score)
	}

	return AnswerEvaluation{
		Score:        score,
		Feedback:     strings.TrimSpace(doc.Get("feedback").String()),
		Strengths:    stringList(doc.Get("strengths")),
		Improvements: stringList(doc.Get("improvements")),
	}, nil
}

func parseQuestions(content string, limit int) ([]GeneratedQuestion, error) {
	raw, ok := extractJSON(content, '[', ']', isQuestionList)
	if !ok {
		// a few models wrap the list in an object such as {"questions": [...]}
		if object, found := extractJSON(content, '{', '}', hasQuestionList); found {
			raw, ok = gjson.Get(object, "questions").Raw, true
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: no json array found", ErrMalformedResponse)
	}

	items := gjson.Parse(raw).Array()
	questions := make([]GeneratedQuestion, 0, len(items))
	for idx, item := range items {
		question := strings.TrimSpace(item.Get("question").String())
		answer := strings.TrimSpace(item.Get("answer").String())
		if question == "" || answer == "" {
			return nil, fmt.Errorf("%w: question %d is missing question or answer", ErrMalformedResponse, idx)
		}
		questions = append(questions, GeneratedQuestion{Question: question, Answer: answer})
		if limit > 0 && len(questions) == limit {
			break
		}
	}

	return questions, nil
}

func hasScore(raw string) bool {
	return gjson.Get(raw, "score").Exists()
}

// isQuestionList accepts arrays whose first element looks like a question entry.
func isQuestionList(raw string) bool {
	first := gjson.Get(raw, "0")
	return first.IsObject() && first.Get("question").Exists()
}

func hasQuestionList(raw string) bool {
	return isQuestionList(gjson.Get(raw, "questions").Raw)
}

func numericField(value gjson.Result) (float64, error) {
	switch value.Type {
	case gjson.Number:
		return value.Float(), nil
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value.String()), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: score %q is not numeric", ErrMalformedResponse, value.String())
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("%w: score missing", ErrMalformedResponse)
	}
}

func stringList(value gjson.Result) []string {
	if !value.Exists() || value.Type == gjson.Null {
		return []string{}
	}
	if !value.IsArray() {
		if text := strings.TrimSpace(value.String()); text != "" {
			return []string{text}
		}
		return []string{}
	}

	items := make([]string, 0)
	for _, item := range value.Array() {
		if text := strings.TrimSpace(item.String()); text != "" {
			items = append(items, text)
		}
	}
	return items
}
