package handler

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// flexInt decodes from a JSON number or a numeric string
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}

	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		*n = flexInt(v)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("%s is not an integer", data)
	}
	*n = flexInt(f)
	return nil
}

// CreateQuestionRequest is the body of POST /questions/new
type CreateQuestionRequest struct {
	Question   string  `json:"question" validate:"required"`
	Answer     string  `json:"answer" validate:"required"`
	Category   flexInt `json:"category" validate:"required"`
	Difficulty flexInt `json:"difficulty" validate:"required"`
}

// SearchRequest is the body of POST /questions/search. An empty
// searchTerm matches every question; a missing one is rejected.
type SearchRequest struct {
	SearchTerm *string `json:"searchTerm" validate:"required"`
}

// QuizCategory selects the quiz category. ID 0 means any category.
type QuizCategory struct {
	ID   *flexInt `json:"id"`
	Type string   `json:"type"`
}

// QuizRequest is the body of POST /quizzes
type QuizRequest struct {
	PreviousQuestions []flexInt     `json:"previous_questions"`
	QuizCategory      *QuizCategory `json:"quiz_category"`
}

// AnswerRequest is the body of POST /quizzes/answer
type AnswerRequest struct {
	QuestionID flexInt `json:"question_id" validate:"required"`
	Answer     string  `json:"answer"`
}

func (r *QuizRequest) categoryID() (int, error) {
	if r.QuizCategory == nil || r.QuizCategory.ID == nil {
		return 0, domain.ErrMissingQuizCategory
	}
	return int(*r.QuizCategory.ID), nil
}

func (r *QuizRequest) previousIDs() []int {
	ids := make([]int, len(r.PreviousQuestions))
	for i, id := range r.PreviousQuestions {
		ids[i] = int(id)
	}
	return ids
}

// bindJSON decodes and validates the request body regardless of its
// Content-Type.
func bindJSON(c echo.Context, req interface{}) error {
	if err := c.Echo().JSONSerializer.Deserialize(c, req); err != nil {
		return err
	}
	return c.Validate(req)
}

// pathID parses an integer path parameter. Anything else does not name a
// resource.
func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil {
		return 0, echo.ErrNotFound
	}
	return int(id), nil
}
