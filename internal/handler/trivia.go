package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zizouhuweidi/trivia/internal/domain"
)

// TriviaHandler handles the trivia HTTP API
type TriviaHandler struct {
	service domain.TriviaService
}

// NewTriviaHandler creates a new trivia handler
func NewTriviaHandler(service domain.TriviaService) *TriviaHandler {
	return &TriviaHandler{service: service}
}

// Register registers the trivia routes
func (h *TriviaHandler) Register(e *echo.Echo) {
	e.GET("/categories", h.GetCategories)
	e.GET("/categories/:id/questions", h.GetQuestionsByCategory)

	e.GET("/questions", h.GetQuestions)
	e.POST("/questions/new", h.CreateQuestion)
	e.POST("/questions/search", h.SearchQuestions)
	e.DELETE("/questions/:id", h.DeleteQuestion)

	e.POST("/quizzes", h.PlayQuiz)
	e.POST("/quizzes/answer", h.CheckAnswer)
}

// CategoriesResponse lists every category
type CategoriesResponse struct {
	Success    bool              `json:"success"`
	Categories map[string]string `json:"categories"`
}

// QuestionsResponse is one page of questions
type QuestionsResponse struct {
	Success         bool              `json:"success"`
	Questions       []domain.Question `json:"questions"`
	TotalQuestions  int               `json:"totalQuestions"`
	Categories      map[string]string `json:"categories"`
	CurrentCategory *string           `json:"currentCategory"`
}

// QuestionListResponse is a filtered set of questions
type QuestionListResponse struct {
	Success         bool              `json:"success"`
	Questions       []domain.Question `json:"questions"`
	TotalQuestions  int               `json:"totalQuestions"`
	CurrentCategory *string           `json:"currentCategory"`
}

// DeleteQuestionResponse reports a deleted question
type DeleteQuestionResponse struct {
	Success   bool   `json:"success"`
	DeletedID string `json:"deleted_id"`
}

// CreateQuestionResponse reports a created question
type CreateQuestionResponse struct {
	Success    bool `json:"success"`
	QuestionID int  `json:"question_id"`
}

// QuizResponse carries the next quiz question. Question is omitted once
// every candidate has been asked.
type QuizResponse struct {
	Success           bool             `json:"success"`
	Question          *domain.Question `json:"question,omitempty"`
	PreviousQuestions []int            `json:"previousQuestions"`
}

// AnswerResponse grades a quiz answer
type AnswerResponse struct {
	Success bool   `json:"success"`
	Correct bool   `json:"correct"`
	Answer  string `json:"answer"`
}

// GetCategories godoc
// @Summary List categories
// @Description Returns every category keyed by its id
// @Tags categories
// @Produce json
// @Success 200 {object} CategoriesResponse
// @Failure 500 {object} ErrorResponse
// @Router /categories [get]
func (h *TriviaHandler) GetCategories(c echo.Context) error {
	categories, err := h.service.Categories(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CategoriesResponse{
		Success:    true,
		Categories: categories,
	})
}

// GetQuestions godoc
// @Summary List questions
// @Description Returns one page of ten questions
// @Tags questions
// @Produce json
// @Param page query int false "Page number, starting at 1"
// @Success 200 {object} QuestionsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions [get]
func (h *TriviaHandler) GetQuestions(c echo.Context) error {
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return echo.ErrBadRequest
		}
		page = p
	}

	result, err := h.service.Questions(c.Request().Context(), page)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, QuestionsResponse{
		Success:         true,
		Questions:       result.Questions,
		TotalQuestions:  result.TotalQuestions,
		Categories:      result.Categories,
		CurrentCategory: result.CurrentCategory,
	})
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags questions
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} DeleteQuestionResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions/{id} [delete]
func (h *TriviaHandler) DeleteQuestion(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteQuestion(c.Request().Context(), id); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, DeleteQuestionResponse{
		Success:   true,
		DeletedID: strconv.Itoa(id),
	})
}

// CreateQuestion godoc
// @Summary Create a question
// @Description All four fields are required. category and difficulty may be numbers or numeric strings.
// @Tags questions
// @Accept json
// @Produce json
// @Param question body CreateQuestionRequest true "New question"
// @Success 200 {object} CreateQuestionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions/new [post]
func (h *TriviaHandler) CreateQuestion(c echo.Context) error {
	var req CreateQuestionRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	id, err := h.service.CreateQuestion(c.Request().Context(), &domain.Question{
		Question:   req.Question,
		Answer:     req.Answer,
		Category:   int(req.Category),
		Difficulty: int(req.Difficulty),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CreateQuestionResponse{
		Success:    true,
		QuestionID: id,
	})
}

// SearchQuestions godoc
// @Summary Search questions
// @Description Case-insensitive substring match on the question text
// @Tags questions
// @Accept json
// @Produce json
// @Param search body SearchRequest true "Search term"
// @Success 200 {object} QuestionListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /questions/search [post]
func (h *TriviaHandler) SearchQuestions(c echo.Context) error {
	var req SearchRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	result, err := h.service.SearchQuestions(c.Request().Context(), req.SearchTerm)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listResponse(result))
}

// GetQuestionsByCategory godoc
// @Summary List the questions of a category
// @Description totalQuestions counts every question, not only this category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} QuestionListResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /categories/{id}/questions [get]
func (h *TriviaHandler) GetQuestionsByCategory(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.service.QuestionsByCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listResponse(result))
}

// PlayQuiz godoc
// @Summary Next quiz question
// @Description Returns a random question not in previous_questions. quiz_category.id 0 means any category.
// @Tags quizzes
// @Accept json
// @Produce json
// @Param quiz body QuizRequest true "Quiz state"
// @Success 200 {object} QuizResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /quizzes [post]
func (h *TriviaHandler) PlayQuiz(c echo.Context) error {
	var req QuizRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	categoryID, err := req.categoryID()
	if err != nil {
		return err
	}

	round, err := h.service.PlayQuiz(c.Request().Context(), req.previousIDs(), categoryID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, QuizResponse{
		Success:           true,
		Question:          round.Question,
		PreviousQuestions: round.PreviousQuestions,
	})
}

// CheckAnswer godoc
// @Summary Grade a quiz answer
// @Description Case, punctuation, a leading article and small misspellings are tolerated. The expected answer is returned.
// @Tags quizzes
// @Accept json
// @Produce json
// @Param answer body AnswerRequest true "Answer"
// @Success 200 {object} AnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /quizzes/answer [post]
func (h *TriviaHandler) CheckAnswer(c echo.Context) error {
	var req AnswerRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	result, err := h.service.CheckAnswer(c.Request().Context(), int(req.QuestionID), req.Answer)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, AnswerResponse{
		Success: true,
		Correct: result.Correct,
		Answer:  result.Answer,
	})
}

func listResponse(result *domain.QuestionList) QuestionListResponse {
	return QuestionListResponse{
		Success:         true,
		Questions:       result.Questions,
		TotalQuestions:  result.TotalQuestions,
		CurrentCategory: result.CurrentCategory,
	}
}
