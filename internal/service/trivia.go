package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/zizouhuweidi/trivia/internal/domain"
	"github.com/zizouhuweidi/trivia/internal/logging"
	"github.com/zizouhuweidi/trivia/internal/metrics"
	"github.com/zizouhuweidi/trivia/internal/validation"
)

// DefaultQuestionsPerPage is the page size of the question listing
const DefaultQuestionsPerPage = 10

// CategoryCache caches the id->type category mapping
type CategoryCache interface {
	GetCategories(ctx context.Context) (map[string]string, bool)
	SetCategories(ctx context.Context, categories map[string]string)
}

// EventPublisher is notified after a question change is committed
type EventPublisher interface {
	PublishQuestion(eventType string, question domain.Question)
}

// TriviaService implements the domain.TriviaService interface
type TriviaService struct {
	store   domain.Store
	cache   CategoryCache
	events  EventPublisher
	perPage int
	intN    func(n int) int
}

var _ domain.TriviaService = (*TriviaService)(nil)

// Option configures a TriviaService
type Option func(*TriviaService)

// WithCategoryCache caches the category mapping
func WithCategoryCache(cache CategoryCache) Option {
	return func(s *TriviaService) { s.cache = cache }
}

// WithEventPublisher publishes question create and delete events
func WithEventPublisher(events EventPublisher) Option {
	return func(s *TriviaService) { s.events = events }
}

// WithQuestionsPerPage sets the listing page size
func WithQuestionsPerPage(n int) Option {
	return func(s *TriviaService) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// WithRandom replaces the quiz question picker. intN must return a value in [0, n).
func WithRandom(intN func(n int) int) Option {
	return func(s *TriviaService) { s.intN = intN }
}

// NewTriviaService creates a new trivia service
func NewTriviaService(store domain.Store, opts ...Option) *TriviaService {
	s := &TriviaService{
		store:   store,
		perPage: DefaultQuestionsPerPage,
		intN:    rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories returns every category keyed by its stringified id
func (s *TriviaService) Categories(ctx context.Context) (map[string]string, error) {
	if s.cache != nil {
		if categories, ok := s.cache.GetCategories(ctx); ok {
			return categories, nil
		}
	}

	list, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, err
	}
	categories := domain.CategoryMap(list)

	if s.cache != nil {
		s.cache.SetCategories(ctx, categories)
	}
	return categories, nil
}

// Questions returns one page of questions. A page past the end is empty.
func (s *TriviaService) Questions(ctx context.Context, page int) (*domain.QuestionPage, error) {
	if page < 1 {
		return nil, domain.ErrInvalidPage
	}

	// ids are int32, so no row lives past that offset
	questions := []domain.Question{}
	if page-1 <= math.MaxInt32/s.perPage {
		var err error
		questions, err = s.store.Questions().List(ctx, s.perPage, (page-1)*s.perPage)
		if err != nil {
			return nil, err
		}
	}

	total, err := s.store.Questions().Count(ctx)
	if err != nil {
		return nil, err
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.QuestionPage{
		Questions:      questions,
		TotalQuestions: total,
		Categories:     categories,
	}, nil
}

// DeleteQuestion deletes the question with the given id
func (s *TriviaService) DeleteQuestion(ctx context.Context, id int) error {
	var deleted *domain.Question
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		question, err := tx.Questions().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Questions().Delete(ctx, id); err != nil {
			return err
		}
		deleted = question
		return nil
	})
	if err != nil {
		return err
	}

	metrics.QuestionMutations.WithLabelValues("delete").Inc()
	logging.Info().Int("question_id", id).Msg("question deleted")
	s.publish(domain.EventQuestionDeleted, *deleted)
	return nil
}

// CreateQuestion stores a new question and returns its id
func (s *TriviaService) CreateQuestion(ctx context.Context, question *domain.Question) (int, error) {
	if err := question.Validate(); err != nil {
		return 0, err
	}

	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		return tx.Questions().Create(ctx, question)
	})
	if err != nil {
		return 0, err
	}

	metrics.QuestionMutations.WithLabelValues("create").Inc()
	logging.Info().Int("question_id", question.ID).Int("category", question.Category).Msg("question created")
	s.publish(domain.EventQuestionCreated, *question)
	return question.ID, nil
}

// SearchQuestions returns the questions containing term, ignoring case. A nil
// term is an error; an empty term matches everything.
func (s *TriviaService) SearchQuestions(ctx context.Context, term *string) (*domain.QuestionList, error) {
	if term == nil {
		return nil, domain.ErrMissingSearchTerm
	}

	questions, err := s.store.Questions().Search(ctx, *term)
	if err != nil {
		return nil, err
	}

	return &domain.QuestionList{
		Questions:      questions,
		TotalQuestions: len(questions),
	}, nil
}

// QuestionsByCategory returns the questions of one category. TotalQuestions
// counts every question, not only the matches.
func (s *TriviaService) QuestionsByCategory(ctx context.Context, categoryID int) (*domain.QuestionList, error) {
	category, err := s.store.Categories().GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	questions, err := s.store.Questions().ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	total, err := s.store.Questions().Count(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.QuestionList{
		Questions:       questions,
		TotalQuestions:  total,
		CurrentCategory: &category.Type,
	}, nil
}

// PlayQuiz picks a random question that is not in previous
func (s *TriviaService) PlayQuiz(ctx context.Context, previous []int, categoryID int) (*domain.QuizRound, error) {
	if previous == nil {
		previous = []int{}
	}

	var (
		candidates []domain.Question
		err        error
	)
	if categoryID == 0 {
		candidates, err = s.store.Questions().ListAll(ctx)
	} else {
		candidates, err = s.store.Questions().ListByCategory(ctx, categoryID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz candidates: %w", err)
	}

	asked := make(map[int]struct{}, len(previous))
	for _, id := range previous {
		asked[id] = struct{}{}
	}

	remaining := candidates[:0:0]
	for _, q := range candidates {
		if _, ok := asked[q.ID]; !ok {
			remaining = append(remaining, q)
		}
	}

	round := &domain.QuizRound{PreviousQuestions: previous}
	if len(remaining) == 0 {
		metrics.QuizQuestionsServed.WithLabelValues("exhausted").Inc()
		return round, nil
	}

	picked := remaining[s.intN(len(remaining))]
	round.Question = &picked
	metrics.QuizQuestionsServed.WithLabelValues("served").Inc()
	return round, nil
}

// CheckAnswer grades answer against the stored answer of a question
func (s *TriviaService) CheckAnswer(ctx context.Context, questionID int, answer string) (*domain.AnswerResult, error) {
	question, err := s.store.Questions().GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}

	result := &domain.AnswerResult{
		Correct: validation.MatchAnswer(question.Answer, answer),
		Answer:  question.Answer,
	}
	if result.Correct {
		metrics.QuizAnswersChecked.WithLabelValues("correct").Inc()
	} else {
		metrics.QuizAnswersChecked.WithLabelValues("incorrect").Inc()
	}
	return result, nil
}

func (s *TriviaService) publish(eventType string, question domain.Question) {
	if s.events != nil {
		s.events.PublishQuestion(eventType, question)
	}
}
