package domain

import "context"

// QuestionPage is one page of the question listing
type QuestionPage struct {
	Questions       []Question
	TotalQuestions  int
	Categories      map[string]string
	CurrentCategory *string
}

// QuestionList is a filtered set of questions
type QuestionList struct {
	Questions       []Question
	TotalQuestions  int
	CurrentCategory *string
}

// QuizRound is the outcome of asking for the next quiz question. Question is
// nil once every candidate has been asked.
type QuizRound struct {
	Question          *Question
	PreviousQuestions []int
}

// AnswerResult grades one quiz answer. Answer is the expected answer.
type AnswerResult struct {
	Correct bool
	Answer  string
}

// TriviaService defines the operations exposed by the trivia API
type TriviaService interface {
	Categories(ctx context.Context) (map[string]string, error)
	Questions(ctx context.Context, page int) (*QuestionPage, error)
	DeleteQuestion(ctx context.Context, id int) error
	CreateQuestion(ctx context.Context, question *Question) (int, error)
	SearchQuestions(ctx context.Context, term *string) (*QuestionList, error)
	QuestionsByCategory(ctx context.Context, categoryID int) (*QuestionList, error)

	// PlayQuiz picks a random question not in previous. categoryID 0 means
	// any category.
	PlayQuiz(ctx context.Context, previous []int, categoryID int) (*QuizRound, error)

	// CheckAnswer grades a free-text answer to a question, tolerating case,
	// punctuation, a leading article and small misspellings.
	CheckAnswer(ctx context.Context, questionID int, answer string) (*AnswerResult, error)
}
