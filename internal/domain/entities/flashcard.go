package entities

// Difficulty is an optional author-assigned difficulty of a flashcard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Flashcard is a single question/answer pair of a lesson.
type Flashcard struct {
	ID         string     `json:"id"`                   // unique within a lesson
	Question   string     `json:"question"`             // prompt shown first
	Answer     string     `json:"answer"`               // revealed on demand
	Hint       string     `json:"hint,omitempty"`       // optional hint
	Difficulty Difficulty `json:"difficulty,omitempty"` // optional author difficulty
}

// HasHint reports whether the card carries a hint.
func (c Flashcard) HasHint() bool {
	return c.Hint != ""
}

// Lesson groups flashcards under a course.
type Lesson struct {
	ID         string      `json:"id"`
	CourseID   string      `json:"course_id"`
	Title      string      `json:"title"`
	Flashcards []Flashcard `json:"flashcards"`
}
