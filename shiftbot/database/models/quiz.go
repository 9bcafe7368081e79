package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AnswerLabels are the valid correct-answer and selected-answer values.
var AnswerLabels = []string{"A", "B", "C", "D"}

// ValidAnswer reports whether label is one of A, B, C, D.
func ValidAnswer(label string) bool {
	for _, l := range AnswerLabels {
		if l == label {
			return true
		}
	}
	return false
}

type QuizQuestion struct {
	bun.BaseModel `bun:"table:quiz_questions,alias:qq"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Question      string    `bun:"question,notnull" json:"question"`
	OptionA       string    `bun:"option_a,notnull" json:"option_a"`
	OptionB       string    `bun:"option_b,notnull" json:"option_b"`
	OptionC       string    `bun:"option_c,notnull" json:"option_c"`
	OptionD       string    `bun:"option_d,notnull" json:"option_d"`
	CorrectAnswer string    `bun:"correct_answer,notnull" json:"correct_answer"`
	Explanation   string    `bun:"explanation" json:"explanation,omitempty"`
	Active        bool      `bun:"active,notnull,default:true" json:"active"`
	Position      int       `bun:"position,notnull,default:0" json:"position"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Option returns the option text for an answer label, empty when unknown.
func (q *QuizQuestion) Option(label string) string {
	switch label {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// QuizAttempt records one answer by one employee to one question. The
// attempt number is assigned server-side at insert time and forms a gapless
// 1-based sequence per (employee, question) pair.
type QuizAttempt struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:qa"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	EmployeeID     int64     `bun:"employee_id,notnull" json:"employee_id"`
	QuestionID     int64     `bun:"question_id,notnull" json:"question_id"`
	SelectedAnswer string    `bun:"selected_answer,notnull" json:"selected_answer"`
	Correct        bool      `bun:"correct,notnull" json:"correct"`
	AttemptNumber  int       `bun:"attempt_number,notnull" json:"attempt_number"`
	AttemptedAt    time.Time `bun:"attempted_at,notnull,default:current_timestamp" json:"attempted_at"`
}

// QuizSettings is the rotation config: day 1 of the rotation is StartDate in
// Timezone. A single logical row, replaced on update.
type QuizSettings struct {
	bun.BaseModel `bun:"table:quiz_settings,alias:qs"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	StartDate string    `bun:"start_date,notnull" json:"start_date"`
	Timezone  string    `bun:"timezone,notnull" json:"timezone"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
