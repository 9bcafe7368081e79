package models

// LoginRequest authenticates an admin against the shared panel password.
type LoginRequest struct {
	TelegramID string `json:"telegram_id" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type EmployeeCreateRequest struct {
	TelegramID string `json:"telegram_id" validate:"required"`
	Name       string `json:"name" validate:"required,min=2,max=100"`
}

type EmployeeUpdateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
	Role string `json:"role" validate:"omitempty,oneof=employee admin"`
}

type SaleCreateRequest struct {
	EmployeeID  int64   `json:"employee_id" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required,oneof=tip ppv"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string  `json:"description" validate:"max=500"`
}

type SaleUpdateRequest struct {
	Category    string  `json:"category" validate:"required,oneof=tip ppv"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Description string  `json:"description" validate:"max=500"`
}

type QuestionCreateRequest struct {
	Question      string `json:"question" validate:"required,min=3"`
	OptionA       string `json:"option_a" validate:"required"`
	OptionB       string `json:"option_b" validate:"required"`
	OptionC       string `json:"option_c" validate:"required"`
	OptionD       string `json:"option_d" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required,oneof=A B C D"`
	Explanation   string `json:"explanation" validate:"max=1000"`
	Position      int    `json:"position" validate:"gte=0"`
}

type QuestionUpdateRequest struct {
	Question      string `json:"question" validate:"required,min=3"`
	OptionA       string `json:"option_a" validate:"required"`
	OptionB       string `json:"option_b" validate:"required"`
	OptionC       string `json:"option_c" validate:"required"`
	OptionD       string `json:"option_d" validate:"required"`
	CorrectAnswer string `json:"correct_answer" validate:"required,oneof=A B C D"`
	Explanation   string `json:"explanation" validate:"max=1000"`
	Active        bool   `json:"active"`
	Position      int    `json:"position" validate:"gte=0"`
}

type QuizSettingsRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	Timezone  string `json:"timezone" validate:"required"`
}

// AttemptRequest submits one quiz answer on behalf of a telegram account.
type AttemptRequest struct {
	TelegramID string `json:"telegram_id" validate:"required"`
	QuestionID int64  `json:"question_id" validate:"required,gt=0"`
	Answer     string `json:"answer" validate:"required,oneof=A B C D"`
}

// ClockActionRequest identifies the employee clocking in or out.
type ClockActionRequest struct {
	TelegramID string `json:"telegram_id" validate:"required"`
}

// CorrectionRequest rewrites a session's times. ClockOutTime may be omitted
// to reopen the session; stored hours are recomputed either way.
type CorrectionRequest struct {
	ClockInTime  string  `json:"clock_in_time" validate:"required"`
	ClockOutTime *string `json:"clock_out_time" validate:"omitempty"`
}
