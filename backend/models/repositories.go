package models

import (
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
)

// Repositories bundles every repository the handlers touch.
type Repositories struct {
	Employee    repositories.EmployeeRepository
	ClockIn     repositories.ClockInRepository
	Sale        repositories.SaleRepository
	Quiz        repositories.QuizRepository
	QuizAttempt repositories.QuizAttemptRepository
}

func NewRepositories(
	employee repositories.EmployeeRepository,
	clockIn repositories.ClockInRepository,
	sale repositories.SaleRepository,
	quiz repositories.QuizRepository,
	quizAttempt repositories.QuizAttemptRepository,
) *Repositories {
	return &Repositories{
		Employee:    employee,
		ClockIn:     clockIn,
		Sale:        sale,
		Quiz:        quiz,
		QuizAttempt: quizAttempt,
	}
}
