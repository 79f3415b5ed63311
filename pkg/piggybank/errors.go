package piggybank

import "errors"

var (
	ErrPiggyBankNotFound      = errors.New("piggy bank not found")
	ErrPiggyBankAlreadyExists = errors.New("piggy bank with this name already exists")
	ErrInvalidPiggyBank       = errors.New("invalid piggy bank")
	ErrInvalidAmount          = errors.New("deposit amount must be greater than zero")
	ErrGoalCompleted          = errors.New("piggy bank goal already completed")
	ErrDeadlineNotExtended    = errors.New("new target date must be after the current one")
)
