package piggybank

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/finpro/finpro/internal/event_bus"
	"github.com/finpro/finpro/internal/utils"
	"github.com/finpro/finpro/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const minNameLength = 3

type Service interface {
	Create(ctx context.Context, piggyBank PiggyBank) (PiggyBank, error)
	Get(ctx context.Context, id int) (PiggyBank, error)
	List(ctx context.Context, filter ListFilter) ([]Progress, error)
	Update(ctx context.Context, piggyBank PiggyBank) (PiggyBank, error)
	Delete(ctx context.Context, id int) (bool, error)
	Deposit(ctx context.Context, id int, amount decimal.Decimal, balanceSource string) (DepositResult, error)
	ExtendDeadline(ctx context.Context, id int, newDate time.Time) (PiggyBank, error)
	GetProgress(ctx context.Context, id int) (Progress, error)
	Reminders(ctx context.Context) ([]Progress, error)
	Summary(ctx context.Context) Summary
}

// ListFilter narrows List. Zero values match everything; Search matches the name
// case- and accent-insensitively.
type ListFilter struct {
	Status Status
	Search string
}

type DepositResult struct {
	PiggyBank PiggyBank
	Amount    decimal.Decimal
	Completed bool
	Message   string
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
	clock    utils.Clock
	engine   StatusEngine
}

func NewService(repo Repository, eventBus *event_bus.EventBus, clock utils.Clock, engine StatusEngine) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus, clock: clock, engine: engine}
}

func (s *ServiceImpl) Create(ctx context.Context, piggyBank PiggyBank) (PiggyBank, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return PiggyBank{}, fmt.Errorf("failed to get current user: %w", err)
	}
	piggyBank.Name = strings.TrimSpace(piggyBank.Name)
	if err := s.validate(piggyBank); err != nil {
		return PiggyBank{}, err
	}
	if utils.StartOfDay(piggyBank.TargetDate).Before(utils.StartOfDay(s.clock.Now())) {
		return PiggyBank{}, fmt.Errorf("%w: target date must not be in the past", ErrInvalidPiggyBank)
	}
	log.Debugf("Creating piggy bank %q for user %d", piggyBank.Name, userId)
	return s.repo.Store(ctx, userId, piggyBank)
}

func (s *ServiceImpl) validate(piggyBank PiggyBank) error {
	switch {
	case utf8.RuneCountInString(piggyBank.Name) < minNameLength:
		return fmt.Errorf("%w: name must have at least %d characters", ErrInvalidPiggyBank, minNameLength)
	case !piggyBank.SavingsGoal.IsPositive():
		return fmt.Errorf("%w: savings goal must be greater than zero", ErrInvalidPiggyBank)
	case piggyBank.MonthlyDeposit.IsNegative():
		return fmt.Errorf("%w: monthly deposit must not be negative", ErrInvalidPiggyBank)
	case piggyBank.CurrentAmount.IsNegative():
		return fmt.Errorf("%w: current amount must not be negative", ErrInvalidPiggyBank)
	case piggyBank.TargetDate.IsZero():
		return fmt.Errorf("%w: target date is required", ErrInvalidPiggyBank)
	case piggyBank.DepositDay < 0 || piggyBank.DepositDay > 31:
		return fmt.Errorf("%w: deposit day must be between 1 and 31", ErrInvalidPiggyBank)
	}
	return nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (PiggyBank, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return PiggyBank{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) List(ctx context.Context, filter ListFilter) ([]Progress, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	piggyBanks, err := s.repo.List(ctx, userId)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	search := foldText(filter.Search)
	result := make([]Progress, 0, len(piggyBanks))
	for _, p := range piggyBanks {
		progress := s.engine.Progress(p, now)
		if filter.Status != "" && progress.Status != filter.Status {
			continue
		}
		if search != "" && !strings.Contains(foldText(p.Name), search) {
			continue
		}
		result = append(result, progress)
	}
	return result, nil
}

// Update replaces the editable fields. An overdue goal can only be saved with a later target date.
func (s *ServiceImpl) Update(ctx context.Context, piggyBank PiggyBank) (PiggyBank, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return PiggyBank{}, fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.Get(ctx, userId, piggyBank.Id)
	if err != nil {
		return PiggyBank{}, err
	}
	piggyBank.Name = strings.TrimSpace(piggyBank.Name)
	if err := s.validate(piggyBank); err != nil {
		return PiggyBank{}, err
	}
	if s.engine.DeriveStatus(existing.Goal(), s.clock.Now()) == Overdue && !piggyBank.TargetDate.After(existing.TargetDate) {
		return PiggyBank{}, ErrDeadlineNotExtended
	}
	return s.repo.Update(ctx, userId, piggyBank)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

// Deposit adds amount to the saved value and publishes a deposit event.
func (s *ServiceImpl) Deposit(ctx context.Context, id int, amount decimal.Decimal, balanceSource string) (DepositResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return DepositResult{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if !amount.IsPositive() {
		return DepositResult{}, ErrInvalidAmount
	}
	existing, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return DepositResult{}, err
	}
	now := s.clock.Now()
	if s.engine.DeriveStatus(existing.Goal(), now) == Completed {
		return DepositResult{}, ErrGoalCompleted
	}

	updated, err := s.repo.AddDeposit(ctx, userId, id, Deposit{
		Amount:        amount,
		BalanceSource: strings.TrimSpace(balanceSource),
		Date:          now,
	})
	if err != nil {
		return DepositResult{}, err
	}
	completed := isCompleted(updated.Goal())
	log.Debugf("Deposited %s into piggy bank %d (completed: %t)", amount, id, completed)

	if s.eventBus != nil {
		err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.PiggyBankDepositMadeType, event_bus.PiggyBankDepositMade{
			PiggyBankId:   updated.Id,
			Name:          updated.Name,
			Amount:        amount,
			BalanceSource: strings.TrimSpace(balanceSource),
			Date:          now,
			Completed:     completed,
		}))
		if err != nil {
			log.Warnf("deposit event of piggy bank %d not fully handled: %v", id, err)
		}
	}

	message := "Depósito realizado com sucesso!"
	if completed {
		message = "Parabéns! Meta do cofrinho atingida!"
	}
	return DepositResult{PiggyBank: updated, Amount: amount, Completed: completed, Message: message}, nil
}

func (s *ServiceImpl) ExtendDeadline(ctx context.Context, id int, newDate time.Time) (PiggyBank, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return PiggyBank{}, fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return PiggyBank{}, err
	}
	if !utils.StartOfDay(newDate).After(utils.StartOfDay(existing.TargetDate)) {
		return PiggyBank{}, ErrDeadlineNotExtended
	}
	existing.TargetDate = newDate
	return s.repo.Update(ctx, userId, existing)
}

func (s *ServiceImpl) GetProgress(ctx context.Context, id int) (Progress, error) {
	piggyBank, err := s.Get(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	return s.engine.Progress(piggyBank, s.clock.Now()), nil
}

// Reminders lists unfinished goals whose deposit day is today.
func (s *ServiceImpl) Reminders(ctx context.Context) ([]Progress, error) {
	all, err := s.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	today := s.clock.Now()
	reminders := make([]Progress, 0)
	for _, p := range all {
		if p.Status != Completed && p.PiggyBank.IsDepositDay(today) {
			reminders = append(reminders, p)
		}
	}
	return reminders, nil
}

// Summary never fails; when goals cannot be loaded the empty summary is returned.
func (s *ServiceImpl) Summary(ctx context.Context) Summary {
	all, err := s.List(ctx, ListFilter{})
	if err != nil {
		log.Warnf("failed to load piggy banks for summary, using empty summary: %v", err)
		return EmptySummary()
	}
	records := make([]Record, 0, len(all))
	for _, p := range all {
		records = append(records, p.PiggyBank.record(p.Status))
	}
	return s.engine.Summarize(records, s.clock.Now())
}
