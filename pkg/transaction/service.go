package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/finpro/finpro/internal/event_bus"
	"github.com/finpro/finpro/internal/utils"
	"github.com/finpro/finpro/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, t Transaction) (Transaction, error)
	Get(ctx context.Context, id int) (Transaction, error)
	List(ctx context.Context, filter Filter) ([]Transaction, error)
	Update(ctx context.Context, t Transaction) (Transaction, error)
	Delete(ctx context.Context, id int) (bool, error)
	CreateCategory(ctx context.Context, c Category) (Category, error)
	ListCategories(ctx context.Context, t Type) ([]Category, error)
}

type ServiceImpl struct {
	repo Repository
}

// NewService creates the service and, when a bus is given, records piggy bank deposits
// that name a balance source as expenses.
func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	s := &ServiceImpl{repo: repo}
	if eventBus != nil {
		event_bus.SubscribeTyped(eventBus, event_bus.PiggyBankDepositMadeType, s.onDepositMade)
	}
	return s
}

func (s *ServiceImpl) Create(ctx context.Context, t Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	t, err = s.prepare(ctx, userId, t)
	if err != nil {
		return Transaction{}, err
	}
	id, err := s.repo.Store(ctx, userId, t)
	if err != nil {
		return Transaction{}, err
	}
	t.Id = id
	log.Debugf("Created %s transaction %d of %s", t.Type, id, t.Amount)
	return t, nil
}

// prepare validates t and resolves its category, which must exist and match the transaction type.
func (s *ServiceImpl) prepare(ctx context.Context, userId int, t Transaction) (Transaction, error) {
	switch {
	case !t.Type.Valid():
		return Transaction{}, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	case !t.Amount.IsPositive():
		return Transaction{}, ErrInvalidAmount
	case t.Date.IsZero():
		return Transaction{}, fmt.Errorf("%w: date is required", ErrInvalidTransaction)
	}
	t.Date = utils.StartOfDay(t.Date)
	t.Amount = t.Amount.Round(2)
	t.Destination = strings.TrimSpace(t.Destination)
	t.Account = strings.TrimSpace(t.Account)
	if t.Category == nil || t.Category.Id == 0 {
		t.Category = nil
		return t, nil
	}
	category, err := s.repo.GetCategory(ctx, userId, t.Category.Id)
	if err != nil {
		return Transaction{}, err
	}
	if category.Type != t.Type {
		return Transaction{}, fmt.Errorf("%w: category %q is not of type %s", ErrInvalidTransaction, category.Name, t.Type)
	}
	t.Category = &category
	return t, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, filter.Type)
	}
	return s.repo.List(ctx, userId, filter)
}

func (s *ServiceImpl) Update(ctx context.Context, t Transaction) (Transaction, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get current user: %w", err)
	}
	t, err = s.prepare(ctx, userId, t)
	if err != nil {
		return Transaction{}, err
	}
	updated, err := s.repo.Update(ctx, userId, t)
	if err != nil {
		return Transaction{}, err
	}
	if !updated {
		return Transaction{}, ErrTransactionNotFound
	}
	return t, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

func (s *ServiceImpl) CreateCategory(ctx context.Context, c Category) (Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Category{}, fmt.Errorf("failed to get current user: %w", err)
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" || !c.Type.Valid() {
		return Category{}, fmt.Errorf("%w: category needs a name and a known type", ErrInvalidTransaction)
	}
	id, err := s.repo.StoreCategory(ctx, userId, c)
	if err != nil {
		return Category{}, err
	}
	c.Id = id
	return c, nil
}

func (s *ServiceImpl) ListCategories(ctx context.Context, t Type) ([]Category, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListCategories(ctx, userId, t)
}

func (s *ServiceImpl) onDepositMade(e event_bus.EventT[event_bus.PiggyBankDepositMade]) error {
	deposit := e.Data
	if deposit.BalanceSource == "" {
		return nil
	}
	ctx := e.Context()
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	category, err := s.piggyBankCategory(ctx, userId)
	if err != nil {
		return err
	}
	_, err = s.Create(ctx, Transaction{
		Type:        Expense,
		Date:        deposit.Date,
		Amount:      deposit.Amount,
		Category:    &category,
		Destination: deposit.Name,
		Account:     deposit.BalanceSource,
		Observation: fmt.Sprintf("Depósito no cofrinho %s", deposit.Name),
	})
	return err
}

func (s *ServiceImpl) piggyBankCategory(ctx context.Context, userId int) (Category, error) {
	category, err := s.repo.FindCategoryByName(ctx, userId, Expense, PiggyBankCategory)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, ErrCategoryNotFound) {
		return Category{}, err
	}
	id, err := s.repo.StoreCategory(ctx, userId, Category{Type: Expense, Name: PiggyBankCategory})
	if err != nil {
		return Category{}, err
	}
	return Category{Id: id, Type: Expense, Name: PiggyBankCategory}, nil
}
