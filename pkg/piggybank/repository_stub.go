package piggybank

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
)

type RepositoryStub struct {
	nextId     int
	piggyBanks map[int]PiggyBank
	deposits   map[int][]Deposit
	// ListErr makes List fail, to exercise degraded paths.
	ListErr error
	now     func() time.Time
}

func NewRepositoryStub(now func() time.Time) *RepositoryStub {
	return &RepositoryStub{
		piggyBanks: map[int]PiggyBank{},
		deposits:   map[int][]Deposit{},
		now:        now,
	}
}

func (s *RepositoryStub) Store(ctx context.Context, userId int, piggyBank PiggyBank) (PiggyBank, error) {
	if s.nameTaken(piggyBank.Name, 0) {
		return PiggyBank{}, ErrPiggyBankAlreadyExists
	}
	s.nextId++
	piggyBank.Id = s.nextId
	if piggyBank.CreatedAt.IsZero() {
		piggyBank.CreatedAt = s.now()
	}
	s.piggyBanks[piggyBank.Id] = piggyBank
	return piggyBank, nil
}

func (s *RepositoryStub) Get(ctx context.Context, userId int, id int) (PiggyBank, error) {
	piggyBank, ok := s.piggyBanks[id]
	if !ok {
		return PiggyBank{}, ErrPiggyBankNotFound
	}
	return piggyBank, nil
}

func (s *RepositoryStub) List(ctx context.Context, userId int) ([]PiggyBank, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	piggyBanks := make([]PiggyBank, 0, len(s.piggyBanks))
	for _, p := range s.piggyBanks {
		piggyBanks = append(piggyBanks, p)
	}
	slices.SortFunc(piggyBanks, func(a, b PiggyBank) int {
		if c := a.TargetDate.Compare(b.TargetDate); c != 0 {
			return c
		}
		return a.Id - b.Id
	})
	return piggyBanks, nil
}

func (s *RepositoryStub) Update(ctx context.Context, userId int, piggyBank PiggyBank) (PiggyBank, error) {
	existing, ok := s.piggyBanks[piggyBank.Id]
	if !ok {
		return PiggyBank{}, ErrPiggyBankNotFound
	}
	if s.nameTaken(piggyBank.Name, piggyBank.Id) {
		return PiggyBank{}, ErrPiggyBankAlreadyExists
	}
	piggyBank.CreatedAt = existing.CreatedAt
	piggyBank.LastDepositDate = existing.LastDepositDate
	s.piggyBanks[piggyBank.Id] = piggyBank
	return piggyBank, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.piggyBanks[id]; !ok {
		return false, nil
	}
	delete(s.piggyBanks, id)
	delete(s.deposits, id)
	return true, nil
}

func (s *RepositoryStub) AddDeposit(ctx context.Context, userId int, id int, deposit Deposit) (PiggyBank, error) {
	piggyBank, ok := s.piggyBanks[id]
	if !ok {
		return PiggyBank{}, ErrPiggyBankNotFound
	}
	if !deposit.Amount.IsPositive() {
		return PiggyBank{}, errors.New("amount must be positive")
	}
	piggyBank.CurrentAmount = piggyBank.CurrentAmount.Add(deposit.Amount)
	date := deposit.Date
	piggyBank.LastDepositDate = &date
	s.piggyBanks[id] = piggyBank
	s.deposits[id] = append(s.deposits[id], deposit)
	return piggyBank, nil
}

func (s *RepositoryStub) Deposits(id int) []Deposit {
	return s.deposits[id]
}

func (s *RepositoryStub) nameTaken(name string, exceptId int) bool {
	for id, p := range s.piggyBanks {
		if id != exceptId && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}
