package transaction

import (
	"context"
	"slices"
	"strings"
)

type RepositoryStub struct {
	nextId       int
	transactions map[int]Transaction
	categories   map[int]Category
	// ListErr makes List fail, to exercise degraded paths of consumers.
	ListErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		transactions: map[int]Transaction{},
		categories:   map[int]Category{},
	}
}

func (s *RepositoryStub) Store(ctx context.Context, userId int, t Transaction) (int, error) {
	s.nextId++
	t.Id = s.nextId
	s.transactions[t.Id] = t
	return t.Id, nil
}

func (s *RepositoryStub) Get(ctx context.Context, userId int, id int) (Transaction, error) {
	t, ok := s.transactions[id]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	return t, nil
}

func (s *RepositoryStub) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	result := make([]Transaction, 0)
	for _, t := range s.transactions {
		if filter.matches(t) {
			result = append(result, t)
		}
	}
	slices.SortFunc(result, func(a, b Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return b.Id - a.Id
	})
	return result, nil
}

func (s *RepositoryStub) Update(ctx context.Context, userId int, t Transaction) (bool, error) {
	if _, ok := s.transactions[t.Id]; !ok {
		return false, nil
	}
	s.transactions[t.Id] = t
	return true, nil
}

func (s *RepositoryStub) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.transactions[id]; !ok {
		return false, nil
	}
	delete(s.transactions, id)
	return true, nil
}

func (s *RepositoryStub) StoreCategory(ctx context.Context, userId int, c Category) (int, error) {
	if _, err := s.FindCategoryByName(ctx, userId, c.Type, c.Name); err == nil {
		return 0, ErrCategoryExists
	}
	s.nextId++
	c.Id = s.nextId
	s.categories[c.Id] = c
	return c.Id, nil
}

func (s *RepositoryStub) GetCategory(ctx context.Context, userId int, id int) (Category, error) {
	c, ok := s.categories[id]
	if !ok {
		return Category{}, ErrCategoryNotFound
	}
	return c, nil
}

func (s *RepositoryStub) FindCategoryByName(ctx context.Context, userId int, t Type, name string) (Category, error) {
	for _, c := range s.categories {
		if c.Type == t && strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return Category{}, ErrCategoryNotFound
}

func (s *RepositoryStub) ListCategories(ctx context.Context, userId int, t Type) ([]Category, error) {
	result := make([]Category, 0)
	for _, c := range s.categories {
		if t == "" || c.Type == t {
			result = append(result, c)
		}
	}
	slices.SortFunc(result, func(a, b Category) int { return strings.Compare(a.Name, b.Name) })
	return result, nil
}
