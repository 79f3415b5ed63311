package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, userId int, t Transaction) (int, error)
	Get(ctx context.Context, userId int, id int) (Transaction, error)
	List(ctx context.Context, userId int, filter Filter) ([]Transaction, error)
	Update(ctx context.Context, userId int, t Transaction) (bool, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
	StoreCategory(ctx context.Context, userId int, c Category) (int, error)
	GetCategory(ctx context.Context, userId int, id int) (Category, error)
	FindCategoryByName(ctx context.Context, userId int, t Type, name string) (Category, error)
	ListCategories(ctx context.Context, userId int, t Type) ([]Category, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectTransaction = `SELECT t.id, t.type, t.date, t.amount, t.destination, t.account, t.observation,
		c.id, c.type, c.name
	FROM transactions t LEFT JOIN categories c ON c.id = t.category_id`

func (r *RepositoryImpl) Store(ctx context.Context, userId int, t Transaction) (int, error) {
	query := `INSERT INTO transactions (user_id, type, date, amount, category_id, destination, account, observation)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query,
		userId, t.Type, t.Date, t.Amount, categoryId(t), t.Destination, t.Account, t.Observation,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to store transaction: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id int) (Transaction, error) {
	query := selectTransaction + ` WHERE t.user_id = $1 AND t.id = $2`
	t, err := scanTransaction(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Transaction{}, ErrTransactionNotFound
	} else if err != nil {
		log.Errorf("failed to get transaction %d: %v", id, err)
		return Transaction{}, err
	}
	return t, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	conditions := []string{"t.user_id = $1"}
	args := []any{userId}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", len(args)))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("t.date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("t.date <= $%d", len(args)))
	}
	query := selectTransaction + ` WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY t.date DESC, t.id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Errorf("failed to list transactions: %v", err)
		return nil, err
	}
	defer rows.Close()

	transactions := make([]Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			log.Errorf("failed to scan transaction: %v", err)
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, t Transaction) (bool, error) {
	query := `UPDATE transactions SET type = $1, date = $2, amount = $3, category_id = $4, destination = $5,
				account = $6, observation = $7 WHERE user_id = $8 AND id = $9`
	result, err := r.db.Exec(ctx, query,
		t.Type, t.Date, t.Amount, categoryId(t), t.Destination, t.Account, t.Observation, userId, t.Id)
	if err != nil {
		log.Errorf("failed to update transaction %d: %v", t.Id, err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		log.Errorf("failed to delete transaction %d: %v", id, err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) StoreCategory(ctx context.Context, userId int, c Category) (int, error) {
	var id int
	err := r.db.QueryRow(ctx, `INSERT INTO categories (user_id, type, name) VALUES ($1, $2, $3) RETURNING id`,
		userId, c.Type, c.Name).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrCategoryExists
		}
		log.Errorf("failed to store category: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetCategory(ctx context.Context, userId int, id int) (Category, error) {
	return r.getCategory(ctx, `SELECT id, type, name FROM categories WHERE user_id = $1 AND id = $2`, userId, id)
}

func (r *RepositoryImpl) FindCategoryByName(ctx context.Context, userId int, t Type, name string) (Category, error) {
	query := `SELECT id, type, name FROM categories WHERE user_id = $1 AND type = $2 AND lower(name) = lower($3)`
	return r.getCategory(ctx, query, userId, t, name)
}

func (r *RepositoryImpl) getCategory(ctx context.Context, query string, args ...any) (Category, error) {
	var c Category
	err := r.db.QueryRow(ctx, query, args...).Scan(&c.Id, &c.Type, &c.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	} else if err != nil {
		log.Errorf("failed to get category: %v", err)
		return Category{}, err
	}
	return c, nil
}

func (r *RepositoryImpl) ListCategories(ctx context.Context, userId int, t Type) ([]Category, error) {
	query := `SELECT id, type, name FROM categories WHERE user_id = $1 AND ($2::text = '' OR type = $2::text) ORDER BY name`
	rows, err := r.db.Query(ctx, query, userId, string(t))
	if err != nil {
		log.Errorf("failed to list categories: %v", err)
		return nil, err
	}
	defer rows.Close()
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Category, error) {
		var c Category
		err := row.Scan(&c.Id, &c.Type, &c.Name)
		return c, err
	})
	if err != nil {
		log.Errorf("failed to scan categories: %v", err)
		return nil, err
	}
	return categories, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	var catId *int
	var catType, catName *string
	err := row.Scan(&t.Id, &t.Type, &t.Date, &t.Amount, &t.Destination, &t.Account, &t.Observation,
		&catId, &catType, &catName)
	if err != nil {
		return Transaction{}, err
	}
	if catId != nil {
		t.Category = &Category{Id: *catId, Type: Type(deref(catType)), Name: deref(catName)}
	}
	return t, nil
}

func categoryId(t Transaction) *int {
	if t.Category == nil || t.Category.Id == 0 {
		return nil
	}
	return &t.Category.Id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
