package piggybank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, userId int, piggyBank PiggyBank) (PiggyBank, error)
	Get(ctx context.Context, userId int, id int) (PiggyBank, error)
	List(ctx context.Context, userId int) ([]PiggyBank, error)
	Update(ctx context.Context, userId int, piggyBank PiggyBank) (PiggyBank, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
	// AddDeposit increases the saved amount and records the deposit atomically.
	AddDeposit(ctx context.Context, userId int, id int, deposit Deposit) (PiggyBank, error)
}

// Deposit is a single contribution to a piggy bank.
type Deposit struct {
	Amount        decimal.Decimal
	BalanceSource string
	Date          time.Time
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectColumns = `id, name, savings_goal, monthly_deposit, current_amount, target_date, deposit_day,
	progress_percentage, created_at, last_deposit_date`

const uniqueViolation = "23505"

func (r *RepositoryImpl) Store(ctx context.Context, userId int, piggyBank PiggyBank) (PiggyBank, error) {
	query := `INSERT INTO piggy_banks (user_id, name, savings_goal, monthly_deposit, current_amount, target_date,
				deposit_day, progress_percentage)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING ` + selectColumns
	row := r.db.QueryRow(ctx, query,
		userId,
		piggyBank.Name,
		piggyBank.SavingsGoal,
		piggyBank.MonthlyDeposit,
		piggyBank.CurrentAmount,
		piggyBank.TargetDate,
		nullableDay(piggyBank.DepositDay),
		nullableDecimal(piggyBank.ProgressPercentage),
	)
	stored, err := scanPiggyBank(row)
	if err != nil {
		return PiggyBank{}, mapWriteError(err, "store")
	}
	return stored, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, id int) (PiggyBank, error) {
	query := `SELECT ` + selectColumns + ` FROM piggy_banks WHERE user_id = $1 AND id = $2`
	piggyBank, err := scanPiggyBank(r.db.QueryRow(ctx, query, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return PiggyBank{}, ErrPiggyBankNotFound
	} else if err != nil {
		log.Errorf("failed to get piggy bank %d: %v", id, err)
		return PiggyBank{}, err
	}
	return piggyBank, nil
}

func (r *RepositoryImpl) List(ctx context.Context, userId int) ([]PiggyBank, error) {
	query := `SELECT ` + selectColumns + ` FROM piggy_banks WHERE user_id = $1 ORDER BY target_date, id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to list piggy banks: %v", err)
		return nil, err
	}
	defer rows.Close()

	piggyBanks := make([]PiggyBank, 0)
	for rows.Next() {
		piggyBank, err := scanPiggyBank(rows)
		if err != nil {
			log.Errorf("failed to scan piggy bank: %v", err)
			return nil, err
		}
		piggyBanks = append(piggyBanks, piggyBank)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over piggy banks: %v", err)
		return nil, err
	}
	return piggyBanks, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, piggyBank PiggyBank) (PiggyBank, error) {
	query := `UPDATE piggy_banks SET name = $1, savings_goal = $2, monthly_deposit = $3, current_amount = $4,
				target_date = $5, deposit_day = $6, progress_percentage = $7
				WHERE user_id = $8 AND id = $9 RETURNING ` + selectColumns
	row := r.db.QueryRow(ctx, query,
		piggyBank.Name,
		piggyBank.SavingsGoal,
		piggyBank.MonthlyDeposit,
		piggyBank.CurrentAmount,
		piggyBank.TargetDate,
		nullableDay(piggyBank.DepositDay),
		nullableDecimal(piggyBank.ProgressPercentage),
		userId,
		piggyBank.Id,
	)
	updated, err := scanPiggyBank(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return PiggyBank{}, ErrPiggyBankNotFound
	} else if err != nil {
		return PiggyBank{}, mapWriteError(err, "update")
	}
	return updated, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM piggy_banks WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		log.Errorf("failed to delete piggy bank %d: %v", id, err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) AddDeposit(ctx context.Context, userId int, id int, deposit Deposit) (PiggyBank, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return PiggyBank{}, err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Errorf("failed to rollback deposit transaction: %v", err)
		}
	}()

	query := `UPDATE piggy_banks SET current_amount = current_amount + $1, last_deposit_date = $2
				WHERE user_id = $3 AND id = $4 RETURNING ` + selectColumns
	updated, err := scanPiggyBank(tx.QueryRow(ctx, query, deposit.Amount, deposit.Date, userId, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return PiggyBank{}, ErrPiggyBankNotFound
	} else if err != nil {
		log.Errorf("failed to add deposit to piggy bank %d: %v", id, err)
		return PiggyBank{}, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO piggy_bank_deposits (piggy_bank_id, amount, balance_source, deposited_at) VALUES ($1, $2, $3, $4)`,
		id, deposit.Amount, deposit.BalanceSource, deposit.Date)
	if err != nil {
		log.Errorf("failed to record deposit of piggy bank %d: %v", id, err)
		return PiggyBank{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PiggyBank{}, fmt.Errorf("failed to commit deposit: %w", err)
	}
	return updated, nil
}

func scanPiggyBank(row pgx.Row) (PiggyBank, error) {
	var p PiggyBank
	var depositDay sql.NullInt32
	var progress decimal.NullDecimal
	var lastDeposit sql.NullTime
	err := row.Scan(
		&p.Id,
		&p.Name,
		&p.SavingsGoal,
		&p.MonthlyDeposit,
		&p.CurrentAmount,
		&p.TargetDate,
		&depositDay,
		&progress,
		&p.CreatedAt,
		&lastDeposit,
	)
	if err != nil {
		return PiggyBank{}, err
	}
	if depositDay.Valid {
		p.DepositDay = int(depositDay.Int32)
	}
	if progress.Valid {
		p.ProgressPercentage = &progress.Decimal
	}
	if lastDeposit.Valid {
		p.LastDepositDate = &lastDeposit.Time
	}
	return p, nil
}

func nullableDay(day int) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(day), Valid: day > 0}
}

func nullableDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func mapWriteError(err error, operation string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrPiggyBankAlreadyExists
	}
	log.Errorf("failed to %s piggy bank: %v", operation, err)
	return err
}
