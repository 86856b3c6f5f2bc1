package sqlite

import (
	"context"
	"fmt"

	"converter-service/internal/entity"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

const (
	createRatesTable = `CREATE TABLE IF NOT EXISTS rates (
    currency TEXT PRIMARY KEY,
    rate     REAL NOT NULL
)`
	createCurrenciesTable = `CREATE TABLE IF NOT EXISTS currencies (
    currency      TEXT PRIMARY KEY,
    currency_name TEXT NOT NULL
)`
)

type rateRow struct {
	Currency string  `db:"currency"`
	Rate     float64 `db:"rate"`
}

type currencyRow struct {
	Currency string `db:"currency"`
	Name     string `db:"currency_name"`
}

type SQLiteRepo struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

func NewSQLiteRepo(db *sqlx.DB, logger *logrus.Logger) *SQLiteRepo {
	return &SQLiteRepo{
		db:     db,
		logger: logger,
	}
}

func (r *SQLiteRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createRatesTable, createCurrenciesTable} {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.logger.WithError(err).Error("Failed to create table")
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (r *SQLiteRepo) UpsertRates(ctx context.Context, rates entity.RateTable) error {
	inserts := make([]sq.InsertBuilder, 0, len(rates))
	for _, code := range rates.Codes() {
		inserts = append(inserts, builder.Insert("rates").
			Columns("currency", "rate").
			Values(code, rates[code]).
			Suffix("ON CONFLICT(currency) DO UPDATE SET rate = excluded.rate"))
	}
	if err := r.execInTx(ctx, "rates", inserts); err != nil {
		return err
	}
	r.logger.WithField("rows", len(rates)).Info("Stored currency rates")
	return nil
}

func (r *SQLiteRepo) SelectRates(ctx context.Context) (entity.RateTable, error) {
	query, args, err := builder.Select("currency", "rate").From("rates").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []rateRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithError(err).Error("Failed to query rates")
		return nil, fmt.Errorf("query rates: %w", err)
	}

	result := make(entity.RateTable, len(rows))
	for _, row := range rows {
		result[row.Currency] = row.Rate
	}
	return result, nil
}

func (r *SQLiteRepo) UpsertCurrencies(ctx context.Context, currencies entity.CurrencyDirectory) error {
	inserts := make([]sq.InsertBuilder, 0, len(currencies))
	for _, code := range currencies.Codes() {
		inserts = append(inserts, builder.Insert("currencies").
			Columns("currency", "currency_name").
			Values(code, currencies[code]).
			Suffix("ON CONFLICT(currency) DO UPDATE SET currency_name = excluded.currency_name"))
	}
	if err := r.execInTx(ctx, "currencies", inserts); err != nil {
		return err
	}
	r.logger.WithField("rows", len(currencies)).Info("Stored currency names")
	return nil
}

func (r *SQLiteRepo) SelectCurrencies(ctx context.Context) (entity.CurrencyDirectory, error) {
	query, args, err := builder.Select("currency", "currency_name").From("currencies").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []currencyRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithError(err).Error("Failed to query currencies")
		return nil, fmt.Errorf("query currencies: %w", err)
	}

	result := make(entity.CurrencyDirectory, len(rows))
	for _, row := range rows {
		result[row.Currency] = row.Name
	}
	return result, nil
}

func (r *SQLiteRepo) execInTx(ctx context.Context, table string, inserts []sq.InsertBuilder) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.WithError(err).Error("Failed to begin transaction")
		return fmt.Errorf("begin tx: %w", err)
	}

	for _, ins := range inserts {
		query, args, err := ins.ToSql()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("build insert into %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.WithError(err).WithField("table", table).Error("Failed to upsert row")
			if rbErr := tx.Rollback(); rbErr != nil {
				r.logger.WithError(rbErr).Error("Failed to rollback tx")
			}
			return fmt.Errorf("upsert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		r.logger.WithError(err).Error("Failed to commit tx")
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
