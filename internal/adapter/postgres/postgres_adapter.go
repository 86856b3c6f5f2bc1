package postgres

import (
	"context"
	"fmt"

	"converter-service/internal/entity"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	createRatesTable = `CREATE TABLE IF NOT EXISTS rates (
    currency TEXT PRIMARY KEY,
    rate     DOUBLE PRECISION NOT NULL CHECK (rate > 0)
)`
	createCurrenciesTable = `CREATE TABLE IF NOT EXISTS currencies (
    currency      TEXT PRIMARY KEY,
    currency_name TEXT NOT NULL
)`
)

type PostgresRepo struct {
	pool   Pool
	logger *logrus.Logger
}

func NewPostgresRepo(pool Pool, logger *logrus.Logger) *PostgresRepo {
	return &PostgresRepo{
		pool:   pool,
		logger: logger,
	}
}

func (r *PostgresRepo) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createRatesTable, createCurrenciesTable} {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			r.logger.WithError(err).Error("Failed to create table")
			return fmt.Errorf("create schema: %w", err)
		}
	}
	r.logger.Debug("Schema is in place")
	return nil
}

func (r *PostgresRepo) UpsertRates(ctx context.Context, rates entity.RateTable) error {
	r.logger.WithField("rows", len(rates)).Info("Start storing currency rates")

	inserts := make([]sq.InsertBuilder, 0, len(rates))
	for _, code := range rates.Codes() {
		inserts = append(inserts, psql.Insert("rates").
			Columns("currency", "rate").
			Values(code, rates[code]).
			Suffix("ON CONFLICT (currency) DO UPDATE SET rate = EXCLUDED.rate"))
	}

	if err := r.execBatch(ctx, "rates", inserts); err != nil {
		return err
	}

	r.logger.Info("Successfully stored all currency rates")
	return nil
}

func (r *PostgresRepo) SelectRates(ctx context.Context) (entity.RateTable, error) {
	query, args, err := psql.Select("currency", "rate").From("rates").ToSql()
	if err != nil {
		r.logger.WithError(err).Error("Failed to build select query")
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to query rates")
		return nil, fmt.Errorf("query rates: %w", err)
	}
	defer rows.Close()

	result := entity.RateTable{}
	for rows.Next() {
		var (
			code string
			rate float64
		)
		if err := rows.Scan(&code, &rate); err != nil {
			return nil, fmt.Errorf("scan rate: %w", err)
		}
		result[code] = rate
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("Failed to iterate rates")
		return nil, fmt.Errorf("iterate rates: %w", err)
	}

	r.logger.WithField("rows", len(result)).Debug("Read cached rates")
	return result, nil
}

func (r *PostgresRepo) UpsertCurrencies(ctx context.Context, currencies entity.CurrencyDirectory) error {
	r.logger.WithField("rows", len(currencies)).Info("Start storing currency names")

	inserts := make([]sq.InsertBuilder, 0, len(currencies))
	for _, code := range currencies.Codes() {
		inserts = append(inserts, psql.Insert("currencies").
			Columns("currency", "currency_name").
			Values(code, currencies[code]).
			Suffix("ON CONFLICT (currency) DO UPDATE SET currency_name = EXCLUDED.currency_name"))
	}

	if err := r.execBatch(ctx, "currencies", inserts); err != nil {
		return err
	}

	r.logger.Info("Successfully stored all currency names")
	return nil
}

func (r *PostgresRepo) SelectCurrencies(ctx context.Context) (entity.CurrencyDirectory, error) {
	query, args, err := psql.Select("currency", "currency_name").From("currencies").ToSql()
	if err != nil {
		r.logger.WithError(err).Error("Failed to build select query")
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to query currencies")
		return nil, fmt.Errorf("query currencies: %w", err)
	}
	defer rows.Close()

	result := entity.CurrencyDirectory{}
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, fmt.Errorf("scan currency: %w", err)
		}
		result[code] = name
	}
	if err := rows.Err(); err != nil {
		r.logger.WithError(err).Error("Failed to iterate currencies")
		return nil, fmt.Errorf("iterate currencies: %w", err)
	}

	r.logger.WithField("rows", len(result)).Debug("Read cached currencies")
	return result, nil
}

// execBatch runs all inserts in one transaction; any failed row rolls the
// whole batch back.
func (r *PostgresRepo) execBatch(ctx context.Context, table string, inserts []sq.InsertBuilder) error {
	batch := &pgx.Batch{}
	for _, ins := range inserts {
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build insert into %s: %w", table, err)
		}
		batch.Queue(query, args...)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.WithError(err).Error("Failed to begin transaction")
		return fmt.Errorf("begin tx: %w", err)
	}

	br := tx.SendBatch(ctx, batch)

	var batchErrs error
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			batchErrs = multierr.Append(batchErrs, err)
			r.logger.WithError(err).WithField("table", table).Errorf("Failed batch exec for row %d", i)
		}
	}

	if err := br.Close(); err != nil {
		batchErrs = multierr.Append(batchErrs, err)
		r.logger.WithError(err).Error("Failed to close batch results")
	}

	if batchErrs != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			r.logger.WithError(rbErr).Error("Failed to rollback tx after batch errors")
		}
		return fmt.Errorf("batch exec/close errors for %s: %w", table, batchErrs)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithError(err).Error("Failed to commit tx")
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
