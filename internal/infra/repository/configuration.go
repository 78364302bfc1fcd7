package repository

import (
	"context"
	"errors"
	"strconv"

	"island-reservations/internal/infra"
	"island-reservations/internal/infra/db"
	"island-reservations/internal/pkg/pgconv"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgErrCodeUniqueViolation = "23505"

// Configuration values are stored as text so the table can hold any kind of
// setting; numeric limits are parsed on read.
type ConfigRepository struct{}

func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{}
}

func (r *ConfigRepository) GetInt(ctx context.Context, dbtx db.DBTX, name string) (int, error) {
	var raw string
	err := dbtx.QueryRow(ctx, `SELECT value FROM configuration WHERE name = $1`, name).Scan(&raw)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return 0, infra.WrapRepoErr("configuration value not found", err, infra.KindNotFound)
		}
		return 0, infra.WrapRepoErr("failed to read configuration", err)
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, infra.WrapRepoErr("configuration value is not an integer", err)
	}
	return value, nil
}

func (r *ConfigRepository) Insert(ctx context.Context, dbtx db.DBTX, name string, value int) error {
	_, err := dbtx.Exec(ctx, `INSERT INTO configuration (name, value) VALUES ($1, $2)`, name, strconv.Itoa(value))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return infra.WrapRepoErr("configuration value already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert configuration", err)
	}
	return nil
}
