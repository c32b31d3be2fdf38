package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/cnsipo-attrs/pkg/errors"
)

// auxTableDDL creates the auxiliary table. app_no is the join key with the
// patent table; the address fill inserts rows, the other fills update them.
const auxTableDDL = `CREATE TABLE IF NOT EXISTS %s (
	app_no   TEXT PRIMARY KEY,
	app_year INTEGER,
	country  TEXT,
	state    TEXT,
	attrs    INTEGER NOT NULL DEFAULT 0,
	hi_tech  BOOLEAN NOT NULL DEFAULT FALSE,
	lo_tech  BOOLEAN NOT NULL DEFAULT FALSE
)`

const auxYearIndexDDL = `CREATE INDEX IF NOT EXISTS %s ON %s (app_year)`

// AuxTableDDL returns the statements EnsureAuxTable executes.
func AuxTableDDL(table pgx.Identifier) []string {
	idx := pgx.Identifier{table[len(table)-1] + "_app_year_idx"}
	return []string{
		fmt.Sprintf(auxTableDDL, table.Sanitize()),
		fmt.Sprintf(auxYearIndexDDL, idx.Sanitize(), table.Sanitize()),
	}
}

// EnsureAuxTable creates the auxiliary table and its index when missing.
func EnsureAuxTable(ctx context.Context, pool *pgxpool.Pool, table pgx.Identifier) error {
	return WithTransaction(ctx, pool, func(tx pgx.Tx, txCtx context.Context) error {
		for _, stmt := range AuxTableDDL(table) {
			if _, err := tx.Exec(txCtx, stmt); err != nil {
				return errors.Wrap(err, errors.CodeDatabaseError, "failed to create auxiliary table")
			}
		}
		return nil
	})
}

//Personal.AI order the ending
