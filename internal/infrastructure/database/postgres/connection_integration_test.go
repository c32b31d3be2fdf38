//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/cnsipo-attrs/internal/application/auxfill"
	"github.com/turtacn/cnsipo-attrs/internal/config"
	"github.com/turtacn/cnsipo-attrs/internal/domain/refdata"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/database/postgres"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cnsipo-attrs/internal/intelligence/patent_parser"
	"github.com/turtacn/cnsipo-attrs/pkg/types/attrs"
)

// ─────────────────────────────────────────────────────────────────────────────
// WithTransaction
// ─────────────────────────────────────────────────────────────────────────────

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "CREATE TABLE test_commit (id INT)")
	require.NoError(t, err)

	err = postgres.WithTransaction(ctx, pool, func(tx pgx.Tx, txCtx context.Context) error {
		_, err := tx.Exec(txCtx, "INSERT INTO test_commit VALUES (1)")
		return err
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM test_commit").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "CREATE TABLE test_rollback (id INT PRIMARY KEY)")
	require.NoError(t, err)

	err = postgres.WithTransaction(ctx, pool, func(tx pgx.Tx, txCtx context.Context) error {
		_, err := tx.Exec(txCtx, "INSERT INTO test_rollback VALUES (1)")
		require.NoError(t, err)
		return fmt.Errorf("intentional error for rollback test")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intentional error")

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM test_rollback").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestWithTransaction_RollsBackOnPanic(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, "CREATE TABLE test_panic (id INT)")
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = postgres.WithTransaction(ctx, pool, func(tx pgx.Tx, txCtx context.Context) error {
			_, _ = tx.Exec(txCtx, "INSERT INTO test_panic VALUES (1)")
			panic("intentional panic")
		})
	})

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM test_panic").Scan(&count))
	assert.Equal(t, 0, count)
}

// ─────────────────────────────────────────────────────────────────────────────
// PatentStore end to end
// ─────────────────────────────────────────────────────────────────────────────

func TestPatentStore_FillAllFields(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		CREATE TABLE patent_detail (
			app_no    TEXT PRIMARY KEY,
			app_date  DATE NOT NULL,
			address   TEXT,
			applicant TEXT,
			int_cl    TEXT
		);
		INSERT INTO patent_detail VALUES
			('88100001', '1988-03-01', '100080北京市海淀区', '清华大学', 'G06F15/00'),
			('88100002', '1988-07-15', '美国康涅狄格州', '联合技术公司;北京大学', 'A01B1/00N'),
			('88100003', '1988-12-31', NULL, NULL, NULL),
			('89100001', '1989-01-02', '江苏省无锡市', '江南大学', 'C12R1/00');
	`)
	require.NoError(t, err)

	aux, err := postgres.ParseTableName("patent_aux")
	require.NoError(t, err)
	require.NoError(t, postgres.EnsureAuxTable(ctx, pool, aux))
	require.NoError(t, postgres.EnsureAuxTable(ctx, pool, aux), "idempotent")

	store, err := postgres.NewPatentStore(pool, "patent_detail", "patent_aux", logging.NewNopLogger())
	require.NoError(t, err)

	tables, err := refdata.LoadDefault()
	require.NoError(t, err)
	parser, err := patent_parser.New(tables)
	require.NoError(t, err)

	svc, err := auxfill.NewService(store, parser, auxfill.Options{BatchSize: 2, Concurrency: 2}, nil, logging.NewNopLogger())
	require.NoError(t, err)

	for _, f := range auxfill.Fields() {
		sum, err := svc.Run(ctx, f, []int{1988, 1989})
		require.NoError(t, err, f.String())
		assert.Equal(t, 4, sum.Records(), f.String())
	}

	type row struct {
		country, state *string
		year, attrs    int
		hi, lo         bool
	}
	got := make(map[string]row)
	rows, err := pool.Query(ctx, "SELECT app_no, app_year, country, state, attrs, hi_tech, lo_tech FROM patent_aux")
	require.NoError(t, err)
	for rows.Next() {
		var no string
		var r row
		require.NoError(t, rows.Scan(&no, &r.year, &r.country, &r.state, &r.attrs, &r.hi, &r.lo))
		got[no] = r
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 4)

	str := func(p *string) string {
		if p == nil {
			return "<null>"
		}
		return *p
	}

	r := got["88100001"]
	assert.Equal(t, 1988, r.year)
	assert.Equal(t, attrs.Mainland, str(r.country))
	assert.Equal(t, "北京", str(r.state))
	assert.Equal(t, auxfill.AttrUniversity, r.attrs)
	assert.True(t, r.hi)

	r = got["88100002"]
	assert.Equal(t, "美国", str(r.country))
	assert.Equal(t, "<null>", str(r.state))
	assert.Equal(t, auxfill.AttrUniversity|auxfill.AttrIndustry|auxfill.AttrForeign|auxfill.AttrCoApplication, r.attrs)
	assert.False(t, r.hi)
	assert.True(t, r.lo)

	r = got["88100003"]
	assert.Equal(t, "<null>", str(r.country))
	assert.Equal(t, 0, r.attrs)

	r = got["89100001"]
	assert.Equal(t, "江苏", str(r.state))
	assert.False(t, r.hi)
	assert.False(t, r.lo)
}

func TestPatentStore_WriteFailureRollsBackBatch(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	aux, err := postgres.ParseTableName("patent_aux")
	require.NoError(t, err)
	require.NoError(t, postgres.EnsureAuxTable(ctx, pool, aux))

	store, err := postgres.NewPatentStore(pool, "patent_detail", "patent_aux", nil)
	require.NoError(t, err)

	recs := []auxfill.AuxRecord{{AppNo: "1", Year: 2000}, {AppNo: "1", Year: 2000}}
	err = store.WriteBatch(ctx, auxfill.FieldAddress, recs)
	require.Error(t, err, "duplicate app_no violates the primary key")

	var count int
	require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM patent_aux").Scan(&count))
	assert.Equal(t, 0, count)
}

// ─────────────────────────────────────────────────────────────────────────────
// Test helpers
// ─────────────────────────────────────────────────────────────────────────────

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "cnsipo_test",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:     host,
		Port:     portNum,
		User:     "test",
		Password: "test",
		DBName:   "cnsipo_test",
		SSLMode:  "disable",
		MaxConns: 8,
	}
	pool, err := postgres.NewConnectionPool(ctx, cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { postgres.Close(pool) })

	require.NoError(t, postgres.HealthCheck(ctx, pool))
	return pool
}

//Personal.AI order the ending
