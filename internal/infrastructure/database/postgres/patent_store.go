package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/cnsipo-attrs/internal/application/auxfill"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cnsipo-attrs/pkg/errors"
)

// auxColumns are the columns filled by the address copy.
var auxColumns = []string{"app_no", "app_year", "country", "state"}

// PatentStore reads the patent detail table and writes the auxiliary table.
type PatentStore struct {
	pool        *pgxpool.Pool
	patentTable pgx.Identifier
	auxTable    pgx.Identifier
	logger      logging.Logger
}

var _ auxfill.Store = (*PatentStore)(nil)

// NewPatentStore validates both table names. pool may be nil when the store is
// only used to render statements for a dry run.
func NewPatentStore(pool *pgxpool.Pool, patentTable, auxTable string, logger logging.Logger) (*PatentStore, error) {
	pt, err := ParseTableName(patentTable)
	if err != nil {
		return nil, err
	}
	at, err := ParseTableName(auxTable)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &PatentStore{pool: pool, patentTable: pt, auxTable: at, logger: logger.Named("patent_store")}, nil
}

// AuxTable returns the quoted auxiliary table identifier.
func (s *PatentStore) AuxTable() pgx.Identifier { return s.auxTable }

// SelectStatement returns the query streaming one year of field.
func (s *PatentStore) SelectStatement(field auxfill.Field) string {
	cols := append([]string{"app_no"}, field.SourceColumns()...)
	return fmt.Sprintf("SELECT %s FROM %s WHERE extract(year from app_date) = $1",
		strings.Join(cols, ", "), s.patentTable.Sanitize())
}

// Statement returns the write statement for field.
func (s *PatentStore) Statement(field auxfill.Field) string {
	aux := s.auxTable.Sanitize()
	switch field {
	case auxfill.FieldAddress:
		return fmt.Sprintf("COPY %s (%s) FROM STDIN", aux, strings.Join(auxColumns, ", "))
	case auxfill.FieldApplicant:
		return fmt.Sprintf("UPDATE %s SET attrs = $1 WHERE app_no = $2", aux)
	case auxfill.FieldIntCl:
		return fmt.Sprintf("UPDATE %s SET hi_tech = $1, lo_tech = $2 WHERE app_no = $3", aux)
	}
	return ""
}

// StreamField runs the select for year and hands rows to fn in batches.
func (s *PatentStore) StreamField(ctx context.Context, field auxfill.Field, year, batchSize int, fn func([]auxfill.SourceRecord) error) error {
	if len(field.SourceColumns()) == 0 {
		return errors.New(errors.CodeUnknownField, "unknown field name").WithDetail(field.String())
	}
	if batchSize < 1 {
		batchSize = 1
	}
	query := s.SelectStatement(field)
	s.logger.Debug("executing", logging.String("query", query), logging.Int(logging.FieldYear, year))

	rows, err := s.pool.Query(ctx, query, year)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "unexpected database error")
	}
	defer rows.Close()

	batch := make([]auxfill.SourceRecord, 0, batchSize)
	for rows.Next() {
		var appNo, value, address *string
		dest := []any{&appNo, &value}
		if field == auxfill.FieldApplicant {
			dest = append(dest, &address)
		}
		if err := rows.Scan(dest...); err != nil {
			return errors.Wrap(err, errors.CodeDatabaseError, "failed to scan patent row")
		}
		batch = append(batch, auxfill.SourceRecord{
			AppNo:   deref(appNo),
			Year:    year,
			Value:   deref(value),
			Address: deref(address),
		})
		if len(batch) == batchSize {
			if err := fn(batch); err != nil {
				return err
			}
			batch = make([]auxfill.SourceRecord, 0, batchSize)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "unexpected database error")
	}
	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

// WriteBatch writes recs in one transaction: a COPY for addresses, a pgx
// batch of updates otherwise.
func (s *PatentStore) WriteBatch(ctx context.Context, field auxfill.Field, recs []auxfill.AuxRecord) error {
	if len(recs) == 0 {
		return nil
	}
	stmt := s.Statement(field)
	if stmt == "" {
		return errors.New(errors.CodeUnknownField, "unknown field name").WithDetail(field.String())
	}

	return WithTransaction(ctx, s.pool, func(tx pgx.Tx, txCtx context.Context) error {
		if field == auxfill.FieldAddress {
			n, err := tx.CopyFrom(txCtx, s.auxTable, auxColumns, pgx.CopyFromSlice(len(recs), func(i int) ([]any, error) {
				r := recs[i]
				return []any{r.AppNo, r.Year, nullable(r.Country), nullable(r.State)}, nil
			}))
			if err != nil {
				return errors.Wrap(err, errors.CodeDatabaseError, "unexpected database error")
			}
			s.logger.Debug("copied rows", logging.Int64("rows", n))
			return nil
		}

		b := &pgx.Batch{}
		for _, r := range recs {
			switch field {
			case auxfill.FieldApplicant:
				b.Queue(stmt, r.Attrs, r.AppNo)
			case auxfill.FieldIntCl:
				b.Queue(stmt, r.HiTech, r.LoTech, r.AppNo)
			}
		}
		br := tx.SendBatch(txCtx, b)
		for _, r := range recs {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return errors.Wrap(err, errors.CodeDatabaseError, "unexpected database error").WithDetail("app_no " + r.AppNo)
			}
		}
		if err := br.Close(); err != nil {
			return errors.Wrap(err, errors.CodeDatabaseError, "unexpected database error")
		}
		return nil
	})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nullable stores the unknown sentinel as NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

//Personal.AI order the ending
