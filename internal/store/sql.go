package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"banketl/internal/logger"
	"banketl/internal/model"
)

// IndexColumn is the row-index column written ahead of the dataset columns.
const IndexColumn = "index"

// SQLStore is a Store backed by database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the database and verifies the connection. The pool is
// limited to one connection; the pipeline never issues concurrent calls.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	logger.Get().WithField("driver", driver).Info("database store opened")
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) ReplaceTable(ctx context.Context, table string, ds *model.Dataset) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	cols := ds.Columns()
	for _, c := range cols {
		if err := checkIdent(c); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	q := s.dialect.quote
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+q(table)); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, s.createStmt(table, cols)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	quoted := make([]string, 0, len(cols)+1)
	quoted = append(quoted, q(IndexColumn))
	for _, c := range cols {
		quoted = append(quoted, q(c))
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q(table), strings.Join(quoted, ", "), s.dialect.placeholders(len(quoted)))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range ds.Records {
		args := make([]any, 0, len(quoted))
		args = append(args, i, rec.Name, rec.MCUSDBillion)
		for _, v := range rec.Converted {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.Get().WithFields(logrus.Fields{
		"table": table,
		"rows":  ds.Len(),
	}).Debug("table replaced")
	return nil
}

func (s *SQLStore) createStmt(table string, cols []string) string {
	q := s.dialect.quote
	defs := make([]string, 0, len(cols)+1)
	defs = append(defs, q(IndexColumn)+" "+s.dialect.intType)
	for _, c := range cols {
		typ := s.dialect.realType
		if c == model.ColumnName {
			typ = s.dialect.textType
		}
		defs = append(defs, q(c)+" "+typ)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", q(table), strings.Join(defs, ",\n\t"))
}

func (s *SQLStore) Query(ctx context.Context, query string) (*Result, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	res := &Result{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return res, nil
}

func (s *SQLStore) Close() error {
	logger.Get().Info("closing database store")
	return s.db.Close()
}
