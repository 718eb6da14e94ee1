package dbmodel

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/maxshaw/dbmodel/types"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connection owns one database handle. Statements run one at a time on a
// single underlying connection, inside the open transaction if there is one.
// A Connection must not be shared between goroutines.
type Connection struct {
	db     *sqlx.DB
	tx     *sqlx.Tx
	driver string
	logger *zap.Logger

	lastSQL string
	lastID  int64
}

// Open validates cfg, connects and pings the database within Timeout.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	name := cfg.DriverName()
	if !lo.Contains(sql.Drivers(), name) {
		return nil, newError(CodeDriverUnsupported, nil, "database driver %q is not registered", name)
	}

	o := newOptions(opts)

	db, err := sqlx.Open(name, cfg.DSN())
	if err != nil {
		return nil, newError(CodeConnect, err, "cannot open %s database %s", name, cfg.DBName)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, newError(CodeConnect, err, "cannot connect to %s database %s", name, cfg.DBName)
	}

	o.logger.Info("database connected",
		zap.String("driver", name),
		zap.String("host", cfg.Host),
		zap.String("dbname", cfg.DBName),
	)

	return &Connection{db: db, driver: name, logger: o.logger}, nil
}

// NewConnection wraps an already opened handle registered under driverName.
func NewConnection(db *sql.DB, driverName string, opts ...Option) *Connection {
	o := newOptions(opts)
	return &Connection{db: sqlx.NewDb(db, driverName), driver: driverName, logger: o.logger}
}

func (c *Connection) DB() *sqlx.DB {
	return c.db
}

func (c *Connection) Driver() string {
	return c.driver
}

// Exec runs a statement and returns the number of affected rows.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	stmt, bound, err := c.prepare(ctx, query, args)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	start := time.Now()
	res, err := stmt.ExecContext(ctx, bound...)
	c.log(query, bound, start, err)
	if err != nil {
		return 0, errors.Wrap(err, "dbmodel: exec")
	}

	c.lastID = 0
	if id, err := res.LastInsertId(); err == nil {
		c.lastID = id
	}

	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "dbmodel: rows affected")
}

// Query returns every row of the result, in order. No rows gives an empty, non-nil Rows.
func (c *Connection) Query(ctx context.Context, query string, args ...any) (types.Rows, error) {
	rows := types.Rows{}
	err := c.each(ctx, query, args, func(r types.Row) bool {
		rows = append(rows, r)
		return true
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Connection) GetRows(ctx context.Context, query string, args ...any) (types.Rows, error) {
	return c.Query(ctx, query, args...)
}

// GetRowsByKey indexes the result by the string form of the key column,
// which the result must contain.
func (c *Connection) GetRowsByKey(ctx context.Context, key, query string, args ...any) (map[string]types.Row, error) {
	rows, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && !rows[0].Has(key) {
		return nil, newError(CodeUsage, nil, "key column %q is not in the result", key)
	}
	return rows.KeyBy(key), nil
}

// GetRow returns the first row, or nil when there is none.
func (c *Connection) GetRow(ctx context.Context, query string, args ...any) (types.Row, error) {
	var row types.Row
	err := c.each(ctx, query, args, func(r types.Row) bool {
		row = r
		return false
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// GetOne returns the first column of the first row, or nil when there is none.
func (c *Connection) GetOne(ctx context.Context, query string, args ...any) (any, error) {
	stmt, bound, err := c.prepare(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	start := time.Now()
	rows, err := stmt.QueryxContext(ctx, bound...)
	if err != nil {
		c.log(query, bound, start, err)
		return nil, errors.Wrap(err, "dbmodel: query")
	}
	defer rows.Close()

	var one any
	if rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			c.log(query, bound, start, err)
			return nil, errors.Wrap(err, "dbmodel: scan")
		}
		if len(vals) > 0 {
			one = vals[0]
			if b, ok := one.([]byte); ok {
				one = string(b)
			}
		}
	}

	err = rows.Err()
	c.log(query, bound, start, err)

	return one, errors.Wrap(err, "dbmodel: query")
}

func (c *Connection) LastInsertID() int64 {
	return c.lastID
}

// LastSQL is the statement text most recently handed to Exec or a query method.
func (c *Connection) LastSQL() string {
	return c.lastSQL
}

// Begin starts a transaction every following statement runs in until Commit or Rollback.
func (c *Connection) Begin(ctx context.Context) error {
	if c.tx != nil {
		return newError(CodeUsage, nil, "transaction already started")
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "dbmodel: begin transaction")
	}

	c.tx = tx
	c.logger.Debug("transaction started")

	return nil
}

func (c *Connection) Commit() error {
	if c.tx == nil {
		return newError(CodeUsage, nil, "no transaction to commit")
	}

	tx := c.tx
	c.tx = nil
	c.logger.Debug("transaction committed")

	return errors.Wrap(tx.Commit(), "dbmodel: commit")
}

func (c *Connection) Rollback() error {
	if c.tx == nil {
		return newError(CodeUsage, nil, "no transaction to roll back")
	}

	tx := c.tx
	c.tx = nil
	c.logger.Debug("transaction rolled back")

	return errors.Wrap(tx.Rollback(), "dbmodel: rollback")
}

func (c *Connection) InTransaction() bool {
	return c.tx != nil
}

// Transaction runs fn inside a transaction. It rolls back when fn returns an
// error or panics and commits otherwise.
func (c *Connection) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return transaction(ctx, c, fn)
}

// Close rolls back an open transaction and closes the handle.
func (c *Connection) Close() error {
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}

	c.logger.Info("database connection closed", zap.String("driver", c.driver))

	return c.db.Close()
}

func (c *Connection) each(ctx context.Context, query string, args []any, fn func(types.Row) bool) error {
	stmt, bound, err := c.prepare(ctx, query, args)
	if err != nil {
		return err
	}
	defer stmt.Close()

	start := time.Now()
	rows, err := stmt.QueryxContext(ctx, bound...)
	if err != nil {
		c.log(query, bound, start, err)
		return errors.Wrap(err, "dbmodel: query")
	}
	defer rows.Close()

	for rows.Next() {
		m := make(map[string]any)
		if err = rows.MapScan(m); err != nil {
			c.log(query, bound, start, err)
			return errors.Wrap(err, "dbmodel: scan")
		}
		if !fn(types.NormalizeRow(m)) {
			break
		}
	}

	err = rows.Err()
	c.log(query, bound, start, err)

	return errors.Wrap(err, "dbmodel: query")
}

func (c *Connection) prepare(ctx context.Context, query string, args []any) (*sqlx.Stmt, []any, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil, newError(CodeEmptySQL, nil, "sql statement is empty")
	}

	c.lastSQL = query

	query, bound, err := c.bind(query, args)
	if err != nil {
		return nil, nil, err
	}

	var stmt *sqlx.Stmt
	if c.tx != nil {
		stmt, err = c.tx.PreparexContext(ctx, query)
	} else {
		stmt, err = c.db.PreparexContext(ctx, query)
	}

	if err != nil {
		c.logger.Error("prepare failed", zap.String("sql", query), zap.Error(err))
		return nil, nil, newError(CodePrepare, err, "cannot prepare statement")
	}

	return stmt, bound, nil
}

// bind resolves :name placeholders when the only argument is a map, types
// every value and rewrites ? to $n for postgres.
func (c *Connection) bind(query string, args []any) (string, []any, error) {
	if len(args) == 1 {
		if named, ok := args[0].(map[string]any); ok {
			q, a, err := sqlx.Named(query, named)
			if err != nil {
				return "", nil, newError(CodeUsage, err, "cannot bind named parameters")
			}
			query, args = q, a
		}
	}

	bound := make([]any, len(args))
	for i, arg := range args {
		v, err := bindValue(arg)
		if err != nil {
			return "", nil, err
		}
		bound[i] = v
	}

	if c.driver == "postgres" {
		q, err := squirrel.Dollar.ReplacePlaceholders(query)
		if err != nil {
			return "", nil, newError(CodeUsage, err, "cannot rewrite placeholders")
		}
		query = q
	}

	return query, bound, nil
}

// bindValue binds integers, booleans and floats as numbers and everything
// else as a string. nil, []byte and driver.Valuer go to the driver untouched.
func bindValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, []byte, string, driver.Valuer:
		return v, nil
	case bool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case time.Time:
		return val.Format(time.DateTime), nil
	case float32, float64:
		return cast.ToFloat64E(v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToInt64E(v)
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return nil, newError(CodeUsage, err, "cannot bind value of type %T", v)
	}
	return s, nil
}

func (c *Connection) log(query string, args []any, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("sql", query),
		zap.Any("args", args),
		zap.Duration("elapsed", time.Since(start)),
	}

	if err != nil {
		c.logger.Error("statement failed", append(fields, zap.Error(err))...)
		return
	}

	c.logger.Debug("statement executed", fields...)
}
