package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	core "itemhub/data/db"
	"itemhub/data/db/dialect"
)

type upsertBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table      string
	columns    []string
	values     []any
	keyColumns []string
}

func (b *upsertBuilder) Columns(cols ...string) IUpsertBuilder {
	b.columns = cols
	return b
}

func (b *upsertBuilder) Values(vals ...any) IUpsertBuilder {
	b.values = vals
	return b
}

func (b *upsertBuilder) Key(cols ...string) IUpsertBuilder {
	b.keyColumns = cols
	return b
}

func (b *upsertBuilder) validate() error {
	if len(b.columns) == 0 {
		return fmt.Errorf("upsert: Columns is required")
	}
	if len(b.values) != len(b.columns) {
		return fmt.Errorf("upsert: values length mismatch columns length")
	}
	if len(b.keyColumns) == 0 {
		return fmt.Errorf("upsert: Key is required")
	}
	for _, key := range b.keyColumns {
		if b.columnIndex(key) < 0 {
			return fmt.Errorf("upsert: key column %s not found in Columns", key)
		}
	}
	return nil
}

func (b *upsertBuilder) columnIndex(col string) int {
	for i, c := range b.columns {
		if c == col {
			return i
		}
	}
	return -1
}

func (b *upsertBuilder) updateColumns() []string {
	cols := make([]string, 0, len(b.columns))
	for _, col := range b.columns {
		isKey := false
		for _, key := range b.keyColumns {
			if key == col {
				isKey = true
				break
			}
		}
		if !isKey {
			cols = append(cols, col)
		}
	}
	return cols
}

func (b *upsertBuilder) insert() *insertBuilder {
	return &insertBuilder{
		db:      b.db,
		dialect: b.dialect,
		table:   b.table,
		columns: b.columns,
		rows:    [][]any{b.values},
	}
}

// Build 生成单语句 UPSERT；方言不支持时只生成 INSERT 部分
func (b *upsertBuilder) Build() (string, []any) {
	if err := b.validate(); err != nil {
		panic(err.Error())
	}
	q, args := b.insert().Build()
	return q + b.dialect.UpsertClause(b.keyColumns, b.updateColumns()), args
}

func (b *upsertBuilder) Exec(ctx context.Context) (sql.Result, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}
	if b.dialect.SupportsNativeUpsert() {
		q, args := b.Build()
		return b.db.Exec(ctx, q, args...)
	}

	res, err := b.insert().Exec(ctx)
	if err == nil || !b.dialect.IsUniqueViolation(err) {
		return res, err
	}

	upd := &updateBuilder{db: b.db, dialect: b.dialect, table: b.table}
	for _, col := range b.updateColumns() {
		upd.Set(col, b.values[b.columnIndex(col)])
	}
	where := make([]string, len(b.keyColumns))
	whereArgs := make([]any, len(b.keyColumns))
	for i, key := range b.keyColumns {
		where[i] = b.dialect.QuoteIdentifier(key) + " = ?"
		whereArgs[i] = b.values[b.columnIndex(key)]
	}
	upd.Where(strings.Join(where, " AND "), whereArgs...)
	return upd.Exec(ctx)
}
