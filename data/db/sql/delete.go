package sql

import (
	"context"
	"database/sql"
	"strings"

	core "itemhub/data/db"
	"itemhub/data/db/dialect"
)

type deleteBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table string
	where []string
	args  []any
}

func (b *deleteBuilder) Where(cond string, args ...any) IDeleteBuilder {
	if cond != "" {
		b.where = append(b.where, cond)
		b.args = append(b.args, args...)
	}
	return b
}

// Build 没有 WHERE 时 panic，防止误删全表
func (b *deleteBuilder) Build() (string, []any) {
	mustIdentifier("deleteBuilder", "table", b.table)
	if len(b.where) == 0 {
		panic("deleteBuilder: refusing to delete without WHERE")
	}
	q := "DELETE FROM " + b.dialect.QuoteIdentifier(b.table) + " WHERE " + strings.Join(b.where, " AND ")
	args := make([]any, len(b.args))
	copy(args, b.args)
	return q, args
}

func (b *deleteBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args := b.Build()
	return b.db.Exec(ctx, q, args...)
}
