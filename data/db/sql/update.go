package sql

import (
	"context"
	"database/sql"
	"strings"

	core "itemhub/data/db"
	"itemhub/data/db/dialect"
)

// updateBuilder 供不支持原生 UPSERT 的方言在唯一键冲突后回退更新
type updateBuilder struct {
	db      core.IDatabase
	dialect dialect.Dialect

	table     string
	setCols   []string
	setArgs   []any
	whereExpr []string
	whereArgs []any
}

// Set 按调用顺序生成 SET 片段
func (b *updateBuilder) Set(col string, val any) *updateBuilder {
	if col != "" {
		b.setCols = append(b.setCols, col)
		b.setArgs = append(b.setArgs, val)
	}
	return b
}

func (b *updateBuilder) Where(cond string, args ...any) *updateBuilder {
	if cond != "" {
		b.whereExpr = append(b.whereExpr, cond)
		b.whereArgs = append(b.whereArgs, args...)
	}
	return b
}

func (b *updateBuilder) Build() (string, []any) {
	if len(b.setCols) == 0 {
		panic("updateBuilder: no columns to set")
	}
	mustIdentifier("updateBuilder", "table", b.table)

	sets := make([]string, len(b.setCols))
	for i, col := range b.setCols {
		mustIdentifier("updateBuilder", "column", col)
		sets[i] = b.dialect.QuoteIdentifier(col) + " = ?"
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.dialect.QuoteIdentifier(b.table))
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ", "))

	args := make([]any, 0, len(b.setArgs)+len(b.whereArgs))
	args = append(args, b.setArgs...)
	if len(b.whereExpr) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.whereExpr, " AND "))
		args = append(args, b.whereArgs...)
	}
	return sb.String(), args
}

func (b *updateBuilder) Exec(ctx context.Context) (sql.Result, error) {
	q, args := b.Build()
	return b.db.Exec(ctx, q, args...)
}
