// Package dialect 抽象不同数据库在占位符、标识符引用与冲突处理上的差异
package dialect

import (
	"strconv"
	"strings"

	core "itemhub/data/db"
)

// Name 标准化的数据库方言名称
type Name string

const (
	NameMySQL    Name = "mysql"
	NameSQLite   Name = "sqlite"
	NamePostgres Name = "postgres"
	NameUnknown  Name = ""
)

// Dialect 表示当前数据库的方言能力
type Dialect struct {
	name Name
}

// New 根据字符串构造方言（大小写不敏感）
func New(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql":
		return Dialect{name: NameMySQL}
	case "sqlite", "sqlite3":
		return Dialect{name: NameSQLite}
	case "postgres", "postgresql", "pgx":
		return Dialect{name: NamePostgres}
	default:
		return Dialect{name: NameUnknown}
	}
}

// FromDatabase 从 IDatabase 实例推断方言，未实现 IDialectNameProvider 时返回 Unknown
func FromDatabase(db core.IDatabase) Dialect {
	if p, ok := db.(core.IDialectNameProvider); ok {
		return New(p.GetDialectName())
	}
	return Dialect{name: NameUnknown}
}

// Name 返回标准化方言名
func (d Dialect) Name() Name {
	return d.name
}

// QuoteIdentifier 按方言对标识符加引号，带点的限定名逐段处理。
// MySQL 使用反引号，Postgres/SQLite 使用双引号，Unknown 原样返回。
func (d Dialect) QuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		switch d.name {
		case NameMySQL:
			parts[i] = "`" + p + "`"
		case NameSQLite, NamePostgres:
			parts[i] = `"` + p + `"`
		}
	}
	return strings.Join(parts, ".")
}

// Rebind 将通用占位符 ? 转换为方言特定形式（仅 Postgres 替换为 $n）。
//
// 简单字符扫描，不解析字符串字面量；SQL 字面量中不要出现 ?。
func (d Dialect) Rebind(query string) string {
	if d.name != NamePostgres || !strings.Contains(query, "?") {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// SupportsNativeUpsert 是否支持单语句 UPSERT
func (d Dialect) SupportsNativeUpsert() bool {
	return d.name != NameUnknown
}

// UpsertClause 生成追加在 INSERT 之后的冲突更新子句。
// keys 与 updates 必须已经过标识符校验；updates 为空时返回空串。
func (d Dialect) UpsertClause(keys, updates []string) string {
	if len(updates) == 0 {
		return ""
	}
	sets := make([]string, len(updates))
	switch d.name {
	case NameMySQL:
		for i, col := range updates {
			q := d.QuoteIdentifier(col)
			sets[i] = q + " = VALUES(" + q + ")"
		}
		return " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	case NameSQLite, NamePostgres:
		quotedKeys := make([]string, len(keys))
		for i, k := range keys {
			quotedKeys[i] = d.QuoteIdentifier(k)
		}
		for i, col := range updates {
			q := d.QuoteIdentifier(col)
			sets[i] = q + " = excluded." + q
		}
		return " ON CONFLICT (" + strings.Join(quotedKeys, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
	default:
		return ""
	}
}

// IsUniqueViolation 通过错误消息关键字判断唯一键/主键冲突
//
//   - MySQL: "Duplicate entry" (Error 1062)
//   - SQLite: "UNIQUE constraint failed"
//   - Postgres: "duplicate key value violates unique constraint" (23505)
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch d.name {
	case NameMySQL:
		return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "duplicate key")
	case NameSQLite:
		return strings.Contains(msg, "unique constraint failed") ||
			strings.Contains(msg, "primary key must be unique")
	default:
		return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
	}
}
