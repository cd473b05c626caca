// Package db 定义存储层使用的最小数据库抽象
//
// 上层（如 data/store/sqlstore）只依赖这里的接口，具体实现见 data/db/basic，
// 测试可替换为任意满足接口的实现。
package db

import (
	"context"
	"database/sql"
)

// IDatabase 通用数据库接口
type IDatabase interface {
	// 查询操作
	Query(ctx context.Context, query string, args ...any) (IRows, error)
	QueryRow(ctx context.Context, query string, args ...any) IRow

	// 执行操作
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)

	// 事务操作
	Begin(ctx context.Context) (ITransaction, error)

	// 连接管理
	Ping(ctx context.Context) error
	Close() error
}

// IDialectNameProvider 可选接口：提供底层数据库方言名称
//
// 返回 "sqlite"、"mysql"、"postgres" 等 driver 名，供 dialect 包推断方言能力。
type IDialectNameProvider interface {
	GetDialectName() string
}

// ITransaction 事务接口
type ITransaction interface {
	IDatabase

	Commit() error
	Rollback() error
}

// IRows 查询结果集接口
type IRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Err() error
}

// IRow 单行结果接口，无结果时 Scan 返回 sql.ErrNoRows
type IRow interface {
	Scan(dest ...any) error
	Err() error
}

// DBConfig 数据库配置
type DBConfig struct {
	Driver string // sqlite, mysql, postgres
	DSN    string

	// 连接池配置，0 表示使用 database/sql 默认值
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // 秒
}
