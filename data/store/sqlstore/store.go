// Package sqlstore 基于 data/db 抽象的 SQL Item 存储（默认驱动 modernc.org/sqlite）
package sqlstore

import (
	"context"
	"database/sql"
	stdErrors "errors"

	core "itemhub/data/db"
	sqlb "itemhub/data/db/sql"
	"itemhub/domain/item"
	"itemhub/domain/repository"
	"itemhub/logging"
)

const tableName = "items"

// SchemaSQLite items 表的 sqlite 建表语句
const SchemaSQLite = `CREATE TABLE IF NOT EXISTS items (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT ''
)`

var columns = []string{"id", "name", "description", "status", "email"}

// Store SQL 实现的 Item 存储，并发安全性由 database/sql 连接池保证
type Store struct {
	db     core.IDatabase
	sql    sqlb.ISql
	logger logging.Logger
}

var (
	_ item.Store         = (*Store)(nil)
	_ item.BatchSaver    = (*Store)(nil)
	_ repository.IPinger = (*Store)(nil)
)

// NewStore 创建存储；表结构需由调用方预先创建（见 SchemaSQLite）
func NewStore(db core.IDatabase) *Store {
	return &Store{
		db:     db,
		sql:    sqlb.New(db),
		logger: logging.ComponentLogger("store.sql"),
	}
}

func (s *Store) FindAll(ctx context.Context) ([]*item.Item, error) {
	rows, err := s.sql.Select(columns...).From(tableName).OrderBy("id").Query(ctx)
	if err != nil {
		return nil, failed(nil, err)
	}
	defer rows.Close()

	out := make([]*item.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, failed(nil, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, failed(nil, err)
	}
	return out, nil
}

func (s *Store) FindAllIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.sql.Select("id").From(tableName).OrderBy("id").Query(ctx)
	if err != nil {
		return nil, failed(nil, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, failed(nil, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, failed(nil, err)
	}
	return ids, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*item.Item, error) {
	row := s.sql.Select(columns...).From(tableName).Where("id = ?", id).QueryRow(ctx)
	it, err := scanItem(row)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return nil, repository.NotFound(id)
	}
	if err != nil {
		return nil, failed(id, err)
	}
	return it, nil
}

// Save 新实体走 INSERT 并回填自增 ID；已有 ID 走 UPSERT
func (s *Store) Save(ctx context.Context, it *item.Item) (*item.Item, error) {
	return save(ctx, s.sql, it)
}

// SaveAll 在单个事务中保存多个实体，任一失败则整体回滚
func (s *Store) SaveAll(ctx context.Context, items []*item.Item) ([]*item.Item, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, failed(nil, err)
	}

	txSQL := sqlb.New(tx)
	saved := make([]*item.Item, 0, len(items))
	for _, it := range items {
		out, err := save(ctx, txSQL, it)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Warn(ctx, "rollback failed", logging.Error(rbErr))
			}
			return nil, err
		}
		saved = append(saved, out)
	}

	if err := tx.Commit(); err != nil {
		return nil, failed(nil, err)
	}
	return saved, nil
}

func save(ctx context.Context, q sqlb.ISql, it *item.Item) (*item.Item, error) {
	if it == nil || it.ID < 0 {
		return nil, repository.ErrInvalidID
	}
	out := it.Clone()

	if out.IsNew() {
		res, err := q.InsertInto(tableName).
			Columns("name", "description", "status", "email").
			Values(out.Name, out.Description, out.Status, out.Email).
			Exec(ctx)
		if err != nil {
			return nil, failed(nil, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, failed(nil, err)
		}
		out.ID = id
		return out, nil
	}

	_, err := q.UpsertInto(tableName).
		Columns(columns...).
		Values(out.ID, out.Name, out.Description, out.Status, out.Email).
		Key("id").
		Exec(ctx)
	if err != nil {
		return nil, failed(out.ID, err)
	}
	return out, nil
}

func (s *Store) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.sql.Select("1").From(tableName).Where("id = ?", id).Limit(1).QueryRow(ctx).Scan(&one)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, failed(id, err)
	}
	return true, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	if _, err := s.sql.DeleteFrom(tableName).Where("id = ?", id).Exec(ctx); err != nil {
		return failed(id, err)
	}
	return nil
}

// Ping 实现 repository.IPinger
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*item.Item, error) {
	var it item.Item
	if err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Status, &it.Email); err != nil {
		return nil, err
	}
	return &it, nil
}

func failed(id any, err error) error {
	return repository.NewRepositoryError(repository.ErrRepositoryFailed, id, err)
}
