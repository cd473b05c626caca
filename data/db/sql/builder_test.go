package sql

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "itemhub/data/db"
)

// recordingDB 记录执行过的语句，不连接真实数据库
type recordingDB struct {
	core.IDatabase
	dialectName string
	queries     []string
	args        [][]any
	failFirst   error
}

func (r *recordingDB) GetDialectName() string { return r.dialectName }

func (r *recordingDB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	if err := r.failFirst; err != nil {
		r.failFirst = nil
		return nil, err
	}
	return nil, nil
}

func TestSelectBuilder_Build(t *testing.T) {
	s := New(&recordingDB{dialectName: "sqlite"})

	q, args := s.Select("id", "name").From("items").Where("id = ?", 7).OrderBy("id").Limit(1).Build()
	assert.Equal(t, `SELECT "id", "name" FROM "items" WHERE id = ? ORDER BY id LIMIT ?`, q)
	assert.Equal(t, []any{7, 1}, args)

	q, _ = s.Select().From("items").Build()
	assert.Equal(t, `SELECT * FROM "items"`, q)
}

func TestSelectBuilder_RejectsUnsafeIdentifiers(t *testing.T) {
	s := New(&recordingDB{dialectName: "sqlite"})
	assert.Panics(t, func() { s.Select("id").From("items; DROP TABLE items").Build() })
	assert.Panics(t, func() { s.Select("1id").From("items").Build() })
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	s := New(&recordingDB{dialectName: "mysql"})
	q, args := s.InsertInto("items").Columns("name", "status").Values("a", "NEW").Values("b", "NEW").Build()
	assert.Equal(t, "INSERT INTO `items` (`name`, `status`) VALUES (?, ?), (?, ?)", q)
	assert.Equal(t, []any{"a", "NEW", "b", "NEW"}, args)

	assert.Panics(t, func() { s.InsertInto("items").Columns("name").Values("a", "b").Build() })
}

func TestDeleteBuilder_RequiresWhere(t *testing.T) {
	s := New(&recordingDB{dialectName: "sqlite"})
	assert.Panics(t, func() { s.DeleteFrom("items").Build() })

	q, args := s.DeleteFrom("items").Where("id = ?", 1).Build()
	assert.Equal(t, `DELETE FROM "items" WHERE id = ?`, q)
	assert.Equal(t, []any{1}, args)
}

func TestUpsertBuilder_NativeSQLite(t *testing.T) {
	db := &recordingDB{dialectName: "sqlite"}
	s := New(db)

	_, err := s.UpsertInto("items").Columns("id", "name").Values(1, "a").Key("id").Exec(context.Background())
	require.NoError(t, err)
	require.Len(t, db.queries, 1)
	assert.Equal(t,
		`INSERT INTO "items" ("id", "name") VALUES (?, ?) ON CONFLICT ("id") DO UPDATE SET "name" = excluded."name"`,
		db.queries[0])
}

func TestUpsertBuilder_FallbackUpdateOnConflict(t *testing.T) {
	db := &recordingDB{dialectName: "unknown", failFirst: stdErrors.New("duplicate key value violates unique constraint")}
	s := New(db)

	_, err := s.UpsertInto("items").Columns("id", "name", "status").Values(7, "a", "PROCESSED").Key("id").Exec(context.Background())
	require.NoError(t, err)
	require.Len(t, db.queries, 2)
	assert.Equal(t, "INSERT INTO items (id, name, status) VALUES (?, ?, ?)", db.queries[0])
	assert.Equal(t, "UPDATE items SET name = ?, status = ? WHERE id = ?", db.queries[1])
	assert.Equal(t, []any{"a", "PROCESSED", 7}, db.args[1])
}

func TestUpsertBuilder_Validation(t *testing.T) {
	s := New(&recordingDB{dialectName: "sqlite"})
	_, err := s.UpsertInto("items").Columns("id").Values(1).Exec(context.Background())
	assert.Error(t, err)

	_, err = s.UpsertInto("items").Columns("name").Values("a").Key("id").Exec(context.Background())
	assert.Error(t, err)
}
