// Package redisstore 基于 Redis 的 Item 存储
//
// 键布局（prefix 默认 "itemhub:"）：
//
//	{prefix}item:{id}  JSON 编码的 Item
//	{prefix}items      有序集合，score 为 id，用于按序列出全部 ID
//	{prefix}items:seq  自增序列，为新 Item 分配 ID
package redisstore

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"itemhub/domain/item"
	"itemhub/domain/repository"
	"itemhub/logging"
)

// client 仅声明用到的 go-redis 命令，便于测试替换
type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd
	ZRem(ctx context.Context, key string, members ...any) *redis.IntCmd
	ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Config Redis 存储配置
type Config struct {
	Client    redis.UniversalClient
	Addr      string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	Logger    logging.Logger
}

// Store Redis 实现的 Item 存储
//
// 单条命令在 Redis 端是原子的；Save/Delete 由两条命令组成，
// 中间失败时有序集合可能残留 ID，读取时按缺失处理。
type Store struct {
	client    client
	ownClient bool
	prefix    string
	logger    logging.Logger
}

var (
	_ item.Store         = (*Store)(nil)
	_ repository.IPinger = (*Store)(nil)
)

// NewStore 创建 Redis 存储；未提供 Client 时按 Addr 新建连接并在 Close 时关闭
func NewStore(cfg Config) (*Store, error) {
	var (
		cl  client
		own bool
	)
	if cfg.Client != nil {
		cl = cfg.Client
	} else {
		if cfg.Addr == "" {
			return nil, stdErrors.New("redis address not configured")
		}
		cl = redis.NewClient(&redis.Options{Addr: cfg.Addr, Username: cfg.Username, Password: cfg.Password, DB: cfg.DB})
		own = true
	}
	return newStore(cl, own, cfg.KeyPrefix, cfg.Logger), nil
}

func newStore(cl client, own bool, prefix string, logger logging.Logger) *Store {
	if prefix == "" {
		prefix = "itemhub:"
	}
	if logger == nil {
		logger = logging.ComponentLogger("store.redis")
	}
	return &Store{client: cl, ownClient: own, prefix: prefix, logger: logger}
}

func (s *Store) itemKey(id int64) string { return s.prefix + "item:" + strconv.FormatInt(id, 10) }
func (s *Store) indexKey() string        { return s.prefix + "items" }
func (s *Store) seqKey() string          { return s.prefix + "items:seq" }

func (s *Store) FindAllIDs(ctx context.Context) ([]int64, error) {
	members, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, failed(nil, err)
	}
	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, failed(m, fmt.Errorf("corrupt index member: %w", err))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) FindAll(ctx context.Context) ([]*item.Item, error) {
	ids, err := s.FindAllIDs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*item.Item, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.itemKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, failed(nil, err)
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// 索引残留，实体已删除
			continue
		}
		it, err := decode(raw)
		if err != nil {
			return nil, failed(ids[i], err)
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*item.Item, error) {
	raw, err := s.client.Get(ctx, s.itemKey(id)).Result()
	if stdErrors.Is(err, redis.Nil) {
		return nil, repository.NotFound(id)
	}
	if err != nil {
		return nil, failed(id, err)
	}
	it, err := decode(raw)
	if err != nil {
		return nil, failed(id, err)
	}
	return it, nil
}

// Save 新实体通过 INCR 分配 ID；已有 ID 直接覆盖
func (s *Store) Save(ctx context.Context, it *item.Item) (*item.Item, error) {
	if it == nil || it.ID < 0 {
		return nil, repository.ErrInvalidID
	}
	out := it.Clone()
	if out.IsNew() {
		id, err := s.client.Incr(ctx, s.seqKey()).Result()
		if err != nil {
			return nil, failed(nil, err)
		}
		out.ID = id
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, failed(out.ID, err)
	}
	if err := s.client.Set(ctx, s.itemKey(out.ID), data, 0).Err(); err != nil {
		return nil, failed(out.ID, err)
	}
	member := strconv.FormatInt(out.ID, 10)
	if err := s.client.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(out.ID), Member: member}).Err(); err != nil {
		return nil, failed(out.ID, err)
	}
	return out, nil
}

func (s *Store) ExistsByID(ctx context.Context, id int64) (bool, error) {
	n, err := s.client.Exists(ctx, s.itemKey(id)).Result()
	if err != nil {
		return false, failed(id, err)
	}
	return n > 0, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	if err := s.client.Del(ctx, s.itemKey(id)).Err(); err != nil {
		return failed(id, err)
	}
	if err := s.client.ZRem(ctx, s.indexKey(), strconv.FormatInt(id, 10)).Err(); err != nil {
		s.logger.Warn(ctx, "remove id from index failed", logging.Int64("id", id), logging.Error(err))
	}
	return nil
}

// Ping 实现 repository.IPinger
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 仅关闭由本存储创建的连接
func (s *Store) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}

func decode(raw string) (*item.Item, error) {
	var it item.Item
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return &it, nil
}

func failed(id any, err error) error {
	return repository.NewRepositoryError(repository.ErrRepositoryFailed, id, err)
}
