// Package app 按配置装配存储、批处理、通知与 HTTP 路由
package app

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io"
	"os"

	_ "modernc.org/sqlite"

	"itemhub/app/api"
	"itemhub/cache"
	"itemhub/config"
	core "itemhub/data/db"
	"itemhub/data/db/basic"
	"itemhub/data/store/cached"
	"itemhub/data/store/memory"
	"itemhub/data/store/redisstore"
	"itemhub/data/store/sqlstore"
	"itemhub/domain/item"
	"itemhub/domain/service"
	httpbasic "itemhub/http/basic"
	"itemhub/logging"
	"itemhub/messaging"
	msgmem "itemhub/messaging/memory"
	"itemhub/messaging/natspub"
	"itemhub/processing"
	"itemhub/server"
)

// App 一次进程运行所需的全部依赖
type App struct {
	Config    *config.Config
	Logger    logging.Logger
	Store     item.Store
	Pool      *processing.Pool
	Processor *processing.BulkProcessor
	Publisher messaging.IPublisher
	Service   *service.ItemService

	closers []*server.CloserComponent
}

// NewLogger 按配置创建日志实现，w 为 nil 时输出到 stderr
func NewLogger(cfg config.LoggingConfig, w io.Writer) logging.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := logging.ParseLevel(cfg.Level)
	switch cfg.Format {
	case "json":
		return logging.NewZerologLogger(w, level, false)
	case "std":
		return logging.NewStdLogger("[itemhub] ").WithLevel(level)
	default:
		return logging.NewZerologLogger(w, level, true)
	}
}

// New 装配应用；返回错误时已创建的资源会被释放
//
// 工作池在此处创建但不启动：serve 模式交给 server.PoolComponent 管理，
// 一次性命令调用 StartPool。
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	a := &App{Config: cfg, Logger: logger}

	store, err := a.buildStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = store

	pub, err := a.buildPublisher()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Publisher = pub

	a.Pool = processing.NewPool(processing.PoolConfig{
		Workers:   cfg.Processor.Workers,
		QueueSize: cfg.Processor.QueueSize,
		Logger:    logger.WithFields(logging.String("component", "pool")),
	})
	a.Processor = processing.NewBulkProcessor(a.Store, a.Pool, processing.Config{
		Delay:   cfg.Processor.Delay,
		Timeout: cfg.Processor.Timeout,
		Logger:  logger.WithFields(logging.String("component", "processing")),
	})
	a.Service = service.NewItemService(a.Store, a.Processor, a.Publisher)
	return a, nil
}

func (a *App) buildStore(ctx context.Context) (item.Store, error) {
	sc := a.Config.Store

	var store item.Store
	switch sc.Driver {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreSQLite:
		// sqlite 单写者，单连接避免并发保存时的 SQLITE_BUSY
		db, err := basic.New(ctx, core.DBConfig{Driver: "sqlite", DSN: sc.DSN, MaxOpenConns: 1})
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.addCloser("sqlite", db)
		if err := db.ExecDDL(ctx, sqlstore.SchemaSQLite); err != nil {
			return nil, err
		}
		store = sqlstore.NewStore(db)
	case config.StoreRedis:
		rs, err := redisstore.NewStore(redisstore.Config{
			Addr:      sc.Redis.Addr,
			Username:  sc.Redis.Username,
			Password:  sc.Redis.Password,
			DB:        sc.Redis.DB,
			KeyPrefix: sc.Redis.KeyPrefix,
			Logger:    a.Logger.WithFields(logging.String("component", "redisstore")),
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		a.addCloser("redis", rs)
		store = rs
	default:
		return nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}

	if sc.Cache.Enabled {
		c := cache.New[int64, *item.Item](cache.Config{
			Name:    "items",
			MaxSize: sc.Cache.MaxSize,
			TTL:     sc.Cache.TTL,
		})
		store = cached.New(store, c)
	}
	a.Logger.Info(ctx, "store ready",
		logging.String("driver", sc.Driver),
		logging.Bool("cache", sc.Cache.Enabled))
	return store, nil
}

func (a *App) buildPublisher() (messaging.IPublisher, error) {
	ec := a.Config.Events
	switch ec.Driver {
	case config.EventsNone, "":
		return messaging.NoopPublisher{}, nil
	case config.EventsMemory:
		pub := msgmem.NewPublisher()
		pub.Subscribe(service.EventItemsProcessed, a.logProcessed)
		a.addCloser("events", pub)
		return pub, nil
	case config.EventsNATS:
		pub, err := natspub.NewPublisher(natspub.Config{
			URL:           ec.URL,
			Name:          "itemhub",
			SubjectPrefix: ec.SubjectPrefix,
			Logger:        a.Logger.WithFields(logging.String("component", "natspub")),
		})
		if err != nil {
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		a.addCloser("events", pub)
		return pub, nil
	default:
		return nil, fmt.Errorf("unknown events driver %q", ec.Driver)
	}
}

func (a *App) logProcessed(ctx context.Context, msg messaging.IMessage) error {
	if p, ok := msg.GetPayload().(service.ItemsProcessed); ok {
		a.Logger.Info(ctx, "items processed",
			logging.String("run_id", p.RunID),
			logging.Int("processed", p.Processed),
			logging.Int("skipped", p.Skipped))
	}
	return nil
}

func (a *App) addCloser(name string, c io.Closer) {
	a.closers = append(a.closers, server.NewCloserComponent(name, c))
}

// HTTPServer 创建注册好 Item 路由与通用中间件的服务器
func (a *App) HTTPServer() (*httpbasic.HttpServer, error) {
	srv := httpbasic.NewHTTPServer(&a.Config.Server)
	httpLogger := a.Logger.WithFields(logging.String("component", "http"))
	srv.Use(httpbasic.RequestID(), httpbasic.AccessLog(httpLogger), httpbasic.Recovery(httpLogger))
	if err := api.NewRouteBuilder(a.Service).Register(srv); err != nil {
		return nil, err
	}
	return srv, nil
}

// Components serve 模式下交给 server.Manager 的组件，关闭顺序为 HTTP、工作池、资源
func (a *App) Components(srv *httpbasic.HttpServer) []server.Component {
	components := make([]server.Component, 0, len(a.closers)+2)
	for _, c := range a.closers {
		components = append(components, c)
	}
	components = append(components, server.NewPoolComponent(a.Pool))
	components = append(components, server.NewHTTPComponent(srv, a.Config.Addr()))
	return components
}

// StartPool 一次性命令使用，serve 模式下由 Manager 启动
func (a *App) StartPool() error { return a.Pool.Start() }

// Close 释放工作池与全部资源，用于非 serve 模式
func (a *App) Close() error {
	var errs []error
	if a.Pool != nil {
		if err := a.Pool.Close(); err != nil && !stdErrors.Is(err, processing.ErrPoolClosed) {
			errs = append(errs, err)
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Stop(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", a.closers[i].Name(), err))
		}
	}
	a.closers = nil
	return stdErrors.Join(errs...)
}
