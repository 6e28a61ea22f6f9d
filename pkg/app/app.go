// Package app boots the process-wide resources every tiffin command shares
// and runs the HTTP server around them.
//
//	rt, err := app.Boot(ctx)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	c := providers.Build(providers.Deps{DB: rt.DB, Bus: rt.Bus, Publisher: rt.Publisher})
//	return rt.Serve(ctx, app.Handler(c.Routes()))
package app

import (
	"context"
	"fmt"

	"github.com/tiffinbox/tiffin/config"
	"github.com/tiffinbox/tiffin/pkg/broker"
	"github.com/tiffinbox/tiffin/pkg/cache"
	"github.com/tiffinbox/tiffin/pkg/database"
	"github.com/tiffinbox/tiffin/pkg/event"
	"github.com/tiffinbox/tiffin/pkg/logger"
	"github.com/tiffinbox/tiffin/pkg/queue"
	"github.com/tiffinbox/tiffin/pkg/schedule"
	"github.com/tiffinbox/tiffin/pkg/storage"
	"github.com/tiffinbox/tiffin/pkg/workerpool"
	"gorm.io/gorm"
)

// listenerPoolSize bounds the goroutines running event listeners.
const listenerPoolSize = 8

// Runtime is what Boot connected. Close releases it in reverse order.
type Runtime struct {
	DB        *gorm.DB
	Bus       *event.Bus
	Publisher broker.Publisher
	Scheduler *schedule.Scheduler

	pool    *workerpool.Pool
	closers []func()
}

// BootDB loads config and connects only the database. Migration and seed
// commands need nothing else.
func BootDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.Connect(); err != nil {
		return nil, err
	}
	return database.DB, nil
}

// Boot loads config, configures logging and connects the database, cache,
// storage, queue driver and broker. Redis and RabbitMQ are optional: when
// they are unreachable the cache degrades to the database, the queue stays
// in memory and events are not published.
func Boot(ctx context.Context) (*Runtime, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	rt := &Runtime{Scheduler: schedule.New()}

	closeLog, err := logger.Configure()
	if err != nil {
		logger.Warn("logger: mongo sink disabled", "error", err)
	}
	rt.closers = append(rt.closers, closeLog)

	if err := database.Connect(); err != nil {
		rt.Close()
		return nil, err
	}
	rt.DB = database.DB
	rt.closers = append(rt.closers, func() { _ = database.Close() })
	queue.UseDB(rt.DB)

	if err := cache.Connect(); err != nil {
		logger.Warn("cache: running without redis", "error", err)
	} else {
		rt.closers = append(rt.closers, func() { _ = cache.Close() })
	}

	if config.QueueDriver() == "redis" {
		if cache.RDB == nil {
			logger.Warn("queue: redis unavailable, using memory driver")
		} else {
			queue.SetDriver(queue.NewRedisDriver(ctx, cache.RDB))
		}
	}

	if err := storage.Connect(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}

	rt.Publisher = broker.Nop{}
	if url := config.AMQPURL(); url != "" {
		p, err := broker.Dial(url, config.AMQPExchange())
		if err != nil {
			logger.Warn("broker: publishing disabled", "error", err)
		} else {
			rt.Publisher = p
		}
	}
	rt.closers = append(rt.closers, func() { _ = rt.Publisher.Close() })

	rt.pool = workerpool.New(listenerPoolSize)
	rt.closers = append(rt.closers, rt.pool.Shutdown)
	rt.Bus = event.NewBus(rt.pool)
	event.SetDefault(rt.Bus)

	return rt, nil
}

// Close runs the closers registered by Boot, newest first. The listener pool
// drains before the broker closes so queued events can still publish.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
