package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"bloglist-api/internal/config"
	"bloglist-api/internal/platform/database"
	rabbitmqClient "bloglist-api/internal/platform/rabbitmq"
	redisClient "bloglist-api/internal/platform/redis"
	"bloglist-api/internal/repository"
	"bloglist-api/internal/worker"
)

// App owns every process-wide resource. Redis and RabbitMQ are nil when
// disabled in config.
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	EventWorker *worker.BlogEventWorker

	StartedAt time.Time
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, StartedAt: time.Now()}

	db, err := database.Open(ctx, cfg.Database.Driver, cfg.DatabaseURI())
	if err != nil {
		return nil, err
	}
	app.DB = db
	if err := database.Migrate(db); err != nil {
		_ = app.Close()
		return nil, err
	}
	log.Info().Str("driver", cfg.Database.Driver).Str("env", cfg.App.Env).Msg("connected to database")

	if cfg.Redis.Enabled {
		redisCli, err := redisClient.New(ctx, cfg.Redis)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Redis = redisCli
		log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")
	}

	if cfg.RabbitMQ.Enabled {
		mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.BlogEventQueue)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		app.MQConn = mqConn

		eventRepo := repository.NewBlogEventRepository(db)
		eventWorker := worker.NewBlogEventWorker(mqConn, eventRepo, cfg.RabbitMQ.BlogEventQueue)
		if err := eventWorker.Start(ctx); err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("start blog event worker failed: %w", err)
		}
		app.EventWorker = eventWorker
	}

	return app, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.EventWorker != nil {
		a.EventWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		if err := database.Close(a.DB); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
