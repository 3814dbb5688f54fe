package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	custodyapp "github.com/wyfcoding/optionvault/internal/custody/application"
	custodydomain "github.com/wyfcoding/optionvault/internal/custody/domain"
	custodymysql "github.com/wyfcoding/optionvault/internal/custody/infrastructure/persistence/mysql"
	"github.com/wyfcoding/optionvault/internal/option/application"
	"github.com/wyfcoding/optionvault/internal/option/domain"
	"github.com/wyfcoding/optionvault/internal/option/infrastructure/messaging"
	"github.com/wyfcoding/optionvault/internal/option/infrastructure/persistence"
	"github.com/wyfcoding/optionvault/internal/option/infrastructure/persistence/mysql"
	optionredis "github.com/wyfcoding/optionvault/internal/option/infrastructure/persistence/redis"
	"github.com/wyfcoding/optionvault/internal/option/interfaces/consumer"
	httpserver "github.com/wyfcoding/optionvault/internal/option/interfaces/http"
	positionapp "github.com/wyfcoding/optionvault/internal/position/application"
	positiondomain "github.com/wyfcoding/optionvault/internal/position/domain"
	positionmysql "github.com/wyfcoding/optionvault/internal/position/infrastructure/persistence/mysql"
	"github.com/wyfcoding/pkg/cache"
	"github.com/wyfcoding/pkg/config"
	"github.com/wyfcoding/pkg/database"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/pkg/messagequeue/outbox"
	"github.com/wyfcoding/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

var configPath = flag.String("config", "configs/optionvault/config.toml", "config file path")

func main() {
	flag.Parse()

	// 1. 配置
	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. 日志
	logCfg := &logging.Config{
		Service:    cfg.Server.Name,
		Module:     "optionvault",
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}
	logger := logging.NewFromConfig(logCfg)
	slog.SetDefault(logger.Logger)

	// 3. 指标
	metricsImpl := metrics.NewMetrics(cfg.Server.Name)
	if cfg.Metrics.Enabled {
		go metricsImpl.ExposeHTTP(cfg.Metrics.Port)
	}

	// 4. 基础设施
	db, err := database.NewDB(cfg.Data.Database, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}

	if cfg.Server.Environment == "dev" {
		if err := db.RawDB().AutoMigrate(
			&domain.Issuance{},
			&mysql.CounterPO{},
			&mysql.EventPO{},
			&positiondomain.Position{},
			&custodydomain.TokenContract{},
			&custodydomain.Holding{},
			&custodydomain.TransferRecord{},
			&outbox.Message{},
		); err != nil {
			slog.Error("failed to migrate database", "error", err)
		}
	}

	// 5. Kafka & Outbox
	kafkaProducer := kafka.NewProducer(&cfg.MessageQueue.Kafka, logger, metricsImpl)
	outboxMgr := outbox.NewManager(db.RawDB(), logger.Logger)
	pusher := func(ctx context.Context, topic, key string, payload []byte) error {
		return kafkaProducer.PublishToTopic(ctx, topic, []byte(key), payload)
	}
	outboxProcessor := outbox.NewProcessor(outboxMgr, pusher, 100, 2*time.Second)

	// 6. 仓储
	redisCache, err := cache.NewRedisCache(&cfg.Data.Redis, cfg.CircuitBreaker, logger, metricsImpl)
	if err != nil {
		slog.Error("failed to init redis", "error", err)
	}

	mysqlRepo := mysql.NewIssuanceRepository(db.RawDB())
	redisRepo := optionredis.NewIssuanceRedisRepository(redisCache.GetClient())
	queryRepo := persistence.NewCompositeIssuanceRepository(mysqlRepo, redisRepo)

	eventStore := mysql.NewEventStore(db.RawDB())
	outboxPub := messaging.NewOutboxPublisher(outboxMgr)

	positionRepo := positionmysql.NewPositionRepository(db.RawDB())
	ledger := positionapp.NewLedger(positionRepo)

	vaultSvc := custodyapp.NewVaultService(custodymysql.NewVaultRepository(db.RawDB()))
	agent := vaultSvc.Agent(cfg.Server.Name)

	// 7. 应用服务
	// 命令路径直连 MySQL 仓储，读模型仅服务查询
	appService := application.NewOptionService(mysqlRepo, queryRepo, eventStore, outboxPub, ledger, agent, vaultSvc)

	projectionSvc := application.NewIssuanceProjectionService(mysqlRepo, redisRepo, logger.Logger)
	projectionHandler := consumer.NewIssuanceProjectionHandler(projectionSvc, logger.Logger)

	projectionTopics := []string{
		domain.IssuanceCreatedEventType,
		domain.OptionsBoughtEventType,
		domain.IssuanceCanceledEventType,
		domain.PremiumUpdatedEventType,
		domain.OptionsExercisedEventType,
		domain.CollateralReclaimedEventType,
	}
	projectionConsumers := make([]*kafka.Consumer, 0, len(projectionTopics))
	for _, topic := range projectionTopics {
		consumerCfg := cfg.MessageQueue.Kafka
		consumerCfg.Topic = topic
		if consumerCfg.GroupID == "" {
			consumerCfg.GroupID = "optionvault-projection-group"
		}
		c := kafka.NewConsumer(&consumerCfg, logger, metricsImpl)
		c.Start(context.Background(), 3, projectionHandler.Handle)
		projectionConsumers = append(projectionConsumers, c)
	}

	// 8. 接口层
	gin.SetMode(gin.ReleaseMode)
	if cfg.Server.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	httpHandler := httpserver.NewOptionHandler(appService)
	httpHandler.RegisterRoutes(r.Group(""))

	// 9. 启动
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		outboxProcessor.Start()
		<-ctx.Done()
		outboxProcessor.Stop()
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTP.Port)
		server := &http.Server{Addr: addr, Handler: r}
		slog.Info("HTTP server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// 10. 优雅关闭
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down servers...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}
		for _, c := range projectionConsumers {
			if c != nil {
				_ = c.Close()
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
