package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/GuildForge/config"
	"github.com/Gopher0727/GuildForge/internal/discord"
	"github.com/Gopher0727/GuildForge/internal/handlers"
	"github.com/Gopher0727/GuildForge/internal/repositories"
	"github.com/Gopher0727/GuildForge/internal/routers"
	"github.com/Gopher0727/GuildForge/internal/services"
	"github.com/Gopher0727/GuildForge/internal/storage"
	"github.com/Gopher0727/GuildForge/internal/utils"
	logger "github.com/Gopher0727/GuildForge/middleware/log"
	"github.com/Gopher0727/GuildForge/pkg/mq"
	"github.com/Gopher0727/GuildForge/utils/ratelimit"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.toml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	appLogger, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLogger.Close()
	zlog := appLogger.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 初始化存储
	store, closeStore, err := openStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("存储初始化失败", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()

	// 初始化 Redis（可选）：模板缓存 + 创建接口限流
	var limiter ratelimit.Limiter
	if cfg.Redis.Enabled {
		redisClient, err := storage.InitRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, cfg.Redis.MinIdleConns)
		if err != nil {
			zlog.Fatal("redis 初始化失败", zap.Error(err))
		}
		defer redisClient.Close()

		store.Templates = repositories.NewCachedTemplateRepository(store.Templates, redisClient, cfg.Redis.TemplateTTL, zlog)
		limiter = ratelimit.NewFixedWindowLimiter(redisClient, zlog, true)
	}

	// 初始化 Kafka Producer（可选），失败时降级为不发布事件
	var events services.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaProducer, err := mq.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, zlog)
		if err != nil {
			zlog.Warn("Kafka 生产者初始化失败，创建事件将不会发布", zap.Error(err))
		} else {
			defer kafkaProducer.Close()
			events = kafkaProducer
		}
	}

	// 初始化 Discord 机器人，连接在后台建立，Ready 之前创建请求会直接失败
	status := discord.NewStatus()
	bot, err := discord.NewBot(cfg.Discord.Token, status, zlog)
	if err != nil {
		zlog.Fatal("discord 初始化失败", zap.Error(err))
	}
	go func() {
		if err := bot.Open(); err != nil {
			zlog.Error("discord 连接失败，服务器创建不可用", zap.Error(err))
		}
	}()
	defer bot.Close()

	// 单 worker 串行执行所有创建请求
	worker := utils.NewSerialWorker(cfg.Creation.QueueSize, zlog)
	worker.Start()
	defer worker.Stop()

	// 初始化服务层
	builder := services.NewGuildBuilder(bot.API(), status, cfg.Discord.SettleDelay, zlog)
	creationService := services.NewCreationService(store.Templates, store.CreationLogs, builder, worker, events, cfg.Creation.Timeout, zlog)
	templateService := services.NewTemplateService(store.Templates, zlog)
	statusService := services.NewStatusService(status, store.StatusChecks)

	// 初始化处理器
	templateHandler := handlers.NewTemplateHandler(templateService)
	serverHandler := handlers.NewServerHandler(creationService)
	statusHandler := handlers.NewStatusHandler(statusService)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	routers.SetupRoutes(r, appLogger, limiter, ratelimit.CreateServerRule(cfg.RateLimit.CreatePerMinute),
		templateHandler,
		serverHandler,
		statusHandler,
	)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: r,
	}

	go func() {
		zlog.Info("正在启动服务器", zap.Int("port", cfg.Server.Port), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("启动服务器失败", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("正在关闭服务器")

	// 等待进行中的请求返回，最长为一次创建的超时时间
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Creation.Timeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("服务器关闭失败", zap.Error(err))
	}
}

// openStore 按 storage.driver 打开文档存储，返回的 close 函数释放连接
func openStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*repositories.Store, func(), error) {
	switch cfg.Storage.Driver {
	case "mongo":
		client, db, err := storage.InitMongo(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.ConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				zlog.Warn("mongo disconnect failed", zap.Error(err))
			}
		}
		if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		return repositories.NewMongoStore(db), closeFn, nil

	case "postgres":
		dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
		db, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repositories.NewGormStore(db), closeFn, nil

	default:
		zlog.Warn("using in-memory storage, data is lost on restart")
		return repositories.NewMemoryStore(), func() {}, nil
	}
}
