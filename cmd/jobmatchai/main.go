package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzerolog "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Abdullah-Asgher/JobMatchAI/internal/aggregator"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/api/handler"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/api/router"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/config"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/constants"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/dedup"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/logger"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/normalizer"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/outbox"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/source"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/storage"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/tracing"
	"github.com/Abdullah-Asgher/JobMatchAI/internal/tracker"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "配置文件路径")
	listenAddr := pflag.String("addr", "", "监听地址，覆盖配置文件")
	pflag.Parse()

	// .env 提供外部API凭证，缺失时忽略
	_ = godotenv.Load()

	// 初始化日志系统
	initLogger(*configPath)

	// 1. 加载配置文件
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置文件失败")
	}
	if *listenAddr != "" {
		cfg.Server.Address = *listenAddr
	}

	// 2. 初始化链路追踪
	ctx := context.Background()
	shutdownTracing, err := tracing.InitTracerProvider(ctx, cfg.TracingEndpoint, constants.AppName, constants.AppVersion)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("关闭链路追踪失败")
		}
	}()

	// 3. 初始化存储管理器
	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储管理器失败")
	}
	defer storageManager.Close()

	// 4. 组装聚合搜索流水线
	agg := aggregator.New(
		buildSourceClients(cfg),
		normalizer.NewNormalizer(cfg.Aggregator),
		dedup.NewDeduplicator(cfg.Scoring.Dedup),
		cfg.Aggregator.FetchTimeout(),
	)

	// 5. 初始化业务处理器
	resumeHandler := handler.NewResumeHandler(cfg, storageManager)
	searchHandler := handler.NewJobSearchHandler(cfg, storageManager, agg, resumeHandler)

	var applicationHandler *handler.ApplicationHandler
	if storageManager.MySQL != nil {
		trackerService := tracker.NewService(storageManager.MySQL, &cfg.RabbitMQ)
		applicationHandler = handler.NewApplicationHandler(trackerService)
	} else {
		logger.Fatal().Msg("MySQL未初始化，申请跟踪不可用")
	}

	// 6. 启动outbox消息中继
	var relay *outbox.MessageRelay
	if storageManager.RabbitMQ != nil {
		relay = outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ)
		relay.Start()
		defer relay.Stop()
	} else {
		logger.Warn().Msg("RabbitMQ未初始化，申请事件不会被投递")
	}

	// 7. 创建HTTP服务器
	hlog.SetLogger(hertzzerolog.New())
	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		tracer,
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	// 8. 注册路由
	router.RegisterRoutes(h, resumeHandler, searchHandler, applicationHandler)

	// 9. 启动HTTP服务器
	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	// 10. 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	// 11. 优雅关闭HTTP服务器
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("服务器关闭失败")
	}

	logger.Info().Msg("优雅退出完成")
}

// buildSourceClients 按配置组装启用的外部职位来源
func buildSourceClients(cfg *config.Config) []source.Client {
	timeout := cfg.Aggregator.FetchTimeout()
	var clients []source.Client
	if cfg.Sources.Adzuna.Enabled {
		clients = append(clients, source.NewAdzunaClient(cfg.Sources.Adzuna, timeout))
	}
	if cfg.Sources.Reed.Enabled {
		clients = append(clients, source.NewReedClient(cfg.Sources.Reed, timeout))
	}
	if cfg.Sources.JSearch.Enabled {
		clients = append(clients, source.NewJSearchClient(cfg.Sources.JSearch, timeout))
	}
	return clients
}

// 初始化日志系统
func initLogger(configPath string) {
	// 默认开发环境使用美化输出，生产环境使用JSON格式
	isProduction := os.Getenv("ENV") == "production"

	// 尝试加载配置文件
	cfg, err := config.LoadConfig(configPath)

	logConfig := logger.Config{
		Level:        "debug",
		Format:       "pretty",
		TimeFormat:   time.RFC3339,
		ReportCaller: true,
	}

	// 如果配置文件成功加载，使用配置文件中的日志设置
	if err == nil && cfg != nil {
		logConfig.Level = cfg.Logger.Level
		logConfig.Format = cfg.Logger.Format
		logConfig.TimeFormat = cfg.Logger.TimeFormat
		logConfig.ReportCaller = cfg.Logger.ReportCaller
	} else if isProduction {
		logConfig.Level = "info"
		logConfig.Format = "json"
		logConfig.ReportCaller = false
	}

	logger.Init(logConfig)

	// 设置全局字段
	logger.Logger = logger.Logger.With().
		Str("app", constants.AppName).
		Str("version", constants.AppVersion).
		Logger()
}
