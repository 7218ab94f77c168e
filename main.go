package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tripbudget/api"
	"tripbudget/config"
	"tripbudget/database"
	"tripbudget/middleware"
	"tripbudget/realtime"
	"tripbudget/router"
	"tripbudget/service"

	"github.com/shopspring/decimal"
)

// @title 旅行预算账本 API
// @version 1.0
// @description 行程共享预算、支出分摊、成员余额与结算记录
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

// directory 成员与展示信息来源
type directory interface {
	service.MembershipProvider
	service.ProfileResolver
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Println("旅行预算账本 v1.0.0")
		return
	}

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		slog.Error("加载配置失败", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// 金额以数字输出
	decimal.MarshalJSONWithoutQuotes = true

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		logger.Info("命令行指定端口", "port", port)
	}

	config.PrintConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("服务异常退出", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.Server.LogLevel)}
	if cfg.Server.Mode == "release" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(cfg *config.Config, logger *slog.Logger) error {
	store, dir, err := openStores(cfg)
	if err != nil {
		return err
	}

	policy, err := service.SettlementPolicyByName(cfg.Ledger.SettlementPolicy)
	if err != nil {
		return err
	}

	// 初始化 JWT
	middleware.InitJWT(cfg)

	// 事件投递：websocket + 可选 AMQP + 可选结算邮件，经队列异步发送
	hub := realtime.NewHub(logger)
	sinks := []realtime.Sink{hub}
	var amqp *realtime.AMQPPublisher
	if cfg.Notifier.AMQP.Enabled {
		amqp, err = realtime.NewAMQPPublisher(logger, cfg.Notifier.AMQP.URL, cfg.Notifier.AMQP.Exchange)
		if err != nil {
			return fmt.Errorf("连接 AMQP 失败: %w", err)
		}
		sinks = append(sinks, amqp)
	}
	if cfg.Email.Enabled {
		sinks = append(sinks, service.NewEmailService(logger, &cfg.Email, dir))
	}
	dispatcher := realtime.NewDispatcher(logger, realtime.NewFanout(sinks...), cfg.Notifier.QueueSize)
	dispatcher.Start()

	access := service.NewAccessResolver(dir)
	expenseLog := service.NewExpenseLog(access, store, dir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := router.SetupRouter(ctx, cfg, router.Handlers{
		Budget: api.NewBudgetHandler(
			service.NewBudgetEditor(logger, access, store, dispatcher),
			service.NewBalanceCalculator(logger, access, store, dir),
		),
		Ledger: api.NewLedgerHandler(
			service.NewExpenseRecorder(logger, access, store, dir, dispatcher),
			service.NewSettlementProcessor(logger, access, store, dispatcher, policy),
			expenseLog,
		),
		Export:   api.NewExportHandler(expenseLog),
		Realtime: api.NewRealtimeHandler(access, hub),
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("旅行预算账本已启动",
			"api", fmt.Sprintf("http://localhost%s/api/v1/", cfg.Server.Port),
			"swagger", fmt.Sprintf("http://localhost%s/swagger/index.html", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
	case <-ctx.Done():
		logger.Info("收到退出信号，正在关闭")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP 服务关闭超时", "error", err)
	}

	// 先排空事件队列，再关闭各投递通道
	dispatcher.Shutdown()
	hub.Close()
	if amqp != nil {
		if err := amqp.Close(); err != nil {
			logger.Warn("关闭 AMQP 连接失败", "error", err)
		}
	}
	if dropped := dispatcher.Dropped(); dropped > 0 {
		logger.Warn("队列已满丢弃的事件", "count", dropped)
	}
	return nil
}

// openStores 按 ledger.store 选择存储后端
func openStores(cfg *config.Config) (service.LedgerStore, directory, error) {
	switch cfg.Ledger.Store {
	case config.StoreMemory:
		dir := database.NewMemoryDirectory()
		database.SeedMemoryDirectory(dir, cfg.Ledger.Seed)
		slog.Warn("使用内存存储，重启后账本数据丢失",
			"itineraries", len(cfg.Ledger.Seed.Itineraries))
		return database.NewMemoryLedgerStore(), dir, nil
	default:
		if err := database.Init(cfg); err != nil {
			return nil, nil, fmt.Errorf("数据库初始化失败: %w", err)
		}
		db := database.GetDB()
		return database.NewLedgerStore(db), database.NewDirectory(db), nil
	}
}
