package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/zonemap-backend-go/internal/api"
	"github.com/jengzang/zonemap-backend-go/internal/config"
	"github.com/jengzang/zonemap-backend-go/internal/database"
	"github.com/jengzang/zonemap-backend-go/internal/handler"
	"github.com/jengzang/zonemap-backend-go/internal/logging"
	"github.com/jengzang/zonemap-backend-go/internal/middleware"
	"github.com/jengzang/zonemap-backend-go/internal/repository"
	"github.com/jengzang/zonemap-backend-go/internal/service"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", os.Getenv("ZONEMAP_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// .env.local is optional; real environment variables win
	_ = godotenv.Load(".env.local")

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	logging.SetDefault(log)
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	go limiter.Run(ctx)

	repo := repository.NewZoneRepository(database.GetDB())
	svc := service.NewZoneService(repo, cfg, log)

	// 初始化路由
	router := api.SetupRouter(api.Deps{
		Zones:   handler.NewZoneHandler(svc),
		Limiter: limiter,
		Logger:  log,
	})

	// 启动服务器
	ln, err := net.Listen("tcp", cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	log.Info("[Server] starting", logging.String("port", cfg.Port), logging.String("db", cfg.DBPath))

	// Serve returns only after in-flight requests drained, before the
	// deferred database.Close runs.
	return api.Serve(ctx, api.NewServer(router), ln, cfg.ShutdownTimeout, log)
}
