package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/truco-server/internal/config"
	"github.com/palemoky/truco-server/internal/logger"
	"github.com/palemoky/truco-server/internal/server"
	"github.com/palemoky/truco-server/internal/server/storage"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, loadErr := config.Load(*configPath)
	if loadErr != nil {
		cfg = config.Default()
	}

	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	if loadErr != nil {
		if errors.Is(loadErr, fs.ErrNotExist) {
			log.Info("未找到配置文件，使用默认配置", zap.String("path", *configPath))
		} else {
			log.Fatal("加载配置文件失败", zap.String("path", *configPath), zap.Error(loadErr))
		}
	}
	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis 连接失败", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	db, err := storage.OpenPostgres(cfg.Database.DSN)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	if db == nil {
		log.Info("未配置数据库，大厅台账关闭")
	} else if sqlDB, err := db.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}

	srv, err := server.New(cfg, server.Options{Redis: rdb, DB: db, Logger: log})
	if err != nil {
		log.Fatal("创建服务器失败", zap.Error(err))
	}

	// 进程重启后内存中的对局无法恢复，清掉上次留下的快照和台账
	if err := srv.Rooms().PurgeSnapshots(ctx); err != nil {
		log.Warn("清理房间快照失败", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	log.Info("🃏 Truco 服务器启动中...", zap.String("mode", cfg.Server.Mode))
	select {
	case sig := <-quit:
		log.Info("收到退出信号，开始优雅关闭", zap.String("signal", sig.String()))
		srv.GracefulShutdown(cfg.Server.ShutdownWaitDuration())
	case err := <-errCh:
		if err != nil {
			log.Error("服务器异常退出", zap.Error(err))
		}
		srv.Shutdown(context.Background())
	}
}
