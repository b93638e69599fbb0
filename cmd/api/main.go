package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"go-gin-marketplace/internal/core/auth"
	"go-gin-marketplace/internal/core/cache"
	"go-gin-marketplace/internal/core/config"
	"go-gin-marketplace/internal/core/database"
	"go-gin-marketplace/internal/core/logger"
	"go-gin-marketplace/internal/core/server"
	"go-gin-marketplace/internal/domain"
	"go-gin-marketplace/internal/geocode"
	"go-gin-marketplace/internal/repo"
	"go-gin-marketplace/internal/service"
	"go-gin-marketplace/internal/storage/image"
	"go-gin-marketplace/internal/transport/http/handler"
	mdw "go-gin-marketplace/internal/transport/http/middleware"
	"go-gin-marketplace/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File != "",
			Filename:   cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		},
	})
	defer cleanup()
	defer logger.RedirectStdLog(log)()

	ctx := context.Background()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.AutoMigrate(db, &domain.User{}, &domain.Product{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 依赖
	rc := openCache(ctx, cfg, log)
	if rc != nil {
		defer rc.Close()
	}
	geo := geocode.WithCache(
		geocode.NewOpenCage(cfg.Geocode.BaseURL, cfg.Geocode.APIKey, time.Duration(cfg.Geocode.TimeoutSec)*time.Second),
		rc,
		time.Duration(cfg.Geocode.CacheTTLSec)*time.Second,
	)
	images := mustImageStore(ctx, cfg, log)
	authn := mdw.Authenticate(mustVerifier(ctx, cfg, log))

	users := service.NewUserService(repo.NewUserRepo(db))
	products := service.NewProductService(repo.NewProductRepo(db))

	r := router.NewAPIEngine(log, cfg.Limits,
		handler.NewUserHandler(users, authn),
		handler.NewProductHandler(products, images, authn),
		handler.NewGeocodeHandler(geo),
	)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("marketplace api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api", baseURL+"/api"),
		zap.String("auth_mode", cfg.Auth.Mode),
		zap.String("storage", cfg.Storage.Driver),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("marketplace api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("marketplace api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel),
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

// openCache 未配置或连不上 redis 时返回 nil，地理编码直连上游
func openCache(ctx context.Context, cfg *config.Config, l *zap.Logger) *cache.Cache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.App.Name+":")
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		l.Warn("redis unavailable, geocode cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return c
}

func mustImageStore(ctx context.Context, cfg *config.Config, l *zap.Logger) image.Store {
	if cfg.Storage.Driver != "s3" {
		return image.NewInline()
	}
	s3c := cfg.Storage.S3
	st, err := image.NewS3(ctx, image.S3Options{
		Bucket:        s3c.Bucket,
		Region:        s3c.Region,
		Endpoint:      s3c.Endpoint,
		Prefix:        s3c.Prefix,
		PublicBaseURL: s3c.PublicBaseURL,
		PathStyle:     s3c.PathStyle,
		AccessKey:     s3c.AccessKey,
		SecretKey:     s3c.SecretKey,
	})
	if err != nil {
		l.Fatal("s3 init", zap.Error(err))
	}
	return st
}

// mustVerifier auth.mode=none 返回 nil，中间件直接放行
func mustVerifier(ctx context.Context, cfg *config.Config, l *zap.Logger) auth.Verifier {
	switch cfg.Auth.Mode {
	case "firebase":
		v, err := auth.NewFirebaseVerifier(ctx, cfg.Auth.Firebase.CredentialsPath, cfg.Auth.Firebase.ProjectID)
		if err != nil {
			l.Fatal("firebase init", zap.Error(err))
		}
		return v
	case "jwt":
		return &auth.JWTer{
			Secret: []byte(cfg.Auth.JWT.Secret),
			Issuer: cfg.Auth.JWT.Issuer,
			TTL:    time.Duration(cfg.Auth.JWT.TokenTTLMin) * time.Minute,
		}
	default:
		return nil
	}
}
