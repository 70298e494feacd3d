package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"demo-auth/internal/config"
	apphttp "demo-auth/internal/http"
	"demo-auth/internal/password"
	"demo-auth/internal/repository/sqlite"
	"demo-auth/internal/service"
	"demo-auth/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.Secret) == "" {
		logger.Fatalf("auth signing secret is required")
	}
	if cfg.Auth.TokenTTLSeconds <= 0 {
		logger.Fatalf("auth token ttl must be positive")
	}
	if strings.TrimSpace(cfg.Auth.AdminPassword) == "" {
		logger.Fatalf("auth admin password is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}

	hasher := password.NewHasher(bcrypt.DefaultCost)
	codec := token.NewCodec([]byte(cfg.Auth.Secret), cfg.Auth.Issuer)
	ttl := time.Duration(cfg.Auth.TokenTTLSeconds) * time.Second
	creds := service.NewCredentialService(userRepo, hasher, codec, cfg.Auth.Issuer, ttl)

	created, err := creds.EnsureAdmin(ctx, cfg.Auth.AdminPassword)
	if err != nil {
		logger.Fatalf("bootstrap admin user: %v", err)
	}
	if created {
		logger.Infof("created %s user at first boot", service.AdminUsername)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	apphttp.NewHandler(creds).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s (issuer %s, token ttl %s)", cfg.Server.Addr, cfg.Auth.Issuer, ttl)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
