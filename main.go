package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"

	"powerauthserver/config"
	"powerauthserver/database"
	_ "powerauthserver/docs" // Swagger 문서
	"powerauthserver/handlers"
	"powerauthserver/logger"
	"powerauthserver/metrics"
	"powerauthserver/middleware"
	"powerauthserver/scheduler"
	"powerauthserver/services"
	"powerauthserver/utils"
)

// @title PowerAuth Server API
// @version 3.0
// @description 모바일 기기 활성화, 다중 인자 서명 검증, ECIES 복호화, 복구 코드 관리 서버

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT 토큰을 입력하세요. 형식: Bearer {token}

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "powerauth-server",
		Short:         "PowerAuth activation and signature server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (toml, json or yaml)")

	root.AddCommand(serveCmd(), migrateCmd(), tokenCmd(), appCmd())

	if err := root.Execute(); err != nil {
		logger.Error("%v", err)
		logger.Close()
		os.Exit(1)
	}
}

// setup 설정 로드, 로거 초기화, 데이터베이스 연결
func setup() (*config.Loader, *config.Config, error) {
	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logConfig := logger.Config{
		Level:      level,
		LogDir:     cfg.Log.Dir,
		MaxSize:    cfg.Log.MaxSizeMB * 1024 * 1024,
		MaxAge:     cfg.Log.MaxAgeDays,
		UseColor:   cfg.Log.Color,
		ShowCaller: false,
	}
	if err := logger.Initialize(logConfig); err != nil {
		return nil, nil, err
	}

	if err := database.Initialize(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		return nil, nil, err
	}
	return loader, cfg, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, cfg, err := setup()
			if err != nil {
				return err
			}
			defer database.Close()
			defer logger.Close()
			return serve(loader, cfg)
		},
	}
}

func serve(loader *config.Loader, cfg *config.Config) error {
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Info("🚀 PowerAuth Server Starting")
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	metrics.MustRegister()
	handlers.DefaultLocale = cfg.Server.Locale

	// 서비스 계층 초기화
	db := services.NewSQLExecutor(database.DB, database.Type())
	keys := services.NewServerKeyConverter(cfg.MasterDBEncryptionKeyBytes())
	now := utils.Clock(utils.Now)
	notifier := services.NewCallbackNotifier(db, cfg.Callback)
	replay := services.NewReplayService(db, cfg.Replay, now)
	temporaryKeys := services.NewTemporaryKeyService(db, keys, cfg.TemporaryKey.Validity.Duration, now)
	activations := services.NewActivationService(db, keys, replay, notifier, cfg, now)

	svc := handlers.Services{
		Applications:  services.NewApplicationService(db, now),
		Activations:   activations,
		Signatures:    services.NewSignatureService(db, keys, services.NewDBAuditSink(db), notifier, cfg.Signature, now),
		Recovery:      services.NewRecoveryService(db, keys, replay, cfg.Recovery, now),
		Encryption:    services.NewEncryptionService(db, keys, replay, now),
		TemporaryKeys: temporaryKeys,
	}

	var issuer *utils.TokenIssuer
	if cfg.Auth.Disabled {
		logger.Warn("API authentication is disabled")
	} else {
		if cfg.Auth.JWTSecret == "" {
			return errors.New("auth.jwt_secret is required unless auth.disabled is set")
		}
		issuer = utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
	}

	// 스케줄러 시작 (만료 활성화, 임시 키, 재전송 방지 값 정리)
	var (
		jobs *scheduler.Scheduler
		err  error
	)
	if cfg.Scheduler.Enabled {
		lock := services.NewClusterLock(db, cfg.Scheduler.NodeName, now)
		jobs, err = scheduler.New(cfg.Scheduler, lock, activations, temporaryKeys, replay)
		if err != nil {
			return err
		}
		jobs.Start()
	}

	// 설정 변경 감시 (로그 레벨만 즉시 반영)
	loader.OnChange(func(newCfg *config.Config) {
		level, err := logger.ParseLevel(newCfg.Log.Level)
		if err != nil {
			logger.Warn("Ignoring invalid log level %q: %v", newCfg.Log.Level, err)
			return
		}
		logger.SetLevel(level)
		logger.Info("Configuration reloaded (log level=%s)", level)
	})
	if err := loader.Watch(); err != nil {
		logger.Warn("Config watch disabled: %v", err)
	}
	defer loader.Close()
	go func() {
		for err := range loader.Errors() {
			logger.Warn("Config reload failed: %v", err)
		}
	}()

	// 라우터 설정
	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, svc, issuer)
	mux.HandleFunc("GET /health", handlers.Health(database.DB))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: middleware.ChainMiddleware(mux.ServeHTTP,
			middleware.LoggingMiddleware,
			middleware.CORSMiddleware,
		),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening on %s", cfg.Server.Addr)
		logger.Info("Swagger UI: http://localhost%s/swagger/index.html", cfg.Server.Addr)
		logger.Info("Database: %s", database.Type())
		logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown 설정
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
		logger.Warn("Received shutdown signal")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
	if jobs != nil {
		jobs.Stop(ctx)
	}
	notifier.Wait()
	logger.Info("Server stopped")
	return nil
}
