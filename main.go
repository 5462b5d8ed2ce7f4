package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kevinaaaquil/watchlist/config"
	"github.com/kevinaaaquil/watchlist/handlers"
	"github.com/kevinaaaquil/watchlist/logging"
	"github.com/kevinaaaquil/watchlist/service"
	"github.com/kevinaaaquil/watchlist/session"
	"github.com/kevinaaaquil/watchlist/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}
	logging.Init(cfg.LogLevel)

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb: ", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			slog.Error("mongodb disconnect", "error", err)
		}
	}()
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("mongodb indexes: ", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis: ", err)
	}

	tokens, err := service.NewResetTokens([]byte(cfg.SecretKey), service.DefaultResetTokenMaxAge)
	if err != nil {
		log.Fatal("reset tokens: ", err)
	}

	var mailer handlers.ResetMailer = service.LogMailer{}
	if cfg.MailServer != "" {
		mailer = service.NewSMTPMailer(cfg.MailServer, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailSender)
	} else {
		slog.Warn("MAIL_SERVER not set; password reset emails will not be delivered")
	}

	routerCfg := handlers.RouterConfig{
		Users:          db,
		Movies:         db,
		Sessions:       session.NewRedisStore(rdb, cfg.SessionTTL, cfg.CookieSecure),
		Tokens:         tokens,
		Mailer:         mailer,
		EmailLog:       db,
		BaseURL:        cfg.BaseURL,
		MaxPosterBytes: cfg.MaxUploadMB * 1024 * 1024,
	}
	if cfg.S3Bucket != "" {
		s3Service, err := service.NewS3Service(ctx, service.S3Options{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			log.Fatal("s3: ", err)
		}
		routerCfg.Posters = s3Service
	} else {
		slog.Warn("AWS_S3_BUCKET not set; poster uploads disabled")
	}

	pages, err := handlers.NewRouter(routerCfg)
	if err != nil {
		log.Fatal("router: ", err)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/", pages)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}
