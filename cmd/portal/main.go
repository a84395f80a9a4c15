package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/edusys/portal-auth/pkg/attempts"
	"github.com/edusys/portal-auth/pkg/authapi"
	"github.com/edusys/portal-auth/pkg/config"
	"github.com/edusys/portal-auth/pkg/login"
	"github.com/edusys/portal-auth/pkg/maintenance"
	"github.com/edusys/portal-auth/pkg/remember"
	"github.com/edusys/portal-auth/pkg/sessions"
	"github.com/edusys/portal-auth/pkg/tokengen"
	"github.com/edusys/portal-auth/pkg/users"
)

type Config struct {
	DbConfig       config.DbConfig
	ServerConfig   config.ServerConfig
	SecurityConfig config.SecurityConfig
}

func main() {
	godotenv.Load()

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)
	if err := cfg.SecurityConfig.Validate(); err != nil {
		slog.Error("Invalid security config", "err", err)
		os.Exit(-1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DbConfig.ToDatabaseURL())
	if err != nil {
		slog.Error("Failed creating dbpool", "db", cfg.DbConfig.Database, "host", cfg.DbConfig.Host, "port", cfg.DbConfig.Port, "user", cfg.DbConfig.User)
		os.Exit(-1)
	}
	defer pool.Close()

	userRepo := users.NewPostgresRepository(pool)
	attemptRepo := attempts.NewPostgresRepository(pool)
	sessionRepo := sessions.NewPostgresRepository(pool)
	rememberRepo := remember.NewPostgresRepository(pool)

	tracker := attempts.NewTracker(attemptRepo, cfg.SecurityConfig)
	registry := sessions.NewRegistry(sessionRepo, userRepo, rememberRepo, cfg.SecurityConfig)
	rememberService := remember.NewService(rememberRepo, userRepo, registry, cfg.SecurityConfig)
	loginService := login.NewLoginService(userRepo, tracker, registry, rememberService, cfg.SecurityConfig)
	statsService := maintenance.NewStatsService(userRepo, sessionRepo, attemptRepo)

	sweeper := maintenance.NewSweeper(attemptRepo, sessionRepo, rememberRepo)
	go sweeper.Run(ctx, cfg.ServerConfig.SweepInterval)

	cookies := tokengen.NewCookieSetter(cfg.ServerConfig.CookieHttpOnly, cfg.ServerConfig.CookieSecure)
	handle := authapi.NewHandle(loginService, registry, rememberService, statsService, cookies)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.PlainText(w, r, "ok")
	})

	authapi.Routes(r, handle)

	slog.Info("Starting portal auth server", "addr", cfg.ServerConfig.Addr())
	if err := http.ListenAndServe(cfg.ServerConfig.Addr(), r); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(-1)
	}
}
