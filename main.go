package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mbolis/teamsurvey/app"
	"github.com/mbolis/teamsurvey/config"
	"github.com/mbolis/teamsurvey/database"
	"github.com/mbolis/teamsurvey/httpx"
	"github.com/mbolis/teamsurvey/log"
	"github.com/mbolis/teamsurvey/ratelimit"
	"github.com/mbolis/teamsurvey/routes"
)

func main() {
	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	if cfg.AdminUser != "" {
		err = httpx.EnsureAdmin(context.Background(), db, cfg.AdminUser, cfg.AdminPassword)
		if err != nil {
			log.Fatal("main.admin:", err)
		}
		log.Info("admin account ready: " + cfg.AdminUser)
	}

	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		redisLimiter, err := ratelimit.NewRedis(cfg.RedisURL, cfg.SubmitRate, cfg.SubmitBurst)
		if err != nil {
			log.Fatal("main.redis:", err)
		}
		defer redisLimiter.Close()
		limiter = redisLimiter
	} else {
		limiter = ratelimit.NewMemory(cfg.SubmitRate, cfg.SubmitBurst)
	}

	app := app.New(db, httpx.NewBearerServer(db, cfg), cfg, limiter)
	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
