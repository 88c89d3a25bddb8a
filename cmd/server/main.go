package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/config"
	"github.com/moviecircle/backend/internal/covers"
	"github.com/moviecircle/backend/internal/database"
	"github.com/moviecircle/backend/internal/handler"
	"github.com/moviecircle/backend/internal/notify"
	"github.com/moviecircle/backend/internal/queue"
	"github.com/moviecircle/backend/internal/repository"
	"github.com/moviecircle/backend/internal/router"
	"github.com/moviecircle/backend/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// A typed nil *RedisStore must not reach the interface field, so the
	// store is only assigned when redis is actually up.
	var store session.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		store = session.NewRedisStore(rdb)
	} else {
		log.Printf("redis unavailable, sessions degrade to signature-only validation")
	}
	sessions := session.NewValidator(cfg.JWTSecret, store, cfg.SessionTTLMin)

	users := repository.NewUserRepo(db)
	shows := repository.NewShowRepo(db)
	votes := repository.NewVoteRepo(db)
	reactions := repository.NewReactionRepo(db)
	notifications := repository.NewNotificationRepo(db)
	catalogue := repository.NewCatalogueRepo(db)

	notifier := notify.New(notifications, queue.PublishNotificationCreated)
	posterStore := covers.NewStore(cfg.CoversDir)

	e := echo.New()
	router.RegisterRoutes(e, handler.NewAuthHandler(users, sessions, cfg.BcryptCost))
	router.RegisterAPI(e, sessions,
		handler.NewShowHandler(shows, votes, users, reactions, posterStore, notifier),
		handler.NewListHandler(shows, votes),
		handler.NewReactionHandler(votes, users, reactions, notifier),
		handler.NewNotificationHandler(notifications),
		handler.NewCatalogueHandler(catalogue),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
