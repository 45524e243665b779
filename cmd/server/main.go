package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pressly/goose/v3"

	"github.com/Iliyas128/flight-connect-backend/internal/config"
	"github.com/Iliyas128/flight-connect-backend/internal/database"
	"github.com/Iliyas128/flight-connect-backend/internal/handler"
	"github.com/Iliyas128/flight-connect-backend/internal/queue"
	"github.com/Iliyas128/flight-connect-backend/internal/repository"
	"github.com/Iliyas128/flight-connect-backend/internal/router"
	"github.com/Iliyas128/flight-connect-backend/internal/utils"
	_ "github.com/Iliyas128/flight-connect-backend/migrations"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("mysql"); err != nil {
		log.Fatalf("goose dialect: %v", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	rdb := config.NewRedisClient() // nil when Redis is unreachable

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	sessions := repository.NewSessionRepo(db)
	participants := repository.NewParticipantRepo(db)
	keys := repository.NewValidKeyRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.RegisterRoutes(e, cfg, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Sessions:     handler.NewSessionHandler(cfg, sessions),
		Participants: handler.NewParticipantHandler(sessions, participants),
		Keys:         handler.NewKeyHandler(sessions, keys),
	}, rdb)

	// Event consumer runs for the life of the process and handles its
	// own reconnects.
	go func() {
		if err := queue.StartSessionConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
