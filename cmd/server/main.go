package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/smartromaric/notes-suite/internal/config"
	"github.com/smartromaric/notes-suite/internal/database"
	"github.com/smartromaric/notes-suite/internal/handler"
	"github.com/smartromaric/notes-suite/internal/queue"
	"github.com/smartromaric/notes-suite/internal/repository"
	"github.com/smartromaric/notes-suite/internal/router"
	"github.com/smartromaric/notes-suite/internal/service"
)

func main() {
	// Local development reads config from a .env file; in deployed
	// environments the variables are already set and the file is absent.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tags := repository.NewTagRepo(db)
	notes := repository.NewNoteRepo(db, tags)
	shares := repository.NewShareRepo(db)
	links := repository.NewPublicLinkRepo(db)

	activity := service.NewActivityPublisher()

	// The consumer tails note.activity and writes the activity log. It
	// reconnects on its own; a missing broker only disables the log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting and caching disabled")
	}

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Notes:     handler.NewNoteHandler(notes, activity),
		Shares:    handler.NewShareHandler(notes, users, shares, links),
		Public:    handler.NewPublicHandler(links),
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		RateLimit: config.LoadRateLimit(),
		Cache:     config.LoadCache(),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
