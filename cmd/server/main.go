package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/rts-transit/rapidride/internal/config"     // environment config loader
	"github.com/rts-transit/rapidride/internal/database"   // MySQL connection pool
	"github.com/rts-transit/rapidride/internal/fare"       // ticket signing and validation engine
	"github.com/rts-transit/rapidride/internal/handler"    // HTTP handlers
	"github.com/rts-transit/rapidride/internal/queue"      // background fare event consumer
	"github.com/rts-transit/rapidride/internal/repository" // DB repositories
	"github.com/rts-transit/rapidride/internal/router"     // route registration
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tickets := repository.NewTicketRepo(db)
	products := repository.NewProductRepo(db)
	alerts := repository.NewAlertRepo(db)

	policy := fare.NewValidityPolicy(cfg.Timezone)
	verifier, err := fare.NewVerifier(cfg.VerifyKey, cfg.Issuer, policy, tickets)
	if err != nil {
		log.Fatalf("verifier: %v", err)
	}

	// The signing seed is optional: gate deployments run verify-only and
	// never hold private key material. Issuance is simply absent there.
	var signer *fare.Signer
	if len(cfg.SignSeed) > 0 {
		signer, err = fare.NewSigner(cfg.SignSeed, cfg.Issuer, cfg.Timezone, tickets)
		if err != nil {
			log.Fatalf("signer: %v", err)
		}
	} else {
		log.Println("no signing key configured; running verify-only")
	}

	// Redis backs the gate rate limiter; nil means the limiter degrades
	// to a pass-through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; gate rate limiting disabled")
	}
	rl := config.LoadRateLimitConfig()

	// Background consumer that appends fare events to logs/fare.log.
	go func() {
		if err := queue.StartFareConsumer(); err != nil {
			log.Printf("fare consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	authH := handler.NewAuthHandler(cfg, users, tokens)
	ticketH := handler.NewTicketHandler(signer, verifier, tickets)
	productH := handler.NewProductHandler(products)
	alertH := handler.NewAlertHandler(alerts)

	router.RegisterRoutes(e)
	router.RegisterPublic(e, productH, alertH)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterFare(e, ticketH, cfg.JWTSecret, rl, rdb)
	router.RegisterAdmin(e, ticketH, alertH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, issuer=%q)", addr, cfg.Env, cfg.Issuer)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
