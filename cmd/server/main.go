package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"sketchroom/internal/config"
	"sketchroom/internal/game"
	"sketchroom/internal/store"
	"sketchroom/migrations"
)

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	godotenv.Load()
	cfg := config.Load()

	var log zerolog.Logger
	if cfg.Debug {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stdout).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}

	if cfg.PostgresURL == "" {
		log.Fatal().Msg("POSTGRES_URL is required")
	}

	if err := migrations.Migrate(cfg.PostgresURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	st, err := store.NewPostgresStore(context.Background(), cfg.PostgresURL)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer st.Close()

	words, err := game.LoadWords(cfg.WordsFile)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.WordsFile).Msg("words file unavailable; using built-in list")
		words = game.DefaultWords
	}
	source := game.NewRandomWords(words, rand.New(rand.NewSource(time.Now().UnixNano())))

	svc := game.NewService(cfg.Game, st, source, log)
	defer svc.Shutdown()

	handler := game.NewGameHandler(svc, cfg.AllowedOrigins, log)

	r := CreateServer(cfg.AllowedOrigins)
	handler.RegisterRoutes(r)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
