// cmd/cribbaged/main.go
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kburley7/cribbage/internal/cache"
	"github.com/kburley7/cribbage/internal/config"
	"github.com/kburley7/cribbage/internal/database"
	"github.com/kburley7/cribbage/internal/game"
	"github.com/kburley7/cribbage/internal/ws"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("configuration")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.RedisAddr != "" {
		if err := cache.InitRedis(ctx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
			log.WithError(err).Fatal("redis")
		}
		log.WithField("addr", cfg.RedisAddr).Info("action history enabled")
	} else {
		log.Info("REDIS_ADDR not set, action history disabled")
	}

	if cfg.DatabaseURL != "" {
		if err := database.Connect(ctx, cfg.DatabaseURL); err != nil {
			log.WithError(err).Fatal("database")
		}
		if err := database.Migrate(ctx); err != nil {
			log.WithError(err).Fatal("database migration")
		}
		log.Info("game state persistence enabled")
	} else {
		log.Info("DATABASE_URL not set, persistence disabled")
	}

	table := game.NewTable(uint8(cfg.NumPlayers))
	table.OnGameEnd = func(tableID uuid.UUID, winner int, scores []int) {
		log.WithFields(logrus.Fields{
			"table":  tableID,
			"winner": winner,
			"scores": scores,
		}).Info("game over")
	}
	server := ws.NewServer(table, log, []byte(cfg.JWTSecret))

	mux := http.NewServeMux()
	mux.Handle("/ws", server)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	log.WithFields(logrus.Fields{
		"addr":  cfg.ListenAddr,
		"table": table.ID,
		"seats": cfg.NumPlayers,
	}).Info("cribbaged listening")
	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		log.WithError(err).Fatal("http server")
	}
}
