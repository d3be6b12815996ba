package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fartswap/fartswap-core/internal/config"
	"github.com/fartswap/fartswap-core/internal/constants"
	"github.com/fartswap/fartswap-core/internal/events"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// subscriber tails swap events published by the API and CLI.
func main() {
	loadEnv()

	pair := flag.String("pair", "", "only show one pair, e.g. SOL-FARTSWAP")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	cfg := config.Load()
	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rclient.Close()
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	channel := constants.PubSubChannelSwaps
	if *pair != "" {
		channel = constants.PubSubChannelPrefix + *pair
	}

	sub := events.NewRedisPublisher(rclient, logger)
	err := sub.Subscribe(ctx, channel, func(ev *events.SwapEvent) {
		entry := logger.WithFields(logrus.Fields{
			"sig":    ev.Signature,
			"pair":   ev.Pair,
			"in":     ev.AmountIn + " " + ev.TokenIn,
			"quoted": ev.QuotedOut + " " + ev.TokenOut,
			"status": ev.Status,
		})
		if ev.Error != "" {
			entry.WithField("error", ev.Error).Warn("swap")
			return
		}
		entry.Info("swap")
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("subscription failed")
	}
	logger.Info("subscriber stopped")
}
