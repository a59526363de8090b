package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/dimitrije/martsy-api/internal/config"
	"github.com/dimitrije/martsy-api/internal/database"
	"github.com/dimitrije/martsy-api/internal/logger"
	"github.com/dimitrije/martsy-api/internal/services"
)

func main() {
	if len(os.Args) < 3 || len(os.Args) > 4 {
		fmt.Println("Usage: issue-key <email> <name> [monthly_limit]")
		os.Exit(1)
	}

	email, name := os.Args[1], os.Args[2]

	var monthlyLimit *int
	if len(os.Args) == 4 {
		limit, err := strconv.Atoi(os.Args[3])
		if err != nil {
			fmt.Printf("monthly_limit must be an integer: %v\n", err)
			os.Exit(1)
		}
		monthlyLimit = &limit
	}

	log := logger.Development()
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	user, err := services.NewUserService(db).GetByEmail(ctx, email)
	if err != nil {
		log.WithError(err).Fatal("no user found", "email", email)
	}

	key, plainKey, err := services.NewAPIKeyService(db).Create(ctx, user.ID, name, monthlyLimit)
	if err != nil {
		log.WithError(err).Fatal("failed to issue key", "email", email)
	}

	log.Info("api key issued", "user_id", user.ID, "key_id", key.ID, "key_prefix", key.KeyPrefix)
	fmt.Printf("API key for %s (shown once):\n%s\n", email, plainKey)
}
