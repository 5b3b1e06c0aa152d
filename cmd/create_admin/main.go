package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/raushankrgupta/fragrance-collection/config"
	"github.com/raushankrgupta/fragrance-collection/repository"
	"github.com/raushankrgupta/fragrance-collection/service"
	"github.com/raushankrgupta/fragrance-collection/utils"
)

// Creates the first admin account. Credentials come from flags or from
// ADMIN_USERNAME / ADMIN_PASSWORD.
func main() {
	cfg := config.LoadConfig()
	logger := utils.NewLogger(cfg.LogLevel, "console")

	username := flag.String("username", os.Getenv("ADMIN_USERNAME"), "admin username")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	flag.Parse()

	if *username == "" || *password == "" {
		logger.Fatal().Msg("username and password are required (flags or ADMIN_USERNAME/ADMIN_PASSWORD)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := utils.ConnectMongo(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer utils.DisconnectMongo(client)

	db := client.Database(cfg.DBName)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to create indexes")
	}

	auth := service.NewAuthService(repository.NewUserRepository(db), nil, nil, logger)
	user, created, err := auth.EnsureAdmin(ctx, service.Credentials{Username: *username, Password: *password})
	if err != nil {
		logger.Fatal().Err(err).Msg(service.Message(err, "failed to create admin"))
	}

	if !created {
		logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("user already exists, nothing to do")
		return
	}
	logger.Info().Str("username", user.Username).Str("id", user.ID.Hex()).Msg("admin user created")
}
