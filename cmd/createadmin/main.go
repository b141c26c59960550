package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	user "github.com/rikscandle/rikscandle-backend/internal/users"
	"github.com/rikscandle/rikscandle-backend/pkg/config"
	"github.com/rikscandle/rikscandle-backend/pkg/db"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "createadmin"})

	_ = godotenv.Load()

	name := flag.String("name", "", "admin display name")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if *name == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -name NAME -email EMAIL -password PASSWORD")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "createadmin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	svc, err := user.NewService(user.NewRepository(dbClient.DB()), cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	admin, err := svc.CreateAdmin(context.Background(), *name, *email, *password)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin", err)
		os.Exit(1)
	}

	fmt.Printf("admin created: %s (%s)\n", admin.Email, admin.ID)
}
