package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dimitrije/fleetdesk/internal/config"
	"github.com/dimitrije/fleetdesk/internal/database"
	"github.com/dimitrije/fleetdesk/internal/services"
	"github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Println("Usage: seed-owner <email> <full name> <password>")
		os.Exit(1)
	}

	email, fullName, password := os.Args[1], os.Args[2], os.Args[3]
	if len(password) < 8 {
		logrus.Fatal("Password must be at least 8 characters")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	owner, err := services.NewTeamService(db).CreateOwner(ctx, email, fullName, password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOwnerExists):
			logrus.Fatal("The team already has an owner")
		case errors.Is(err, services.ErrEmailTaken):
			logrus.Fatalf("A team member with email %s already exists", email)
		default:
			logrus.Fatalf("Failed to create owner: %v", err)
		}
	}

	fmt.Printf("Successfully created team owner %s\n", owner.Email)
}
