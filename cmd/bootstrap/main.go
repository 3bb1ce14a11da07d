// Command bootstrap creates the single superadmin account. It refuses to run
// once a superadmin exists.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"qrmenu/internal/config"
	"qrmenu/internal/repositories"
	"qrmenu/internal/services"
	"qrmenu/pkg/database"
	"qrmenu/pkg/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var email, name, password string

	flagSet := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
	flagSet.StringVar(&email, "email", "", "superadmin email (required)")
	flagSet.StringVar(&name, "name", "", "display name")
	flagSet.StringVar(&password, "password", "", "superadmin password (default: $BOOTSTRAP_PASSWORD)")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if password == "" {
		password = os.Getenv("BOOTSTRAP_PASSWORD")
	}

	zl, err := logger.New(logger.Config{Level: "info", Environment: "development", ServiceName: "qrmenu-bootstrap"})
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	driver, dsn := config.LoadDatabase()
	db, err := database.Open(database.Config{Driver: driver, DSN: dsn}, zl)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	admins := services.NewAdminService(
		repositories.NewGORMUserRepository(db),
		repositories.NewGORMStoreRepository(db),
		repositories.NewGORMAccountRepository(db),
		nil,
		zl,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	user, err := admins.BootstrapSuperadmin(ctx, services.BootstrapInput{
		Email:    email,
		Name:     name,
		Password: password,
	})
	if err != nil {
		return err
	}
	zl.Info("Superadmin created", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return nil
}
