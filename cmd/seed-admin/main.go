package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"shubakar/pkg/app"
	"shubakar/pkg/config"
	"shubakar/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
)

const JobName = "seed-admin"

const (
	EnvAdminEmail    = "ADMIN_EMAIL"
	EnvAdminPassword = "ADMIN_PASSWORD"
	EnvAdminName     = "ADMIN_NAME"

	DefaultAdminName = "Super Admin"
)

func main() {
	cfg := config.Load(JobName)

	name := os.Getenv(EnvAdminName)
	if name == "" {
		name = DefaultAdminName
	}
	email, password := os.Getenv(EnvAdminEmail), os.Getenv(EnvAdminPassword)
	if email == "" || password == "" {
		cfg.Log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	cfg.SetMongo()
	account, err := seed(cfg, name, email, password)
	cfg.GracefulShutdown()
	if err != nil {
		cfg.Log.Fatal("Failed to seed super-admin", "email", email, "error", err)
	}
	cfg.Log.Info("Super-admin ready", "id", account.ID, "email", account.Email)
}

func seed(cfg *config.Config, name, email, password string) (*model.Account, error) {
	modules, err := app.NewModules(cfg, app.NewMongoStores(cfg), app.Messaging{}, prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize modules: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return modules.Accounts.EnsureSuperAdmin(ctx, name, email, password)
}
