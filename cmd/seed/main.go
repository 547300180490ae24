// Command seed bootstraps a tenant and its first user, then prints a
// bearer token for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/adapter/repository"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/internal/domain/user"
	"github.com/hugohenrick/arte-ideas/internal/infrastructure/config"
	"github.com/hugohenrick/arte-ideas/internal/infrastructure/database"
	"github.com/hugohenrick/arte-ideas/pkg/auth"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
)

type options struct {
	slug     string
	name     string
	login    string
	email    string
	password string
	role     string
}

func main() {
	configPath := flag.String("config", "", "path to a config file")
	var opts options
	flag.StringVar(&opts.slug, "tenant", "lima-centro", "tenant slug, created when missing")
	flag.StringVar(&opts.name, "tenant-name", "Arte Ideas Lima Centro", "tenant display name")
	flag.StringVar(&opts.login, "login", "admin", "user login, created when missing")
	flag.StringVar(&opts.email, "email", "admin@arteideas.pe", "user e-mail")
	flag.StringVar(&opts.password, "password", "", "user password (required for new users)")
	flag.StringVar(&opts.role, "role", string(user.RoleAdmin), "user role")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	appLogger, err := logger.NewLogger(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Env: cfg.App.Env})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	token, err := seed(ctx, cfg, appLogger, opts)
	if err != nil {
		appLogger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func seed(ctx context.Context, cfg *config.Config, log logger.Logger, opts options) (string, error) {
	role, err := user.ParseRole(opts.role)
	if err != nil {
		return "", err
	}
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		return "", err
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return "", err
	}
	defer pool.Close()

	var u *user.User
	err = repository.NewUnitOfWork(pool).Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		tenantID := ""
		if role != user.RoleSuperAdmin {
			t, err := ensureTenant(ctx, repos, opts)
			if err != nil {
				return err
			}
			tenantID = t.ID
		}

		existing, err := repos.Users.FindByLogin(ctx, opts.login)
		switch {
		case err == nil:
			u = existing
			log.Info("user already exists", "login", u.Login)
			return nil
		case !errors.Is(err, user.ErrUserNotFound):
			return err
		}

		if opts.password == "" {
			return errors.New("-password is required to create a user")
		}
		u, err = user.NewUser(tenantID, opts.login, opts.email, role)
		if err != nil {
			return err
		}
		if err := u.SetPassword(opts.password); err != nil {
			return err
		}
		if err := repos.Users.Create(ctx, u); err != nil {
			return err
		}
		log.Info("user created", "login", u.Login, "role", u.Role, "tenant_id", tenantID)
		return nil
	})
	if err != nil {
		return "", err
	}

	return jwtService.GenerateToken(u)
}

func ensureTenant(ctx context.Context, repos domain.Repositories, opts options) (*tenant.Tenant, error) {
	t, err := repos.Tenants.FindBySlug(ctx, opts.slug)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, tenant.ErrTenantNotFound) {
		return nil, err
	}
	t, err = tenant.NewTenant(opts.slug, opts.name)
	if err != nil {
		return nil, err
	}
	if err := repos.Tenants.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}
