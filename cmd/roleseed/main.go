// Command roleseed loads a role keyword catalog into Postgres.
//
// Usage:
//
//	roleseed [-file roles.yaml]
//
// Without -file the built-in catalog is seeded. Existing roles with the same
// name have their keywords replaced.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/observability"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/adapter/repo/postgres"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/catalog"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/config"
	"github.com/fairyhunter13/ats-resume-analyzer/internal/domain"
)

// upserter is the slice of postgres.RoleRepo the seeder needs.
type upserter interface {
	Upsert(ctx domain.Context, name string, keywords []string) (domain.Role, error)
}

func main() {
	file := flag.String("file", "", "YAML catalog file (default: built-in catalog)")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall timeout")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	slog.SetDefault(observability.SetupLogger(cfg))

	if err := run(cfg, *file, *timeout); err != nil {
		slog.Error("role seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, file string, timeout time.Duration) error {
	if cfg.DBURL == "" {
		return errors.New("DB_URL is required")
	}
	roles, err := loadRoles(file)
	if err != nil {
		return err
	}
	if err := postgres.RunMigrations(cfg.DBURL); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	pool, err := postgres.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	n, err := seed(ctx, postgres.NewRoleRepo(pool), roles)
	if err != nil {
		return err
	}
	slog.Info("roles seeded", slog.Int("count", n), slog.String("source", sourceName(file)))
	return nil
}

func sourceName(file string) string {
	if file == "" {
		return "builtin"
	}
	return file
}

// loadRoles reads the YAML catalog at path, or the built-in one when path is
// empty.
func loadRoles(path string) ([]domain.Role, error) {
	if path == "" {
		return catalog.Builtin(), nil
	}
	f, err := os.Open(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("op=roleseed.loadRoles: %w", err)
	}
	defer func() { _ = f.Close() }()
	roles, err := catalog.LoadYAML(f)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("op=roleseed.loadRoles: %s contains no roles", path)
	}
	return roles, nil
}

// seed upserts every role and returns how many were written.
func seed(ctx context.Context, repo upserter, roles []domain.Role) (int, error) {
	for i, r := range roles {
		saved, err := repo.Upsert(ctx, r.Name, r.Keywords)
		if err != nil {
			return i, fmt.Errorf("op=roleseed.seed: role %q: %w", r.Name, err)
		}
		slog.Debug("role upserted", slog.String("role", saved.Name), slog.Int("keywords", len(saved.Keywords)))
	}
	return len(roles), nil
}
