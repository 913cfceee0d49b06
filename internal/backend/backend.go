// Package backend opens the configured storage and wires the services on top of it.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/famvest/internal/config"
	"github.com/MrJamesThe3rd/famvest/internal/database"
	"github.com/MrJamesThe3rd/famvest/internal/export"
	"github.com/MrJamesThe3rd/famvest/internal/holding"
	"github.com/MrJamesThe3rd/famvest/internal/importer"
	"github.com/MrJamesThe3rd/famvest/internal/member"
	memberstore "github.com/MrJamesThe3rd/famvest/internal/member/store"
	"github.com/MrJamesThe3rd/famvest/internal/migration"
	"github.com/MrJamesThe3rd/famvest/internal/portfolio"
	"github.com/MrJamesThe3rd/famvest/internal/record"
	"github.com/MrJamesThe3rd/famvest/internal/record/filestore"
	recordstore "github.com/MrJamesThe3rd/famvest/internal/record/store"
	"github.com/MrJamesThe3rd/famvest/internal/report"
)

type App struct {
	Members   *member.Service
	Holdings  *holding.Service
	Portfolio *portfolio.Service
	Importer  *importer.Service
	Export    *export.Service
	Report    *report.Generator
	Migrator  *migration.Migrator

	db *sql.DB
}

// Open connects to the configured storage. For PostgreSQL the schema is
// migrated before any service is built.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	switch cfg.Storage.Driver {
	case config.StorageFile:
		fs := filestore.New(cfg.Storage.File)

		slog.Info("using file storage", "path", cfg.Storage.File)

		return Wire(fs, fs), nil
	case config.StoragePostgres:
		db, err := database.New(ctx, cfg.ConnectionString(), database.PoolOptions{
			MaxOpenConns:    cfg.DB.MaxOpenConns,
			MaxIdleConns:    cfg.DB.MaxIdleConns,
			ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}

		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}

		app := Wire(memberstore.New(db), recordstore.New(db))
		app.db = db

		return app, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Wire builds every service over the given repositories.
func Wire(members member.Repository, records record.Store) *App {
	migrator := migration.New(records)
	holdings := record.NewRepository(records)
	portfolioSvc := portfolio.NewService(members, holdings)

	return &App{
		Members:   member.NewService(members),
		Holdings:  holding.NewService(holdings),
		Portfolio: portfolioSvc,
		Importer:  importer.NewService(members, records, migrator),
		Export:    export.NewService(members, records),
		Report:    report.New(portfolioSvc),
		Migrator:  migrator,
	}
}

// Bootstrap seeds default members and upgrades legacy records. It runs once
// before anything is served.
func (a *App) Bootstrap(ctx context.Context) error {
	if _, err := a.Members.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seeding members: %w", err)
	}

	if _, err := a.Migrator.Run(ctx); err != nil {
		return fmt.Errorf("running ledger migration: %w", err)
	}

	return nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}
