package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/MrJamesThe3rd/famvest/internal/backend"
	"github.com/MrJamesThe3rd/famvest/internal/config"
	"github.com/MrJamesThe3rd/famvest/internal/export"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "famvest",
		Usage: "maintain the household investment store",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log at debug level"},
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "convert legacy holdings into ledger holdings",
				Action: withApp(migrate),
			},
			{
				Name:      "import",
				Usage:     "restore a backup file, replacing stored holdings",
				ArgsUsage: "<backup.json>",
				Action:    withApp(restore),
			},
			{
				Name:  "export",
				Usage: "write a backup of every member and holding",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, defaults to a timestamped name"},
				},
				Action: withApp(backup),
			},
			{
				Name:  "report",
				Usage: "write the household XLSX report",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Usage: "output directory, defaults to REPORT_DIR"},
				},
				Action: withApp(writeReport),
			},
			{
				Name:   "summary",
				Usage:  "print the household summary",
				Action: withApp(summary),
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

type action func(c *cli.Context, cfg *config.Config, app *backend.App) error

// withApp loads the config, opens storage and seeds defaults before running fn.
func withApp(fn action) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		level := cfg.Level()
		if c.Bool("verbose") {
			level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		app, err := backend.Open(c.Context, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		if _, err := app.Members.EnsureDefaults(c.Context); err != nil {
			return fmt.Errorf("seeding members: %w", err)
		}

		return fn(c, cfg, app)
	}
}

func migrate(c *cli.Context, _ *config.Config, app *backend.App) error {
	res, err := app.Migrator.Run(c.Context)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "migrated %d holdings across %d members\n", res.Migrated, len(res.Owners))

	return nil
}

func restore(c *cli.Context, _ *config.Config, app *backend.App) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one backup file", 2)
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return fmt.Errorf("opening backup: %w", err)
	}
	defer f.Close()

	res, err := app.Importer.Restore(c.Context, f)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "restored %d members and %d holdings, cleared %d members, migrated %d legacy holdings\n",
		res.Members, res.Records, res.Cleared, res.Migrated)

	return nil
}

func backup(c *cli.Context, _ *config.Config, app *backend.App) error {
	path := c.String("out")
	if path == "" {
		path = export.BackupFilename(time.Now())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating backup file: %w", err)
	}

	if err := app.Export.Backup(c.Context, f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing backup file: %w", err)
	}

	fmt.Fprintln(c.App.Writer, path)

	return nil
}

func writeReport(c *cli.Context, cfg *config.Config, app *backend.App) error {
	dir := c.String("dir")
	if dir == "" {
		dir = cfg.Report.Dir
	}

	path, err := app.Report.WriteFile(c.Context, dir, time.Now())
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	fmt.Fprintln(c.App.Writer, abs)

	return nil
}

func summary(c *cli.Context, _ *config.Config, app *backend.App) error {
	d, err := app.Portfolio.Dashboard(c.Context)
	if err != nil {
		return err
	}

	fmt.Fprint(c.App.Writer, export.GenerateSummary(d))

	return nil
}
