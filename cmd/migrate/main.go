package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
	seed    bool
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|status|version|seed|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target YYYYMMDDHHMMSS for -cmd=version")
	flag.BoolVar(&opts.seed, "seed", false, "seed categories and tags after -cmd=up")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// create and validate only touch the filesystem
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"cmd": opts.cmd, "dir": opts.dir})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}

	switch opts.cmd {
	case "up", "down", "status":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		if err := migrate.Run(ctx, sqlDB, opts.dir, opts.cmd); err != nil {
			return err
		}
		if opts.cmd == "up" && opts.seed {
			err = migrate.SeedVocabulary(ctx, dbClient.DB())
		}
	case "version":
		err = migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	case "seed":
		err = migrate.SeedVocabulary(ctx, dbClient.DB())
	default:
		return fmt.Errorf("unknown command %q", opts.cmd)
	}
	if err != nil {
		return err
	}
	logg.Info(ctx, "migrate finished")
	return nil
}
