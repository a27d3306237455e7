package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/angelmondragon/moments-backend/pkg/db"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"github.com/angelmondragon/moments-backend/pkg/migrate"
)

func main() {
	cmd := flag.String("cmd", "up", "up|down|status|version|create|validate")
	dir := flag.String("dir", "", "migrations directory on disk (default: embedded set; create/validate use "+migrate.DefaultDir+")")
	name := flag.String("name", "", "migration name for -cmd=create")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if err := run(*cmd, *dir, *name, *version); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(cmd, dir, name, version string) error {
	// create and validate work on files only and need no config
	switch cmd {
	case "create":
		if name == "" {
			return fmt.Errorf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(diskDir(dir), name)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(diskDir(dir)); err != nil {
			return err
		}
		fmt.Println("migrations ok")
		return nil
	case "up", "down", "status", "version":
	default:
		return fmt.Errorf("unknown -cmd %q", cmd)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{"env": cfg.App.Env, "cmd": cmd})

	if cfg.DB.IsSQLite() {
		return fmt.Errorf("goose migrations target postgres; sqlite schemas are auto-migrated at boot")
	}
	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer client.Close()
	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}

	var fsys fs.FS = migrate.Embedded()
	if dir != "" {
		fsys = os.DirFS(dir)
	}

	var applied []migrate.Applied
	switch cmd {
	case "up":
		applied, err = migrate.Up(ctx, sqlDB, fsys)
	case "down":
		applied, err = migrate.Down(ctx, sqlDB, fsys)
	case "version":
		if version == "" {
			return fmt.Errorf("missing -version for version")
		}
		applied, err = migrate.MigrateToVersion(ctx, sqlDB, fsys, version)
	case "status":
		states, statusErr := migrate.Status(ctx, sqlDB, fsys)
		if statusErr != nil {
			return statusErr
		}
		printStatus(states)
		return nil
	}
	if err != nil {
		return err
	}
	for _, a := range applied {
		fmt.Printf("%-4s %d %s (%s)\n", a.Direction, a.Version, a.Path, a.Duration.Round(time.Millisecond))
	}
	logg.Info(logg.WithField(ctx, "count", len(applied)), "migrate.complete")
	return nil
}

func diskDir(dir string) string {
	if dir == "" {
		return migrate.DefaultDir
	}
	return dir
}

func printStatus(states []migrate.State) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tAPPLIED AT\tFILE")
	for _, st := range states {
		at := "pending"
		if st.Applied {
			at = st.AppliedAt.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", st.Version, at, st.Path)
	}
	_ = tw.Flush()
}
