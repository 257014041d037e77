package main

import (
	"fmt"
	"os"

	"github.com/boardwalk-dev/boardwalk/db"
	"github.com/boardwalk-dev/boardwalk/internal/config"
	"github.com/boardwalk-dev/boardwalk/pkg/apierrors"
	"github.com/boardwalk-dev/boardwalk/pkg/translator"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "boardwalk",
		Short:        "Boardwalk - Kanban board API",
		Version:      Version,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(repairCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *zap.Logger
}

// bootstrap loads configuration, installs the global logger and opens the
// database. The caller owns app.close.
func bootstrap() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var logger *zap.Logger
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	translator.InitTranslator()
	apierrors.SetDebug(cfg.IsDevelopment())

	database, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &app{cfg: cfg, db: database, logger: logger}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			return db.Migrate(a.db)
		},
	}
}
