package db

import (
	"fmt"

	"github.com/boardwalk-dev/boardwalk/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Open connects to the configured database. For sqlite the DSN is a file
// path or ":memory:".
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for driver %q", driver)
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		// sqlite serializes writers; a single connection also keeps
		// ":memory:" databases shared across calls.
		sqlDB, err := database.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := database.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	}

	return database, nil
}

func Migrate(database *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.Board{},
		&models.List{},
		&models.Task{},
	}

	for _, model := range models {
		if err := database.AutoMigrate(model); err != nil {
			return err
		}
	}

	zap.L().Info("database schema migrated", zap.Int("tables", len(models)))
	return nil
}
