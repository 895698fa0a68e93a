package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net"
	"strconv"
	"time"

	"portal/internal/configuration"
	"portal/internal/models"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Open connects to the configured database without touching the schema.
func Open(config models.DatabaseConfiguration) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch config.Type {
	case configuration.ProviderPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			config.Host,
			config.User,
			config.Password,
			config.Name,
			strconv.Itoa(int(config.Port)),
			config.SSLMode,
		)
		dialector = postgres.Open(dsn)
	case configuration.ProviderSQLite:
		dialector = sqlite.Open(config.Path + "?_foreign_keys=on&_busy_timeout=5000")
	default:
		return nil, fmt.Errorf("unsupported database type %q", config.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", config.Type, err)
	}

	if config.Type == configuration.ProviderSQLite {
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return nil, dbErr
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// Migrate applies the embedded migrations of dbType.
func Migrate(ctx context.Context, db *gorm.DB, dbType string) error {
	dialect := goose.DialectPostgres
	if dbType == configuration.ProviderSQLite {
		dialect = goose.DialectSQLite3
	}

	fsys, err := fs.Sub(migrationsFS, "migrations/"+dbType)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, result := range results {
		zap.L().Info("Applied migration",
			zap.String("source", result.Source.Path),
			zap.Duration("duration", result.Duration))
	}

	return nil
}

// InitDB opens and migrates the database. Any failure is fatal.
func InitDB(config models.DatabaseConfiguration) *gorm.DB {
	db, err := Open(config)
	if err != nil {
		zap.L().Fatal("Failed to connect to database", zap.Error(err))
	}

	if err = Migrate(context.Background(), db, config.Type); err != nil {
		zap.L().Fatal("Failed to migrate database", zap.Error(err))
	}

	target := config.Path
	if config.Type == configuration.ProviderPostgres {
		target = net.JoinHostPort(config.Host, strconv.Itoa(int(config.Port)))
	}
	zap.L().Info("Database ready", zap.String("type", config.Type), zap.String("target", target))

	return db
}
