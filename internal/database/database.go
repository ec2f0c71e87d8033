// Package database opens the single database connection the server runs on.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"proshop/internal/repositories"

	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// ConnectTimeout bounds connecting and pinging the database at boot.
const ConnectTimeout = 15 * time.Second

// Config selects the database driver.
type Config struct {
	Driver   string // mongo, postgres or sqlite
	MongoURI string
	MongoDB  string
	DSN      string
	Debug    bool // log SQL statements
}

// Open connects to the configured database and returns its repositories. Callers treat
// an error as fatal: the server never runs without a database.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (*repositories.Store, error) {
	switch cfg.Driver {
	case "", "mongo":
		return ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	case "postgres":
		return ConnectGORM(postgres.Open(cfg.DSN), cfg.Debug, logger)
	case "sqlite":
		return ConnectGORM(sqlite.Open(cfg.DSN), cfg.Debug, logger)
	default:
		return nil, fmt.Errorf("database: unknown driver %q", cfg.Driver)
	}
}

// ConnectMongo connects, pings and prepares the collections of dbName.
func ConnectMongo(ctx context.Context, uri, dbName string, logger *zap.Logger) (*repositories.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	opts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("MongoDB connection failed", zap.Error(err))
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Error("MongoDB ping failed", zap.Error(err))
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	store, err := repositories.NewMongoStore(ctx, client, client.Database(dbName))
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	logger.Info("MongoDB connected",
		zap.String("host", strings.Join(opts.Hosts, ",")),
		zap.String("database", dbName))
	return store, nil
}

// ConnectGORM opens a SQL database through GORM and migrates its tables.
func ConnectGORM(dialector gorm.Dialector, debug bool, logger *zap.Logger) (*repositories.Store, error) {
	level := gormlogger.Silent
	if debug {
		level = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		logger.Error("database connection failed", zap.String("driver", dialector.Name()), zap.Error(err))
		return nil, fmt.Errorf("%s connect: %w", dialector.Name(), err)
	}
	if err := repositories.Migrate(db); err != nil {
		logger.Error("database migration failed", zap.String("driver", dialector.Name()), zap.Error(err))
		if sqlDB, derr := db.DB(); derr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	logger.Info("database connected",
		zap.String("driver", dialector.Name()),
		zap.String("host", resolvedHost(dialector)),
		zap.String("database", db.Migrator().CurrentDatabase()))
	return repositories.NewGORMStore(db), nil
}

// resolvedHost names the server a dialector connects to, or the file for sqlite.
// Credentials never appear in the result.
func resolvedHost(dialector gorm.Dialector) string {
	switch d := dialector.(type) {
	case *postgres.Dialector:
		pc, err := pgconn.ParseConfig(d.DSN)
		if err != nil {
			return "unknown"
		}
		return fmt.Sprintf("%s:%d", pc.Host, pc.Port)
	case *sqlite.Dialector:
		file, _, _ := strings.Cut(strings.TrimPrefix(d.DSN, "file:"), "?")
		if file == "" {
			return "memory"
		}
		return file
	default:
		return "unknown"
	}
}
