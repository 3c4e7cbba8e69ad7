package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/snapshare/backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	Mongo    *mongo.Client
	Database *mongo.Database
	Sessions *gorm.DB
	Redis    *redis.Client

	logger *zap.Logger
}

// InitDB connects MongoDB, the session SQL store and, when configured, Redis
func InitDB(ctx context.Context, cfg *Config, logger *zap.Logger) (*DB, error) {
	db := &DB{logger: logger}

	mongoClient, err := initMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	db.Mongo = mongoClient
	db.Database = mongoClient.Database(cfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	sessions, err := initSessions(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	db.Sessions = sessions

	if cfg.RedisURL != "" {
		rdb, err := initRedis(ctx, cfg.RedisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		db.Redis = rdb
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set, auth rate limiting disabled")
	}

	return db, nil
}

// initSessions opens PostgreSQL when POSTGRES_URL is set and a SQLite file otherwise
func initSessions(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.PostgresUrl != "" {
		dialector = postgres.Open(cfg.PostgresUrl)
	} else {
		dialector = sqlite.Open(cfg.SessionSQLitePath)
	}

	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.RefreshSession{}); err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return db, nil
}

func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func initRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// Ping checks that MongoDB is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.Mongo.Ping(ctx, nil)
}

// Close closes every open connection
func (db *DB) Close() {
	if db.Sessions != nil {
		if sqlDB, err := db.Sessions.DB(); err != nil {
			db.logger.Error("getting SQL DB from GORM", zap.Error(err))
		} else if err := sqlDB.Close(); err != nil {
			db.logger.Error("closing session store", zap.Error(err))
		} else {
			db.logger.Info("session store closed")
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			db.logger.Error("closing Redis connection", zap.Error(err))
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			db.logger.Error("closing MongoDB connection", zap.Error(err))
		} else {
			db.logger.Info("MongoDB connection closed")
		}
	}
}
