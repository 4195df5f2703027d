package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	config "example.com/socialfeed/internal/init"
	"example.com/socialfeed/internal/logger"
	"example.com/socialfeed/internal/models"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var logg = logger.New()

//go:embed migrations
var migrationsFS embed.FS

var (
	ErrNotFound      = errors.New("store: record not found")
	ErrUsernameTaken = errors.New("store: username already taken")
)

// --- Interfaces ---

type StoreInterface interface {
	CreateUser(ctx context.Context, username, passwordHash string) (models.User, error)
	GetUserByID(ctx context.Context, id uint) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	Follow(ctx context.Context, followerID, followedID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	ListFollowing(ctx context.Context, userID uint) ([]models.User, error)

	ListNotifications(ctx context.Context, userID uint) ([]models.Notification, error)
	MarkNotificationsRead(ctx context.Context, userID uint) (int64, error)
	CountUnreadNotifications(ctx context.Context, userID uint) (int64, error)

	CreatePost(ctx context.Context, post *models.Post) error
	ListPosts(ctx context.Context) ([]models.Post, error)

	Ping(ctx context.Context) error
	Close() error
}

// --- Store Implementation ---

type Store struct {
	db *gorm.DB
}

var _ StoreInterface = (*Store)(nil)

// New opens the configured database, applies pending migrations and returns the store.
func New(cfg *config.Config) (*Store, error) {
	dialector, err := dialectorFor(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger: gormlogger.New(log.New(os.Stdout, "", log.LstdFlags), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}

	if err := runMigrations(cfg.DBDriver, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logg.Info("store", "Connected to "+cfg.DBDriver+" database (dsn anonymized)")
	return &Store{db: db}, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// --- Migration runner ---

func runMigrations(driver string, sqlDB *sql.DB) error {
	var (
		dir    string
		dbName string
		dbDrv  database.Driver
		err    error
	)

	switch driver {
	case "sqlite", "sqlite3":
		dir, dbName = "migrations/sqlite", "sqlite3"
		dbDrv, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{})
	case "postgres", "postgresql":
		dir, dbName = "migrations/postgres", "pgx5"
		dbDrv, err = migratepgx.WithInstance(sqlDB, &migratepgx.Config{})
	case "mysql":
		dir, dbName = "migrations/mysql", "mysql"
		dbDrv, err = migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to create migrate database driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	// The migrate instance is not closed: closing it would close sqlDB.
	m, err := migrate.NewWithInstance("iofs", src, dbName, dbDrv)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logg.Info("store", "No new migrations to apply")
	} else {
		logg.Info("store", "Migrations applied successfully")
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the database connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil {
		return err
	}
	logg.Info("store", "Database connection closed")
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
