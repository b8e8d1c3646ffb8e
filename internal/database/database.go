package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mrlokans/simplelibrary/internal/config"
	"github.com/mrlokans/simplelibrary/internal/entities"
	"github.com/mrlokans/simplelibrary/internal/logger"
)

// sqliteParams enables WAL and makes writers wait for the lock instead of
// failing immediately with SQLITE_BUSY.
const sqliteParams = "?_journal=WAL&_timeout=5000&_busy_timeout=5000&_txlock=immediate"

type Database struct {
	DB     *gorm.DB
	driver string
}

// NewDatabase opens (and migrates) a SQLite database at dbPath.
func NewDatabase(dbPath string) (*Database, error) {
	return Open(config.Database{Driver: config.DriverSQLite, Path: dbPath})
}

// Open connects to the configured driver and migrates the schema.
func Open(cfg config.Database) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite, "":
		dialector = sqlite.Open(cfg.Path + sqliteParams)
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for the postgres driver")
		}
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&entities.Book{},
		&entities.Loan{},
		&entities.AuditEvent{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverSQLite
	}

	target := cfg.Path
	if driver == config.DriverPostgres {
		target = "postgres"
	}
	log.Info().Str("driver", driver).Str("target", target).Msg("Database initialized")

	return &Database{DB: db, driver: driver}, nil
}

// newGormLogger sends slow queries and SQL errors to zerolog. A missing row is
// an ordinary 404, not something to log.
func newGormLogger() gormlogger.Interface {
	return gormlogger.New(gormWriter{log: logger.Component("gorm")}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// gormWriter logs at warn level; gorm only writes here for warnings and
// errors at the configured level.
type gormWriter struct {
	log zerolog.Logger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warn().Msgf(format, args...)
}

// Driver returns the configured driver name.
func (d *Database) Driver() string {
	return d.driver
}

// Dialect returns the goqu dialect name matching the driver.
func (d *Database) Dialect() string {
	if d.driver == config.DriverPostgres {
		return "postgres"
	}
	return "sqlite3"
}

// Ping checks connectivity of the underlying pool.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
