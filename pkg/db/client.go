package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/angelmondragon/moments-backend/pkg/config"
	"github.com/angelmondragon/moments-backend/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Client owns the pooled GORM connection shared by the repositories.
type Client struct {
	conn    *gorm.DB
	dialect string
}

// Pinger is what health checks need from a datastore.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the configured driver, sizes the pool and verifies the
// connection before returning. Postgres is the production driver; sqlite
// backs local development and single-node demos.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	dialect := config.DBDriverPostgres
	var dialector gorm.Dialector = postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true})
	if cfg.IsSQLite() {
		dialect = config.DBDriverSQLite
		dialector = sqlite.Open(cfg.DSN)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQueryThreshold),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	configurePool(sqlDB, cfg, dialect)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, multierr.Append(fmt.Errorf("ping %s: %w", dialect, err), sqlDB.Close())
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"db_driver":      dialect,
			"max_open_conns": sqlDB.Stats().MaxOpenConnections,
		}), "db.connected")
	}
	return &Client{conn: conn, dialect: dialect}, nil
}

// NewFromGorm wraps an already opened connection, mainly for tests.
func NewFromGorm(conn *gorm.DB) *Client {
	return &Client{conn: conn, dialect: conn.Dialector.Name()}
}

func configurePool(sqlDB *sql.DB, cfg config.DBConfig, dialect string) {
	if dialect == config.DBDriverSQLite {
		// One writer at a time; more connections only produce SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		return
	}
	// Zero leaves the database/sql default in place.
	if n := cfg.MaxOpenConns; n > 0 {
		sqlDB.SetMaxOpenConns(n)
	}
	if n := cfg.MaxIdleConns; n > 0 {
		sqlDB.SetMaxIdleConns(n)
	}
	if d := cfg.ConnMaxLifetime; d > 0 {
		sqlDB.SetConnMaxLifetime(d)
	}
	if d := cfg.ConnMaxIdleTime; d > 0 {
		sqlDB.SetConnMaxIdleTime(d)
	}
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Dialect names the active driver, "postgres" or "sqlite".
func (c *Client) Dialect() string {
	return c.dialect
}

func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
