package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

// Conn is satisfied by both *pgxpool.Pool and pgx.Tx, so repositories run inside or outside a transaction.
type Conn interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Client represents a Postgres client.
type Client struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (p *Client) Pool() *pgxpool.Pool {
	return p.pool
}

// Ping checks database connectivity.
func (p *Client) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() {
	p.pool.Close()
}

// ConnString builds the DSN from postgres.* config keys.
func ConnString() string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(viper.GetString("postgres.user"), viper.GetString("postgres.password")),
		Host:   fmt.Sprintf("%s:%d", viper.GetString("postgres.host"), viper.GetInt("postgres.port")),
		Path:   viper.GetString("postgres.db"),
	}
	q := dsn.Query()
	q.Set("sslmode", viper.GetString("postgres.sslmode"))
	if maxConns := viper.GetInt("postgres.max_conns"); maxConns > 0 {
		q.Set("pool_max_conns", fmt.Sprint(maxConns))
	}
	dsn.RawQuery = q.Encode()

	return dsn.String()
}

// MustNewClient creates a new Postgres client and applies pending migrations
// when postgres.auto_migrate is set.
func MustNewClient() *Client {
	config, err := pgxpool.ParseConfig(ConnString())
	if err != nil {
		panic(err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		panic(err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		panic(err)
	}

	client := &Client{
		pool: pool,
	}

	if viper.GetBool("postgres.auto_migrate") {
		if err := client.Migrate(context.Background(), MigrateUp); err != nil {
			panic(err)
		}
	}

	slog.Info("Postgres connected", "host", config.ConnConfig.Host, "db", config.ConnConfig.Database)

	return client
}

// MigrateCommand selects a goose operation.
type MigrateCommand string

const (
	MigrateUp     MigrateCommand = "up"
	MigrateDown   MigrateCommand = "down"
	MigrateStatus MigrateCommand = "status"
	MigrateReset  MigrateCommand = "reset"
)

// Migrate runs a goose command against migrations in postgres.migrations_path.
func (p *Client) Migrate(ctx context.Context, cmd MigrateCommand) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(p.pool)

	dir := viper.GetString("postgres.migrations_path")

	switch cmd {
	case MigrateUp:
		return goose.UpContext(ctx, db, dir)
	case MigrateDown:
		return goose.DownContext(ctx, db, dir)
	case MigrateStatus:
		return goose.StatusContext(ctx, db, dir)
	case MigrateReset:
		return goose.ResetContext(ctx, db, dir)
	default:
		return fmt.Errorf("unknown migrate command %q", cmd)
	}
}
