// EDA DuckDB - Ad-hoc Filter Explorer
// Copyright 2026 Gengsu07
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Gengsu07/edaduckdb

//go:build integration

package testinfra

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Gengsu07/edaduckdb/internal/config"
)

const (
	DefaultPostgresImage = "postgres:16-alpine"
	DefaultMySQLImage    = "mysql:8.4"

	testUser     = "eda"
	testPassword = "eda-test-pw"
	testDatabase = "eda"
)

// SourceContainer is a running source database.
type SourceContainer struct {
	testcontainers.Container

	Flavour  string
	Host     string
	Port     int
	User     string
	Password string
	Database string

	db *sql.DB
}

// SourceOption configures a source container.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	image        string
	startTimeout time.Duration
}

// WithImage overrides the container image.
func WithImage(image string) SourceOption {
	return func(c *sourceConfig) { c.image = image }
}

// WithStartTimeout bounds container start plus the first successful ping.
func WithStartTimeout(d time.Duration) SourceOption {
	return func(c *sourceConfig) { c.startTimeout = d }
}

// NewPostgresContainer starts PostgreSQL with an empty eda database.
func NewPostgresContainer(ctx context.Context, opts ...SourceOption) (*SourceContainer, error) {
	cfg := &sourceConfig{image: DefaultPostgresImage, startTimeout: 90 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
			"POSTGRES_DB":       testDatabase,
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithStartupTimeout(cfg.startTimeout),
	}
	return startSource(ctx, req, config.FlavourPostgres, "5432/tcp", "postgres", cfg.startTimeout,
		func(host string, port int) string {
			return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", testUser, testPassword, host, port, testDatabase)
		})
}

// NewMySQLContainer starts MySQL with an empty eda database.
func NewMySQLContainer(ctx context.Context, opts ...SourceOption) (*SourceContainer, error) {
	cfg := &sourceConfig{image: DefaultMySQLImage, startTimeout: 120 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": testPassword,
			"MYSQL_USER":          testUser,
			"MYSQL_PASSWORD":      testPassword,
			"MYSQL_DATABASE":      testDatabase,
		},
		WaitingFor: wait.ForListeningPort("3306/tcp").WithStartupTimeout(cfg.startTimeout),
	}
	return startSource(ctx, req, config.FlavourMySQL, "3306/tcp", "mysql", cfg.startTimeout,
		func(host string, port int) string {
			return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true", testUser, testPassword, host, port, testDatabase)
		})
}

func startSource(ctx context.Context, req testcontainers.ContainerRequest, flavour string, exposed nat.Port, driver string,
	timeout time.Duration, dsn func(host string, port int) string) (*SourceContainer, error) {

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s container: %w", flavour, err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, exposed)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("container port: %w", err)
	}

	db, err := sql.Open(driver, dsn(host, mapped.Int()))
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, err
	}
	if err := WaitForReady(ctx, func() error { return db.PingContext(ctx) }, timeout); err != nil {
		db.Close()               //nolint:errcheck
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("%s not ready: %w", flavour, err)
	}

	return &SourceContainer{
		Container: container,
		Flavour:   flavour,
		Host:      host,
		Port:      mapped.Int(),
		User:      testUser,
		Password:  testPassword,
		Database:  testDatabase,
		db:        db,
	}, nil
}

// DB returns a connection to the test database.
func (s *SourceContainer) DB() *sql.DB { return s.db }

// MustExec runs each statement and fails t on the first error.
func (s *SourceContainer) MustExec(t *testing.T, ctx context.Context, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

// DatabaseConfig points a db config section at the container.
func (s *SourceContainer) DatabaseConfig(table string) config.DatabaseConfig {
	return config.DatabaseConfig{
		Flavour:     s.Flavour,
		Host:        s.Host,
		Port:        s.Port,
		User:        s.User,
		Password:    s.Password,
		Database:    s.Database,
		Table:       table,
		SSLMode:     "disable",
		AttachAlias: "db",
		Introspect:  true,
	}
}

// Terminate closes the connection and stops the container.
func (s *SourceContainer) Terminate(ctx context.Context, opts ...testcontainers.TerminateOption) error {
	if s.db != nil {
		s.db.Close() //nolint:errcheck
	}
	return s.Container.Terminate(ctx, opts...)
}
