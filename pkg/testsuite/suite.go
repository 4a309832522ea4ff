package testsuite

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// BaseSuite spins up throwaway infrastructure for integration tests. Call
// SetupPostgres for database-only suites, or additionally SetupKafka when the
// code under test publishes or consumes events.
type BaseSuite struct {
	suite.Suite

	Ctx    context.Context
	cancel context.CancelFunc

	Logger *zap.Logger

	pgContainer    *tcpostgres.PostgresContainer
	kafkaContainer *tckafka.KafkaContainer

	Pool         *pgxpool.Pool
	PostgresURL  string
	KafkaBrokers []string
}

func (s *BaseSuite) SetupBase() {
	s.Ctx, s.cancel = context.WithCancel(context.Background())
	s.Logger = zap.NewNop()
}

// SetupPostgres starts a postgres container and applies the migrations found
// at migrationsPath (relative to the test's working directory).
func (s *BaseSuite) SetupPostgres(migrationsPath string) {
	container, err := tcpostgres.Run(s.Ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.pgContainer = container

	dbURL, err := container.ConnectionString(s.Ctx, "sslmode=disable")
	s.Require().NoError(err)
	s.PostgresURL = dbURL

	s.applyMigrations(migrationsPath, dbURL)

	pool, err := pgxpool.New(s.Ctx, dbURL)
	s.Require().NoError(err)
	s.Require().NoError(pool.Ping(s.Ctx))
	s.Pool = pool
}

func (s *BaseSuite) SetupKafka() {
	container, err := tckafka.Run(s.Ctx,
		"confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"),
	)
	s.Require().NoError(err)
	s.kafkaContainer = container

	brokers, err := container.Brokers(s.Ctx)
	s.Require().NoError(err)
	s.KafkaBrokers = brokers
}

func (s *BaseSuite) applyMigrations(migrationsPath string, dbURL string) {
	absPath, err := filepath.Abs(migrationsPath)
	s.Require().NoError(err)

	m, err := migrate.New(fmt.Sprintf("file://%s", absPath), dbURL)
	s.Require().NoError(err)

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		s.Require().NoError(err)
	}

	srcErr, dbErr := m.Close()
	s.Require().NoError(srcErr)
	s.Require().NoError(dbErr)
}

// TruncateTables wipes the given tables between tests.
func (s *BaseSuite) TruncateTables(tables ...string) {
	for _, table := range tables {
		_, err := s.Pool.Exec(s.Ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		s.Require().NoError(err)
	}
}

func (s *BaseSuite) TearDownBase() {
	if s.Pool != nil {
		s.Pool.Close()
	}

	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}

	if s.kafkaContainer != nil {
		_ = s.kafkaContainer.Terminate(context.Background())
	}

	if s.cancel != nil {
		s.cancel()
	}
}
