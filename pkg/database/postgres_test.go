package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sportsgrades-api/pkg/config"
)

func TestDataSourceName(t *testing.T) {
	dsn := dataSourceName(config.DatabaseConfig{
		Host:            "db.internal",
		Port:            5433,
		User:            "lms_reader",
		Password:        "it's secret",
		Name:            "moodle",
		SSLMode:         "require",
		ApplicationName: "sportsgrades-api",
		ConnectTimeout:  3 * time.Second,
	})

	assert.Equal(t, `host=db.internal port=5433 user=lms_reader password='it\'s secret' dbname=moodle sslmode=require application_name=sportsgrades-api connect_timeout=3`, dsn)
}

func TestDataSourceNameOmitsOptionalSettings(t *testing.T) {
	dsn := dataSourceName(config.DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "lms", SSLMode: "disable"})

	assert.Equal(t, `host=localhost port=5432 user=postgres password='' dbname=lms sslmode=disable`, dsn)
}

func TestConfigurePool(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "sqlmock")
	defer db.Close()

	configurePool(db, config.DatabaseConfig{MaxOpenConns: 7})

	assert.Equal(t, 7, db.Stats().MaxOpenConnections)
}
