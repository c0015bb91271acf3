package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-substitution-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "timetable",
		Password: `it's secret`,
		Name:     "school_timetable",
		SSLMode:  "disable",
	})

	assert.Equal(t, `host=db.internal port=5433 user=timetable password='it\'s secret' dbname=school_timetable sslmode=disable application_name=sma-substitution-api default_transaction_read_only=on`, dsn)
}

func TestDSNQuotesEmptyValues(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "school_timetable", SSLMode: "disable"})
	assert.Contains(t, dsn, "password='' ")
}
