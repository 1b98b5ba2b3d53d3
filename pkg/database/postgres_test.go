package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/saju-admin-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "saju", SSLMode: "disable"})
	require.Equal(t, "host=db port=5433 user=u password=p dbname=saju sslmode=disable connect_timeout=5 application_name=saju-admin-api", dsn)
}

func TestDSNQuotesAwkwardValues(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: `it's a pass`, Name: "saju", SSLMode: "require"})
	require.Contains(t, dsn, `password='it\'s a pass'`)

	dsn = DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Name: "saju", SSLMode: "disable"})
	require.Contains(t, dsn, "password='' ")
}
