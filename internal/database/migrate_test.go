package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreOrderedUpFiles(t *testing.T) {
	names, err := pendingCandidates()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	assert.Equal(t, "0001_create_blobs.up.sql", names[0])
	for _, name := range names {
		assert.NotContains(t, name, ".down.")
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "ledger", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=ledger sslmode=disable", cfg.DSN())
}
