package storage

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDSN(t *testing.T) {
	dsn := BuildDSN("db", "5432", "forge", "secret", "guildforge")
	assert.Equal(t, "host=db port=5432 user=forge password=secret dbname=guildforge sslmode=disable", dsn)
}

func TestInitRedis(t *testing.T) {
	t.Run("connects to a live server", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()

		client, err := InitRedis(mr.Host(), mr.Port(), "", 0, 4, 1)
		require.NoError(t, err)
		defer client.Close()
		assert.NotNil(t, client)
	})

	t.Run("fails when nothing listens", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		host, port := mr.Host(), mr.Port()
		mr.Close()

		client, err := InitRedis(host, port, "", 0, 4, 1)
		assert.Error(t, err)
		assert.Nil(t, client)
	})
}

func TestInitMongoUnreachable(t *testing.T) {
	_, _, err := InitMongo("mongodb://127.0.0.1:1", "guildforge", 500*time.Millisecond)
	assert.Error(t, err)
}
