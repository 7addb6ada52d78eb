package db

import (
	"context"
	"testing"

	"github.com/hilthontt/ridehail/internal/infrastructure/configs"
	"github.com/stretchr/testify/assert"
)

func TestNewMongoConfig(t *testing.T) {
	cfg := NewMongoConfig(configs.StoreConfig{URI: "mongodb://db:27017"})

	assert.Equal(t, "mongodb://db:27017", cfg.URI)
	assert.Equal(t, DefaultDatabase, cfg.Database)
	assert.Equal(t, DefaultConnectionTimeout, cfg.ConnectionTimeout)
}

func TestNewMongoClient_RejectsIncompleteConfig(t *testing.T) {
	ctx := context.Background()

	_, err := NewMongoClient(ctx, nil)
	assert.Error(t, err)

	_, err = NewMongoClient(ctx, &MongoConfig{Database: "ridehail"})
	assert.Error(t, err)

	_, err = NewMongoClient(ctx, &MongoConfig{URI: "mongodb://localhost:27017"})
	assert.Error(t, err)
}

func TestDisconnectMongo_NilClient(t *testing.T) {
	assert.NoError(t, DisconnectMongo(context.Background(), nil))
}
