package main

import (
	"context"
	"testing"
	"time"

	"taskdeck/internal/server"
	inmemory "taskdeck/repository/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStorageSatisfiesRepositories(t *testing.T) {
	inmem := inmemory.NewStorage()

	var userRepo server.Repository = inmem
	var taskRepo server.TaskRepository = inmem

	assert.NotNil(t, userRepo)
	assert.NotNil(t, taskRepo)
}

func TestAPIWiring(t *testing.T) {
	inmem := inmemory.NewStorage()
	cfg := &server.Config{Addr: "127.0.0.1", Port: 0, TokenSecret: "test-secret"}

	api := server.NewTaskAPI(inmem, inmem, cfg)
	require.NotNil(t, api)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, api.Shutdown(ctx), "shutdown before start must not fail")
}

func TestAPIRequiresRepositories(t *testing.T) {
	assert.Nil(t, server.NewTaskAPI(nil, nil, &server.Config{}))
}
