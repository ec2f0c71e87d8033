package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"proshop/internal/config"
	"proshop/internal/database"
	"proshop/internal/services"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
)

func TestCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["seed"])
	assert.True(t, names["worker"])

	sub := map[string]bool{}
	for _, c := range seedCmd.Commands() {
		sub[c.Name()] = true
	}
	assert.True(t, sub["import"])
	assert.True(t, sub["destroy"])

	assert.NotNil(t, rootCmd.RunE, "running without a subcommand starts the server")
	assert.Equal(t, "proshop.order-events", workerCmd.Flags().Lookup("queue").DefValue)
}

func TestNewApp(t *testing.T) {
	ctx := context.Background()
	store, err := database.ConnectGORM(sqlite.Open("file:"+uuid.New().String()+"?mode=memory&cache=shared"), false, zap.NewNop())
	require.NoError(t, err)
	defer store.Close(ctx)

	rt := &runtime{
		cfg: &config.Config{
			Env:                config.EnvTest,
			JWTSecret:          "secret",
			PaginationLimit:    8,
			StorageDriver:      "local",
			UploadDir:          t.TempDir(),
			LoginRatePerMinute: 30,
		},
		log:   zap.NewNop(),
		store: store,
	}

	app, cleanup, err := newApp(ctx, rt)
	require.NoError(t, err)
	defer cleanup()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestNewApp_UnknownStorageDriver(t *testing.T) {
	rt := &runtime{
		cfg:   &config.Config{Env: config.EnvTest, StorageDriver: "ftp"},
		log:   zap.NewNop(),
		store: nil,
	}
	_, cleanup, err := newApp(context.Background(), rt)
	assert.Error(t, err)
	cleanup()
}

func TestOrderEventHandler(t *testing.T) {
	handle := orderEventHandler(zap.NewNop())

	body, err := json.Marshal(services.OrderEvent{
		OrderID:    "65a1b2c3d4e5f6a7b8c9d0e1",
		UserID:     "65a1b2c3d4e5f6a7b8c9d0e2",
		TotalPrice: 61.75,
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	assert.NoError(t, handle(amqp.Delivery{RoutingKey: services.EventOrderCreated, Body: body}))
	assert.Error(t, handle(amqp.Delivery{RoutingKey: services.EventOrderCreated, Body: []byte("{not json")}))
	assert.Error(t, handle(amqp.Delivery{RoutingKey: services.EventOrderPaid, Body: []byte(`{}`)}))
}
