package store_test

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"sketchroom/internal/store"
	"sketchroom/migrations"
)

var pg *store.PostgresStore

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine3.22",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testusername"),
		postgres.WithPassword("testpassword"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connString, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		panic(err)
	}

	if err := migrations.Migrate(connString); err != nil {
		panic(err)
	}

	pg, err = store.NewPostgresStore(ctx, connString)
	if err != nil {
		panic(err)
	}

	code := m.Run()

	pg.Close()
	postgresContainer.Terminate(ctx)
	os.Exit(code)
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	ctx := context.Background()

	t.Run("Get_MissingKey", func(t *testing.T) {
		_, err := pg.Get(ctx, "roomA", store.KeyStrokes)
		assert.ErrorIs(t, err, store.ErrKeyNotFound)
	})

	t.Run("Put_Then_Get", func(t *testing.T) {
		value := []byte(`[{"id":"s1"}]`)
		require.NoError(t, pg.Put(ctx, "roomA", store.KeyStrokes, value))

		got, err := pg.Get(ctx, "roomA", store.KeyStrokes)
		assert.NoError(t, err)
		assert.JSONEq(t, string(value), string(got))
	})

	t.Run("Put_Overwrites", func(t *testing.T) {
		require.NoError(t, pg.Put(ctx, "roomA", store.KeyGameState, []byte(`{"phase":"lobby"}`)))
		require.NoError(t, pg.Put(ctx, "roomA", store.KeyGameState, []byte(`{"phase":"playing"}`)))

		got, err := pg.Get(ctx, "roomA", store.KeyGameState)
		assert.NoError(t, err)
		assert.JSONEq(t, `{"phase":"playing"}`, string(got))
	})

	t.Run("Rooms_Are_Isolated", func(t *testing.T) {
		require.NoError(t, pg.Put(ctx, "roomB", store.KeyStrokes, []byte(`[]`)))

		got, err := pg.Get(ctx, "roomA", store.KeyStrokes)
		assert.NoError(t, err)
		assert.NotEqual(t, "[]", string(got))
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, pg.Put(ctx, "roomC", store.KeyFills, []byte(`[]`)))
		require.NoError(t, pg.Delete(ctx, "roomC", store.KeyFills))

		_, err := pg.Get(ctx, "roomC", store.KeyFills)
		assert.ErrorIs(t, err, store.ErrKeyNotFound)
	})

	t.Run("Delete_MissingKey_IsNoop", func(t *testing.T) {
		assert.NoError(t, pg.Delete(ctx, "roomZ", store.KeyStrokes))
	})
}
