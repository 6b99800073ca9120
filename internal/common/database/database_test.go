package database

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"premium-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresClient_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS applicants").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS premium_predictions").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS premium_predictions_created_at_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	client := NewPostgresFromDB(db)
	require.NoError(t, client.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_MigrateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS applicants").WillReturnError(fmt.Errorf("permission denied"))

	err = NewPostgresFromDB(db).Migrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	type quote struct {
		Premium float64 `json:"premium"`
		Band    string  `json:"band"`
	}

	var got quote
	assert.ErrorIs(t, client.GetJSON(ctx, "quote:missing", &got), ErrCacheMiss)

	require.NoError(t, client.SetJSON(ctx, "quote:abc", quote{Premium: 12345.5, Band: "adult"}, time.Minute))
	require.NoError(t, client.GetJSON(ctx, "quote:abc", &got))
	assert.Equal(t, quote{Premium: 12345.5, Band: "adult"}, got)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, client.GetJSON(ctx, "quote:abc", &got), ErrCacheMiss)
}

func TestRedisClient_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()))
}

func TestElasticsearchClient_EnsureIndex(t *testing.T) {
	var mu sync.Mutex
	var created bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/":
			_, _ = w.Write([]byte(`{"cluster_name":"test","version":{"number":"8.11.0","build_flavor":"default"},"tagline":"You Know, for Search"}`))
		case r.Method == http.MethodHead && r.URL.Path == "/premium-predictions":
			if created {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut && r.URL.Path == "/premium-predictions":
			created = true
			_, _ = w.Write([]byte(`{"acknowledged":true,"index":"premium-predictions"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, client.EnsureIndex(ctx, "premium-predictions", `{"mappings":{}}`))
	require.NoError(t, client.EnsureIndex(ctx, "premium-predictions", `{"mappings":{}}`))

	mu.Lock()
	assert.True(t, created)
	mu.Unlock()
}
