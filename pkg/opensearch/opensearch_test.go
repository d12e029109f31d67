package opensearch_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	opensearchgo "github.com/opensearch-project/opensearch-go/v2"

	"github.com/dmitrymomot/apimgmt/pkg/opensearch"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("no addresses", func(t *testing.T) {
		t.Parallel()

		client, err := opensearch.New(context.Background(), opensearch.Config{})
		require.ErrorIs(t, err, opensearch.ErrNotConfigured)
		assert.Nil(t, client)
	})

	t.Run("unreachable cluster", func(t *testing.T) {
		t.Parallel()

		client, err := opensearch.New(context.Background(), opensearch.Config{
			Addresses:    []string{"http://127.0.0.1:1"},
			DisableRetry: true,
		})
		require.ErrorIs(t, err, opensearch.ErrHealthcheckFailed)
		assert.Nil(t, client)
	})
}

func TestConfigEnabled(t *testing.T) {
	t.Parallel()

	assert.False(t, opensearch.Config{}.Enabled())
	assert.True(t, opensearch.Config{Addresses: []string{"http://localhost:9200"}}.Enabled())
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	cluster := func(t *testing.T, status string) *opensearchgo.Client {
		t.Helper()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"cluster_name":"test","status":"` + status + `"}`))
		}))
		t.Cleanup(srv.Close)

		client, err := opensearchgo.NewClient(opensearchgo.Config{Addresses: []string{srv.URL}, DisableRetry: true})
		require.NoError(t, err)
		return client
	}

	t.Run("green", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, opensearch.Healthcheck(cluster(t, "green"))(context.Background()))
	})

	t.Run("yellow", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, opensearch.Healthcheck(cluster(t, "yellow"))(context.Background()))
	})

	t.Run("red", func(t *testing.T) {
		t.Parallel()
		err := opensearch.Healthcheck(cluster(t, "red"))(context.Background())
		assert.ErrorIs(t, err, opensearch.ErrHealthcheckFailed)
	})
}
