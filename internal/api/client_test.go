package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "tok_test")
	return srv, client
}

func jsonResponse(data any) []byte {
	b, _ := json.Marshal(map[string]any{"data": data})
	return b
}

func TestClientSendsAuthAndRequestID(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok_test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"status":"ok"}`))
	})

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status)
}

func TestClientOmitsAuthWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").Health(context.Background())
	require.NoError(t, err)
}

func TestClientErrorEnvelope(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":"DUPLICATE","message":"client exists"}}`))
	})

	_, err := client.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE: client exists", err.Error())
}

func TestClientErrorDetailAndRawFallback(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"bad filter"}`))
	})
	_, err := client.Health(context.Background())
	assert.EqualError(t, err, "bad filter")

	_, client = testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})
	_, err = client.Health(context.Background())
	assert.EqualError(t, err, "HTTP 502: upstream down")
}

func TestClientRespectsTimeout(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status":"ok"}`))
	})

	_, err := client.WithTimeout(20 * time.Millisecond).Health(context.Background())
	assert.Error(t, err)
}

func TestClientCancelledContext(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Health(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeListAcceptsBareArray(t *testing.T) {
	items, err := decodeList[map[string]any]([]byte(`[{"a":1},{"a":2}]`))
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = decodeList[map[string]any](jsonResponse([]map[string]any{{"a": 1}}))
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestDecodeOneEmptyBody(t *testing.T) {
	item, err := decodeOne[map[string]any](nil)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestClientSetTokenDuringRequests(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _ = client.Health(context.Background())
			}
		}()
	}
	for j := 0; j < 20; j++ {
		client.SetToken("")
		client.SetToken("tok_next")
	}
	wg.Wait()

	assert.Equal(t, "tok_next", client.Token())
	assert.Equal(t, "tok_next", client.WithTimeout(time.Second).Token())
}
