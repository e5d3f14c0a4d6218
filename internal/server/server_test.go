package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aevon-lab/eventbook/internal/conn"
	"github.com/aevon-lab/eventbook/internal/core/storage"
	"github.com/aevon-lab/eventbook/internal/core/storage/memory"
)

func getHealth(t *testing.T, s *Server) (int, map[string]string) {
	t.Helper()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Engine.ServeHTTP(w, req)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealth_Connected(t *testing.T) {
	cache := conn.NewCache("memory://health", func(ctx context.Context, uri string) (storage.Backend, error) {
		return memory.NewAdapter(), nil
	})
	s := New(":0", cache, "release")

	code, body := getHealth(t, s)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, map[string]string{"status": "healthy", "database": "connected"}, body)
}

func TestHealth_Unreachable(t *testing.T) {
	tests := []struct {
		name  string
		cache *conn.Cache
	}{
		{
			name: "dial fails",
			cache: conn.NewCache("postgres://localhost/eventbook", func(ctx context.Context, uri string) (storage.Backend, error) {
				return nil, errors.New("connection refused")
			}),
		},
		{
			name:  "no uri configured",
			cache: conn.NewCache("", nil),
		},
		{
			name: "ping fails",
			cache: conn.NewCache("memory://closed", func(ctx context.Context, uri string) (storage.Backend, error) {
				b := memory.NewAdapter()
				_ = b.Close()
				return b, nil
			}),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(":0", tc.cache, "release")

			code, body := getHealth(t, s)
			require.Equal(t, http.StatusServiceUnavailable, code)
			require.Equal(t, map[string]string{"status": "unhealthy", "error": "database unreachable"}, body)
		})
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	cache := conn.NewCache("memory://run", func(ctx context.Context, uri string) (storage.Backend, error) {
		return memory.NewAdapter(), nil
	})
	s := New("127.0.0.1:0", cache, "release")
	s.ShutdownTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestServer_RunListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := New(ln.Addr().String(), conn.NewCache("memory://busy", nil), "release")

	err = s.Run(context.Background())
	require.ErrorContains(t, err, "failed to listen on "+ln.Addr().String())
}
