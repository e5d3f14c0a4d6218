package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return strconv.Itoa(port)
}

func memoryEnv(t *testing.T) {
	t.Setenv("EVENTBOOK_DATABASE__URI", "memory://cmd")
	t.Setenv("EVENTBOOK_SERVER__HOST", "127.0.0.1")
	t.Setenv("EVENTBOOK_SERVER__PORT", freePort(t))
}

func TestRun_SeedFailuresReturnErrors(t *testing.T) {
	memoryEnv(t)

	invalid := filepath.Join(t.TempDir(), "events.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("events:\n  - title: \"\"\n"), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "missing seed file",
			args:    []string{"-seed", filepath.Join(t.TempDir(), "nope.yaml")},
			wantErr: "failed to load seed file",
		},
		{
			name:    "invalid seeded event",
			args:    []string{"-seed", invalid},
			wantErr: "failed to seed events",
		},
		{
			name:    "unknown flag",
			args:    []string{"-verbose"},
			wantErr: "flag provided but not defined",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := run(context.Background(), tc.args)
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestRun_StopsWhenContextDone(t *testing.T) {
	memoryEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, run(ctx, nil))
}
