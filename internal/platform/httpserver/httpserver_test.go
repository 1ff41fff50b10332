package httpserver

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewAppliesDefaults(t *testing.T) {
	srv := New(":8080", http.NotFoundHandler())

	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, DefaultTimeouts.ReadHeader, srv.ReadHeaderTimeout)
	assert.Equal(t, DefaultTimeouts.Write, srv.WriteTimeout)
	assert.Nil(t, srv.ErrorLog)
}

func TestNewOptions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	srv := New(":9090", http.NotFoundHandler(),
		WithTimeouts(Timeouts{ReadHeader: time.Second, Read: 2 * time.Second, Write: 3 * time.Second, Idle: 4 * time.Second}),
		WithLogger(logger),
	)

	assert.Equal(t, 2*time.Second, srv.ReadTimeout)
	assert.Equal(t, 4*time.Second, srv.IdleTimeout)
	srv.ErrorLog.Print("tls handshake error")
	assert.Contains(t, buf.String(), "tls handshake error")
}
