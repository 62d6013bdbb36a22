package main

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingCloser struct{ err error }

func (f failingCloser) Close() error { return f.err }

func TestCloseApp_LogsFailure(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	closeApp(failingCloser{})
	assert.Empty(t, buf.String())

	closeApp(failingCloser{err: errors.New("cache close: connection reset")})
	assert.Contains(t, buf.String(), "shutdown error")
	assert.Contains(t, buf.String(), "connection reset")
}
