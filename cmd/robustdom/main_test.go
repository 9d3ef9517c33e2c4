// cmd/robustdom/main_test.go
package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
}

func TestHandlePanic(t *testing.T) {
	t.Cleanup(resetMocks)

	t.Run("writes the panic log", func(t *testing.T) {
		dir := t.TempDir()
		var written string
		osWriteFile = func(name string, data []byte, perm os.FileMode) error {
			written = string(data)
			return os.WriteFile(filepath.Join(dir, name), data, perm)
		}
		code := -1
		osExit = func(c int) { code = c }

		func() {
			defer handlePanic()
			panic("boom")
		}()

		assert.Equal(t, 2, code)
		assert.Contains(t, written, "panic: boom")
		assert.FileExists(t, filepath.Join(dir, panicLogFile))
	})

	t.Run("falls back to stderr", func(t *testing.T) {
		osWriteFile = func(string, []byte, os.FileMode) error { return errors.New("read-only fs") }
		code := -1
		osExit = func(c int) { code = c }

		func() {
			defer handlePanic()
			panic("boom")
		}()

		assert.Equal(t, 2, code)
	})

	t.Run("no panic", func(t *testing.T) {
		called := false
		osExit = func(int) { called = true }
		func() {
			defer handlePanic()
		}()
		assert.False(t, called)
	})
}

func TestRun_ExitCodes(t *testing.T) {
	args := os.Args
	t.Cleanup(func() { os.Args = args })

	os.Args = []string{"robustdom", "version"}
	require.Equal(t, 0, run(context.Background()))

	os.Args = []string{"robustdom", "no-such-command"}
	assert.Equal(t, 1, run(context.Background()))
}
