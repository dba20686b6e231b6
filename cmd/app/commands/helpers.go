// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/keywarden/keywarden/internal/app"
)

// CommandIO carries the reader and writer a command talks to, so tests can
// substitute buffers for stdin and stdout.
type CommandIO struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns a CommandIO bound to the process stdin and stdout.
func DefaultIO() CommandIO {
	return CommandIO{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer releases container resources, logging any shutdown errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate releases the migrate instance, logging any close errors.
func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	srcErr, dbErr := m.Close()
	if err := errors.Join(srcErr, dbErr); err != nil {
		logger.Error("failed to close the migrate instance", slog.Any("error", err))
	}
}

// outputJSON writes v as indented JSON.
func outputJSON(v any, w io.Writer) {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(v)
}

// writeLine writes a single formatted line, ignoring write errors. CLI output
// failures are not actionable.
func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
