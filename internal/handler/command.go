package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"hopper/internal/logging"
)

// CommandHandler runs a configured command for each stabilized file, with
// the file path appended as the final argument. A non-zero exit means the
// file stays in the watch directory.
type CommandHandler struct {
	argv   []string
	logger *slog.Logger
}

// NewCommandHandler builds a handler around the given argv.
func NewCommandHandler(argv []string, logger *slog.Logger) (*CommandHandler, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, errors.New("command handler requires a command")
	}
	return &CommandHandler{
		argv:   argv,
		logger: logging.WithComponent(logger, "command-handler"),
	}, nil
}

// Process executes the command with path appended. No timeout wraps the
// invocation; a hanging command stalls the whole pipeline, which is an
// accepted limitation of the serialized worker.
func (h *CommandHandler) Process(ctx context.Context, path string) error {
	args := append(append([]string{}, h.argv[1:]...), path)
	cmd := exec.CommandContext(ctx, h.argv[0], args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	h.logger.Debug("running processing command",
		logging.String("command", h.argv[0]),
		logging.String(logging.FieldPath, path),
	)
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return fmt.Errorf("command %s: %w: %s", h.argv[0], err, truncate(detail, 512))
		}
		return fmt.Errorf("command %s: %w", h.argv[0], err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
