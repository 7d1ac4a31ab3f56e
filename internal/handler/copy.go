package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"hopper/internal/fileutil"
	"hopper/internal/logging"
)

// CopyHandler archives each file with a verified copy into a destination
// directory. An existing archive entry with the same name is never
// overwritten; the copy gets a numbered suffix instead, so re-delivered
// files cannot clobber earlier ones.
type CopyHandler struct {
	destDir string
	logger  *slog.Logger
}

// NewCopyHandler builds the default archive handler.
func NewCopyHandler(destDir string, logger *slog.Logger) (*CopyHandler, error) {
	if destDir == "" {
		return nil, errors.New("copy handler requires a destination directory")
	}
	return &CopyHandler{
		destDir: destDir,
		logger:  logging.WithComponent(logger, "copy-handler"),
	}, nil
}

// Process copies path into the destination directory.
func (h *CopyHandler) Process(_ context.Context, path string) error {
	if err := os.MkdirAll(h.destDir, 0o755); err != nil {
		return fmt.Errorf("ensure archive directory: %w", err)
	}

	dst, err := h.availableName(filepath.Base(path))
	if err != nil {
		return err
	}
	if err := fileutil.CopyFileVerified(path, dst); err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	h.logger.Debug("file archived",
		logging.String(logging.FieldPath, path),
		logging.String("destination", dst),
	)
	return nil
}

// availableName finds a destination path that does not collide with an
// existing archive entry.
func (h *CopyHandler) availableName(base string) (string, error) {
	candidate := filepath.Join(h.destDir, base)
	if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
		return candidate, nil
	}
	ext := filepath.Ext(base)
	stem := base[:len(base)-len(ext)]
	for i := 1; i < 1000; i++ {
		candidate = filepath.Join(h.destDir, fmt.Sprintf("%s.%d%s", stem, i, ext))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free archive name for %q", base)
}
