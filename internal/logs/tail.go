package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// TailOptions controls how Tail reads the log file. A negative Offset means
// "the last Limit lines"; Follow with a positive Wait polls for new lines
// until the deadline passes.
type TailOptions struct {
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

// TailResult carries the lines read and the offset to resume from.
type TailResult struct {
	Lines  []string
	Offset int64
}

// Tail reads log lines from path per opts. A missing file is not an error;
// it returns an empty result with offset zero so callers can retry once the
// daemon has written something.
func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}

	wait := opts.Wait
	if wait < 0 {
		wait = 0
	}

	size := info.Size()
	start := opts.Offset
	switch {
	case start < 0:
		start, err = startOfLastLines(path, size, opts.Limit)
		if err != nil {
			return result, err
		}
	case start > size:
		// The file shrank underneath us (rotation); resume at the end.
		start = size
	}

	lines, next, err := readLines(path, start)
	if err != nil {
		return result, err
	}
	result.Lines = lines
	result.Offset = next

	if opts.Follow && wait > 0 && len(lines) == 0 {
		return awaitLines(ctx, path, next, wait)
	}
	return result, nil
}

// startOfLastLines walks the file backwards counting newlines and returns
// the offset where the trailing limit lines begin. It never loads more than
// one chunk at a time, so arbitrarily large logs stay cheap.
func startOfLastLines(path string, size int64, limit int) (int64, error) {
	if limit <= 0 || size == 0 {
		return size, nil
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	remaining := limit
	pos := size
	atEOF := true

	for pos > 0 {
		n := int64(chunkSize)
		if pos < n {
			n = pos
		}
		pos -= n
		if _, err := file.ReadAt(buf[:n], pos); err != nil {
			return 0, fmt.Errorf("read log file: %w", err)
		}
		for i := n - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			if atEOF && pos+i == size-1 {
				// Terminator of the final line, not a boundary
				// before one.
				atEOF = false
				continue
			}
			remaining--
			if remaining == 0 {
				return pos + i + 1, nil
			}
		}
	}
	return 0, nil
}

// readLines returns every complete-or-partial line from offset to EOF and
// the offset where the next read should resume.
func readLines(path string, offset int64) ([]string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	next, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return lines, next, nil
}

// awaitLines polls for lines appearing after offset until wait elapses or
// the context is canceled.
func awaitLines(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	result := TailResult{Offset: offset}

	deadline := time.NewTimer(wait)
	defer deadline.Stop()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		lines, next, err := readLines(path, offset)
		if err != nil {
			return result, err
		}
		result.Offset = next
		if len(lines) > 0 {
			result.Lines = lines
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-deadline.C:
			return result, nil
		case <-ticker.C:
		}
	}
}
