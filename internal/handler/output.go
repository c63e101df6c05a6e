package handler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// nopCloser wraps writers the stage does not own, such as stdout
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing, or returns fallback when path is empty
func openOutput(path string, fallback io.Writer) (io.Writer, io.Closer, error) {
	if path == "" {
		return fallback, nopCloser{}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f, nil
}
