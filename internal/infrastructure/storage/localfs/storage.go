// Package localfs implements the destination-side file store.
package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
)

type Storage struct{}

func New() *Storage {
	return &Storage{}
}

// EnsureDir creates the directory and intermediate segments if absent;
// existing directories are reused, never cleared.
func (s *Storage) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return nil
}

// ListNames returns the entry names of dir. A missing directory is an empty
// set, not an error.
func (s *Storage) ListNames(dir string) (map[string]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list directory: %w", err)
	}
	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		names[entry.Name()] = struct{}{}
	}
	return names, nil
}

// Copy writes a byte-for-byte copy of src at dst. The source is opened
// read-only and never modified.
func (s *Storage) Copy(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("write destination: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return nil
}
