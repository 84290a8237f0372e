package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
)

// Check round-trips a small payload through store and removes it.
func Check(ctx context.Context, store Storage) error {
	payload := []byte("formcheck storage check")

	name, err := store.SaveFile(ctx, bytes.NewReader(payload), FileInfo{
		Filename:    "check.bin",
		ContentType: "application/octet-stream",
		Size:        int64(len(payload)),
	})
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	defer store.DeleteFile(ctx, name)

	rc, err := store.OpenFile(ctx, name)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if !bytes.Equal(got, payload) {
		return fmt.Errorf("read back %d bytes, wrote %d", len(got), len(payload))
	}
	return nil
}
