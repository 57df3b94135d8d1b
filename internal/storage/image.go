// Package storage persists an emulated tag's card image to a flat file
// between runs of cmd/ntagemu, the way the teacher's key-loading helpers
// persist AES keys to .hex files.
package storage

import (
	"fmt"
	"os"
)

// Load reads an existing card image from path. The file must be exactly
// wantLen bytes.
func Load(path string, wantLen int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read card image: %w", err)
	}
	if len(data) != wantLen {
		return nil, fmt.Errorf("card image %s: want %d bytes, got %d", path, wantLen, len(data))
	}
	return data, nil
}

// Exists reports whether path already holds a card image.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Save writes image to path, replacing any existing file.
func Save(path string, image []byte) error {
	if err := os.WriteFile(path, image, 0o600); err != nil {
		return fmt.Errorf("write card image: %w", err)
	}
	return nil
}
