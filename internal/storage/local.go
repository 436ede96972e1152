// Package storage keeps uploaded attachments on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"devconnect/internal/upload"
)

// ErrTooLarge is returned when the stream is longer than upload.MaxBytes,
// whatever size the client declared.
var ErrTooLarge = errors.New("storage: file exceeds size limit")

var kinds = []upload.Kind{upload.KindAvatar, upload.KindImage, upload.KindFile, upload.KindChatFile}

// Local writes attachments under root, one directory per upload kind.
type Local struct {
	root string
}

// NewLocal creates the kind directories under root.
func NewLocal(root string) (*Local, error) {
	for _, k := range kinds {
		if err := os.MkdirAll(filepath.Join(root, k.Dir()), 0o755); err != nil {
			return nil, fmt.Errorf("creating upload dir: %w", err)
		}
	}
	return &Local{root: root}, nil
}

// Dir is the absolute directory for kind k.
func (s *Local) Dir(k upload.Kind) string {
	return filepath.Join(s.root, k.Dir())
}

// Stored describes a file that has been durably written.
type Stored struct {
	Kind       upload.Kind
	Name       string
	PublicPath string
	Size       int64
}

// Save streams src into a new file named name under kind's directory.
// The file appears under its final name only after it was fully written;
// on any error nothing is left behind.
func (s *Local) Save(k upload.Kind, name string, src io.Reader) (*Stored, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("storage: invalid name %q", name)
	}
	dir := s.Dir(k)
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	n, err := io.Copy(tmp, io.LimitReader(src, upload.MaxBytes+1))
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if n > upload.MaxBytes {
		cleanup()
		return nil, ErrTooLarge
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return nil, fmt.Errorf("sync upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("close upload: %w", err)
	}

	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); err == nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("storage: %q already exists", name)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return nil, fmt.Errorf("rename upload: %w", err)
	}
	return &Stored{Kind: k, Name: name, PublicPath: upload.PublicPath(k, name), Size: n}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Local) Remove(k upload.Kind, name string) error {
	if name == "" || name != filepath.Base(name) {
		return fmt.Errorf("storage: invalid name %q", name)
	}
	err := os.Remove(filepath.Join(s.Dir(k), name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Path resolves a stored file name to its location on disk, refusing
// anything that is not a plain base name.
func (s *Local) Path(k upload.Kind, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("storage: invalid name %q", name)
	}
	return filepath.Join(s.Dir(k), name), nil
}
