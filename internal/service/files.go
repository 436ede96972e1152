package service

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"devconnect/internal/domain"
	"devconnect/internal/storage"
	"devconnect/internal/upload"
)

// FileStore persists accepted uploads.
type FileStore interface {
	Save(k upload.Kind, name string, src io.Reader) (*storage.Stored, error)
	Remove(k upload.Kind, name string) error
}

var _ FileStore = (*storage.Local)(nil)

// Upload is a file received from a client. Size is what the client declared;
// the store enforces the ceiling on the actual stream as well.
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

func (u *Upload) present() bool {
	return u != nil && strings.TrimSpace(u.Filename) != ""
}

// admit runs u through the gate for kind. Rejections come back wrapped in
// domain.ErrRejectedUpload and still match *upload.Rejection via errors.As.
func admit(u *Upload, kind upload.Kind) (*upload.Accepted, error) {
	acc, rej := upload.Validate(u.Filename, u.Size, kind)
	if rej != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRejectedUpload, rej)
	}
	return acc, nil
}

// store writes an admitted upload under a fresh name owned by ownerID.
func store(files FileStore, ownerID int64, now time.Time, acc *upload.Accepted, body io.Reader) (*storage.Stored, error) {
	name := upload.StoredName(ownerID, now, acc.Filename)
	st, err := files.Save(acc.Kind, name, body)
	if errors.Is(err, storage.ErrTooLarge) {
		rej := &upload.Rejection{Reason: upload.ReasonTooLarge, Filename: acc.Filename, Extension: acc.Extension}
		return nil, fmt.Errorf("%w: %w", domain.ErrRejectedUpload, rej)
	}
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", acc.Kind, err)
	}
	return st, nil
}

func strPtr(s string) *string {
	return &s
}
