// Package upload decides which uploaded files may enter the stores.
package upload

import (
	"fmt"
	"path"
	"strings"
)

// MaxBytes is the size ceiling for every upload kind (10 MiB).
const MaxBytes int64 = 10 * 1024 * 1024

// DefaultMediaType is used when the extension has no known media type.
const DefaultMediaType = "application/octet-stream"

// Kind selects an extension allow-list and the directory files land in.
type Kind string

const (
	KindAvatar   Kind = "avatar"
	KindImage    Kind = "image"
	KindFile     Kind = "file"
	KindChatFile Kind = "chat_file"
)

var imageExts = []string{"png", "jpg", "jpeg", "gif", "webp"}

var fileExts = []string{
	"pdf", "doc", "docx", "txt", "md", "zip", "rar", "7z",
	"py", "js", "cpp", "java", "html", "css",
}

var mediaTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"txt":  "text/plain",
	"md":   "text/markdown",
	"zip":  "application/zip",
	"rar":  "application/vnd.rar",
	"7z":   "application/x-7z-compressed",
	"py":   "text/x-python",
	"js":   "text/javascript",
	"cpp":  "text/x-c++src",
	"java": "text/x-java",
	"html": "text/html",
	"css":  "text/css",
}

// Dir is the storage directory, relative to the upload root, for k.
func (k Kind) Dir() string {
	switch k {
	case KindAvatar:
		return "avatars"
	case KindImage:
		return "articles/images"
	case KindFile:
		return "articles/files"
	case KindChatFile:
		return "chat_files"
	}
	return ""
}

func (k Kind) allowed() map[string]struct{} {
	var exts []string
	switch k {
	case KindAvatar, KindImage:
		exts = imageExts
	case KindFile:
		exts = fileExts
	case KindChatFile:
		exts = append(append([]string{}, imageExts...), fileExts...)
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		set[e] = struct{}{}
	}
	return set
}

// RejectReason is a machine-readable cause for refusing an upload.
type RejectReason string

const (
	ReasonEmptyName           RejectReason = "empty_name"
	ReasonNoExtension         RejectReason = "no_extension"
	ReasonExtensionNotAllowed RejectReason = "extension_not_allowed"
	ReasonTooLarge            RejectReason = "too_large"
	ReasonUnknownKind         RejectReason = "unknown_kind"
)

// Rejection describes why an upload was refused.
type Rejection struct {
	Reason    RejectReason
	Filename  string
	Extension string
	Size      int64
}

func (r *Rejection) Error() string {
	switch r.Reason {
	case ReasonTooLarge:
		return fmt.Sprintf("file %q is too large (max %d MB)", r.Filename, MaxBytes>>20)
	case ReasonExtensionNotAllowed:
		return fmt.Sprintf("file type %q is not allowed", r.Extension)
	case ReasonNoExtension:
		return fmt.Sprintf("file %q has no extension", r.Filename)
	}
	return string(r.Reason)
}

// Accepted is the gate's verdict for an admissible upload.
type Accepted struct {
	Kind      Kind
	Filename  string
	Extension string
	MediaType string
	Size      int64
}

// Validate checks filename and size against the allow-list for kind.
// It never touches storage.
func Validate(filename string, size int64, kind Kind) (*Accepted, *Rejection) {
	name := strings.TrimSpace(filename)
	if name == "" {
		return nil, &Rejection{Reason: ReasonEmptyName}
	}
	if kind.Dir() == "" {
		return nil, &Rejection{Reason: ReasonUnknownKind, Filename: name}
	}
	ext := Extension(name)
	if ext == "" {
		return nil, &Rejection{Reason: ReasonNoExtension, Filename: name}
	}
	if _, ok := kind.allowed()[ext]; !ok {
		return nil, &Rejection{Reason: ReasonExtensionNotAllowed, Filename: name, Extension: ext}
	}
	if size > MaxBytes {
		return nil, &Rejection{Reason: ReasonTooLarge, Filename: name, Extension: ext, Size: size}
	}
	return &Accepted{
		Kind:      kind,
		Filename:  name,
		Extension: ext,
		MediaType: MediaType(ext),
		Size:      size,
	}, nil
}

// Extension returns the lower-cased text after the last dot, or "".
func Extension(filename string) string {
	ext := path.Ext(strings.ReplaceAll(filename, "\\", "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaType maps an extension to its media type.
func MediaType(ext string) string {
	if mt, ok := mediaTypes[strings.ToLower(ext)]; ok {
		return mt
	}
	return DefaultMediaType
}
