package upload

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeName reduces a client-supplied file name to a safe basename.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if len(name) > 120 {
		name = name[len(name)-120:]
	}
	return name
}

// StoredName builds a collision-resistant name for a file owned by ownerID:
// owner id, unix time, a random tag and the sanitized original name.
func StoredName(ownerID int64, now time.Time, original string) string {
	tag := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	clean := SanitizeName(original)
	if clean == "" {
		clean = "upload"
	}
	return fmt.Sprintf("%d_%d_%s_%s", ownerID, now.Unix(), tag, clean)
}

// PublicPath is the URL under which a stored file of kind k is referenced.
func PublicPath(k Kind, storedName string) string {
	return "/static/uploads/" + k.Dir() + "/" + storedName
}

// StoredNameFromPublic extracts the stored file name from a public path of kind k.
func StoredNameFromPublic(k Kind, public string) (string, bool) {
	prefix := "/static/uploads/" + k.Dir() + "/"
	if !strings.HasPrefix(public, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(public, prefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
