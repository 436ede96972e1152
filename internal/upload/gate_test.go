package upload

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mib = 1024 * 1024

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		kind     Kind
		reason   RejectReason
	}{
		{"ExecutableAsImage", "photo.exe", 1024, KindImage, ReasonExtensionNotAllowed},
		{"PngFiveMiB", "photo.png", 5 * mib, KindImage, ""},
		{"PngElevenMiB", "photo.png", 11 * mib, KindImage, ReasonTooLarge},
		{"ExactlyAtCeiling", "photo.png", MaxBytes, KindImage, ""},
		{"OneByteOver", "photo.png", MaxBytes + 1, KindImage, ReasonTooLarge},
		{"NoExtension", "README", 10, KindFile, ReasonNoExtension},
		{"TrailingDot", "notes.", 10, KindFile, ReasonNoExtension},
		{"EmptyName", "  ", 10, KindFile, ReasonEmptyName},
		{"UpperCaseExtension", "SCAN.PDF", 10, KindFile, ""},
		{"ImageNotGeneralFile", "photo.png", 10, KindFile, ReasonExtensionNotAllowed},
		{"ChatAcceptsImage", "photo.webp", 10, KindChatFile, ""},
		{"ChatAcceptsSource", "main.cpp", 10, KindChatFile, ""},
		{"ChatRejectsBinary", "setup.msi", 10, KindChatFile, ReasonExtensionNotAllowed},
		{"UnknownKind", "photo.png", 10, Kind("video"), ReasonUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc, rej := Validate(tt.filename, tt.size, tt.kind)
			if tt.reason == "" {
				require.Nil(t, rej)
				require.NotNil(t, acc)
				assert.Equal(t, tt.kind, acc.Kind)
				return
			}
			require.Nil(t, acc)
			require.NotNil(t, rej)
			assert.Equal(t, tt.reason, rej.Reason)
			assert.NotEmpty(t, rej.Error())
		})
	}
}

func TestMediaType(t *testing.T) {
	acc, rej := Validate("report.pdf", 2*mib, KindFile)
	require.Nil(t, rej)
	assert.Equal(t, "application/pdf", acc.MediaType)
	assert.Equal(t, "pdf", acc.Extension)

	assert.Equal(t, "image/jpeg", MediaType("JPG"))
	assert.Equal(t, DefaultMediaType, MediaType("bin"))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "my_report_v2.pdf", SanitizeName("my report v2.pdf"))
	assert.Equal(t, "passwd", SanitizeName("../../etc/passwd"))
	assert.Equal(t, "evil.txt", SanitizeName(`C:\Users\x\evil.txt`))
	assert.Equal(t, "hidden", SanitizeName(".hidden"))
	assert.Equal(t, "", SanitizeName("???"))
}

func TestStoredName(t *testing.T) {
	now := time.Unix(1770818889, 0)
	a := StoredName(4, now, "app.py")
	b := StoredName(4, now, "app.py")

	assert.True(t, strings.HasPrefix(a, "4_1770818889_"))
	assert.True(t, strings.HasSuffix(a, "_app.py"))
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(StoredName(1, now, "???"), "_upload"))
}

func TestPublicPath(t *testing.T) {
	p := PublicPath(KindChatFile, "1_2_abc_x.pdf")
	assert.Equal(t, "/static/uploads/chat_files/1_2_abc_x.pdf", p)

	name, ok := StoredNameFromPublic(KindChatFile, p)
	assert.True(t, ok)
	assert.Equal(t, "1_2_abc_x.pdf", name)

	_, ok = StoredNameFromPublic(KindFile, p)
	assert.False(t, ok)
}
