package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/upload"
)

func TestNewLocalCreatesKindDirs(t *testing.T) {
	root := t.TempDir()
	_, err := NewLocal(root)
	require.NoError(t, err)

	for _, dir := range []string{"avatars", "articles/images", "articles/files", "chat_files"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
}

func TestSaveAndRemove(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	stored, err := s.Save(upload.KindChatFile, "1_2_ab_doc.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "/static/uploads/chat_files/1_2_ab_doc.pdf", stored.PublicPath)
	assert.Equal(t, int64(8), stored.Size)

	p, err := s.Path(upload.KindChatFile, stored.Name)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Remove(upload.KindChatFile, stored.Name))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, s.Remove(upload.KindChatFile, stored.Name))
}

func TestSaveRejectsOversizedStream(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	big := bytes.NewReader(make([]byte, upload.MaxBytes+1))
	_, err = s.Save(upload.KindFile, "big.zip", big)
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(s.Dir(upload.KindFile))
	require.NoError(t, err)
	assert.Empty(t, entries, "no partial file may remain")
}

func TestSaveRejectsTraversal(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(upload.KindFile, "../escape.txt", strings.NewReader("x"))
	assert.Error(t, err)
	_, err = s.Path(upload.KindFile, "../../etc/passwd")
	assert.Error(t, err)
}

func TestSaveRefusesOverwrite(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(upload.KindImage, "a.png", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = s.Save(upload.KindImage, "a.png", strings.NewReader("two"))
	assert.Error(t, err)

	p, _ := s.Path(upload.KindImage, "a.png")
	data, _ := os.ReadFile(p)
	assert.Equal(t, "one", string(data))
}
