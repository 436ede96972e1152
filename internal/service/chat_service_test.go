package service_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/cache"
	"devconnect/internal/domain"
	"devconnect/internal/markdown"
	"devconnect/internal/security"
	"devconnect/internal/service"
	"devconnect/internal/storage"
	"devconnect/internal/store/sqlite"
	"devconnect/internal/upload"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events map[int64][]any
}

func (n *recordingNotifier) Send(userID int64, event any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.events == nil {
		n.events = map[int64][]any{}
	}
	n.events[userID] = append(n.events[userID], event)
}

func (n *recordingNotifier) count(userID int64) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events[userID])
}

type failingMessages struct {
	domain.MessageRepository
}

func (failingMessages) Create(context.Context, *domain.Message) error {
	return errors.New("insert failed")
}

type chatFixture struct {
	db       *sql.DB
	files    *storage.Local
	users    *sqlite.UserRepo
	chats    *service.ChatService
	messages *service.MessageService
	notifier *recordingNotifier
	enc      *security.Encryptor
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(db))
	t.Cleanup(func() { db.Close() })

	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	enc, err := security.NewEncryptor([]byte("test-key"), nil)
	require.NoError(t, err)
	md := markdown.New(cache.NewMemory(64), time.Minute)

	f := &chatFixture{
		db:       db,
		files:    files,
		users:    sqlite.NewUserRepo(db),
		notifier: &recordingNotifier{},
		enc:      enc,
	}
	chatRepo := sqlite.NewChatRepo(db)
	participants := sqlite.NewParticipantRepo(db)
	f.messages = service.NewMessageService(chatRepo, participants, sqlite.NewMessageRepo(db), files, enc, f.notifier)
	f.chats = service.NewChatService(chatRepo, participants, f.users, f.messages, enc, md)
	return f
}

func (f *chatFixture) user(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *chatFixture) messageCount(t *testing.T) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n))
	return n
}

func assertDirEmpty(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAliceAndBobExchangeMessages(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	chat, err := f.chats.StartChatWithUsername(ctx, alice.ID, "bob")
	require.NoError(t, err)
	again, err := f.chats.GetOrCreateChat(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, chat.ID, again.ID)

	hi, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{
		ChatID: chat.ID, SenderID: alice.ID, Content: "  hi **bob**  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "hi **bob**", *hi.Content)

	pdf := bytes.Repeat([]byte("%"), 2<<20)
	doc, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{
		ChatID:   chat.ID,
		SenderID: bob.ID,
		File:     &service.Upload{Filename: "doc.pdf", Size: int64(len(pdf)), Body: bytes.NewReader(pdf)},
	})
	require.NoError(t, err)
	assert.Nil(t, doc.Content)
	require.NotNil(t, doc.MimeType)
	assert.Equal(t, "application/pdf", *doc.MimeType)
	assert.Equal(t, "doc.pdf", *doc.FileName)
	assert.Equal(t, domain.AttachmentFile, doc.Attachment().Kind)

	name, ok := upload.StoredNameFromPublic(upload.KindChatFile, *doc.FilePath)
	require.True(t, ok)
	info, err := os.Stat(filepath.Join(f.files.Dir(upload.KindChatFile), name))
	require.NoError(t, err)
	assert.Equal(t, int64(2<<20), info.Size())

	thread, err := f.chats.GetThread(ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", thread.Counterpart.Username)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, "hi **bob**", thread.Messages[0].Content)
	assert.Contains(t, string(thread.Messages[0].HTML), "<strong>bob</strong>")
	assert.False(t, thread.Messages[0].IsOwn)
	assert.True(t, thread.Messages[1].IsOwn)
	assert.Equal(t, "/chat/"+strconv.FormatInt(chat.ID, 10)+"/files/"+name, thread.Messages[1].FileURL)

	inbox, err := f.chats.ListChatsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "bob", inbox[0].Counterpart.Username)
	assert.Equal(t, "[file] doc.pdf", inbox[0].Preview)

	got, err := f.messages.Attachment(ctx, chat.ID, alice.ID, name)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	assert.Equal(t, 2, f.notifier.count(alice.ID))
	assert.Equal(t, 2, f.notifier.count(bob.ID))
}

func TestContentIsEncryptedAtRest(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	chat, err := f.chats.GetOrCreateChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = f.messages.AppendMessage(ctx, service.AppendMessageInput{ChatID: chat.ID, SenderID: alice.ID, Content: "secret"})
	require.NoError(t, err)

	var raw string
	require.NoError(t, f.db.QueryRow(`SELECT content FROM messages`).Scan(&raw))
	assert.NotEqual(t, "secret", raw)
	plain, err := f.enc.Decrypt(raw)
	require.NoError(t, err)
	assert.Equal(t, "secret", plain)
}

func TestThreadCounterpartFollowsCaller(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	chat, err := f.chats.GetOrCreateChat(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	fromAlice, err := f.chats.GetThread(ctx, chat.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, fromAlice.Counterpart)
	assert.Equal(t, bob.ID, fromAlice.Counterpart.ID)
	assert.Empty(t, fromAlice.Messages)

	fromBob, err := f.chats.GetThread(ctx, chat.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, fromBob.Counterpart)
	assert.Equal(t, alice.ID, fromBob.Counterpart.ID)
}

func TestFileOnlyMessageStoresNoContent(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	chat, err := f.chats.GetOrCreateChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	msg, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{
		ChatID:   chat.ID,
		SenderID: alice.ID,
		File:     &service.Upload{Filename: "notes.txt", Size: 11, Body: strings.NewReader("plain notes")},
	})
	require.NoError(t, err)
	assert.Nil(t, msg.Content)

	var raw sql.NullString
	require.NoError(t, f.db.QueryRow(`SELECT content FROM messages WHERE id = ?`, msg.ID).Scan(&raw))
	assert.False(t, raw.Valid)
}

func TestAppendMessageRejections(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	chat, err := f.chats.GetOrCreateChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	t.Run("Empty", func(t *testing.T) {
		_, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{ChatID: chat.ID, SenderID: alice.ID, Content: " \n\t"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 0, f.messageCount(t))
	})

	t.Run("EmptyFileNameCountsAsNoFile", func(t *testing.T) {
		_, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{
			ChatID: chat.ID, SenderID: alice.ID,
			File: &service.Upload{Filename: "", Body: strings.NewReader("")},
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("NonParticipant", func(t *testing.T) {
		_, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{ChatID: chat.ID, SenderID: carol.ID, Content: "hey"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		_, err = f.messages.ListMessages(ctx, chat.ID, carol.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		_, err = f.chats.GetThread(ctx, chat.ID, carol.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("UnknownChat", func(t *testing.T) {
		_, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{ChatID: 999, SenderID: alice.ID, Content: "hey"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DisallowedExtension", func(t *testing.T) {
		_, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{
			ChatID: chat.ID, SenderID: alice.ID, Content: "see attached",
			File: &service.Upload{Filename: "photo.exe", Size: 4, Body: strings.NewReader("MZ..")},
		})
		assert.ErrorIs(t, err, domain.ErrRejectedUpload)
		var rej *upload.Rejection
		require.True(t, errors.As(err, &rej))
		assert.Equal(t, upload.ReasonExtensionNotAllowed, rej.Reason)
		assertDirEmpty(t, f.files.Dir(upload.KindChatFile))
	})

	t.Run("DeclaredTooLarge", func(t *testing.T) {
		_, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{
			ChatID: chat.ID, SenderID: alice.ID,
			File: &service.Upload{Filename: "photo.png", Size: 11 << 20, Body: strings.NewReader("")},
		})
		var rej *upload.Rejection
		require.True(t, errors.As(err, &rej))
		assert.Equal(t, upload.ReasonTooLarge, rej.Reason)
	})

	t.Run("StreamLongerThanDeclared", func(t *testing.T) {
		body := bytes.NewReader(make([]byte, upload.MaxBytes+1))
		_, err := f.messages.AppendMessage(ctx, service.AppendMessageInput{
			ChatID: chat.ID, SenderID: alice.ID,
			File: &service.Upload{Filename: "photo.png", Size: 10, Body: body},
		})
		assert.ErrorIs(t, err, domain.ErrRejectedUpload)
		assertDirEmpty(t, f.files.Dir(upload.KindChatFile))
	})

	assert.Equal(t, 0, f.messageCount(t))
	assert.Equal(t, 0, f.notifier.count(alice.ID))
}

func TestAppendMessageRemovesFileWhenInsertFails(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	chat, err := f.chats.GetOrCreateChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	msgs := service.NewMessageService(
		sqlite.NewChatRepo(f.db), sqlite.NewParticipantRepo(f.db),
		failingMessages{sqlite.NewMessageRepo(f.db)}, f.files, f.enc, nil,
	)
	_, err = msgs.AppendMessage(ctx, service.AppendMessageInput{
		ChatID: chat.ID, SenderID: alice.ID,
		File: &service.Upload{Filename: "notes.txt", Size: 5, Body: strings.NewReader("hello")},
	})
	assert.Error(t, err)
	assertDirEmpty(t, f.files.Dir(upload.KindChatFile))
}

func TestSelfChatIsRejected(t *testing.T) {
	f := newChatFixture(t)
	alice := f.user(t, "alice")

	_, err := f.chats.StartChatWithUsername(context.Background(), alice.ID, "alice")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, err = f.chats.StartChatWithUsername(context.Background(), alice.ID, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInboxPreviewsAndOrder(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")

	withBob, err := f.chats.GetOrCreateChat(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	withCarol, err := f.chats.GetOrCreateChat(ctx, carol.ID, alice.ID)
	require.NoError(t, err)

	inbox, err := f.chats.ListChatsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	for _, s := range inbox {
		assert.Equal(t, "No messages yet", s.Preview)
	}

	long := strings.Repeat("я", 60)
	_, err = f.messages.AppendMessage(ctx, service.AppendMessageInput{ChatID: withBob.ID, SenderID: bob.ID, Content: long})
	require.NoError(t, err)
	_, err = f.messages.AppendMessage(ctx, service.AppendMessageInput{ChatID: withCarol.ID, SenderID: carol.ID, Content: "short"})
	require.NoError(t, err)

	inbox, err = f.chats.ListChatsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, withCarol.ID, inbox[0].Chat.ID)
	assert.Equal(t, "short", inbox[0].Preview)
	assert.Equal(t, withBob.ID, inbox[1].Chat.ID)
	assert.Equal(t, strings.Repeat("я", 50)+"...", inbox[1].Preview)
	assert.False(t, inbox[0].LastActivity.Before(inbox[1].LastActivity))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", service.Truncate("abc", 50))
	assert.Equal(t, strings.Repeat("x", 50), service.Truncate(strings.Repeat("x", 50), 50))
	assert.Equal(t, "ab...", service.Truncate("abc", 2))
}
