package httpserver

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/fernet/fernet-go"
)

const (
	flashCookieName = "devconnect_flash"
	flashTTL        = 60 * time.Second
)

// Notice is a one-shot message shown on the next page.
type Notice struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Flasher carries notices across a redirect in a Fernet-sealed cookie.
type Flasher struct {
	key    *fernet.Key
	secure bool
}

// NewFlasher parses a base64 encoded 32-byte Fernet key.
func NewFlasher(key string, secure bool) (*Flasher, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, fmt.Errorf("flash key: %w", err)
	}
	return &Flasher{key: k, secure: secure}, nil
}

// Add queues notices for the next request, keeping any not yet shown.
func (f *Flasher) Add(w http.ResponseWriter, r *http.Request, notices ...Notice) {
	all := append(f.read(r), notices...)
	raw, err := json.Marshal(all)
	if err != nil {
		log.Printf("flash: encode: %v", err)
		return
	}
	tok, err := fernet.EncryptAndSign(raw, f.key)
	if err != nil {
		log.Printf("flash: seal: %v", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    string(tok),
		Path:     "/",
		MaxAge:   int(flashTTL / time.Second),
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (f *Flasher) Error(w http.ResponseWriter, r *http.Request, text string) {
	f.Add(w, r, Notice{Level: "error", Text: text})
}

func (f *Flasher) Success(w http.ResponseWriter, r *http.Request, text string) {
	f.Add(w, r, Notice{Level: "success", Text: text})
}

// Consume returns the pending notices and clears them.
func (f *Flasher) Consume(w http.ResponseWriter, r *http.Request) []Notice {
	notices := f.read(r)
	if _, err := r.Cookie(flashCookieName); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   f.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return notices
}

func (f *Flasher) read(r *http.Request) []Notice {
	notices := []Notice{}
	c, err := r.Cookie(flashCookieName)
	if err != nil || c.Value == "" {
		return notices
	}
	raw := fernet.VerifyAndDecrypt([]byte(c.Value), flashTTL, []*fernet.Key{f.key})
	if raw == nil {
		return notices
	}
	if err := json.Unmarshal(raw, &notices); err != nil {
		return []Notice{}
	}
	return notices
}
