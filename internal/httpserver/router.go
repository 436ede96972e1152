package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "devconnect/docs"
	"devconnect/internal/config"
	"devconnect/internal/domain"
	"devconnect/internal/service"
	"devconnect/internal/storage"
	"devconnect/internal/upload"
	"devconnect/internal/ws"
)

// Form posts may carry two attachments plus text fields.
const maxFormBytes = 2*upload.MaxBytes + 1<<20

// Services groups what the handlers call into.
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Articles *service.ArticleService
	Chats    *service.ChatService
	Messages *service.MessageService
	Catalog  *service.CatalogService
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(cfg *config.Config, svc Services, files *storage.Local, hub *ws.Hub, flash *Flasher) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(SessionMiddleware(svc.Auth))

	r.Get("/", handleHome(cfg, flash))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Public uploads: avatars and article images
	r.Mount("/static/uploads", UploadRoutes(files))

	// Identity
	r.Get("/register", handleRegisterForm(flash))
	r.Post("/register", handleRegister(svc.Auth, flash))
	r.Get("/login", handleLoginForm(flash))
	r.Post("/login", handleLogin(svc.Auth, flash, cfg.CookieSecure))
	r.Get("/logout", handleLogout(flash, cfg.CookieSecure))

	// Public content
	r.Get("/profile/{username}", handleUserProfile(svc.Users, flash))
	r.Get("/articles", handleListArticles(svc.Articles, flash))

	// Shop
	r.Route("/shop", func(r chi.Router) {
		r.Get("/", handleShop(svc.Catalog, flash))
		r.Get("/promotions", handlePromotions(svc.Catalog, flash))
		r.Get("/products/{productID}", handleProductPage(svc.Catalog, flash))
	})

	// Pages that need a session
	r.Group(func(r chi.Router) {
		r.Use(RequireUser(flash))

		r.Get("/profile", handleOwnProfile(svc.Users, flash))
		r.Post("/profile", handleAddArticle(svc.Articles, flash))
		r.Post("/profile/{username}", handleAddArticle(svc.Articles, flash))
		r.Get("/download/{filename}", handleDownload(svc.Articles, files))

		r.Get("/messages", handleInbox(svc.Chats, flash))
		r.Get("/start_chat/{username}", handleStartChat(svc.Chats, flash))
		r.Route("/chat/{chatID}", func(r chi.Router) {
			r.Get("/", handleThread(svc.Chats, flash))
			r.Post("/send", handleSendMessage(svc.Messages, flash))
			r.Get("/files/{filename}", handleChatFile(svc.Messages, files))
		})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/login", handleAPILogin(svc.Auth))
		r.Get("/products", handleListProducts(svc.Catalog))
		r.Get("/products/{productID}", handleGetProduct(svc.Catalog))

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(RequireAPIUser)

			r.Get("/me", handleMe())
			r.Post("/users/{username}/chat", handleAPIStartChat(svc.Chats))
			r.Route("/chats", func(r chi.Router) {
				r.Get("/", handleAPIListChats(svc.Chats))
				r.Get("/{chatID}/messages", handleAPIListMessages(svc.Chats))
				r.Post("/{chatID}/messages", handleAPICreateMessage(svc.Messages))
			})
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(hub, CurrentUser, cfg.CORSOrigins))

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// renderView writes a page view: data plus the caller and pending notices.
func renderView(w http.ResponseWriter, r *http.Request, flash *Flasher, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["notices"] = flash.Consume(w, r)
	if u := CurrentUser(r); u != nil {
		data["current_user"] = u
	}
	writeJSON(w, http.StatusOK, data)
}

var sentinels = []struct {
	err    error
	status int
}{
	{domain.ErrValidation, http.StatusBadRequest},
	{domain.ErrRejectedUpload, http.StatusBadRequest},
	{domain.ErrInvalidOperation, http.StatusBadRequest},
	{domain.ErrUnauthorized, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrNotFound, http.StatusNotFound},
	{domain.ErrConflict, http.StatusConflict},
}

// publicMessage is the part of err that is safe to show to the caller.
func publicMessage(err error) string {
	var rej *upload.Rejection
	if errors.As(err, &rej) {
		switch rej.Reason {
		case upload.ReasonTooLarge:
			return "File is too large (max 10 MB)"
		default:
			return "File type is not allowed"
		}
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			msg := err.Error()
			if i := strings.LastIndex(msg, s.err.Error()+": "); i >= 0 {
				return msg[i+len(s.err.Error())+2:]
			}
			return s.err.Error()
		}
	}
	return "Something went wrong"
}

// writeError maps service errors to a status code. Unclassified errors are
// logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			writeJSON(w, s.status, map[string]string{"error": publicMessage(err)})
			return
		}
	}
	log.Printf("httpserver: %s %s: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func parseID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// parseForm reads a urlencoded or multipart form with a body ceiling.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(8 << 20)
	}
	return r.ParseForm()
}

// formUpload returns the file posted under field, or nil when none was sent.
// The caller closes the returned file.
func formUpload(r *http.Request, field string) (*service.Upload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &service.Upload{Filename: header.Filename, Size: header.Size, Body: file}, file, nil
}

func closeFile(f multipart.File) {
	if f != nil {
		f.Close()
	}
}
