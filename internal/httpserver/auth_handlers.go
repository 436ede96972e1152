package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"devconnect/internal/config"
	"devconnect/internal/domain"
	"devconnect/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

func handleHome(cfg *config.Config, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r) != nil {
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
			return
		}
		renderView(w, r, flash, map[string]any{
			"message": "Welcome to " + cfg.AppName,
			"docs":    "/docs/index.html",
		})
	}
}

func handleRegisterForm(flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderView(w, r, flash, map[string]any{
			"form": []string{"username", "email", "password", "confirm_password", "description", "skills", "avatar"},
		})
	}
}

// @Summary      Register a new user
// @Description  Multipart form; redirects to /login on success
// @Tags         auth
// @Accept       multipart/form-data
// @Param        username         formData string true  "Username"
// @Param        email            formData string true  "Email"
// @Param        password         formData string true  "Password"
// @Param        confirm_password formData string true  "Password again"
// @Param        description      formData string false "About"
// @Param        skills           formData []string false "Skills"
// @Param        avatar           formData file   false "Avatar image"
// @Success      303
// @Router       /register [post]
func handleRegister(authSvc *service.AuthService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseForm(w, r); err != nil {
			flash.Error(w, r, "Could not read the form")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		avatar, file, err := formUpload(r, "avatar")
		if err != nil {
			flash.Error(w, r, "Could not read the avatar")
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		defer closeFile(file)

		_, err = authSvc.Register(r.Context(), service.RegisterInput{
			Username:        r.FormValue("username"),
			Email:           r.FormValue("email"),
			Password:        r.FormValue("password"),
			ConfirmPassword: r.FormValue("confirm_password"),
			Description:     r.FormValue("description"),
			Skills:          r.Form["skills"],
			Avatar:          avatar,
		})
		if err != nil {
			if !isUserError(err) {
				log.Printf("register: %v", err)
			}
			flash.Error(w, r, publicMessage(err))
			http.Redirect(w, r, "/register", http.StatusSeeOther)
			return
		}
		flash.Success(w, r, "Registration successful. Please log in.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func handleLoginForm(flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderView(w, r, flash, map[string]any{
			"form": []string{"email", "password"},
		})
	}
}

// @Summary      Login
// @Description  Form login; sets the session cookie and redirects to /profile
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        email    formData string true "Email"
// @Param        password formData string true "Password"
// @Success      303
// @Router       /login [post]
func handleLogin(authSvc *service.AuthService, flash *Flasher, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseForm(w, r); err != nil {
			flash.Error(w, r, "Could not read the form")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		sess, err := authSvc.Login(r.Context(), service.LoginInput{
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		})
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				log.Printf("login: %v", err)
			}
			flash.Error(w, r, "Invalid email or password")
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		setSessionCookie(w, sess.Token, sess.ExpiresAt, secure)
		flash.Success(w, r, "Logged in")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
	}
}

// @Summary      Login (API)
// @Description  Login with email and password and get a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body loginRequest true "Login input"
// @Success      200  {object}  tokenResponse
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/login [post]
func handleAPILogin(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		sess, err := authSvc.Login(r.Context(), service.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{
			AccessToken: sess.Token,
			TokenType:   "bearer",
			ExpiresAt:   sess.ExpiresAt,
			User:        sess.User,
		})
	}
}

func handleLogout(flash *Flasher, secure bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearSessionCookie(w, secure)
		flash.Success(w, r, "Logged out")
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// @Summary      Get Current User
// @Description  Get currently logged in user details
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /api/me [get]
func handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, CurrentUser(r))
	}
}

// isUserError reports whether err is the caller's fault rather than ours.
func isUserError(err error) bool {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return true
		}
	}
	return false
}
