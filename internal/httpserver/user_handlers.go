package httpserver

import (
	"log"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devconnect/internal/domain"
	"devconnect/internal/service"
	"devconnect/internal/storage"
	"devconnect/internal/upload"
)

func handleOwnProfile(userSvc *service.UserService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := userSvc.OwnProfile(r.Context(), callerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		renderView(w, r, flash, map[string]any{"profile": profile})
	}
}

// @Summary      User profile
// @Description  A member's profile with their articles, newest first
// @Tags         profiles
// @Produce      json
// @Param        username path string true "Username"
// @Success      200  {object}  service.Profile
// @Failure      404  {object}  map[string]string
// @Router       /profile/{username} [get]
func handleUserProfile(userSvc *service.UserService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := userSvc.Profile(r.Context(), chi.URLParam(r, "username"), callerID(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		renderView(w, r, flash, map[string]any{"profile": profile})
	}
}

// @Summary      Publish an article
// @Tags         articles
// @Accept       multipart/form-data
// @Param        title   formData string true  "Title"
// @Param        content formData string true  "Markdown body"
// @Param        image   formData file   false "Cover image"
// @Param        file    formData file   false "Attachment"
// @Success      303
// @Router       /profile [post]
func handleAddArticle(articleSvc *service.ArticleService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		back := func(level, text string) {
			flash.Add(w, r, Notice{Level: level, Text: text})
			http.Redirect(w, r, "/profile", http.StatusSeeOther)
		}
		if err := parseForm(w, r); err != nil {
			back("error", "Could not read the form")
			return
		}
		image, imageFile, err := formUpload(r, "image")
		if err != nil {
			back("error", "Could not read the image")
			return
		}
		defer closeFile(imageFile)
		attachment, attachmentFile, err := formUpload(r, "file")
		if err != nil {
			back("error", "Could not read the file")
			return
		}
		defer closeFile(attachmentFile)

		_, err = articleSvc.Create(r.Context(), service.ArticleInput{
			AuthorID: callerID(r),
			Title:    r.FormValue("title"),
			Content:  r.FormValue("content"),
			Image:    image,
			File:     attachment,
		})
		if err != nil {
			if !isUserError(err) {
				log.Printf("add article: %v", err)
			}
			back("error", publicMessage(err))
			return
		}
		back("success", "Article added")
	}
}

// @Summary      All articles
// @Tags         articles
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /articles [get]
func handleListArticles(articleSvc *service.ArticleService, flash *Flasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articles, err := articleSvc.ListAll(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		renderView(w, r, flash, map[string]any{"articles": articles})
	}
}

func handleDownload(articleSvc *service.ArticleService, files *storage.Local) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored := chi.URLParam(r, "filename")
		name, err := articleSvc.DownloadName(r.Context(), stored)
		if err != nil {
			writeError(w, r, err)
			return
		}
		serveStored(w, r, files, upload.KindFile, stored, name, upload.MediaType(upload.Extension(name)), true)
	}
}

// serveStored streams a stored upload. attachment forces a download dialog
// under the original file name.
func serveStored(w http.ResponseWriter, r *http.Request, files *storage.Local, k upload.Kind, stored, original, mediaType string, attachment bool) {
	path, err := files.Path(k, stored)
	if err != nil {
		writeError(w, r, domain.ErrNotFound)
		return
	}
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": original}))
	w.Header().Set("Content-Type", mediaType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeFile(w, r, path)
}
