package service

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"devconnect/internal/domain"
	"devconnect/internal/markdown"
	"devconnect/internal/storage"
	"devconnect/internal/upload"
)

// ArticleService publishes and lists articles.
type ArticleService struct {
	articles domain.ArticleRepository
	users    domain.UserRepository
	files    FileStore
	md       *markdown.Renderer
	now      func() time.Time
}

func NewArticleService(articles domain.ArticleRepository, users domain.UserRepository, files FileStore, md *markdown.Renderer) *ArticleService {
	return &ArticleService{
		articles: articles,
		users:    users,
		files:    files,
		md:       md,
		now:      time.Now,
	}
}

type ArticleInput struct {
	AuthorID int64
	Title    string
	Content  string
	Image    *Upload
	File     *Upload
}

// ArticleView is an article ready for display.
type ArticleView struct {
	*domain.Article
	Author      string        `json:"author,omitempty"`
	HTML        template.HTML `json:"html"`
	DownloadURL string        `json:"download_url,omitempty"`
}

// Create validates and stores an article with its optional attachments.
// A rejected attachment aborts the whole submission.
func (s *ArticleService) Create(ctx context.Context, in ArticleInput) (*domain.Article, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", domain.ErrValidation)
	}

	var image, file *upload.Accepted
	if in.Image.present() {
		acc, err := admit(in.Image, upload.KindImage)
		if err != nil {
			return nil, err
		}
		image = acc
	}
	if in.File.present() {
		acc, err := admit(in.File, upload.KindFile)
		if err != nil {
			return nil, err
		}
		file = acc
	}

	a := &domain.Article{
		UserID:  in.AuthorID,
		Title:   title,
		Content: content,
	}

	var written []*storage.Stored
	rollback := func() {
		for _, st := range written {
			if err := s.files.Remove(st.Kind, st.Name); err != nil {
				log.Printf("article: remove %s: %v", st.Name, err)
			}
		}
	}

	now := s.now()
	if image != nil {
		st, err := store(s.files, in.AuthorID, now, image, in.Image.Body)
		if err != nil {
			return nil, err
		}
		written = append(written, st)
		a.ImagePath = strPtr(st.PublicPath)
	}
	if file != nil {
		st, err := store(s.files, in.AuthorID, now, file, in.File.Body)
		if err != nil {
			rollback()
			return nil, err
		}
		written = append(written, st)
		a.FilePath = strPtr(st.PublicPath)
		a.FileName = strPtr(file.Filename)
	}

	if err := s.articles.Create(ctx, a); err != nil {
		rollback()
		return nil, fmt.Errorf("create article: %w", err)
	}
	return a, nil
}

func (s *ArticleService) ListByAuthor(ctx context.Context, authorID int64) ([]*ArticleView, error) {
	list, err := s.articles.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return s.views(ctx, list)
}

// ListAll returns every article, newest first.
func (s *ArticleService) ListAll(ctx context.Context) ([]*ArticleView, error) {
	list, err := s.articles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return s.views(ctx, list)
}

// DownloadName returns the original name of the article file stored as
// storedName, or ErrNotFound.
func (s *ArticleService) DownloadName(ctx context.Context, storedName string) (string, error) {
	name, err := s.articles.FileNameForStored(ctx, upload.PublicPath(upload.KindFile, storedName))
	if err != nil {
		return "", err
	}
	if name == nil {
		return "", domain.ErrNotFound
	}
	if *name == "" {
		return storedName, nil
	}
	return *name, nil
}

func (s *ArticleService) views(ctx context.Context, list []*domain.Article) ([]*ArticleView, error) {
	authors := map[int64]string{}
	out := make([]*ArticleView, 0, len(list))
	for _, a := range list {
		author, ok := authors[a.UserID]
		if !ok {
			u, err := s.users.GetByID(ctx, a.UserID)
			if err != nil {
				return nil, fmt.Errorf("get author: %w", err)
			}
			if u != nil {
				author = u.Username
			}
			authors[a.UserID] = author
		}
		v := &ArticleView{
			Article: a,
			Author:  author,
			HTML:    s.md.Render(ctx, a.Content),
		}
		if a.FilePath != nil {
			if name, ok := upload.StoredNameFromPublic(upload.KindFile, *a.FilePath); ok {
				v.DownloadURL = "/download/" + name
			}
		}
		out = append(out, v)
	}
	return out, nil
}
