package main

import (
	"database/sql"
	"fmt"
	"log"

	"devconnect/internal/config"
	"devconnect/internal/domain"
	"devconnect/internal/store/postgres"
	"devconnect/internal/store/sqlite"
)

type repositories struct {
	users        domain.UserRepository
	articles     domain.ArticleRepository
	chats        domain.ChatRepository
	participants domain.ParticipantRepository
	messages     domain.MessageRepository
	products     domain.ProductRepository
}

// openStore opens and migrates the configured database.
func openStore(cfg *config.Config) (*sql.DB, *repositories, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		log.Printf("store: postgres ready")
		return db, &repositories{
			users:        postgres.NewUserRepo(db),
			articles:     postgres.NewArticleRepo(db),
			chats:        postgres.NewChatRepo(db),
			participants: postgres.NewParticipantRepo(db),
			messages:     postgres.NewMessageRepo(db),
			products:     postgres.NewProductRepo(db),
		}, nil
	default:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		if err := sqlite.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		log.Printf("store: sqlite ready at %s", cfg.SQLitePath)
		return db, &repositories{
			users:        sqlite.NewUserRepo(db),
			articles:     sqlite.NewArticleRepo(db),
			chats:        sqlite.NewChatRepo(db),
			participants: sqlite.NewParticipantRepo(db),
			messages:     sqlite.NewMessageRepo(db),
			products:     sqlite.NewProductRepo(db),
		}, nil
	}
}
