package database

import (
	"fmt"
	"log"

	"pingly-server/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	GormDB *gorm.DB
}

func NewDB(databaseURL string) (*DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// map driver unique-violation errors to gorm.ErrDuplicatedKey so the
		// registration race can fall back to the existing row
		TranslateError: true,
		// conversations.last_message_id and messages.conversation_id are
		// mutually referencing; let AutoMigrate create tables only
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connected successfully")
	return &DB{GormDB: db}, nil
}

func (db *DB) Close() {
	if db.GormDB != nil {
		sqlDB, err := db.GormDB.DB()
		if err == nil {
			sqlDB.Close()
			log.Println("Database connection closed")
		}
	}
}

func (db *DB) Ping() error {
	sqlDB, err := db.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) GetDB() *gorm.DB {
	return db.GormDB
}

func (db *DB) AutoMigrate() error {
	return db.GormDB.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Conversation{},
		&models.ConversationParticipant{},
		&models.Message{},
		&models.MessageReceipt{},
		&models.MessageHidden{},
	)
}
