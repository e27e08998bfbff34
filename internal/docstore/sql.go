package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is one stored JSON document.
type Document struct {
	Name      string `gorm:"primaryKey"`
	Body      string
	UpdatedAt time.Time
}

// SQLStore keeps documents as rows of a sqlite database.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&Document{})
	if err != nil {
		return nil, err
	}

	return &SQLStore{
		db: db,
	}, nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) Load(ctx context.Context, name string, v any) error {
	var doc Document
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	} else if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(doc.Body), v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *SQLStore) Save(ctx context.Context, name string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&Document{
		Name:      name,
		Body:      string(raw),
		UpdatedAt: time.Now(),
	}).Error
}

// Names lists stored document names in order.
func (s *SQLStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	return names, s.db.WithContext(ctx).Model(&Document{}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "name"}}).
		Pluck("name", &names).Error
}
