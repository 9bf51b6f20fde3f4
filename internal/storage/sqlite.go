package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Setting es una fila de la tabla settings del archivo local.
type Setting struct {
	Name      string `gorm:"primaryKey;size:128"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}

type sqliteStore struct {
	db *gorm.DB
}

// OpenSQLite abre (o crea) el archivo sqlite y migra la tabla settings.
func OpenSQLite(path string) (Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path required")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, sqliteError("open sqlite", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		return nil, sqliteError("open sqlite", err)
	}
	return store, nil
}

// ErrSQLiteNeedsCgo indica un binario compilado con CGO_ENABLED=0: el driver
// de gorm para sqlite usa mattn/go-sqlite3, que requiere cgo.
var ErrSQLiteNeedsCgo = errors.New("sqlite store requires a cgo build (CGO_ENABLED=1); use STORE_DRIVER=memory, redis or postgres instead")

func sqliteError(op string, err error) error {
	if strings.Contains(err.Error(), "CGO_ENABLED=0") {
		return fmt.Errorf("%s: %w: %v", op, ErrSQLiteNeedsCgo, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// NewSQLiteStore usa una conexion gorm existente.
func NewSQLiteStore(db *gorm.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db required")
	}
	if err := db.AutoMigrate(&Setting{}); err != nil {
		return nil, fmt.Errorf("migrate settings: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return "", err
	}
	var row Setting
	err = s.db.WithContext(ctx).Where("name = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return row.Value, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	row := Setting{Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Where("name = ?", key).Delete(&Setting{}).Error
}
