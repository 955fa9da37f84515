package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

var _ repository.KVStore = (*KVStore)(nil)

// kvEntry fila de la tabla clave-valor.
type kvEntry struct {
	Name      string `gorm:"column:name;primaryKey;size:128"`
	Data      []byte `gorm:"column:data"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "agro_kv" }

// KVStore almacén clave-valor sobre un archivo SQLite (gorm).
type KVStore struct {
	db *gorm.DB
}

// Open abre (o crea) la base en path y migra la tabla. Usar ":memory:" en pruebas.
func Open(path string) (*KVStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite db: %w", err)
	}
	// Un solo escritor; además ":memory:" es por conexión.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrar agro_kv: %w", err)
	}
	return &KVStore{db: db}, nil
}

// Get devuelve el valor de la clave.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var e kvEntry
	err := s.db.WithContext(ctx).Where("name = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return e.Data, true, nil
}

// Set inserta o reemplaza el valor.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	e := kvEntry{Name: key, Data: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete elimina las claves; las inexistentes se ignoran.
func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("name IN ?", keys).Delete(&kvEntry{}).Error; err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Keys lista las claves en orden alfabético.
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.WithContext(ctx).Model(&kvEntry{}).Order("name").Pluck("name", &keys).Error; err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	return keys, nil
}

// Close cierra la conexión.
func (s *KVStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
