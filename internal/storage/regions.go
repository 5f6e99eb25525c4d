// storage описывает контракт объектного хранилища записей о регионе
// регистрации пользователя. Запись лежит по ключу "<bucketKey>/email_info.json".
package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/career-bff/internal/models"
)

var (
	// ErrNotFound — записи нет.
	ErrNotFound = errors.New("not found")
	// ErrVersionMismatch — запись изменена другим писателем.
	ErrVersionMismatch = errors.New("no version there or invalid version")
)

// RegionStorage — контракт хранилища регионов.
type RegionStorage interface {
	// Find возвращает запись или nil, nil, если её нет.
	Find(ctx context.Context, key string) (*models.RegionRecord, error)
	// Init перезаписывает запись целиком.
	Init(ctx context.Context, key string, rec models.RegionRecord) (*models.RegionRecord, error)
	// Update применяет patch, если версия совпадает с сохранённой.
	Update(ctx context.Context, key string, version int, patch map[string]any) (*models.RegionRecord, error)
	// Delete идемпотентен.
	Delete(ctx context.Context, key string) error
}
