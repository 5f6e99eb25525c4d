package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	mclient "github.com/minio/minio-go/v7"

	apierrors "github.com/pribylovaa/career-bff/internal/errors"
	"github.com/pribylovaa/career-bff/internal/models"
	"github.com/pribylovaa/career-bff/internal/pkg/log"
	"github.com/pribylovaa/career-bff/internal/storage"
)

const objectName = "email_info.json"

func objectKey(key string) string {
	return strings.TrimRight(key, "/") + "/" + objectName
}

// Find читает запись. Отсутствие объекта — nil, nil.
func (s *RegionStorage) Find(ctx context.Context, key string) (*models.RegionRecord, error) {
	const op = "storage.minio.Find"

	raw, err := s.get(ctx, key)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, nil
		}

		return nil, s.fail(ctx, op, key, "req error of find file", err)
	}

	var rec models.RegionRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, s.fail(ctx, op, key, "find file fail", err)
	}

	return &rec, nil
}

// Init записывает запись целиком, перетирая существующую.
func (s *RegionStorage) Init(ctx context.Context, key string, rec models.RegionRecord) (*models.RegionRecord, error) {
	const op = "storage.minio.Init"

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, s.fail(ctx, op, key, "init file fail", err)
	}

	if err := s.put(ctx, key, raw); err != nil {
		return nil, s.fail(ctx, op, key, "init file fail", err)
	}

	return &rec, nil
}

// Update сливает patch с сохранённой записью при совпадении версии.
// Нет записи или другая версия — NotFound.
func (s *RegionStorage) Update(ctx context.Context, key string, version int, patch map[string]any) (*models.RegionRecord, error) {
	const op = "storage.minio.Update"

	raw, err := s.get(ctx, key)
	if err != nil {
		if isNoSuchKey(err) {
			e := apierrors.NotFound(fmt.Sprintf("file:%s not found", key))
			e.Err = fmt.Errorf("%s: %w", op, storage.ErrNotFound)
			return nil, e
		}

		return nil, s.fail(ctx, op, key, "update file fail", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, s.fail(ctx, op, key, "update file fail", err)
	}

	if v, ok := data["version"].(float64); ok && int(v) != version {
		e := apierrors.NotFound(storage.ErrVersionMismatch.Error())
		e.Err = fmt.Errorf("%s: %w", op, storage.ErrVersionMismatch)
		return nil, e
	}

	for k, v := range patch {
		data[k] = v
	}

	merged, err := json.Marshal(data)
	if err != nil {
		return nil, s.fail(ctx, op, key, "update file fail", err)
	}

	var rec models.RegionRecord
	if err := json.Unmarshal(merged, &rec); err != nil {
		return nil, s.fail(ctx, op, key, "update file fail", err)
	}

	if err := s.put(ctx, key, merged); err != nil {
		return nil, s.fail(ctx, op, key, "update file fail", err)
	}

	return &rec, nil
}

// Delete удаляет запись; отсутствие объекта ошибкой не считается.
func (s *RegionStorage) Delete(ctx context.Context, key string) error {
	const op = "storage.minio.Delete"

	if err := s.client.RemoveObject(ctx, s.bucket, objectKey(key), mclient.RemoveObjectOptions{}); err != nil {
		return s.fail(ctx, op, key, "delete file fail", err)
	}

	return nil
}

func (s *RegionStorage) get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(key), mclient.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	// GetObject ленивый: отсутствие ключа проявляется только при чтении.
	return io.ReadAll(obj)
}

func (s *RegionStorage) put(ctx context.Context, key string, raw []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectKey(key), bytes.NewReader(raw), int64(len(raw)),
		mclient.PutObjectOptions{ContentType: "application/json"})

	return err
}

func (s *RegionStorage) fail(ctx context.Context, op, key, msg string, err error) error {
	log.From(ctx).Error("object_storage_failed",
		slog.String("op", op),
		slog.String("bucket", s.bucket),
		slog.String("key", objectKey(key)),
		slog.String("err", err.Error()),
	)

	return apierrors.Server(msg, fmt.Errorf("%s: %s/%s: %w", op, s.bucket, objectKey(key), err))
}

func isNoSuchKey(err error) bool {
	errResp := mclient.ToErrorResponse(err)
	return errResp.Code == "NoSuchKey" || errResp.StatusCode == 404
}
