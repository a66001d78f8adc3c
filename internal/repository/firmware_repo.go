package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"purpleair_display/internal/models"
)

type FirmwareSQLite struct {
	db *sql.DB
}

func NewFirmwareSQLite(db *sql.DB) *FirmwareSQLite {
	return &FirmwareSQLite{db: db}
}

var _ FirmwareRepo = (*FirmwareSQLite)(nil)

const (
	insertFirmwareSQL = `
		INSERT INTO firmware_images (id, filename, size_bytes, md5, sha256, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	selectLatestFirmwareSQL = `
		SELECT id, filename, size_bytes, md5, sha256, uploaded_at
		FROM firmware_images ORDER BY uploaded_at DESC LIMIT 1
	`
)

// Create records an accepted image.
func (r *FirmwareSQLite) Create(ctx context.Context, img models.FirmwareImage) error {
	_, err := r.db.ExecContext(ctx, insertFirmwareSQL,
		img.ID, img.Filename, img.SizeBytes, img.MD5, img.SHA256, formatTS(img.UploadedAt))
	if err != nil {
		return fmt.Errorf("insert firmware image %q: %w", img.ID, err)
	}
	return nil
}

// Latest fetches the newest image. Returns (nil, nil) if none was accepted yet.
func (r *FirmwareSQLite) Latest(ctx context.Context) (*models.FirmwareImage, error) {
	var (
		img      models.FirmwareImage
		uploaded string
	)
	err := r.db.QueryRowContext(ctx, selectLatestFirmwareSQL).
		Scan(&img.ID, &img.Filename, &img.SizeBytes, &img.MD5, &img.SHA256, &uploaded)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select latest firmware image: %w", err)
	}
	if img.UploadedAt, err = parseTS(uploaded); err != nil {
		return nil, err
	}
	return &img, nil
}
