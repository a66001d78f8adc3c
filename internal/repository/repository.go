package repository

import (
	"context"
	"database/sql"
	"time"

	"purpleair_display/internal/models"
)

type ReadingRepo interface {
	Save(ctx context.Context, r models.Reading) (int64, error)
	Latest(ctx context.Context) (models.Reading, error)
	List(ctx context.Context, from, to time.Time, limit int) ([]models.Reading, error)
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}

type EventRepo interface {
	Append(ctx context.Context, e models.DeviceEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.DeviceEvent, error)
	DeleteBefore(ctx context.Context, t time.Time) (int64, error)
}

type FirmwareRepo interface {
	Create(ctx context.Context, img models.FirmwareImage) error
	Latest(ctx context.Context) (*models.FirmwareImage, error)
}

type Repository struct {
	ReadingRepo  ReadingRepo
	EventRepo    EventRepo
	FirmwareRepo FirmwareRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ReadingRepo:  NewReadingSQLite(db),
		EventRepo:    NewEventSQLite(db),
		FirmwareRepo: NewFirmwareSQLite(db),
	}
}
