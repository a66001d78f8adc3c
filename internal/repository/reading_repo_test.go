package repository

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"purpleair_display/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var readingCols = []string{"id", "status", "sensor_id", "observed_at", "fetched_at", "pm25_a", "pm25_b", "pm25",
	"aqi", "category", "color", "sensor_aqi", "temp_f", "humidity", "pressure", "rssi", "flags"}

// sqlmockArgumentFunc adapts a predicate to sqlmock.Argument.
type sqlmockArgumentFunc func(v driver.Value) bool

func (f sqlmockArgumentFunc) Match(v driver.Value) bool { return f(v) }

func TestReadingSave_WritesColumnsAndReturnsID(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewReadingSQLite(db)

	b := 10.4
	rd := models.Reading{
		Status:     models.StatusOK,
		SensorID:   "84:f3:eb",
		ObservedAt: time.Date(2024, 5, 1, 17, 2, 11, 0, time.UTC),
		FetchedAt:  time.Date(2024, 5, 1, 17, 2, 15, 0, time.UTC),
		PM25A:      9.6,
		PM25B:      &b,
		PM25:       10,
		AQI:        42,
		Category:   "Good",
		Color:      "#00e400",
		SensorAQI:  41,
		TempF:      79,
		RSSI:       -61,
		Flags:      []string{models.FlagChannelMismatch},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO readings")).
		WithArgs(
			"OK", "84:f3:eb",
			"2024-05-01T17:02:11.000000Z", "2024-05-01T17:02:15.000000Z",
			9.6, 10.4, 10.0, 42, "Good", "#00e400", 41,
			79.0, 0.0, 0.0, -61,
			`["CHANNEL_MISMATCH"]`,
		).
		WillReturnResult(sqlmock.NewResult(17, 1))

	id, err := repo.Save(ctx(t), rd)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id != 17 {
		t.Fatalf("id: got %d want 17", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReadingSave_DefaultsFetchedAtAndNullChannelB(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewReadingSQLite(db)

	recent := sqlmockArgumentFunc(func(v driver.Value) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		ts, err := time.Parse(tsLayout, s)
		return err == nil && time.Since(ts) < 5*time.Second
	})

	mock.ExpectExec("INSERT INTO readings").
		WithArgs(
			"OK", "", "", recent,
			40.2, nil, 40.2, 113, "Unhealthy for Sensitive Groups", "#ff7e00", 0,
			0.0, 0.0, 0.0, 0, "",
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := repo.Save(ctx(t), models.Reading{
		Status:   models.StatusOK,
		PM25A:    40.2,
		PM25:     40.2,
		AQI:      113,
		Category: "Unhealthy for Sensitive Groups",
		Color:    "#ff7e00",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReadingLatest_EmptyTable(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewReadingSQLite(db)

	mock.ExpectQuery("SELECT (.+) FROM readings ORDER BY fetched_at DESC").
		WillReturnRows(sqlmock.NewRows(readingCols))

	got, err := repo.Latest(ctx(t))
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ID != 0 {
		t.Fatalf("expected zero reading, got %+v", got)
	}
}

func TestReadingLatest_ScansRow(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewReadingSQLite(db)

	rows := sqlmock.NewRows(readingCols).AddRow(
		5, "OK", "84:f3:eb", "", "2024-05-01T17:02:15.000000Z",
		9.6, 10.4, 10.0, 42, "Good", "#00e400", 41,
		79.0, 31.0, 1009.4, -61, `["CHANNEL_MISMATCH"]`,
	)
	mock.ExpectQuery("SELECT (.+) FROM readings").WillReturnRows(rows)

	got, err := repo.Latest(ctx(t))
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ID != 5 || got.AQI != 42 || got.PM25B == nil || *got.PM25B != 10.4 {
		t.Fatalf("unexpected reading: %+v", got)
	}
	if !got.ObservedAt.IsZero() {
		t.Fatalf("ObservedAt should be zero, got %v", got.ObservedAt)
	}
	if got.FetchedAt.Location() != time.UTC || got.FetchedAt.Hour() != 17 {
		t.Fatalf("FetchedAt: %v", got.FetchedAt)
	}
	if !got.HasFlag(models.FlagChannelMismatch) || got.PressureHPa != 1009.4 {
		t.Fatalf("unexpected details: %+v", got)
	}
}

func TestReadingLatest_DBError(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewReadingSQLite(db)

	mock.ExpectQuery("SELECT (.+) FROM readings").WillReturnError(errors.New("locked"))

	if _, err := repo.Latest(ctx(t)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestReadingList_RangeLimitAndOrder(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewReadingSQLite(db)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	// rows come back newest first and must be returned oldest first
	rows := sqlmock.NewRows(readingCols).
		AddRow(9, "OK", nil, nil, "2024-05-01T12:00:00.000000Z", 20.0, nil, 20.0, 68, "Moderate", "#ffff00", nil, nil, nil, nil, nil, nil).
		AddRow(8, "OK", nil, nil, "2024-05-01T11:00:00.000000Z", 5.0, nil, 5.0, 21, "Good", "#00e400", nil, nil, nil, nil, nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM readings WHERE fetched_at >= ? AND fetched_at <= ? ORDER BY fetched_at DESC, id DESC LIMIT ?`)).
		WithArgs(formatTS(from), formatTS(to), 2).
		WillReturnRows(rows)

	got, err := repo.List(ctx(t), from, to, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 || got[0].ID != 8 || got[1].ID != 9 {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].PM25B != nil || got[0].Flags != nil {
		t.Fatalf("NULL columns should map to zero values: %+v", got[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReadingDeleteBefore(t *testing.T) {
	t.Parallel()

	db, mock := newMock(t)
	repo := NewReadingSQLite(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM readings WHERE fetched_at < ?`)).
		WithArgs("2024-04-01T00:00:00.000000Z").
		WillReturnResult(sqlmock.NewResult(0, 120))

	n, err := repo.DeleteBefore(ctx(t), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || n != 120 {
		t.Fatalf("DeleteBefore = %d, %v", n, err)
	}
}
