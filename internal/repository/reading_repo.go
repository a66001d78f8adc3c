package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"purpleair_display/internal/models"
)

type ReadingSQLite struct {
	db *sql.DB
}

func NewReadingSQLite(db *sql.DB) *ReadingSQLite {
	return &ReadingSQLite{db: db}
}

var _ ReadingRepo = (*ReadingSQLite)(nil)

const (
	readingColumns = `id, status, sensor_id, observed_at, fetched_at, pm25_a, pm25_b, pm25, aqi,
		category, color, sensor_aqi, temp_f, humidity, pressure, rssi, flags`

	insertReadingSQL = `
		INSERT INTO readings (status, sensor_id, observed_at, fetched_at, pm25_a, pm25_b, pm25, aqi,
			category, color, sensor_aqi, temp_f, humidity, pressure, rssi, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectLatestReadingSQL = `SELECT ` + readingColumns + ` FROM readings ORDER BY fetched_at DESC, id DESC LIMIT 1`

	deleteReadingsBeforeSQL = `DELETE FROM readings WHERE fetched_at < ?`
)

// marshalFlags converts the slice to a JSON string; nil stays empty.
func marshalFlags(flags []string) (string, error) {
	if len(flags) == 0 {
		return "", nil
	}
	b, err := json.Marshal(flags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalFlags(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var flags []string
	if err := json.Unmarshal([]byte(s), &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

// Save inserts a reading and returns its row id. A zero FetchedAt is
// replaced by now.
func (r *ReadingSQLite) Save(ctx context.Context, rd models.Reading) (int64, error) {
	flags, err := marshalFlags(rd.Flags)
	if err != nil {
		return 0, fmt.Errorf("marshal flags: %w", err)
	}

	fetched := rd.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now().UTC()
	}
	observed := ""
	if !rd.ObservedAt.IsZero() {
		observed = formatTS(rd.ObservedAt)
	}
	var pm25b sql.NullFloat64
	if rd.PM25B != nil {
		pm25b = sql.NullFloat64{Float64: *rd.PM25B, Valid: true}
	}

	res, err := r.db.ExecContext(ctx, insertReadingSQL,
		rd.Status,
		rd.SensorID,
		observed,
		formatTS(fetched),
		rd.PM25A,
		pm25b,
		rd.PM25,
		rd.AQI,
		rd.Category,
		rd.Color,
		rd.SensorAQI,
		rd.TempF,
		rd.HumidityPct,
		rd.PressureHPa,
		rd.RSSI,
		flags,
	)
	if err != nil {
		return 0, fmt.Errorf("insert reading: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading last insert id: %w", err)
	}
	return id, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (models.Reading, error) {
	var (
		rd                 models.Reading
		sensorID, observed sql.NullString
		fetched            string
		pm25b              sql.NullFloat64
		sensorAQI, rssi    sql.NullInt64
		temp, hum, press   sql.NullFloat64
		flags              sql.NullString
	)
	if err := row.Scan(
		&rd.ID,
		&rd.Status,
		&sensorID,
		&observed,
		&fetched,
		&rd.PM25A,
		&pm25b,
		&rd.PM25,
		&rd.AQI,
		&rd.Category,
		&rd.Color,
		&sensorAQI,
		&temp,
		&hum,
		&press,
		&rssi,
		&flags,
	); err != nil {
		return models.Reading{}, err
	}

	var err error
	if rd.ObservedAt, err = parseTS(observed.String); err != nil {
		return models.Reading{}, err
	}
	if rd.FetchedAt, err = parseTS(fetched); err != nil {
		return models.Reading{}, err
	}
	if rd.Flags, err = unmarshalFlags(flags.String); err != nil {
		return models.Reading{}, fmt.Errorf("unmarshal flags: %w", err)
	}
	if pm25b.Valid {
		b := pm25b.Float64
		rd.PM25B = &b
	}
	rd.SensorID = sensorID.String
	rd.SensorAQI = int(sensorAQI.Int64)
	rd.RSSI = int(rssi.Int64)
	rd.TempF = temp.Float64
	rd.HumidityPct = hum.Float64
	rd.PressureHPa = press.Float64
	return rd, nil
}

// Latest returns the most recent reading, or a zero Reading (ID 0) when
// the table is empty.
func (r *ReadingSQLite) Latest(ctx context.Context) (models.Reading, error) {
	rd, err := scanReading(r.db.QueryRowContext(ctx, selectLatestReadingSQL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Reading{}, nil
		}
		return models.Reading{}, err
	}
	return rd, nil
}

// List returns up to limit readings fetched within [from, to] (zero bounds
// are open), oldest first. When more rows match, the newest ones are kept.
func (r *ReadingSQLite) List(ctx context.Context, from, to time.Time, limit int) ([]models.Reading, error) {
	q, args := buildRangeQuery(`SELECT `+readingColumns+` FROM readings`, "fetched_at", from, to, nil)
	q += " ORDER BY fetched_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Reading, 0, limit)
	for rows.Next() {
		rd, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DeleteBefore removes readings fetched strictly before t.
func (r *ReadingSQLite) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteReadingsBeforeSQL, formatTS(t))
	if err != nil {
		return 0, fmt.Errorf("delete readings: %w", err)
	}
	return res.RowsAffected()
}
