package repository

import (
	"context"
	"database/sql"

	"co2monitor/internal/models"

	"gorm.io/gorm"
)

// Границы окон передаются строками в формате models.TimestampLayout.
type ReadingRepository interface {
	Create(ctx context.Context, reading *models.Reading) error
	GetLatestPerDevice(ctx context.Context) ([]models.DeviceSnapshot, error)
	GetHistory(ctx context.Context, deviceID string, limit int) ([]models.Reading, error)
	GetWindowStats(ctx context.Context, since string, co2Threshold float64) (*WindowStats, error)
	GetHourlyTrend(ctx context.Context, since string) ([]HourlyBucket, error)
	Count(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type WindowStats struct {
	TotalDevices  int64
	ActiveDevices int64
	HighCO2       int64
	AvgTemp       sql.NullFloat64
}

type HourlyBucket struct {
	Hour    string          `gorm:"column:hour_of_day"`
	AvgCO2  sql.NullFloat64 `gorm:"column:avg_co2"`
	AvgTemp sql.NullFloat64 `gorm:"column:avg_temp"`
}

type readingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) ReadingRepository {
	return &readingRepository{db: db}
}

func (r *readingRepository) Create(ctx context.Context, reading *models.Reading) error {
	return r.db.WithContext(ctx).Create(reading).Error
}

func (r *readingRepository) GetLatestPerDevice(ctx context.Context) ([]models.DeviceSnapshot, error) {
	snapshots := make([]models.DeviceSnapshot, 0)
	err := r.db.WithContext(ctx).
		Raw(`
			SELECT l.device_id, l.timestamp AS last_seen, l.co2, l.temp, l.status, l.source_ip
			FROM logs l
			WHERE l.id = (
				SELECT l2.id FROM logs l2
				WHERE l2.device_id = l.device_id
				ORDER BY l2.timestamp DESC, l2.id DESC
				LIMIT 1
			)
			ORDER BY l.device_id ASC
		`).
		Scan(&snapshots).
		Error
	return snapshots, err
}

func (r *readingRepository) GetHistory(ctx context.Context, deviceID string, limit int) ([]models.Reading, error) {
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	readings := make([]models.Reading, 0)
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("logs.timestamp DESC").
		Order("id DESC").
		Limit(limit).
		Find(&readings).
		Error
	return readings, err
}

func (r *readingRepository) GetWindowStats(ctx context.Context, since string, co2Threshold float64) (*WindowStats, error) {
	var stats WindowStats
	db := r.db.WithContext(ctx)

	// Всего устройств считаем за всю историю, без окна
	err := db.Model(&models.Reading{}).
		Distinct("device_id").
		Count(&stats.TotalDevices).
		Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Reading{}).
		Where("logs.timestamp >= ?", since).
		Distinct("device_id").
		Count(&stats.ActiveDevices).
		Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Reading{}).
		Where("co2 > ? AND logs.timestamp >= ?", co2Threshold, since).
		Distinct("device_id").
		Count(&stats.HighCO2).
		Error
	if err != nil {
		return nil, err
	}

	row := db.Model(&models.Reading{}).
		Select("AVG(temp)").
		Where("temp IS NOT NULL AND logs.timestamp >= ?", since).
		Row()
	if err := row.Scan(&stats.AvgTemp); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *readingRepository) GetHourlyTrend(ctx context.Context, since string) ([]HourlyBucket, error) {
	// Час берется из строки timestamp (позиции 12-13), дата игнорируется
	buckets := make([]HourlyBucket, 0)
	err := r.db.WithContext(ctx).
		Model(&models.Reading{}).
		Select("SUBSTR(logs.timestamp, 12, 2) AS hour_of_day, AVG(co2) AS avg_co2, AVG(temp) AS avg_temp").
		Where("logs.timestamp >= ?", since).
		Group("SUBSTR(logs.timestamp, 12, 2)").
		Order("hour_of_day ASC").
		Scan(&buckets).
		Error
	return buckets, err
}

func (r *readingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Reading{}).
		Count(&count).
		Error
	return count, err
}

func (r *readingRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
