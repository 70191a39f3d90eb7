package service

import (
	"context"
	"log"
	"strconv"
	"time"

	"co2monitor/internal/models"
	"co2monitor/internal/repository"
)

const (
	ActivityWindow   = 10 * time.Minute
	TrendWindow      = 24 * time.Hour
	HistoryLimit     = 100
	HighCO2Threshold = 0.09 // доля CO2, эквивалентно 900 ppm
)

// QueryService отдает данные для дашборда. Ошибки хранилища не пробрасываются:
// операция возвращает пустой результат и ok == false, сама ошибка пишется в лог.
type QueryService interface {
	FleetSnapshot(ctx context.Context) ([]models.DeviceSnapshot, bool)
	DeviceHistory(ctx context.Context, deviceID string) ([]models.Reading, bool)
	FleetStatistics(ctx context.Context) (models.FleetStats, bool)
	HourlyTrend(ctx context.Context) ([]models.TrendPoint, bool)
	Gauge(ctx context.Context, deviceID string) (*models.Gauge, bool)
}

type queryService struct {
	repo repository.ReadingRepository
	now  func() time.Time
}

func NewQueryService(repo repository.ReadingRepository, now func() time.Time) QueryService {
	if now == nil {
		now = time.Now
	}
	return &queryService{
		repo: repo,
		now:  now,
	}
}

func (s *queryService) FleetSnapshot(ctx context.Context) ([]models.DeviceSnapshot, bool) {
	snapshots, err := s.repo.GetLatestPerDevice(ctx)
	if err != nil {
		log.Printf("Fleet snapshot query failed: %v", err)
		return []models.DeviceSnapshot{}, false
	}
	if snapshots == nil {
		snapshots = []models.DeviceSnapshot{}
	}
	return snapshots, true
}

func (s *queryService) DeviceHistory(ctx context.Context, deviceID string) ([]models.Reading, bool) {
	history, err := s.repo.GetHistory(ctx, deviceID, HistoryLimit)
	if err != nil {
		log.Printf("Device history query failed for %s: %v", deviceID, err)
		return []models.Reading{}, false
	}
	if history == nil {
		history = []models.Reading{}
	}
	return history, true
}

func (s *queryService) FleetStatistics(ctx context.Context) (models.FleetStats, bool) {
	since := models.FormatTimestamp(s.now().Add(-ActivityWindow))

	raw, err := s.repo.GetWindowStats(ctx, since, HighCO2Threshold)
	if err != nil {
		log.Printf("Fleet statistics query failed: %v", err)
		return models.FleetStats{}, false
	}

	stats := models.FleetStats{
		TotalDevices:  raw.TotalDevices,
		ActiveDevices: raw.ActiveDevices,
		HighCO2Alerts: raw.HighCO2,
	}
	// Нет данных в окне: показываем 0, а не null
	if raw.AvgTemp.Valid {
		stats.AvgTemp = roundTenths(raw.AvgTemp.Float64)
	}
	return stats, true
}

// roundTenths округляет до одного знака по точному двоичному значению,
// половина округляется к четному: 22.25 -> 22.2, 20.75 -> 20.8.
func roundTenths(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}

func (s *queryService) HourlyTrend(ctx context.Context) ([]models.TrendPoint, bool) {
	since := models.FormatTimestamp(s.now().Add(-TrendWindow))

	buckets, err := s.repo.GetHourlyTrend(ctx, since)
	if err != nil {
		log.Printf("Hourly trend query failed: %v", err)
		return []models.TrendPoint{}, false
	}

	points := make([]models.TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		point := models.TrendPoint{Hour: b.Hour + ":00"}
		if b.AvgCO2.Valid {
			v := b.AvgCO2.Float64
			point.CO2 = &v
		}
		if b.AvgTemp.Valid {
			v := b.AvgTemp.Float64
			point.Temp = &v
		}
		points = append(points, point)
	}
	return points, true
}

// Gauge строится по последней записи истории; nil, если истории нет.
func (s *queryService) Gauge(ctx context.Context, deviceID string) (*models.Gauge, bool) {
	history, ok := s.DeviceHistory(ctx, deviceID)
	if len(history) == 0 {
		return nil, ok
	}
	return NewGauge(history[0]), ok
}
