package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"co2monitor/internal/models"
	"co2monitor/internal/repository"
)

var errDown = errors.New("database is down")

type fakeReadingRepository struct {
	mu       sync.Mutex
	created  []models.Reading
	history  []models.Reading
	snapshot []models.DeviceSnapshot
	stats    *repository.WindowStats
	buckets  []repository.HourlyBucket
	err      error

	lastSince     string
	lastThreshold float64
	lastLimit     int
}

func (f *fakeReadingRepository) Create(_ context.Context, reading *models.Reading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	reading.ID = uint(len(f.created) + 1)
	f.created = append(f.created, *reading)
	return nil
}

func (f *fakeReadingRepository) GetLatestPerDevice(context.Context) ([]models.DeviceSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func (f *fakeReadingRepository) GetHistory(_ context.Context, _ string, limit int) ([]models.Reading, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.history, nil
}

func (f *fakeReadingRepository) GetWindowStats(_ context.Context, since string, threshold float64) (*repository.WindowStats, error) {
	f.lastSince = since
	f.lastThreshold = threshold
	if f.err != nil {
		return nil, f.err
	}
	if f.stats == nil {
		return &repository.WindowStats{}, nil
	}
	return f.stats, nil
}

func (f *fakeReadingRepository) GetHourlyTrend(_ context.Context, since string) ([]repository.HourlyBucket, error) {
	f.lastSince = since
	if f.err != nil {
		return nil, f.err
	}
	return f.buckets, nil
}

func (f *fakeReadingRepository) Count(context.Context) (int64, error) {
	return int64(len(f.created)), f.err
}

func (f *fakeReadingRepository) Ping(context.Context) error {
	return f.err
}

type fakeCounterRepository struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newFakeCounters() *fakeCounterRepository {
	return &fakeCounterRepository{counts: make(map[string]int64)}
}

func (f *fakeCounterRepository) Increment(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounterRepository) GetAll(_ context.Context, keys ...string) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make(map[string]int64, len(keys))
	for _, k := range keys {
		result[k] = f.counts[k]
	}
	return result, nil
}

func (f *fakeCounterRepository) Enabled() bool { return true }

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}
