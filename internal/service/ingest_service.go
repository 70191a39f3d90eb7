package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"co2monitor/internal/models"
	"co2monitor/internal/repository"
)

var (
	ErrInvalidPayload = errors.New("invalid payload")
	ErrStorageFailure = errors.New("storage failure")
)

const StatusMaxLength = 20

type IngestService interface {
	Ingest(ctx context.Context, body []byte, sourceIP string) (*models.Reading, error)
}

type ingestService struct {
	repo     repository.ReadingRepository
	counters repository.CounterRepository
	now      func() time.Time
}

func NewIngestService(
	repo repository.ReadingRepository,
	counters repository.CounterRepository,
	now func() time.Time,
) IngestService {
	if now == nil {
		now = time.Now
	}
	return &ingestService{
		repo:     repo,
		counters: counters,
		now:      now,
	}
}

func (s *ingestService) Ingest(ctx context.Context, body []byte, sourceIP string) (*models.Reading, error) {
	reading, err := ParsePayload(body, sourceIP)
	if err != nil {
		s.count(ctx, repository.CounterRejected)
		return nil, err
	}

	reading.Timestamp = models.FormatTimestamp(s.now())

	if err := s.repo.Create(ctx, reading); err != nil {
		s.count(ctx, repository.CounterFailed)
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	s.count(ctx, repository.CounterAccepted)

	log.Printf("Reading saved: %s | CO2=%s | Temp=%s | Status=%s",
		reading.DeviceID, formatFloat(reading.CO2), formatInt(reading.Temp), reading.Status)
	return reading, nil
}

func (s *ingestService) count(ctx context.Context, key string) {
	if s.counters == nil {
		return
	}
	if _, err := s.counters.Increment(ctx, key); err != nil {
		log.Printf("Failed to increment counter %s: %v", key, err)
	}
}

// ParsePayload разбирает тело запроса в Reading без id и timestamp.
func ParsePayload(body []byte, sourceIP string) (*models.Reading, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload map[string]interface{}
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrInvalidPayload)
	}
	// null и {} тоже считаются пустым телом
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty JSON object", ErrInvalidPayload)
	}

	reading := &models.Reading{
		DeviceID: sourceIP,
		SourceIP: sourceIP,
	}

	// co2 строгий: ошибка приведения отклоняет весь запрос
	if raw, ok := payload["co2"]; ok && raw != nil {
		co2, ok := toFloat(raw)
		if !ok || math.IsNaN(co2) || math.IsInf(co2, 0) {
			return nil, fmt.Errorf("%w: co2 is not a number: %v", ErrInvalidPayload, raw)
		}
		reading.CO2 = &co2
	}

	// temp мягкий: ошибка приведения дает NULL
	if raw, ok := payload["temp"]; ok && raw != nil {
		reading.Temp = toTruncatedInt(raw)
	}

	if raw, ok := payload["status"]; ok {
		reading.Status = truncate(stringify(raw), StatusMaxLength)
	}

	if raw, ok := payload["device"]; ok && raw != nil {
		if device := stringify(raw); device != "" {
			reading.DeviceID = device
		}
	}

	return reading, nil
}

func toFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(val), 64)
		return f, err == nil
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func toTruncatedInt(v interface{}) *int64 {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return nil
	}
	n := int64(f)
	return &n
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func formatFloat(v *float64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int64) string {
	if v == nil {
		return "null"
	}
	return strconv.FormatInt(*v, 10)
}
