package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"co2monitor/internal/models"
	"co2monitor/internal/utils"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

type ExportService interface {
	ExportHistory(ctx context.Context, deviceID, format string, w io.Writer) error
	ContentType(format string) (contentType, extension string, err error)
}

type exportService struct {
	queries QueryService
}

func NewExportService(queries QueryService) ExportService {
	return &exportService{queries: queries}
}

func (s *exportService) ContentType(format string) (string, string, error) {
	switch format {
	case "csv":
		return "text/csv", "csv", nil
	case "excel", "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func (s *exportService) ExportHistory(ctx context.Context, deviceID, format string, w io.Writer) error {
	if _, _, err := s.ContentType(format); err != nil {
		return err
	}

	// Ошибка чтения уже залогирована, выгружаем то, что есть
	history, _ := s.queries.DeviceHistory(ctx, deviceID)

	switch format {
	case "csv":
		return writeCSV(w, history)
	default:
		f, err := utils.CreateReadingsWorkbook(deviceID, history, HighCO2Threshold)
		if err != nil {
			return fmt.Errorf("failed to create workbook: %w", err)
		}
		defer f.Close()
		return f.Write(w)
	}
}

func writeCSV(w io.Writer, readings []models.Reading) error {
	writer := csv.NewWriter(w)

	header := []string{"id", "device_id", "timestamp", "source_ip", "co2", "temp", "status"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range readings {
		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.DeviceID,
			r.Timestamp,
			r.SourceIP,
			csvFloat(r.CO2),
			csvInt(r.Temp),
			r.Status,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func csvFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func csvInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
