package models

import (
	"time"
)

// TimestampLayout имеет фиксированную ширину, поэтому лексикографический порядок совпадает с хронологическим.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Reading это одна неизменяемая запись телеметрии от датчика.
type Reading struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	DeviceID  string   `gorm:"column:device_id;size:255;not null;index:idx_device" json:"device_id"`
	Timestamp string   `gorm:"column:timestamp;size:32;not null;index:idx_timestamp" json:"timestamp"`
	SourceIP  string   `gorm:"column:source_ip;size:64;not null" json:"source_ip"`
	CO2       *float64 `gorm:"column:co2" json:"co2"`
	Temp      *int64   `gorm:"column:temp" json:"temp"`
	Status    string   `gorm:"column:status;size:20" json:"status"`
}

func (Reading) TableName() string {
	return "logs"
}

// FormatTimestamp переводит момент времени в формат колонки timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

type DeviceSnapshot struct {
	DeviceID string   `gorm:"column:device_id" json:"device_id"`
	LastSeen string   `gorm:"column:last_seen" json:"last_seen"`
	CO2      *float64 `gorm:"column:co2" json:"co2"`
	Temp     *int64   `gorm:"column:temp" json:"temp"`
	Status   string   `gorm:"column:status" json:"status"`
	SourceIP string   `gorm:"column:source_ip" json:"source_ip"`
}

type FleetStats struct {
	TotalDevices  int64   `json:"total_devices"`
	ActiveDevices int64   `json:"active_devices"`
	HighCO2Alerts int64   `json:"high_co2_alerts"`
	AvgTemp       float64 `json:"avg_temp"`
}

type TrendPoint struct {
	Hour string   `json:"hour"`
	CO2  *float64 `json:"co2"`
	Temp *float64 `json:"temp"`
}

type GaugeZone string

const (
	GaugeZoneLow    GaugeZone = "low"
	GaugeZoneMedium GaugeZone = "medium"
	GaugeZoneHigh   GaugeZone = "high"
)

type Gauge struct {
	DeviceID  string    `json:"device_id"`
	Timestamp string    `json:"timestamp"`
	PPM       int       `json:"ppm"`
	DialPPM   int       `json:"dial_ppm"`
	Angle     float64   `json:"angle"`
	Zone      GaugeZone `json:"zone"`
	Temp      *int64    `json:"temp"`
	Status    string    `json:"status"`
}
