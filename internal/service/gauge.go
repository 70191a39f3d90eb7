package service

import (
	"math"

	"co2monitor/internal/models"
)

// Полосы шкалы не связаны с порогом HighCO2Threshold.
const (
	PPMPerFraction    = 10000
	GaugeDefaultPPM   = 400
	GaugeLowMaxPPM    = 800
	GaugeMediumMaxPPM = 1200
	GaugeDialMinPPM   = 100
	GaugeDialMaxPPM   = 1200
)

func NewGauge(latest models.Reading) *models.Gauge {
	ppm := GaugeDefaultPPM
	if latest.CO2 != nil {
		ppm = fractionToPPM(*latest.CO2)
	}

	dial := ppm
	if dial < GaugeDialMinPPM {
		dial = GaugeDialMinPPM
	}
	if dial > GaugeDialMaxPPM {
		dial = GaugeDialMaxPPM
	}

	return &models.Gauge{
		DeviceID:  latest.DeviceID,
		Timestamp: latest.Timestamp,
		PPM:       ppm,
		DialPPM:   dial,
		Angle:     float64(dial-GaugeDialMinPPM) / float64(GaugeDialMaxPPM-GaugeDialMinPPM) * 360,
		Zone:      GaugeZoneFor(ppm),
		Temp:      latest.Temp,
		Status:    latest.Status,
	}
}

// fractionToPPM отбрасывает дробную часть и ограничивает результат диапазоном int32,
// иначе преобразование огромных значений в int не определено.
func fractionToPPM(co2 float64) int {
	ppm := math.Trunc(co2 * PPMPerFraction)
	switch {
	case math.IsNaN(ppm):
		return GaugeDefaultPPM
	case ppm > math.MaxInt32:
		return math.MaxInt32
	case ppm < math.MinInt32:
		return math.MinInt32
	}
	return int(ppm)
}

func GaugeZoneFor(ppm int) models.GaugeZone {
	switch {
	case ppm <= GaugeLowMaxPPM:
		return models.GaugeZoneLow
	case ppm <= GaugeMediumMaxPPM:
		return models.GaugeZoneMedium
	default:
		return models.GaugeZoneHigh
	}
}
