package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"co2monitor/internal/models"
)

const (
	readingsSheet = "Readings"
	infoSheet     = "Info"
)

// CreateReadingsWorkbook собирает книгу с историей устройства. Закрывать книгу должен вызывающий.
func CreateReadingsWorkbook(deviceID string, readings []models.Reading, co2Threshold float64) (*excelize.File, error) {
	f := excelize.NewFile()

	// Переименовываем лист по умолчанию
	if err := f.SetSheetName("Sheet1", readingsSheet); err != nil {
		f.Close()
		return nil, err
	}

	headers := []string{"ID", "Timestamp", "CO2", "Temp (°C)", "Status", "Source IP"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(readingsSheet, cell, header)
	}

	for rowIdx, r := range readings {
		rowNum := rowIdx + 2 // Заголовок в первой строке

		f.SetCellValue(readingsSheet, fmt.Sprintf("A%d", rowNum), r.ID)
		f.SetCellValue(readingsSheet, fmt.Sprintf("B%d", rowNum), r.Timestamp)
		if r.CO2 != nil {
			f.SetCellValue(readingsSheet, fmt.Sprintf("C%d", rowNum), *r.CO2)
		}
		if r.Temp != nil {
			f.SetCellValue(readingsSheet, fmt.Sprintf("D%d", rowNum), *r.Temp)
		}
		f.SetCellValue(readingsSheet, fmt.Sprintf("E%d", rowNum), r.Status)
		f.SetCellValue(readingsSheet, fmt.Sprintf("F%d", rowNum), r.SourceIP)
	}

	for i := 1; i <= len(headers); i++ {
		colName, _ := excelize.ColumnNumberToName(i)
		f.SetColWidth(readingsSheet, colName, colName, 20)
	}

	// Подсветка превышения порога CO2
	if len(readings) > 0 {
		highCO2Rule := []excelize.ConditionalFormatOptions{
			{
				Type:     "cell",
				Criteria: ">",
				Value:    strconv.FormatFloat(co2Threshold, 'f', -1, 64),
				Format:   conditionalFormatStyle(f, "#FFCCCC"),
			},
		}
		rangeRef := fmt.Sprintf("C2:C%d", len(readings)+1)
		if err := f.SetConditionalFormat(readingsSheet, rangeRef, highCO2Rule); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := createInfoSheet(f, deviceID, readings); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func createInfoSheet(f *excelize.File, deviceID string, readings []models.Reading) error {
	if _, err := f.NewSheet(infoSheet); err != nil {
		return err
	}

	rows := [][2]interface{}{
		{"Device", deviceID},
		{"Report Generated", time.Now().UTC().Format(time.RFC3339)},
		{"Total Records", len(readings)},
	}
	if len(readings) > 0 {
		// История отсортирована от новых к старым
		rows = append(rows, [2]interface{}{
			"Time Range",
			fmt.Sprintf("%s to %s", readings[len(readings)-1].Timestamp, readings[0].Timestamp),
		})
	}

	for i, row := range rows {
		f.SetCellValue(infoSheet, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(infoSheet, fmt.Sprintf("B%d", i+1), row[1])
	}
	return nil
}

func conditionalFormatStyle(f *excelize.File, color string) *int {
	style, err := f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{color},
			Pattern: 1,
		},
	})
	if err != nil {
		return nil
	}
	return &style
}
