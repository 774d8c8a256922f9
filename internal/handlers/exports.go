package handlers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"example.com/cost-signal/backend/internal/models"
)

const (
	exportSheetName   = "Indicators"
	contentTypeCSV    = "text/csv; charset=utf-8"
	contentTypeXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFilePrefix  = "indicators-"
	exportFloatFormat = 'f'
)

var exportHeader = []string{
	"week_start",
	"indicator_type",
	"value",
	"previous_value",
	"change_percent",
	"status",
}

// ExportCSV выгружает историю индикаторов в CSV-файл.
func (h *IndicatorHandler) ExportCSV(c echo.Context) error {
	indicator, weeks, err := parseHistoryQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	readings, err := h.Readings.ListHistory(c.Request().Context(), indicator, weeks)
	if err != nil {
		return serverError(c)
	}

	var buf bytes.Buffer
	if err := writeReadingsCSV(&buf, readings); err != nil {
		return serverError(c)
	}

	setAttachment(c, exportFilename(time.Now(), "csv"))
	return c.Blob(http.StatusOK, contentTypeCSV, buf.Bytes())
}

// ExportXLSX выгружает историю индикаторов в книгу Excel.
func (h *IndicatorHandler) ExportXLSX(c echo.Context) error {
	indicator, weeks, err := parseHistoryQuery(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	readings, err := h.Readings.ListHistory(c.Request().Context(), indicator, weeks)
	if err != nil {
		return serverError(c)
	}

	buf, err := buildReadingsWorkbook(readings)
	if err != nil {
		return serverError(c)
	}

	setAttachment(c, exportFilename(time.Now(), "xlsx"))
	return c.Blob(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

func writeReadingsCSV(buf *bytes.Buffer, readings []models.IndicatorReading) error {
	writer := csv.NewWriter(buf)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}

	for _, reading := range readings {
		if err := writer.Write(readingRecord(reading)); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func buildReadingsWorkbook(readings []models.IndicatorReading) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	header := make([]interface{}, 0, len(exportHeader))
	for _, title := range exportHeader {
		header = append(header, title)
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &header); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheetName, "A1", "F1", bold); err != nil {
		return nil, err
	}

	for i, reading := range readings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			reading.WeekStart.Format(dateLayout),
			string(reading.IndicatorType),
			reading.Value,
			optionalCell(reading.PreviousValue),
			optionalCell(reading.ChangePercent),
			string(reading.Status),
		}
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(exportSheetName, "A", "F", 16); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func readingRecord(reading models.IndicatorReading) []string {
	return []string{
		reading.WeekStart.Format(dateLayout),
		string(reading.IndicatorType),
		formatFloat(reading.Value),
		formatOptional(reading.PreviousValue),
		formatOptional(reading.ChangePercent),
		string(reading.Status),
	}
}

func optionalCell(value *float64) interface{} {
	if value == nil {
		return ""
	}
	return *value
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, exportFloatFormat, -1, 64)
}

func formatOptional(value *float64) string {
	if value == nil {
		return ""
	}
	return formatFloat(*value)
}

func exportFilename(now time.Time, ext string) string {
	return exportFilePrefix + now.UTC().Format(dateLayout) + "." + ext
}

func setAttachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=\""+filename+"\"")
}
