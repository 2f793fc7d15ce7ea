package reports

import (
	"github.com/dkotl/macrolog/internal/nutrition"
	"github.com/dkotl/macrolog/internal/storage"
)

// Report formats.
const (
	FormatPDF = "pdf"
	FormatCSV = "csv"
)

// DailyReportData is everything one daily report renders. It is assembled
// by the service and consumed by the pure generator.
type DailyReportData struct {
	Date        string
	Targets     nutrition.Targets
	Totals      nutrition.ConsumedTotals
	Meals       []storage.Meal
	WaterCount  int
	WaterLiters float64
}

// ErrorResponse is the API error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
