package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// buildDailyPDF renders the one-page daily report: targets versus consumed
// totals with percent-of-target, the day's meal list, and water intake.
func buildDailyPDF(data DailyReportData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 16)
	pdf.AddPage()

	pdf.Cell(0, 10, "Daily Nutrition Report")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", data.Date))
	pdf.Ln(12)

	// Targets vs consumed
	pdf.SetFont("Arial", "", 14)
	pdf.Cell(0, 8, "Targets")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(35, 6, "", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Target", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "Consumed", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, "% of target", "1", 1, "C", false, 0, "")

	targetRow(pdf, "Calories, kcal", float64(data.Targets.CaloriesKcal), data.Totals.CaloriesKcal)
	targetRow(pdf, "Carbs, g", float64(data.Targets.CarbsG), data.Totals.CarbsG)
	targetRow(pdf, "Protein, g", float64(data.Targets.ProteinG), data.Totals.ProteinG)
	targetRow(pdf, "Fat, g", float64(data.Targets.FatG), data.Totals.FatG)
	pdf.Ln(8)

	// Meal list
	pdf.SetFont("Arial", "", 14)
	pdf.Cell(0, 8, "Meals")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	if len(data.Meals) == 0 {
		pdf.Cell(0, 6, "No meals logged.")
		pdf.Ln(6)
	} else {
		pdf.CellFormat(20, 6, "Time", "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, "Meal", "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, "Kcal", "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, "Carbs", "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, "Protein", "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, "Fat", "1", 1, "C", false, 0, "")

		for _, meal := range data.Meals {
			pdf.CellFormat(20, 6, meal.CreatedAt.Format("15:04"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 6, truncate(meal.Name, 38), "1", 0, "L", false, 0, "")
			pdf.CellFormat(25, 6, formatGrams(meal.CaloriesKcal), "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 6, formatGrams(meal.CarbsG), "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 6, formatGrams(meal.ProteinG), "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 6, formatGrams(meal.FatG), "1", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(8)

	// Water
	pdf.SetFont("Arial", "", 14)
	pdf.Cell(0, 8, "Water")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("%d servings (%.2f L)", data.WaterCount, data.WaterLiters))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func targetRow(pdf *gofpdf.Fpdf, label string, target, consumed float64) {
	pdf.CellFormat(35, 6, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, formatGrams(target), "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, formatGrams(consumed), "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 6, formatPercent(consumed, target), "1", 1, "C", false, 0, "")
}

// buildDailyCSV renders the same report as rows: one per meal, then the
// totals, targets, and water summary lines.
func buildDailyCSV(data DailyReportData) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "row", "name", "calories_kcal", "carbs_g", "protein_g", "fat_g"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, meal := range data.Meals {
		row := []string{
			data.Date,
			"meal",
			meal.Name,
			formatGrams(meal.CaloriesKcal),
			formatGrams(meal.CarbsG),
			formatGrams(meal.ProteinG),
			formatGrams(meal.FatG),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	totals := []string{
		data.Date,
		"totals",
		"",
		formatGrams(data.Totals.CaloriesKcal),
		formatGrams(data.Totals.CarbsG),
		formatGrams(data.Totals.ProteinG),
		formatGrams(data.Totals.FatG),
	}
	if err := w.Write(totals); err != nil {
		return nil, err
	}

	targets := []string{
		data.Date,
		"targets",
		"",
		strconv.Itoa(data.Targets.CaloriesKcal),
		strconv.Itoa(data.Targets.CarbsG),
		strconv.Itoa(data.Targets.ProteinG),
		strconv.Itoa(data.Targets.FatG),
	}
	if err := w.Write(targets); err != nil {
		return nil, err
	}

	water := []string{data.Date, "water", fmt.Sprintf("%d servings", data.WaterCount), "", "", "", ""}
	if err := w.Write(water); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPercent(consumed, target float64) string {
	if target <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", consumed/target*100)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}
