package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dkotl/macrolog/internal/config"
	"github.com/dkotl/macrolog/internal/nutrition"
	"github.com/dkotl/macrolog/internal/storage"
	"github.com/dkotl/macrolog/internal/userctx"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidDate     = errors.New("date must be formatted YYYY-MM-DD")
	ErrInvalidFormat   = errors.New("format must be pdf or csv")
)

// Report is a rendered document ready to be sent to the client.
type Report struct {
	Date     string
	Format   string
	MimeType string
	Data     []byte
}

// Service assembles daily reports. Generation is pure: nothing is persisted
// and no report objects are stored.
type Service struct {
	storage   storage.Store
	servingMl int
}

func NewService(st storage.Store, cfg *config.Config) *Service {
	servingMl := cfg.WaterServingMl
	if servingMl <= 0 {
		servingMl = 250
	}
	return &Service{storage: st, servingMl: servingMl}
}

// Daily renders the report for one local calendar day (empty date means
// today). A report without a profile is meaningless, so absent profiles
// are an error rather than an empty page.
func (s *Service) Daily(ctx context.Context, date, format string) (Report, error) {
	userID := userIDFromContext(ctx)

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatCSV {
		return Report{}, ErrInvalidFormat
	}

	day, from, to, err := dayWindow(date)
	if err != nil {
		return Report{}, err
	}

	profile, err := s.storage.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Report{}, ErrProfileNotFound
		}
		return Report{}, fmt.Errorf("get profile: %w", err)
	}

	meals, err := s.storage.ListMealsBetween(ctx, userID, from, to)
	if err != nil {
		return Report{}, fmt.Errorf("list meals: %w", err)
	}

	tuples := make([]nutrition.MealNutrients, 0, len(meals))
	for _, m := range meals {
		tuples = append(tuples, nutrition.MealNutrients{
			CaloriesKcal: m.CaloriesKcal,
			CarbsG:       m.CarbsG,
			ProteinG:     m.ProteinG,
			FatG:         m.FatG,
		})
	}

	waterCount := 0
	waterLog, err := s.storage.GetWaterLog(ctx, userID, day)
	if err == nil {
		waterCount = waterLog.Count
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Report{}, fmt.Errorf("get water log: %w", err)
	}

	data := DailyReportData{
		Date: day,
		Targets: nutrition.Targets{
			CaloriesKcal: profile.CaloriesKcal,
			CarbsG:       profile.CarbsG,
			ProteinG:     profile.ProteinG,
			FatG:         profile.FatG,
		},
		Totals:      nutrition.SumMeals(tuples),
		Meals:       meals,
		WaterCount:  waterCount,
		WaterLiters: float64(waterCount*s.servingMl) / 1000,
	}

	report := Report{Date: day, Format: format}
	switch format {
	case FormatCSV:
		report.MimeType = "text/csv"
		report.Data, err = buildDailyCSV(data)
	default:
		report.MimeType = "application/pdf"
		report.Data, err = buildDailyPDF(data)
	}
	if err != nil {
		return Report{}, fmt.Errorf("render %s report: %w", format, err)
	}

	return report, nil
}

func dayWindow(date string) (string, time.Time, time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		now := time.Now()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start.Format("2006-01-02"), start, start.AddDate(0, 0, 1), nil
	}

	day, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return "", time.Time{}, time.Time{}, ErrInvalidDate
	}
	return day.Format("2006-01-02"), day, day.AddDate(0, 0, 1), nil
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := userctx.GetUserID(ctx); ok && strings.TrimSpace(userID) != "" {
		return userID
	}
	return "default"
}
