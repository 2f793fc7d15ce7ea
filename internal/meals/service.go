package meals

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dkotl/macrolog/internal/ai"
	"github.com/dkotl/macrolog/internal/blob"
	"github.com/dkotl/macrolog/internal/config"
	"github.com/dkotl/macrolog/internal/nutrition"
	"github.com/dkotl/macrolog/internal/realtime"
	"github.com/dkotl/macrolog/internal/storage"
	"github.com/dkotl/macrolog/internal/userctx"
	"github.com/google/uuid"
)

var (
	ErrEmptyName         = errors.New("meal name cannot be empty")
	ErrNegativeValue     = errors.New("nutrition values cannot be negative")
	ErrInvalidDate       = errors.New("date must be formatted YYYY-MM-DD")
	ErrNotFound          = errors.New("meal not found")
	ErrEmptyAnalyzeInput = errors.New("analysis needs a text description or an image")
	ErrInvalidImage      = errors.New("image_base64 is not valid base64 data")
	ErrImageTooLarge     = errors.New("image exceeds the upload size limit")
	ErrUnsupportedImage  = errors.New("image type is not allowed")
	ErrAnalysisFailed    = errors.New("meal analysis failed")
)

// Service owns the meal log and the analyze endpoints that feed it.
type Service struct {
	storage  storage.Store
	provider ai.Provider
	hub      *realtime.Hub
	photos   blob.Store

	uploadMaxBytes  int64
	allowedMime     map[string]bool
	presignTTL      int
	publicBaseURL   string // S3 public base URL (if prefer_public_url mode)
	preferPublicURL bool   // if true, use public URLs instead of presigned
}

func NewService(st storage.Store, provider ai.Provider, cfg *config.Config) *Service {
	allowed := make(map[string]bool)
	for _, mime := range strings.Split(cfg.UploadAllowedMime, ",") {
		mime = strings.ToLower(strings.TrimSpace(mime))
		if mime != "" {
			allowed[mime] = true
		}
	}

	presignTTL := cfg.Blob.S3.PresignTTLSeconds
	if presignTTL <= 0 {
		presignTTL = 900
	}

	return &Service{
		storage:         st,
		provider:        provider,
		uploadMaxBytes:  int64(cfg.UploadMaxMB) * 1024 * 1024,
		allowedMime:     allowed,
		presignTTL:      presignTTL,
		publicBaseURL:   cfg.Blob.S3.PublicBaseURL,
		preferPublicURL: cfg.Blob.S3.PreferPublicURL,
	}
}

// WithHub attaches the realtime hub. Mutations publish a fresh snapshot to
// every subscriber of the affected user.
func (s *Service) WithHub(hub *realtime.Hub) *Service {
	s.hub = hub
	return s
}

// WithPhotoStore attaches the blob store that keeps analyzed meal photos.
func (s *Service) WithPhotoStore(store blob.Store) *Service {
	s.photos = store
	return s
}

// Create appends a meal to the log. The store assigns ID and CreatedAt.
func (s *Service) Create(ctx context.Context, req MealRequest) (*MealDTO, error) {
	userID := userIDFromContext(ctx)

	if err := validateMeal(req); err != nil {
		return nil, err
	}

	created, err := s.storage.CreateMeal(ctx, storage.Meal{
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		CaloriesKcal: req.CaloriesKcal,
		CarbsG:       req.CarbsG,
		ProteinG:     req.ProteinG,
		FatG:         req.FatG,
	})
	if err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}

	s.publish(ctx, userID)

	dto := toDTO(created)
	return &dto, nil
}

// Get returns one meal of the user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MealDTO, error) {
	userID := userIDFromContext(ctx)

	meal, err := s.storage.GetMeal(ctx, userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get meal: %w", err)
	}

	dto := toDTO(meal)
	return &dto, nil
}

// ListDay returns the meals of one local calendar day together with their
// consumed totals. An empty date means today.
func (s *Service) ListDay(ctx context.Context, date string) (*MealsResponse, error) {
	userID := userIDFromContext(ctx)

	day, from, to, err := DayBounds(date)
	if err != nil {
		return nil, err
	}

	list, err := s.storage.ListMealsBetween(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}

	dtos := make([]MealDTO, 0, len(list))
	tuples := make([]nutrition.MealNutrients, 0, len(list))
	for _, m := range list {
		dtos = append(dtos, toDTO(m))
		tuples = append(tuples, nutrition.MealNutrients{
			CaloriesKcal: m.CaloriesKcal,
			CarbsG:       m.CarbsG,
			ProteinG:     m.ProteinG,
			FatG:         m.FatG,
		})
	}

	return &MealsResponse{
		Date:   day,
		Meals:  dtos,
		Totals: nutrition.SumMeals(tuples),
	}, nil
}

// Update replaces the five content fields of an existing meal. CreatedAt
// keeps the original log time.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req MealRequest) (*MealDTO, error) {
	userID := userIDFromContext(ctx)

	if err := validateMeal(req); err != nil {
		return nil, err
	}

	updated, err := s.storage.UpdateMeal(ctx, storage.Meal{
		ID:           id,
		UserID:       userID,
		Name:         strings.TrimSpace(req.Name),
		CaloriesKcal: req.CaloriesKcal,
		CarbsG:       req.CarbsG,
		ProteinG:     req.ProteinG,
		FatG:         req.FatG,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update meal: %w", err)
	}

	s.publish(ctx, userID)

	dto := toDTO(updated)
	return &dto, nil
}

// Delete removes one meal of the user.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	userID := userIDFromContext(ctx)

	if err := s.storage.DeleteMeal(ctx, userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete meal: %w", err)
	}

	s.publish(ctx, userID)
	return nil
}

// AnalyzeText asks the provider for an estimate of a described meal. The
// estimate is returned for confirmation and is never written to the log.
func (s *Service) AnalyzeText(ctx context.Context, req AnalyzeTextRequest) (*AnalyzeResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyAnalyzeInput
	}

	estimate, err := s.provider.AnalyzeMeal(ctx, ai.AnalyzeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	return &AnalyzeResponse{Estimate: toEstimateDTO(estimate)}, nil
}

// AnalyzePhoto stores the uploaded image and asks the provider for an
// estimate of the pictured meal. The estimate is returned for confirmation;
// only the photo object is persisted.
func (s *Service) AnalyzePhoto(ctx context.Context, req AnalyzePhotoRequest) (*AnalyzeResponse, error) {
	userID := userIDFromContext(ctx)

	data, mime, err := s.decodeImage(req)
	if err != nil {
		return nil, err
	}

	photoURL := s.storePhoto(ctx, userID, data, mime)

	estimate, err := s.provider.AnalyzeMeal(ctx, ai.AnalyzeRequest{
		Text:      strings.TrimSpace(req.Text),
		ImageData: data,
		ImageMIME: mime,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	return &AnalyzeResponse{
		Estimate: toEstimateDTO(estimate),
		PhotoURL: photoURL,
	}, nil
}

// decodeImage validates and decodes the upload: base64 (data URL tolerated),
// size capped before and after decoding, MIME sniffed from the bytes with
// the client hint as fallback for formats the sniffer does not know (HEIC).
func (s *Service) decodeImage(req AnalyzePhotoRequest) ([]byte, string, error) {
	raw := strings.TrimSpace(req.ImageBase64)
	if raw == "" {
		return nil, "", ErrEmptyAnalyzeInput
	}
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ";base64,"); i >= 0 {
			raw = raw[i+len(";base64,"):]
		}
	}

	if int64(base64.StdEncoding.DecodedLen(len(raw))) > s.uploadMaxBytes {
		return nil, "", ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", ErrInvalidImage
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyAnalyzeInput
	}
	if int64(len(data)) > s.uploadMaxBytes {
		return nil, "", ErrImageTooLarge
	}

	mime := http.DetectContentType(data)
	if mime == "application/octet-stream" && req.MimeType != "" {
		mime = strings.ToLower(strings.TrimSpace(req.MimeType))
	}
	if !s.allowedMime[mime] {
		return nil, "", ErrUnsupportedImage
	}

	return data, mime, nil
}

// storePhoto keeps the image under photos/<userID>/<uuid>.<ext> and returns
// a URL for it. Photo storage is best-effort: a blob failure downgrades the
// response to an estimate without a photo link.
func (s *Service) storePhoto(ctx context.Context, userID string, data []byte, mime string) string {
	if s.photos == nil {
		return ""
	}

	key := "photos/" + userID + "/" + uuid.New().String() + extensionForMIME(mime)
	if _, err := s.photos.PutObject(ctx, key, data, mime); err != nil {
		log.Printf("WARN meals: store photo %s: %v", key, err)
		return ""
	}

	if s.preferPublicURL && s.publicBaseURL != "" {
		return strings.TrimSuffix(s.publicBaseURL, "/") + "/" + key
	}

	if url, err := s.photos.PresignGet(ctx, key, s.presignTTL); err == nil {
		return url
	}
	// Backends without presigning are served through the API; the route
	// prepends the photos/ prefix back onto the wildcard.
	return "/v1/photos/" + strings.TrimPrefix(key, "photos/")
}

func (s *Service) publish(ctx context.Context, userID string) {
	if s.hub != nil {
		s.hub.Publish(ctx, userID)
	}
}

// DayBounds resolves a YYYY-MM-DD date to its local-time half-open window
// [00:00, next 00:00). An empty date means today.
func DayBounds(date string) (string, time.Time, time.Time, error) {
	if strings.TrimSpace(date) == "" {
		now := time.Now()
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return start.Format("2006-01-02"), start, start.AddDate(0, 0, 1), nil
	}

	day, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), time.Local)
	if err != nil {
		return "", time.Time{}, time.Time{}, ErrInvalidDate
	}
	return day.Format("2006-01-02"), day, day.AddDate(0, 0, 1), nil
}

func validateMeal(req MealRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return ErrEmptyName
	}
	if req.CaloriesKcal < 0 || req.CarbsG < 0 || req.ProteinG < 0 || req.FatG < 0 {
		return ErrNegativeValue
	}
	return nil
}

func extensionForMIME(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".bin"
	}
}

func toDTO(m storage.Meal) MealDTO {
	return MealDTO{
		ID:           m.ID,
		Name:         m.Name,
		CaloriesKcal: m.CaloriesKcal,
		CarbsG:       m.CarbsG,
		ProteinG:     m.ProteinG,
		FatG:         m.FatG,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toEstimateDTO(e ai.MealEstimate) EstimateDTO {
	return EstimateDTO{
		Name:         e.Name,
		CaloriesKcal: e.CaloriesKcal,
		CarbsG:       e.CarbsG,
		ProteinG:     e.ProteinG,
		FatG:         e.FatG,
	}
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := userctx.GetUserID(ctx); ok && strings.TrimSpace(userID) != "" {
		return userID
	}
	return "default"
}
