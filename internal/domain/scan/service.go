package scan

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/evelynko/skinsight/internal/domain/prescribe"
	"github.com/evelynko/skinsight/internal/domain/routine"
	"github.com/evelynko/skinsight/internal/domain/shelf"
	"github.com/evelynko/skinsight/internal/domain/skin"
	"github.com/evelynko/skinsight/internal/domain/vision"
	apperrors "github.com/evelynko/skinsight/pkg/errors"
	"github.com/evelynko/skinsight/pkg/metrics"
	"github.com/evelynko/skinsight/pkg/util"
)

// Config drives capture limits and cache behavior.
type Config struct {
	MaxImageBytes int64
	CacheTTL      time.Duration
	SimilarK      int
}

// Analysis is the canonical per-capture result: the pixel estimate, the
// remote estimate when one arrived, and the blended record that becomes the
// user's biometrics.
type Analysis struct {
	ID        uuid.UUID          `json:"id"`
	UserID    int64              `json:"userId"`
	Local     skin.Metrics       `json:"local"`
	Remote    skin.Metrics       `json:"remote"`
	Final     skin.Metrics       `json:"final"`
	Summary   string             `json:"summary"`
	Offline   bool               `json:"offline"`
	Usage     metrics.TokenUsage `json:"usage"`
	ImageKey  string             `json:"imageKey,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Summaries shown when the remote collaborator is unavailable. The offline
// path is a feature, never an error surfaced to the user.
const (
	offlineAnalysisSummary = "Offline Analysis"
	offlineScanName        = "Offline Scan"
)

// Service orchestrates captures end-to-end and serves every profile-derived
// read: prescription, routine, shelf audits and buying decisions.
type Service struct {
	cfg        Config
	classifier Classifier
	profiles   ProfileRepository
	products   ShelfRepository
	cache      AnalysisStore
	storage    ObjectStorage
	embedder   Embedder
	decoder    FrameDecoder
	logger     *slog.Logger
}

// NewService constructs a Service.
func NewService(cfg Config, classifier Classifier, profiles ProfileRepository, products ShelfRepository, cache AnalysisStore, storage ObjectStorage, embedder Embedder, decoder FrameDecoder, logger *slog.Logger) *Service {
	return &Service{
		cfg:        cfg,
		classifier: classifier,
		profiles:   profiles,
		products:   products,
		cache:      cache,
		storage:    storage,
		embedder:   embedder,
		decoder:    decoder,
		logger:     logger.With("component", "scan.service"),
	}
}

// AnalyzeImage runs the full pipeline on a single uploaded image: decode,
// local extraction, remote classification with offline fallback, blend, and
// biometric persistence.
func (s *Service) AnalyzeImage(ctx context.Context, userID int64, image []byte) (Analysis, error) {
	if err := s.validateImage(userID, image); err != nil {
		return Analysis{}, err
	}
	frame, err := s.decoder.Decode(image)
	if err != nil {
		return Analysis{}, apperrors.Wrap("invalid_input", "unsupported image format", err)
	}
	local := vision.Analyze(frame)
	return s.finishAnalysis(ctx, userID, local, image)
}

// CompleteCapture finalizes a continuous-capture session: the averaged local
// metrics stand in for a single-frame extraction, and the last frame snapshot
// feeds the remote call and the archive.
func (s *Service) CompleteCapture(ctx context.Context, userID int64, local skin.Metrics, snapshot []byte) (Analysis, error) {
	if userID == 0 {
		return Analysis{}, apperrors.Wrap("unauthorized", "missing user", nil)
	}
	return s.finishAnalysis(ctx, userID, local, snapshot)
}

func (s *Service) finishAnalysis(ctx context.Context, userID int64, local skin.Metrics, image []byte) (Analysis, error) {
	a := Analysis{
		ID:        uuid.New(),
		UserID:    userID,
		Local:     local,
		CreatedAt: util.NowUTC(),
	}

	remote, err := s.classifier.Classify(ctx, image, local)
	if err != nil {
		s.logger.Warn("remote classification failed, serving local estimate", "error", err)
		a.Final = local
		a.Summary = offlineAnalysisSummary
		a.Offline = true
	} else {
		a.Remote = remote.Metrics
		a.Final = skin.Blend(local, remote.Metrics)
		a.Final.OverallScore = skin.ComputeOverall(a.Final)
		a.Summary = remote.Summary
		a.Usage = remote.Usage
	}

	if err := s.persistBiometrics(ctx, userID, a.Final); err != nil {
		return Analysis{}, err
	}
	if err := s.cache.Put(ctx, userID, a, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("analysis cache write failed", "error", err)
	}
	s.archiveImage(ctx, &a, image)

	s.logger.Info("analysis complete", "user_id", userID, "overall", a.Final.OverallScore, "offline", a.Offline)
	return a, nil
}

// persistBiometrics replaces the profile's metric record wholesale. A user
// who has never completed onboarding still gets a skeleton profile so the
// scan is not lost.
func (s *Service) persistBiometrics(ctx context.Context, userID int64, m skin.Metrics) error {
	profile, found, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return apperrors.Wrap("storage_error", "failed to load profile", err)
	}
	if !found {
		profile = skin.UserProfile{UserID: userID}
	}
	now := util.NowUTC()
	profile.Metrics = m
	profile.ScannedAt = now
	profile.UpdatedAt = now
	if err := s.profiles.Save(ctx, profile); err != nil {
		return apperrors.Wrap("storage_error", "failed to persist biometrics", err)
	}
	return nil
}

func (s *Service) archiveImage(ctx context.Context, a *Analysis, image []byte) {
	if s.storage == nil || len(image) == 0 {
		return
	}
	key := fmt.Sprintf("scans/%d/%s.jpg", a.UserID, a.ID.String())
	obj, err := s.storage.Put(ctx, key, image, http.DetectContentType(image))
	if err != nil {
		s.logger.Warn("image archive failed", "error", err)
		return
	}
	a.ImageKey = obj.Key
}

// LatestAnalysis returns the cached canonical result for the user.
func (s *Service) LatestAnalysis(ctx context.Context, userID int64) (Analysis, error) {
	a, found, err := s.cache.Get(ctx, userID)
	if err != nil {
		return Analysis{}, apperrors.Wrap("storage_error", "failed to read analysis cache", err)
	}
	if !found {
		return Analysis{}, apperrors.Wrap("not_found", "no analysis recorded yet", nil)
	}
	return a, nil
}

// ScanProduct extracts a product from a label photo and adds it to the shelf.
// Remote failure records a deterministic placeholder instead of erroring.
func (s *Service) ScanProduct(ctx context.Context, userID int64, image []byte) (skin.Product, error) {
	if err := s.validateImage(userID, image); err != nil {
		return skin.Product{}, err
	}

	now := util.NowUTC()
	var p skin.Product
	extracted, err := s.classifier.ExtractProduct(ctx, image)
	if err != nil {
		s.logger.Warn("product extraction failed, recording offline scan", "error", err)
		p = skin.Product{
			ID:        uuid.New(),
			OwnerID:   userID,
			Name:      offlineScanName,
			Type:      skin.TypeUnknown,
			BaseScore: skin.NeutralScore,
			ScannedAt: now,
		}
	} else {
		p = skin.Product{
			ID:          uuid.New(),
			OwnerID:     userID,
			Name:        orDefault(extracted.Name, offlineScanName),
			Brand:       strings.TrimSpace(extracted.Brand),
			Type:        skin.ParseProductType(extracted.Type),
			Ingredients: cleanIngredients(extracted.Ingredients),
			BaseScore:   baseScoreOrNeutral(extracted.BaseScore),
			Risks:       extracted.Risks,
			Benefits:    extracted.Benefits,
			ScannedAt:   now,
		}
	}

	embedding := s.embedIngredients(ctx, p.Ingredients)
	if err := s.products.Add(ctx, p, embedding); err != nil {
		return skin.Product{}, apperrors.Wrap("storage_error", "failed to persist product", err)
	}
	s.logger.Info("product scanned", "user_id", userID, "product", p.Name, "type", p.Type)
	return p, nil
}

// Products lists the user's shelf.
func (s *Service) Products(ctx context.Context, userID int64) ([]skin.Product, error) {
	if userID == 0 {
		return nil, apperrors.Wrap("unauthorized", "missing user", nil)
	}
	list, err := s.products.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to list products", err)
	}
	return list, nil
}

// Similar returns shelf products closest to the given one by ingredient
// embedding.
func (s *Service) Similar(ctx context.Context, userID int64, productID uuid.UUID) ([]skin.Product, error) {
	p, found, err := s.products.Get(ctx, userID, productID)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to load product", err)
	}
	if !found {
		return nil, apperrors.Wrap("not_found", "product not found", nil)
	}
	embedding := s.embedIngredients(ctx, p.Ingredients)
	if len(embedding) == 0 {
		return nil, nil
	}
	k := s.cfg.SimilarK
	if k <= 0 {
		k = 5
	}
	similar, err := s.products.SimilarByIngredients(ctx, userID, embedding, k)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "similarity search failed", err)
	}
	out := similar[:0]
	for _, candidate := range similar {
		if candidate.ID != p.ID {
			out = append(out, candidate)
		}
	}
	return out, nil
}

// SeedProfile creates an empty profile for a fresh account. Existing
// profiles are left untouched.
func (s *Service) SeedProfile(ctx context.Context, userID int64, name string) error {
	_, found, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return apperrors.Wrap("storage_error", "failed to load profile", err)
	}
	if found {
		return nil
	}
	now := util.NowUTC()
	profile := skin.UserProfile{UserID: userID, Name: name, UpdatedAt: now}
	if err := s.profiles.Save(ctx, profile); err != nil {
		return apperrors.Wrap("storage_error", "failed to seed profile", err)
	}
	return nil
}

// Profile returns the stored profile.
func (s *Service) Profile(ctx context.Context, userID int64) (skin.UserProfile, error) {
	profile, found, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return skin.UserProfile{}, apperrors.Wrap("storage_error", "failed to load profile", err)
	}
	if !found {
		return skin.UserProfile{}, apperrors.Wrap("not_found", "profile not found", nil)
	}
	return profile, nil
}

// UpdatePreferences replaces the preference block and returns the updated
// profile. Goals are trimmed to the ordered two-slot cap.
func (s *Service) UpdatePreferences(ctx context.Context, userID int64, prefs skin.Preferences) (skin.UserProfile, error) {
	profile, found, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return skin.UserProfile{}, apperrors.Wrap("storage_error", "failed to load profile", err)
	}
	if !found {
		profile = skin.UserProfile{UserID: userID}
	}
	prefs.Goals = skin.NormalizeGoals(prefs.Goals)
	profile.Preferences = prefs
	profile.UpdatedAt = util.NowUTC()
	if err := s.profiles.Save(ctx, profile); err != nil {
		return skin.UserProfile{}, apperrors.Wrap("storage_error", "failed to persist preferences", err)
	}
	return profile, nil
}

// Prescription derives the current ingredient prescription.
func (s *Service) Prescription(ctx context.Context, userID int64) (prescribe.Prescription, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return prescribe.Prescription{}, err
	}
	return prescribe.Build(profile.Metrics, profile.Preferences), nil
}

// RoutinePlan derives the AM/PM routine from the current prescription.
func (s *Service) RoutinePlan(ctx context.Context, userID int64) (routine.Plan, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return routine.Plan{}, err
	}
	rx := prescribe.Build(profile.Metrics, profile.Preferences)
	return routine.Allocate(rx, profile.Metrics), nil
}

// Audit scores one shelf product against the current profile.
func (s *Service) Audit(ctx context.Context, userID int64, productID uuid.UUID) (shelf.Audit, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return shelf.Audit{}, err
	}
	p, found, err := s.products.Get(ctx, userID, productID)
	if err != nil {
		return shelf.Audit{}, apperrors.Wrap("storage_error", "failed to load product", err)
	}
	if !found {
		return shelf.Audit{}, apperrors.Wrap("not_found", "product not found", nil)
	}
	rx := prescribe.Build(profile.Metrics, profile.Preferences)
	return shelf.AuditProduct(p, profile, rx), nil
}

// ShelfHealth aggregates the whole shelf into one report.
func (s *Service) ShelfHealth(ctx context.Context, userID int64) (shelf.Health, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return shelf.Health{}, err
	}
	list, err := s.products.List(ctx, userID)
	if err != nil {
		return shelf.Health{}, apperrors.Wrap("storage_error", "failed to list products", err)
	}
	rx := prescribe.Build(profile.Metrics, profile.Preferences)
	return shelf.AnalyzeShelfHealth(list, profile, rx), nil
}

// CandidateProduct is a prospective purchase described by the client; it is
// not on the shelf yet.
type CandidateProduct struct {
	Name        string   `json:"name"`
	Brand       string   `json:"brand"`
	Type        string   `json:"type"`
	Ingredients []string `json:"ingredients"`
	BaseScore   int      `json:"baseScore"`
}

// Decide weighs a candidate purchase against the profile and the shelf.
func (s *Service) Decide(ctx context.Context, userID int64, candidate CandidateProduct) (shelf.Decision, error) {
	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return shelf.Decision{}, err
	}
	if strings.TrimSpace(candidate.Name) == "" {
		return shelf.Decision{}, apperrors.Wrap("invalid_input", "candidate name cannot be empty", nil)
	}
	list, err := s.products.List(ctx, userID)
	if err != nil {
		return shelf.Decision{}, apperrors.Wrap("storage_error", "failed to list products", err)
	}
	p := skin.Product{
		ID:          uuid.New(),
		OwnerID:     userID,
		Name:        candidate.Name,
		Brand:       candidate.Brand,
		Type:        skin.ParseProductType(candidate.Type),
		Ingredients: cleanIngredients(candidate.Ingredients),
		BaseScore:   baseScoreOrNeutral(candidate.BaseScore),
	}
	rx := prescribe.Build(profile.Metrics, profile.Preferences)
	return shelf.BuyingDecision(p, list, profile, rx), nil
}

func (s *Service) validateImage(userID int64, image []byte) error {
	if userID == 0 {
		return apperrors.Wrap("unauthorized", "missing user", nil)
	}
	if len(image) == 0 {
		return apperrors.Wrap("invalid_input", "image cannot be empty", nil)
	}
	if s.cfg.MaxImageBytes > 0 && int64(len(image)) > s.cfg.MaxImageBytes {
		return apperrors.Wrap("invalid_input", "image exceeds maximum allowed size", nil)
	}
	return nil
}

func (s *Service) embedIngredients(ctx context.Context, ingredients []string) []float32 {
	if s.embedder == nil || len(ingredients) == 0 {
		return nil
	}
	embedding, err := s.embedder.Embed(ctx, ingredients)
	if err != nil {
		s.logger.Warn("ingredient embedding failed", "error", err)
		return nil
	}
	return embedding
}

func cleanIngredients(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, ing := range raw {
		if trimmed := strings.TrimSpace(ing); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func orDefault(val, fallback string) string {
	if trimmed := strings.TrimSpace(val); trimmed != "" {
		return trimmed
	}
	return fallback
}

// baseScoreOrNeutral treats zero and out-of-range values as missing data.
func baseScoreOrNeutral(score int) int {
	if score <= 0 || score > 100 {
		return skin.NeutralScore
	}
	return score
}
