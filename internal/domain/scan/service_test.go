package scan

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/evelynko/skinsight/pkg/errors"

	"github.com/evelynko/skinsight/internal/domain/skin"
	"github.com/evelynko/skinsight/internal/domain/vision"
)

type fakeClassifier struct {
	estimate  RemoteEstimate
	extracted ExtractedProduct
	err       error
}

func (f *fakeClassifier) Classify(context.Context, []byte, skin.Metrics) (RemoteEstimate, error) {
	return f.estimate, f.err
}

func (f *fakeClassifier) ExtractProduct(context.Context, []byte) (ExtractedProduct, error) {
	return f.extracted, f.err
}

type fakeProfiles struct {
	records map[int64]skin.UserProfile
}

func (f *fakeProfiles) Get(_ context.Context, userID int64) (skin.UserProfile, bool, error) {
	p, ok := f.records[userID]
	return p, ok, nil
}

func (f *fakeProfiles) Save(_ context.Context, p skin.UserProfile) error {
	f.records[p.UserID] = p
	return nil
}

type fakeShelf struct {
	products   []skin.Product
	embeddings map[uuid.UUID][]float32
}

func (f *fakeShelf) Add(_ context.Context, p skin.Product, embedding []float32) error {
	f.products = append(f.products, p)
	if f.embeddings == nil {
		f.embeddings = map[uuid.UUID][]float32{}
	}
	f.embeddings[p.ID] = embedding
	return nil
}

func (f *fakeShelf) Get(_ context.Context, ownerID int64, id uuid.UUID) (skin.Product, bool, error) {
	for _, p := range f.products {
		if p.OwnerID == ownerID && p.ID == id {
			return p, true, nil
		}
	}
	return skin.Product{}, false, nil
}

func (f *fakeShelf) List(_ context.Context, ownerID int64) ([]skin.Product, error) {
	var out []skin.Product
	for _, p := range f.products {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeShelf) SimilarByIngredients(_ context.Context, ownerID int64, _ []float32, k int) ([]skin.Product, error) {
	out, _ := f.List(context.Background(), ownerID)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

type fakeCache struct {
	records map[int64]Analysis
}

func (f *fakeCache) Put(_ context.Context, userID int64, a Analysis, _ time.Duration) error {
	f.records[userID] = a
	return nil
}

func (f *fakeCache) Get(_ context.Context, userID int64) (Analysis, bool, error) {
	a, ok := f.records[userID]
	return a, ok, nil
}

type fakeStorage struct {
	keys []string
}

func (f *fakeStorage) Put(_ context.Context, key string, data []byte, mime string) (StoredObject, error) {
	f.keys = append(f.keys, key)
	return StoredObject{Key: key, Size: int64(len(data)), MimeType: mime}, nil
}

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, ingredients []string) ([]float32, error) {
	return make([]float32, 8), nil
}

type fakeDecoder struct{}

func (fakeDecoder) Decode([]byte) (vision.Frame, error) {
	w, h := 64, 64
	pix := make([]byte, w*h*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = 182, 121, 92, 255
	}
	return vision.Frame{Pix: pix, Width: w, Height: h}, nil
}

type fixture struct {
	svc        *Service
	classifier *fakeClassifier
	profiles   *fakeProfiles
	shelf      *fakeShelf
	cache      *fakeCache
	storage    *fakeStorage
}

func newFixture() *fixture {
	f := &fixture{
		classifier: &fakeClassifier{},
		profiles:   &fakeProfiles{records: map[int64]skin.UserProfile{}},
		shelf:      &fakeShelf{},
		cache:      &fakeCache{records: map[int64]Analysis{}},
		storage:    &fakeStorage{},
	}
	logger := slog.New(slog.NewTextHandler(testWriter{}, nil))
	f.svc = NewService(
		Config{MaxImageBytes: 1 << 20, CacheTTL: time.Minute, SimilarK: 3},
		f.classifier, f.profiles, f.shelf, f.cache, f.storage,
		fakeEmbedder{}, fakeDecoder{}, logger,
	)
	return f
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func remoteAll(v int) skin.Metrics {
	var m skin.Metrics
	for _, c := range skin.ConcernChannels {
		m.SetChannel(c, v)
	}
	m.OverallScore = v
	return m
}

func TestAnalyzeImageBlendsRemoteEstimate(t *testing.T) {
	f := newFixture()
	f.classifier.estimate = RemoteEstimate{Metrics: remoteAll(90), Summary: "Radiant and calm"}

	a, err := f.svc.AnalyzeImage(context.Background(), 7, []byte("jpeg-bytes"))
	require.NoError(t, err)
	require.False(t, a.Offline)
	require.Equal(t, "Radiant and calm", a.Summary)

	// Each channel lands at round(0.2·local + 0.8·90).
	for _, c := range skin.ConcernChannels {
		want := skin.Blend(a.Local, remoteAll(90)).Channel(c)
		require.Equal(t, want, a.Final.Channel(c), "channel %s", c)
	}
	require.Equal(t, skin.ComputeOverall(a.Final), a.Final.OverallScore)

	// Biometrics replaced wholesale, analysis cached, image archived.
	profile := f.profiles.records[7]
	require.Equal(t, a.Final, profile.Metrics)
	require.False(t, profile.ScannedAt.IsZero())
	cached, ok := f.cache.records[7]
	require.True(t, ok)
	require.Equal(t, a.ID, cached.ID)
	require.Len(t, f.storage.keys, 1)
	require.Contains(t, f.storage.keys[0], "scans/7/")
}

func TestAnalyzeImageOfflineFallback(t *testing.T) {
	f := newFixture()
	f.classifier.err = errors.New("upstream 503")

	a, err := f.svc.AnalyzeImage(context.Background(), 7, []byte("jpeg-bytes"))
	require.NoError(t, err, "remote failure must never surface")
	require.True(t, a.Offline)
	require.Equal(t, "Offline Analysis", a.Summary)
	require.Equal(t, a.Local, a.Final)

	// Local estimate still persists.
	require.Equal(t, a.Final, f.profiles.records[7].Metrics)
}

func TestAnalyzeImageValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.AnalyzeImage(context.Background(), 0, []byte("x"))
	require.True(t, apperrors.IsCode(err, "unauthorized"))

	_, err = f.svc.AnalyzeImage(context.Background(), 7, nil)
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = f.svc.AnalyzeImage(context.Background(), 7, make([]byte, 2<<20))
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestScanProductOfflineFallback(t *testing.T) {
	f := newFixture()
	f.classifier.err = errors.New("upstream 503")

	p, err := f.svc.ScanProduct(context.Background(), 7, []byte("label"))
	require.NoError(t, err)
	require.Equal(t, "Offline Scan", p.Name)
	require.Equal(t, skin.TypeUnknown, p.Type)
	require.Equal(t, skin.NeutralScore, p.BaseScore)
	require.Len(t, f.shelf.products, 1)
}

func TestScanProductCoercion(t *testing.T) {
	f := newFixture()
	f.classifier.extracted = ExtractedProduct{
		Name:        "  Glow Serum  ",
		Brand:       "Labmuffin",
		Type:        "gel-cream???",
		Ingredients: []string{" Niacinamide ", "", "Water"},
		BaseScore:   0,
	}

	p, err := f.svc.ScanProduct(context.Background(), 7, []byte("label"))
	require.NoError(t, err)
	require.Equal(t, "Glow Serum", p.Name)
	require.Equal(t, skin.TypeUnknown, p.Type)
	require.Equal(t, skin.NeutralScore, p.BaseScore)
	require.Equal(t, []string{"Niacinamide", "Water"}, p.Ingredients)
	require.NotEmpty(t, f.shelf.embeddings[p.ID])
}

func TestUpdatePreferencesCapsGoals(t *testing.T) {
	f := newFixture()
	prefs := skin.Preferences{
		Goals: []string{skin.GoalClearAcne, skin.GoalClearAcne, skin.GoalEvenTone, skin.GoalHydration},
	}
	profile, err := f.svc.UpdatePreferences(context.Background(), 7, prefs)
	require.NoError(t, err)
	require.Equal(t, []string{skin.GoalClearAcne, skin.GoalEvenTone}, profile.Preferences.Goals)
}

func TestDerivedReadsRequireProfile(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Prescription(context.Background(), 99)
	require.True(t, apperrors.IsCode(err, "not_found"))

	_, err = f.svc.RoutinePlan(context.Background(), 99)
	require.True(t, apperrors.IsCode(err, "not_found"))

	_, err = f.svc.LatestAnalysis(context.Background(), 99)
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestPrescriptionAndRoutineFromStoredProfile(t *testing.T) {
	f := newFixture()
	metrics := remoteAll(75)
	metrics.AcneActive = 40
	f.profiles.records[7] = skin.UserProfile{UserID: 7, Metrics: metrics}

	rx, err := f.svc.Prescription(context.Background(), 7)
	require.NoError(t, err)
	require.NotEmpty(t, rx.Concerns)
	require.Equal(t, skin.ChannelAcneActive, rx.Concerns[0].Channel)

	plan, err := f.svc.RoutinePlan(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, plan.Slots, 9)
}

func TestSimilarExcludesSelf(t *testing.T) {
	f := newFixture()
	f.profiles.records[7] = skin.UserProfile{UserID: 7, Metrics: remoteAll(75)}
	f.classifier.extracted = ExtractedProduct{Name: "Serum A", Type: "SERUM", Ingredients: []string{"Niacinamide"}, BaseScore: 80}
	a, err := f.svc.ScanProduct(context.Background(), 7, []byte("label"))
	require.NoError(t, err)
	f.classifier.extracted = ExtractedProduct{Name: "Serum B", Type: "SERUM", Ingredients: []string{"Niacinamide", "Zinc"}, BaseScore: 82}
	_, err = f.svc.ScanProduct(context.Background(), 7, []byte("label"))
	require.NoError(t, err)

	similar, err := f.svc.Similar(context.Background(), 7, a.ID)
	require.NoError(t, err)
	for _, p := range similar {
		require.NotEqual(t, a.ID, p.ID)
	}
	require.Len(t, similar, 1)
}

func TestDecideUsesShelfAndProfile(t *testing.T) {
	f := newFixture()
	f.profiles.records[7] = skin.UserProfile{UserID: 7, Metrics: remoteAll(75)}

	d, err := f.svc.Decide(context.Background(), 7, CandidateProduct{
		Name: "First Serum", Type: "SERUM", Ingredients: []string{"Niacinamide"}, BaseScore: 80,
	})
	require.NoError(t, err)
	require.Equal(t, "BUY", d.Verdict)

	_, err = f.svc.Decide(context.Background(), 7, CandidateProduct{Name: "  "})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}
