package achievements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"portfoliosync/apperrors"
	"portfoliosync/db"
	"portfoliosync/db/memstore"
	"portfoliosync/llm"
	"portfoliosync/logger"
	"portfoliosync/models"
)

func init() {
	logger.UseNop()
}

// MockGenerator is a mock implementation of the Generator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateAchievements(ctx context.Context, in llm.Input) (*llm.Achievements, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Achievements), args.Error(1)
}

func (m *MockGenerator) GenerateBio(ctx context.Context, in llm.Input) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

var fetchedAt = time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)

func seed(t *testing.T, store *memstore.Store, solved int) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, models.CollectionGitHubRepositories, db.ByUsername("octocat"), models.GitHubRepositoriesDoc{
		Username:     "octocat",
		Repositories: []models.Repository{{Name: "a", Language: "Go"}, {Name: "b", Language: "Go"}},
		TopLanguages: []models.LanguageCount{{Language: "Go", Count: 2}},
		FetchedAt:    fetchedAt,
	}))
	require.NoError(t, store.Upsert(ctx, models.CollectionGitHubContributions, db.ByUsername("octocat"), models.GitHubContributionsDoc{
		Username: "octocat", TotalContributions: 400, FetchedAt: fetchedAt,
	}))
	require.NoError(t, store.Upsert(ctx, models.CollectionGitHubStats, db.ByUsername("octocat"), models.GitHubStatsDoc{
		Username: "octocat", Followers: 10, FetchedAt: fetchedAt,
	}))
	require.NoError(t, store.Upsert(ctx, models.CollectionLeetCodeStats, db.ByUsername("lc-user"), models.LeetCodeStats{
		Username: "lc-user", TotalSolved: solved, FetchedAt: fetchedAt,
	}))
}

func newGenerator() *MockGenerator {
	gen := new(MockGenerator)
	gen.On("GenerateAchievements", mock.Anything, mock.Anything).
		Return(&llm.Achievements{Summary: "Summary", BulletPoints: []string{"one", "two"}}, nil)
	gen.On("GenerateBio", mock.Anything, mock.Anything).Return("Bio text", nil)
	return gen
}

func TestGenerateCachesOnUnchangedDigest(t *testing.T) {
	store := memstore.New()
	seed(t, store, 200)
	gen := newGenerator()
	s := NewSynthesizer(store, gen, "octocat", "lc-user")
	s.now = func() time.Time { return fetchedAt }

	first, err := s.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Summary", first.Summary)
	assert.Equal(t, "Bio text", first.Bio)
	assert.Len(t, first.SourceHash, 64)

	second, err := s.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.SourceHash, second.SourceHash)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.BulletPoints, second.BulletPoints)

	gen.AssertNumberOfCalls(t, "GenerateAchievements", 1)
	gen.AssertNumberOfCalls(t, "GenerateBio", 1)
	assert.Equal(t, 1, store.Count(models.CollectionAchievements))
}

func TestGenerateRegeneratesOnChangedDigest(t *testing.T) {
	store := memstore.New()
	seed(t, store, 200)
	gen := newGenerator()
	s := NewSynthesizer(store, gen, "octocat", "lc-user")

	first, err := s.Generate(context.Background())
	require.NoError(t, err)

	seed(t, store, 201)
	second, err := s.Generate(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.SourceHash, second.SourceHash)
	gen.AssertNumberOfCalls(t, "GenerateAchievements", 2)
}

func TestGeneratePassesSourceDataToGenerator(t *testing.T) {
	store := memstore.New()
	seed(t, store, 321)
	gen := newGenerator()

	_, err := NewSynthesizer(store, gen, "octocat", "lc-user").Generate(context.Background())
	require.NoError(t, err)

	in := gen.Calls[0].Arguments.Get(1).(llm.Input)
	assert.Len(t, in.Repositories, 2)
	assert.Equal(t, 400, in.TotalContributions)
	assert.Equal(t, 321, in.LeetCode.TotalSolved)
	assert.Equal(t, 10, in.Stats.Followers)
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name         string
		github       string
		leetcode     string
		seeded       bool
		setupMocks   func(*MockGenerator)
		expectedKind apperrors.Kind
		contains     string
	}{
		{
			name:         "missing github username",
			leetcode:     "lc-user",
			expectedKind: apperrors.KindConfig,
			contains:     "GITHUB_USERNAME",
		},
		{
			name:         "missing leetcode username",
			github:       "octocat",
			expectedKind: apperrors.KindConfig,
			contains:     "LEETCODE_USERNAME",
		},
		{
			name:         "missing source documents",
			github:       "octocat",
			leetcode:     "lc-user",
			expectedKind: apperrors.KindShape,
			contains:     "run fetch-github and fetch-leetcode first",
		},
		{
			name:     "generator failure",
			github:   "octocat",
			leetcode: "lc-user",
			seeded:   true,
			setupMocks: func(m *MockGenerator) {
				m.On("GenerateAchievements", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
				m.On("GenerateBio", mock.Anything, mock.Anything).Return("bio", nil).Maybe()
			},
			expectedKind: apperrors.KindUpstream,
			contains:     "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			if tt.seeded {
				seed(t, store, 10)
			}
			gen := new(MockGenerator)
			if tt.setupMocks != nil {
				tt.setupMocks(gen)
			}

			got, err := NewSynthesizer(store, gen, tt.github, tt.leetcode).Generate(context.Background())
			assert.Nil(t, got)
			require.Error(t, err)
			assert.Equal(t, tt.expectedKind, apperrors.KindOf(err))
			assert.Contains(t, err.Error(), tt.contains)
			assert.Equal(t, 0, store.Count(models.CollectionAchievements))
		})
	}
}

func TestDigestHash(t *testing.T) {
	a := Digest{RepoCount: 2, TotalContributions: 5, LeetCodeSolved: 7}
	b := Digest{RepoCount: 2, TotalContributions: 5, LeetCodeSolved: 7, TopLanguages: []models.LanguageCount{}}

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.TopLanguages = []models.LanguageCount{{Language: "Go", Count: 1}}
	hc, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}
