package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfoliosync/db"
	"portfoliosync/db/memstore"
	"portfoliosync/models"
)

func TestBuildSitemap(t *testing.T) {
	repos := []models.Repository{
		{Name: "Live-Demo", Homepage: "https://demo.example.dev", Stars: 4, UpdatedAt: now.Add(-time.Hour)},
		{Name: "no-homepage", Stars: 9},
		{Name: "Unstarred", Homepage: "https://u.example.dev"},
	}

	out, err := BuildSitemap("https://example.dev", repos, now)
	require.NoError(t, err)
	xml := string(out)

	assert.True(t, strings.HasPrefix(xml, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, xml, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Equal(t, 9+2, strings.Count(xml, "<url>"))
	assert.Contains(t, xml, "<loc>https://example.dev/#contact</loc>")
	assert.Contains(t, xml, "<loc>https://example.dev/projects/live-demo</loc>")
	assert.Contains(t, xml, "<lastmod>2025-04-02T14:04:05Z</lastmod>")
	assert.Contains(t, xml, "<priority>0.6</priority>")
	assert.NotContains(t, xml, "no-homepage")
}

func TestSitemapHandler(t *testing.T) {
	store := memstore.New()
	require.NoError(t, store.Upsert(context.Background(), models.CollectionGitHubRepositories, db.ByUsername("octocat"), models.GitHubRepositoriesDoc{
		Username:     "octocat",
		Repositories: []models.Repository{{Name: "site", Homepage: "https://site.example.dev"}},
		FetchedAt:    now,
	}))

	rec := do(t, newTestServer(testConfig(), store, nil), http.MethodGet, "/sitemap.xml", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, s-maxage=86400, stale-while-revalidate=43200", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "https://example.dev/projects/site")
}

func TestSitemapHandlerWithoutStore(t *testing.T) {
	rec := do(t, newTestServer(testConfig(), nil, nil), http.MethodGet, "/sitemap.xml", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 9, strings.Count(rec.Body.String(), "<url>"))
}

func TestRobots(t *testing.T) {
	rec := do(t, newTestServer(testConfig(), nil, nil), http.MethodGet, "/robots.txt", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t, "public, s-maxage=86400", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "Sitemap: https://example.dev/sitemap.xml")
	assert.True(t, strings.HasSuffix(rec.Body.String(), "Crawl-delay: 1"))
}
