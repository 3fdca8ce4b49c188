package api

import (
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliosync/db"
	"portfoliosync/logger"
	"portfoliosync/models"
)

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   float64 `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapEntry struct {
	path       string
	changeFreq string
	priority   float64
}

var defaultSitemapEntries = []sitemapEntry{
	{"/", "weekly", 1.0},
	{"/#about", "monthly", 0.9},
	{"/#projects", "weekly", 0.9},
	{"/#skills", "monthly", 0.8},
	{"/#experience", "monthly", 0.8},
	{"/#education", "yearly", 0.7},
	{"/#leetcode", "weekly", 0.8},
	{"/#achievements", "monthly", 0.7},
	{"/#contact", "yearly", 0.6},
}

// BuildSitemap renders the section entries followed by one entry per
// repository that has a live homepage.
func BuildSitemap(baseURL string, repos []models.Repository, now time.Time) ([]byte, error) {
	lastMod := now.UTC().Format(time.RFC3339)
	set := urlSet{Xmlns: sitemapNamespace}

	for _, e := range defaultSitemapEntries {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        baseURL + e.path,
			LastMod:    lastMod,
			ChangeFreq: e.changeFreq,
			Priority:   e.priority,
		})
	}

	for _, r := range repos {
		if r.Homepage == "" {
			continue
		}
		priority := 0.6
		if r.Stars > 0 {
			priority = 0.8
		}
		entry := sitemapURL{
			Loc:        baseURL + "/projects/" + strings.ToLower(r.Name),
			ChangeFreq: "monthly",
			Priority:   priority,
		}
		if !r.UpdatedAt.IsZero() {
			entry.LastMod = r.UpdatedAt.UTC().Format(time.RFC3339)
		}
		set.URLs = append(set.URLs, entry)
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

// RobotsTxt is the robots.txt body for the site.
func RobotsTxt(baseURL string) string {
	return fmt.Sprintf(`User-agent: *
Allow: /

User-agent: Googlebot
Allow: /

User-agent: Bingbot
Allow: /

Sitemap: %[1]s/sitemap.xml
Sitemap: %[1]s/projects-sitemap.xml

# Block access to admin areas
Disallow: /admin/
Disallow: /api/
Disallow: /_next/
Disallow: /node_modules/

# Allow important files
Allow: /api/sitemap
Allow: /api/rss

# Cache directives
Crawl-delay: 1`, baseURL)
}

func (s *Server) handleSitemap(c *gin.Context) {
	body, err := BuildSitemap(s.cfg.SiteURL, s.sitemapRepos(c), s.now())
	if err != nil {
		logger.Error("Error generating sitemap", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("Failed to generate sitemap"))
		return
	}
	c.Header("Cache-Control", "public, s-maxage=86400, stale-while-revalidate=43200")
	c.Data(http.StatusOK, "application/xml", body)
}

// sitemapRepos returns the stored repositories, or none when they cannot be read.
func (s *Server) sitemapRepos(c *gin.Context) []models.Repository {
	if s.store == nil {
		return nil
	}
	var doc models.GitHubRepositoriesDoc
	err := s.store.FindOne(c.Request.Context(), models.CollectionGitHubRepositories, db.ByUsername(s.cfg.GitHubUsername), db.Latest(models.FieldFetchedAt), &doc)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			logger.Warn("Sitemap generated without project entries", zap.Error(err))
		}
		return nil
	}
	return doc.Repositories
}

func (s *Server) handleRobots(c *gin.Context) {
	c.Header("Cache-Control", "public, s-maxage=86400")
	c.String(http.StatusOK, RobotsTxt(s.cfg.SiteURL))
}
