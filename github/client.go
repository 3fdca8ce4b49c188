package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"portfoliosync/apperrors"
	"portfoliosync/logger"
	"portfoliosync/models"
)

const (
	// DefaultBaseURL is the GitHub REST and GraphQL API root.
	DefaultBaseURL = "https://api.github.com"
	userAgent      = "Portfolio-Auto-Updater"
	perPage        = 100
	topLanguageMax = 10
	// rateLimitWarnThreshold is the remaining request count below which a warning is logged.
	rateLimitWarnThreshold = 10
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrGraphQL          = errors.New("graphql error")
)

// RateLimit represents GitHub's rate limit information
type RateLimit struct {
	Limit     int
	Remaining int
	Reset     time.Time
}

// Client represents a GitHub API client
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    *url.URL
}

type repoResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Description     string    `json:"description"`
	HTMLURL         string    `json:"html_url"`
	Homepage        string    `json:"homepage"`
	Language        string    `json:"language"`
	Fork            bool      `json:"fork"`
	Private         bool      `json:"private"`
	StargazersCount int       `json:"stargazers_count"`
	ForksCount      int       `json:"forks_count"`
	WatchersCount   int       `json:"watchers_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	Topics          []string  `json:"topics"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
	Size            int       `json:"size"`
	Owner           struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type userResponse struct {
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	PublicRepos int       `json:"public_repos"`
	PublicGists int       `json:"public_gists"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Bio         string    `json:"bio"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Blog        string    `json:"blog"`
}

const contributionsQuery = `query($login: String!) {
  user(login: $login) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
            contributionLevel
          }
        }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type contributionsResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					TotalContributions int `json:"totalContributions"`
					Weeks              []struct {
						ContributionDays []struct {
							ContributionCount int    `json:"contributionCount"`
							Date              string `json:"date"`
							ContributionLevel string `json:"contributionLevel"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Contributions is the flattened contribution calendar of the last year.
type Contributions struct {
	TotalContributions int
	Days               []models.ContributionDay
}

func NewClient(token string, timeout time.Duration) *Client {
	baseURL, _ := url.Parse(DefaultBaseURL)
	logger.Info("Initializing GitHub client", zap.String("base_url", baseURL.String()))
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
	}
}

// FetchRepositories pages through the user's repositories and keeps the
// public, non-fork ones the user owns.
func (c *Client) FetchRepositories(ctx context.Context, username string) ([]models.Repository, error) {
	repos := []models.Repository{}
	page := 1

	for {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("sort", "updated")
		q.Set("type", "owner")

		logger.Debug("Fetching repositories page",
			zap.String("username", username),
			zap.Int("page", page))

		var data []repoResponse
		if err := c.getJSON(ctx, "/users/"+url.PathEscape(username)+"/repos", q, &data); err != nil {
			return nil, err
		}
		if len(data) == 0 {
			break
		}

		for _, r := range data {
			if r.Fork || r.Private || r.Owner.Login != username {
				continue
			}
			repos = append(repos, toRepository(r))
		}

		if len(data) < perPage {
			break
		}
		page++
	}

	logger.Info("Successfully fetched repositories",
		zap.String("username", username),
		zap.Int("total_count", len(repos)))

	return repos, nil
}

func toRepository(r repoResponse) models.Repository {
	topics := r.Topics
	if topics == nil {
		topics = []string{}
	}
	return models.Repository{
		ID:          r.ID,
		Name:        r.Name,
		FullName:    r.FullName,
		Description: r.Description,
		HTMLURL:     r.HTMLURL,
		Homepage:    r.Homepage,
		Language:    r.Language,
		Stars:       r.StargazersCount,
		Forks:       r.ForksCount,
		Watchers:    r.WatchersCount,
		OpenIssues:  r.OpenIssuesCount,
		Topics:      topics,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		PushedAt:    r.PushedAt,
		Size:        r.Size,
	}
}

// FetchContributions returns the contribution calendar with the total taken
// from GitHub's own rollup.
func (c *Client) FetchContributions(ctx context.Context, username string) (*Contributions, error) {
	body, err := json.Marshal(graphQLRequest{
		Query:     contributionsQuery,
		Variables: map[string]any{"login": username},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode graphql request: %w", err)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: "/graphql"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	var out contributionsResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		msgs, _ := json.Marshal(out.Errors)
		return nil, apperrors.Upstream("github", fmt.Errorf("%w: %s", ErrGraphQL, msgs))
	}
	if out.Data.User == nil {
		return nil, apperrors.Upstream("github", fmt.Errorf("%w: user %q not found", ErrGraphQL, username))
	}

	calendar := out.Data.User.ContributionsCollection.ContributionCalendar
	days := []models.ContributionDay{}
	for _, week := range calendar.Weeks {
		for _, d := range week.ContributionDays {
			days = append(days, models.ContributionDay{
				Date:  d.Date,
				Count: d.ContributionCount,
				Level: d.ContributionLevel,
			})
		}
	}

	logger.Info("Successfully fetched contributions",
		zap.String("username", username),
		zap.Int("days", len(days)),
		zap.Int("total_contributions", calendar.TotalContributions))

	return &Contributions{TotalContributions: calendar.TotalContributions, Days: days}, nil
}

// FetchUserStats maps the user's public profile.
func (c *Client) FetchUserStats(ctx context.Context, username string) (*models.GitHubStatsDoc, error) {
	var user userResponse
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(username), nil, &user); err != nil {
		return nil, err
	}

	return &models.GitHubStatsDoc{
		Username:      username,
		Followers:     user.Followers,
		Following:     user.Following,
		PublicRepos:   user.PublicRepos,
		PublicGists:   user.PublicGists,
		CreatedAt:     user.CreatedAt,
		ProfileUpdate: user.UpdatedAt,
		Bio:           user.Bio,
		Company:       user.Company,
		Location:      user.Location,
		Blog:          user.Blog,
	}, nil
}

// FetchTopLanguages re-fetches the repositories and tallies their primary languages.
func (c *Client) FetchTopLanguages(ctx context.Context, username string) ([]models.LanguageCount, error) {
	repos, err := c.FetchRepositories(ctx, username)
	if err != nil {
		return nil, err
	}
	return TopLanguages(repos), nil
}

// TopLanguages returns the ten most used primary languages. Ties keep the
// order in which the language first appears in repos.
func TopLanguages(repos []models.Repository) []models.LanguageCount {
	counts := []models.LanguageCount{}
	index := map[string]int{}
	for _, r := range repos {
		if r.Language == "" {
			continue
		}
		i, ok := index[r.Language]
		if !ok {
			i = len(counts)
			index[r.Language] = i
			counts = append(counts, models.LanguageCount{Language: r.Language})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	if len(counts) > topLanguageMax {
		counts = counts[:topLanguageMax]
	}
	return counts
}

// GenerateBadges templates the profile badge image URLs. No I/O.
func GenerateBadges(username string) models.GitHubBadges {
	const style = "style=for-the-badge&logo=github&labelColor=1a1b27&color=70a5fd"
	return models.GitHubBadges{
		Stars:         fmt.Sprintf("https://img.shields.io/github/stars/%s?%s", username, style),
		Followers:     fmt.Sprintf("https://img.shields.io/github/followers/%s?%s", username, style),
		Repos:         fmt.Sprintf("https://img.shields.io/badge/dynamic/json?%s&label=Repos&query=$.public_repos&url=https://api.github.com/users/%s", style, username),
		Contributions: fmt.Sprintf("https://img.shields.io/badge/dynamic/json?%s&label=Contributions&query=$.total&url=https://github-contributions-api.jogruber.de/v4/%s?y=last", style, username),
		ProfileViews:  fmt.Sprintf("https://komarev.com/ghpvc/?username=%s&style=for-the-badge&color=70a5fd&labelColor=1a1b27", username),
	}
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	return c.do(req, out)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", userAgent)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("GitHub request failed",
			zap.Error(err),
			zap.String("url", req.URL.Path))
		return apperrors.Upstream("github", fmt.Errorf("request %s failed: %w", req.URL.Path, err))
	}
	defer resp.Body.Close()

	checkRateLimit(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		logger.Error("GitHub request failed",
			zap.Int("status_code", resp.StatusCode),
			zap.String("url", req.URL.Path))
		return apperrors.Upstream("github", fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Upstream("github", fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err))
	}
	return nil
}

// parseRateLimit parses rate limit information from response headers
func parseRateLimit(resp *http.Response) RateLimit {
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	remaining, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	reset, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64)

	return RateLimit{
		Limit:     limit,
		Remaining: remaining,
		Reset:     time.Unix(reset, 0),
	}
}

// checkRateLimit logs a warning when the remaining quota runs low. It never waits.
func checkRateLimit(resp *http.Response) {
	if resp.Header.Get("X-RateLimit-Remaining") == "" {
		return
	}
	rl := parseRateLimit(resp)
	if rl.Remaining < rateLimitWarnThreshold {
		logger.Warn("GitHub rate limit nearly exhausted",
			zap.Int("limit", rl.Limit),
			zap.Int("remaining", rl.Remaining),
			zap.Time("reset_time", rl.Reset))
	}
}
