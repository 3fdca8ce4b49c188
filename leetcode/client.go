// Package leetcode ingests a user's statistics from the alfa-leetcode-api
// aggregator and derives the calendar, streak and badge views from them.
package leetcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portfoliosync/apperrors"
	"portfoliosync/logger"
	"portfoliosync/models"
)

// DefaultBaseURL is the public aggregator instance.
const DefaultBaseURL = "https://alfa-leetcode-api.onrender.com"

var ErrUnexpectedStatus = errors.New("unexpected status code")

// Client fetches LeetCode data through the aggregator. It is unauthenticated.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	logger.Info("Initializing LeetCode client", zap.String("base_url", baseURL))
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// FetchStats issues the profile, solved, contest, badges and calendar calls
// concurrently. Only the profile call is required; the others degrade to
// empty values when they fail.
func (c *Client) FetchStats(ctx context.Context, username string, now time.Time) (*models.LeetCodeStats, error) {
	var profile, solved, contest, badges, calendar []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		body, err := c.get(gctx, username, "")
		if err != nil {
			return err
		}
		profile = body
		return nil
	})
	optional := func(sub string, dst *[]byte) {
		g.Go(func() error {
			body, err := c.get(gctx, username, sub)
			if err != nil {
				logger.Warn("Optional LeetCode request failed",
					zap.String("endpoint", sub),
					zap.Error(err))
				return nil
			}
			*dst = body
			return nil
		})
	}
	optional("solved", &solved)
	optional("contest", &contest)
	optional("badges", &badges)
	optional("calendar", &calendar)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := buildStats(username, profile, solved, contest, badges, calendar)
	stats.Streak = CalculateStreak(CalendarDays(stats.SubmissionCalendar), now)
	stats.BadgeURLs = GenerateBadges(stats)
	stats.FetchedAt = now.UTC()

	logger.Info("Successfully fetched LeetCode stats",
		zap.String("username", stats.Username),
		zap.Int("total_solved", stats.TotalSolved),
		zap.Int("calendar_entries", len(stats.SubmissionCalendar)),
		zap.Int("current_streak", stats.Streak.Current))

	return stats, nil
}

func (c *Client) get(ctx context.Context, username, sub string) ([]byte, error) {
	reqURL := c.baseURL + "/" + url.PathEscape(username)
	if sub != "" {
		reqURL += "/" + sub
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Upstream("leetcode", fmt.Errorf("request %s failed: %w", reqURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, apperrors.Upstream("leetcode", fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Upstream("leetcode", fmt.Errorf("failed to read response: %w", err))
	}
	return body, nil
}

// buildStats maps the raw aggregator responses. A nil body means the call
// failed or was skipped; unexpected shapes fall back to defaults.
func buildStats(username string, profile, solved, contest, badges, calendar []byte) *models.LeetCodeStats {
	p := gjson.ParseBytes(profile)
	s := gjson.ParseBytes(solved)

	stats := &models.LeetCodeStats{
		Username:           orString(p.Get("username").String(), username),
		Name:               p.Get("name").String(),
		Ranking:            int(p.Get("ranking").Int()),
		Reputation:         int(p.Get("reputation").Int()),
		ContributionPoints: int(p.Get("contributionPoints").Int()),
		Avatar:             p.Get("avatar").String(),
		Country:            p.Get("country").String(),
		School:             p.Get("school").String(),
		About:              p.Get("about").String(),

		TotalSolved:    int(s.Get("solvedProblem").Int()),
		EasySolved:     int(s.Get("easySolved").Int()),
		MediumSolved:   int(s.Get("mediumSolved").Int()),
		HardSolved:     int(s.Get("hardSolved").Int()),
		TotalQuestions: orInt(int(s.Get("totalSubmissionNum.0.count").Int()), models.DefaultTotalQuestions),
		EasyTotal:      orInt(int(s.Get("totalEasy").Int()), models.DefaultEasyTotal),
		MediumTotal:    orInt(int(s.Get("totalMedium").Int()), models.DefaultMediumTotal),
		HardTotal:      orInt(int(s.Get("totalHard").Int()), models.DefaultHardTotal),
		AcceptanceRate: s.Get("acRate").Float(),

		RecentSubmissions: recentSubmissions(s.Get("recentSubmissions")),
		ContestData:       contestData(contest),
		Badges:            earnedBadges(badges),
	}

	stats.SubmissionCalendar = map[string]int{}
	if calendar != nil {
		raw := gjson.GetBytes(calendar, "submissionCalendar")
		switch {
		case raw.Type == gjson.String:
			stats.SubmissionCalendar = NormalizeSubmissionCalendar(raw.Str)
		case raw.IsObject():
			stats.SubmissionCalendar = NormalizeSubmissionCalendar([]byte(raw.Raw))
		}
	}
	return stats
}

func recentSubmissions(list gjson.Result) []models.RecentSubmission {
	out := []models.RecentSubmission{}
	if !list.IsArray() {
		return out
	}
	list.ForEach(func(_, v gjson.Result) bool {
		out = append(out, models.RecentSubmission{
			Title:         v.Get("title").String(),
			TitleSlug:     v.Get("titleSlug").String(),
			Timestamp:     v.Get("timestamp").String(),
			StatusDisplay: v.Get("statusDisplay").String(),
			Lang:          v.Get("lang").String(),
		})
		return true
	})
	return out
}

func contestData(body []byte) *models.ContestData {
	if body == nil {
		return nil
	}
	c := gjson.ParseBytes(body)
	if !c.IsObject() {
		return nil
	}

	data := &models.ContestData{
		ContestAttend:     int(c.Get("contestAttend").Int()),
		ContestRating:     int(math.Round(c.Get("contestRating").Float())),
		TotalParticipants: int(c.Get("totalParticipants").Int()),
		Contests:          []models.ContestResult{},
	}
	if rank := int(c.Get("contestGlobalRanking").Int()); rank != 0 {
		data.ContestGlobalRanking = &rank
	}
	if top := c.Get("contestTopPercentage").Float(); top != 0 {
		data.ContestTopPercentage = &top
	}

	if history := c.Get("contestParticipation"); history.IsArray() {
		history.ForEach(func(_, v gjson.Result) bool {
			data.Contests = append(data.Contests, models.ContestResult{
				Title:          v.Get("contest.title").String(),
				StartTime:      v.Get("contest.startTime").Int(),
				Rating:         v.Get("rating").Float(),
				Ranking:        int(v.Get("ranking").Int()),
				ProblemsSolved: int(v.Get("problemsSolved").Int()),
				TotalProblems:  int(v.Get("totalProblems").Int()),
				TrendDirection: v.Get("trendDirection").String(),
			})
			return true
		})
	}
	return data
}

func earnedBadges(body []byte) []models.LeetCodeBadge {
	out := []models.LeetCodeBadge{}
	list := gjson.GetBytes(body, "badges")
	if !list.IsArray() {
		return out
	}
	list.ForEach(func(_, v gjson.Result) bool {
		out = append(out, models.LeetCodeBadge{
			ID:           v.Get("id").String(),
			DisplayName:  v.Get("displayName").String(),
			Icon:         v.Get("icon").String(),
			CreationDate: v.Get("creationDate").String(),
		})
		return true
	})
	return out
}

func orString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
