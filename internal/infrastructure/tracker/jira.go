// Package tracker provides statistics providers backed by external issue
// trackers. They implement the same provider contract as the workspace
// repository, so the analytics layer never knows where a series came from.
package tracker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/niksavis/burndown-chart/pkg/domain/metrics"
)

const jiraPageSize = 100

// JiraConfig configures the Jira Cloud statistics provider. Empty fields fall
// back to JIRA_* environment variables.
type JiraConfig struct {
	Domain     string `yaml:"domain"`
	ProjectKey string `yaml:"project_key"`
	Email      string `yaml:"email"`
	APIToken   string `yaml:"api_token"`
	// Weeks bounds how far back the series reaches; 12 when unset.
	Weeks int `yaml:"weeks"`
}

// JiraProvider aggregates resolved and created issues from Jira Cloud into
// weekly records. Every fetch is wrapped in a retry with exponential backoff
// and an overall timeout.
type JiraProvider struct {
	cfg    JiraConfig
	client *http.Client
	now    func() time.Time
}

// NewJiraProvider validates the configuration and returns a provider.
func NewJiraProvider(cfg JiraConfig) (*JiraProvider, error) {
	if cfg.Domain == "" {
		cfg.Domain = os.Getenv("JIRA_DOMAIN")
	}
	if cfg.ProjectKey == "" {
		cfg.ProjectKey = os.Getenv("JIRA_PROJECT_KEY")
	}
	if cfg.Email == "" {
		cfg.Email = os.Getenv("JIRA_EMAIL")
	}
	if cfg.APIToken == "" {
		cfg.APIToken = os.Getenv("JIRA_API_TOKEN")
	}

	if cfg.Domain == "" || cfg.ProjectKey == "" || cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("jira configuration missing (domain, project_key, email, api_token required)")
	}

	if !strings.HasPrefix(cfg.Domain, "http") {
		cfg.Domain = "https://" + cfg.Domain
	}
	if cfg.Weeks <= 0 {
		cfg.Weeks = 12
	}

	return &JiraProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		now:    time.Now,
	}, nil
}

// WithClock overrides the time source used to bucket weeks.
func (p *JiraProvider) WithClock(now func() time.Time) *JiraProvider {
	p.now = now
	return p
}

type jiraIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Created        string `json:"created"`
		ResolutionDate string `json:"resolutiondate"`
	} `json:"fields"`
}

type jiraSearchResponse struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Issues     []jiraIssue `json:"issues"`
}

// WeeklySeries fetches issues resolved or created inside the configured
// window and buckets them into consecutive ISO weeks, oldest first. Weeks
// without activity appear as explicit zero records so downstream statistics
// see the real cadence.
func (p *JiraProvider) WeeklySeries(ctx context.Context) ([]metrics.WeeklyRecord, error) {
	t := timeout.New[[]jiraIssue](timeout.Config{DefaultTimeout: 2 * time.Minute})
	r := retry.New[[]jiraIssue](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  time.Second,
		BackoffPolicy: retry.BackoffExponential,
	})

	fetch := func(jql string) ([]jiraIssue, error) {
		return t.Execute(ctx, 2*time.Minute, func(ctx context.Context) ([]jiraIssue, error) {
			return r.Do(ctx, func(ctx context.Context) ([]jiraIssue, error) {
				return p.searchAll(ctx, jql)
			})
		})
	}

	window := fmt.Sprintf("-%dw", p.cfg.Weeks)
	resolved, err := fetch(fmt.Sprintf("project = %q AND resolutiondate >= %s ORDER BY resolutiondate ASC", p.cfg.ProjectKey, window))
	if err != nil {
		return nil, fmt.Errorf("fetch resolved issues: %w", err)
	}
	created, err := fetch(fmt.Sprintf("project = %q AND created >= %s ORDER BY created ASC", p.cfg.ProjectKey, window))
	if err != nil {
		return nil, fmt.Errorf("fetch created issues: %w", err)
	}

	return p.bucketWeekly(resolved, created), nil
}

// searchAll pages through the Jira search API until all matches are fetched.
func (p *JiraProvider) searchAll(ctx context.Context, jql string) ([]jiraIssue, error) {
	var issues []jiraIssue
	startAt := 0

	for {
		page, err := p.searchPage(ctx, jql, startAt)
		if err != nil {
			return nil, err
		}
		issues = append(issues, page.Issues...)

		startAt += len(page.Issues)
		if startAt >= page.Total || len(page.Issues) == 0 {
			return issues, nil
		}
	}
}

func (p *JiraProvider) searchPage(ctx context.Context, jql string, startAt int) (*jiraSearchResponse, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("fields", "created,resolutiondate")
	query.Set("startAt", fmt.Sprintf("%d", startAt))
	query.Set("maxResults", fmt.Sprintf("%d", jiraPageSize))

	endpoint := fmt.Sprintf("%s/rest/api/3/search?%s", p.cfg.Domain, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(p.cfg.Email + ":" + p.cfg.APIToken))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read jira response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jira search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var search jiraSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("decode jira response: %w", err)
	}
	return &search, nil
}

// bucketWeekly builds a continuous run of weekly records covering the
// configured window up to the current week.
func (p *JiraProvider) bucketWeekly(resolved, created []jiraIssue) []metrics.WeeklyRecord {
	currentWeek := metrics.StartOfWeek(p.now().UTC())
	firstWeek := currentWeek.AddDate(0, 0, -7*(p.cfg.Weeks-1))

	buckets := make(map[time.Time]*metrics.WeeklyRecord)
	var order []time.Time
	for week := firstWeek; !week.After(currentWeek); week = week.AddDate(0, 0, 7) {
		buckets[week] = &metrics.WeeklyRecord{PeriodStart: week}
		order = append(order, week)
	}

	for _, issue := range resolved {
		if week, ok := p.weekOf(issue.Fields.ResolutionDate, firstWeek, currentWeek); ok {
			buckets[week].CompletedCount++
		}
	}
	for _, issue := range created {
		if week, ok := p.weekOf(issue.Fields.Created, firstWeek, currentWeek); ok {
			buckets[week].CreatedCount++
		}
	}

	series := make([]metrics.WeeklyRecord, len(order))
	for i, week := range order {
		series[i] = *buckets[week]
	}
	return series
}

// weekOf parses a Jira timestamp and maps it to a bucket week, rejecting
// anything outside the window.
func (p *JiraProvider) weekOf(stamp string, firstWeek, currentWeek time.Time) (time.Time, bool) {
	if stamp == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse("2006-01-02T15:04:05.000-0700", stamp)
	if err != nil {
		// Jira occasionally emits plain RFC3339.
		parsed, err = time.Parse(time.RFC3339, stamp)
		if err != nil {
			return time.Time{}, false
		}
	}
	week := metrics.StartOfWeek(parsed.UTC())
	if week.Before(firstWeek) || week.After(currentWeek) {
		return time.Time{}, false
	}
	return week, true
}
