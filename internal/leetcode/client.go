// Package leetcode fetches the problem catalog from the LeetCode GraphQL API.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Doremi203/LeetCodeBot/internal/config"
	"github.com/Doremi203/LeetCodeBot/internal/domain"
	"github.com/Doremi203/LeetCodeBot/internal/logger"
)

const questionListQuery = `query problemsetQuestionList($categorySlug: String, $limit: Int, $skip: Int, $filters: QuestionListFilterInput) {
  problemsetQuestionList: questionList(
    categorySlug: $categorySlug
    limit: $limit
    skip: $skip
    filters: $filters
  ) {
    total: totalNum
    questions: data {
      acRate
      difficulty
      frontendQuestionId: questionFrontendId
      paidOnly: isPaidOnly
      title
      titleSlug
    }
  }
}`

// Client pulls problem pages from the catalog endpoint. The catalog is a
// snapshot source: callers fetch, cache for a tick, and never persist it.
type Client struct {
	endpoint string
	limit    int
	http     *http.Client
}

// NewClient builds a catalog client. A nil httpClient gets a plain client with
// the configured timeout; production wiring passes the retrying transport.
func NewClient(cfg config.CatalogConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	return &Client{
		endpoint: cfg.Endpoint,
		limit:    cfg.PageLimit,
		http:     httpClient,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type question struct {
	AcRate             float64 `json:"acRate"`
	Difficulty         string  `json:"difficulty"`
	FrontendQuestionID string  `json:"frontendQuestionId"`
	PaidOnly           bool    `json:"paidOnly"`
	Title              string  `json:"title"`
	TitleSlug          string  `json:"titleSlug"`
}

type questionListResponse struct {
	Data struct {
		ProblemsetQuestionList struct {
			Total     int        `json:"total"`
			Questions []question `json:"questions"`
		} `json:"problemsetQuestionList"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Fetch returns the full problem catalog, paging until the reported total is
// reached. Questions with non-numeric ids or unknown difficulty tags are
// skipped rather than failing the whole fetch.
func (c *Client) Fetch(ctx context.Context) ([]domain.Problem, error) {
	start := time.Now()
	var (
		problems []domain.Problem
		skipped  int
		skip     int
	)

	for {
		page, total, err := c.fetchPage(ctx, skip)
		if err != nil {
			logger.CATALOG.LogAttrs(ctx, slog.LevelError, "",
				slog.String("event", "catalog.fetch"),
				slog.String("status", "fail"),
				slog.Int("count", len(problems)),
				slog.Duration("duration", time.Since(start)),
				slog.String("err", err.Error()),
			)
			return nil, err
		}

		for _, q := range page {
			id, err := strconv.Atoi(q.FrontendQuestionID)
			if err != nil {
				skipped++
				continue
			}
			level, ok := domain.ParseDifficulty(q.Difficulty)
			if !ok {
				skipped++
				continue
			}
			problems = append(problems, domain.Problem{
				ID:         id,
				Title:      q.Title,
				Slug:       q.TitleSlug,
				Difficulty: level,
				Paid:       q.PaidOnly,
				AcceptRate: q.AcRate,
			})
		}

		skip += len(page)
		if len(page) == 0 || skip >= total {
			break
		}
	}

	logger.CATALOG.LogAttrs(ctx, slog.LevelInfo, "",
		slog.String("event", "catalog.fetch"),
		slog.String("status", "ok"),
		slog.Int("count", len(problems)),
		slog.Int("skipped", skipped),
		slog.Duration("duration", time.Since(start)),
	)
	return problems, nil
}

func (c *Client) fetchPage(ctx context.Context, skip int) ([]question, int, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: questionListQuery,
		Variables: map[string]any{
			"categorySlug": "",
			"limit":        c.limit,
			"skip":         skip,
			"filters":      map[string]any{},
		},
	})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal catalog query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build catalog request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, 0, fmt.Errorf("catalog request: unexpected status %d", resp.StatusCode)
	}

	var decoded questionListResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, 0, fmt.Errorf("decode catalog response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, 0, fmt.Errorf("catalog query: %s", decoded.Errors[0].Message)
	}

	list := decoded.Data.ProblemsetQuestionList
	return list.Questions, list.Total, nil
}
