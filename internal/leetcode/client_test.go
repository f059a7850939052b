package leetcode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Doremi203/LeetCodeBot/internal/config"
	"github.com/Doremi203/LeetCodeBot/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.CatalogConfig{
		Endpoint:       server.URL,
		TimeoutSeconds: 5,
		PageLimit:      2,
	}, server.Client())
}

func catalogPage(total int, questions ...map[string]any) map[string]any {
	return map[string]any{
		"data": map[string]any{
			"problemsetQuestionList": map[string]any{
				"total":     total,
				"questions": questions,
			},
		},
	}
}

func TestFetchMapsQuestions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var req struct {
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(catalogPage(2,
			map[string]any{
				"acRate":             45.5,
				"difficulty":         "Easy",
				"frontendQuestionId": "1",
				"paidOnly":           false,
				"title":              "Two Sum",
				"titleSlug":          "two-sum",
			},
			map[string]any{
				"acRate":             33.1,
				"difficulty":         "Hard",
				"frontendQuestionId": "4",
				"paidOnly":           true,
				"title":              "Median of Two Sorted Arrays",
				"titleSlug":          "median-of-two-sorted-arrays",
			},
		))
	})

	problems, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(problems) != 2 {
		t.Fatalf("got %d problems, want 2", len(problems))
	}
	first := problems[0]
	if first.ID != 1 || first.Slug != "two-sum" || first.Difficulty != domain.DifficultyEasy {
		t.Errorf("unexpected first problem: %+v", first)
	}
	if !problems[1].Paid || problems[1].Difficulty != domain.DifficultyHard {
		t.Errorf("unexpected second problem: %+v", problems[1])
	}
}

func TestFetchPages(t *testing.T) {
	pages := []map[string]any{
		catalogPage(3,
			map[string]any{"difficulty": "Easy", "frontendQuestionId": "1", "title": "A", "titleSlug": "a"},
			map[string]any{"difficulty": "Medium", "frontendQuestionId": "2", "title": "B", "titleSlug": "b"},
		),
		catalogPage(3,
			map[string]any{"difficulty": "Hard", "frontendQuestionId": "3", "title": "C", "titleSlug": "c"},
		),
	}
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls >= len(pages) {
			t.Fatalf("unexpected extra page request %d", calls+1)
		}
		json.NewEncoder(w).Encode(pages[calls])
		calls++
	})

	problems, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if calls != 2 {
		t.Errorf("made %d requests, want 2", calls)
	}
	if len(problems) != 3 {
		t.Fatalf("got %d problems, want 3", len(problems))
	}
}

func TestFetchSkipsMalformedQuestions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(catalogPage(3,
			map[string]any{"difficulty": "Easy", "frontendQuestionId": "not-a-number", "title": "X", "titleSlug": "x"},
			map[string]any{"difficulty": "Brutal", "frontendQuestionId": "2", "title": "Y", "titleSlug": "y"},
			map[string]any{"difficulty": "Medium", "frontendQuestionId": "3", "title": "Z", "titleSlug": "z"},
		))
	})

	problems, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(problems) != 1 || problems[0].ID != 3 {
		t.Fatalf("got %+v, want only problem 3", problems)
	}
}

func TestFetchGraphQLError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "rate limited"}},
		})
	})

	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for GraphQL error response")
	}
}

func TestFetchHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
