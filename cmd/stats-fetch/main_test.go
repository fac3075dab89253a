package main

import (
	"net/http"
	"testing"

	"github.com/profilegen/provider-client/internal/testutil"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("STATS_FETCH_TEST_KEY", "set")

	if got := getEnv("STATS_FETCH_TEST_KEY", "fallback"); got != "set" {
		t.Errorf("getEnv = %q, want %q", got, "set")
	}
	if got := getEnv("STATS_FETCH_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv = %q, want %q", got, "fallback")
	}
}

func TestRun_EndToEnd(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	mock.SetResponse("/languages.yml", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       "Go:\n  color: \"#00ADD8\"\n",
	})
	mock.SetResponse("/users/current/stats/last_7_days", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data": {"total_seconds": 3600}}`,
	})
	mock.SetResponse("/users/current/all_time_since_today", testutil.MockResponse{
		// Provider accepted but is still computing: the "no data" path.
		StatusCode: http.StatusAccepted,
	})
	mock.SetResponse("/contributions", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"years": [], "contributions": []}`,
	})
	mock.SetGraphQLScript(
		testutil.MockResponse{
			StatusCode: http.StatusOK,
			Body:       testutil.PageBody([]string{"user", "repositories"}, 2, "end", false),
		},
	)

	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("WAKATIME_API_KEY", "test-key")
	t.Setenv("GRAPHQL_ENDPOINT", mock.GraphQLEndpoint())
	t.Setenv("WAKATIME_BASE_URL", mock.URL())
	t.Setenv("LINGUIST_URL", mock.URL()+"/languages.yml")
	t.Setenv("CONTRIBUTIONS_URL", mock.URL()+"/contributions")

	rootCmd.SetArgs([]string{"--user", "octocat"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Every plain resource was fetched exactly once.
	for _, path := range []string{
		"/languages.yml",
		"/users/current/stats/last_7_days",
		"/users/current/all_time_since_today",
		"/contributions",
	} {
		if got := mock.RequestCount(path); got != 1 {
			t.Errorf("%s fetched %d times, want 1", path, got)
		}
	}
}
