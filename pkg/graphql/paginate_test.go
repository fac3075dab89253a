package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/profilegen/provider-client/internal/testutil"
)

// decode parses a JSON document for structural-search tests.
func decode(t *testing.T, doc string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		t.Fatalf("bad test document: %v", err)
	}
	return v
}

func TestFindPageData(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		wantItems   int
		wantCursor  string
		wantHasNext bool
		wantFound   bool
	}{
		{
			name:        "match at depth 1",
			doc:         `{"nodes": [1, 2], "pageInfo": {"endCursor": "c1", "hasNextPage": true}}`,
			wantItems:   2,
			wantCursor:  "c1",
			wantHasNext: true,
			wantFound:   true,
		},
		{
			name: "match nested under repository.refs",
			doc: `{"data": {"repository": {"refs": {
				"nodes": [{"name": "main"}, {"name": "dev"}, {"name": "gh-pages"}],
				"pageInfo": {"endCursor": "abc", "hasNextPage": false}
			}}}}`,
			wantItems:  3,
			wantCursor: "abc",
			wantFound:  true,
		},
		{
			name: "match three levels deep with sibling keys",
			doc: `{"data": {"user": {
				"name": "The Octocat",
				"repositoriesContributedTo": {
					"totalCount": 1,
					"nodes": [{"name": "hello-world"}],
					"pageInfo": {"endCursor": "xyz", "hasNextPage": true}
				}
			}}}`,
			wantItems:   1,
			wantCursor:  "xyz",
			wantHasNext: true,
			wantFound:   true,
		},
		{
			name: "match under type-discriminated union",
			doc: `{"data": {"repository": {"ref": {"target": {
				"__typename": "Commit",
				"oid": "deadbeef",
				"history": {
					"nodes": [{"oid": "a"}, {"oid": "b"}],
					"pageInfo": {"endCursor": "hist-2", "hasNextPage": true}
				}
			}}}}}`,
			wantItems:   2,
			wantCursor:  "hist-2",
			wantHasNext: true,
			wantFound:   true,
		},
		{
			name:      "match inside a list element",
			doc:       `{"data": [{"noise": 1}, {"nodes": [], "pageInfo": {"hasNextPage": false}}]}`,
			wantItems: 0,
			wantFound: true,
		},
		{
			name:      "no match anywhere",
			doc:       `{"data": {"user": {"name": "The Octocat", "repos": [1, 2, 3]}}}`,
			wantFound: false,
		},
		{
			name:      "nodes without pageInfo does not match",
			doc:       `{"data": {"refs": {"nodes": [1, 2, 3]}}}`,
			wantFound: false,
		},
		{
			name:      "scalar response",
			doc:       `42`,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, info := FindPageData(decode(t, tt.doc))

			if items == nil {
				t.Fatal("FindPageData returned nil items")
			}
			if !tt.wantFound {
				if len(items) != 0 || info.HasNextPage {
					t.Errorf("expected empty items and hasNextPage=false, got %d items, %+v", len(items), info)
				}
				return
			}
			if len(items) != tt.wantItems {
				t.Errorf("items = %d, want %d", len(items), tt.wantItems)
			}
			if info.EndCursor != tt.wantCursor {
				t.Errorf("EndCursor = %q, want %q", info.EndCursor, tt.wantCursor)
			}
			if info.HasNextPage != tt.wantHasNext {
				t.Errorf("HasNextPage = %v, want %v", info.HasNextPage, tt.wantHasNext)
			}
		})
	}
}

func TestFindPageData_DepthGuard(t *testing.T) {
	// A match buried past the search bound is treated as absent.
	inner := map[string]any{
		"nodes":    []any{1},
		"pageInfo": map[string]any{"endCursor": "deep", "hasNextPage": true},
	}
	wrapped := any(inner)
	for i := 0; i < maxSearchDepth+10; i++ {
		wrapped = map[string]any{"wrap": wrapped}
	}

	items, info := FindPageData(wrapped)
	if len(items) != 0 || info.HasNextPage {
		t.Errorf("depth guard breached: %d items, %+v", len(items), info)
	}
}

// pageBody builds one page with globally numbered items so flatten order
// is checkable across pages.
func pageBody(start, count int, endCursor string, hasNextPage bool) string {
	nodes := make([]any, count)
	for i := range nodes {
		nodes[i] = map[string]any{"name": fmt.Sprintf("repo-%d", start+i)}
	}
	body, _ := json.Marshal(map[string]any{
		"data": map[string]any{
			"user": map[string]any{
				"repositories": map[string]any{
					"nodes": nodes,
					"pageInfo": map[string]any{
						"endCursor":   endCursor,
						"hasNextPage": hasNextPage,
					},
				},
			},
		},
	})
	return string(body)
}

func TestFetchPaginated_ThreePages(t *testing.T) {
	client, _, mock := setupClient(t, testQueries)

	pages := []string{
		pageBody(0, 100, "cursor-1", true),
		pageBody(100, 100, "cursor-2", true),
		pageBody(200, 37, "cursor-3", false),
	}

	var mu sync.Mutex
	var queries []string
	mock.SetHandler("/graphql", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var posted struct {
			Query string `json:"query"`
		}
		_ = json.Unmarshal(body, &posted)

		mu.Lock()
		page := len(queries)
		queries = append(queries, posted.Query)
		mu.Unlock()

		if page >= len(pages) {
			t.Errorf("unexpected extra page request %d", page)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(pages[page]))
	})

	flat, err := client.FetchPaginated(context.Background(), "repo_list", map[string]string{"username": "octocat"})
	if err != nil {
		t.Fatalf("FetchPaginated failed: %v", err)
	}

	if len(flat) != 237 {
		t.Fatalf("flattened %d items, want 237", len(flat))
	}
	for _, idx := range []int{0, 99, 100, 199, 200, 236} {
		item, ok := flat[idx].(map[string]any)
		if !ok || item["name"] != fmt.Sprintf("repo-%d", idx) {
			t.Errorf("flat[%d] = %v, want repo-%d (page order broken)", idx, flat[idx], idx)
		}
	}

	// The pagination clause advances with the cursor.
	if !strings.Contains(queries[0], "first: 100") || strings.Contains(queries[0], "after:") {
		t.Errorf("first page pagination wrong: %q", queries[0])
	}
	if !strings.Contains(queries[1], `first: 100, after: "cursor-1"`) {
		t.Errorf("second page pagination wrong: %q", queries[1])
	}
	if !strings.Contains(queries[2], `first: 100, after: "cursor-2"`) {
		t.Errorf("third page pagination wrong: %q", queries[2])
	}
}

func TestFetchPaginated_SinglePage(t *testing.T) {
	client, _, mock := setupClient(t, testQueries)
	mock.SetGraphQLScript(
		testutil.MockResponse{StatusCode: http.StatusOK, Body: pageBody(0, 5, "only", false)},
	)

	flat, err := client.FetchPaginated(context.Background(), "repo_list", map[string]string{"username": "octocat"})
	if err != nil {
		t.Fatalf("FetchPaginated failed: %v", err)
	}
	if len(flat) != 5 {
		t.Errorf("flattened %d items, want 5", len(flat))
	}
	if count := mock.RequestCount("/graphql"); count != 1 {
		t.Errorf("server saw %d requests, want 1", count)
	}
}

func TestFetchPaginated_EmptyResult(t *testing.T) {
	client, _, mock := setupClient(t, testQueries)
	mock.SetGraphQLScript(
		testutil.MockResponse{StatusCode: http.StatusOK, Body: `{"data": {"user": null}}`},
	)

	flat, err := client.FetchPaginated(context.Background(), "repo_list", map[string]string{"username": "ghost"})
	if err != nil {
		t.Fatalf("FetchPaginated failed: %v", err)
	}
	if flat == nil || len(flat) != 0 {
		t.Errorf("expected empty flat list, got %v", flat)
	}
}

func TestFetchPaginated_PageFailureAborts(t *testing.T) {
	client, _, mock := setupClient(t, testQueries)
	mock.SetGraphQLScript(
		testutil.MockResponse{StatusCode: http.StatusOK, Body: pageBody(0, 100, "cursor-1", true)},
		testutil.MockResponse{StatusCode: http.StatusInternalServerError, Body: "boom"},
	)

	if _, err := client.FetchPaginated(context.Background(), "repo_list", map[string]string{"username": "octocat"}); err == nil {
		t.Fatal("expected a page failure to abort the whole flatten")
	}
}

func TestGet_PaginatedResultCached(t *testing.T) {
	client, _, mock := setupClient(t, testQueries)
	mock.SetGraphQLScript(
		testutil.MockResponse{StatusCode: http.StatusOK, Body: pageBody(0, 3, "c1", true)},
		testutil.MockResponse{StatusCode: http.StatusOK, Body: pageBody(3, 2, "c2", false)},
	)

	ctx := context.Background()
	params := map[string]string{"username": "octocat"}

	first, err := client.Get(ctx, "repo_list", params)
	if err != nil {
		t.Fatalf("first Get failed: %v", err)
	}
	if flat, ok := first.([]any); !ok || len(flat) != 5 {
		t.Fatalf("first Get = %v, want 5 flattened items", first)
	}

	second, err := client.Get(ctx, "repo_list", map[string]string{"username": "octocat"})
	if err != nil {
		t.Fatalf("second Get failed: %v", err)
	}
	if flat, ok := second.([]any); !ok || len(flat) != 5 {
		t.Errorf("cached Get = %v, want the flattened list", second)
	}
	if count := mock.RequestCount("/graphql"); count != 2 {
		t.Errorf("server saw %d requests, want 2 (both pages fetched once)", count)
	}
}
