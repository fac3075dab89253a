package graphql

import (
	"context"
	"fmt"
	"sort"
)

const (
	// pageSize is the fixed number of items requested per page.
	pageSize = 100

	// maxSearchDepth bounds the structural search on pathological inputs.
	maxSearchDepth = 64
)

// PageInfo carries the continuation metadata of one page.
type PageInfo struct {
	EndCursor   string
	HasNextPage bool
}

// FindPageData locates the item list and page metadata in one decoded
// GraphQL response, wherever the paginated field is nested. It returns an
// empty list and HasNextPage=false when no sub-object anywhere in the
// structure carries both a node list and page info.
//
// Different queries nest the paginated field at different depths
// (repository.refs vs. user.repositoriesContributedTo) and some
// intermediate nodes have sibling keys (commit history sits under a
// type-discriminated union), so the search recurses into every map value
// and slice element, taking the first match at the shallowest depth.
func FindPageData(response any) ([]any, PageInfo) {
	items, info, found := findPageData(response, 0)
	if !found {
		return []any{}, PageInfo{HasNextPage: false}
	}
	return items, info
}

func findPageData(v any, depth int) ([]any, PageInfo, bool) {
	if depth > maxSearchDepth {
		return nil, PageInfo{}, false
	}

	switch node := v.(type) {
	case map[string]any:
		nodesVal, hasNodes := node["nodes"]
		infoVal, hasInfo := node["pageInfo"]
		if hasNodes && hasInfo {
			items, _ := nodesVal.([]any)
			if items == nil {
				items = []any{}
			}
			return items, parsePageInfo(infoVal), true
		}
		for _, key := range sortedKeys(node) {
			if items, info, found := findPageData(node[key], depth+1); found {
				return items, info, true
			}
		}
	case []any:
		for _, child := range node {
			if items, info, found := findPageData(child, depth+1); found {
				return items, info, true
			}
		}
	}

	return nil, PageInfo{}, false
}

// parsePageInfo extracts cursor and has-more flag from a pageInfo object.
func parsePageInfo(v any) PageInfo {
	m, ok := v.(map[string]any)
	if !ok {
		return PageInfo{}
	}
	info := PageInfo{}
	if cursor, ok := m["endCursor"].(string); ok {
		info.EndCursor = cursor
	}
	if hasNext, ok := m["hasNextPage"].(bool); ok {
		info.HasNextPage = hasNext
	}
	return info
}

// sortedKeys makes the structural search deterministic across runs.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FetchPaginated drives the named query across all pages and returns the
// concatenation of every page's items in page-fetch order. Any page
// failure aborts the whole flatten; partially accumulated pages are
// discarded.
func (c *Client) FetchPaginated(ctx context.Context, name string, params map[string]string) ([]any, error) {
	paged := make(map[string]string, len(params)+1)
	for k, v := range params {
		paged[k] = v
	}
	paged["pagination"] = fmt.Sprintf("first: %d", pageSize)

	var all []any
	pages := 0
	for {
		response, err := c.Query(ctx, name, paged)
		if err != nil {
			return nil, err
		}

		items, info := FindPageData(response)
		all = append(all, items...)
		pages++
		pagesTotal.WithLabelValues(name).Inc()

		if !info.HasNextPage {
			break
		}
		paged["pagination"] = fmt.Sprintf("first: %d, after: \"%s\"", pageSize, info.EndCursor)
	}

	c.logger.Debug().
		Str("query", name).
		Int("pages", pages).
		Int("items", len(all)).
		Msg("Pagination flattened")

	if all == nil {
		all = []any{}
	}
	return all, nil
}
