package graphql

import (
	"fmt"
	"os"
	"strings"
)

// paginationPlaceholder marks a query template as paginated. Paginated
// templates receive an injected "pagination" parameter expanded to
// `first: 100` or `first: 100, after: "<cursor>"`.
const paginationPlaceholder = "$pagination"

// Queries is the default set of named query templates for the GitHub
// GraphQL API. Templates are opaque parameterized strings; placeholders
// use $name syntax and are substituted from the caller's params.
var Queries = map[string]string{
	"repos_contributed_to": `
{
    user(login: "$username") {
        repositoriesContributedTo(orderBy: {field: CREATED_AT, direction: DESC}, $pagination, includeUserRepositories: true) {
            nodes {
                primaryLanguage { name }
                name
                owner { login }
                isPrivate
                isFork
            }
            pageInfo { endCursor hasNextPage }
        }
    }
}`,
	"user_repository_list": `
{
    user(login: "$username") {
        repositories(orderBy: {field: CREATED_AT, direction: DESC}, $pagination, affiliations: [OWNER, COLLABORATOR], isFork: false) {
            nodes {
                primaryLanguage { name }
                name
                owner { login }
                isPrivate
            }
            pageInfo { endCursor hasNextPage }
        }
    }
}`,
	"repo_branch_list": `
{
    repository(owner: "$owner", name: "$name") {
        refs(refPrefix: "refs/heads/", orderBy: {direction: DESC, field: TAG_COMMIT_DATE}, $pagination) {
            nodes { name }
            pageInfo { endCursor hasNextPage }
        }
    }
}`,
	"repo_commit_list": `
{
    repository(owner: "$owner", name: "$name") {
        ref(qualifiedName: "refs/heads/$branch") {
            target {
                ... on Commit {
                    history(author: { id: "$id" }, $pagination) {
                        nodes {
                            ... on Commit { additions deletions committedDate oid }
                        }
                        pageInfo { endCursor hasNextPage }
                    }
                }
            }
        }
    }
}`,
	"hide_outdated_comment": `
mutation {
    minimizeComment(input: {classifier: OUTDATED, subjectId: "$id"}) {
        clientMutationId
    }
}`,
}

// isPaginated reports whether a template supports cursor pagination.
func isPaginated(tmpl string) bool {
	return strings.Contains(tmpl, paginationPlaceholder)
}

// render substitutes $name placeholders in tmpl from params. Every
// placeholder must be bound; unresolved names are an error rather than
// silently emitting broken query text.
func render(tmpl string, params map[string]string) (string, error) {
	var missing []string
	out := os.Expand(tmpl, func(name string) string {
		v, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return ""
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, strings.Join(missing, ", "))
	}
	return out, nil
}
