// Command stats-fetch fetches profile and activity statistics from every
// configured provider and prints them as one JSON document. It performs the
// same startup sequence the report generator uses: prefetch all plain
// resources concurrently, resolve them alongside the GraphQL queries, and
// drain outstanding fetches on exit.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/profilegen/provider-client/pkg/cache"
	"github.com/profilegen/provider-client/pkg/fetch"
	"github.com/profilegen/provider-client/pkg/graphql"
	"github.com/profilegen/provider-client/pkg/logging"
)

const (
	defaultGraphQLEndpoint = "https://api.github.com/graphql"
	defaultWakaBaseURL     = "https://wakatime.com/api/compat/wakatime/v1"
	linguistURL            = "https://cdn.jsdelivr.net/gh/github/linguist@master/lib/linguist/languages.yml"
	contributionsURLFormat = "https://github-contributions.vercel.app/api/v1/%s"

	drainTimeout = 10 * time.Second
)

var (
	flagUsername string
	flagPretty   bool
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:           "stats-fetch",
	Short:         "Fetch profile/activity statistics from remote providers",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagUsername, "user", "u", "", "GitHub username (defaults to $GITHUB_USERNAME)")
	rootCmd.Flags().BoolVar(&flagPretty, "pretty", false, "indent the JSON output")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

// report is the aggregated output of one run. Each field is written by
// exactly one errgroup goroutine.
type report struct {
	Username      string `json:"username"`
	Languages     any    `json:"languages"`
	WakaLatest    any    `json:"waka_latest"`
	WakaAllTime   any    `json:"waka_all_time"`
	Contributions any    `json:"contributions"`
	Repositories  any    `json:"repositories"`
	ContributedTo any    `json:"contributed_to"`
}

func run(cmd *cobra.Command, args []string) error {
	level := logging.LevelInfo
	if flagDebug {
		level = logging.LevelDebug
	}
	logger := logging.Setup(logging.Config{Level: level, Pretty: true, Output: os.Stderr})

	username := flagUsername
	if username == "" {
		username = os.Getenv("GITHUB_USERNAME")
	}
	if username == "" {
		return fmt.Errorf("username is required (--user or $GITHUB_USERNAME)")
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		return fmt.Errorf("$GITHUB_TOKEN is required")
	}
	wakaKey := os.Getenv("WAKATIME_API_KEY")

	endpoint := getEnv("GRAPHQL_ENDPOINT", defaultGraphQLEndpoint)
	wakaBase := getEnv("WAKATIME_BASE_URL", defaultWakaBaseURL)
	linguist := getEnv("LINGUIST_URL", linguistURL)
	contributions := getEnv("CONTRIBUTIONS_URL", fmt.Sprintf(contributionsURLFormat, username))

	store := cache.NewStore()
	fetcher := fetch.New(store)
	gql, err := graphql.New(graphql.Config{
		Endpoint: endpoint,
		Token:    token,
		Store:    store,
	})
	if err != nil {
		return fmt.Errorf("create query engine: %w", err)
	}

	ctx := cmd.Context()
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		store.Drain(drainCtx)
	}()

	// Start every plain resource fetch before anything awaits a result.
	fetcher.StartAll(map[string]string{
		"linguist":     linguist,
		"waka_latest":  fmt.Sprintf("%s/users/current/stats/last_7_days?api_key=%s", wakaBase, wakaKey),
		"waka_all":     fmt.Sprintf("%s/users/current/all_time_since_today?api_key=%s", wakaBase, wakaKey),
		"github_stats": contributions,
	})

	out := report{Username: username}
	userParams := map[string]string{"username": username}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Languages, err = fetcher.YAML(gctx, "linguist")
		return err
	})
	g.Go(func() (err error) {
		out.WakaLatest, err = fetcher.JSON(gctx, "waka_latest")
		return err
	})
	g.Go(func() (err error) {
		out.WakaAllTime, err = fetcher.JSON(gctx, "waka_all")
		return err
	})
	g.Go(func() (err error) {
		out.Contributions, err = fetcher.JSON(gctx, "github_stats")
		return err
	})
	g.Go(func() (err error) {
		out.Repositories, err = gql.Get(gctx, "user_repository_list", userParams)
		return err
	})
	g.Go(func() (err error) {
		out.ContributedTo, err = gql.Get(gctx, "repos_contributed_to", userParams)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var encoded []byte
	if flagPretty {
		encoded, err = json.MarshalIndent(out, "", "  ")
	} else {
		encoded, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Println(string(encoded))

	logger.Info().Str("user", username).Msg("Report fetch finished")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
