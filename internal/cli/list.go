package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openletters/carta/internal/cache"
	"github.com/openletters/carta/internal/logger"
	"github.com/openletters/carta/internal/model"
	"github.com/openletters/carta/internal/query"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List letters",
	Long: `List letters from the archive, most signed first.

Examples:
  carta list
  carta list --range week
  carta list --sort asc
  carta list --offline`,
	RunE: runList,
}

var (
	listRange   string
	listSort    string
	listOffline bool
)

func init() {
	listCmd.Flags().StringVarP(&listRange, "range", "r", "all", "Time range (today, week, month, year, all)")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "desc", "Sort by signature count (asc, desc)")
	listCmd.Flags().BoolVar(&listOffline, "offline", false, "Read from the local cache instead of the server")
}

func runList(cmd *cobra.Command, args []string) error {
	if listOffline {
		return listFromCache()
	}

	filters := query.Filters{
		Sort:  query.Sort(listSort),
		Range: query.Range(listRange),
	}
	if err := filters.Validate(); err != nil {
		return err
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	letters, err := client.ListLetters(context.Background(), query.Build(filters, time.Now()))
	if err != nil {
		logger.Warn("List request failed, trying cache", logger.F("error", err))
		fmt.Println("⚠️  Could not reach the server, showing cached letters.")
		return listFromCache()
	}

	saveToCache(letters)

	if len(letters) == 0 {
		fmt.Println("No letters found.")
		return nil
	}

	printLetters(letters)
	return nil
}

func listFromCache() error {
	store, err := cache.OpenDefault()
	if err != nil {
		return fmt.Errorf("failed to open letter cache: %w", err)
	}
	defer store.Close()

	letters, err := store.ListLetters(context.Background(), 100)
	if err != nil {
		return fmt.Errorf("failed to read letter cache: %w", err)
	}

	if len(letters) == 0 {
		fmt.Println("No cached letters. Run 'carta list' while online first.")
		return nil
	}

	printLetters(letters)
	return nil
}

func saveToCache(letters []model.Letter) {
	if len(letters) == 0 {
		return
	}
	store, err := cache.OpenDefault()
	if err != nil {
		logger.Warn("Failed to open letter cache", logger.F("error", err))
		return
	}
	defer store.Close()

	if err := store.SaveLetters(context.Background(), letters); err != nil {
		logger.Warn("Failed to cache letters", logger.F("error", err))
	}
}

func printLetters(letters []model.Letter) {
	fmt.Printf("\n📜 %d letter(s)\n", len(letters))
	fmt.Println(strings.Repeat("─", 72))

	for i, l := range letters {
		printLetter(i+1, l)
	}
	fmt.Println()
}

func printLetter(num int, l model.Letter) {
	signed := " "
	if l.IsSigned {
		signed = "✒"
	}

	subject := truncate(l.Subject, 42)

	shortID := l.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	fmt.Printf("  %s  %-8s  %-42s  %s  %4d ✍\n", signed, shortID, subject, l.FormatDate(), l.SignatureCount)
}

// truncate shortens a string to max runes with ellipsis, never splitting a
// multi-byte character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
