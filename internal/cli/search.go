package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openletters/carta/internal/query"
)

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search letters",
	Long: `Search letters by subject, sender or recipient.

Examples:
  carta search ciclovias
  carta search --field from ana@example.com
  carta search teatro --start 2025-01-01 --end 2025-03-31
  carta search parques --sort asc`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchField string
	searchSort  string
	searchStart string
	searchEnd   string
)

func init() {
	searchCmd.Flags().StringVarP(&searchField, "field", "f", "subject", "Field to match (subject, from, to)")
	searchCmd.Flags().StringVarP(&searchSort, "sort", "s", "desc", "Sort by signature count (asc, desc)")
	searchCmd.Flags().StringVar(&searchStart, "start", "", "Start date (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchEnd, "end", "", "End date (YYYY-MM-DD)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	text := args[0]
	for _, arg := range args[1:] {
		text += " " + arg
	}

	filters := query.Filters{
		Field: query.Field(searchField),
		Text:  text,
		Sort:  query.Sort(searchSort),
		Start: searchStart,
		End:   searchEnd,
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
		return fmt.Errorf("search failed: %w", err)
	}

	saveToCache(letters)

	if len(letters) == 0 {
		fmt.Printf("No letters match %q.\n", text)
		return nil
	}

	printLetters(letters)
	return nil
}
