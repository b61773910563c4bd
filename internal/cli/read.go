package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openletters/carta/internal/api"
	"github.com/openletters/carta/internal/cache"
	"github.com/openletters/carta/internal/logger"
	"github.com/openletters/carta/internal/model"
)

var readCmd = &cobra.Command{
	Use:   "read <letter-id>",
	Short: "Read a letter",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

var readOffline bool

func init() {
	readCmd.Flags().BoolVar(&readOffline, "offline", false, "Read from the local cache instead of the server")
}

func runRead(cmd *cobra.Command, args []string) error {
	id := args[0]

	if readOffline {
		return readFromCache(id)
	}

	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	letter, err := client.GetLetter(context.Background(), id)
	if errors.Is(err, api.ErrNotFound) {
		fmt.Printf("❌ No letter with id %s.\n", id)
		return nil
	}
	if err != nil {
		logger.Warn("Read request failed, trying cache", logger.F("error", err))
		fmt.Println("⚠️  Could not reach the server, showing cached copy.")
		return readFromCache(id)
	}

	printLetterDetail(letter)
	return nil
}

func readFromCache(id string) error {
	store, err := cache.OpenDefault()
	if err != nil {
		return fmt.Errorf("failed to open letter cache: %w", err)
	}
	defer store.Close()

	letter, err := store.GetLetter(context.Background(), id)
	if err != nil {
		fmt.Printf("❌ No cached letter with id %s.\n", id)
		return nil
	}

	printLetterDetail(letter)
	return nil
}

func printLetterDetail(l model.Letter) {
	fmt.Println()
	fmt.Printf("📜 %s\n", l.Subject)
	fmt.Println(strings.Repeat("─", 72))
	fmt.Printf("From:       %s\n", l.SenderEmail)
	fmt.Printf("To:         %s\n", l.RecipientEmail)
	fmt.Printf("Date:       %s\n", l.FormatDate())
	fmt.Printf("Signatures: %d", l.SignatureCount)
	if l.IsSigned {
		fmt.Print("  (you signed this letter)")
	}
	fmt.Println()
	fmt.Println(strings.Repeat("─", 72))
	fmt.Println(l.Body)
	fmt.Println()
}
