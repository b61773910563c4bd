package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openletters/carta/internal/api"
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write a new open letter",
	Long: `Write and publish a new open letter.

The body is read from stdin when piped, otherwise you are prompted for it
(finish with a single '.' on its own line).

Examples:
  carta write --to mayor@city.gov --subject "Protected bike lanes"
  cat letter.txt | carta write --to mayor@city.gov --subject "Bike lanes"`,
	RunE: runWrite,
}

var (
	writeTo      string
	writeSubject string
)

func init() {
	writeCmd.Flags().StringVar(&writeTo, "to", "", "Recipient email address")
	writeCmd.Flags().StringVar(&writeSubject, "subject", "", "Letter subject")
}

func runWrite(cmd *cobra.Command, args []string) error {
	client, sessions, err := newAPIClient()
	if err != nil {
		return err
	}

	if !sessions.IsAuthenticated() {
		fmt.Println("❌ You need to log in first: carta auth login")
		return nil
	}

	reader := bufio.NewReader(os.Stdin)

	to := writeTo
	if to == "" {
		fmt.Print("To (email): ")
		to, _ = reader.ReadString('\n')
		to = strings.TrimSpace(to)
	}

	subject := writeSubject
	if subject == "" {
		fmt.Print("Subject: ")
		subject, _ = reader.ReadString('\n')
		subject = strings.TrimSpace(subject)
	}

	body, err := readBody(reader)
	if err != nil {
		return err
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("letter body is empty")
	}

	fmt.Println("🔄 Publishing letter...")
	letter, err := client.CreateLetter(context.Background(), api.CreateLetterInput{
		RecipientEmail: to,
		Subject:        subject,
		Body:           body,
	})

	var verr *api.ValidationError
	switch {
	case errors.Is(err, api.ErrSessionExpired):
		fmt.Println("❌ Your session expired. Log in again: carta auth login")
		return nil
	case errors.As(err, &verr):
		fmt.Printf("❌ %s\n", verr.Message)
		return nil
	case err != nil:
		return fmt.Errorf("failed to publish letter: %w", err)
	}

	fmt.Printf("✅ Published \"%s\" (id %s)\n", letter.Subject, letter.ID)
	return nil
}

func readBody(reader *bufio.Reader) (string, error) {
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		// Piped input: the whole of stdin is the body
		data, err := io.ReadAll(reader)
		if err != nil {
			return "", fmt.Errorf("failed to read letter body: %w", err)
		}
		return string(data), nil
	}

	fmt.Println("Body (end with a single '.' on its own line):")
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		trimmed := strings.TrimRight(line, "\n")
		if trimmed == "." {
			break
		}
		lines = append(lines, trimmed)
		if err != nil {
			break
		}
	}
	return strings.Join(lines, "\n"), nil
}
