package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openletters/carta/internal/api"
	"github.com/openletters/carta/internal/sign"
)

var signCmd = &cobra.Command{
	Use:   "sign <letter-id>",
	Short: "Sign a letter, or withdraw your signature",
	Long: `Toggle your signature on a letter: signs it if you have not signed it
yet, withdraws your signature if you have.`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

func runSign(cmd *cobra.Command, args []string) error {
	id := args[0]

	client, sessions, err := newAPIClient()
	if err != nil {
		return err
	}

	letter, err := client.GetLetter(context.Background(), id)
	if errors.Is(err, api.ErrNotFound) {
		fmt.Printf("❌ No letter with id %s.\n", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load letter: %w", err)
	}

	ctrl := sign.New(client, sessions)
	err = ctrl.Toggle(context.Background(), &letter)

	var verr *api.ValidationError
	switch {
	case errors.Is(err, api.ErrUnauthenticated):
		fmt.Println("❌ You need to log in first: carta auth login")
		return nil
	case errors.Is(err, api.ErrSessionExpired):
		fmt.Println("❌ Your session expired. Log in again: carta auth login")
		return nil
	case errors.As(err, &verr):
		fmt.Printf("❌ %s\n", verr.Message)
		return nil
	case err != nil:
		return err
	}

	if letter.IsSigned {
		fmt.Printf("✅ Signed \"%s\" (%d signatures)\n", letter.Subject, letter.SignatureCount)
	} else {
		fmt.Printf("✅ Signature withdrawn from \"%s\" (%d signatures)\n", letter.Subject, letter.SignatureCount)
	}
	return nil
}
