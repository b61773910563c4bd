package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	_, sessions, err := newAPIClient()
	if err != nil {
		return err
	}

	current, ok := sessions.Current()
	if !ok {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("👤 %s\n", current.Email)
	fmt.Printf("   Session expires %s\n", current.ExpiresAt.Format("2006-01-02 15:04"))
	return nil
}
