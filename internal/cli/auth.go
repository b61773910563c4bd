package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage your account on the letters server.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the letters server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and forget the stored session",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE:  runRegister,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)

	loginCmd.Flags().String("email", "", "Email to log in with (prompts if omitted)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	if email == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Email: ")
		email, _ = reader.ReadString('\n')
		email = strings.TrimSpace(email)
	}

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Println("🔄 Logging in...")
	if err := client.Login(context.Background(), email, password); err != nil {
		return err
	}

	fmt.Println("✅ Logged in successfully!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	_, sessions, err := newAPIClient()
	if err != nil {
		return err
	}

	if !sessions.IsAuthenticated() {
		fmt.Println("Not logged in.")
		return nil
	}

	if err := sessions.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	client, _, err := newAPIClient()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Print("Confirm Password: ")
	confirmBytes, _ := term.ReadPassword(int(syscall.Stdin))
	confirm := string(confirmBytes)
	fmt.Println()

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}
	if msg := checkPassword(password); msg != "" {
		return fmt.Errorf("%s", msg)
	}

	fmt.Println("🔄 Creating account...")
	if err := client.Register(context.Background(), email, password); err != nil {
		return err
	}

	// Log in right away so the first list/sign call works
	if err := client.Login(context.Background(), email, password); err != nil {
		fmt.Println("✅ Account created. Run 'carta auth login' to log in.")
		return nil
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}

// checkPassword mirrors the server's password policy so the user learns about
// a weak password before the request goes out.
func checkPassword(pw string) string {
	if len(pw) < 8 {
		return "password must be at least 8 characters"
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return "password must contain an uppercase letter, a lowercase letter and a digit"
	}
	return ""
}
