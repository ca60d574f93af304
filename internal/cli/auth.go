package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the inventory API",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE:  runWhoami,
}

func runLogin(cmd *cobra.Command, args []string) error {
	_, store, _, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Println("🔄 Logging in...")
	sess, err := store.Authenticate(username, password)
	if err != nil {
		return err
	}

	fmt.Printf("✅ Logged in as %s. Session valid until %s.\n",
		sess.User.Username, sess.ExpiresAt.Local().Format("15:04"))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	_, store, _, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	if !store.IsValid() {
		fmt.Println("Not logged in.")
		return nil
	}

	store.Terminate()
	fmt.Println("✅ Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	_, store, _, cleanup, err := buildDeps()
	if err != nil {
		return err
	}
	defer cleanup()

	user, ok := store.CurrentUser()
	if !ok {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Printf("👤 %s (%s)\n", user.Username, user.Role)
	return nil
}
