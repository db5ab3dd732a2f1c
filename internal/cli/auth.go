package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bbachinco/yeoshin/internal/config"
	"github.com/bbachinco/yeoshin/internal/credentials"
	"github.com/bbachinco/yeoshin/internal/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the session tokens used for login",
	Long: `The crawl logs in by injecting session tokens as cookies. Tokens are
stored in the OS keyring when one is available, otherwise in a file under
your home directory. Environment variables always take precedence.`,
}

var authSetCmd = &cobra.Command{
	Use:   "set <token> <value>",
	Short: "Store one session token",
	Example: `  yeoshin auth set _kau 0123abcd
  yeoshin auth set access_token eyJhbGciOi...`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, value := args[0], args[1]
		if err := credentials.Store(name, value); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, ui.Success("Stored "+name))
		return nil
	},
}

var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show which session tokens have values",
	RunE: func(cmd *cobra.Command, args []string) error {
		set, _, err := credentials.Load()
		if err != nil && len(set) == 0 {
			set = credentials.Set{}
		}
		for _, name := range config.CookieNames {
			status := ui.Error("missing")
			if _, ok := set[name]; ok {
				status = ui.Success("set")
			}
			fmt.Printf("  %-14s %s\n", name, status)
		}
		return nil
	},
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete <token>...",
	Short: "Remove stored session tokens",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed []string
		for _, name := range args {
			if err := credentials.Delete(name); err != nil {
				failed = append(failed, name)
				fmt.Fprintln(os.Stderr, ui.Error(fmt.Sprintf("Could not delete %s: %v", name, err)))
				continue
			}
			fmt.Fprintln(os.Stderr, ui.Success("Deleted "+name))
		}
		if len(failed) > 0 {
			return fmt.Errorf("failed to delete: %s", strings.Join(failed, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authDeleteCmd)
}
