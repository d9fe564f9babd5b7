// Command shellsim drives the access guard the way a browser tab would:
// it holds a location, a session and a subscription, and prints every
// redirect and view change the guard produces.
//
// Usage:
//
//	shellsim --path /app --token <jwt>
//	shellsim --offline --subscription past_due --profiles 0
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	token        string
	path         string
	timeout      time.Duration
	countdown    time.Duration
	settle       time.Duration
	offline      bool
	subscription string
	profiles     int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "shellsim",
		Short: "Simulate a JetSuite tab against the access guard",
		Long: `Opens a simulated tab at --path and reads commands from stdin:

  go <path>        navigate (link click or address bar)
  login <token>    sign in; offline tokens are "user-id[:email]"
  logout           sign out
  state            print the current facts
  quit             close the tab`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.token, "token", "", "access token of an existing session")
	flags.StringVar(&opts.path, "path", "/", "location the tab opens at")
	flags.DurationVar(&opts.timeout, "timeout", 5*time.Second, "session probe timeout")
	flags.DurationVar(&opts.countdown, "countdown", 3*time.Second, "entitlement gate countdown")
	flags.DurationVar(&opts.settle, "settle", 10*time.Second, "how long to wait for the guard to settle after each command")
	flags.BoolVar(&opts.offline, "offline", false, "use in-memory subscription and profile data instead of the database")
	flags.StringVar(&opts.subscription, "subscription", "active", "offline subscription status for every user (none for no row)")
	flags.IntVar(&opts.profiles, "profiles", 1, "offline completed business profile count for every user")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "shellsim:", err)
		os.Exit(1)
	}
}
