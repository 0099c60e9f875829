// Package commands implements the radclient CLI commands, mirroring
// pyrad's example/{auth,acct,client-coa,coa,status}.py scripts: one
// subcommand per packet family, sharing a server/secret/timeout/retries
// flag set.
package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wichert/goradius/internal/radclient"
	"github.com/wichert/goradius/internal/raddict"
	"github.com/wichert/goradius/internal/radius"
)

var (
	serverAddr string
	secret     string
	retries    int
	timeout    time.Duration
)

// errSecretRequired is returned when a subcommand is run without --secret.
var errSecretRequired = errors.New("--secret flag is required")

// rootCmd is the top-level cobra command for radclient.
var rootCmd = &cobra.Command{
	Use:   "radclient",
	Short: "Example RADIUS client",
	Long:  "radclient sends RADIUS auth/acct/coa/disconnect/status requests and prints the reply, mirroring pyrad's example scripts.",
	// Silence cobra's built-in usage/error printing so we control it.
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "127.0.0.1", "RADIUS server hostname or IP literal")
	rootCmd.PersistentFlags().StringVar(&secret, "secret", "", "shared secret (required)")
	rootCmd.PersistentFlags().IntVar(&retries, "retries", radclient.DefaultRetries, "number of send attempts before giving up")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", radclient.DefaultTimeout, "per-attempt wait for a reply")

	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(acctCmd())
	rootCmd.AddCommand(coaCmd())
	rootCmd.AddCommand(disconnectCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command against os.Args and exits with code 1
// on error.
func Execute() {
	os.Exit(Run(os.Args[1:]))
}

// Run executes the root command against args and returns the process
// exit code, without calling os.Exit itself — split out from Execute
// so integration tests can drive the CLI in-process (cobra's
// Command.SetArgs pattern) rather than exec'ing a built binary.
func Run(args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// newClient builds a radclient.Client against serverAddr/secret using
// the built-in standard dictionary (internal/raddict.Standard()), the
// same dictionary bootstrap the rest of this module's tests use in
// place of an external dictionary-file loader.
func newClient() (*radius.Host, *radclient.Client, error) {
	if secret == "" {
		return nil, nil, errSecretRequired
	}

	host := radius.NewHost(raddict.Standard(), []byte(secret))
	client, err := radclient.New(host, serverAddr,
		radclient.WithRetries(retries),
		radclient.WithTimeout(timeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create client: %w", err)
	}
	return host, client, nil
}

// printAttributes prints the values of each attribute in names that is
// present in pkt (other attributes are not printed), mirroring pyrad's
// example scripts' print_attributes helper.
func printAttributes(pkt *radius.Packet, names []string) {
	fmt.Println("Attributes:")
	for _, name := range names {
		vals, err := pkt.Get(name)
		if err != nil {
			continue
		}
		for _, v := range vals {
			fmt.Printf("  %s: %v\n", name, v)
		}
	}
}
