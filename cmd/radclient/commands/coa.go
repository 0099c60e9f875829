package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wichert/goradius/internal/radius"
)

func coaCmd() *cobra.Command {
	return coaLikeCmd("coa", radius.CodeCoARequest, "Send a CoA-Request")
}

func disconnectCmd() *cobra.Command {
	return coaLikeCmd("disconnect", radius.CodeDisconnectRequest, "Send a Disconnect-Request")
}

// coaLikeCmd builds the shared CoA-Request/Disconnect-Request command,
// mirroring pyrad's example/coa.py which dispatches on a --type flag;
// here the two packet codes get their own subcommand instead.
func coaLikeCmd(use string, code radius.Code, short string) *cobra.Command {
	var (
		sessionID string
		nasID     string
		username  string
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			host, client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close() //nolint:errcheck // best-effort cleanup on CLI exit

			req := host.CreateCoAPacket(code)
			if sessionID != "" {
				if err := req.Set("Acct-Session-Id", sessionID); err != nil {
					return fmt.Errorf("set acct-session-id: %w", err)
				}
			}
			if nasID != "" {
				if err := req.Set("NAS-Identifier", nasID); err != nil {
					return fmt.Errorf("set nas-identifier: %w", err)
				}
			}
			if username != "" {
				if err := req.Set("User-Name", username); err != nil {
					return fmt.Errorf("set user-name: %w", err)
				}
			}

			reply, err := client.Exchange(context.Background(), req)
			if err != nil {
				return fmt.Errorf("%s: %w", use, err)
			}

			fmt.Printf("Reply: %s\n", reply.Code)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&sessionID, "session-id", "", "Acct-Session-Id identifying the session to act on")
	flags.StringVar(&nasID, "nas-identifier", "", "NAS-Identifier")
	flags.StringVar(&username, "username", "", "User-Name")

	return cmd
}
