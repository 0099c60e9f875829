package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wichert/goradius/internal/radius"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Send a Status-Server request",
		Long:  "Sends a Status-Server request with a Message-Authenticator, mirroring pyrad's example/status.py.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			host, client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close() //nolint:errcheck // best-effort cleanup on CLI exit

			req := host.CreateAuthPacket(radius.CodeStatusServer)
			req.AddMessageAuthenticator()

			fmt.Println("Sending Status-Server request")
			reply, err := client.Exchange(context.Background(), req)
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}

			fmt.Println("Attributes returned by server:")
			printAttributes(reply, []string{"Reply-Message"})
			return nil
		},
	}
	return cmd
}
