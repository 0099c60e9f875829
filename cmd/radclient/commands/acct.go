package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wichert/goradius/internal/radclient"
	"github.com/wichert/goradius/internal/radius"
)

func acctCmd() *cobra.Command {
	var (
		username     string
		nasID        string
		sessionID    string
		inputOctets  uint32
		outputOctets uint32
		sessionTime  uint32
		terminate    string
	)

	cmd := &cobra.Command{
		Use:   "acct",
		Short: "Send an accounting Start/Stop pair",
		Long:  "Sends an Accounting-Request with Acct-Status-Type Start, then Stop, mirroring pyrad's example/acct.py.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			host, client, err := newClient()
			if err != nil {
				return err
			}
			defer client.Close() //nolint:errcheck // best-effort cleanup on CLI exit
			ctx := context.Background()

			base := host.CreateAcctPacket(radius.CodeAccountingRequest)
			if username != "" {
				if err := base.Set("User-Name", username); err != nil {
					return fmt.Errorf("set user-name: %w", err)
				}
			}
			if nasID != "" {
				if err := base.Set("NAS-Identifier", nasID); err != nil {
					return fmt.Errorf("set nas-identifier: %w", err)
				}
			}
			if sessionID != "" {
				if err := base.Set("Acct-Session-Id", sessionID); err != nil {
					return fmt.Errorf("set acct-session-id: %w", err)
				}
			}

			fmt.Println("Sending accounting start packet")
			if err := sendAcctUpdate(ctx, client, base.Clone(), "Start"); err != nil {
				return err
			}

			fmt.Println("Sending accounting stop packet")
			stop := base.Clone()
			if err := stop.Set("Acct-Input-Octets", inputOctets); err != nil {
				return fmt.Errorf("set acct-input-octets: %w", err)
			}
			if err := stop.Set("Acct-Output-Octets", outputOctets); err != nil {
				return fmt.Errorf("set acct-output-octets: %w", err)
			}
			if err := stop.Set("Acct-Session-Time", sessionTime); err != nil {
				return fmt.Errorf("set acct-session-time: %w", err)
			}
			if terminate != "" {
				if err := stop.Set("Acct-Terminate-Cause", terminate); err != nil {
					return fmt.Errorf("set acct-terminate-cause: %w", err)
				}
			}
			return sendAcctUpdate(ctx, client, stop, "Stop")
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&username, "username", "", "User-Name")
	flags.StringVar(&nasID, "nas-identifier", "", "NAS-Identifier")
	flags.StringVar(&sessionID, "session-id", "", "Acct-Session-Id")
	flags.Uint32Var(&inputOctets, "input-octets", 0, "Acct-Input-Octets reported on the stop record")
	flags.Uint32Var(&outputOctets, "output-octets", 0, "Acct-Output-Octets reported on the stop record")
	flags.Uint32Var(&sessionTime, "session-time", 0, "Acct-Session-Time reported on the stop record")
	flags.StringVar(&terminate, "terminate-cause", "User-Request", "Acct-Terminate-Cause reported on the stop record")

	return cmd
}

// sendAcctUpdate sets Acct-Status-Type to status and exchanges req.
func sendAcctUpdate(ctx context.Context, client *radclient.Client, req *radius.Packet, status string) error {
	if err := req.Set("Acct-Status-Type", status); err != nil {
		return fmt.Errorf("set acct-status-type: %w", err)
	}
	if _, err := client.Exchange(ctx, req); err != nil {
		return fmt.Errorf("acct %s: %w", status, err)
	}
	return nil
}
