package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/usagerelay/internal/domain/usage"
	usagerelay "github.com/kailas-cloud/usagerelay/pkg/sdk"
)

func newStatusCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running server and print its health and headline usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := usagerelay.New(addr, usagerelay.WithTimeout(timeout))
			if err != nil {
				return err
			}

			health, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			u, err := client.Usage(cmd.Context())
			if err != nil {
				return fmt.Errorf("usage: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "server:   %s (has_data=%t)\n", health.Status, health.HasData)
			if !u.UpdatedAt.IsZero() {
				fmt.Fprintf(out, "updated:  %s\n", u.UpdatedAt.Local().Format(time.RFC1123))
			}

			switch u.State {
			case usagerelay.StateStarting:
				fmt.Fprintln(out, "usage:    waiting for first fetch")
			case usagerelay.StateFailed:
				fmt.Fprintf(out, "usage:    error: %s\n", u.Error)
			case usagerelay.StateReady:
				h, err := usage.ParseHeadline(u.Payload)
				if err != nil {
					return fmt.Errorf("parse usage: %w", err)
				}
				for _, w := range usage.HeadlineWindows {
					v := h.Format(w)
					if v != usage.Placeholder {
						v += "%"
					}
					fmt.Fprintf(out, "%-18s %s\n", string(w)+":", v)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://127.0.0.1:8080", "base URL of the running server")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	return cmd
}
