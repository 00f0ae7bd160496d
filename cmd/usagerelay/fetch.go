package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/usagerelay/internal/domain/snapshot"
)

func newFetchCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Run a single fetch cycle and print the snapshot /usage would return",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap(flags)
			if err != nil {
				return err
			}
			defer func() { _ = rt.logger.Sync() }()

			rt.warnIfPlaceholderCredentials()

			snap := rt.poller.RunOnce(cmd.Context())
			doc, err := snap.MarshalJSON()
			if err != nil {
				return fmt.Errorf("encode snapshot: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(doc))

			if snap.Kind() != snapshot.KindSuccess {
				return errors.New("fetch failed: " + snap.Reason())
			}
			return nil
		},
	}
}
