package main

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/rexliu/navtree/pkg/ipc"
)

func newSnapshotCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the daemon's snapshot of every product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := app.context(cmd)
			defer cancel()
			client, _, err := app.dial(ctx)
			if err != nil {
				return err
			}
			defer client.Close()
			var snap ipc.Snapshot
			if err := client.Call(ctx, ipc.MethodGetSnapshot, nil, &snap); err != nil {
				return err
			}
			return printJSON(cmd, snap)
		},
	}
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream tree_changed events from the daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dialCtx, cancel := app.context(cmd)
			client, _, err := app.dial(dialCtx)
			cancel()
			if err != nil {
				return err
			}
			defer client.Close()

			events, err := client.Subscribe(cmd.Context(), ipc.MethodSubscribe, nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Subscribed to tree_changed events (Ctrl+C to exit)")
			for frame := range events {
				var event ipc.Event
				if err := json.Unmarshal(frame, &event); err != nil {
					fmt.Fprintln(out, string(frame))
					continue
				}
				fmt.Fprintf(out, "%s %s %s %s\n",
					time.UnixMilli(event.At).Format(time.RFC3339), event.Type, event.Method, event.NodeID)
			}
			return nil
		},
	}
}

func newVCSCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vcs",
		Short: "Trigger Git push or pull via the daemon",
	}
	for _, sub := range []struct{ use, method, short string }{
		{"push", ipc.MethodVCSPush, "Push snapshot history to the configured remote"},
		{"pull", ipc.MethodVCSPull, "Fast-forward snapshot history from the remote"},
	} {
		method := sub.method
		cmd.AddCommand(&cobra.Command{
			Use:   sub.use,
			Short: sub.short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, cancel := app.context(cmd)
				defer cancel()
				return app.call(ctx, cmd, method)
			},
		})
	}
	return cmd
}

func (a *App) call(ctx context.Context, cmd *cobra.Command, method string) error {
	client, _, err := a.dial(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	var res ipc.VCSResult
	if err := client.Call(ctx, method, nil, &res); err != nil {
		return err
	}
	return printJSON(cmd, res)
}

func printJSON(cmd *cobra.Command, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return nil
}
