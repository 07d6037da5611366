package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/praveenpotnurii/BifrostLink/pkg/services"
)

func newShellCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive console (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}
}

func runShell(cmd *cobra.Command, opts *rootOptions) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	ws := a.workspace(true)
	defer ws.Close()

	sh := newShell(ws, newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()), cmd.OutOrStdout(), a.logger)
	return sh.Run(cmd.Context())
}

func newExecCommand(opts *rootOptions) *cobra.Command {
	var databaseID int

	cmd := &cobra.Command{
		Use:   "exec --database <id> <sql>",
		Short: "Execute one query and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ws := a.workspace(false)
			defer ws.Close()

			if a.cfg.Console.RequireConnected {
				probe := services.NewConnectivityProbe(a.client, a.cfg.Console.ProbeInterval, a.logger)
				if report := probe.Check(cmd.Context()); !report.Connected {
					return fmt.Errorf("%s (%s)", services.MsgAgentNotConnected, report.Message)
				}
			}

			var target *int
			if cmd.Flags().Changed("database") {
				target = &databaseID
			}

			execErr := ws.Console.Execute(cmd.Context(), strings.Join(args, " "), target)
			if execErr != nil {
				return errors.New(ws.Console.State().Error)
			}
			return renderConsole(cmd.OutOrStdout(), ws.Console.State())
		},
	}
	cmd.Flags().IntVarP(&databaseID, "database", "d", 0, "Database ID to run against")
	return cmd
}

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the gateway's agent is connected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			probe := services.NewConnectivityProbe(a.client, a.cfg.Console.ProbeInterval, a.logger)
			report := probe.Check(cmd.Context())
			if err := renderStatus(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.Connected {
				return fmt.Errorf("agent is not connected")
			}
			return nil
		},
	}
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "list <users|agents|databases>",
		Short:     "Fetch and print one collection",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(services.TabUsers), string(services.TabAgents), string(services.TabDatabases)},
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := services.ParseTab(args[0])
			if err != nil || tab == services.TabConsole {
				return fmt.Errorf("unknown collection %q (expected users, agents or databases)", args[0])
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ws := a.workspace(false)
			defer ws.Close()

			if err := fetchCollection(cmd.Context(), ws, tab); err != nil {
				return err
			}
			return renderCollection(cmd.OutOrStdout(), ws, tab)
		},
	}
}
