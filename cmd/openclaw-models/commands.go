package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jayy-77/openclaw/internal/core"
	"github.com/jayy-77/openclaw/internal/providers"
	"github.com/jayy-77/openclaw/internal/server"
	"github.com/jayy-77/openclaw/internal/version"
)

func newEnsureCmd(flags *globalFlags) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Write models.json if it is missing or out of date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			oc := a.cfg.OpenClawConfig()
			if mode != "" {
				oc.Models.Mode = mode
			}

			res, err := a.service.Ensure(cmd.Context(), oc)
			if err != nil {
				return err
			}

			status := "unchanged"
			if res.Wrote {
				status = "wrote"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", status, res.Path, strings.Join(res.Providers, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "merge with the existing file or replace it (merge|replace)")

	return cmd
}

func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Serve the models-config API",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			// Security check: warn if no master key is configured
			if a.cfg.Server.MasterKey == "" {
				slog.Warn("OPENCLAW_MASTER_KEY not set - models-config API is unauthenticated")
			} else {
				slog.Info("authentication enabled", "mode", "master_key")
			}

			srv := server.New(a.service, &server.Config{
				MasterKey:       a.cfg.Server.MasterKey,
				MetricsEnabled:  a.cfg.Metrics.Enabled,
				MetricsEndpoint: a.cfg.Metrics.Endpoint,
				Defaults:        a.cfg.OpenClawConfig(),
			})

			// Write once at startup so the file exists before the first request
			if _, err := a.service.Ensure(cmd.Context(), a.cfg.OpenClawConfig()); err != nil {
				slog.Error("initial models.json ensure failed", "error", err)
			}

			addr := ":" + a.cfg.Server.Port
			errCh := make(chan error, 1)
			go func() {
				slog.Info("starting server", "address", addr, "store", a.store.Location())
				errCh <- srv.Start(addr)
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				slog.Info("shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List providers enabled by environment variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var data [][]string
			for _, d := range providers.List() {
				models := strings.Join(core.ProviderConfig{Models: d.Models}.ModelIDs(), ",")
				if d.Discovered {
					models = "(discovered)"
				}
				data = append(data, []string{d.Key, strings.Join(d.EnvVars, ","), d.BaseURL, models})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"PROVIDER", "ENV", "BASE URL", "MODELS"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetAutoWrapText(false)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()

			return nil
		},
	}
}

func newEnvCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show which recognised environment variables are set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			var data [][]string
			for _, name := range providers.ImplicitEnvVars() {
				state := "unset"
				if _, ok := a.env.Lookup(name); ok {
					state = "set"
				}
				provider, _ := providers.ProviderForEnv(name)
				data = append(data, []string{name, state, provider})
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"VARIABLE", "STATE", "PROVIDER"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetHeaderLine(false)
			table.SetBorder(false)
			table.SetNoWhiteSpace(true)
			table.SetTablePadding("    ")
			table.AppendBulk(data)
			table.Render()

			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}
