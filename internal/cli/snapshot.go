package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/avwizard/internal/store"
)

// InitResult is the payload of the init command.
type InitResult struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create or upgrade the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				v, err := a.store.SchemaVersion(ctx)
				if err != nil {
					return fail(a.out, "read schema version", err)
				}
				res := InitResult{Path: a.cfg.Store.Path, SchemaVersion: v}
				if a.out.Format == "json" {
					return a.out.Success(res)
				}
				green.Fprintf(a.out.Writer, "✓ Database ready: %s (schema v%d)\n", res.Path, res.SchemaVersion)
				return nil
			})
		},
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every collection to a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				snap, err := a.store.Export(ctx, time.Now())
				if err != nil {
					return fail(a.out, "export", err)
				}
				data, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return fail(a.out, "encode snapshot", err)
				}
				data = append(data, '\n')

				if output == "" || output == "-" {
					_, err := a.out.Writer.Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o600); err != nil {
					_ = a.out.Error(ErrCodeWriteFailed, fmt.Sprintf("write %s: %v", output, err), nil)
					return WrapExitError(ExitCommandError, "write snapshot", err)
				}
				green.Fprintf(a.out.GetErrWriter(), "✓ Exported %d collections to %s\n", len(snap.Collections), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Load a JSON snapshot written by export",
		Long: `Upsert every record in a snapshot. A snapshot naming a collection this
build does not know is rejected before anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(rootOpts, cmd, func(ctx context.Context, a *app) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fail(a.out, "read snapshot", err)
				}
				var snap store.Snapshot
				if err := json.Unmarshal(data, &snap); err != nil {
					_ = a.out.Error(ErrCodeInvalidInput, fmt.Sprintf("parse snapshot: %v", err), nil)
					return WrapExitError(ExitFailure, "parse snapshot", err)
				}
				n, err := a.store.Import(ctx, &snap)
				if err != nil {
					return fail(a.out, "import", err)
				}
				if a.out.Format == "json" {
					return a.out.Success(map[string]int{"records": n})
				}
				green.Fprintf(a.out.Writer, "✓ Imported %d records.\n", n)
				return nil
			})
		},
	}
}
