// Package cli holds the cobra commands shared by the specgen binary and by
// programs that declare their models in Go and call specgen.Main.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blimu-dev/specgen/pkg/model"
)

// NewRootCommand builds the command tree. The generate command is only
// available when app is not nil.
func NewRootCommand(use string, app *model.Application) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           use,
		Short:         "Generate JSON Schema, OpenAPI and Java sources from schema models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	addVerboseFlag(root.PersistentFlags(), &verbose)

	if app != nil {
		root.AddCommand(newGenerateCmd(app, &verbose))
	}
	root.AddCommand(newValidateCmd())
	root.AddCommand(newServeCmd(&verbose))
	return root
}

func addVerboseFlag(fs *pflag.FlagSet, verbose *bool) {
	fs.BoolVarP(verbose, "verbose", "v", os.Getenv("SPECGEN_VERBOSE") == "true", "Enable debug logging")
}

func newGenerateCmd(app *model.Application, verbose *bool) *cobra.Command {
	var p RunGenerateParams

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate every configured target",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := NewLogger(cmd.ErrOrStderr(), *verbose)
			results, err := RunGenerate(cmd.Context(), p, app, logger)
			if err != nil {
				return err
			}
			total := 0
			for _, r := range results {
				total += r.Written
			}
			logger.Info("generation finished", "targets", len(results), "files", total)
			return nil
		},
	}

	cmd.Flags().StringVarP(&p.ConfigPath, "config", "c", "specgen.yaml", "Path to specgen.yaml config")
	cmd.Flags().StringVar(&p.Target, "target", "", "Generate only the named target from config")
	cmd.Flags().StringVar(&p.OutDir, "out", "", "Override the configured output root")

	return cmd
}

func newValidateCmd() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate an OpenAPI document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunValidate(input)
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "OpenAPI document (yaml/json file or URL)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newServeCmd(verbose *bool) *cobra.Command {
	var p RunServeParams
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an OpenAPI document with a Swagger UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunServe(cmd.Context(), p, NewLogger(cmd.ErrOrStderr(), *verbose))
		},
	}
	cmd.Flags().StringVar(&p.Input, "input", "", "OpenAPI document (yaml/json file)")
	cmd.Flags().StringVar(&p.Addr, "addr", ":8080", "Listen address")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
