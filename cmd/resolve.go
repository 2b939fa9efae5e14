package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/contact-scout/internal/model"
	"github.com/sells-group/contact-scout/internal/profile"
)

var resolveFormat string

var resolveCmd = &cobra.Command{
	Use:   "resolve <handle>",
	Short: "Resolve contact facts for a single handle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		handle := args[0]

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		resolver, pageCache := initResolver(st)
		defer func() {
			if err := pageCache.Flush(ctx); err != nil {
				zap.L().Warn("page cache flush failed", zap.Error(err))
			}
		}()

		run, err := st.CreateRun(ctx, handle)
		if err != nil {
			return eris.Wrap(err, "create run")
		}
		if err := st.UpdateRunStatus(ctx, run.ID, model.RunStatusResolving); err != nil {
			return eris.Wrap(err, "update run status")
		}

		result, err := resolver.ResolveWithProgress(ctx, handle, func(status model.RunStatus) {
			if err := st.UpdateRunStatus(ctx, run.ID, status); err != nil {
				zap.L().Warn("update run status failed", zap.String("run_id", run.ID), zap.Error(err))
			}
		})
		if err != nil {
			status := model.RunStatusFailed
			if eris.Is(err, profile.ErrNotFound) {
				status = model.RunStatusNotFound
			}
			if failErr := st.FailRun(ctx, run.ID, status, err.Error()); failErr != nil {
				zap.L().Warn("record run failure", zap.Error(failErr))
			}
			return eris.Wrapf(err, "resolve %s", handle)
		}

		if err := st.UpdateRunResult(ctx, run.ID, result); err != nil {
			return eris.Wrap(err, "update run result")
		}

		zap.L().Info("resolution complete",
			zap.String("handle", handle),
			zap.String("primary_website", result.PrimaryWebsite),
			zap.String("primary_email", result.PrimaryEmail),
			zap.Int("phones", len(result.Bundle.Phones)),
			zap.Int("addresses", len(result.Bundle.Addresses)),
		)

		return printResult(result)
	},
}

func printResult(result *model.ResolvedProfile) error {
	switch resolveFormat {
	case "yaml":
		out, err := yaml.Marshal(result)
		if err != nil {
			return eris.Wrap(err, "marshal result")
		}
		_, err = os.Stdout.Write(out)
		return err
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "json", "output format (json, yaml)")
	rootCmd.AddCommand(resolveCmd)
}
