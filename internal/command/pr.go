// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/kmsctl/kmsctl/internal/aws"
	"github.com/kmsctl/kmsctl/internal/meta"
	"github.com/kmsctl/kmsctl/internal/reconcile"
)

// prDefaultAttrs specifies the default attributes displayed for outcomes in
// the "pr" command output.
var prDefaultAttrs = []string{".id", "Status", "Reason"}

// prCommandAction is the action handler for the "pr" subcommand. It runs one
// reconciliation pass: enumerate keys, classify them, and append the account
// administration statement to every eligible key's policy. Per-key failures
// do not stop the run; they surface in the outcomes and the exit code.
func prCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "pr") {
		return nil
	}
	if DumpSchemaIfRequested(cmd, reflect.TypeOf(reconcile.Outcome{})) {
		return nil
	}

	attrs := BuildAttrs(cmd, prDefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client, cfg, err := InitKeyQuery(ctx, cmd)
	if err != nil {
		return err
	}
	if cfg.Region == "" {
		return fmt.Errorf("no region resolved; set --region or a profile with one")
	}

	accountID, err := aws.CallerAccountID(ctx, aws.NewSTS(cfg))
	if err != nil {
		return err
	}

	reconciler, err := reconcile.New(client, reconcile.Options{
		AccountID:   accountID,
		Region:      cfg.Region,
		Parallelism: cmd.Int("parallelism"),
		DryRun:      cmd.Bool("dry-run"),
		Dedupe:      cmd.Bool("dedupe"),
	})
	if err != nil {
		return err
	}

	summary, outcomes, err := reconciler.Run(ctx)
	if err != nil {
		return err
	}

	cmd.Metadata["footer"] = summary.String()
	if err := EmitDataSlice(outcomes, attrs, cmd); err != nil {
		return err
	}

	if summary.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d eligible keys failed to update", summary.Failed, summary.Eligible), 3)
	}
	return nil
}

// prCommandBuilder constructs the cli.Command for "pr", wiring metadata,
// flags, and action handlers.
func prCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "pr",
		Usage:     "policy reconcile",
		UsageText: "kmsctl pr [options]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "report what would change without writing policies",
				HideDefault: true,
			},
			&cli.BoolFlag{
				Name:        "dedupe",
				Usage:       "skip keys whose policy already carries the administration statement",
				HideDefault: true,
			},
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "bound on concurrent key updates",
				Value: reconcile.DefaultParallelism,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "overall deadline for the run, 0 for none",
				Value: 5 * time.Minute,
			},
			NewRegionFlag("pr", meta.Config.Source),
			NewProfileFlag("pr", meta.Config.Source),
		},
		Action: prCommandAction,
		Meta:   meta,
	}).Build()
}
