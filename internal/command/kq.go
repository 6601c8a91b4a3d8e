// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/kmsctl/kmsctl/internal/kms"
	"github.com/kmsctl/kmsctl/internal/meta"
	"github.com/kmsctl/kmsctl/internal/reconcile"
)

// kqDefaultAttrs specifies the default attributes displayed for keys in the
// "kq" command output.
var kqDefaultAttrs = []string{".id", "Manager", "Enabled", "Eligible", "Reason"}

// kqCommandAction is the action handler for the "kq" subcommand. It lists
// every key visible to the caller along with its classification. The scan is
// read-only; nothing is written back to KMS.
func kqCommandAction(ctx context.Context, cmd *cli.Command) error {
	fn := func(ctx context.Context, cmd *cli.Command) ([]*kms.KeyDetail, error) {
		client, _, err := InitKeyQuery(ctx, cmd)
		if err != nil {
			return nil, err
		}

		ids, err := kms.ListKeyIDs(ctx, client)
		if err != nil {
			return nil, err
		}

		return kms.DescribeAll(ctx, client, ids, cmd.Int("parallelism")), nil
	}

	return NewQueryActionRunner(
		"kq",
		reflect.TypeOf(kms.KeyDetail{}),
		kqDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// kqCommandBuilder constructs the cli.Command for "kq", wiring metadata,
// flags, and action handlers.
func kqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "kq",
		Usage:     "key query",
		UsageText: "kmsctl kq [options]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "bound on concurrent key lookups",
				Value: reconcile.DefaultParallelism,
			},
			NewRegionFlag("kq", meta.Config.Source),
			NewProfileFlag("kq", meta.Config.Source),
		},
		Action: kqCommandAction,
		Meta:   meta,
	}).Build()
}
