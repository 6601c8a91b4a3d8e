// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"

	"github.com/kmsctl/kmsctl/internal/kms"
	"github.com/kmsctl/kmsctl/internal/meta"
	"github.com/kmsctl/kmsctl/internal/reconcile"
)

// pqDefaultAttrs specifies the default attributes displayed for policy
// statements in the "pq" command output.
var pqDefaultAttrs = []string{".id", "KeyId", "Sid", "Effect", "Action"}

// StatementRow is one key policy statement flattened for output. Principal,
// Action and Resource keep their document form, so a value may render as a
// JSON string or array depending on how the policy was written.
type StatementRow struct {
	KeyID     string `json:"KeyId"`
	Index     int    `json:"Index"`
	Sid       string `json:"Sid,omitempty"`
	Effect    string `json:"Effect"`
	Principal string `json:"Principal,omitempty"`
	Action    string `json:"Action,omitempty"`
	Resource  string `json:"Resource,omitempty"`
}

// Identity returns the row identifier, a key ID qualified by the statement's
// position in the document.
func (s *StatementRow) Identity() string {
	return fmt.Sprintf("%s/%d", s.KeyID, s.Index)
}

// pqCommandAction is the action handler for the "pq" subcommand. It lists
// the policy statements of the named key, or of every key visible to the
// caller when no KeyId argument is given, one row per statement.
func pqCommandAction(ctx context.Context, cmd *cli.Command) error {
	fn := func(ctx context.Context, cmd *cli.Command) ([]*StatementRow, error) {
		client, _, err := InitKeyQuery(ctx, cmd)
		if err != nil {
			return nil, err
		}

		ids := cmd.Args().Slice()
		if len(ids) == 0 {
			ids, err = kms.ListKeyIDs(ctx, client)
			if err != nil {
				return nil, err
			}
		}

		details := kms.DescribeAll(ctx, client, ids, cmd.Int("parallelism"))

		var rows []*StatementRow
		for _, detail := range details {
			rows = append(rows, statementRows(detail)...)
		}
		return rows, nil
	}

	return NewQueryActionRunner(
		"pq",
		reflect.TypeOf(StatementRow{}),
		pqDefaultAttrs,
		fn,
	).Run(ctx, cmd)
}

// statementRows flattens a key's policy document into one row per statement.
// A document whose Statement is a single object rather than an array still
// yields one row; gjson normalizes both shapes.
func statementRows(detail *kms.KeyDetail) []*StatementRow {
	var rows []*StatementRow

	statements := gjson.Get(detail.Policy, "Statement")
	if !statements.Exists() {
		return rows
	}

	flatten := func(idx int, stmt gjson.Result) {
		rows = append(rows, &StatementRow{
			KeyID:     detail.KeyID,
			Index:     idx,
			Sid:       stmt.Get("Sid").String(),
			Effect:    stmt.Get("Effect").String(),
			Principal: stmt.Get("Principal").Raw,
			Action:    stmt.Get("Action").Raw,
			Resource:  stmt.Get("Resource").Raw,
		})
	}

	if statements.IsArray() {
		for i, stmt := range statements.Array() {
			flatten(i, stmt)
		}
	} else {
		flatten(0, statements)
	}

	return rows
}

// pqCommandBuilder constructs the cli.Command for "pq", wiring metadata,
// flags, and action/validator handlers.
func pqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "pq",
		Usage:     "policy query",
		UsageText: "kmsctl pq [KeyId] [options]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "parallelism",
				Usage: "bound on concurrent key lookups",
				Value: reconcile.DefaultParallelism,
			},
			NewRegionFlag("pq", meta.Config.Source),
			NewProfileFlag("pq", meta.Config.Source),
		},
		Action: pqCommandAction,
		Meta:   meta,
	}).Build()
}
