// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"reflect"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/urfave/cli/v3"

	"github.com/kmsctl/kmsctl/internal/attrs"
	"github.com/kmsctl/kmsctl/internal/aws"
	"github.com/kmsctl/kmsctl/internal/kms"
	"github.com/kmsctl/kmsctl/internal/meta"
	"github.com/kmsctl/kmsctl/internal/output"
)

// Identifiable is implemented by result row types that carry a unique
// identifier. The identifier becomes the row's id in the emitted document,
// addressable from --attrs as ".id".
type Identifiable interface {
	Identity() string
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// DumpSchemaIfRequested writes the JSON schema for the provided type to stdout
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t, nil)
		return true
	}
	return false
}

// EmitDataSlice wraps a slice of result rows in the data envelope consumed by
// the common output routine. Each row is marshaled into an attributes object
// alongside its id, so --attrs keys address either the row root (".id") or
// the attributes ("Manager").
func EmitDataSlice[T Identifiable](results []T, al attrs.AttrList, cmd *cli.Command) error {
	rows := make([]map[string]any, 0, len(results))
	for _, r := range results {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		var attributes map[string]any
		if err := json.Unmarshal(b, &attributes); err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		rows = append(rows, map[string]any{
			"id":         r.Identity(),
			"attributes": attributes,
		})
	}

	var raw bytes.Buffer
	if err := json.NewEncoder(&raw).Encode(map[string]any{"data": rows}); err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	output.SliceDiceSpit(raw, al, cmd, "data", os.Stdout, nil)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// InitKeyQuery resolves the AWS config from the command's region/profile
// flags and constructs the KMS client every key command starts from.
func InitKeyQuery(ctx context.Context, cmd *cli.Command) (kms.Client, awsv2.Config, error) {
	cfg, err := aws.LoadAWSConfig(ctx,
		aws.WithProfile(cmd.String("profile")),
		aws.WithRegion(cmd.String("region")),
	)
	if err != nil {
		return nil, awsv2.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return aws.NewKMS(cfg), cfg, nil
}

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr kmsctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "kmsctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}
