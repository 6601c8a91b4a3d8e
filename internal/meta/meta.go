// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/kmsctl/kmsctl/internal/config"
)

// TargetSpec holds the resolved AWS target for a command: the region to
// operate in and the shared config profile to resolve credentials with.
// Either may be empty, in which case the SDK's default resolution chain
// (env, shared config, IMDS) applies.
type TargetSpec struct {
	Region  string
	Profile string
}

// Meta contains runtime metadata shared by commands. It carries CLI arguments,
// loaded configuration, context, the resolved AWS target, and the starting
// working directory.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	TargetSpec
	StartingDir string
}
