// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package kms

import (
	"context"

	"github.com/sourcegraph/conc/iter"

	"github.com/kmsctl/kmsctl/internal/log"
)

// DescribeAll classifies every listed key with bounded parallelism. The scan
// is best effort: keys whose describe or policy calls fail are dropped from
// the result with a debug log entry. Result order follows the input.
func DescribeAll(ctx context.Context, client Client, ids []string, parallelism int) []*KeyDetail {
	mapper := iter.Mapper[string, *KeyDetail]{MaxGoroutines: parallelism}
	details := mapper.Map(ids, func(id *string) *KeyDetail {
		detail, err := Describe(ctx, client, *id)
		if err != nil {
			log.Debugf("describe failed: key=%s, err=%v", *id, err)
			return nil
		}
		return detail
	})

	results := make([]*KeyDetail, 0, len(details))
	for _, d := range details {
		if d != nil {
			results = append(results, d)
		}
	}
	return results
}
