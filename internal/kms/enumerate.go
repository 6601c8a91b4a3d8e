// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package kms

import (
	"context"
	"fmt"

	kmsv2 "github.com/aws/aws-sdk-go-v2/service/kms"

	"github.com/kmsctl/kmsctl/internal/log"
)

// ListKeyIDs returns the IDs of every key visible to the caller in the
// configured region, customer- and AWS-managed alike. No filtering happens
// here; classification is a separate pass.
func ListKeyIDs(ctx context.Context, client Client) ([]string, error) {
	var ids []string

	paginator := kmsv2.NewListKeysPaginator(client, &kmsv2.ListKeysInput{})
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list keys: %w", err)
		}
		for _, key := range output.Keys {
			if key.KeyId != nil {
				ids = append(ids, *key.KeyId)
			}
		}
	}

	log.Debugf("keys listed: count=%d", len(ids))
	return ids, nil
}
