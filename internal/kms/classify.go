// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package kms

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	kmsv2 "github.com/aws/aws-sdk-go-v2/service/kms"

	"github.com/kmsctl/kmsctl/internal/log"
	"github.com/kmsctl/kmsctl/internal/policy"
)

// defaultPolicyName is the only policy name KMS currently supports.
const defaultPolicyName = "default"

// Describe fetches a key's metadata and policy and classifies it. An
// unparsable or missing policy document is a classification outcome, not an
// error; only failed provider calls surface as errors.
func Describe(ctx context.Context, client Client, keyID string) (*KeyDetail, error) {
	meta, err := client.DescribeKey(ctx, &kmsv2.DescribeKeyInput{KeyId: awsv2.String(keyID)})
	if err != nil {
		return nil, fmt.Errorf("failed to describe key %s: %w", keyID, err)
	}
	if meta.KeyMetadata == nil {
		return nil, fmt.Errorf("describe key %s returned no metadata", keyID)
	}

	detail := &KeyDetail{
		KeyID:        keyID,
		Origin:       meta.KeyMetadata.Origin,
		Enabled:      meta.KeyMetadata.Enabled,
		Manager:      meta.KeyMetadata.KeyManager,
		CreationDate: meta.KeyMetadata.CreationDate,
	}
	if meta.KeyMetadata.Arn != nil {
		detail.Arn = *meta.KeyMetadata.Arn
	}
	if meta.KeyMetadata.Description != nil {
		detail.Description = *meta.KeyMetadata.Description
	}

	pol, err := client.GetKeyPolicy(ctx, &kmsv2.GetKeyPolicyInput{
		KeyId:      awsv2.String(keyID),
		PolicyName: awsv2.String(defaultPolicyName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get key policy for %s: %w", keyID, err)
	}
	if pol.Policy != nil {
		detail.Policy = *pol.Policy
	}

	parsed := false
	if detail.Policy != "" {
		doc, perr := policy.Parse(detail.Policy)
		if perr != nil {
			log.Debugf("policy parse failed: key=%s, err=%v", keyID, perr)
		} else {
			detail.Doc = doc
			parsed = true
		}
	}

	detail.Eligible, detail.Reason = Eligibility(parsed, detail.Origin, detail.Enabled, detail.Manager)
	if !detail.Eligible {
		log.Debugf("key not eligible: key=%s, reason=%s", keyID, detail.Reason)
	}

	return detail, nil
}
