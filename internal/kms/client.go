// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package kms

import (
	"context"

	kmsv2 "github.com/aws/aws-sdk-go-v2/service/kms"
)

// Client is the slice of the KMS API surface kmsctl depends on. The concrete
// *kms.Client from the SDK satisfies it; tests substitute fakes.
type Client interface {
	ListKeys(ctx context.Context, params *kmsv2.ListKeysInput, optFns ...func(*kmsv2.Options)) (*kmsv2.ListKeysOutput, error)
	DescribeKey(ctx context.Context, params *kmsv2.DescribeKeyInput, optFns ...func(*kmsv2.Options)) (*kmsv2.DescribeKeyOutput, error)
	GetKeyPolicy(ctx context.Context, params *kmsv2.GetKeyPolicyInput, optFns ...func(*kmsv2.Options)) (*kmsv2.GetKeyPolicyOutput, error)
	PutKeyPolicy(ctx context.Context, params *kmsv2.PutKeyPolicyInput, optFns ...func(*kmsv2.Options)) (*kmsv2.PutKeyPolicyOutput, error)
}
