// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package kms

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	awspolicy "github.com/micahhausler/aws-iam-policy/policy"
)

// KeyDetail is a single key's classification snapshot: identity, the raw
// metadata the eligibility decision was made from, and the key policy both
// raw and parsed. Doc is nil when the policy document did not parse.
type KeyDetail struct {
	KeyID        string                `json:"KeyId"`
	Arn          string                `json:"Arn,omitempty"`
	Origin       types.OriginType      `json:"Origin"`
	Enabled      bool                  `json:"Enabled"`
	Manager      types.KeyManagerType  `json:"Manager"`
	Description  string                `json:"Description,omitempty"`
	CreationDate *time.Time            `json:"CreationDate,omitempty"`
	Policy       string                `json:"-"`
	Doc          *awspolicy.Policy     `json:"-"`
	Eligible     bool                  `json:"Eligible"`
	Reason       string                `json:"Reason,omitempty"`
}

// Eligibility decides whether a key may have its policy administered. All
// four predicates must hold; the returned reason names the first failing
// predicate for observability. Deterministic and side-effect free.
func Eligibility(parsed bool, origin types.OriginType, enabled bool, manager types.KeyManagerType) (bool, string) {
	switch {
	case !parsed:
		return false, "policy document did not parse"
	case origin != types.OriginTypeAwsKms:
		return false, "origin is " + string(origin)
	case !enabled:
		return false, "key is disabled"
	case manager != types.KeyManagerTypeCustomer:
		return false, "manager is " + string(manager)
	default:
		return true, ""
	}
}

// Identity returns the key's ID, used as the row identifier in emitted
// documents.
func (d *KeyDetail) Identity() string {
	return d.KeyID
}
