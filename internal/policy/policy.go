// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"encoding/json"
	"fmt"
	"net/url"

	awspolicy "github.com/micahhausler/aws-iam-policy/policy"
)

// DefaultVersion is applied when a source document carries no Version field.
const DefaultVersion = "2012-10-17"

// AdminSid identifies the statement appended by the merger.
const AdminSid = "AllowAccountAdministration"

// Parse decodes a raw key policy document. KMS GetKeyPolicy returns plain
// JSON, so the raw string is parsed as-is; unescaping it first would turn a
// legal "+" in a principal ARN into a space. IAM-family APIs return RFC 3986
// URL-encoded documents, so a failed raw parse falls back to one unescape
// pass before giving up.
func Parse(encoded string) (*awspolicy.Policy, error) {
	doc := awspolicy.Policy{}
	rawErr := json.Unmarshal([]byte(encoded), &doc)
	if rawErr == nil {
		return &doc, nil
	}

	if decoded, err := url.QueryUnescape(encoded); err == nil {
		doc = awspolicy.Policy{}
		if err := json.Unmarshal([]byte(decoded), &doc); err == nil {
			return &doc, nil
		}
	}

	return nil, fmt.Errorf("failed to unmarshal policy document: %w", rawErr)
}

// Serialize renders a policy document into the provider wire format.
func Serialize(doc *awspolicy.Policy) (string, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal policy document: %w", err)
	}
	return string(raw), nil
}

// AdminStatement is the fixed administration statement template: full kms:*
// for the account root, constrained to KMS requests arriving via services in
// the given region.
func AdminStatement(accountID string, region string) awspolicy.Statement {
	return awspolicy.Statement{
		Sid:       AdminSid,
		Effect:    "Allow",
		Principal: awspolicy.NewAWSPrincipal(fmt.Sprintf("arn:aws:iam::%s:root", accountID)),
		Action:    awspolicy.NewStringOrSlice(false, "kms:*"),
		Resource:  awspolicy.NewStringOrSlice(true, "*"),
		Condition: map[string]map[string]*awspolicy.ConditionValue{
			"StringEquals": {
				"kms:ViaService": awspolicy.NewConditionValueString(false, fmt.Sprintf("*.%s.amazonaws.com", region)),
			},
		},
	}
}

// Merge returns a new document consisting of the original's statements, in
// their original order, with the administration statement appended. The
// original document is not modified. Version carries through when present
// and defaults otherwise.
//
// Merge performs no deduplication: re-merging an already-merged document
// appends a second statement with the same Sid. Callers that want
// re-run safety check HasAdminStatement first.
func Merge(doc *awspolicy.Policy, accountID string, region string) *awspolicy.Policy {
	version := DefaultVersion
	if doc != nil && doc.Version != "" {
		version = doc.Version
	}

	var statements []awspolicy.Statement
	if doc != nil && doc.Statements != nil {
		statements = append(statements, doc.Statements.Values()...)
	}
	statements = append(statements, AdminStatement(accountID, region))

	merged := &awspolicy.Policy{
		Version:    version,
		Statements: awspolicy.NewStatementOrSlice(statements...),
	}
	if doc != nil {
		merged.Id = doc.Id
	}
	return merged
}

// HasAdminStatement reports whether the document already carries a statement
// with the administration Sid.
func HasAdminStatement(doc *awspolicy.Policy) bool {
	if doc == nil || doc.Statements == nil {
		return false
	}
	for _, s := range doc.Statements.Values() {
		if s.Sid == AdminSid {
			return true
		}
	}
	return false
}
