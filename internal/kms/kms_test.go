// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package kms

import (
	"context"
	"testing"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	kmsv2 "github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPolicy = `{"Version":"2012-10-17","Statement":[{"Sid":"Existing","Effect":"Allow","Principal":"*","Action":"kms:Decrypt","Resource":"*"}]}`

// fakeClient is an in-memory Client for tests. Keys maps key ID to its
// metadata; Policies maps key ID to its raw policy document.
type fakeClient struct {
	Keys     map[string]types.KeyMetadata
	Policies map[string]string
	Pages    [][]string // optional explicit ListKeys pagination
	PutErr   map[string]error
	Puts     map[string]string
}

func (f *fakeClient) ListKeys(ctx context.Context, params *kmsv2.ListKeysInput, optFns ...func(*kmsv2.Options)) (*kmsv2.ListKeysOutput, error) {
	pages := f.Pages
	if pages == nil {
		var ids []string
		for id := range f.Keys {
			ids = append(ids, id)
		}
		pages = [][]string{ids}
	}

	page := 0
	if params.Marker != nil {
		for i := range pages {
			if *params.Marker == markerFor(i) {
				page = i
				break
			}
		}
	}

	out := &kmsv2.ListKeysOutput{}
	for _, id := range pages[page] {
		out.Keys = append(out.Keys, types.KeyListEntry{KeyId: awsv2.String(id)})
	}
	if page+1 < len(pages) {
		out.Truncated = true
		out.NextMarker = awsv2.String(markerFor(page + 1))
	}
	return out, nil
}

func markerFor(page int) string { return "page-" + string(rune('0'+page)) }

func (f *fakeClient) DescribeKey(ctx context.Context, params *kmsv2.DescribeKeyInput, optFns ...func(*kmsv2.Options)) (*kmsv2.DescribeKeyOutput, error) {
	meta, ok := f.Keys[*params.KeyId]
	if !ok {
		return nil, &types.NotFoundException{}
	}
	meta.KeyId = params.KeyId
	return &kmsv2.DescribeKeyOutput{KeyMetadata: &meta}, nil
}

func (f *fakeClient) GetKeyPolicy(ctx context.Context, params *kmsv2.GetKeyPolicyInput, optFns ...func(*kmsv2.Options)) (*kmsv2.GetKeyPolicyOutput, error) {
	pol, ok := f.Policies[*params.KeyId]
	if !ok {
		return nil, &types.NotFoundException{}
	}
	return &kmsv2.GetKeyPolicyOutput{Policy: awsv2.String(pol)}, nil
}

func (f *fakeClient) PutKeyPolicy(ctx context.Context, params *kmsv2.PutKeyPolicyInput, optFns ...func(*kmsv2.Options)) (*kmsv2.PutKeyPolicyOutput, error) {
	if err := f.PutErr[*params.KeyId]; err != nil {
		return nil, err
	}
	if f.Puts == nil {
		f.Puts = map[string]string{}
	}
	f.Puts[*params.KeyId] = *params.Policy
	return &kmsv2.PutKeyPolicyOutput{}, nil
}

// TestEligibility verifies the predicate over the full input space and that
// repeated evaluation is stable.
func TestEligibility(t *testing.T) {
	tests := []struct {
		name    string
		parsed  bool
		origin  types.OriginType
		enabled bool
		manager types.KeyManagerType
		want    bool
	}{
		{
			name:    "all predicates hold",
			parsed:  true,
			origin:  types.OriginTypeAwsKms,
			enabled: true,
			manager: types.KeyManagerTypeCustomer,
			want:    true,
		},
		{
			name:    "unparsable policy",
			parsed:  false,
			origin:  types.OriginTypeAwsKms,
			enabled: true,
			manager: types.KeyManagerTypeCustomer,
			want:    false,
		},
		{
			name:    "external origin",
			parsed:  true,
			origin:  types.OriginTypeExternal,
			enabled: true,
			manager: types.KeyManagerTypeCustomer,
			want:    false,
		},
		{
			name:    "cloudhsm origin",
			parsed:  true,
			origin:  types.OriginTypeAwsCloudhsm,
			enabled: true,
			manager: types.KeyManagerTypeCustomer,
			want:    false,
		},
		{
			name:    "disabled key",
			parsed:  true,
			origin:  types.OriginTypeAwsKms,
			enabled: false,
			manager: types.KeyManagerTypeCustomer,
			want:    false,
		},
		{
			name:    "aws managed",
			parsed:  true,
			origin:  types.OriginTypeAwsKms,
			enabled: true,
			manager: types.KeyManagerTypeAws,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := Eligibility(tt.parsed, tt.origin, tt.enabled, tt.manager)
			assert.Equal(t, tt.want, got)
			if !tt.want {
				assert.NotEmpty(t, reason)
			}

			// Same inputs, same answer.
			again, _ := Eligibility(tt.parsed, tt.origin, tt.enabled, tt.manager)
			assert.Equal(t, got, again)
		})
	}
}

// TestListKeyIDs verifies enumeration walks all pages.
func TestListKeyIDs(t *testing.T) {
	client := &fakeClient{
		Pages: [][]string{{"k1", "k2"}, {"k3"}},
	}

	ids, err := ListKeyIDs(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2", "k3"}, ids)
}

// TestDescribe covers the classification scenarios: customer-managed enabled
// keys are eligible, AWS-managed and external-origin keys are excluded, and
// an unparsable policy excludes without raising an error.
func TestDescribe(t *testing.T) {
	tests := []struct {
		name         string
		meta         types.KeyMetadata
		policy       string
		wantEligible bool
		wantReason   string
	}{
		{
			name: "eligible customer key",
			meta: types.KeyMetadata{
				Origin:     types.OriginTypeAwsKms,
				Enabled:    true,
				KeyManager: types.KeyManagerTypeCustomer,
			},
			policy:       validPolicy,
			wantEligible: true,
		},
		{
			name: "aws managed excluded",
			meta: types.KeyMetadata{
				Origin:     types.OriginTypeAwsKms,
				Enabled:    true,
				KeyManager: types.KeyManagerTypeAws,
			},
			policy:       validPolicy,
			wantEligible: false,
			wantReason:   "manager is AWS",
		},
		{
			name: "unparsable policy excluded",
			meta: types.KeyMetadata{
				Origin:     types.OriginTypeAwsKms,
				Enabled:    true,
				KeyManager: types.KeyManagerTypeCustomer,
			},
			policy:       "{not json",
			wantEligible: false,
			wantReason:   "policy document did not parse",
		},
		{
			name: "external origin excluded",
			meta: types.KeyMetadata{
				Origin:     types.OriginTypeExternal,
				Enabled:    true,
				KeyManager: types.KeyManagerTypeCustomer,
			},
			policy:       validPolicy,
			wantEligible: false,
			wantReason:   "origin is EXTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{
				Keys:     map[string]types.KeyMetadata{"k1": tt.meta},
				Policies: map[string]string{"k1": tt.policy},
			}

			detail, err := Describe(context.Background(), client, "k1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantEligible, detail.Eligible)
			assert.Equal(t, tt.wantReason, detail.Reason)
			if tt.wantEligible {
				assert.NotNil(t, detail.Doc)
			}
		})
	}
}

// TestDescribe_MissingKey verifies provider errors surface as errors, not
// classifications.
func TestDescribe_MissingKey(t *testing.T) {
	client := &fakeClient{Keys: map[string]types.KeyMetadata{}}

	_, err := Describe(context.Background(), client, "nope")
	assert.Error(t, err)
}
