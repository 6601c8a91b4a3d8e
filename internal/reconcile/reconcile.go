// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	kmsv2 "github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/iter"

	"github.com/kmsctl/kmsctl/internal/kms"
	"github.com/kmsctl/kmsctl/internal/log"
	"github.com/kmsctl/kmsctl/internal/policy"
)

// DefaultParallelism bounds the per-key fan-out when the caller does not
// choose one. KMS throttles aggressively, so keep this modest.
const DefaultParallelism = 4

// Status is the terminal state of one key within a run.
type Status string

const (
	StatusUpdated     Status = "updated"
	StatusWouldUpdate Status = "would-update"
	StatusSkipped     Status = "skipped"
	StatusFailed      Status = "failed"
)

// Outcome records what happened to a single key.
type Outcome struct {
	KeyID  string `json:"KeyId"`
	Status Status `json:"Status"`
	Reason string `json:"Reason,omitempty"`
	Err    error  `json:"-"`
}

// Identity returns the key's ID, used as the row identifier in emitted
// documents.
func (o Outcome) Identity() string {
	return o.KeyID
}

// Summary is the run-level accounting reported after a reconciliation.
type Summary struct {
	Seen     int `json:"Seen"`
	Eligible int `json:"Eligible"`
	Updated  int `json:"Updated"`
	Skipped  int `json:"Skipped"`
	Failed   int `json:"Failed"`
}

// Options configures a reconciliation run. AccountID and Region parameterize
// the administration statement; they are required.
type Options struct {
	AccountID   string
	Region      string
	Parallelism int
	DryRun      bool
	Dedupe      bool
}

// Reconciler drives the enumerate, classify, merge, apply pipeline against
// one account/region.
type Reconciler struct {
	client kms.Client
	opts   Options
}

// New constructs a Reconciler. Zero/negative parallelism falls back to
// DefaultParallelism.
func New(client kms.Client, opts Options) (*Reconciler, error) {
	if opts.AccountID == "" {
		return nil, errors.New("reconcile: account ID is required")
	}
	if opts.Region == "" {
		return nil, errors.New("reconcile: region is required")
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = DefaultParallelism
	}
	return &Reconciler{client: client, opts: opts}, nil
}

// Run executes one reconciliation pass. Enumeration failure is fatal;
// per-key classification and apply failures are recorded as outcomes and do
// not stop the run. The returned outcomes are in enumeration order.
func (r *Reconciler) Run(ctx context.Context) (Summary, []Outcome, error) {
	ids, err := kms.ListKeyIDs(ctx, r.client)
	if err != nil {
		return Summary{}, nil, err
	}

	summary := Summary{Seen: len(ids)}

	// Classify fan-out. Each key is independent; order of the result slice
	// follows the input so reporting stays stable.
	mapper := iter.Mapper[string, Outcome]{MaxGoroutines: r.opts.Parallelism}
	outcomes := mapper.Map(ids, func(id *string) Outcome {
		return r.reconcileKey(ctx, *id)
	})

	for _, o := range outcomes {
		switch o.Status {
		case StatusUpdated, StatusWouldUpdate:
			summary.Eligible++
			summary.Updated++
		case StatusSkipped:
			summary.Skipped++
			if o.Reason == reasonAlreadyAdministered {
				summary.Eligible++
			}
		case StatusFailed:
			summary.Eligible++
			summary.Failed++
		}
	}

	log.Infof("reconcile complete: seen=%d, eligible=%d, updated=%d, skipped=%d, failed=%d",
		summary.Seen, summary.Eligible, summary.Updated, summary.Skipped, summary.Failed)
	return summary, outcomes, nil
}

const reasonAlreadyAdministered = "policy already carries " + policy.AdminSid

// reconcileKey classifies one key and, when eligible, merges and applies the
// administration statement.
func (r *Reconciler) reconcileKey(ctx context.Context, id string) Outcome {
	detail, err := describeWithRetry(ctx, r.client, id)
	if err != nil {
		// Classification reads that fail after retries exclude the key from
		// the run rather than aborting it.
		log.Debugf("classify failed: key=%s, err=%v", id, err)
		return Outcome{KeyID: id, Status: StatusSkipped, Reason: "classification failed", Err: err}
	}

	if !detail.Eligible {
		return Outcome{KeyID: id, Status: StatusSkipped, Reason: detail.Reason}
	}

	if r.opts.Dedupe && policy.HasAdminStatement(detail.Doc) {
		return Outcome{KeyID: id, Status: StatusSkipped, Reason: reasonAlreadyAdministered}
	}

	merged := policy.Merge(detail.Doc, r.opts.AccountID, r.opts.Region)
	serialized, err := policy.Serialize(merged)
	if err != nil {
		return Outcome{KeyID: id, Status: StatusFailed, Reason: err.Error(), Err: err}
	}

	if r.opts.DryRun {
		return Outcome{KeyID: id, Status: StatusWouldUpdate}
	}

	if err := putPolicyWithRetry(ctx, r.client, id, serialized); err != nil {
		log.Errorf("apply failed: key=%s, err=%v", id, err)
		return Outcome{KeyID: id, Status: StatusFailed, Reason: err.Error(), Err: err}
	}

	log.Debugf("policy applied: key=%s", id)
	return Outcome{KeyID: id, Status: StatusUpdated}
}

// describeWithRetry wraps classification reads with throttle-aware backoff.
func describeWithRetry(ctx context.Context, client kms.Client, id string) (*kms.KeyDetail, error) {
	var detail *kms.KeyDetail
	op := func() error {
		var err error
		detail, err = kms.Describe(ctx, client, id)
		return retryClass(err)
	}
	if err := backoff.Retry(op, newBackOff(ctx)); err != nil {
		return nil, err
	}
	return detail, nil
}

// putPolicyWithRetry submits the merged policy, retrying throttles. The
// provider call replaces the policy wholesale; the append already happened
// client-side.
func putPolicyWithRetry(ctx context.Context, client kms.Client, id string, doc string) error {
	op := func() error {
		_, err := client.PutKeyPolicy(ctx, &kmsv2.PutKeyPolicyInput{
			KeyId:      awsv2.String(id),
			PolicyName: awsv2.String("default"),
			Policy:     awsv2.String(doc),
		})
		return retryClass(err)
	}
	return backoff.Retry(op, newBackOff(ctx))
}

// newBackOff builds the shared retry policy: exponential, capped overall so
// a stuck key cannot hold the run hostage, and bound to ctx.
func newBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return backoff.WithContext(b, ctx)
}

// retryClass maps provider errors onto backoff semantics: throttles retry,
// everything else is permanent.
func retryClass(err error) error {
	if err == nil {
		return nil
	}
	if isThrottle(err) {
		return err
	}
	return backoff.Permanent(err)
}

// isThrottle reports whether the error is a transient rate-limit response.
func isThrottle(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ThrottlingException", "TooManyRequestsException", "RequestLimitExceeded":
		return true
	}
	return false
}

// String renders a one-line human summary.
func (s Summary) String() string {
	return fmt.Sprintf("%d seen, %d eligible, %d updated, %d skipped, %d failed",
		s.Seen, s.Eligible, s.Updated, s.Skipped, s.Failed)
}
