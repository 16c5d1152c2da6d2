package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/domain/challenge"
	"github.com/lite-lake/acme-dns-helper/internal/domain/contract"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/logger"
)

// StalePolicy decides what Provision does with challenge records that carry a
// proof other than the requested one.
type StalePolicy string

const (
	// StaleReplace deletes the other records before creating the new one.
	StaleReplace StalePolicy = "replace"
	// StaleAppend keeps the other records and creates the new one beside them.
	// Needed when one order validates both example.com and *.example.com.
	StaleAppend StalePolicy = "append"
	// StaleFail aborts with domain.ErrStaleChallenge without writing.
	StaleFail StalePolicy = "fail"
)

func ParseStalePolicy(s string) (StalePolicy, error) {
	switch p := StalePolicy(s); p {
	case StaleReplace, StaleAppend, StaleFail:
		return p, nil
	case "":
		return StaleReplace, nil
	default:
		return "", fmt.Errorf("%w: %q (want replace, append or fail)", domain.ErrInvalidPolicy, s)
	}
}

type Reconciler struct {
	backend     contract.ChallengeBackend
	settleDelay time.Duration
	stalePolicy StalePolicy
	ttl         int
	sleep       func(time.Duration)
}

type Option func(*Reconciler)

func WithSettleDelay(d time.Duration) Option {
	return func(r *Reconciler) {
		r.settleDelay = d
	}
}

func WithStalePolicy(p StalePolicy) Option {
	return func(r *Reconciler) {
		r.stalePolicy = p
	}
}

func WithTTL(ttl int) Option {
	return func(r *Reconciler) {
		r.ttl = ttl
	}
}

// WithSleep swaps the function used for the settle delay.
func WithSleep(fn func(time.Duration)) Option {
	return func(r *Reconciler) {
		r.sleep = fn
	}
}

func NewReconciler(backend contract.ChallengeBackend, opts ...Option) *Reconciler {
	r := &Reconciler{
		backend:     backend,
		settleDelay: constants.DefaultSettleDelay,
		stalePolicy: StaleReplace,
		ttl:         constants.DefaultTXTTTL,
		sleep:       time.Sleep,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provision makes sure a TXT record holding proof exists at the challenge name
// for domainName. Calling it again with the same arguments performs no writes.
func (r *Reconciler) Provision(ctx context.Context, domainName, proof string) error {
	ctx, names, err := r.prepare(ctx, "provision", domainName, proof)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	records, err := r.list(ctx, names)
	if err != nil {
		return err
	}

	if containsProof(records, proof) {
		log.Info("a matching record is already present")
		return nil
	}

	if len(records) > 0 {
		if err := r.handleStale(ctx, names, records); err != nil {
			return err
		}
	}

	err = logger.TimedOperation(ctx, "create_record", func() error {
		return r.backend.CreateRecord(ctx, names.Zone, names.RecordName, constants.RecordTypeTXT, proof, r.ttl)
	})
	if err != nil {
		return err
	}

	if r.settleDelay > 0 {
		log.Info("record created, waiting before return", "delay", r.settleDelay)
		r.sleep(r.settleDelay)
	}
	log.Info("challenge record provisioned")
	return nil
}

// Clean deletes every TXT record at the challenge name whose value is proof.
// Records holding other values are left alone. All deletions are attempted;
// failures are joined into the returned error.
func (r *Reconciler) Clean(ctx context.Context, domainName, proof string) error {
	ctx, names, err := r.prepare(ctx, "clean", domainName, proof)
	if err != nil {
		return err
	}
	log := logger.FromContext(ctx)

	records, err := r.list(ctx, names)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		log.Info("nothing to clean")
		return nil
	}

	var errs []error
	removed := 0
	for _, rec := range records {
		if rec.Value != proof {
			log.Debug("ignoring record with different proof value", "record_id", rec.ID)
			continue
		}
		if err := r.delete(ctx, names, rec); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	log.Info("clean finished", "removed", removed, "failed", len(errs))
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}

func (r *Reconciler) prepare(ctx context.Context, op, domainName, proof string) (context.Context, challenge.Names, error) {
	normalized, err := challenge.Normalize(domainName)
	if err != nil {
		return ctx, challenge.Names{}, err
	}
	if proof == "" {
		return ctx, challenge.Names{}, domain.RequiredField("proof")
	}

	names := challenge.Decompose(normalized)
	ctx = logger.WithOperation(ctx, op)
	ctx = logger.WithFieldsContext(ctx,
		"backend", r.backend.Name(),
		"zone", names.Zone,
		"record", names.RecordName,
	)
	logger.FromContext(ctx).Info("resolved challenge record", "domain", normalized)
	return ctx, names, nil
}

func (r *Reconciler) list(ctx context.Context, names challenge.Names) ([]contract.TXTRecord, error) {
	var records []contract.TXTRecord
	err := logger.TimedOperation(ctx, "list_challenge_records", func() error {
		var err error
		records, err = r.backend.ListChallengeRecords(ctx, names.Zone, names.RecordName)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Debug("listed challenge records", "count", len(records))
	return records, nil
}

func (r *Reconciler) delete(ctx context.Context, names challenge.Names, rec contract.TXTRecord) error {
	err := logger.TimedOperation(ctx, "delete_record", func() error {
		return r.backend.DeleteRecord(ctx, names.Zone, rec.ID)
	})
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Info("removed record", "record_id", rec.ID)
	return nil
}

func (r *Reconciler) handleStale(ctx context.Context, names challenge.Names, stale []contract.TXTRecord) error {
	log := logger.FromContext(ctx)

	switch r.stalePolicy {
	case StaleFail:
		return fmt.Errorf("%w: %d record(s) at %s in zone %s", domain.ErrStaleChallenge, len(stale), names.RecordName, names.Zone)
	case StaleAppend:
		log.Warn("keeping records with a different proof value", "count", len(stale))
		return nil
	default:
		log.Warn("replacing records with a different proof value", "count", len(stale))
		for _, rec := range stale {
			if err := r.delete(ctx, names, rec); err != nil {
				return err
			}
		}
		return nil
	}
}

func containsProof(records []contract.TXTRecord, proof string) bool {
	for _, rec := range records {
		if rec.Value == proof {
			return true
		}
	}
	return false
}
