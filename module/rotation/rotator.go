package rotation

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/shardchain/dscommittee/model/ds"
	"github.com/shardchain/dscommittee/model/ds/order"
	"github.com/shardchain/dscommittee/module"
	"github.com/shardchain/dscommittee/module/irrecoverable"
	"github.com/shardchain/dscommittee/utils/logging"
)

// Rotator applies the membership change of a finalized DS block to the
// committee. Newly elected members enter at the front in ascending key order,
// so that the largest key ends up at position 0, and members are evicted
// either by explicit removal list or from the tail.
//
// Rotator is stateless apart from its configuration and safe for concurrent
// use, as long as callers do not rotate the same committee concurrently.
type Rotator struct {
	log        zerolog.Logger
	metrics    module.CommitteeMetrics
	targetSize uint
}

type Option func(*Rotator)

// WithTargetSize sets the protocol-mandated committee size. Once the committee
// has reached this size, a rotation that evicts as many members as it admits
// must leave the committee at exactly this size. Zero disables the check.
func WithTargetSize(n uint) Option {
	return func(r *Rotator) {
		r.targetSize = n
	}
}

func NewRotator(log zerolog.Logger, metrics module.CommitteeMetrics, opts ...Option) *Rotator {
	r := &Rotator{
		log:     log.With().Str("component", "committee_rotation").Logger(),
		metrics: metrics,
	}
	for _, apply := range opts {
		apply(r)
	}
	return r
}

// Rotate updates the committee in place according to the election result.
// The local node's key is only used for logging and need not be a member.
//
// An empty winner set leaves the committee untouched. Otherwise the next
// committee is computed on a copy and only assigned once it passed validation,
// so the caller's committee is unchanged whenever an error is returned.
//
// Expected errors during normal operations:
//   - none; every returned error is an irrecoverable exception, and errors
//     wrapping ErrInvalidComposition report a committee invariant violation
func (r *Rotator) Rotate(self ds.PubKey, committee *ds.Committee, election ds.ElectionResult) error {
	if committee == nil {
		return irrecoverable.NewExceptionf("cannot rotate nil committee")
	}

	winners := election.Members().Sort(order.MemberCanonical)
	if len(winners) == 0 {
		r.log.Debug().
			Int("committee_size", committee.Size()).
			Bool("has_removals", election.HasRemovals()).
			Msg("no winners elected, committee unchanged")
		return nil
	}

	current := *committee
	next := make(ds.Committee, 0, len(current)+len(winners))
	// winners are visited in ascending order and each one is pushed to the
	// front, so the resulting prefix is in descending order
	for i := len(winners) - 1; i >= 0; i-- {
		next = append(next, winners[i])
	}
	next = append(next, current...)

	var evicted ds.Committee
	if election.HasRemovals() {
		var missing ds.PubKeyList
		next, evicted, missing = removeListed(next, election.Removals)
		if len(missing) > 0 {
			r.log.Warn().
				Strs("missing", logging.PubKeys(missing)).
				Msg("removal list names keys that are not committee members")
		}
	} else {
		next, evicted = trimTail(next, len(winners), len(current))
	}

	err := r.validate(current, next, len(winners), len(evicted))
	if err != nil {
		r.metrics.InvalidComposition()
		return irrecoverable.NewException(fmt.Errorf("rotation rejected: %w", err))
	}

	for _, member := range evicted {
		r.log.Debug().
			Str("pub_key", member.PubKey.String()).
			Str("endpoint", member.Endpoint.String()).
			Msg("member evicted from committee")
	}

	r.logSelf(self, winners, evicted, next)
	r.log.Info().
		Int("winners", len(winners)).
		Int("evicted", len(evicted)).
		Bool("explicit_removals", election.HasRemovals()).
		Int("size_before", len(current)).
		Int("size_after", len(next)).
		Str("fingerprint", logging.Fingerprint(next)).
		Msg("committee rotated")

	*committee = next
	r.metrics.CommitteeRotated(len(winners), len(evicted), len(next))
	return nil
}

// removeListed deletes each listed key wherever it sits. Keys not present are
// returned as missing; a key listed twice is missing the second time.
func removeListed(committee ds.Committee, removals []ds.PubKey) (ds.Committee, ds.Committee, ds.PubKeyList) {
	var evicted ds.Committee
	var missing ds.PubKeyList
	for _, key := range removals {
		index, ok := committee.IndexOf(key)
		if !ok {
			missing = append(missing, key)
			continue
		}
		evicted = append(evicted, committee[index])
		committee = append(committee[:index], committee[index+1:]...)
	}
	return committee, evicted, missing
}

// trimTail evicts admitted members from the tail, but never more than the
// members that existed before the winners were inserted.
func trimTail(committee ds.Committee, admitted int, existing int) (ds.Committee, ds.Committee) {
	count := admitted
	if count > existing {
		count = existing
	}
	cut := len(committee) - count
	evicted := committee[cut:].Copy()
	return committee[:cut], evicted
}

// validate checks the invariants of the next committee, aggregating every
// violation found.
func (r *Rotator) validate(current ds.Committee, next ds.Committee, admitted int, evicted int) error {
	var result *multierror.Error

	for _, duplicate := range next.Duplicates() {
		result = multierror.Append(result, fmt.Errorf("member %s appears more than once: %w", duplicate, ErrInvalidComposition))
	}

	// bootstrap rotations grow the committee towards the target size, and
	// explicit removal lists may legitimately change the size
	if r.targetSize > 0 && uint(len(current)) == r.targetSize && evicted == admitted && uint(len(next)) != r.targetSize {
		result = multierror.Append(result, fmt.Errorf("committee size %d after admitting and evicting %d members, expected %d: %w",
			len(next), admitted, r.targetSize, ErrInvalidComposition))
	}

	return result.ErrorOrNil()
}

func (r *Rotator) logSelf(self ds.PubKey, winners ds.Committee, evicted ds.Committee, next ds.Committee) {
	log := r.log.With().Str("self", self.String()).Logger()
	switch {
	case evicted.Contains(self) && !next.Contains(self):
		log.Info().Msg("local node evicted from committee")
	case winners.Contains(self):
		index, _ := next.IndexOf(self)
		log.Info().Int("index", index).Msg("local node admitted to committee")
	case next.Contains(self):
		index, _ := next.IndexOf(self)
		log.Debug().Int("index", index).Msg("local node retained in committee")
	default:
		log.Debug().Msg("local node is not a committee member")
	}
}
