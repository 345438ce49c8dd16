// Package lockout implements the per-email login throttling state machine.
//
// A ledger record moves through four states:
//
//	CLEAN        no record, or counter 0 and unlocked
//	WARNING      1..MaxAttempts-1 consecutive failures, unlocked
//	LOCKED       locked with a cooldown deadline in the future
//	EXPIRED_LOCK locked but the deadline has passed
//
// EXPIRED_LOCK is resolved to CLEAN lazily, the next time the record is read.
// The functions here are pure; callers persist the mutated record.
package lockout

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hongminglow/staff-be/internal/models"
)

const (
	// DefaultWarnAt is the failure count whose response carries a warning.
	DefaultWarnAt = 3
	// DefaultMaxAttempts is the failure count that locks the account.
	DefaultMaxAttempts = 5
	// DefaultCooldown is how long a lock lasts.
	DefaultCooldown = 30 * time.Second
)

// State is the derived state of a ledger record at a point in time.
type State int

const (
	Clean State = iota
	Warning
	Locked
	ExpiredLock
)

func (s State) String() string {
	switch s {
	case Clean:
		return "CLEAN"
	case Warning:
		return "WARNING"
	case Locked:
		return "LOCKED"
	case ExpiredLock:
		return "EXPIRED_LOCK"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Policy holds the thresholds of the state machine.
type Policy struct {
	WarnAt      int
	MaxAttempts int
	Cooldown    time.Duration
}

// DefaultPolicy returns the 3 / 5 / 30s policy.
func DefaultPolicy() Policy {
	return Policy{
		WarnAt:      DefaultWarnAt,
		MaxAttempts: DefaultMaxAttempts,
		Cooldown:    DefaultCooldown,
	}
}

// Validate rejects thresholds that would make the machine meaningless.
func (p Policy) Validate() error {
	if p.MaxAttempts <= 0 {
		return errors.New("max attempts must be positive")
	}
	if p.WarnAt <= 0 || p.WarnAt >= p.MaxAttempts {
		return fmt.Errorf("warn threshold must be between 1 and %d", p.MaxAttempts-1)
	}
	if p.Cooldown <= 0 {
		return errors.New("cooldown must be positive")
	}
	return nil
}

// StateOf derives the state of rec at now.
func (p Policy) StateOf(rec models.AttemptRecord, now time.Time) State {
	switch {
	case rec.Locked && rec.CooldownUntil != nil && now.Before(*rec.CooldownUntil):
		return Locked
	case rec.Locked:
		return ExpiredLock
	case rec.FailureCount > 0:
		return Warning
	default:
		return Clean
	}
}

// Expire clears a lock whose cooldown has elapsed, returning true when rec
// changed and must be written back.
func (p Policy) Expire(rec *models.AttemptRecord, now time.Time) bool {
	if p.StateOf(*rec, now) != ExpiredLock {
		return false
	}
	rec.Locked = false
	rec.FailureCount = 0
	rec.CooldownUntil = nil
	return true
}

// IsLocked reports whether rec rejects attempts at now.
func (p Policy) IsLocked(rec models.AttemptRecord, now time.Time) bool {
	return p.StateOf(rec, now) == Locked
}

// RetryAfter returns the whole seconds left on the lock, rounded up so a
// locked account never reports zero.
func (p Policy) RetryAfter(rec models.AttemptRecord, now time.Time) int {
	if !p.IsLocked(rec, now) {
		return 0
	}
	return int(math.Ceil(rec.CooldownUntil.Sub(now).Seconds()))
}

// VerdictKind is how a failed attempt must be reported.
type VerdictKind int

const (
	// Generic is the first failure for an email without history.
	Generic VerdictKind = iota
	// Remaining reports how many attempts are left.
	Remaining
	// Warn is Remaining plus an explicit lockout warning.
	Warn
	// LockedOut means this failure locked the account.
	LockedOut
)

// Verdict is the outcome of a failed attempt.
type Verdict struct {
	Kind              VerdictKind
	AttemptsRemaining int
	RetryAfter        int
}

// Fail records a failed credential check on rec. hadHistory tells whether the
// record existed before this attempt; a brand new record always yields a
// Generic verdict unless the policy locks on the very first failure.
func (p Policy) Fail(rec *models.AttemptRecord, hadHistory bool, now time.Time, source string) Verdict {
	rec.FailureCount++
	rec.LastAttemptAt = now
	rec.SourceAddr = source

	if rec.FailureCount >= p.MaxAttempts {
		until := now.Add(p.Cooldown)
		rec.Locked = true
		rec.CooldownUntil = &until
		return Verdict{Kind: LockedOut, RetryAfter: int(math.Ceil(p.Cooldown.Seconds()))}
	}
	if !hadHistory {
		return Verdict{Kind: Generic}
	}
	remaining := p.MaxAttempts - rec.FailureCount
	if rec.FailureCount == p.WarnAt {
		return Verdict{Kind: Warn, AttemptsRemaining: remaining}
	}
	return Verdict{Kind: Remaining, AttemptsRemaining: remaining}
}

// Succeed resets rec after a successful credential check.
func (p Policy) Succeed(rec *models.AttemptRecord, now time.Time, source string) {
	rec.FailureCount = 0
	rec.Locked = false
	rec.CooldownUntil = nil
	rec.LastAttemptAt = now
	rec.SourceAddr = source
}
