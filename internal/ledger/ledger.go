package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/iliyamo/gamezone-floor/internal/model"
	"github.com/iliyamo/gamezone-floor/internal/pricing"
)

// Service applies ledger operations to sessions.  All mutating
// operations on a given session id are serialised with a per-id
// mutex: price and payment fields depend on state read at the top of
// the operation, so concurrent read-modify-write would lose updates.
// Each operation computes everything (classify, price, merge) before
// touching the store, so a failed computation leaves no partial
// state.
//
// Device claims need a second, registry-wide lock.  Two sessions
// racing for the same unit hold different per-id mutexes, so the
// occupancy check and the write that records the claim must happen
// under claimsMu or both would pass the check.
type Service struct {
	store    Store
	notifier Notifier
	limits   map[string]int
	locks    *keyedMutex
	claimsMu sync.Mutex
	now      func() time.Time
}

// NewService constructs a ledger over the given registry.  limits maps
// device kind to the highest installed unit number; notifier may be
// nil.
func NewService(store Store, notifier Notifier, limits map[string]int) *Service {
	if store == nil {
		panic("nil store passed to NewService")
	}
	return &Service{
		store:    store,
		notifier: notifier,
		limits:   limits,
		locks:    newKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput carries a session creation request, validated at the
// HTTP boundary and revalidated here.
type CreateInput struct {
	CustomerName    string
	ContactNumber   string
	StartTime       time.Time // zero value means "now"
	DurationMinutes int
	PeopleCount     int
	Devices         model.DeviceClaims
	Snacks          string
}

// MemberInput describes one member addition.
type MemberInput struct {
	Name        string
	PeopleCount int
	Devices     model.DeviceClaims
}

// Create opens a new session.  The tariff window is classified at the
// session's start time and stays fixed for its whole life; the
// initial price covers the requested duration for the whole party.
// Requested device units are checked against the configured limits
// and against the units other active sessions hold.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.Session, error) {
	if in.CustomerName == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if in.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: duration minutes must be positive", ErrValidation)
	}
	if in.PeopleCount < 1 {
		return nil, fmt.Errorf("%w: people count must be at least 1", ErrValidation)
	}
	if in.Devices == nil {
		in.Devices = model.DeviceClaims{}
	}
	if err := s.validateClaimShape(in.Devices); err != nil {
		return nil, err
	}

	start := in.StartTime
	if start.IsZero() {
		start = s.now()
	}

	window := pricing.ClassifyWindow(start)
	price, err := pricing.PriceFor(in.DurationMinutes, in.PeopleCount, in.Devices.Counts(), window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	session := &model.Session{
		CustomerName:    in.CustomerName,
		ContactNumber:   in.ContactNumber,
		StartTime:       start,
		DurationMinutes: in.DurationMinutes,
		PeopleCount:     in.PeopleCount,
		Devices:         in.Devices,
		Snacks:          in.Snacks,
		Price:           price,
		Status:          model.SessionActive,
	}
	if err := s.withClaims(ctx, in.Devices, func() error {
		return s.store.Insert(ctx, session)
	}); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.SessionStarted(ctx, session)
	}
	return session, nil
}

// ExtendTime adds extraMinutes to the session.  The extension is
// costed as a standalone block of that length at the current
// headcount and device mix, in the session's fixed window, then
// folded into the cumulative totals.  Zero minutes is a no-op: the
// rate card's short tiers would otherwise bill a zero-length block
// (see the pricing quirk tests).
func (s *Service) ExtendTime(ctx context.Context, id uint64, extraMinutes int) (*model.Session, error) {
	if extraMinutes < 0 {
		return nil, fmt.Errorf("%w: extra minutes must be non-negative", ErrValidation)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, ErrInvalidState
	}
	if extraMinutes == 0 {
		return session, nil
	}

	window := pricing.ClassifyWindow(session.StartTime)
	increment, err := pricing.PriceFor(extraMinutes, session.PeopleCount, session.Devices.Counts(), window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	session.DurationMinutes += extraMinutes
	session.Price += increment
	if err := s.store.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// AddMember joins people (and optionally devices) to a running
// session.  The newcomers are charged for the session's current total
// run length at their own headcount and device mix, in the fixed
// window; the charge, headcount and claims fold into the cumulative
// totals and the addition is recorded on the audit trail.
func (s *Service) AddMember(ctx context.Context, id uint64, in MemberInput) (*model.Session, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: member name is required", ErrValidation)
	}
	if in.PeopleCount < 1 {
		return nil, fmt.Errorf("%w: member people count must be at least 1", ErrValidation)
	}
	if in.Devices == nil {
		in.Devices = model.DeviceClaims{}
	}
	if err := s.validateClaimShape(in.Devices); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, ErrInvalidState
	}

	window := pricing.ClassifyWindow(session.StartTime)
	charge, err := pricing.PriceFor(session.DurationMinutes, in.PeopleCount, in.Devices.Counts(), window)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	member := &model.SessionMember{
		SessionID:     session.ID,
		Name:          in.Name,
		PeopleCount:   in.PeopleCount,
		Devices:       in.Devices,
		ChargedAmount: charge,
	}
	// The session's own claims count as occupied in the check, which
	// is exactly right: a joining member cannot take a unit the table
	// already holds.
	if err := s.withClaims(ctx, in.Devices, func() error {
		session.PeopleCount += in.PeopleCount
		session.Price += charge
		session.Devices.Merge(in.Devices)
		return s.store.ApplyMember(ctx, session, member)
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// SettlePartial marks headsPayingNow people as paid, charging each an
// equal share of the remaining balance.  Shares are computed in whole
// currency units; when the last unpaid heads settle they pay the
// exact remainder, so shares always sum to the balance and paidAmount
// never exceeds price.  The second return value is the amount settled
// by this call.
func (s *Service) SettlePartial(ctx context.Context, id uint64, headsPayingNow int) (*model.Session, int64, error) {
	session, amountNow, err := s.settle(ctx, id, headsPayingNow)
	if err != nil {
		return nil, 0, err
	}
	if s.notifier != nil {
		s.notifier.SessionSettled(ctx, session, headsPayingNow, amountNow)
	}
	return session, amountNow, nil
}

// settle holds the per-id lock; the notifier runs after it is
// released so a slow listener cannot stall the session.
func (s *Service) settle(ctx context.Context, id uint64, headsPayingNow int) (*model.Session, int64, error) {
	if headsPayingNow < 1 {
		return nil, 0, fmt.Errorf("%w: paying heads must be at least 1", ErrValidation)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, 0, err
	}

	remainingHeads := session.RemainingHeads()
	if remainingHeads <= 0 {
		return nil, 0, ErrNoUnpaidHeads
	}
	if headsPayingNow > remainingHeads {
		return nil, 0, ErrTooManyHeads
	}

	remaining := session.RemainingAmount()
	var amountNow int64
	if headsPayingNow == remainingHeads {
		amountNow = remaining
	} else {
		amountNow = remaining * int64(headsPayingNow) / int64(remainingHeads)
	}

	session.PaidAmount += amountNow
	session.PaidPeople += headsPayingNow
	if err := s.store.Update(ctx, session); err != nil {
		return nil, 0, err
	}
	return session, amountNow, nil
}

// Complete transitions an active session to COMPLETED and stamps the
// completion time.  Terminal: completing twice is an invalid state.
// Completion releases the session's device units because occupancy is
// derived from active sessions only.
func (s *Service) Complete(ctx context.Context, id uint64) (*model.Session, error) {
	session, err := s.complete(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.SessionCompleted(ctx, session)
	}
	return session, nil
}

func (s *Service) complete(ctx context.Context, id uint64) (*model.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionActive {
		return nil, ErrInvalidState
	}

	done := s.now()
	session.Status = model.SessionCompleted
	session.CompletedAt = &done
	if err := s.store.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete removes the session from the registry unconditionally,
// regardless of status, releasing its device units.
func (s *Service) Delete(ctx context.Context, id uint64) error {
	unlock := s.locks.Lock(id)
	defer unlock()
	return s.store.Delete(ctx, id)
}

// Get returns one session by id.
func (s *Service) Get(ctx context.Context, id uint64) (*model.Session, error) {
	return s.store.Get(ctx, id)
}

// ListActive returns the sessions currently on the floor.
func (s *Service) ListActive(ctx context.Context) ([]model.Session, error) {
	return s.store.ListActive(ctx)
}

// ListCompleted returns finished sessions for analytics and exports.
func (s *Service) ListCompleted(ctx context.Context) ([]model.Session, error) {
	return s.store.ListCompleted(ctx)
}

// Availability reports the configured unit limits alongside the units
// active sessions currently hold.
func (s *Service) Availability(ctx context.Context) (limits map[string]int, occupied map[string][]int, err error) {
	occupied, err = s.store.OccupiedUnits(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.limits, occupied, nil
}

// validateClaimShape checks device kinds, unit numbers against the
// configured limits, and duplicates within the request.  It reads no
// shared state, so it runs before any lock is taken.
func (s *Service) validateClaimShape(claims model.DeviceClaims) error {
	seen := make(map[string]map[int]bool)
	for kind, units := range claims {
		if !model.IsDeviceKind(kind) {
			return fmt.Errorf("%w: unknown device kind %q", ErrValidation, kind)
		}
		limit := s.limits[kind]
		for _, unit := range units {
			if unit < 1 {
				return fmt.Errorf("%w: %s unit numbers start at 1", ErrValidation, kind)
			}
			if limit > 0 && unit > limit {
				return fmt.Errorf("%w: %s #%d does not exist (max %d)", ErrValidation, kind, unit, limit)
			}
			if seen[kind] == nil {
				seen[kind] = make(map[int]bool)
			}
			if seen[kind][unit] {
				return fmt.Errorf("%w: %s #%d requested twice", ErrValidation, kind, unit)
			}
			seen[kind][unit] = true
		}
	}
	return nil
}

// withClaims runs write under the registry-wide claims mutex when the
// request claims any unit, after checking that every requested unit
// is free.  Claim-free requests skip the lock entirely: they cannot
// conflict with anyone.
func (s *Service) withClaims(ctx context.Context, claims model.DeviceClaims, write func() error) error {
	if claims.Total() == 0 {
		return write()
	}
	s.claimsMu.Lock()
	defer s.claimsMu.Unlock()

	occupied, err := s.store.OccupiedUnits(ctx)
	if err != nil {
		return err
	}
	for kind, units := range claims {
		taken := make(map[int]bool, len(occupied[kind]))
		for _, unit := range occupied[kind] {
			taken[unit] = true
		}
		for _, unit := range units {
			if taken[unit] {
				return fmt.Errorf("%w: %s #%d", ErrDeviceConflict, kind, unit)
			}
		}
	}
	return write()
}
