package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gamezone-floor/internal/model"
)

// mondayAt returns a deterministic weekday timestamp so window
// classification is stable in tests.  2025-06-02 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, time.June, 2, hour, minute, 0, 0, time.UTC)
}

func testLimits() map[string]int {
	return map[string]int{
		model.DevicePS:      6,
		model.DevicePC:      10,
		model.DeviceVR:      2,
		model.DeviceWheel:   2,
		model.DeviceMetaBat: 1,
	}
}

func newTestService() (*Service, *MemStore) {
	store := NewMemStore()
	svc := NewService(store, nil, testLimits())
	return svc, store
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{DurationMinutes: 60, PeopleCount: 1})
	assert.ErrorIs(t, err, ErrValidation, "missing name")

	_, err = svc.Create(ctx, CreateInput{CustomerName: "Ana", DurationMinutes: 0, PeopleCount: 1})
	assert.ErrorIs(t, err, ErrValidation, "zero duration")

	_, err = svc.Create(ctx, CreateInput{CustomerName: "Ana", DurationMinutes: 60, PeopleCount: 0})
	assert.ErrorIs(t, err, ErrValidation, "zero people")

	_, err = svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		DurationMinutes: 60,
		PeopleCount:     1,
		Devices:         model.DeviceClaims{"toaster": {1}},
	})
	assert.ErrorIs(t, err, ErrValidation, "unknown kind")

	_, err = svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		DurationMinutes: 60,
		PeopleCount:     1,
		Devices:         model.DeviceClaims{model.DevicePS: {7}},
	})
	assert.ErrorIs(t, err, ErrValidation, "unit above limit")

	_, err = svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		DurationMinutes: 60,
		PeopleCount:     1,
		Devices:         model.DeviceClaims{model.DevicePS: {2, 2}},
	})
	assert.ErrorIs(t, err, ErrValidation, "duplicate unit in one request")
}

func TestCreatePricesAtStartWindow(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Happy-hour PS table: 60 minutes for a pair is 45 per head.
	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(10, 0),
		DurationMinutes: 60,
		PeopleCount:     2,
		Devices:         model.DeviceClaims{model.DevicePS: {1}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(90), s.Price)
	assert.Equal(t, model.SessionActive, s.Status)
	assert.NotZero(t, s.ID)

	// Same request in the evening uses the normal-hour table, with
	// its pair base of 120.
	s2, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Bo",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     2,
		Devices:         model.DeviceClaims{model.DevicePS: {2}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120), s2.Price)
}

func TestCreateDeviceConflict(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(10, 0),
		DurationMinutes: 60,
		PeopleCount:     1,
		Devices:         model.DeviceClaims{model.DevicePS: {3}},
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{
		CustomerName:    "Bo",
		StartTime:       mondayAt(10, 0),
		DurationMinutes: 60,
		PeopleCount:     1,
		Devices:         model.DeviceClaims{model.DevicePS: {3}},
	})
	assert.ErrorIs(t, err, ErrDeviceConflict)

	// Completing the first session releases the unit.
	_, err = svc.Complete(ctx, first.ID)
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{
		CustomerName:    "Bo",
		StartTime:       mondayAt(10, 0),
		DurationMinutes: 60,
		PeopleCount:     1,
		Devices:         model.DeviceClaims{model.DevicePS: {3}},
	})
	assert.NoError(t, err)
}

func TestExtendTime(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(10, 0),
		DurationMinutes: 60,
		PeopleCount:     2,
		Devices:         model.DeviceClaims{model.DevicePS: {1}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(90), s.Price)

	// A 30-minute extension is costed as its own block: 40 per head.
	s, err = svc.ExtendTime(ctx, s.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, 90, s.DurationMinutes)
	assert.Equal(t, int64(170), s.Price)

	_, err = svc.ExtendTime(ctx, s.ID, -5)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ExtendTime(ctx, 9999, 30)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestExtendTimeZeroIsFree(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(10, 0),
		DurationMinutes: 60,
		PeopleCount:     2,
		Devices:         model.DeviceClaims{model.DeviceVR: {1}},
	})
	require.NoError(t, err)

	before := s.Price
	s, err = svc.ExtendTime(ctx, s.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, before, s.Price)
	assert.Equal(t, 60, s.DurationMinutes)
}

func TestExtendTimeKeepsStartWindow(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	// Started at 13:30 on a weekday, still in happy hour; even though
	// the extension runs past 14:00 it is priced at happy-hour rates.
	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(13, 30),
		DurationMinutes: 30,
		PeopleCount:     1,
		Devices:         model.DeviceClaims{model.DevicePC: {1}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(40), s.Price)

	s, err = svc.ExtendTime(ctx, s.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, int64(90), s.Price)
}

func TestAddMember(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(10, 0),
		DurationMinutes: 60,
		PeopleCount:     2,
		Devices:         model.DeviceClaims{model.DevicePS: {1}},
	})
	require.NoError(t, err)

	// The newcomer pays for the full current duration at their own
	// headcount: one person, 60 minutes of happy-hour PC is 50.
	s, err = svc.AddMember(ctx, s.ID, MemberInput{
		Name:        "Cleo",
		PeopleCount: 1,
		Devices:     model.DeviceClaims{model.DevicePC: {4}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, s.PeopleCount)
	assert.Equal(t, int64(90+50), s.Price)
	assert.Equal(t, []int{4}, s.Devices[model.DevicePC])

	stored, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, stored.Members, 1)
	assert.Equal(t, "Cleo", stored.Members[0].Name)
	assert.Equal(t, int64(50), stored.Members[0].ChargedAmount)

	// A member cannot claim a unit the session already holds.
	_, err = svc.AddMember(ctx, s.ID, MemberInput{
		Name:        "Dee",
		PeopleCount: 1,
		Devices:     model.DeviceClaims{model.DevicePS: {1}},
	})
	assert.ErrorIs(t, err, ErrDeviceConflict)

	_, err = svc.AddMember(ctx, s.ID, MemberInput{Name: "", PeopleCount: 1})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.AddMember(ctx, s.ID, MemberInput{Name: "Eve", PeopleCount: 0})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSettlePartialSplit(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     4,
		Devices:         model.DeviceClaims{model.DevicePC: {1, 2}},
	})
	require.NoError(t, err)

	// Force a known balance so the split arithmetic is obvious.
	s.Price = 500
	require.NoError(t, store.Update(ctx, s))

	// 2 of 4 heads pay: floor(500*2/4) = 250.
	s, paid, err := svc.SettlePartial(ctx, s.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(250), paid)
	assert.Equal(t, int64(250), s.PaidAmount)
	assert.Equal(t, 2, s.PaidPeople)

	// 1 of the remaining 2: floor(250*1/2) = 125.
	s, paid, err = svc.SettlePartial(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(125), paid)
	assert.Equal(t, int64(375), s.PaidAmount)
	assert.Equal(t, 3, s.PaidPeople)

	// The last head pays the exact remainder.
	s, paid, err = svc.SettlePartial(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(125), paid)
	assert.Equal(t, int64(500), s.PaidAmount)
	assert.Equal(t, 4, s.PaidPeople)

	_, _, err = svc.SettlePartial(ctx, s.ID, 1)
	assert.ErrorIs(t, err, ErrNoUnpaidHeads)
}

func TestSettlePartialRemainderGoesToLastPayers(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     3,
	})
	require.NoError(t, err)

	s.Price = 100
	require.NoError(t, store.Update(ctx, s))

	// floor(100*1/3) = 33, then the last two cover the 67 remainder.
	s, paid, err := svc.SettlePartial(ctx, s.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(33), paid)
	assert.Equal(t, int64(33), s.PaidAmount)

	s, paid, err = svc.SettlePartial(ctx, s.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(67), paid)
	assert.Equal(t, int64(100), s.PaidAmount)
	assert.Equal(t, 3, s.PaidPeople)
}

func TestSettlePartialBounds(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     2,
	})
	require.NoError(t, err)

	_, _, err = svc.SettlePartial(ctx, s.ID, 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.SettlePartial(ctx, s.ID, 3)
	assert.ErrorIs(t, err, ErrTooManyHeads)

	_, _, err = svc.SettlePartial(ctx, 9999, 1)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCompleteLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     1,
	})
	require.NoError(t, err)

	s, err = svc.Complete(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, s.Status)
	require.NotNil(t, s.CompletedAt)

	// Completed sessions accept no further mutations.
	_, err = svc.Complete(ctx, s.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.ExtendTime(ctx, s.ID, 30)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = svc.AddMember(ctx, s.ID, MemberInput{Name: "Bo", PeopleCount: 1})
	assert.ErrorIs(t, err, ErrInvalidState)

	// Settling a completed session with an open balance still works.
	_, _, err = svc.SettlePartial(ctx, s.ID, 1)
	assert.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
	completed, err := svc.ListCompleted(ctx)
	require.NoError(t, err)
	assert.Len(t, completed, 1)
}

func TestDeleteAnyStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, s.ID))
	_, err = svc.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	done, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Bo",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     1,
	})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, done.ID)
	require.NoError(t, err)
	assert.NoError(t, svc.Delete(ctx, done.ID))
}

func TestAvailability(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(10, 0),
		DurationMinutes: 60,
		PeopleCount:     1,
		Devices:         model.DeviceClaims{model.DevicePS: {2, 5}, model.DeviceVR: {1}},
	})
	require.NoError(t, err)

	limits, occupied, err := svc.Availability(ctx)
	require.NoError(t, err)
	assert.Equal(t, testLimits(), limits)
	assert.ElementsMatch(t, []int{2, 5}, occupied[model.DevicePS])
	assert.ElementsMatch(t, []int{1}, occupied[model.DeviceVR])
	assert.Empty(t, occupied[model.DevicePC])
}

func TestConcurrentSettles(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     8,
	})
	require.NoError(t, err)

	s.Price = 800
	require.NoError(t, store.Update(ctx, s))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.SettlePartial(ctx, s.ID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(800), final.PaidAmount)
	assert.Equal(t, 8, final.PaidPeople)
	assert.Equal(t, 0, final.RemainingHeads())
}

func TestConcurrentCreatesForSameUnit(t *testing.T) {
	ctx := context.Background()

	// Per-id locks do not cover creates: every contender races with a
	// fresh id, so exclusivity rests entirely on the claims lock.
	for iter := 0; iter < 50; iter++ {
		svc, _ := newTestService()

		const workers = 8
		errs := make([]error, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Create(ctx, CreateInput{
					CustomerName:    "Ana",
					StartTime:       mondayAt(18, 0),
					DurationMinutes: 60,
					PeopleCount:     1,
					Devices:         model.DeviceClaims{model.DevicePS: {1}},
				})
			}(i)
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
			} else {
				assert.ErrorIs(t, err, ErrDeviceConflict)
			}
		}
		require.Equal(t, 1, won, "exactly one session may hold ps #1")

		_, occupied, err := svc.Availability(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1}, occupied[model.DevicePS])
	}
}

func TestConcurrentAddMembersForSameUnit(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	open := func(name string) uint64 {
		s, err := svc.Create(ctx, CreateInput{
			CustomerName:    name,
			StartTime:       mondayAt(18, 0),
			DurationMinutes: 60,
			PeopleCount:     1,
		})
		require.NoError(t, err)
		return s.ID
	}
	first, second := open("Ana"), open("Bo")

	// Members joining two different sessions race for the same wheel.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uint64{first, second} {
		wg.Add(1)
		go func(i int, id uint64) {
			defer wg.Done()
			_, errs[i] = svc.AddMember(ctx, id, MemberInput{
				Name:        "Cleo",
				PeopleCount: 1,
				Devices:     model.DeviceClaims{model.DeviceWheel: {1}},
			})
		}(i, id)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, ErrDeviceConflict)
		}
	}
	require.Equal(t, 1, won, "exactly one member addition may claim wheel #1")

	_, occupied, err := svc.Availability(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, occupied[model.DeviceWheel])
}

// completeOnSettle finishes the session from inside the settled
// callback.  That call takes the session's own lock, so it only
// returns when notifications run after the lock is released.
type completeOnSettle struct {
	svc  *Service
	done chan error
}

func (n *completeOnSettle) SessionStarted(context.Context, *model.Session)   {}
func (n *completeOnSettle) SessionCompleted(context.Context, *model.Session) {}

func (n *completeOnSettle) SessionSettled(ctx context.Context, s *model.Session, _ int, _ int64) {
	_, err := n.svc.Complete(ctx, s.ID)
	n.done <- err
}

func TestNotifierRunsOutsideSessionLock(t *testing.T) {
	store := NewMemStore()
	notifier := &completeOnSettle{done: make(chan error, 1)}
	svc := NewService(store, notifier, testLimits())
	notifier.svc = svc
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     1,
	})
	require.NoError(t, err)

	settled := make(chan error, 1)
	go func() {
		_, _, err := svc.SettlePartial(ctx, s.ID, 1)
		settled <- err
	}()

	select {
	case err := <-notifier.done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("settled callback blocked on the session lock")
	}
	require.NoError(t, <-settled)

	final, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, final.Status)
}

type recordingNotifier struct {
	mu        sync.Mutex
	started   []uint64
	settled   []uint64
	completed []uint64
}

func (n *recordingNotifier) SessionStarted(_ context.Context, s *model.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, s.ID)
}

func (n *recordingNotifier) SessionSettled(_ context.Context, s *model.Session, _ int, _ int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.settled = append(n.settled, s.ID)
}

func (n *recordingNotifier) SessionCompleted(_ context.Context, s *model.Session) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, s.ID)
}

func TestNotifierReceivesLifecycleEvents(t *testing.T) {
	store := NewMemStore()
	notifier := &recordingNotifier{}
	svc := NewService(store, notifier, testLimits())
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateInput{
		CustomerName:    "Ana",
		StartTime:       mondayAt(18, 0),
		DurationMinutes: 60,
		PeopleCount:     1,
	})
	require.NoError(t, err)

	_, _, err = svc.SettlePartial(ctx, s.ID, 1)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, s.ID)
	require.NoError(t, err)

	assert.Equal(t, []uint64{s.ID}, notifier.started)
	assert.Equal(t, []uint64{s.ID}, notifier.settled)
	assert.Equal(t, []uint64{s.ID}, notifier.completed)
}
