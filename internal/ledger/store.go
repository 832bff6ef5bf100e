package ledger

import (
	"context"

	"github.com/iliyamo/gamezone-floor/internal/model"
)

// Store is the session registry the ledger runs against.  The MySQL
// repository implements it in production; MemStore backs unit tests
// and anything that needs a registry without a database.
//
// Get must return ErrSessionNotFound for unknown ids.  Insert assigns
// the session id.  ApplyMember persists the updated session totals
// together with the new member record; implementations backed by SQL
// must do both in one transaction.  OccupiedUnits reports the device
// units claimed by all ACTIVE sessions, keyed by kind; completed and
// deleted sessions do not appear, which is what releases their claims.
type Store interface {
	Insert(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id uint64) (*model.Session, error)
	Update(ctx context.Context, s *model.Session) error
	ApplyMember(ctx context.Context, s *model.Session, m *model.SessionMember) error
	Delete(ctx context.Context, id uint64) error
	ListActive(ctx context.Context) ([]model.Session, error)
	ListCompleted(ctx context.Context) ([]model.Session, error)
	OccupiedUnits(ctx context.Context) (map[string][]int, error)
}

// Notifier receives domain events after a successful mutation.  A nil
// notifier is valid and means nobody is listening.  Implementations
// must not block the calling operation on delivery.
type Notifier interface {
	SessionStarted(ctx context.Context, s *model.Session)
	SessionSettled(ctx context.Context, s *model.Session, headsPaid int, amountPaid int64)
	SessionCompleted(ctx context.Context, s *model.Session)
}
