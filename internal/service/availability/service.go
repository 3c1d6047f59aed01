package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nightowl-club/tablepass/internal/domain"
	"github.com/nightowl-club/tablepass/internal/repository"
	postgresrepo "github.com/nightowl-club/tablepass/internal/repository/postgres"
	redisrepo "github.com/nightowl-club/tablepass/internal/repository/redis"
)

type Config struct {
	EventTablesTTL time.Duration
}

type Service struct {
	store *postgresrepo.Store
	cache *redisrepo.Cache
	cfg   Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.EventTablesTTL <= 0 {
		cfg.EventTablesTTL = 15 * time.Second
	}

	return &Service{
		store: store,
		cache: cache,
		cfg:   cfg,
	}
}

// Effective layers an optional per-event override on top of the venue table
// defaults. An override field wins only when it is explicitly set; a nil
// field, or no override row at all, falls back to the table value. Party size
// is always the effective capacity; guests do not choose it.
func Effective(t domain.VenueTable, o *domain.TableOverride) domain.Availability {
	av := domain.Availability{
		TableID:      t.ID,
		VenueID:      t.VenueID,
		Zone:         t.Zone,
		Capacity:     t.Capacity,
		MinimumSpend: t.MinimumSpend,
		Deposit:      t.DepositAmount,
		Available:    true,
	}

	if o != nil {
		if o.Capacity != nil {
			av.Capacity = *o.Capacity
		}
		if o.MinimumSpend != nil {
			av.MinimumSpend = *o.MinimumSpend
		}
		if o.DepositAmount != nil {
			av.Deposit = *o.DepositAmount
		}
		if o.IsAvailable != nil && !*o.IsAvailable {
			av.Available = false
		}
	}

	av.PartySize = av.Capacity

	return av
}

// Resolve computes the effective availability of one table for one event.
//
// Returns:
//   - *domain.Availability: effective capacity, minimum spend and deposit.
//   - error: availability.ErrTableNotFound if the table is missing or inactive.
func (s *Service) Resolve(ctx context.Context, eventID, tableID int64) (*domain.Availability, error) {
	const op = "service.availability.Resolve"

	table, err := s.store.Events().GetTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrTableNotFound)
		}

		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if !table.IsActive {
		return nil, fmt.Errorf("%s:%w", op, ErrTableNotFound)
	}

	override, err := s.store.Events().GetOverride(ctx, eventID, tableID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	av := Effective(*table, override)

	return &av, nil
}

// ListEventTables returns the effective availability of every active table of
// the event's venue, cached briefly.
func (s *Service) ListEventTables(ctx context.Context, eventID int64) ([]domain.Availability, error) {
	const op = "service.availability.ListEventTables"

	key := redisrepo.KeyEventTables(eventID)

	out, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.EventTablesTTL,
		func(ctx context.Context) ([]domain.Availability, error) {
			ev, err := s.store.Events().GetEvent(ctx, eventID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, ErrEventNotFound
				}
				return nil, err
			}

			if ev.VenueID == nil {
				return []domain.Availability{}, nil
			}

			tables, err := s.store.Events().ListEventTables(ctx, eventID, *ev.VenueID)
			if err != nil {
				return nil, err
			}

			avs := make([]domain.Availability, 0, len(tables))
			for _, et := range tables {
				avs = append(avs, Effective(et.Table, et.Override))
			}

			return avs, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}
