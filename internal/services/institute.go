package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ridemap/admin-server/internal/cache"
	"github.com/ridemap/admin-server/internal/models"
	"github.com/ridemap/admin-server/internal/store"
)

var (
	// ErrEmptyValue rejects blank reference-list entries.
	ErrEmptyValue = errors.New("value must not be empty")
	// ErrUnknownBus rejects a bus assignment outside the institute's list.
	ErrUnknownBus = errors.New("bus number is not in the institute's bus list")
)

// InstituteService serves per-institute reference lists and record
// collections through the snapshot cache: cached data when present, one
// gateway fetch otherwise. Fetch failures leave the slot absent (no retry);
// mutations go to the gateway first and only then touch the cache.
type InstituteService struct {
	gateway store.Gateway
	cache   *cache.Store
	log     *zap.Logger
}

func NewInstituteService(gateway store.Gateway, cacheStore *cache.Store, log *zap.Logger) *InstituteService {
	return &InstituteService{gateway: gateway, cache: cacheStore, log: log}
}

func readThrough[T any](ctx context.Context, s *InstituteService, key cache.Key, fetch func(context.Context) (T, error)) (T, error) {
	if snapshot, ok := cache.Get[T](s.cache, key); ok {
		return snapshot, nil
	}
	snapshot, err := fetch(ctx)
	if err != nil {
		var zero T
		s.log.Warn("cache fill failed",
			zap.String("institute", key.Institute),
			zap.String("collection", string(key.Collection)),
			zap.Error(err))
		return zero, err
	}
	cache.Put(s.cache, key, snapshot)
	return snapshot, nil
}

func (s *InstituteService) Departments(ctx context.Context, institute string) ([]string, error) {
	key := cache.Key{Institute: institute, Collection: cache.Departments}
	return readThrough(ctx, s, key, func(ctx context.Context) ([]string, error) {
		return s.gateway.Departments(ctx, institute)
	})
}

func (s *InstituteService) Busses(ctx context.Context, institute string) ([]string, error) {
	key := cache.Key{Institute: institute, Collection: cache.Busses}
	return readThrough(ctx, s, key, func(ctx context.Context) ([]string, error) {
		return s.gateway.Busses(ctx, institute)
	})
}

func (s *InstituteService) Admins(ctx context.Context, institute string) ([]models.AdminRecord, error) {
	key := cache.Key{Institute: institute, Collection: cache.Admins}
	return readThrough(ctx, s, key, func(ctx context.Context) ([]models.AdminRecord, error) {
		return s.gateway.Admins(ctx, institute)
	})
}

func (s *InstituteService) Users(ctx context.Context, institute string) ([]models.UserRecord, error) {
	key := cache.Key{Institute: institute, Collection: cache.Users}
	return readThrough(ctx, s, key, func(ctx context.Context) ([]models.UserRecord, error) {
		return s.gateway.Users(ctx, institute)
	})
}

// UsersByBus is always served fresh: the per-bus view backs an edit surface
// and must not lag behind reassignments.
func (s *InstituteService) UsersByBus(ctx context.Context, institute, busNo string) ([]models.UserRecord, error) {
	return s.gateway.UsersByBus(ctx, institute, busNo)
}

// SearchUser looks a rider up by enrollment number, also always fresh. No
// match surfaces as store.ErrNotFound.
func (s *InstituteService) SearchUser(ctx context.Context, institute, enrollNo string) (*models.UserRecord, error) {
	if enrollNo == "" {
		return nil, ErrEmptyValue
	}
	return s.gateway.UserByEnrollNo(ctx, institute, enrollNo)
}

// appendIfAbsent merges value into a cached list snapshot, mirroring the
// store's idempotent array union. Both helpers build a fresh slice: cached
// snapshots are handed out to concurrent readers and must never be rewritten
// in place.
func appendIfAbsent(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	out := make([]string, len(list), len(list)+1)
	copy(out, list)
	return append(out, value)
}

func remove(list []string, value string) []string {
	out := make([]string, 0, len(list))
	for _, existing := range list {
		if existing != value {
			out = append(out, existing)
		}
	}
	return out
}

func (s *InstituteService) AddDepartment(ctx context.Context, institute, name string) error {
	if name == "" {
		return ErrEmptyValue
	}
	if err := s.gateway.AddDepartment(ctx, institute, name); err != nil {
		return err
	}
	cache.Mutate(s.cache, cache.Key{Institute: institute, Collection: cache.Departments},
		func(list []string) []string { return appendIfAbsent(list, name) })
	return nil
}

func (s *InstituteService) DeleteDepartment(ctx context.Context, institute, name string) error {
	if name == "" {
		return ErrEmptyValue
	}
	if err := s.gateway.RemoveDepartment(ctx, institute, name); err != nil {
		return err
	}
	cache.Mutate(s.cache, cache.Key{Institute: institute, Collection: cache.Departments},
		func(list []string) []string { return remove(list, name) })
	return nil
}

// AddBus appends a bus code. The occupancy snapshot is invalidated because
// its row set tracks the bus list.
func (s *InstituteService) AddBus(ctx context.Context, institute, busNo string) error {
	if busNo == "" {
		return ErrEmptyValue
	}
	if err := s.gateway.AddBus(ctx, institute, busNo); err != nil {
		return err
	}
	cache.Mutate(s.cache, cache.Key{Institute: institute, Collection: cache.Busses},
		func(list []string) []string { return appendIfAbsent(list, busNo) })
	s.cache.Invalidate(cache.Key{Institute: institute, Collection: cache.BusCounts})
	return nil
}

func (s *InstituteService) DeleteBus(ctx context.Context, institute, busNo string) error {
	if busNo == "" {
		return ErrEmptyValue
	}
	if err := s.gateway.RemoveBus(ctx, institute, busNo); err != nil {
		return err
	}
	cache.Mutate(s.cache, cache.Key{Institute: institute, Collection: cache.Busses},
		func(list []string) []string { return remove(list, busNo) })
	s.cache.Invalidate(cache.Key{Institute: institute, Collection: cache.BusCounts})
	return nil
}

// ReassignBus moves a rider to another bus. The new bus must already be in
// the institute's bus list. On success both the users snapshot and the
// occupancy snapshot are invalidated so the next view recomputes instead of
// showing stale counts.
func (s *InstituteService) ReassignBus(ctx context.Context, institute, uid, busNo string) error {
	busses, err := s.Busses(ctx, institute)
	if err != nil {
		return err
	}
	known := false
	for _, b := range busses {
		if b == busNo {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownBus
	}

	if err := s.gateway.SetUserBus(ctx, institute, uid, busNo); err != nil {
		return err
	}

	s.cache.Invalidate(
		cache.Key{Institute: institute, Collection: cache.Users},
		cache.Key{Institute: institute, Collection: cache.BusCounts},
	)
	return nil
}

// InvalidateRecords drops the record snapshots after an out-of-band
// mutation (admin/user creation through the backend API).
func (s *InstituteService) InvalidateRecords(institute string) {
	s.cache.Invalidate(
		cache.Key{Institute: institute, Collection: cache.Admins},
		cache.Key{Institute: institute, Collection: cache.Users},
		cache.Key{Institute: institute, Collection: cache.BusCounts},
	)
}
