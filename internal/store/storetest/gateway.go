// Package storetest provides an in-memory Gateway for tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ridemap/admin-server/internal/models"
	"github.com/ridemap/admin-server/internal/store"
)

// Fake is a configurable in-memory Gateway. The zero value is unusable; use
// New. Err fails every call; finer-grained error knobs override single
// operations.
type Fake struct {
	mu sync.Mutex

	DepartmentsByInst map[string][]string
	BussesByInst      map[string][]string
	AdminsByInst      map[string][]models.AdminRecord
	UsersByInst       map[string][]models.UserRecord
	Reports           map[string]models.ReportedUser

	Err         error
	TouchErr    error
	ProfileErr  error
	UpsertErr   error
	CountErrs   map[string]error // per bus code
	CountGender error

	DepartmentsFetches int
	BussesFetches      int
	AdminsFetches      int
	UsersFetches       int
	TouchedUIDs        []string
	Touched            chan string
}

func New() *Fake {
	return &Fake{
		DepartmentsByInst: map[string][]string{},
		BussesByInst:      map[string][]string{},
		AdminsByInst:      map[string][]models.AdminRecord{},
		UsersByInst:       map[string][]models.UserRecord{},
		Reports:           map[string]models.ReportedUser{},
		CountErrs:         map[string]error{},
	}
}

var _ store.Gateway = (*Fake)(nil)

func (f *Fake) Departments(ctx context.Context, institute string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DepartmentsFetches++
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]string(nil), f.DepartmentsByInst[institute]...), nil
}

func (f *Fake) Busses(ctx context.Context, institute string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BussesFetches++
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]string(nil), f.BussesByInst[institute]...), nil
}

func addToSet(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func pull(list []string, value string) []string {
	out := list[:0]
	for _, existing := range list {
		if existing != value {
			out = append(out, existing)
		}
	}
	return out
}

func (f *Fake) AddDepartment(ctx context.Context, institute, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.DepartmentsByInst[institute] = addToSet(f.DepartmentsByInst[institute], name)
	return nil
}

func (f *Fake) RemoveDepartment(ctx context.Context, institute, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.DepartmentsByInst[institute] = pull(f.DepartmentsByInst[institute], name)
	return nil
}

func (f *Fake) AddBus(ctx context.Context, institute, busNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.BussesByInst[institute] = addToSet(f.BussesByInst[institute], busNo)
	return nil
}

func (f *Fake) RemoveBus(ctx context.Context, institute, busNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.BussesByInst[institute] = pull(f.BussesByInst[institute], busNo)
	return nil
}

func (f *Fake) Admins(ctx context.Context, institute string) ([]models.AdminRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.AdminsFetches++
	if f.Err != nil {
		return nil, f.Err
	}
	var visible []models.AdminRecord
	for _, admin := range f.AdminsByInst[institute] {
		if !admin.IsHided {
			visible = append(visible, admin)
		}
	}
	return visible, nil
}

func (f *Fake) AdminByID(ctx context.Context, institute, uid string) (*models.AdminRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	for _, admin := range f.AdminsByInst[institute] {
		if admin.UserID == uid {
			copied := admin
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("admin %q: %w", uid, store.ErrNotFound)
}

func (f *Fake) TouchAdminLogin(ctx context.Context, institute, uid string, at time.Time) error {
	f.mu.Lock()
	f.TouchedUIDs = append(f.TouchedUIDs, uid)
	touched := f.Touched
	err := f.TouchErr
	f.mu.Unlock()
	if touched != nil {
		touched <- uid
	}
	return err
}

func (f *Fake) Users(ctx context.Context, institute string) ([]models.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UsersFetches++
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]models.UserRecord(nil), f.UsersByInst[institute]...), nil
}

func (f *Fake) UsersByBus(ctx context.Context, institute, busNo string) ([]models.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var matched []models.UserRecord
	for _, user := range f.UsersByInst[institute] {
		if user.BusNo == busNo {
			matched = append(matched, user)
		}
	}
	return matched, nil
}

func (f *Fake) UserByEnrollNo(ctx context.Context, institute, enrollNo string) (*models.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, user := range f.UsersByInst[institute] {
		if user.EnrollNo == enrollNo {
			user := user
			return &user, nil
		}
	}
	return nil, fmt.Errorf("enrollNo %q: %w", enrollNo, store.ErrNotFound)
}

func (f *Fake) SetUserBus(ctx context.Context, institute, uid, busNo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	users := f.UsersByInst[institute]
	for i := range users {
		if users[i].ID == uid {
			users[i].BusNo = busNo
			return nil
		}
	}
	return fmt.Errorf("user %q: %w", uid, store.ErrNotFound)
}

func (f *Fake) CountUsersByBus(ctx context.Context, institute, busNo string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.CountErrs[busNo]; err != nil {
		return 0, err
	}
	var count int64
	for _, user := range f.UsersByInst[institute] {
		if user.BusNo == busNo {
			count++
		}
	}
	return count, nil
}

func (f *Fake) CountUsersByGender(ctx context.Context, institute, gender string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CountGender != nil {
		return 0, f.CountGender
	}
	var count int64
	for _, user := range f.UsersByInst[institute] {
		if user.Gender == gender {
			count++
		}
	}
	return count, nil
}

func (f *Fake) CountUsers(ctx context.Context, institute string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.UsersByInst[institute])), nil
}

func (f *Fake) ReportedUsers(ctx context.Context, institute string) ([]models.ReportedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var reports []models.ReportedUser
	for _, report := range f.Reports {
		if report.Institute == institute {
			reports = append(reports, report)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].Date.After(reports[j].Date) })
	return reports, nil
}

func (f *Fake) UpsertReportedUser(ctx context.Context, report models.ReportedUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpsertErr != nil {
		return f.UpsertErr
	}
	f.Reports[report.ID] = report
	return nil
}
