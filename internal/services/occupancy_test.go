package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ridemap/admin-server/internal/cache"
	"github.com/ridemap/admin-server/internal/metrics"
	"github.com/ridemap/admin-server/internal/models"
	"github.com/ridemap/admin-server/internal/store/storetest"
)

func newOccupancyService(gateway *storetest.Fake) (*OccupancyService, *cache.Store) {
	snapshots := cache.NewStore()
	institutes := NewInstituteService(gateway, snapshots, zap.NewNop())
	m := metrics.New(prometheus.NewRegistry())
	return NewOccupancyService(gateway, institutes, snapshots, m, zap.NewNop()), snapshots
}

func riders(busNo, gender string, n int) []models.UserRecord {
	users := make([]models.UserRecord, n)
	for i := range users {
		users[i] = models.UserRecord{
			ID:        fmt.Sprintf("%s-%s-%d", busNo, gender, i),
			Institute: "smvec",
			BusNo:     busNo,
			Gender:    gender,
		}
	}
	return users
}

func TestReportSmvecScenario(t *testing.T) {
	gateway := storetest.New()
	gateway.BussesByInst["smvec"] = []string{"B1", "B2"}
	users := append(riders("B1", models.GenderMale, 30), riders("B1", models.GenderFemale, 20)...)
	users = append(users, riders("B2", models.GenderMale, 2)...)
	gateway.UsersByInst["smvec"] = users

	svc, _ := newOccupancyService(gateway)
	report, err := svc.Report(context.Background(), "smvec")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	if len(report.Buses) != 2 {
		t.Fatalf("expected one row per bus, got %d", len(report.Buses))
	}
	if report.Buses[0].BusName != "B1" || report.Buses[0].UserCount != 50 {
		t.Fatalf("B1 row wrong: %+v", report.Buses[0])
	}
	if report.Buses[1].BusName != "B2" || report.Buses[1].UserCount != 2 {
		t.Fatalf("B2 row wrong: %+v", report.Buses[1])
	}
	if report.Total != 52 {
		t.Fatalf("total = %d, want 52", report.Total)
	}
	if !report.Buses[0].OverCapacity {
		t.Fatal("B1 at 50 riders must be flagged over capacity")
	}
	if report.Buses[1].OverCapacity {
		t.Fatal("B2 at 2 riders must not be flagged")
	}
	if report.MaleCount != 32 || report.FemaleCount != 20 {
		t.Fatalf("gender split wrong: male %d female %d", report.MaleCount, report.FemaleCount)
	}
}

func TestReportAtCapacityBoundary(t *testing.T) {
	gateway := storetest.New()
	gateway.BussesByInst["smvec"] = []string{"B47", "B48"}
	users := append(riders("B47", models.GenderMale, 47), riders("B48", models.GenderMale, 48)...)
	gateway.UsersByInst["smvec"] = users

	svc, _ := newOccupancyService(gateway)
	report, err := svc.Report(context.Background(), "smvec")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Buses[0].OverCapacity {
		t.Fatal("47 riders is under the threshold")
	}
	if !report.Buses[1].OverCapacity {
		t.Fatal("48 riders hits the threshold")
	}
}

func TestReportPreservesBusOrder(t *testing.T) {
	gateway := storetest.New()
	order := []string{"B7", "B1", "B4", "B2"}
	gateway.BussesByInst["smvec"] = order

	svc, _ := newOccupancyService(gateway)
	report, err := svc.Report(context.Background(), "smvec")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	for i, busNo := range order {
		if report.Buses[i].BusName != busNo {
			t.Fatalf("row %d = %q, want %q", i, report.Buses[i].BusName, busNo)
		}
	}
}

func TestReportSumMatchesTotalUserCount(t *testing.T) {
	gateway := storetest.New()
	gateway.BussesByInst["smvec"] = []string{"B1", "B2", "B3"}
	users := append(riders("B1", models.GenderMale, 5), riders("B2", models.GenderFemale, 7)...)
	users = append(users, riders("B3", models.GenderMale, 11)...)
	gateway.UsersByInst["smvec"] = users

	svc, _ := newOccupancyService(gateway)
	report, err := svc.Report(context.Background(), "smvec")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	independent, _ := gateway.CountUsers(context.Background(), "smvec")
	if report.Total != independent {
		t.Fatalf("sum of rows %d != independent total %d", report.Total, independent)
	}
}

func TestReportToleratesSingleBusFailure(t *testing.T) {
	gateway := storetest.New()
	gateway.BussesByInst["smvec"] = []string{"B1", "B2"}
	gateway.UsersByInst["smvec"] = riders("B2", models.GenderMale, 3)
	gateway.CountErrs["B1"] = errors.New("query timeout")

	svc, _ := newOccupancyService(gateway)
	report, err := svc.Report(context.Background(), "smvec")
	if err != nil {
		t.Fatalf("a single bus failure must not abort the report: %v", err)
	}
	if report.Buses[0].UserCount != 0 {
		t.Fatalf("failed bus must count 0, got %d", report.Buses[0].UserCount)
	}
	if report.Buses[1].UserCount != 3 {
		t.Fatalf("healthy bus unaffected, got %d", report.Buses[1].UserCount)
	}
}

func TestDegradedReportNotCached(t *testing.T) {
	gateway := storetest.New()
	gateway.BussesByInst["smvec"] = []string{"B1"}
	gateway.UsersByInst["smvec"] = riders("B1", models.GenderMale, 5)
	gateway.CountErrs["B1"] = errors.New("query timeout")

	svc, _ := newOccupancyService(gateway)
	ctx := context.Background()

	report, err := svc.Report(ctx, "smvec")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Buses[0].UserCount != 0 {
		t.Fatalf("failed bus must count 0, got %d", report.Buses[0].UserCount)
	}

	// The query recovers; the next request must retry instead of serving
	// the zeroed row from cache.
	delete(gateway.CountErrs, "B1")
	report, err = svc.Report(ctx, "smvec")
	if err != nil {
		t.Fatalf("report after recovery: %v", err)
	}
	if report.Buses[0].UserCount != 5 {
		t.Fatalf("recovered count not served, got %d", report.Buses[0].UserCount)
	}
}

func TestReportFailsOnGenderCountFailure(t *testing.T) {
	gateway := storetest.New()
	gateway.BussesByInst["smvec"] = []string{"B1"}
	gateway.CountGender = errors.New("query timeout")

	svc, _ := newOccupancyService(gateway)
	if _, err := svc.Report(context.Background(), "smvec"); err == nil {
		t.Fatal("gender count failure fails the report")
	}
}

func TestReportCachedUntilInvalidated(t *testing.T) {
	gateway := storetest.New()
	gateway.BussesByInst["smvec"] = []string{"B1"}
	gateway.UsersByInst["smvec"] = riders("B1", models.GenderMale, 2)

	svc, snapshots := newOccupancyService(gateway)
	ctx := context.Background()

	first, err := svc.Report(ctx, "smvec")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	// More riders appear, but the snapshot is still served.
	gateway.UsersByInst["smvec"] = riders("B1", models.GenderMale, 10)
	second, err := svc.Report(ctx, "smvec")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if second.Total != first.Total {
		t.Fatalf("cached report must be stable, got %d then %d", first.Total, second.Total)
	}

	snapshots.Invalidate(cache.Key{Institute: "smvec", Collection: cache.BusCounts})
	third, err := svc.Report(ctx, "smvec")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if third.Total != 10 {
		t.Fatalf("invalidation must force a recompute, got %d", third.Total)
	}
}
