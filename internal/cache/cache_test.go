package cache

import (
	"testing"
)

func TestGetAbsent(t *testing.T) {
	s := NewStore()
	if _, ok := Get[[]string](s, Key{Institute: "smvec", Collection: Busses}); ok {
		t.Fatal("expected absent slot")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := NewStore()
	key := Key{Institute: "smvec", Collection: Busses}
	Put(s, key, []string{"B1", "B2"})

	got, ok := Get[[]string](s, key)
	if !ok {
		t.Fatal("expected snapshot")
	}
	if len(got) != 2 || got[0] != "B1" || got[1] != "B2" {
		t.Fatalf("unexpected snapshot: %v", got)
	}
}

func TestGetWrongTypeCountsAsAbsent(t *testing.T) {
	s := NewStore()
	key := Key{Institute: "smvec", Collection: Busses}
	Put(s, key, []string{"B1"})

	if _, ok := Get[int](s, key); ok {
		t.Fatal("type-mismatched read must report absent")
	}
}

func TestMutateAbsentIsNoop(t *testing.T) {
	s := NewStore()
	key := Key{Institute: "smvec", Collection: Busses}
	Mutate(s, key, func(list []string) []string { return append(list, "B1") })

	if _, ok := Get[[]string](s, key); ok {
		t.Fatal("mutation must not materialize an absent slot")
	}
}

func TestMutatePresent(t *testing.T) {
	s := NewStore()
	key := Key{Institute: "smvec", Collection: Departments}
	Put(s, key, []string{"CSE"})
	Mutate(s, key, func(list []string) []string { return append(list, "ECE") })

	got, _ := Get[[]string](s, key)
	if len(got) != 2 || got[1] != "ECE" {
		t.Fatalf("unexpected snapshot after mutate: %v", got)
	}
}

func TestInvalidate(t *testing.T) {
	s := NewStore()
	busKey := Key{Institute: "smvec", Collection: Busses}
	userKey := Key{Institute: "smvec", Collection: Users}
	otherKey := Key{Institute: "other", Collection: Busses}
	Put(s, busKey, []string{"B1"})
	Put(s, userKey, []string{"u1"})
	Put(s, otherKey, []string{"X1"})

	s.Invalidate(busKey, userKey)

	if _, ok := Get[[]string](s, busKey); ok {
		t.Fatal("busKey should be invalidated")
	}
	if _, ok := Get[[]string](s, userKey); ok {
		t.Fatal("userKey should be invalidated")
	}
	if _, ok := Get[[]string](s, otherKey); !ok {
		t.Fatal("other institute must be untouched")
	}
}

func TestInvalidateInstitute(t *testing.T) {
	s := NewStore()
	Put(s, Key{Institute: "smvec", Collection: Busses}, []string{"B1"})
	Put(s, ProfileKey("smvec", "uid-1"), "profile")
	Put(s, Key{Institute: "other", Collection: Busses}, []string{"X1"})

	s.InvalidateInstitute("smvec")

	if _, ok := Get[[]string](s, Key{Institute: "smvec", Collection: Busses}); ok {
		t.Fatal("smvec slots should be gone")
	}
	if _, ok := Get[string](s, ProfileKey("smvec", "uid-1")); ok {
		t.Fatal("smvec profile should be gone")
	}
	if _, ok := Get[[]string](s, Key{Institute: "other", Collection: Busses}); !ok {
		t.Fatal("other institute must survive")
	}
}
