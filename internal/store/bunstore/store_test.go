package bunstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"slotbook/internal/domain"
	"slotbook/internal/store"
)

func openSQLiteStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open("sqlite://"+filepath.Join(t.TempDir(), "slotbook.db"), PoolConfig{})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := CreateSchema(ctx, db); err != nil {
		t.Fatalf("CreateSchema error: %v", err)
	}
	// Idempotent.
	if err := CreateSchema(ctx, db); err != nil {
		t.Fatalf("second CreateSchema error: %v", err)
	}
	return New(db)
}

func hm(h, m int) civil.Time {
	return civil.Time{Hour: h, Minute: m}
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		url        string
		wantDriver string
		wantDSN    string
	}{
		{url: "postgres://u:p@localhost:5432/db", wantDriver: "pgx", wantDSN: "postgres://u:p@localhost:5432/db"},
		{url: "sqlite:///var/lib/slotbook.db", wantDriver: "sqlite", wantDSN: "/var/lib/slotbook.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{url: "file:slotbook.db?mode=rwc", wantDriver: "sqlite", wantDSN: "file:slotbook.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, dsn, _ := driverFor(tt.url)
			if driver != tt.wantDriver {
				t.Fatalf("driver = %q, want %q", driver, tt.wantDriver)
			}
			if dsn != tt.wantDSN {
				t.Fatalf("dsn = %q, want %q", dsn, tt.wantDSN)
			}
		})
	}
}

func TestDateValueScan(t *testing.T) {
	want := civil.Date{Year: 2026, Month: 10, Day: 18}
	inputs := []any{
		"2026-10-18",
		[]byte("2026-10-18"),
		"2026-10-18 00:00:00+00:00",
		time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}
	for _, in := range inputs {
		var d dateValue
		if err := d.Scan(in); err != nil {
			t.Fatalf("Scan(%v) error: %v", in, err)
		}
		if d.Date != want {
			t.Fatalf("Scan(%v) = %s, want %s", in, d.Date, want)
		}
	}

	var d dateValue
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error for int input")
	}
}

func TestSQLiteStore_OwnersCreateIfAbsent(t *testing.T) {
	s := openSQLiteStore(t)
	ctx := context.Background()

	if _, err := s.Owners().GetByUsername(ctx, "alice"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetByUsername err = %v, want %v", err, store.ErrNotFound)
	}

	first, err := s.Owners().CreateIfAbsent(ctx, "alice", "Alice")
	if err != nil {
		t.Fatalf("CreateIfAbsent error: %v", err)
	}
	second, err := s.Owners().CreateIfAbsent(ctx, "alice", "Someone Else")
	if err != nil {
		t.Fatalf("second CreateIfAbsent error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %s vs %s", first.ID, second.ID)
	}
	if second.DisplayName != "Alice" {
		t.Fatalf("display name = %q, want %q", second.DisplayName, "Alice")
	}
}

func TestSQLiteStore_ReplaceForOwnerKeepsSingleRule(t *testing.T) {
	s := openSQLiteStore(t)
	ctx := context.Background()

	owner, err := s.Owners().CreateIfAbsent(ctx, "alice", "Alice")
	if err != nil {
		t.Fatalf("CreateIfAbsent error: %v", err)
	}

	if _, err := s.Availability().ReplaceForOwner(ctx, owner.ID, domain.AvailabilityRule{Start: hm(9, 0), End: hm(12, 0)}); err != nil {
		t.Fatalf("ReplaceForOwner error: %v", err)
	}
	if _, err := s.Availability().ReplaceForOwner(ctx, owner.ID, domain.AvailabilityRule{Start: hm(10, 0), End: hm(17, 0)}); err != nil {
		t.Fatalf("ReplaceForOwner error: %v", err)
	}

	rules, err := s.Availability().FindByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("FindByOwner error: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("len(rules) = %d, want 1", len(rules))
	}
	if rules[0].Start != hm(10, 0) || rules[0].End != hm(17, 0) {
		t.Fatalf("rule = %s-%s, want 10:00-17:00", rules[0].Start, rules[0].End)
	}
}

func TestSQLiteStore_AppointmentsUniqueAndOrdered(t *testing.T) {
	s := openSQLiteStore(t)
	ctx := context.Background()

	owner, err := s.Owners().CreateIfAbsent(ctx, "alice", "Alice")
	if err != nil {
		t.Fatalf("CreateIfAbsent error: %v", err)
	}
	other, err := s.Owners().CreateIfAbsent(ctx, "bob", "Bob")
	if err != nil {
		t.Fatalf("CreateIfAbsent error: %v", err)
	}

	day1 := civil.Date{Year: 2026, Month: 10, Day: 18}
	day2 := day1.AddDays(1)

	book := func(o domain.Owner, date civil.Date, start civil.Time, name string) (domain.Appointment, error) {
		return s.Appointments().Insert(ctx, domain.Appointment{
			OwnerID:     o.ID,
			Date:        date,
			Start:       start,
			End:         domain.AddToTime(start, domain.SlotDuration),
			InviteeName: name,
		})
	}

	for _, in := range []struct {
		date  civil.Date
		start civil.Time
		name  string
	}{
		{day2, hm(9, 0), "c"},
		{day1, hm(14, 0), "b"},
		{day1, hm(10, 0), "a"},
	} {
		if _, err := book(owner, in.date, in.start, in.name); err != nil {
			t.Fatalf("Insert %s error: %v", in.name, err)
		}
	}

	if _, err := book(owner, day1, hm(10, 0), "dup"); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate Insert err = %v, want %v", err, store.ErrConflict)
	}
	if _, err := book(other, day1, hm(10, 0), "other owner"); err != nil {
		t.Fatalf("same slot for another owner: %v", err)
	}

	got, err := s.Appointments().FindByOwnerDateStart(ctx, owner.ID, day1, hm(10, 0))
	if err != nil {
		t.Fatalf("FindByOwnerDateStart error: %v", err)
	}
	if got.InviteeName != "a" || got.Date != day1 || got.End != hm(11, 0) {
		t.Fatalf("appointment = %+v", got)
	}
	if _, err := s.Appointments().FindByOwnerDateStart(ctx, owner.ID, day1, hm(11, 0)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("FindByOwnerDateStart err = %v, want %v", err, store.ErrNotFound)
	}

	onDay1, err := s.Appointments().FindByOwnerAndDate(ctx, owner.ID, day1)
	if err != nil {
		t.Fatalf("FindByOwnerAndDate error: %v", err)
	}
	if len(onDay1) != 2 || onDay1[0].InviteeName != "a" || onDay1[1].InviteeName != "b" {
		t.Fatalf("day1 appointments = %+v", onDay1)
	}

	upcoming, err := s.Appointments().FindUpcoming(ctx, owner.ID, day1)
	if err != nil {
		t.Fatalf("FindUpcoming error: %v", err)
	}
	var names []string
	for _, a := range upcoming {
		names = append(names, a.InviteeName)
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("upcoming = %v, want [a b c]", names)
	}

	upcoming, err = s.Appointments().FindUpcoming(ctx, owner.ID, day2)
	if err != nil {
		t.Fatalf("FindUpcoming error: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].InviteeName != "c" {
		t.Fatalf("upcoming from day2 = %+v", upcoming)
	}
}

func TestSQLiteStore_ConcurrentInsertsSingleWinner(t *testing.T) {
	s := openSQLiteStore(t)
	ctx := context.Background()

	owner, err := s.Owners().CreateIfAbsent(ctx, "alice", "Alice")
	if err != nil {
		t.Fatalf("CreateIfAbsent error: %v", err)
	}
	date := civil.Date{Year: 2026, Month: 10, Day: 18}

	const n = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Appointments().Insert(ctx, domain.Appointment{
				OwnerID:     owner.ID,
				Date:        date,
				Start:       hm(10, 0),
				End:         hm(11, 0),
				InviteeName: "racer",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected Insert error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 || conflicts != n-1 {
		t.Fatalf("wins = %d conflicts = %d, want 1 and %d", wins, conflicts, n-1)
	}
}
