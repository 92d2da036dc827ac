package fingerprint

import (
	"testing"
	"time"

	"github.com/sgmusicchat/newsite/internal/domain"
)

func TestUID(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("identical inputs hash identically", func(t *testing.T) {
		a := UID(1, date, "20:00:00")
		b := UID(1, date, "20:00:00")
		if a != b {
			t.Fatalf("expected equal UIDs, got %s and %s", a, b)
		}
		if len(a) != 32 {
			t.Fatalf("expected 32 hex chars, got %d", len(a))
		}
	})

	t.Run("different venue changes UID", func(t *testing.T) {
		if UID(1, date, "20:00:00") == UID(2, date, "20:00:00") {
			t.Fatal("expected different UIDs for different venues")
		}
	})

	t.Run("different date changes UID", func(t *testing.T) {
		other := date.AddDate(0, 0, 1)
		if UID(1, date, "20:00:00") == UID(1, other, "20:00:00") {
			t.Fatal("expected different UIDs for different dates")
		}
	})

	t.Run("different start time changes UID", func(t *testing.T) {
		if UID(1, date, "20:00:00") == UID(1, date, "21:00:00") {
			t.Fatal("expected different UIDs for different start times")
		}
	})

	t.Run("time of day on date does not leak into UID", func(t *testing.T) {
		noon := time.Date(2026, 2, 10, 12, 30, 0, 0, time.UTC)
		if UID(1, date, "20:00:00") != UID(1, noon, "20:00:00") {
			t.Fatal("expected UID to depend only on the calendar date")
		}
	})
}

func TestContent(t *testing.T) {
	t.Parallel()

	price := func(v float64) *float64 { return &v }
	base := domain.StagedEvent{
		Name:     "Techno Night",
		EndTime:  "23:00:00",
		PriceMin: price(20),
		IsFree:   false,
	}

	t.Run("identical content hashes identically", func(t *testing.T) {
		a := Content(base, []int64{1, 2}, []int64{7})
		b := Content(base, []int64{1, 2}, []int64{7})
		if a != b {
			t.Fatalf("expected equal hashes, got %s and %s", a, b)
		}
	})

	t.Run("price change changes hash", func(t *testing.T) {
		changed := base
		changed.PriceMin = price(25)
		if Content(base, nil, nil) == Content(changed, nil, nil) {
			t.Fatal("expected hash to change with price")
		}
	})

	t.Run("association change changes hash", func(t *testing.T) {
		if Content(base, []int64{1, 2}, nil) == Content(base, []int64{1}, nil) {
			t.Fatal("expected hash to change with genre list")
		}
	})

	t.Run("nil and zero price differ", func(t *testing.T) {
		zero := base
		zero.PriceMin = price(0)
		missing := base
		missing.PriceMin = nil
		if Content(zero, nil, nil) == Content(missing, nil, nil) {
			t.Fatal("expected absent and zero price to hash differently")
		}
	})
}
