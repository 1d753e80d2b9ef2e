package checkout

import (
	"regexp"
	"testing"
	"time"
)

func TestGenerateOrderNumberFormat(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-20260314-[0-9A-F]{8}$`)

	for i := 0; i < 100; i++ {
		number := GenerateOrderNumber("ORD", now)
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected order number %q", number)
		}
	}
}

func TestGenerateOrderNumberUsesUTCDate(t *testing.T) {
	t.Parallel()

	manila := time.FixedZone("PHT", 8*3600)
	now := time.Date(2026, time.March, 15, 6, 0, 0, 0, manila)

	number := GenerateOrderNumber("ORD", now)
	if got := number[4:12]; got != "20260314" {
		t.Fatalf("expected UTC date 20260314, got %s", got)
	}
}

func TestGenerateOrderNumberVaries(t *testing.T) {
	t.Parallel()

	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		number := GenerateOrderNumber("ORD", now)
		if seen[number] {
			t.Fatalf("duplicate order number generated: %s", number)
		}
		seen[number] = true
	}
}
