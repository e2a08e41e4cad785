package stock

import (
	"fmt"
	"math"
	"testing"

	pkgerrors "github.com/angelmondragon/retailpos-backend/pkg/errors"
)

func TestCheckAvailabilityAllowsWithinStock(t *testing.T) {
	cases := [][3]int{{1, 0, 1}, {3, 2, 5}, {5, 0, 5}, {0, 0, 0}}
	for _, c := range cases {
		if err := CheckAvailability(c[0], c[1], c[2]); err != nil {
			t.Fatalf("requested=%d reserved=%d stock=%d: unexpected error %v", c[0], c[1], c[2], err)
		}
	}
}

func TestCheckAvailabilityMergeScenario(t *testing.T) {
	err := CheckAvailability(3, 3, 5)
	if !pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	shortfall, ok := ShortfallOf(err)
	if !ok {
		t.Fatalf("expected shortfall details")
	}
	if shortfall.Available != 2 || shortfall.Held != 3 || shortfall.Requested != 3 || shortfall.Stock != 5 {
		t.Fatalf("unexpected shortfall %+v", shortfall)
	}
}

func TestCheckAvailabilityFloorsAvailableAtZero(t *testing.T) {
	err := CheckAvailability(1, 7, 5)
	shortfall, ok := ShortfallOf(err)
	if !ok {
		t.Fatalf("expected shortfall, got %v", err)
	}
	if shortfall.Available != 0 {
		t.Fatalf("expected 0 available, got %d", shortfall.Available)
	}
}

func TestShortfallOfIgnoresOtherErrors(t *testing.T) {
	if _, ok := ShortfallOf(fmt.Errorf("boom")); ok {
		t.Fatalf("plain errors carry no shortfall")
	}
	if _, ok := ShortfallOf(pkgerrors.New(pkgerrors.CodeValidation, "bad")); ok {
		t.Fatalf("validation errors carry no shortfall")
	}
	if _, ok := ShortfallOf(nil); ok {
		t.Fatalf("nil carries no shortfall")
	}
}

func TestCheckAvailabilityMetadata(t *testing.T) {
	err := CheckAvailability(2, 0, 1)
	meta := pkgerrors.MetadataFor(pkgerrors.As(err).Code())
	if meta.HTTPStatus != 409 {
		t.Fatalf("expected 409 got %d", meta.HTTPStatus)
	}
}

func TestCheckAvailabilityRejectsHugeRequests(t *testing.T) {
	cases := [][3]int{{math.MaxInt, 1, 5}, {math.MaxInt, 0, 5}, {1, math.MaxInt, 5}, {math.MaxInt, math.MaxInt, math.MaxInt}}
	for _, c := range cases {
		err := CheckAvailability(c[0], c[1], c[2])
		if !pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
			t.Fatalf("requested=%d reserved=%d stock=%d: expected insufficient stock, got %v", c[0], c[1], c[2], err)
		}
	}
	if err := CheckAvailability(math.MaxInt, 0, math.MaxInt); err != nil {
		t.Fatalf("request equal to stock should pass, got %v", err)
	}
}

func TestRemaining(t *testing.T) {
	cases := []struct{ reserved, stock, want int }{
		{0, 5, 5}, {3, 5, 2}, {5, 5, 0}, {9, 5, 0}, {-2, 5, 5}, {0, 0, 0}, {0, -1, 0},
	}
	for _, c := range cases {
		if got := Remaining(c.reserved, c.stock); got != c.want {
			t.Fatalf("Remaining(%d, %d) = %d, want %d", c.reserved, c.stock, got, c.want)
		}
	}
}
