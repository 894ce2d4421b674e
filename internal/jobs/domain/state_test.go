package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusInProgress, StatusDone, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusNoShow, true},
		{StatusDone, StatusCancelled, false},
		{StatusCancelled, StatusInProgress, false},
		{StatusNoShow, StatusDone, false},
		{StatusNoShow, StatusCancelled, true},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []Status{StatusInProgress, StatusNoShow} {
		if IsTerminal(status) {
			t.Errorf("%s must not be terminal", status)
		}
	}
	for _, status := range []Status{StatusDone, StatusCancelled} {
		if !IsTerminal(status) {
			t.Errorf("%s must be terminal", status)
		}
	}
}
