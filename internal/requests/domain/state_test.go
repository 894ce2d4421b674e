package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"open to broadcasted", StatusOpen, StatusBroadcasted, true},
		{"open to cancelled", StatusOpen, StatusCancelled, true},
		{"open to expired", StatusOpen, StatusExpired, true},
		{"open to assigned", StatusOpen, StatusAssigned, false},
		{"broadcasted to assigned", StatusBroadcasted, StatusAssigned, true},
		{"broadcasted to cancelled", StatusBroadcasted, StatusCancelled, true},
		{"broadcasted to expired", StatusBroadcasted, StatusExpired, true},
		{"broadcasted to done", StatusBroadcasted, StatusDone, false},
		{"assigned to done", StatusAssigned, StatusDone, true},
		{"assigned to cancelled", StatusAssigned, StatusCancelled, false},
		{"done is terminal", StatusDone, StatusOpen, false},
		{"cancelled is terminal", StatusCancelled, StatusBroadcasted, false},
		{"expired is terminal", StatusExpired, StatusBroadcasted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	for _, status := range []Status{StatusDone, StatusCancelled, StatusExpired} {
		if !IsTerminal(status) {
			t.Errorf("%s should be terminal", status)
		}
	}
	for _, status := range []Status{StatusOpen, StatusBroadcasted, StatusAssigned} {
		if IsTerminal(status) {
			t.Errorf("%s should not be terminal", status)
		}
	}
}

func TestCancellable(t *testing.T) {
	if !Cancellable(StatusOpen) || !Cancellable(StatusBroadcasted) {
		t.Error("open and broadcasted must be cancellable")
	}
	if Cancellable(StatusAssigned) || Cancellable(StatusDone) {
		t.Error("assigned and done must not be cancellable")
	}
}
