package domain

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"offered to accepted", StatusOffered, StatusAccepted, true},
		{"offered to pending approval", StatusOffered, StatusPendingClientApproval, true},
		{"offered to missed", StatusOffered, StatusMissed, true},
		{"offered to expired", StatusOffered, StatusExpired, true},
		{"offered to cancelled", StatusOffered, StatusCancelled, true},
		{"pending to accepted", StatusPendingClientApproval, StatusAccepted, true},
		{"pending to expired", StatusPendingClientApproval, StatusExpired, true},
		{"pending to cancelled", StatusPendingClientApproval, StatusCancelled, true},
		{"pending to missed", StatusPendingClientApproval, StatusMissed, false},
		{"accepted is terminal", StatusAccepted, StatusCancelled, false},
		{"missed is terminal", StatusMissed, StatusOffered, false},
		{"expired is terminal", StatusExpired, StatusAccepted, false},
		{"cancelled is terminal", StatusCancelled, StatusOffered, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestOpen(t *testing.T) {
	if !Open(StatusOffered) || !Open(StatusPendingClientApproval) {
		t.Error("offered and pending must be open")
	}
	for _, status := range []Status{StatusAccepted, StatusMissed, StatusExpired, StatusCancelled} {
		if Open(status) {
			t.Errorf("%s should not be open", status)
		}
		if !IsTerminal(status) {
			t.Errorf("%s should be terminal", status)
		}
	}
}
