package entity

import "testing"

func TestOrderTransitionAllowed(t *testing.T) {
	cases := []struct {
		current string
		next    string
		want    bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusPending, OrderStatusDelivered, false},
		{OrderStatusConfirmed, OrderStatusPaid, true},
		{OrderStatusConfirmed, OrderStatusDelivered, false},
		{OrderStatusPaid, OrderStatusShipped, true},
		{OrderStatusPaid, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusPaid, false},
		// terminal states allow nothing
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		// unknown status allows nothing
		{"bogus", OrderStatusConfirmed, false},
	}

	for _, tc := range cases {
		if got := OrderTransitionAllowed(tc.current, tc.next); got != tc.want {
			t.Errorf("OrderTransitionAllowed(%q, %q) = %v, want %v", tc.current, tc.next, got, tc.want)
		}
	}
}

func TestCancelledReachableFromEveryNonTerminalOrderStatus(t *testing.T) {
	for _, status := range []string{OrderStatusPending, OrderStatusConfirmed, OrderStatusPaid, OrderStatusShipped} {
		if !OrderTransitionAllowed(status, OrderStatusCancelled) {
			t.Errorf("cancel not allowed from %q", status)
		}
	}
}
