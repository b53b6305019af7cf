package models

import "testing"

func TestOrderTerminal(t *testing.T) {
	cases := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderCompleted, false},
		{OrderRefunded, true},
		{OrderCancelled, true},
	}
	for _, tc := range cases {
		o := Order{Status: tc.status}
		if got := o.Terminal(); got != tc.want {
			t.Errorf("Terminal() with status %s = %v, want %v", tc.status, got, tc.want)
		}
	}
}
