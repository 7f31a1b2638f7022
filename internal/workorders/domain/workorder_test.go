package workorders

import "testing"

func TestValidTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusPending, StatusInProgress},
		{StatusPending, StatusCancelled},
		{StatusInProgress, StatusDone},
		{StatusInProgress, StatusCancelled},
	}
	for _, pair := range allowed {
		if !ValidTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{StatusPending, StatusDone},
		{StatusDone, StatusInProgress},
		{StatusCancelled, StatusPending},
		{StatusPending, StatusPending},
	}
	for _, pair := range denied {
		if ValidTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be denied", pair[0], pair[1])
		}
	}
}
