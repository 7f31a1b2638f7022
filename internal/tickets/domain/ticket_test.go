package tickets

import "testing"

func TestValidTransition(t *testing.T) {
	allowed := [][2]string{
		{StatusOpen, StatusAssigned},
		{StatusOpen, StatusInProgress},
		{StatusAssigned, StatusInProgress},
		{StatusAssigned, StatusResolved},
		{StatusInProgress, StatusResolved},
		{StatusResolved, StatusInProgress},
		{StatusResolved, StatusClosed},
		{StatusOpen, StatusClosed},
	}
	for _, pair := range allowed {
		if !ValidTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be allowed", pair[0], pair[1])
		}
	}

	denied := [][2]string{
		{StatusClosed, StatusOpen},
		{StatusClosed, StatusInProgress},
		{StatusResolved, StatusOpen},
		{StatusOpen, StatusResolved},
		{StatusOpen, StatusOpen},
		{"bogus", StatusOpen},
	}
	for _, pair := range denied {
		if ValidTransition(pair[0], pair[1]) {
			t.Fatalf("expected %s -> %s to be denied", pair[0], pair[1])
		}
	}
}

func TestNormalizePriority(t *testing.T) {
	if got := NormalizePriority("urgent"); got != PriorityUrgent {
		t.Fatalf("expected urgent, got %s", got)
	}
	if got := NormalizePriority(""); got != PriorityNormal {
		t.Fatalf("expected normal fallback, got %s", got)
	}
	if got := NormalizePriority("sev1"); got != PriorityNormal {
		t.Fatalf("expected normal fallback, got %s", got)
	}
}
