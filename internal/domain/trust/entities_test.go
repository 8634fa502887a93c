package trust

import "testing"

func TestTimingEventBoundaries(t *testing.T) {
	tests := []struct {
		daysFromDue int
		wantType    EventType
		wantImpact  int
	}{
		{-10, EventPaymentEarly, 3},
		{-3, EventPaymentEarly, 3},
		{-2, EventPaymentOnTime, 2},
		{-1, EventPaymentOnTime, 2},
		{0, EventPaymentOnTime, 2},
		{1, EventPaymentLate, -3},
		{30, EventPaymentLate, -3},
	}
	for _, tc := range tests {
		typ, impact := TimingEvent(tc.daysFromDue)
		if typ != tc.wantType || impact != tc.wantImpact {
			t.Errorf("TimingEvent(%d) = (%s, %d), want (%s, %d)",
				tc.daysFromDue, typ, impact, tc.wantType, tc.wantImpact)
		}
	}
}

func TestMissedEventBuckets(t *testing.T) {
	tests := []struct {
		daysOverdue int
		wantType    EventType
		wantImpact  int
	}{
		{1, EventPaymentLate, -3},
		{7, EventPaymentLate, -3},
		{8, EventPaymentLate, -5},
		{14, EventPaymentLate, -5},
		{15, EventPaymentLate, -8},
		{30, EventPaymentLate, -8},
		{31, EventPaymentMissed, -15},
		{90, EventPaymentMissed, -15},
	}
	for _, tc := range tests {
		typ, impact := MissedEvent(tc.daysOverdue)
		if typ != tc.wantType || impact != tc.wantImpact {
			t.Errorf("MissedEvent(%d) = (%s, %d), want (%s, %d)",
				tc.daysOverdue, typ, impact, tc.wantType, tc.wantImpact)
		}
	}
}

func TestDedupeKeyShapes(t *testing.T) {
	pay := PaymentDedupeKey("loan1", "user1", "pmt1")
	if pay != "pay:loan1:user1:pmt1" {
		t.Errorf("payment key = %q", pay)
	}
	done := CompletionDedupeKey("loan1", "user1")
	if done != "done:loan1:user1" {
		t.Errorf("completion key = %q", done)
	}
	if pay == done {
		t.Error("key families must not collide")
	}
}
