package domain

import "testing"

func TestTimeSlotLabels(t *testing.T) {
	want := map[TimeSlot]string{
		TimeSlotNotSet:    "Not set",
		TimeSlotTen:       "10:00",
		TimeSlotFourteen:  "14:00",
		TimeSlotEighteen:  "18:00",
		TimeSlotTwentyTwo: "22:00",
	}
	for slot, label := range want {
		if got := slot.String(); got != label {
			t.Errorf("String(%d) = %q, want %q", slot, got, label)
		}
	}
}

func TestParseTimeSlotRoundTrip(t *testing.T) {
	for _, slot := range Slots {
		got, ok := ParseTimeSlot(slot.String())
		if !ok || got != slot {
			t.Errorf("ParseTimeSlot(%q) = %v, %v", slot.String(), got, ok)
		}
	}
	if _, ok := ParseTimeSlot("11:30"); ok {
		t.Errorf("parsed a label outside the fixed windows")
	}
}

func TestSlotForHour(t *testing.T) {
	for hour, want := range map[int]TimeSlot{
		10: TimeSlotTen,
		14: TimeSlotFourteen,
		18: TimeSlotEighteen,
		22: TimeSlotTwentyTwo,
	} {
		got, ok := SlotForHour(hour)
		if !ok || got != want {
			t.Errorf("SlotForHour(%d) = %v, %v", hour, got, ok)
		}
	}
	for _, hour := range []int{0, 9, 11, 23} {
		if slot, ok := SlotForHour(hour); ok {
			t.Errorf("SlotForHour(%d) unexpectedly resolved to %v", hour, slot)
		}
	}
}

func TestUserSubscribed(t *testing.T) {
	if (User{TimeSlot: TimeSlotNotSet}).Subscribed() {
		t.Errorf("user without a slot reported as subscribed")
	}
	if !(User{TimeSlot: TimeSlotEighteen}).Subscribed() {
		t.Errorf("user with a slot reported as unsubscribed")
	}
}
