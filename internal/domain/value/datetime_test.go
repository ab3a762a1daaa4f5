package value

import "testing"

func TestDateTimeRoundTrip(t *testing.T) {
	for _, lex := range []string{
		"2026-07-31T10:15:00Z",
		"2026-07-31T10:15:00.500Z",
		"2026-01-01T00:00:00+02:00",
	} {
		v, err := Parse(TypeDateTime, lex)
		if err != nil {
			t.Fatalf("parse %q: %v", lex, err)
		}
		if got := v.Lexical(); got != lex {
			t.Fatalf("round trip %q: got %q", lex, got)
		}
	}
}

func TestDateTimeNoTimezoneAssumesUTC(t *testing.T) {
	v, err := Parse(TypeDateTime, "2026-07-31T10:15:00")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	dt := v.(DateTimeValue)
	other, err := Parse(TypeDateTime, "2026-07-31T10:15:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !dt.Equal(other.(DateTimeValue)) {
		t.Fatalf("timezone-less dateTime should be treated as UTC")
	}
}

func TestDateTimeCompare(t *testing.T) {
	earlier, _ := Parse(TypeDateTime, "2026-01-01T00:00:00Z")
	later, _ := Parse(TypeDateTime, "2026-12-31T23:59:59Z")
	cmp, err := earlier.(Ordered).Compare(later)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmp >= 0 {
		t.Fatalf("expected earlier < later, got %d", cmp)
	}
}

func TestDateRoundTrip(t *testing.T) {
	for _, lex := range []string{"2026-07-31", "2026-07-31Z", "2026-07-31-05:00"} {
		v, err := Parse(TypeDate, lex)
		if err != nil {
			t.Fatalf("parse %q: %v", lex, err)
		}
		if got := v.Lexical(); got != lex {
			t.Fatalf("round trip %q: got %q", lex, got)
		}
	}
}

func TestTimeRoundTrip(t *testing.T) {
	for _, lex := range []string{"10:15:00", "10:15:00.250", "10:15:00Z", "23:59:60"} {
		v, err := Parse(TypeTime, lex)
		if err != nil {
			t.Fatalf("parse %q: %v", lex, err)
		}
		if got := v.Lexical(); got != lex {
			t.Fatalf("round trip %q: got %q", lex, got)
		}
	}
}

func TestTimeCompareAcrossTimezones(t *testing.T) {
	a, _ := Parse(TypeTime, "10:00:00+02:00")
	b, _ := Parse(TypeTime, "09:00:00+01:00")
	cmp, err := a.(Ordered).Compare(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmp != 0 {
		t.Fatalf("expected equal instants, got cmp=%d", cmp)
	}
}

func TestDayTimeDurationRoundTrip(t *testing.T) {
	for _, lex := range []string{"P1D", "PT5H", "PT30M", "P1DT2H3M4S", "-P1D"} {
		v, err := Parse(TypeDayTimeDuration, lex)
		if err != nil {
			t.Fatalf("parse %q: %v", lex, err)
		}
		if got := v.Lexical(); got != lex {
			t.Fatalf("round trip %q: got %q", lex, got)
		}
	}
}

func TestYearMonthDurationRoundTrip(t *testing.T) {
	for _, lex := range []string{"P1Y", "P6M", "P1Y6M", "-P2Y"} {
		v, err := Parse(TypeYearMonthDuration, lex)
		if err != nil {
			t.Fatalf("parse %q: %v", lex, err)
		}
		if got := v.Lexical(); got != lex {
			t.Fatalf("round trip %q: got %q", lex, got)
		}
	}
}

func TestAddYearMonthDurationClampsDayOfMonth(t *testing.T) {
	jan31, err := Parse(TypeDateTime, "2026-01-31T00:00:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	oneMonth, err := Parse(TypeYearMonthDuration, "P1M")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := jan31.(DateTimeValue).AddYearMonthDuration(oneMonth.(YearMonthDurationValue))
	if got.Lexical() != "2026-02-28T00:00:00Z" {
		t.Fatalf("expected clamp to Feb 28, got %q", got.Lexical())
	}
}

func TestAddDayTimeDurationIsAbsoluteShift(t *testing.T) {
	start, err := Parse(TypeDateTime, "2026-07-31T23:00:00Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	twoHours, err := Parse(TypeDayTimeDuration, "PT2H")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := start.(DateTimeValue).AddDayTimeDuration(twoHours.(DayTimeDurationValue))
	if got.Lexical() != "2026-08-01T01:00:00Z" {
		t.Fatalf("expected day rollover, got %q", got.Lexical())
	}
}

func TestYearMonthDurationNotFixedDays(t *testing.T) {
	// P1M starting Jan 31 lands on Feb 28 (28 days); starting Mar 31 lands on
	// Apr 30 (30 days) -- confirms the addition is field-based, not a fixed
	// number of absolute seconds.
	oneMonth, _ := Parse(TypeYearMonthDuration, "P1M")
	jan31, _ := Parse(TypeDateTime, "2026-01-31T00:00:00Z")
	mar31, _ := Parse(TypeDateTime, "2026-03-31T00:00:00Z")
	gotJan := jan31.(DateTimeValue).AddYearMonthDuration(oneMonth.(YearMonthDurationValue))
	gotMar := mar31.(DateTimeValue).AddYearMonthDuration(oneMonth.(YearMonthDurationValue))
	if gotJan.Lexical() != "2026-02-28T00:00:00Z" {
		t.Fatalf("got %q", gotJan.Lexical())
	}
	if gotMar.Lexical() != "2026-04-30T00:00:00Z" {
		t.Fatalf("got %q", gotMar.Lexical())
	}
}
