package value

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateTimeValue is the XACML dateTime datatype (spec §3, §4.1). Timezone
// handling follows XML Schema: a lexical form with no explicit offset is
// treated as UTC. This is a documented simplification of the full XML Schema
// partial-order comparison rules for timezone-less values (see DESIGN.md).
type DateTimeValue struct {
	t        time.Time
	hasTZ    bool
	fracDigs int // number of fractional-second digits in the original lexical form, for round-trip
}

func (v DateTimeValue) Type() Type { return TypeDateTime }

func (v DateTimeValue) Lexical() string {
	layout := "2006-01-02T15:04:05"
	s := v.t.Format(layout)
	if v.fracDigs > 0 {
		s += formatFrac(v.t, v.fracDigs)
	}
	if v.hasTZ {
		s += tzSuffix(v.t)
	}
	return s
}

func (v DateTimeValue) Time() time.Time { return v.t }

func (v DateTimeValue) Equal(o Value) bool {
	d, ok := o.(DateTimeValue)
	return ok && v.t.Equal(d.t)
}

func (v DateTimeValue) Compare(o Value) (int, error) {
	d, ok := o.(DateTimeValue)
	if !ok {
		return 0, typeMismatch(v, o)
	}
	switch {
	case v.t.Before(d.t):
		return -1, nil
	case v.t.After(d.t):
		return 1, nil
	default:
		return 0, nil
	}
}

var dateTimeRE = regexp.MustCompile(`^(-?\d{4,})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)

func parseDateTime(lexical string) (Value, error) {
	m := dateTimeRE.FindStringSubmatch(strings.TrimSpace(lexical))
	if m == nil {
		return nil, fmt.Errorf("not a valid xs:dateTime: %q", lexical)
	}
	loc, hasTZ, err := parseTZ(m[8])
	if err != nil {
		return nil, err
	}
	nsec, fracDigs := parseFracSeconds(m[7])
	t, err := buildTime(m[1], m[2], m[3], m[4], m[5], m[6], nsec, loc)
	if err != nil {
		return nil, err
	}
	return DateTimeValue{t: t, hasTZ: hasTZ, fracDigs: fracDigs}, nil
}

// DateValue is the XACML date datatype.
type DateValue struct {
	t     time.Time // midnight in the lexical form's offset (UTC when none is given)
	hasTZ bool
}

func (v DateValue) Type() Type      { return TypeDate }
func (v DateValue) Time() time.Time { return v.t }
func (v DateValue) Lexical() string {
	s := v.t.Format("2006-01-02")
	if v.hasTZ {
		s += tzSuffix(v.t)
	}
	return s
}
func (v DateValue) Equal(o Value) bool {
	d, ok := o.(DateValue)
	return ok && v.t.Equal(d.t)
}
func (v DateValue) Compare(o Value) (int, error) {
	d, ok := o.(DateValue)
	if !ok {
		return 0, typeMismatch(v, o)
	}
	switch {
	case v.t.Before(d.t):
		return -1, nil
	case v.t.After(d.t):
		return 1, nil
	default:
		return 0, nil
	}
}

var dateRE = regexp.MustCompile(`^(-?\d{4,})-(\d{2})-(\d{2})(Z|[+-]\d{2}:\d{2})?$`)

func parseDate(lexical string) (Value, error) {
	m := dateRE.FindStringSubmatch(strings.TrimSpace(lexical))
	if m == nil {
		return nil, fmt.Errorf("not a valid xs:date: %q", lexical)
	}
	loc, hasTZ, err := parseTZ(m[4])
	if err != nil {
		return nil, err
	}
	t, err := buildTime(m[1], m[2], m[3], "00", "00", "00", 0, loc)
	if err != nil {
		return nil, err
	}
	return DateValue{t: t, hasTZ: hasTZ}, nil
}

// TimeValue is the XACML time datatype (date-independent time of day).
type TimeValue struct {
	hour, min, sec, nsec int
	hasTZ                bool
	tzOffsetSeconds       int
	fracDigs             int
}

func (v TimeValue) Type() Type { return TypeTime }

func (v TimeValue) Lexical() string {
	s := fmt.Sprintf("%02d:%02d:%02d", v.hour, v.min, v.sec)
	if v.fracDigs > 0 {
		s += "." + fmt.Sprintf("%0*d", v.fracDigs, v.nsec/pow10(9-v.fracDigs))
	}
	if v.hasTZ {
		s += tzOffsetString(v.tzOffsetSeconds)
	}
	return s
}

// asDuration converts the time-of-day (normalized to UTC if it carries a
// timezone) into a duration since midnight, for equality/ordering.
func (v TimeValue) asDuration() time.Duration {
	total := v.hour*3600 + v.min*60 + v.sec - v.tzOffsetSeconds
	return time.Duration(total)*time.Second + time.Duration(v.nsec)
}

func (v TimeValue) Equal(o Value) bool {
	t, ok := o.(TimeValue)
	return ok && v.asDuration() == t.asDuration()
}

func (v TimeValue) Compare(o Value) (int, error) {
	t, ok := o.(TimeValue)
	if !ok {
		return 0, typeMismatch(v, o)
	}
	a, b := v.asDuration(), t.asDuration()
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

var timeRE = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)

func parseTime(lexical string) (Value, error) {
	m := timeRE.FindStringSubmatch(strings.TrimSpace(lexical))
	if m == nil {
		return nil, fmt.Errorf("not a valid xs:time: %q", lexical)
	}
	hour, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	if hour > 24 || min > 59 || sec > 60 {
		return nil, fmt.Errorf("not a valid xs:time: %q", lexical)
	}
	nsec, fracDigs := parseFracSeconds(m[4])
	offset, hasTZ := 0, false
	if m[5] != "" {
		hasTZ = true
		if m[5] != "Z" {
			var err error
			offset, err = parseTZOffsetSeconds(m[5])
			if err != nil {
				return nil, err
			}
		}
	}
	return TimeValue{hour: hour, min: min, sec: sec, nsec: nsec, hasTZ: hasTZ, tzOffsetSeconds: offset, fracDigs: fracDigs}, nil
}

// --- Durations ---

// DayTimeDurationValue is a fixed-length duration (spec §4.1: adding it to a
// date/time is a plain absolute-time shift since it is not subject to
// calendar-field normalization).
type DayTimeDurationValue struct {
	negative bool
	d        time.Duration
}

func (v DayTimeDurationValue) Type() Type { return TypeDayTimeDuration }

func (v DayTimeDurationValue) Lexical() string {
	sign := ""
	if v.negative {
		sign = "-"
	}
	d := v.d
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	hours := d / time.Hour
	d -= hours * time.Hour
	mins := d / time.Minute
	d -= mins * time.Minute
	secs := float64(d) / float64(time.Second)

	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("P")
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if hours > 0 || mins > 0 || secs > 0 {
		b.WriteString("T")
		if hours > 0 {
			fmt.Fprintf(&b, "%dH", hours)
		}
		if mins > 0 {
			fmt.Fprintf(&b, "%dM", mins)
		}
		if secs > 0 {
			fmt.Fprintf(&b, "%sS", trimFloat(secs))
		}
	}
	if b.Len() == len(sign)+1 { // only "P" was written: zero duration
		b.WriteString("T0S")
	}
	return b.String()
}

func (v DayTimeDurationValue) Signed() time.Duration {
	if v.negative {
		return -v.d
	}
	return v.d
}

func (v DayTimeDurationValue) Equal(o Value) bool {
	d, ok := o.(DayTimeDurationValue)
	return ok && v.Signed() == d.Signed()
}

func (v DayTimeDurationValue) Compare(o Value) (int, error) {
	d, ok := o.(DayTimeDurationValue)
	if !ok {
		return 0, typeMismatch(v, o)
	}
	a, b := v.Signed(), d.Signed()
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

var dayTimeDurationRE = regexp.MustCompile(`^(-)?P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:([\d.]+)S)?)?$`)

func parseDayTimeDuration(lexical string) (Value, error) {
	s := strings.TrimSpace(lexical)
	m := dayTimeDurationRE.FindStringSubmatch(s)
	if m == nil || (m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "") {
		return nil, fmt.Errorf("not a valid xs:dayTimeDuration: %q", lexical)
	}
	var d time.Duration
	if m[2] != "" {
		n, _ := strconv.Atoi(m[2])
		d += time.Duration(n) * 24 * time.Hour
	}
	if m[3] != "" {
		n, _ := strconv.Atoi(m[3])
		d += time.Duration(n) * time.Hour
	}
	if m[4] != "" {
		n, _ := strconv.Atoi(m[4])
		d += time.Duration(n) * time.Minute
	}
	if m[5] != "" {
		f, err := strconv.ParseFloat(m[5], 64)
		if err != nil {
			return nil, fmt.Errorf("not a valid xs:dayTimeDuration: %q", lexical)
		}
		d += time.Duration(f * float64(time.Second))
	}
	return DayTimeDurationValue{negative: m[1] == "-", d: d}, nil
}

// YearMonthDurationValue is a calendar-field duration: not a fixed number of
// days, so it must be added to a date/time by normalizing year/month fields,
// never by converting to absolute seconds (spec §4.1).
type YearMonthDurationValue struct {
	negative bool
	months   int
}

func (v YearMonthDurationValue) Type() Type { return TypeYearMonthDuration }

func (v YearMonthDurationValue) Lexical() string {
	sign := ""
	if v.negative {
		sign = "-"
	}
	years := v.months / 12
	months := v.months % 12
	var b strings.Builder
	b.WriteString(sign)
	b.WriteString("P")
	if years > 0 {
		fmt.Fprintf(&b, "%dY", years)
	}
	if months > 0 || years == 0 {
		fmt.Fprintf(&b, "%dM", months)
	}
	return b.String()
}

func (v YearMonthDurationValue) SignedMonths() int {
	if v.negative {
		return -v.months
	}
	return v.months
}

func (v YearMonthDurationValue) Equal(o Value) bool {
	d, ok := o.(YearMonthDurationValue)
	return ok && v.SignedMonths() == d.SignedMonths()
}

func (v YearMonthDurationValue) Compare(o Value) (int, error) {
	d, ok := o.(YearMonthDurationValue)
	if !ok {
		return 0, typeMismatch(v, o)
	}
	a, b := v.SignedMonths(), d.SignedMonths()
	switch {
	case a < b:
		return -1, nil
	case a > b:
		return 1, nil
	default:
		return 0, nil
	}
}

var yearMonthDurationRE = regexp.MustCompile(`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?$`)

func parseYearMonthDuration(lexical string) (Value, error) {
	s := strings.TrimSpace(lexical)
	m := yearMonthDurationRE.FindStringSubmatch(s)
	if m == nil || (m[2] == "" && m[3] == "") {
		return nil, fmt.Errorf("not a valid xs:yearMonthDuration: %q", lexical)
	}
	years, months := 0, 0
	if m[2] != "" {
		years, _ = strconv.Atoi(m[2])
	}
	if m[3] != "" {
		months, _ = strconv.Atoi(m[3])
	}
	return YearMonthDurationValue{negative: m[1] == "-", months: years*12 + months}, nil
}

// AddYearMonthDuration adds a yearMonthDuration to a dateTime by the XML
// Schema fields-then-normalize algorithm (spec §4.1): shift the month field
// and carry into the year, clamping the day-of-month if the target month is
// shorter (e.g. Jan 31 + P1M -> Feb 28/29).
func (v DateTimeValue) AddYearMonthDuration(d YearMonthDurationValue) DateTimeValue {
	t := v.t
	totalMonths := int(t.Month()) - 1 + d.SignedMonths()
	year := t.Year() + totalMonths/12
	month := totalMonths % 12
	if month < 0 {
		month += 12
		year--
	}
	day := t.Day()
	lastDay := daysInMonth(year, time.Month(month+1))
	if day > lastDay {
		day = lastDay
	}
	nt := time.Date(year, time.Month(month+1), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	return DateTimeValue{t: nt, hasTZ: v.hasTZ, fracDigs: v.fracDigs}
}

// AddDayTimeDuration adds a fixed dayTimeDuration to a dateTime.
func (v DateTimeValue) AddDayTimeDuration(d DayTimeDurationValue) DateTimeValue {
	return DateTimeValue{t: v.t.Add(d.Signed()), hasTZ: v.hasTZ, fracDigs: v.fracDigs}
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// --- shared lexical helpers ---

func parseTZ(raw string) (*time.Location, bool, error) {
	if raw == "" {
		return time.UTC, false, nil
	}
	if raw == "Z" {
		return time.UTC, true, nil
	}
	offset, err := parseTZOffsetSeconds(raw)
	if err != nil {
		return nil, false, err
	}
	return time.FixedZone(raw, offset), true, nil
}

func parseTZOffsetSeconds(raw string) (int, error) {
	if raw == "" || raw == "Z" {
		return 0, nil
	}
	sign := 1
	s := raw
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid timezone offset %q", raw)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, fmt.Errorf("invalid timezone offset %q", raw)
	}
	return sign * (h*3600 + m*60), nil
}

func tzSuffix(t time.Time) string {
	_, offset := t.Zone()
	return tzOffsetString(offset)
}

func tzOffsetString(offsetSeconds int) string {
	if offsetSeconds == 0 {
		return "Z"
	}
	sign := "+"
	s := offsetSeconds
	if s < 0 {
		sign = "-"
		s = -s
	}
	return fmt.Sprintf("%s%02d:%02d", sign, s/3600, (s%3600)/60)
}

func parseFracSeconds(raw string) (nsec, digits int) {
	if raw == "" {
		return 0, 0
	}
	digitsStr := raw[1:] // drop leading "."
	digits = len(digitsStr)
	padded := (digitsStr + "000000000")[:9]
	n, _ := strconv.Atoi(padded)
	return n, digits
}

func formatFrac(t time.Time, digits int) string {
	nsec := t.Nanosecond()
	s := fmt.Sprintf("%09d", nsec)[:digits]
	return "." + s
}

func buildTime(yearS, monthS, dayS, hourS, minS, secS string, nsec int, loc *time.Location) (time.Time, error) {
	year, err1 := strconv.Atoi(yearS)
	month, err2 := strconv.Atoi(monthS)
	day, err3 := strconv.Atoi(dayS)
	hour, err4 := strconv.Atoi(hourS)
	min, err5 := strconv.Atoi(minS)
	sec, err6 := strconv.Atoi(secS)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
		return time.Time{}, fmt.Errorf("invalid date/time component")
	}
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 24 || min > 59 || sec > 60 {
		return time.Time{}, fmt.Errorf("invalid date/time component")
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, nsec, loc), nil
}

func pow10(n int) int {
	r := 1
	for i := 0; i < n; i++ {
		r *= 10
	}
	return r
}

func trimFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

func init() {
	register(&Datatype{ID: TypeDateTime, Parse: parseDateTime, Ordered: true})
	register(&Datatype{ID: TypeDate, Parse: parseDate, Ordered: true})
	register(&Datatype{ID: TypeTime, Parse: parseTime, Ordered: true})
	register(&Datatype{ID: TypeDayTimeDuration, Parse: parseDayTimeDuration, Ordered: true})
	register(&Datatype{ID: TypeYearMonthDuration, Parse: parseYearMonthDuration, Ordered: true})
}
