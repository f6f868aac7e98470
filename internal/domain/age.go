package domain

import "time"

// CalculateAge returns the number of whole years between dateOfBirth and
// referenceDate, comparing calendar dates only.
//
// The birthday is shifted forward by the year difference; if the reference
// date falls before it the person has not yet had their birthday that year.
// A 29 February birthday shifted into a non-leap year lands on 28 February.
func CalculateAge(dateOfBirth, referenceDate time.Time) int {
	ref := dateOnly(referenceDate)
	dob := dateOnly(dateOfBirth)

	age := ref.Year() - dob.Year()
	if ref.Before(addYears(dob, age)) {
		age--
	}
	return age
}

// dateOnly drops the clock and location of t, keeping its calendar date.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// addYears adds n years to a date, clamping to the last day of the month
// instead of overflowing into the next one (time.AddDate normalises
// 29 Feb + 1y to 1 Mar).
func addYears(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	y += n
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
