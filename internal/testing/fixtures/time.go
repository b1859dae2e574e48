package fixtures

import "time"

func parseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

// Day returns UTC midnight of an ISO date and panics on bad input.
func Day(s string) time.Time {
	t, err := parseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}
