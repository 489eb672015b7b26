package cache

import "time"

// timestampLayout is ISO-8601 / RFC 3339 with nanosecond precision, used
// for created_at and history timestamps. All timestamps are UTC (spec.md
// §9's open-question resolution: the source mixes local and UTC, the spec
// mandates UTC throughout).
const timestampLayout = time.RFC3339Nano

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(timestampLayout, s)
}

func timeZeroUTC() time.Time {
	return time.Unix(0, 0).UTC()
}
