package store

import (
	"os"
	"strconv"
	"time"
)

// now returns the current time in UTC, honoring SOURCE_DATE_EPOCH if set, so
// that descriptor creation times are reproducible in tests and recorded
// builds. Grounded on the teacher's util/timestamp.GetTime.
func now() time.Time {
	if epoch := os.Getenv("SOURCE_DATE_EPOCH"); epoch != "" {
		if ts, err := strconv.ParseInt(epoch, 10, 64); err == nil {
			return time.Unix(ts, 0).UTC()
		}
	}
	return time.Now().UTC()
}
