package goals

import "time"

func timeFromStamp(millis int64) time.Time {
	return time.UnixMilli(millis).UTC()
}
