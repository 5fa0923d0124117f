package events

import (
	"context"
	"time"
)

// Writer persists validated submissions on behalf of an authenticated source.
type Writer struct {
	Store EventStore
	// Now defaults to time.Now.
	Now func() time.Time
}

// Write stores sub as a new record stamped with the current time. The
// record's source must match the authenticated one.
func (w Writer) Write(ctx context.Context, src string, sub Submission) (Record, error) {
	if sub.Src != src {
		return Record{}, newError(SourceMismatch, reasonSrcMismatch, nil)
	}

	ts := Millis(w.now())
	rec := Record{
		TsDay: DayFloor(ts),
		Ts:    ts,
		Type:  sub.Type,
		Src:   src,
		Data:  sub.Data,
	}
	if err := w.Store.PutEvent(ctx, rec); err != nil {
		return Record{}, storeError(err)
	}
	return rec, nil
}

func (w Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}
