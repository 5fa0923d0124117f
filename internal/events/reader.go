package events

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

const tsDayParam = "ts_day"

// Reader returns the events stored for a day bucket.
type Reader struct {
	Store EventStore
}

// Read parses the ts_day parameter from rawQuery and returns every record in
// that bucket in store order.
func (r Reader) Read(ctx context.Context, rawQuery string) ([]Record, error) {
	tsDay, err := ParseTsDay(rawQuery)
	if err != nil {
		return nil, err
	}
	recs, err := r.Store.QueryDay(ctx, tsDay)
	if err != nil {
		return nil, storeError(err)
	}
	return recs, nil
}

// ParseTsDay extracts exactly one integer ts_day value from a raw query string.
// Pairs with blank values are ignored, as are pairs whose escaping is broken
// unless they name ts_day.
func ParseTsDay(rawQuery string) (int64, error) {
	var vals []string
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil || key != tsDayParam || v == "" {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return 0, newError(BadQueryParameter, reasonBadTsDay, err)
		}
		vals = append(vals, val)
	}
	if len(vals) != 1 {
		return 0, newError(BadQueryParameter, reasonBadTsDay, nil)
	}
	tsDay, err := strconv.ParseInt(vals[0], 10, 64)
	if err != nil {
		return 0, newError(BadQueryParameter, reasonBadTsDay, err)
	}
	return tsDay, nil
}
