package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"eventsink/internal/events"
)

// GormStore keeps events and API keys in SQL tables.
type GormStore struct {
	db         *gorm.DB
	eventTable string
	keyTable   string
}

// NewGormStore returns a store over already-migrated tables.
func NewGormStore(db *gorm.DB, eventTable, keyTable string) *GormStore {
	return &GormStore{db: db, eventTable: eventTable, keyTable: keyTable}
}

// SourceForKey returns the source bound to key, or "" if there is none.
func (s *GormStore) SourceForKey(ctx context.Context, key string) (string, error) {
	// Find rather than First so a miss is not an error.
	var k APIKey
	res := s.db.WithContext(ctx).Table(s.keyTable).Where(map[string]any{"key": key}).Limit(1).Find(&k)
	if res.Error != nil {
		return "", fmt.Errorf("lookup api key: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return "", nil
	}
	return k.Src, nil
}

// PutEvent writes rec, replacing any record with the same (ts_day, ts).
func (s *GormStore) PutEvent(ctx context.Context, rec events.Record) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("encode event data: %w", err)
	}
	row := Event{
		TsDay: rec.TsDay,
		Ts:    rec.Ts,
		Type:  rec.Type,
		Src:   rec.Src,
		Data:  EventData(data),
	}
	err = s.db.WithContext(ctx).Table(s.eventTable).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

// QueryDay returns every event in the tsDay bucket in the order the
// database yields them.
func (s *GormStore) QueryDay(ctx context.Context, tsDay int64) ([]events.Record, error) {
	var rows []Event
	if err := s.db.WithContext(ctx).Table(s.eventTable).Where(map[string]any{"ts_day": tsDay}).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	recs := make([]events.Record, 0, len(rows))
	for _, row := range rows {
		data, err := decodeData(row.Data)
		if err != nil {
			return nil, fmt.Errorf("decode event %d/%d: %w", row.TsDay, row.Ts, err)
		}
		recs = append(recs, events.Record{
			TsDay: row.TsDay,
			Ts:    row.Ts,
			Type:  row.Type,
			Src:   row.Src,
			Data:  data,
		})
	}
	return recs, nil
}

func decodeData(raw EventData) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
