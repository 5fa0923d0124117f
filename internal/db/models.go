package db

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Event represents a single event record as stored in a SQL table. The
// (TsDay, Ts) pair is the primary key: TsDay groups a UTC day and Ts orders
// events within it.
type Event struct {
	TsDay int64 `gorm:"primaryKey;autoIncrement:false"`
	Ts    int64 `gorm:"primaryKey;autoIncrement:false"`

	Type string `gorm:"size:255;not null"`
	Src  string `gorm:"size:255;not null"`

	// Data is the caller-supplied payload, kept verbatim as JSON text so
	// numbers survive with their original precision.
	Data EventData
}

// EventData is a JSON column that holds any JSON value, including bare
// numbers and strings. On sqlite it is declared TEXT: a JSON column there has
// numeric affinity and a bare number would come back as INTEGER or REAL.
type EventData datatypes.JSON

func (EventData) GormDataType() string {
	return "json"
}

// GormDBDataType picks the column type per dialect.
func (d EventData) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "sqlite" {
		return "TEXT"
	}
	return datatypes.JSON(d).GormDBDataType(db, field)
}

func (d EventData) Value() (driver.Value, error) {
	return datatypes.JSON(d).Value()
}

// Scan accepts JSON text as well as the INTEGER and REAL values older sqlite
// tables hold for bare numbers.
func (d *EventData) Scan(value any) error {
	var j datatypes.JSON
	switch v := value.(type) {
	case nil:
		*d = nil
		return nil
	case int64:
		value = strconv.FormatInt(v, 10)
	case float64:
		value = strconv.FormatFloat(v, 'g', -1, 64)
	case []byte, string:
	default:
		return fmt.Errorf("scan event data: unsupported type %T", value)
	}
	if err := j.Scan(value); err != nil {
		return err
	}
	*d = EventData(j)
	return nil
}
