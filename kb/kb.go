package kb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signalsfoundry/satcov/core"
	"github.com/signalsfoundry/satcov/model"
)

// ErrInvalidRow is returned when a table row cannot be read as a record. It
// wraps core.ErrLoad.
var ErrInvalidRow = fmt.Errorf("%w: invalid track row", core.ErrLoad)

// minColumns is the number of leading columns a row must carry:
// time instant, latitude, longitude.
const minColumns = 3

// TrackTable is an in-memory, read-only table of tracked-object records. It
// is populated once and never mutated, so concurrent readers need no locking.
type TrackTable struct {
	records  []model.TrackedObjectRecord
	instants []string
}

// NewTrackTable wraps already-parsed records. Record indices are reassigned
// to their position in records.
func NewTrackTable(records []model.TrackedObjectRecord) *TrackTable {
	t := &TrackTable{records: make([]model.TrackedObjectRecord, len(records))}
	seen := make(map[string]struct{})
	for i, r := range records {
		r.Index = i
		t.records[i] = r
		if _, ok := seen[r.TimeInstant]; !ok {
			seen[r.TimeInstant] = struct{}{}
			t.instants = append(t.instants, r.TimeInstant)
		}
	}
	return t
}

// LoadCSV reads a delimited flight table: a header row followed by rows of
// time instant, latitude, longitude. Columns after the third are ignored.
// Any malformed row fails the load.
func LoadCSV(r io.Reader) (*TrackTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return NewTrackTable(nil), nil
		}
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidRow, err)
	}

	var records []model.TrackedObjectRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRow, err)
		}
		line, _ := reader.FieldPos(0)
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidRow, line, err)
		}
		records = append(records, rec)
	}
	return NewTrackTable(records), nil
}

func parseRow(row []string) (model.TrackedObjectRecord, error) {
	if len(row) < minColumns {
		return model.TrackedObjectRecord{}, fmt.Errorf("got %d columns, want at least %d", len(row), minColumns)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return model.TrackedObjectRecord{}, fmt.Errorf("latitude %q is not a number", row[1])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
	if err != nil {
		return model.TrackedObjectRecord{}, fmt.Errorf("longitude %q is not a number", row[2])
	}
	return model.TrackedObjectRecord{
		TimeInstant: strings.TrimSpace(row[0]),
		Latitude:    lat,
		Longitude:   lon,
	}, nil
}

// Len returns the number of records.
func (t *TrackTable) Len() int { return len(t.records) }

// Records returns a copy of all records in table order.
func (t *TrackTable) Records() []model.TrackedObjectRecord {
	return append([]model.TrackedObjectRecord(nil), t.records...)
}

// Instants returns the distinct time instants in first-seen order.
func (t *TrackTable) Instants() []string {
	return append([]string(nil), t.instants...)
}

// Slice returns the records observed at instant, in table order.
func (t *TrackTable) Slice(instant string) []model.TrackedObjectRecord {
	return core.SelectSlice(t.records, instant)
}
