package realtime

// Op is the type of row-level operation carried by a change event.
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Row is a snapshot of a table row as delivered by the change stream.
type Row map[string]any

// TableEvent is the raw change notification a transport channel delivers
// for a single table, before it is tagged with an EventCategory.
type TableEvent struct {
	Table  string
	Op     Op
	Before Row
	After  Row
}

// ChangeEvent is a table event translated into the domain vocabulary.
// Before and After may each be nil depending on the operation: inserts
// carry only After, deletes only Before. ChangeEvents are transient and
// never persisted.
type ChangeEvent struct {
	Category EventCategory
	Op       Op
	Before   Row
	After    Row
}

// Snapshot returns the row snapshot to read display data from: After when
// present, otherwise Before. May be nil for a malformed event.
func (e ChangeEvent) Snapshot() Row {
	if e.After != nil {
		return e.After
	}
	return e.Before
}

// Field looks up a key in the event's snapshot row.
func (e ChangeEvent) Field(key string) (any, bool) {
	row := e.Snapshot()
	if row == nil {
		return nil, false
	}
	v, ok := row[key]
	return v, ok
}
