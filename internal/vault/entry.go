package vault

// EntryCloneFlags controls what Entry.Clone copies in addition to the
// entry's own fields and TimeInfo.
type EntryCloneFlags int

const (
	CloneNoFlags        EntryCloneFlags = 0
	CloneIncludeHistory EntryCloneFlags = 1 << iota
)

// Entry is a leaf secret record: a title, arbitrary fields, a TimeInfo,
// and an ordered chain of prior revisions (History).
type Entry struct {
	UUID     UUID
	Title    string
	Fields   map[string]string
	TimeInfo TimeInfo

	// History holds older revisions of this entry. History items have
	// no parent group; they are owned solely by the entry they belong
	// to, sorted by normalized LastModified ascending with no two
	// entries sharing a normalized timestamp.
	History []*Entry

	group    *Group
	database *Database

	updateTimeinfo bool
}

// NewEntry returns a new Entry with a fresh UUID and timestamps set to
// now.
func NewEntry() *Entry {
	return &Entry{
		UUID:           NewUUID(),
		Fields:         make(map[string]string),
		TimeInfo:       NowTimeInfo(),
		updateTimeinfo: true,
	}
}

// Group returns the entry's current parent group, or nil if detached.
func (e *Entry) Group() *Group {
	return e.group
}

// Database returns the database this entry belongs to, or nil if
// detached from any tree.
func (e *Entry) Database() *Database {
	if e.database != nil {
		return e.database
	}
	if e.group != nil {
		return e.group.Database()
	}
	return nil
}

// CanUpdateTimeinfo reports whether tree mutations on this entry are
// currently allowed to stamp TimeInfo fields.
func (e *Entry) CanUpdateTimeinfo() bool {
	return e.updateTimeinfo
}

// SetUpdateTimeinfo flips the auto-timestamping toggle, returning the
// previous value so callers can restore it later.
func (e *Entry) SetUpdateTimeinfo(enabled bool) (previous bool) {
	previous = e.updateTimeinfo
	e.updateTimeinfo = enabled
	return previous
}

// setGroup reparents the entry without any timestamp bookkeeping of its
// own; callers (the tree mover) are responsible for suspending
// bookkeeping on old/new parents and for stamping LocationChanged
// explicitly when that is the intent.
func (e *Entry) setGroup(g *Group) {
	e.group = g
	if g != nil {
		e.database = nil
	}
}

// HistoryItems returns the entry's history chain.
func (e *Entry) HistoryItems() []*Entry {
	return e.History
}

// AddHistoryItem appends a history item. The item must not have a parent
// group.
func (e *Entry) AddHistoryItem(item *Entry) {
	e.History = append(e.History, item)
}

// RemoveHistoryItems clears exactly the given items from the chain.
func (e *Entry) RemoveHistoryItems(items []*Entry) {
	if len(items) == 0 {
		return
	}
	remove := make(map[*Entry]bool, len(items))
	for _, it := range items {
		remove[it] = true
	}
	kept := e.History[:0:0]
	for _, it := range e.History {
		if !remove[it] {
			kept = append(kept, it)
		}
	}
	e.History = kept
}

// TruncateHistory drops the oldest history items until at most
// maxItems remain. maxItems <= 0 means unlimited.
func (e *Entry) TruncateHistory(maxItems int) {
	if maxItems <= 0 || len(e.History) <= maxItems {
		return
	}
	e.History = e.History[len(e.History)-maxItems:]
}

// Clone returns a copy of the entry (a new UUID is not assigned: merge
// clones preserve identity across databases). If flags includes
// CloneIncludeHistory, history items are deep-copied too (without their
// own sub-history, as history items never carry history).
func (e *Entry) Clone(flags EntryCloneFlags) *Entry {
	out := &Entry{
		UUID:           e.UUID,
		Title:          e.Title,
		Fields:         make(map[string]string, len(e.Fields)),
		TimeInfo:       e.TimeInfo,
		updateTimeinfo: true,
	}
	for k, v := range e.Fields {
		out.Fields[k] = v
	}
	if flags&CloneIncludeHistory != 0 {
		for _, h := range e.History {
			out.History = append(out.History, h.Clone(CloneNoFlags))
		}
	}
	return out
}

// Equal compares two entries field-by-field, honoring flags.
func (e *Entry) Equal(other *Entry, flags CompareFlag) bool {
	if other == nil {
		return false
	}
	if e.UUID != other.UUID || e.Title != other.Title {
		return false
	}
	if len(e.Fields) != len(other.Fields) {
		return false
	}
	for k, v := range e.Fields {
		if ov, ok := other.Fields[k]; !ok || ov != v {
			return false
		}
	}
	if !e.TimeInfo.Equal(other.TimeInfo, flags) {
		return false
	}
	if flags&IgnoreHistory == 0 {
		if len(e.History) != len(other.History) {
			return false
		}
		for i, h := range e.History {
			if !h.Equal(other.History[i], flags) {
				return false
			}
		}
	}
	return true
}
