package vault

// Database owns one root Group, one Metadata block, and a deletion log.
type Database struct {
	RootGroup      *Group
	MetadataBlock  *Metadata
	deletedObjects []DeletedObject

	modified bool
}

// NewDatabase returns an empty Database with a fresh root group.
func NewDatabase() *Database {
	root := NewGroup()
	root.Name = "Root"
	db := &Database{
		RootGroup:     root,
		MetadataBlock: NewMetadata(),
	}
	root.database = db
	return db
}

// NewDatabaseWithRoot returns a Database wrapping an already-built root
// group tree, wiring the backref the codec layer needs but cannot set
// directly since Group.database is private to this package.
func NewDatabaseWithRoot(root *Group) *Database {
	db := &Database{
		RootGroup:     root,
		MetadataBlock: NewMetadata(),
	}
	root.database = db
	return db
}

// Metadata returns the database's metadata block.
func (d *Database) Metadata() *Metadata {
	return d.MetadataBlock
}

// DeletedObjects returns the current deletion log.
func (d *Database) DeletedObjects() []DeletedObject {
	return d.deletedObjects
}

// SetDeletedObjects replaces the deletion log wholesale.
func (d *Database) SetDeletedObjects(objs []DeletedObject) {
	d.deletedObjects = objs
}

// MarkAsModified flags the database as having unsaved changes.
func (d *Database) MarkAsModified() {
	d.modified = true
}

// Modified reports whether MarkAsModified has been called since the
// database was constructed or last cleared.
func (d *Database) Modified() bool {
	return d.modified
}

// ClearModified resets the modified flag, e.g. after a caller persists
// the database.
func (d *Database) ClearModified() {
	d.modified = false
}

// FindEntryByUUID searches the whole tree for an entry with id.
func (d *Database) FindEntryByUUID(id UUID) *Entry {
	if d.RootGroup == nil {
		return nil
	}
	return d.RootGroup.FindEntryByUUID(id)
}

// FindGroupByUUID searches the whole tree for a group with id.
func (d *Database) FindGroupByUUID(id UUID) *Group {
	if d.RootGroup == nil {
		return nil
	}
	return d.RootGroup.FindGroupByUUID(id)
}

// Clone returns a deep copy of the whole database: root group (with all
// descendants, entries and history), metadata and deletion log. Used by
// callers that want to preview a merge against a disposable copy of the
// target without touching the original.
func (d *Database) Clone() *Database {
	out := &Database{
		MetadataBlock:  d.MetadataBlock.Clone(),
		deletedObjects: append([]DeletedObject(nil), d.deletedObjects...),
		modified:       d.modified,
	}
	if d.RootGroup != nil {
		out.RootGroup = d.RootGroup.Clone(CloneIncludeHistory, CloneIncludeEntries|CloneIncludeChildren)
		out.RootGroup.database = out
	}
	return out
}
