package vault

// GroupCloneFlags controls what Group.Clone copies beyond the group's
// own attributes.
type GroupCloneFlags int

const (
	CloneNoGroupFlags     GroupCloneFlags = 0
	CloneIncludeEntries   GroupCloneFlags = 1 << iota
	CloneIncludeChildren  GroupCloneFlags = 1 << iota
)

// Group is a folder node in the tree: it owns an ordered list of child
// groups and an ordered list of entries.
type Group struct {
	UUID       UUID
	Name       string
	Notes      string
	IconID     int  // built-in numeric icon id; meaningful when IconUUID is NilUUID
	IconUUID   UUID // custom-icon reference; NilUUID means "use IconID"
	TimeInfo   TimeInfo
	MergeMode  MergeMode

	Children []*Group
	Entries  []*Entry

	parent   *Group
	database *Database

	updateTimeinfo bool
}

// NewGroup returns a new Group with a fresh UUID and timestamps set to
// now.
func NewGroup() *Group {
	return &Group{
		UUID:           NewUUID(),
		TimeInfo:       NowTimeInfo(),
		updateTimeinfo: true,
	}
}

// Parent returns the group's current parent, or nil if it is a root.
func (g *Group) Parent() *Group {
	return g.parent
}

// Database returns the database this group belongs to.
func (g *Group) Database() *Database {
	if g.database != nil {
		return g.database
	}
	if g.parent != nil {
		return g.parent.Database()
	}
	return nil
}

// CanUpdateTimeinfo reports whether tree mutations on this group are
// currently allowed to stamp TimeInfo fields.
func (g *Group) CanUpdateTimeinfo() bool {
	return g.updateTimeinfo
}

// SetUpdateTimeinfo flips the auto-timestamping toggle, returning the
// previous value.
func (g *Group) SetUpdateTimeinfo(enabled bool) (previous bool) {
	previous = g.updateTimeinfo
	g.updateTimeinfo = enabled
	return previous
}

// setParent reparents the group without timestamp bookkeeping.
func (g *Group) setParent(parent *Group) {
	g.parent = parent
	if parent != nil {
		g.database = nil
	}
}

// FullPath returns the "/"-joined chain of ancestor names down to and
// including this group, matching KeePassXC's Group::fullPath().
func (g *Group) FullPath() string {
	if g.parent == nil {
		return g.Name
	}
	parentPath := g.parent.FullPath()
	if parentPath == "" {
		return g.Name
	}
	return parentPath + "/" + g.Name
}

// AddEntryLink appends entry to g's entry list and sets its parent link.
// No timestamp bookkeeping; callers own that.
func (g *Group) AddEntryLink(e *Entry) {
	e.setGroup(g)
	g.Entries = append(g.Entries, e)
}

// RemoveEntryLink removes entry from g's entry list without touching its
// parent link (the caller decides what to set it to, including nil for
// a detached/erased entry).
func (g *Group) RemoveEntryLink(e *Entry) {
	for i, cur := range g.Entries {
		if cur == e {
			g.Entries = append(g.Entries[:i], g.Entries[i+1:]...)
			return
		}
	}
}

// AddChildLink appends child to g's child list and sets its parent link.
func (g *Group) AddChildLink(child *Group) {
	child.setParent(g)
	g.Children = append(g.Children, child)
}

// RemoveChildLink removes child from g's child list without touching its
// parent link.
func (g *Group) RemoveChildLink(child *Group) {
	for i, cur := range g.Children {
		if cur == child {
			g.Children = append(g.Children[:i], g.Children[i+1:]...)
			return
		}
	}
}

// EntriesRecursive returns every live entry in g and, unless leaf-only
// is requested via includeChildren=false, every entry of every
// descendant group.
func (g *Group) EntriesRecursive(includeChildren bool) []*Entry {
	out := append([]*Entry(nil), g.Entries...)
	if includeChildren {
		for _, c := range g.Children {
			out = append(out, c.EntriesRecursive(true)...)
		}
	}
	return out
}

// GroupsRecursive returns every descendant group of g, recursively,
// preceded by g itself when includeSelf is true.
func (g *Group) GroupsRecursive(includeSelf bool) []*Group {
	var out []*Group
	if includeSelf {
		out = append(out, g)
	}
	for _, c := range g.Children {
		out = append(out, c.GroupsRecursive(true)...)
	}
	return out
}

// Clone returns a copy of g's own attributes (UUID preserved). entryFlags
// controls how entries are cloned when GroupCloneFlags includes
// CloneIncludeEntries; groupFlags controls whether entries/children are
// copied at all.
func (g *Group) Clone(entryFlags EntryCloneFlags, groupFlags GroupCloneFlags) *Group {
	out := &Group{
		UUID:           g.UUID,
		Name:           g.Name,
		Notes:          g.Notes,
		IconID:         g.IconID,
		IconUUID:       g.IconUUID,
		TimeInfo:       g.TimeInfo,
		MergeMode:      g.MergeMode,
		updateTimeinfo: true,
	}
	if groupFlags&CloneIncludeEntries != 0 {
		for _, e := range g.Entries {
			out.AddEntryLink(e.Clone(entryFlags))
		}
	}
	if groupFlags&CloneIncludeChildren != 0 {
		for _, c := range g.Children {
			out.AddChildLink(c.Clone(entryFlags, groupFlags))
		}
	}
	return out
}

// Equal compares two groups' own attributes (not recursively).
func (g *Group) Equal(other *Group, flags CompareFlag) bool {
	if other == nil {
		return false
	}
	return g.UUID == other.UUID &&
		g.Name == other.Name &&
		g.Notes == other.Notes &&
		g.IconID == other.IconID &&
		g.IconUUID == other.IconUUID &&
		g.MergeMode == other.MergeMode &&
		g.TimeInfo.Equal(other.TimeInfo, flags)
}

// FindEntryByUUID searches g and its descendants for an entry with the
// given UUID.
func (g *Group) FindEntryByUUID(id UUID) *Entry {
	for _, e := range g.Entries {
		if e.UUID == id {
			return e
		}
	}
	for _, c := range g.Children {
		if e := c.FindEntryByUUID(id); e != nil {
			return e
		}
	}
	return nil
}

// FindGroupByUUID searches g and its descendants (including g itself)
// for a group with the given UUID.
func (g *Group) FindGroupByUUID(id UUID) *Group {
	if g.UUID == id {
		return g
	}
	for _, c := range g.Children {
		if found := c.FindGroupByUUID(id); found != nil {
			return found
		}
	}
	return nil
}
