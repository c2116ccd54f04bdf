// Package merge implements the three-way-free merger for a vault.Database
// tree: it reconciles a read-only source tree into a read-write target
// tree using only per-item timestamps, with no common ancestor.
package merge

import (
	"fmt"

	"github.com/ravensync/vaultkeep/internal/vault"
)

// Type tags a Change record by the kind of mutation it describes.
type Type int

const (
	Unspecified Type = iota
	Added
	Modified
	Moved
	Deleted
)

func (t Type) String() string {
	switch t {
	case Added:
		return "Added"
	case Modified:
		return "Modified"
	case Moved:
		return "Moved"
	case Deleted:
		return "Deleted"
	default:
		return ""
	}
}

// Change is one row in the merger's output log.
type Change struct {
	Type    Type
	Group   string
	Title   string
	UUID    vault.UUID
	Details string
}

// ChangeList is the merger's output: an ordered list of Change records.
type ChangeList []Change

// changeForGroup builds a Change describing a group-level mutation.
func changeForGroup(t Type, g *vault.Group, details string) Change {
	return Change{Type: t, Group: g.FullPath(), UUID: g.UUID, Details: details}
}

// changeForEntry builds a Change describing an entry-level mutation.
func changeForEntry(t Type, e *vault.Entry, details string) Change {
	c := Change{Type: t, Title: e.Title, UUID: e.UUID, Details: details}
	if g := e.Group(); g != nil {
		c.Group = g.FullPath()
	}
	return c
}

// changeNote builds a Change with no group/entry association (used for
// database-wide summaries like "Changed deleted objects").
func changeNote(details string) Change {
	return Change{Details: details}
}

// String renders a Change the way KeePassXC's Merger::Change::toString
// does: "Type: 'group'/'title' [uuid] (details)", omitting any empty
// field and its surrounding punctuation.
func (c Change) String() string {
	var out string
	if c.Type != Unspecified {
		out += c.Type.String() + ": "
	}
	if c.Group != "" {
		out += fmt.Sprintf("'%s'", c.Group)
	}
	if c.Title != "" {
		out += fmt.Sprintf("/'%s'", c.Title)
	}
	if c.UUID != vault.NilUUID {
		out += fmt.Sprintf(" [%s]", c.UUID)
	}
	if c.Details != "" {
		out += fmt.Sprintf(" (%s)", c.Details)
	}
	return out
}
