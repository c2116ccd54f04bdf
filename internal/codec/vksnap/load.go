package vksnap

import (
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"github.com/ravensync/vaultkeep/internal/vault"
)

// Load rebuilds a *vault.Database from s. The returned database's
// timestamps are restored verbatim (auto-timestamping is suspended
// while building), so a Build(Load(s)) round-trip reproduces s exactly.
func Load(s *Snapshot) (*vault.Database, error) {
	groupByID := map[string]*vault.Group{}
	for id, sg := range s.Groups {
		gid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", id, err)
		}
		g := vault.NewGroup()
		g.SetUpdateTimeinfo(false)
		g.UUID = gid
		if err := fillGroup(g, sg); err != nil {
			return nil, fmt.Errorf("group %q: %w", id, err)
		}
		groupByID[id] = g
	}

	var root *vault.Group
	for id, sg := range s.Groups {
		g := groupByID[id]
		if sg.ParentUUID == "" {
			if root != nil {
				return nil, fmt.Errorf("snapshot has more than one root group (%q and %q)", s.Meta.RootGroupUUID, id)
			}
			root = g
			continue
		}
		parent, ok := groupByID[sg.ParentUUID]
		if !ok {
			return nil, fmt.Errorf("group %q references unknown parent %q", id, sg.ParentUUID)
		}
		parent.AddChildLink(g)
	}
	if root == nil {
		root = vault.NewGroup()
		root.SetUpdateTimeinfo(false)
	}

	db := vault.NewDatabaseWithRoot(root)
	root.SetUpdateTimeinfo(true)
	for _, g := range groupByID {
		g.SetUpdateTimeinfo(true)
	}

	for id, se := range s.Entries {
		eid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", id, err)
		}
		g, ok := groupByID[se.GroupUUID]
		if !ok {
			return nil, fmt.Errorf("entry %q references unknown group %q", id, se.GroupUUID)
		}
		e, err := fillEntry(eid, se)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", id, err)
		}
		g.SetUpdateTimeinfo(false)
		g.AddEntryLink(e)
		g.SetUpdateTimeinfo(true)
	}

	db.MetadataBlock.HistoryMaxItems = s.Meta.HistoryMaxItems
	if db.MetadataBlock.HistoryMaxItems == 0 {
		db.MetadataBlock.HistoryMaxItems = vault.DefaultHistoryMaxItems
	}

	for _, icon := range s.Icons {
		iid, err := uuid.Parse(icon.UUID)
		if err != nil {
			return nil, fmt.Errorf("custom icon %q: %w", icon.UUID, err)
		}
		data, err := base64.StdEncoding.DecodeString(icon.Data)
		if err != nil {
			return nil, fmt.Errorf("custom icon %q: %w", icon.UUID, err)
		}
		db.MetadataBlock.AddCustomIcon(iid, data)
	}

	for _, cd := range s.CustomData {
		db.MetadataBlock.CustomData.Set(cd.Key, cd.Value)
		db.MetadataBlock.CustomData.SetProtected(cd.Key, cd.Protected)
	}
	if s.Meta.CustomDataModified != "" {
		t, err := ParseTimestamp(s.Meta.CustomDataModified)
		if err != nil {
			return nil, fmt.Errorf("custom_data_modified_at: %w", err)
		}
		db.MetadataBlock.CustomData.RestoreLastModified(t)
	}

	for _, del := range s.Deletions {
		did, err := uuid.Parse(del.UUID)
		if err != nil {
			return nil, fmt.Errorf("deletion %q: %w", del.UUID, err)
		}
		t, err := ParseTimestamp(del.DeletionTime)
		if err != nil {
			return nil, fmt.Errorf("deletion %q: %w", del.UUID, err)
		}
		db.SetDeletedObjects(append(db.DeletedObjects(), vault.DeletedObject{UUID: did, DeletionTime: t}))
	}

	return db, nil
}

func fillGroup(g *vault.Group, sg Group) error {
	g.Name = sg.Name
	g.Notes = sg.Notes
	g.IconID = sg.IconID
	if sg.IconUUID != "" {
		iid, err := uuid.Parse(sg.IconUUID)
		if err != nil {
			return err
		}
		g.IconUUID = iid
	}
	if sg.MergeMode != "" {
		mode, err := parseMergeMode(sg.MergeMode)
		if err != nil {
			return err
		}
		g.MergeMode = mode
	}
	ti, err := fillTimeInfo(sg.Created, sg.LastModified, sg.LastAccessed, sg.LocationChanged, sg.ExpiryEnabled, sg.ExpiryTime)
	if err != nil {
		return err
	}
	g.TimeInfo = ti
	return nil
}

func fillEntry(id vault.UUID, se Entry) (*vault.Entry, error) {
	e := vault.NewEntry()
	e.SetUpdateTimeinfo(false)
	e.UUID = id
	e.Title = se.Title
	e.Fields = cloneFields(se.Fields)
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	ti, err := fillTimeInfo(se.Created, se.LastModified, se.LastAccessed, se.LocationChanged, se.ExpiryEnabled, se.ExpiryTime)
	if err != nil {
		return nil, err
	}
	e.TimeInfo = ti

	for _, h := range se.History {
		item, err := fillHistoryItem(h)
		if err != nil {
			return nil, err
		}
		e.AddHistoryItem(item)
	}
	e.SetUpdateTimeinfo(true)
	return e, nil
}

func fillHistoryItem(h HistoryItem) (*vault.Entry, error) {
	item := vault.NewEntry()
	item.SetUpdateTimeinfo(false)
	item.Title = h.Title
	item.Fields = cloneFields(h.Fields)
	if item.Fields == nil {
		item.Fields = map[string]string{}
	}
	ti, err := fillTimeInfo(h.Created, h.LastModified, h.LastAccessed, h.LocationChanged, h.ExpiryEnabled, h.ExpiryTime)
	if err != nil {
		return nil, err
	}
	item.TimeInfo = ti
	return item, nil
}

func fillTimeInfo(created, modified, accessed, located string, expiryEnabled bool, expiry string) (vault.TimeInfo, error) {
	var ti vault.TimeInfo
	var err error
	if ti.Created, err = ParseTimestamp(created); err != nil {
		return ti, err
	}
	if ti.LastModified, err = ParseTimestamp(modified); err != nil {
		return ti, err
	}
	if ti.LastAccessed, err = ParseTimestamp(accessed); err != nil {
		return ti, err
	}
	if ti.LocationChanged, err = ParseTimestamp(located); err != nil {
		return ti, err
	}
	ti.ExpiryEnabled = expiryEnabled
	if expiryEnabled {
		if ti.ExpiryTime, err = ParseTimestamp(expiry); err != nil {
			return ti, err
		}
	}
	return ti, nil
}

func parseMergeMode(s string) (vault.MergeMode, error) {
	switch s {
	case "Default":
		return vault.MergeModeDefault, nil
	case "KeepLocal":
		return vault.MergeModeKeepLocal, nil
	case "KeepRemote":
		return vault.MergeModeKeepRemote, nil
	case "Synchronize":
		return vault.MergeModeSynchronize, nil
	case "Duplicate":
		return vault.MergeModeDuplicate, nil
	default:
		return vault.MergeModeDefault, fmt.Errorf("unknown merge mode %q", s)
	}
}
