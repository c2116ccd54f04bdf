package vault

// Metadata holds database-wide settings: custom icons and the custom
// data key/value store.
type Metadata struct {
	CustomData *CustomData

	// HistoryMaxItems bounds how many revisions the history merger keeps
	// per entry.
	HistoryMaxItems int

	iconOrder []UUID
	icons     map[UUID][]byte
}

// DefaultHistoryMaxItems matches KeePassXC's default history depth.
const DefaultHistoryMaxItems = 10

// NewMetadata returns an empty Metadata block with default settings.
func NewMetadata() *Metadata {
	return &Metadata{
		CustomData:      NewCustomData(),
		HistoryMaxItems: DefaultHistoryMaxItems,
		icons:           make(map[UUID][]byte),
	}
}

// CustomIconsOrder returns custom icon UUIDs in insertion order.
func (m *Metadata) CustomIconsOrder() []UUID {
	return append([]UUID(nil), m.iconOrder...)
}

// HasCustomIcon reports whether id is a known custom icon.
func (m *Metadata) HasCustomIcon(id UUID) bool {
	_, ok := m.icons[id]
	return ok
}

// CustomIcon returns the raw icon data for id.
func (m *Metadata) CustomIcon(id UUID) []byte {
	return m.icons[id]
}

// AddCustomIcon inserts a new custom icon, appending to the insertion
// order if it is not already present.
func (m *Metadata) AddCustomIcon(id UUID, data []byte) {
	if _, exists := m.icons[id]; !exists {
		m.iconOrder = append(m.iconOrder, id)
	}
	m.icons[id] = data
}

// Clone returns a deep copy of m.
func (m *Metadata) Clone() *Metadata {
	out := &Metadata{
		CustomData:      m.CustomData.Clone(),
		HistoryMaxItems: m.HistoryMaxItems,
		iconOrder:       append([]UUID(nil), m.iconOrder...),
		icons:           make(map[UUID][]byte, len(m.icons)),
	}
	for id, data := range m.icons {
		out.icons[id] = append([]byte(nil), data...)
	}
	return out
}
