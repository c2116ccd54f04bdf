package vault

import "time"

// LastModifiedKey is the distinguished CustomData key that carries the
// store's own last-modification time. It is managed automatically by
// Set/Remove and must never be written to directly by callers.
const LastModifiedKey = "_LAST_MODIFIED"

// CustomData is an insertion-ordered key/value store with a distinguished
// LastModifiedKey entry and per-key protected flags, modeled on
// KeePassXC's CustomData.
type CustomData struct {
	order     []string
	values    map[string]string
	protected map[string]bool
}

// NewCustomData returns an empty CustomData store.
func NewCustomData() *CustomData {
	return &CustomData{
		values:    make(map[string]string),
		protected: make(map[string]bool),
	}
}

// Keys returns the keys in insertion order, excluding LastModifiedKey.
func (c *CustomData) Keys() []string {
	keys := make([]string, 0, len(c.order))
	for _, k := range c.order {
		if k == LastModifiedKey {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// Contains reports whether key is present.
func (c *CustomData) Contains(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Value returns the value stored for key, or "" if absent.
func (c *CustomData) Value(key string) string {
	return c.values[key]
}

// IsProtected reports whether key is marked protected (protected keys
// are never removed by the metadata merger even when the source has no
// matching key).
func (c *CustomData) IsProtected(key string) bool {
	return c.protected[key]
}

// SetProtected marks key as protected or not, without touching its value
// or LastModified.
func (c *CustomData) SetProtected(key string, protected bool) {
	c.protected[key] = protected
}

// Set stores value under key and bumps LastModified, unless key is
// LastModifiedKey itself (which cannot be set directly: it is derived
// from every other Set/Remove call).
func (c *CustomData) Set(key, value string) {
	if key == LastModifiedKey {
		return
	}
	if _, exists := c.values[key]; !exists {
		c.order = append(c.order, key)
	}
	c.values[key] = value
	c.touch()
}

// Remove deletes key, unless it is LastModifiedKey.
func (c *CustomData) Remove(key string) {
	if key == LastModifiedKey {
		return
	}
	if _, exists := c.values[key]; !exists {
		return
	}
	delete(c.values, key)
	delete(c.protected, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.touch()
}

func (c *CustomData) touch() {
	if _, exists := c.values[LastModifiedKey]; !exists {
		c.order = append(c.order, LastModifiedKey)
	}
	c.values[LastModifiedKey] = time.Now().UTC().Format(time.RFC3339Nano)
}

// LastModified returns the timestamp of the most recent Set/Remove call,
// or the zero time if the store has never been touched.
func (c *CustomData) LastModified() time.Time {
	raw, ok := c.values[LastModifiedKey]
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// RestoreLastModified is used only by the codec layer when loading a
// persisted LastModified value verbatim, bypassing touch().
func (c *CustomData) RestoreLastModified(t time.Time) {
	if _, exists := c.values[LastModifiedKey]; !exists {
		c.order = append(c.order, LastModifiedKey)
	}
	c.values[LastModifiedKey] = t.UTC().Format(time.RFC3339Nano)
}

// Clone returns a deep copy of c.
func (c *CustomData) Clone() *CustomData {
	out := NewCustomData()
	out.order = append([]string(nil), c.order...)
	for k, v := range c.values {
		out.values[k] = v
	}
	for k, v := range c.protected {
		out.protected[k] = v
	}
	return out
}
