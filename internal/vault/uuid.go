package vault

import "github.com/google/uuid"

// UUID is the stable identity carried by every Group, Entry and
// DeletedObject.
type UUID = uuid.UUID

// NilUUID is the zero-value UUID, used to mean "no reference" (e.g. a
// Group's IconUUID when it uses a numeric built-in icon instead).
var NilUUID = uuid.Nil

// NewUUID returns a freshly generated v4 UUID.
func NewUUID() UUID {
	return uuid.New()
}
