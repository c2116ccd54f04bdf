package vault

import "time"

// DeletedObject is a tombstone: proof that UUID was deleted no later
// than DeletionTime.
type DeletedObject struct {
	UUID         UUID
	DeletionTime time.Time
}
