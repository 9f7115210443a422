package domain

import "time"

// SnapshotVersion is the layout version written by this build.
const SnapshotVersion = 1

// Meta describes how and when a snapshot was written.
type Meta struct {
	Storage   string    `json:"storage"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is the full serialized state of the ledger.
type Snapshot struct {
	Meta     Meta            `json:"_meta"`
	Accounts []AccountRecord `json:"accounts"`
}
