// Package models defines the client-side records kept in the local store.
package models

// SyncStatus tags the synchronization state of a local record.
type SyncStatus string

const (
	// StatusNew marks a record created locally and never pushed.
	StatusNew SyncStatus = "new"
	// StatusModified marks a previously synced record with unpushed edits.
	StatusModified SyncStatus = "modified"
	// StatusDeletedLocal marks a tombstoned record whose deletion has not
	// reached the server yet.
	StatusDeletedLocal SyncStatus = "deleted_local"
	// StatusSynced marks a record identical to the server copy.
	StatusSynced SyncStatus = "synced"
	// StatusError marks a record whose last push attempt was rejected.
	StatusError SyncStatus = "error"
)

// StatusAfterEdit returns the sync status a record takes after a local edit.
// A never-pushed record stays new (there is no server state to reconcile);
// everything else, including a tombstoned or errored record, becomes
// modified so the next push picks it up.
func StatusAfterEdit(current SyncStatus) SyncStatus {
	if current == StatusNew {
		return StatusNew
	}
	return StatusModified
}
