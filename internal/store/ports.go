// Package store defines the remote ledger store collaborator: a document
// collection supporting push-based subscriptions and insert/update/delete
// by document id. Conflicting concurrent writes resolve last-write-wins;
// the store performs whole-document replacement on update, never a partial
// patch.
package store

import "context"

// Document is a raw, untyped record as held by the store: the assigned id
// plus free-form field values. Conversion to the typed domain record happens
// in the ledger engine.
type Document struct {
	ID     string
	Fields map[string]any
}

// Wire field names shared by all store implementations.
const (
	FieldDate         = "date"
	FieldAmount       = "amount"
	FieldDimension    = "dimension"
	FieldSubDimension = "subDimension"
	FieldDescription  = "description"
	FieldType         = "type"
	FieldUserID       = "userId"
	FieldTimestamp    = "timestamp"
)

type (
	// SnapshotFunc receives the full current document set on every change.
	SnapshotFunc func(docs []Document)

	// ErrorFunc receives subscription-level faults.
	ErrorFunc func(err error)

	// Unsubscribe releases a subscription. Safe to call more than once.
	Unsubscribe func()
)

// Store is the port every ledger store backend implements.
type Store interface {
	// Subscribe registers a snapshot listener. The current snapshot is
	// delivered immediately, then again after every mutation.
	Subscribe(ctx context.Context, onSnapshot SnapshotFunc, onError ErrorFunc) (Unsubscribe, error)

	// Insert adds a document and returns its store-assigned id.
	Insert(ctx context.Context, fields map[string]any) (string, error)

	// Update replaces the fields of an existing document.
	Update(ctx context.Context, id string, fields map[string]any) error

	// Delete removes a document. Deleting is final; there is no soft delete.
	Delete(ctx context.Context, id string) error
}

// CollectionPath returns the namespaced path of the shared record collection
// for a deployment.
func CollectionPath(appID string) string {
	if appID == "" {
		appID = "default-app-id"
	}
	return "artifacts/" + appID + "/public/data/financialRecords"
}
