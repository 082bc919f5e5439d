////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

package docstore

import (
	"context"
	"encoding/json"
	"strings"
	"syscall/js"
	"time"

	"github.com/hack-pad/go-indexeddb/idb"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/classhub/learndk-wasm/storage"
)

const (
	// DatabaseName is the name of the IndexedDB database holding the
	// document namespace.
	DatabaseName = "learndk_documents"

	// currentVersion of the IndexedDB schema. Used for migration purposes.
	currentVersion uint = 1

	// Object store and keyPath names.
	documentStoreName = "documents"
	pkeyName          = "key"

	// dbTimeout is the timeout for individual IndexedDB requests.
	dbTimeout = time.Second
)

// idbEngine is the primary storage engine, backed by IndexedDB. Revisions
// are enforced by a read-before-put; the client is single-writer per tab,
// so the read cannot race another local writer.
type idbEngine struct {
	db *idb.Database
}

// OpenIndexedDb is the [Opener] for the primary engine. It opens the
// document database, running the schema upgrade when needed.
func OpenIndexedDb() (Engine, error) {
	ctx := context.Background()

	openRequest, err := idb.Global().Open(ctx, DatabaseName, currentVersion,
		func(db *idb.Database, oldVersion, newVersion uint) error {
			if oldVersion == newVersion {
				jww.INFO.Printf("IndexedDb version is current: v%d",
					newVersion)
				return nil
			}

			jww.INFO.Printf("IndexedDb upgrade required: v%d -> v%d",
				oldVersion, newVersion)

			if oldVersion == 0 && newVersion == 1 {
				return v1Upgrade(db)
			}

			return errors.Errorf("Invalid version upgrade path: v%d -> v%d",
				oldVersion, newVersion)
		})
	if err != nil {
		return nil, errors.Wrap(err, "unable to open IndexedDb")
	}

	// Wait for database open to finish
	db, err := openRequest.Await(ctx)
	if err != nil {
		return nil, mapJsError(err)
	}

	// Record the database so Purge can find it later
	if err = storage.StoreIndexedDb(
		storage.GetLocalStorage(), DatabaseName); err != nil {
		jww.WARN.Printf("Failed to record database name: %+v", err)
	}

	return &idbEngine{db: db}, nil
}

// v1Upgrade performs the v0 -> v1 database upgrade. This can never be
// changed without permanently breaking backwards compatibility.
func v1Upgrade(db *idb.Database) error {
	storeOpts := idb.ObjectStoreOptions{
		KeyPath:       js.ValueOf(pkeyName),
		AutoIncrement: false,
	}

	_, err := db.CreateObjectStore(documentStoreName, storeOpts)
	return err
}

// newContext builds a context for IndexedDB operations.
func newContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

// sendRequest is a wrapper for the request.Await method providing a timeout.
func sendRequest(request *idb.Request) (js.Value, error) {
	ctx, cancel := newContext()
	defer cancel()
	result, err := request.Await(ctx)
	if err != nil {
		return js.Undefined(), err
	} else if ctx.Err() != nil {
		return js.Undefined(), ctx.Err()
	}
	return result, nil
}

// mapJsError translates Javascript storage failures to the package's error
// taxonomy. A full origin quota surfaces as QuotaExceededError and must not
// be swallowed.
func mapJsError(err error) error {
	if err != nil && strings.Contains(err.Error(), "QuotaExceededError") {
		return errors.Wrapf(storage.ErrQuotaExceeded, "%+v", err)
	}
	return err
}

// Put stores the document after validating its revision against the stored
// one and returns the stored copy carrying a fresh revision.
func (e *idbEngine) Put(doc Document) (Document, error) {
	parentErr := errors.Errorf("failed to Put %q", doc.Key)

	stored, err := e.Get(doc.Key)
	exists := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Document{}, errors.WithMessagef(parentErr, "%+v", err)
	}

	if exists {
		if err = checkRevision(doc.Key, stored.Revision, doc.Revision); err != nil {
			return Document{}, err
		}
	} else if doc.Revision != "" {
		return Document{}, errors.Wrapf(ErrConflict,
			"key %q: revision %q supplied for a document that does not exist",
			doc.Key, doc.Revision)
	}

	doc.Revision = nextRevision(doc.Revision)

	value, err := documentToJS(doc)
	if err != nil {
		return Document{}, errors.WithMessagef(parentErr, "%+v", err)
	}

	// Prepare the Transaction
	txn, err := e.db.Transaction(idb.TransactionReadWrite, documentStoreName)
	if err != nil {
		return Document{}, errors.WithMessagef(parentErr,
			"Unable to create Transaction: %+v", err)
	}
	store, err := txn.ObjectStore(documentStoreName)
	if err != nil {
		return Document{}, errors.WithMessagef(parentErr,
			"Unable to get ObjectStore: %+v", err)
	}

	// Set up the operation
	request, err := store.Put(value)
	if err != nil {
		return Document{}, errors.WithMessagef(parentErr,
			"Unable to Put: %+v", err)
	}

	// Perform the operation
	if _, err = sendRequest(request); err != nil {
		return Document{}, errors.WithMessagef(parentErr,
			"Putting document failed: %+v", mapJsError(err))
	}

	jww.DEBUG.Printf("Successfully put document at %q (revision %s)",
		doc.Key, doc.Revision)
	return doc, nil
}

// Get returns the document at the key. Returns ErrNotFound when absent.
func (e *idbEngine) Get(key string) (Document, error) {
	parentErr := errors.Errorf("failed to Get %q", key)

	// Prepare the Transaction
	txn, err := e.db.Transaction(idb.TransactionReadOnly, documentStoreName)
	if err != nil {
		return Document{}, errors.WithMessagef(parentErr,
			"Unable to create Transaction: %+v", err)
	}
	store, err := txn.ObjectStore(documentStoreName)
	if err != nil {
		return Document{}, errors.WithMessagef(parentErr,
			"Unable to get ObjectStore: %+v", err)
	}

	// Set up the operation
	getRequest, err := store.Get(js.ValueOf(key))
	if err != nil {
		return Document{}, errors.WithMessagef(parentErr,
			"Unable to Get from ObjectStore: %+v", err)
	}

	// Perform the operation
	resultObj, err := sendRequest(getRequest)
	if err != nil {
		return Document{}, errors.WithMessagef(parentErr,
			"Unable to get from ObjectStore: %+v", err)
	} else if resultObj.IsUndefined() {
		return Document{}, errors.Wrapf(ErrNotFound, "key %q", key)
	}

	return documentFromJS(resultObj)
}

// GetRange returns all documents in the half-open key range
// [startKey, endKey) in key order.
func (e *idbEngine) GetRange(startKey, endKey string) ([]Document, error) {
	parentErr := errors.Errorf(
		"failed to GetRange [%q, %q)", startKey, endKey)

	// Prepare the Transaction
	txn, err := e.db.Transaction(idb.TransactionReadOnly, documentStoreName)
	if err != nil {
		return nil, errors.WithMessagef(parentErr,
			"Unable to create Transaction: %+v", err)
	}
	store, err := txn.ObjectStore(documentStoreName)
	if err != nil {
		return nil, errors.WithMessagef(parentErr,
			"Unable to get ObjectStore: %+v", err)
	}

	// Set up the operation
	keyRange, err := idb.NewKeyRangeBound(
		js.ValueOf(startKey), js.ValueOf(endKey), false, true)
	if err != nil {
		return nil, errors.WithMessagef(parentErr,
			"Unable to create KeyRange: %+v", err)
	}
	cursorRequest, err := store.OpenCursorRange(keyRange, idb.CursorNext)
	if err != nil {
		return nil, errors.WithMessagef(parentErr,
			"Unable to open Cursor: %+v", err)
	}

	// Perform the operation
	docs := make([]Document, 0)
	ctx, cancel := newContext()
	err = cursorRequest.Iter(ctx,
		func(cursor *idb.CursorWithValue) error {
			row, err := cursor.Value()
			if err != nil {
				return err
			}
			doc, err := documentFromJS(row)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	cancel()
	if err != nil {
		return nil, errors.WithMessagef(parentErr, "%+v", err)
	}

	return docs, nil
}

// Delete removes the document at the key after validating the revision.
func (e *idbEngine) Delete(key, revision string) error {
	parentErr := errors.Errorf("failed to Delete %q", key)

	stored, err := e.Get(key)
	if err != nil {
		return err
	}
	if err = checkRevision(key, stored.Revision, revision); err != nil {
		return err
	}

	// Prepare the Transaction
	txn, err := e.db.Transaction(idb.TransactionReadWrite, documentStoreName)
	if err != nil {
		return errors.WithMessagef(parentErr,
			"Unable to create Transaction: %+v", err)
	}
	store, err := txn.ObjectStore(documentStoreName)
	if err != nil {
		return errors.WithMessagef(parentErr,
			"Unable to get ObjectStore: %+v", err)
	}

	// Perform the operation
	deleteRequest, err := store.Delete(js.ValueOf(key))
	if err != nil {
		return errors.WithMessagef(parentErr,
			"Unable to Delete from ObjectStore: %+v", err)
	}

	// Wait for the operation to return
	ctx, cancel := newContext()
	err = deleteRequest.Await(ctx)
	cancel()
	if err != nil {
		return errors.WithMessagef(parentErr,
			"Unable to Delete from ObjectStore: %+v", err)
	}

	jww.DEBUG.Printf("Successfully deleted document at %q", key)
	return nil
}

// Info reports the document count by counting the object store.
func (e *idbEngine) Info() (Info, error) {
	parentErr := errors.New("failed to get Info")

	txn, err := e.db.Transaction(idb.TransactionReadOnly, documentStoreName)
	if err != nil {
		return Info{}, errors.WithMessagef(parentErr,
			"Unable to create Transaction: %+v", err)
	}
	store, err := txn.ObjectStore(documentStoreName)
	if err != nil {
		return Info{}, errors.WithMessagef(parentErr,
			"Unable to get ObjectStore: %+v", err)
	}

	countRequest, err := store.Count()
	if err != nil {
		return Info{}, errors.WithMessagef(parentErr,
			"Unable to Count ObjectStore: %+v", err)
	}

	ctx, cancel := newContext()
	count, err := countRequest.Await(ctx)
	cancel()
	if err != nil {
		return Info{}, errors.WithMessagef(parentErr, "%+v", err)
	}

	return Info{DocumentCount: int(count)}, nil
}

// documentToJS converts a Document to the js.Value object stored in the
// object store.
func documentToJS(doc Document) (js.Value, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return js.Undefined(), errors.Wrap(err, "failed to marshal document")
	}

	var obj map[string]any
	if err = json.Unmarshal(data, &obj); err != nil {
		return js.Undefined(), errors.Wrap(err, "failed to convert document")
	}

	return js.ValueOf(obj), nil
}

// documentFromJS converts a stored js.Value object back into a Document.
func documentFromJS(value js.Value) (Document, error) {
	jsJSON := js.Global().Get("JSON")
	data := jsJSON.Call("stringify", value).String()

	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return Document{}, errors.Wrap(err, "failed to unmarshal document")
	}

	return doc, nil
}
