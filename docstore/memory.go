////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package docstore

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryEngine is the API-compatible in-memory fallback engine. It is
// activated when the primary engine cannot initialize and is not durable:
// contents are lost on tab restart. That limitation is accepted; callers
// must not try to patch around it.
type MemoryEngine struct {
	mux  sync.RWMutex
	docs map[string]Document
}

// NewMemoryEngine creates an empty MemoryEngine.
func NewMemoryEngine() *MemoryEngine {
	return &MemoryEngine{docs: make(map[string]Document)}
}

// Put stores the document after validating its revision against the stored
// one and returns the stored copy carrying a fresh synthetic revision.
func (e *MemoryEngine) Put(doc Document) (Document, error) {
	e.mux.Lock()
	defer e.mux.Unlock()

	stored, exists := e.docs[doc.Key]
	if exists {
		if err := checkRevision(doc.Key, stored.Revision, doc.Revision); err != nil {
			return Document{}, err
		}
	} else if doc.Revision != "" {
		return Document{}, errors.Wrapf(ErrConflict,
			"key %q: revision %q supplied for a document that does not exist",
			doc.Key, doc.Revision)
	}

	doc.Revision = nextRevision(doc.Revision)
	e.docs[doc.Key] = doc

	return doc, nil
}

// Get returns the document at the key. Returns ErrNotFound when no document
// exists there.
func (e *MemoryEngine) Get(key string) (Document, error) {
	e.mux.RLock()
	defer e.mux.RUnlock()

	doc, exists := e.docs[key]
	if !exists {
		return Document{}, errors.Wrapf(ErrNotFound, "key %q", key)
	}

	return doc, nil
}

// GetRange returns all documents with startKey <= key < endKey in key order.
func (e *MemoryEngine) GetRange(startKey, endKey string) ([]Document, error) {
	e.mux.RLock()
	defer e.mux.RUnlock()

	keys := make([]string, 0, len(e.docs))
	for key := range e.docs {
		if key >= startKey && key < endKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	docs := make([]Document, 0, len(keys))
	for _, key := range keys {
		docs = append(docs, e.docs[key])
	}

	return docs, nil
}

// Delete removes the document at the key after validating the revision.
// Returns ErrNotFound when no document exists there.
func (e *MemoryEngine) Delete(key, revision string) error {
	e.mux.Lock()
	defer e.mux.Unlock()

	stored, exists := e.docs[key]
	if !exists {
		return errors.Wrapf(ErrNotFound, "key %q", key)
	}
	if err := checkRevision(key, stored.Revision, revision); err != nil {
		return err
	}

	delete(e.docs, key)
	return nil
}

// Info reports the document count. Fallback is always true for this engine.
func (e *MemoryEngine) Info() (Info, error) {
	e.mux.RLock()
	defer e.mux.RUnlock()

	return Info{DocumentCount: len(e.docs), Fallback: true}, nil
}
