////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package cache provides typed CRUD helpers for each cached entity kind,
// built on the document store with deterministic prefixed keys. A missing
// entity is returned as nil, never as an error; all other storage failures
// propagate untouched.
package cache

import (
	"encoding/json"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/classhub/learndk-wasm/docstore"
	"gitlab.com/classhub/learndk-wasm/storage"
)

// Key prefixes per entity type. Prefixes are disjoint; a key is never reused
// across entity types.
const (
	userKeyPrefix       = "user_"
	courseKeyPrefix     = "course_"
	moduleKeyPrefix     = "module_"
	attachmentKeyPrefix = "attachment_"
)

// Manager is the entity cache layer. It owns no storage itself; it is
// constructed with the document store and the flat store.
type Manager struct {
	docs *docstore.DocumentStore
	kv   storage.KeyValue
}

// NewManager creates a Manager over the given document store and flat
// store.
func NewManager(docs *docstore.DocumentStore, kv storage.KeyValue) *Manager {
	return &Manager{docs: docs, kv: kv}
}

// upsertEntity marshals the entity and writes it through the document
// store's audited read-modify-write path so the revision chain is carried
// on every write.
func (m *Manager) upsertEntity(key string, entity any) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal entity for %q", key)
	}

	_, err = m.docs.Upsert(key,
		func(json.RawMessage, bool) (json.RawMessage, error) {
			return payload, nil
		})
	return err
}

// getEntity loads and unmarshals the entity at the key. Returns false with
// a nil error when the document is absent.
func (m *Manager) getEntity(key string, entity any) (bool, error) {
	doc, err := m.docs.Get(key)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if err = json.Unmarshal(doc.Payload, entity); err != nil {
		return false, errors.Wrapf(err,
			"failed to unmarshal entity at %q", key)
	}

	return true, nil
}

// clearEntities deletes every document under the prefix. If any deletion
// errors, the overall call reports failure even when the other deletions
// succeeded.
func (m *Manager) clearEntities(prefix string) error {
	docs, err := m.docs.GetPrefix(prefix)
	if err != nil {
		return err
	}

	var failed int
	var lastErr error
	for _, doc := range docs {
		if err = m.docs.Delete(doc.Key, doc.Revision); err != nil {
			jww.ERROR.Printf("Failed to delete %q: %+v", doc.Key, err)
			failed++
			lastErr = err
		}
	}
	if failed > 0 {
		return errors.WithMessagef(lastErr,
			"failed to delete %d of %d entities under %q",
			failed, len(docs), prefix)
	}

	return nil
}
