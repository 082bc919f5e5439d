////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package docstore

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Params configures the bounded-retry initialization protocol.
type Params struct {
	// InitAttempts is the number of times the primary engine opener is tried
	// before swapping in the fallback engine.
	InitAttempts int

	// InitBackoff is the delay between initialization attempts.
	InitBackoff time.Duration
}

// DefaultParams returns the default initialization parameters.
func DefaultParams() Params {
	return Params{
		InitAttempts: 3,
		InitBackoff:  time.Second,
	}
}

// DocumentStore is the revisioned key→document store over a single logical
// namespace. The backing engine is selected once by Open and held behind
// this one indirection point; call sites never branch on which engine is
// active.
type DocumentStore struct {
	engine   Engine
	fallback bool
}

// Open initializes the primary engine with bounded retries. Each successful
// open must pass a self-test (an Info call) before the store is exposed to
// callers. When all attempts are exhausted the store swaps in the in-memory
// fallback engine, which is API-compatible but not durable. Open never
// fails; total storage loss is reported by the engine on first write
// instead.
func Open(opener Opener, params Params) *DocumentStore {
	if params.InitAttempts < 1 {
		params = DefaultParams()
	}

	for attempt := 1; attempt <= params.InitAttempts; attempt++ {
		engine, err := opener()
		if err == nil {
			// Self-test before exposing the engine to callers
			if _, err = engine.Info(); err == nil {
				jww.INFO.Printf(
					"Document store ready (attempt %d of %d)",
					attempt, params.InitAttempts)
				return &DocumentStore{engine: engine}
			}
			err = errors.WithMessage(err, "engine self-test failed")
		}

		jww.WARN.Printf("Document store initialization attempt %d of %d "+
			"failed: %+v", attempt, params.InitAttempts, err)

		if attempt < params.InitAttempts {
			time.Sleep(params.InitBackoff)
		}
	}

	jww.ERROR.Printf("Document store initialization exhausted %d attempts; "+
		"continuing on non-durable in-memory fallback engine",
		params.InitAttempts)

	return &DocumentStore{engine: NewMemoryEngine(), fallback: true}
}

// NewWithEngine wraps an already constructed engine. Used by tests and by
// native builds that select an engine themselves.
func NewWithEngine(engine Engine, fallback bool) *DocumentStore {
	return &DocumentStore{engine: engine, fallback: fallback}
}

// IsFallback reports whether the store is running on the fallback engine.
// Diagnostics and telemetry only; never use it for control flow.
func (s *DocumentStore) IsFallback() bool {
	return s.fallback
}

// Put stores the document. The document's Revision must hold the revision of
// the document it replaces, or be empty on creation.
func (s *DocumentStore) Put(doc Document) (Document, error) {
	return s.engine.Put(doc)
}

// Get returns the document at the key. Returns ErrNotFound when absent.
func (s *DocumentStore) Get(key string) (Document, error) {
	return s.engine.Get(key)
}

// GetRange returns all documents in the half-open key range
// [startKey, endKey) in key order.
func (s *DocumentStore) GetRange(startKey, endKey string) ([]Document, error) {
	return s.engine.GetRange(startKey, endKey)
}

// GetPrefix returns all documents whose key starts with the prefix,
// emulated as the half-open range [prefix, prefix+PrefixEnd).
func (s *DocumentStore) GetPrefix(prefix string) ([]Document, error) {
	return s.engine.GetRange(prefix, prefix+PrefixEnd)
}

// Delete removes the document at the key. The revision must match the
// stored one.
func (s *DocumentStore) Delete(key, revision string) error {
	return s.engine.Delete(key, revision)
}

// Info reports the engine's state.
func (s *DocumentStore) Info() (Info, error) {
	info, err := s.engine.Info()
	if err != nil {
		return Info{}, err
	}
	info.Fallback = info.Fallback || s.fallback
	return info, nil
}

// Upsert is the one audited read-modify-write path. It reads the document
// at the key, passes its payload to mutate (found reports whether a
// document existed), and writes the result back carrying the observed
// revision. Every entity helper writes through here so the revision chain
// can never be skipped.
func (s *DocumentStore) Upsert(key string,
	mutate func(payload json.RawMessage, found bool) (json.RawMessage, error)) (
	Document, error) {

	stored, err := s.engine.Get(key)
	found := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Document{}, err
	}

	newPayload, err := mutate(stored.Payload, found)
	if err != nil {
		return Document{}, err
	}

	now := time.Now()
	doc := Document{
		Key:       key,
		Payload:   newPayload,
		CachedAt:  now,
		UpdatedAt: now,
	}
	if found {
		doc.Revision = stored.Revision
		doc.CachedAt = stored.CachedAt
	}

	return s.engine.Put(doc)
}

// RemoveIfPresent deletes the document at the key if it exists, reading its
// current revision first. A missing document is not an error.
func (s *DocumentStore) RemoveIfPresent(key string) error {
	stored, err := s.engine.Get(key)
	if errors.Is(err, ErrNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	return s.engine.Delete(key, stored.Revision)
}
