////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package docstore

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// PrefixEnd is appended to a key prefix to form the exclusive upper bound of
// a half-open range scan. Because keys are compared as strings, every key
// starting with the prefix sorts below prefix+PrefixEnd.
const PrefixEnd = "\uffff"

// Sentinel errors for document operations.
var (
	// ErrNotFound is returned by Get and Delete when no document exists at
	// the key. A missing document is not a failure; the entity layers
	// translate it to an absent value.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned by Put when the caller's revision does not
	// match the stored revision. The caller must re-read and retry; it must
	// never auto-merge.
	ErrConflict = errors.New("document revision conflict")
)

// Document is the envelope shared by every persisted document. Revision is
// an opaque token proving the writer observed the last known version; it is
// required on update and must be absent on creation. CachedAt and UpdatedAt
// are bookkeeping only and are never used for conflict resolution.
type Document struct {
	Key       string          `json:"key"`
	Revision  string          `json:"revision,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CachedAt  time.Time       `json:"cachedAt"`
	UpdatedAt time.Time       `json:"lastUpdated"`
}

// Info describes the state of a storage engine. Fallback reports whether the
// engine is the non-durable in-memory substitute; it exists for diagnostics
// only and must never drive control flow.
type Info struct {
	DocumentCount int  `json:"documentCount"`
	Fallback      bool `json:"fallback"`
}

// Engine is the four-operation storage backend behind the DocumentStore.
// Exactly one engine is selected at startup; call sites never branch on
// which one is active.
//
// Put stores the document and returns the stored copy carrying its new
// revision. The document's Revision field must hold the revision of the
// document being replaced (empty on creation); a mismatch returns
// ErrConflict. Get returns ErrNotFound when no document exists at the key.
// GetRange returns all documents with startKey <= key < endKey in key order.
// Delete requires the current revision, mirroring Put.
type Engine interface {
	Put(doc Document) (Document, error)
	Get(key string) (Document, error)
	GetRange(startKey, endKey string) ([]Document, error)
	Delete(key, revision string) error
	Info() (Info, error)
}

// Opener constructs the primary storage engine. It is retried by Open per
// the bounded-retry initialization protocol.
type Opener func() (Engine, error)

// nextRevision derives the revision token for a new write from the revision
// of the document being replaced. Tokens have the form
// "{generation}-{timestamp}"; the generation increments on every write so
// revisions stay monotonic even within one clock tick.
func nextRevision(current string) string {
	generation := 1
	if i := strings.IndexByte(current, '-'); i > 0 {
		if n, err := strconv.Atoi(current[:i]); err == nil {
			generation = n + 1
		}
	}

	return strconv.Itoa(generation) + "-" +
		strconv.FormatInt(time.Now().UnixNano(), 10)
}

// checkRevision validates a caller-supplied revision against the stored one.
func checkRevision(key, stored, supplied string) error {
	if stored != supplied {
		return errors.Wrapf(ErrConflict,
			"key %q: supplied revision %q does not match stored revision %q",
			key, supplied, stored)
	}
	return nil
}
