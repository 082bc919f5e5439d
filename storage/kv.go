////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"github.com/pkg/errors"
)

// ErrQuotaExceeded is returned by [KeyValue.Set] when the underlying storage
// is full. It is recoverable by the user clearing cached data; it must never
// be swallowed.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KeyValue is the flat key/value layer that backs the identity shadow, the
// progress mirror, the sync queue, and the cache version marker. On the web
// it is implemented by localStorage; natively and in tests it is implemented
// by MemStorage.
//
// Get returns [os.ErrNotExist] when the key is absent. A missing key is not
// a failure.
type KeyValue interface {
	// Get returns a key's value. Returns os.ErrNotExist if the key does not
	// exist.
	Get(keyName string) ([]byte, error)

	// Set adds a key's value to storage. Returns ErrQuotaExceeded when the
	// underlying storage cannot accept the write.
	Set(keyName string, keyValue []byte) error

	// Remove removes a key's value from storage. If there is no item with
	// the given key, this function does nothing.
	Remove(keyName string)

	// Keys returns a list of all key names in storage.
	Keys() []string

	// ClearPrefix removes all keys with the given prefix.
	ClearPrefix(prefix string)

	// Clear removes all keys in storage.
	Clear()
}
