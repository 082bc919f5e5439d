////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// MemStorage is an in-memory implementation of [KeyValue]. It backs the flat
// layer when localStorage is unavailable and doubles as the storage double in
// tests. It is not durable; contents are lost on restart.
type MemStorage struct {
	mux  sync.RWMutex
	data map[string][]byte
}

// NewMemStorage creates a new empty MemStorage.
func NewMemStorage() *MemStorage {
	return &MemStorage{data: make(map[string][]byte)}
}

// Get returns a key's value. Returns os.ErrNotExist if the key does not
// exist.
func (m *MemStorage) Get(keyName string) ([]byte, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()

	keyValue, exists := m.data[keyName]
	if !exists {
		return nil, os.ErrNotExist
	}

	return append([]byte{}, keyValue...), nil
}

// Set adds a key's value to the map. It copies the value so later caller
// mutations do not leak into storage.
func (m *MemStorage) Set(keyName string, keyValue []byte) error {
	m.mux.Lock()
	defer m.mux.Unlock()

	m.data[keyName] = append([]byte{}, keyValue...)
	return nil
}

// Remove removes a key's value from the map. If there is no item with the
// given key, this function does nothing.
func (m *MemStorage) Remove(keyName string) {
	m.mux.Lock()
	defer m.mux.Unlock()

	delete(m.data, keyName)
}

// Keys returns a sorted list of all key names in the map.
func (m *MemStorage) Keys() []string {
	m.mux.RLock()
	defer m.mux.RUnlock()

	keys := make([]string, 0, len(m.data))
	for keyName := range m.data {
		keys = append(keys, keyName)
	}
	sort.Strings(keys)

	return keys
}

// ClearPrefix removes all keys with the given prefix.
func (m *MemStorage) ClearPrefix(prefix string) {
	m.mux.Lock()
	defer m.mux.Unlock()

	for keyName := range m.data {
		if strings.HasPrefix(keyName, prefix) {
			delete(m.data, keyName)
		}
	}
}

// Clear removes all keys in the map.
func (m *MemStorage) Clear() {
	m.mux.Lock()
	defer m.mux.Unlock()

	m.data = make(map[string][]byte)
}

// Length returns the number of keys in the map.
func (m *MemStorage) Length() int {
	m.mux.RLock()
	defer m.mux.RUnlock()

	return len(m.data)
}
