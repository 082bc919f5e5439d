////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

package storage

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"
	"syscall/js"

	jww "github.com/spf13/jwalterweatherman"
)

// localStorageWasmPrefix is prefixed to every keyName saved to local storage
// by LocalStorage. It allows the identification and deletion of keys only
// created by this WASM binary while ignoring keys made by other scripts on
// the same page.
const localStorageWasmPrefix = "learndkStorage/"

// LocalStorage contains the js.Value representation of localStorage. It
// implements [KeyValue].
type LocalStorage struct {
	// The Javascript value containing the localStorage object
	v js.Value

	// The prefix appended to each key name. This is so that all keys created
	// by this structure can be deleted without affecting other keys in local
	// storage.
	prefix string
}

// jsStorage is the global that stores Javascript as window.localStorage.
//
//   - Specification:
//     https://html.spec.whatwg.org/multipage/webstorage.html#dom-localstorage-dev
//   - Documentation:
//     https://developer.mozilla.org/en-US/docs/Web/API/Window/localStorage
var jsStorage = newLocalStorage(localStorageWasmPrefix)

// newLocalStorage creates a new LocalStorage object with the specified
// prefix.
func newLocalStorage(prefix string) *LocalStorage {
	return &LocalStorage{
		v:      js.Global().Get("localStorage"),
		prefix: prefix,
	}
}

// GetLocalStorage returns Javascript's local storage.
func GetLocalStorage() *LocalStorage {
	return jsStorage
}

// Get returns a key's value from local storage given its name. Returns
// os.ErrNotExist if the key does not exist. Underneath, it calls
// localStorage.getItem().
func (ls *LocalStorage) Get(keyName string) ([]byte, error) {
	keyValue := ls.getItem(ls.prefix + keyName)
	if keyValue.IsNull() {
		return nil, os.ErrNotExist
	}

	decodedKeyValue, err := base64.StdEncoding.DecodeString(keyValue.String())
	if err != nil {
		return nil, err
	}

	return decodedKeyValue, nil
}

// Set adds a key's value to local storage given its name. Returns
// ErrQuotaExceeded when localStorage rejects the write because storage is
// full. Underneath, it calls localStorage.setItem().
func (ls *LocalStorage) Set(keyName string, keyValue []byte) (err error) {
	// localStorage.setItem throws a QuotaExceededError when storage is full,
	// which surfaces in Go as a panic from js.Value.Call.
	defer func() {
		if r := recover(); r != nil {
			jww.WARN.Printf("localStorage: failed to set %q: %v", keyName, r)
			err = ErrQuotaExceeded
		}
	}()

	encodedKeyValue := base64.StdEncoding.EncodeToString(keyValue)
	ls.setItem(ls.prefix+keyName, encodedKeyValue)
	return nil
}

// Remove removes a key's value from local storage given its name. If there
// is no item with the given key, this function does nothing. Underneath, it
// calls localStorage.removeItem().
func (ls *LocalStorage) Remove(keyName string) {
	ls.removeItem(ls.prefix + keyName)
}

// Keys returns a list of all key names saved by this binary, with the
// storage prefix stripped.
func (ls *LocalStorage) Keys() []string {
	keyNamesJson := jsJSON.Call("stringify", ls.keys())

	var allKeyNames []string
	err := json.Unmarshal([]byte(keyNamesJson.String()), &allKeyNames)
	if err != nil {
		jww.FATAL.Panicf(
			"Failed to JSON unmarshal localStorage key name list: %+v", err)
	}

	keyNames := make([]string, 0, len(allKeyNames))
	for _, keyName := range allKeyNames {
		if strings.HasPrefix(keyName, ls.prefix) {
			keyNames = append(keyNames, strings.TrimPrefix(keyName, ls.prefix))
		}
	}

	return keyNames
}

// ClearPrefix clears all keys with the given prefix.
func (ls *LocalStorage) ClearPrefix(prefix string) {
	// Get a copy of all key names at once
	keys := ls.keys()

	// Loop through each key
	for i := 0; i < keys.Length(); i++ {
		if v := keys.Index(i); !v.IsNull() {
			keyName := strings.TrimPrefix(v.String(), ls.prefix)
			if strings.HasPrefix(keyName, prefix) {
				ls.removeItem(v.String())
			}
		}
	}
}

// Clear clears all the keys in storage created by this binary. Keys made by
// other scripts on the same page are left alone.
func (ls *LocalStorage) Clear() {
	// Get a copy of all key names at once
	keys := ls.keys()

	// Loop through each key
	for i := 0; i < keys.Length(); i++ {
		if v := keys.Index(i); !v.IsNull() {
			keyName := v.String()
			if strings.HasPrefix(keyName, ls.prefix) {
				ls.removeItem(keyName)
			}
		}
	}
}

// Key returns the name of the nth key in localStorage. Returns
// os.ErrNotExist if the key does not exist. The order of keys is not
// defined. Underneath, it calls localStorage.key().
func (ls *LocalStorage) Key(n int) (string, error) {
	keyName := ls.key(n)
	if keyName.IsNull() {
		return "", os.ErrNotExist
	}

	return strings.TrimPrefix(keyName.String(), ls.prefix), nil
}

// Length returns the number of keys in localStorage. Underneath, it accesses
// the property localStorage.length.
func (ls *LocalStorage) Length() int {
	return ls.length().Int()
}

// jsJSON is the Javascript JSON type used to perform JSON operations on the
// Javascript layer.
var jsJSON = js.Global().Get("JSON")

// jsObject is the Javascript Object type used to list storage keys.
var jsObject = js.Global().Get("Object")

// Wrappers for Javascript Storage methods and properties.
func (ls *LocalStorage) getItem(keyName string) js.Value  { return ls.v.Call("getItem", keyName) }
func (ls *LocalStorage) setItem(keyName, keyValue string) { ls.v.Call("setItem", keyName, keyValue) }
func (ls *LocalStorage) removeItem(keyName string)        { ls.v.Call("removeItem", keyName) }
func (ls *LocalStorage) key(n int) js.Value               { return ls.v.Call("key", n) }
func (ls *LocalStorage) length() js.Value                 { return ls.v.Get("length") }
func (ls *LocalStorage) keys() js.Value                   { return jsObject.Call("keys", ls.v) }
