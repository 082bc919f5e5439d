////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// indexedDbListKey stores the set of IndexedDB databases this client has
// created, so Purge can delete them all without hardcoding names.
const indexedDbListKey = "learndkIndexedDbList"

// GetIndexedDbList returns the list of IndexedDB databases recorded in the
// flat store.
func GetIndexedDbList(kv KeyValue) (map[string]struct{}, error) {
	list := make(map[string]struct{})
	listBytes, err := kv.Get(indexedDbListKey)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	} else if err == nil {
		err = json.Unmarshal(listBytes, &list)
		if err != nil {
			return nil, err
		}
	}

	return list, nil
}

// StoreIndexedDb records the IndexedDB database name in the flat store.
func StoreIndexedDb(kv KeyValue, databaseName string) error {
	list, err := GetIndexedDbList(kv)
	if err != nil {
		return err
	}

	list[databaseName] = struct{}{}

	listBytes, err := json.Marshal(list)
	if err != nil {
		return err
	}

	err = kv.Set(indexedDbListKey, listBytes)
	if err != nil {
		return errors.Wrapf(err,
			"localStorage: failed to set %q", indexedDbListKey)
	}

	return nil
}
