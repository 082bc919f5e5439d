////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

package storage

import (
	"context"
	"time"

	"github.com/hack-pad/go-indexeddb/idb"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// Purge clears all local storage keys and deletes every IndexedDB database
// saved by this WASM binary. This is the "clear all offline data" path; it
// can only be called while no replay drain is running.
//
// Keys created by other scripts on the same page are not touched.
func Purge(databaseName string) error {
	kv := GetLocalStorage()

	databases, err := GetIndexedDbList(kv)
	if err != nil {
		return errors.Wrap(err, "failed to load IndexedDb database list")
	}
	databases[databaseName] = struct{}{}

	for name := range databases {
		if err = deleteDatabase(name); err != nil {
			return err
		}
	}

	// Clear all local storage saved by this WASM project
	kv.Clear()

	jww.INFO.Printf("Purged offline data (%d database(s))", len(databases))

	return nil
}

// deleteDatabase deletes one IndexedDB database and waits for the deletion
// to be acknowledged.
func deleteDatabase(databaseName string) error {
	req, err := idb.Global().DeleteDatabase(databaseName)
	if err != nil {
		return errors.Wrapf(err,
			"failed to delete IndexedDb database %q", databaseName)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err = req.Await(ctx); err != nil {
		return errors.Wrapf(err,
			"failed to await deletion of IndexedDb database %q", databaseName)
	}
	return nil
}
