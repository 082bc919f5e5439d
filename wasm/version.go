////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

package wasm

import (
	"syscall/js"

	"gitlab.com/classhub/learndk-wasm/storage"
)

// GetVersionJS returns the current semantic version of the client storage
// layout.
//
// Returns:
//   - Semantic version (string).
func GetVersionJS(js.Value, []js.Value) any {
	return storage.SEMVER
}

// GetOldVersionJS returns the storage layout version found on disk before
// the version marker was updated at startup.
//
// Returns:
//   - Previous semantic version (string). Matches the current version when
//     no migration occurred.
func GetOldVersionJS(js.Value, []js.Value) any {
	return storage.GetOldVersion()
}
