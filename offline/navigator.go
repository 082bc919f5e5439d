////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

package offline

import (
	"github.com/hack-pad/safejs"
	"github.com/pkg/errors"
)

// WatchNavigator seeds the Status from navigator.onLine and keeps it
// current by listening for the window "online" and "offline" events.
//
//   - Documentation:
//     https://developer.mozilla.org/en-US/docs/Web/API/Navigator/onLine
func WatchNavigator(status *Status) error {
	navigator, err := safejs.Global().Get("navigator")
	if err != nil {
		return errors.Wrap(err, "failed to get navigator")
	}
	onLine, err := navigator.Get("onLine")
	if err != nil {
		return errors.Wrap(err, "failed to get navigator.onLine")
	}
	if online, err := onLine.Bool(); err == nil {
		status.Set(online)
	}

	window, err := safejs.Global().Get("window")
	if err != nil {
		return errors.Wrap(err, "failed to get window")
	}

	onlineFn, err := safejs.FuncOf(
		func(_ safejs.Value, _ []safejs.Value) any {
			status.Set(true)
			return nil
		})
	if err != nil {
		return errors.Wrap(err, "failed to create online listener")
	}
	offlineFn, err := safejs.FuncOf(
		func(_ safejs.Value, _ []safejs.Value) any {
			status.Set(false)
			return nil
		})
	if err != nil {
		return errors.Wrap(err, "failed to create offline listener")
	}

	if _, err = window.Call("addEventListener", "online", onlineFn); err != nil {
		return errors.Wrap(err, "failed to add online listener")
	}
	if _, err = window.Call("addEventListener", "offline", offlineFn); err != nil {
		return errors.Wrap(err, "failed to add offline listener")
	}

	return nil
}
