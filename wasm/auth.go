////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

package wasm

import (
	"encoding/json"
	"os"
	"syscall/js"

	"github.com/pkg/errors"

	"gitlab.com/classhub/learndk-wasm/creds"
	"gitlab.com/classhub/learndk-wasm/utils"
)

// IsOnlineJS reports the browser's connectivity signal. Advisory only.
//
// Returns:
//   - Online state (boolean).
func (c *LearnClient) IsOnlineJS(js.Value, []js.Value) any {
	return c.offline.IsOnline()
}

// AuthenticateOfflineJS authenticates against the cached identity from the
// last successful online login.
//
// Parameters:
//   - args[0] - Email address (string).
//   - args[1] - Password (string). Not verified offline; accepted for
//     interface compatibility with the online login form.
//
// Returns a promise:
//   - Resolves to {success: bool, user?: object, message?: string}.
//   - Rejected with an error on storage failure.
func (c *LearnClient) AuthenticateOfflineJS(_ js.Value, args []js.Value) any {
	email := args[0].String()
	password := args[1].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		result, err := c.offline.AuthenticateOffline(email, password)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}

		data, err := json.Marshal(result)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		obj, err := utils.JsonToJS(data)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolve(obj)
	}

	return utils.CreatePromise(promiseFn)
}

// ValidateOfflineDataJS checks whether enough data is cached for an
// offline session.
//
// Returns a promise:
//   - Resolves to {isValid: bool, issues: string[], canProceed: bool}.
//   - Rejected with an error on storage failure.
func (c *LearnClient) ValidateOfflineDataJS(js.Value, []js.Value) any {
	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		report, err := c.offline.ValidateOfflineData()
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}

		data, err := json.Marshal(report)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		obj, err := utils.JsonToJS(data)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolve(obj)
	}

	return utils.CreatePromise(promiseFn)
}

// SaveCredentialsJS stores the session credentials encrypted under the
// user's password.
//
// Parameters:
//   - args[0] - Password (string).
//   - args[1] - JSON of [creds.Credentials] (object).
//
// Returns a promise:
//   - Resolves to nothing on success (void).
//   - Rejected with an error if encryption or storage fails.
func (c *LearnClient) SaveCredentialsJS(_ js.Value, args []js.Value) any {
	password := args[0].String()
	var credentials creds.Credentials
	if err := json.Unmarshal(
		[]byte(utils.JsToJson(args[1])), &credentials); err != nil {
		utils.Throw(utils.TypeError, err)
		return nil
	}

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		if err := c.creds.Save(password, credentials); err != nil {
			reject(utils.JsTrace(err))
		} else {
			resolve()
		}
	}

	return utils.CreatePromise(promiseFn)
}

// LoadCredentialsJS decrypts and returns the stored session credentials.
//
// Parameters:
//   - args[0] - Password (string).
//
// Returns a promise:
//   - Resolves to the credentials (object), or null when none are stored
//     or the stored token has expired.
//   - Rejected with an error when decryption fails (wrong password).
func (c *LearnClient) LoadCredentialsJS(_ js.Value, args []js.Value) any {
	password := args[0].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		credentials, err := c.creds.Load(password)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) ||
				errors.Is(err, creds.ErrExpired) {
				resolve(js.Null())
				return
			}
			reject(utils.JsTrace(err))
			return
		}
		resolveEntity(resolve, reject, &credentials)
	}

	return utils.CreatePromise(promiseFn)
}
