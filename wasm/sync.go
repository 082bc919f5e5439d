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
	"syscall/js"

	"github.com/pkg/errors"

	"gitlab.com/classhub/learndk-wasm/syncqueue"
	"gitlab.com/classhub/learndk-wasm/utils"
)

// jsRemoteAPI adapts a Javascript remote API object to the
// [syncqueue.RemoteAPI] interface. Each method calls the matching
// Javascript function with the action data and awaits its promise.
type jsRemoteAPI struct {
	enroll            func(args ...any) js.Value
	submitQuiz        func(args ...any) js.Value
	saveVideoProgress func(args ...any) js.Value
	updateProfile     func(args ...any) js.Value
}

// newJsRemoteAPI wraps the remote API object. Panics if any of the four
// required methods is missing.
func newJsRemoteAPI(api js.Value) *jsRemoteAPI {
	return &jsRemoteAPI{
		enroll:            utils.WrapCB(api, "enroll"),
		submitQuiz:        utils.WrapCB(api, "submitQuiz"),
		saveVideoProgress: utils.WrapCB(api, "saveVideoProgress"),
		updateProfile:     utils.WrapCB(api, "updateProfile"),
	}
}

func (a *jsRemoteAPI) Enroll(data json.RawMessage) error {
	return awaitSuccess(a.enroll, data)
}

func (a *jsRemoteAPI) SubmitQuiz(data json.RawMessage) error {
	return awaitSuccess(a.submitQuiz, data)
}

func (a *jsRemoteAPI) SaveVideoProgress(data json.RawMessage) error {
	return awaitSuccess(a.saveVideoProgress, data)
}

func (a *jsRemoteAPI) UpdateProfile(data json.RawMessage) error {
	return awaitSuccess(a.updateProfile, data)
}

// awaitSuccess calls the remote method with the action data, awaits the
// returned promise, and checks the {success: bool} response.
func awaitSuccess(
	call func(args ...any) js.Value, data json.RawMessage) error {
	obj, err := utils.JsonToJS(data)
	if err != nil {
		return errors.Wrap(err, "failed to convert action data")
	}

	result, awaitErr := utils.Await(call(obj))
	if awaitErr != nil {
		return errors.Errorf("remote call rejected: %s",
			utils.JsToJson(awaitErr[0]))
	}
	if len(result) == 0 || !result[0].Get("success").Truthy() {
		return errors.New("remote call reported failure")
	}
	return nil
}

// EnqueueActionJS records an offline mutation to replay once connectivity
// returns.
//
// Parameters:
//   - args[0] - Action type (string): one of "enroll", "quiz_submission",
//     "video_progress", or "profile_update".
//   - args[1] - Action data (object).
//   - args[2] - User ID (string).
//
// Returns a promise:
//   - Resolves to the queued action's ID (string).
//   - Rejected with an error if the storage write fails; the caller is
//     responsible for retrying.
func (c *LearnClient) EnqueueActionJS(_ js.Value, args []js.Value) any {
	actionType := args[0].String()
	data := json.RawMessage(utils.JsToJson(args[1]))
	userID := args[2].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		item, err := c.queue.Enqueue(actionType, data, userID)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolve(item.ID)
	}

	return utils.CreatePromise(promiseFn)
}

// SyncQueueLengthJS returns the number of actions awaiting replay.
//
// Returns a promise:
//   - Resolves to the queue length (int).
//   - Rejected with an error on storage failure.
func (c *LearnClient) SyncQueueLengthJS(js.Value, []js.Value) any {
	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		n, err := c.queue.Len()
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolve(n)
	}

	return utils.CreatePromise(promiseFn)
}

// DrainSyncQueueJS replays every queued action against the remote API
// immediately, outside the periodic schedule.
//
// Returns a promise:
//   - Resolves to {attempted, applied, failed, remaining} (ints). Resolves
//     to all zeros when offline or when a drain is already in flight.
//   - Rejected with an error on storage failure.
func (c *LearnClient) DrainSyncQueueJS(js.Value, []js.Value) any {
	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		report, err := c.replayer.Drain()
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolve(reportToJS(report))
	}

	return utils.CreatePromise(promiseFn)
}

// OnSyncCompleteJS registers a Javascript callback invoked after every
// completed drain pass.
//
// Parameters:
//   - args[0] - Callback receiving {attempted, applied, failed, remaining}
//     (function).
func (c *LearnClient) OnSyncCompleteJS(_ js.Value, args []js.Value) any {
	callback := args[0]
	c.replayer.OnSyncComplete(func(report syncqueue.Report) {
		callback.Invoke(reportToJS(report))
	})

	return nil
}

func reportToJS(report syncqueue.Report) map[string]any {
	return map[string]any{
		"attempted": report.Attempted,
		"applied":   report.Applied,
		"failed":    report.Failed,
		"remaining": report.Remaining,
	}
}
