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

	"gitlab.com/classhub/learndk-wasm/progress"
	"gitlab.com/classhub/learndk-wasm/utils"
)

// SaveProgressJS records progress for one lesson (or the course-overall
// slot when lessonId is empty).
//
// Parameters:
//   - args[0] - JSON of [progress.Entry] (object).
//
// Returns a promise:
//   - Resolves to nothing on success (void).
//   - Rejected with an error if both the document store and the flat
//     mirror fail.
func (c *LearnClient) SaveProgressJS(_ js.Value, args []js.Value) any {
	var entry progress.Entry
	if err := json.Unmarshal(
		[]byte(utils.JsToJson(args[0])), &entry); err != nil {
		utils.Throw(utils.TypeError, err)
		return nil
	}

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		if err := c.ledger.SaveProgress(entry); err != nil {
			reject(utils.JsTrace(err))
		} else {
			resolve()
		}
	}

	return utils.CreatePromise(promiseFn)
}

// GetLessonProgressJS looks up progress for one lesson.
//
// Parameters:
//   - args[0] - User ID (string).
//   - args[1] - Course ID (string).
//   - args[2] - Lesson ID (string).
//
// Returns a promise:
//   - Resolves to the entry (object) or null when no progress exists.
//   - Rejected with an error on storage failure.
func (c *LearnClient) GetLessonProgressJS(_ js.Value, args []js.Value) any {
	userID := args[0].String()
	courseID := args[1].String()
	lessonID := args[2].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		entry, err := c.ledger.GetLessonProgress(userID, courseID, lessonID)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolveEntity(resolve, reject, entry)
	}

	return utils.CreatePromise(promiseFn)
}

// GetCourseProgressJS derives the aggregate progress for one course from
// its per-lesson entries.
//
// Parameters:
//   - args[0] - User ID (string).
//   - args[1] - Course ID (string).
//
// Returns a promise:
//   - Resolves to the aggregate (object) or null when no progress exists.
//   - Rejected with an error on storage failure.
func (c *LearnClient) GetCourseProgressJS(_ js.Value, args []js.Value) any {
	userID := args[0].String()
	courseID := args[1].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		aggregate, err := c.ledger.GetCourseProgress(userID, courseID)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolveEntity(resolve, reject, aggregate)
	}

	return utils.CreatePromise(promiseFn)
}

// ClearAllProgressJS removes every progress entry for the user from both
// the document store and the flat mirror.
//
// Parameters:
//   - args[0] - User ID (string).
//
// Returns a promise:
//   - Resolves to nothing on success (void).
//   - Rejected with an error if any deletion failed.
func (c *LearnClient) ClearAllProgressJS(_ js.Value, args []js.Value) any {
	userID := args[0].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		if err := c.ledger.ClearAllProgress(userID); err != nil {
			reject(utils.JsTrace(err))
		} else {
			resolve()
		}
	}

	return utils.CreatePromise(promiseFn)
}
