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

	"gitlab.com/classhub/learndk-wasm/cache"
	"gitlab.com/classhub/learndk-wasm/utils"
)

// CacheUserJS stores the signed-in user for offline use.
//
// Parameters:
//   - args[0] - JSON of [cache.User] (object).
//
// Returns a promise:
//   - Resolves to nothing on success (void).
//   - Rejected with an error if caching fails.
func (c *LearnClient) CacheUserJS(_ js.Value, args []js.Value) any {
	var user cache.User
	if err := json.Unmarshal(
		[]byte(utils.JsToJson(args[0])), &user); err != nil {
		utils.Throw(utils.TypeError, err)
		return nil
	}

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		if err := c.cache.CacheUser(user); err != nil {
			reject(utils.JsTrace(err))
		} else {
			resolve()
		}
	}

	return utils.CreatePromise(promiseFn)
}

// GetCachedUserJS looks up a cached user by ID.
//
// Parameters:
//   - args[0] - User ID (string).
//
// Returns a promise:
//   - Resolves to the user (object) or null when not cached.
//   - Rejected with an error on storage failure.
func (c *LearnClient) GetCachedUserJS(_ js.Value, args []js.Value) any {
	userID := args[0].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		user, err := c.cache.GetCachedUser(userID)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolveEntity(resolve, reject, user)
	}

	return utils.CreatePromise(promiseFn)
}

// RemoveCachedUserJS deletes a cached user.
//
// Parameters:
//   - args[0] - User ID (string).
//
// Returns a promise:
//   - Resolves to nothing on success (void).
//   - Rejected with an error on storage failure.
func (c *LearnClient) RemoveCachedUserJS(_ js.Value, args []js.Value) any {
	userID := args[0].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		if err := c.cache.RemoveCachedUser(userID); err != nil {
			reject(utils.JsTrace(err))
		} else {
			resolve()
		}
	}

	return utils.CreatePromise(promiseFn)
}

// CacheCourseJS stores a course for offline use, filling in the default
// title, category, and level when absent.
//
// Parameters:
//   - args[0] - JSON of [cache.Course] (object).
//
// Returns a promise:
//   - Resolves to nothing on success (void).
//   - Rejected with an error if caching fails.
func (c *LearnClient) CacheCourseJS(_ js.Value, args []js.Value) any {
	var course cache.Course
	if err := json.Unmarshal(
		[]byte(utils.JsToJson(args[0])), &course); err != nil {
		utils.Throw(utils.TypeError, err)
		return nil
	}

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		if err := c.cache.CacheCourse(course); err != nil {
			reject(utils.JsTrace(err))
		} else {
			resolve()
		}
	}

	return utils.CreatePromise(promiseFn)
}

// GetCachedCourseJS looks up a cached course by ID.
//
// Parameters:
//   - args[0] - Course ID (string).
//
// Returns a promise:
//   - Resolves to the course (object) or null when not cached.
//   - Rejected with an error on storage failure.
func (c *LearnClient) GetCachedCourseJS(_ js.Value, args []js.Value) any {
	courseID := args[0].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		course, err := c.cache.GetCachedCourse(courseID)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolveEntity(resolve, reject, course)
	}

	return utils.CreatePromise(promiseFn)
}

// GetAllCachedCoursesJS returns every cached course.
//
// Returns a promise:
//   - Resolves to an array of courses (possibly empty).
//   - Rejected with an error on storage failure.
func (c *LearnClient) GetAllCachedCoursesJS(js.Value, []js.Value) any {
	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		courses, err := c.cache.GetAllCachedCourses()
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolveList(resolve, reject, courses)
	}

	return utils.CreatePromise(promiseFn)
}

// CacheModuleJS stores a course module for offline use.
//
// Parameters:
//   - args[0] - JSON of [cache.Module] (object).
//
// Returns a promise:
//   - Resolves to nothing on success (void).
//   - Rejected with an error if caching fails.
func (c *LearnClient) CacheModuleJS(_ js.Value, args []js.Value) any {
	var module cache.Module
	if err := json.Unmarshal(
		[]byte(utils.JsToJson(args[0])), &module); err != nil {
		utils.Throw(utils.TypeError, err)
		return nil
	}

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		if err := c.cache.CacheModule(module); err != nil {
			reject(utils.JsTrace(err))
		} else {
			resolve()
		}
	}

	return utils.CreatePromise(promiseFn)
}

// GetCachedModuleJS looks up a cached module by ID.
//
// Parameters:
//   - args[0] - Module ID (string).
//
// Returns a promise:
//   - Resolves to the module (object) or null when not cached.
//   - Rejected with an error on storage failure.
func (c *LearnClient) GetCachedModuleJS(_ js.Value, args []js.Value) any {
	moduleID := args[0].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		module, err := c.cache.GetCachedModule(moduleID)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolveEntity(resolve, reject, module)
	}

	return utils.CreatePromise(promiseFn)
}

// GetCachedCourseModulesJS returns every cached module belonging to the
// course.
//
// Parameters:
//   - args[0] - Course ID (string).
//
// Returns a promise:
//   - Resolves to an array of modules (possibly empty).
//   - Rejected with an error on storage failure.
func (c *LearnClient) GetCachedCourseModulesJS(
	_ js.Value, args []js.Value) any {
	courseID := args[0].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		modules, err := c.cache.GetCachedCourseModules(courseID)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolveList(resolve, reject, modules)
	}

	return utils.CreatePromise(promiseFn)
}

// CacheAttachmentJS stores a lesson attachment for offline use.
//
// Parameters:
//   - args[0] - JSON of [cache.Attachment] metadata (object).
//   - args[1] - Attachment contents (Uint8Array).
//
// Returns a promise:
//   - Resolves to nothing on success (void).
//   - Rejected with an error if caching fails.
func (c *LearnClient) CacheAttachmentJS(_ js.Value, args []js.Value) any {
	var attachment cache.Attachment
	if err := json.Unmarshal(
		[]byte(utils.JsToJson(args[0])), &attachment); err != nil {
		utils.Throw(utils.TypeError, err)
		return nil
	}
	attachment.Data = utils.CopyBytesToGo(args[1])

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		if err := c.cache.CacheAttachment(attachment); err != nil {
			reject(utils.JsTrace(err))
		} else {
			resolve()
		}
	}

	return utils.CreatePromise(promiseFn)
}

// GetCachedAttachmentJS looks up a cached attachment by ID.
//
// Parameters:
//   - args[0] - Attachment ID (string).
//
// Returns a promise:
//   - Resolves to {attachment: object, data: Uint8Array} or null when not
//     cached.
//   - Rejected with an error on storage failure.
func (c *LearnClient) GetCachedAttachmentJS(_ js.Value, args []js.Value) any {
	attachmentID := args[0].String()

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		attachment, err := c.cache.GetCachedAttachment(attachmentID)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		if attachment == nil {
			resolve(js.Null())
			return
		}

		data := attachment.Data
		attachment.Data = nil
		metadata, err := json.Marshal(attachment)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		metadataJS, err := utils.JsonToJS(metadata)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolve(map[string]any{
			"attachment": metadataJS,
			"data":       utils.CopyBytesToJS(data),
		})
	}

	return utils.CreatePromise(promiseFn)
}

// resolveEntity resolves a single entity pointer, mapping nil to null.
func resolveEntity[T any](
	resolve, reject func(args ...any) js.Value, entity *T) {
	if entity == nil {
		resolve(js.Null())
		return
	}

	data, err := json.Marshal(entity)
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

// resolveList resolves a slice of entities as a Javascript array.
func resolveList[T any](
	resolve, reject func(args ...any) js.Value, list []T) {
	out := make([]any, 0, len(list))
	for i := range list {
		data, err := json.Marshal(list[i])
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		obj, err := utils.JsonToJS(data)
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		out = append(out, obj)
	}
	resolve(js.ValueOf(out))
}
