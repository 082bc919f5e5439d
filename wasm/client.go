////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

// Package wasm exposes the offline learning client to Javascript. Each
// binding follows the same contract: scalar results return directly,
// blocking storage operations return promises, and failures throw or
// reject with a Javascript Error.
package wasm

import (
	"syscall/js"

	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/classhub/learndk-wasm/cache"
	"gitlab.com/classhub/learndk-wasm/creds"
	"gitlab.com/classhub/learndk-wasm/docstore"
	"gitlab.com/classhub/learndk-wasm/offline"
	"gitlab.com/classhub/learndk-wasm/progress"
	"gitlab.com/classhub/learndk-wasm/storage"
	"gitlab.com/classhub/learndk-wasm/syncqueue"
	"gitlab.com/classhub/learndk-wasm/utils"
)

// LearnClient bundles the offline storage stack: the document store (with
// its in-memory fallback), the entity cache, the progress ledger, offline
// auth, the credential store, and the sync queue with its replayer.
type LearnClient struct {
	docs     *docstore.DocumentStore
	cache    *cache.Manager
	ledger   *progress.Ledger
	offline  *offline.Manager
	status   *offline.Status
	creds    *creds.Store
	queue    *syncqueue.Queue
	replayer *syncqueue.Replayer
}

// NewLearnClient constructs the offline learning client and starts its
// background sync loop.
//
// Parameters:
//   - args[0] - A remote API object with the methods enroll, submitQuiz,
//     saveVideoProgress, and updateProfile, each taking the action data
//     (object) and returning a promise that resolves to {success: bool}.
//
// Returns a promise:
//   - Resolves to a Javascript representation of the [LearnClient] object.
//   - Rejected with an error if initializing storage fails.
func NewLearnClient(_ js.Value, args []js.Value) any {
	remote := newJsRemoteAPI(args[0])

	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		kv := storage.GetLocalStorage()
		if err := storage.CheckAndStoreVersion(kv); err != nil {
			reject(utils.JsTrace(err))
			return
		}

		docs := docstore.Open(
			docstore.OpenIndexedDb, docstore.DefaultParams())
		if docs.IsFallback() {
			jww.WARN.Print("Document store running on the in-memory " +
				"fallback engine; cached data will not survive reload.")
		}

		status := offline.NewStatus(true)
		if err := offline.WatchNavigator(status); err != nil {
			reject(utils.JsTrace(err))
			return
		}

		c := cache.NewManager(docs, kv)
		queue := syncqueue.NewQueue(kv)
		replayer := syncqueue.NewReplayer(
			queue, remote, status, syncqueue.DefaultParams())
		replayer.Start()

		client := &LearnClient{
			docs:     docs,
			cache:    c,
			ledger:   progress.NewLedger(docs, kv),
			offline:  offline.NewManager(status, kv, c),
			status:   status,
			creds:    creds.NewStore(kv),
			queue:    queue,
			replayer: replayer,
		}

		resolve(newLearnClientJS(client))
	}

	return utils.CreatePromise(promiseFn)
}

// newLearnClientJS creates a new Javascript compatible object
// (map[string]any) that matches the [LearnClient] structure.
func newLearnClientJS(c *LearnClient) map[string]any {
	return map[string]any{
		// entities.go
		"CacheUser":              js.FuncOf(c.CacheUserJS),
		"GetCachedUser":          js.FuncOf(c.GetCachedUserJS),
		"RemoveCachedUser":       js.FuncOf(c.RemoveCachedUserJS),
		"CacheCourse":            js.FuncOf(c.CacheCourseJS),
		"GetCachedCourse":        js.FuncOf(c.GetCachedCourseJS),
		"GetAllCachedCourses":    js.FuncOf(c.GetAllCachedCoursesJS),
		"CacheModule":            js.FuncOf(c.CacheModuleJS),
		"GetCachedModule":        js.FuncOf(c.GetCachedModuleJS),
		"GetCachedCourseModules": js.FuncOf(c.GetCachedCourseModulesJS),
		"CacheAttachment":        js.FuncOf(c.CacheAttachmentJS),
		"GetCachedAttachment":    js.FuncOf(c.GetCachedAttachmentJS),

		// progress.go
		"SaveProgress":      js.FuncOf(c.SaveProgressJS),
		"GetLessonProgress": js.FuncOf(c.GetLessonProgressJS),
		"GetCourseProgress": js.FuncOf(c.GetCourseProgressJS),
		"ClearAllProgress":  js.FuncOf(c.ClearAllProgressJS),

		// auth.go
		"IsOnline":            js.FuncOf(c.IsOnlineJS),
		"AuthenticateOffline": js.FuncOf(c.AuthenticateOfflineJS),
		"ValidateOfflineData": js.FuncOf(c.ValidateOfflineDataJS),
		"SaveCredentials":     js.FuncOf(c.SaveCredentialsJS),
		"LoadCredentials":     js.FuncOf(c.LoadCredentialsJS),

		// sync.go
		"EnqueueAction":   js.FuncOf(c.EnqueueActionJS),
		"SyncQueueLength": js.FuncOf(c.SyncQueueLengthJS),
		"DrainSyncQueue":  js.FuncOf(c.DrainSyncQueueJS),
		"OnSyncComplete":  js.FuncOf(c.OnSyncCompleteJS),

		// client.go
		"IsFallback": js.FuncOf(c.IsFallbackJS),
		"StoreInfo":  js.FuncOf(c.StoreInfoJS),
		"Logout":     js.FuncOf(c.LogoutJS),
	}
}

// IsFallbackJS reports whether the document store is running on the
// in-memory fallback engine.
//
// Returns:
//   - Fallback state (boolean).
func (c *LearnClient) IsFallbackJS(js.Value, []js.Value) any {
	return c.docs.IsFallback()
}

// StoreInfoJS returns diagnostic information about the document store.
//
// Returns a promise:
//   - Resolves to {documentCount: int, fallback: bool}.
//   - Rejected with an error if the store cannot be reached.
func (c *LearnClient) StoreInfoJS(js.Value, []js.Value) any {
	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		info, err := c.docs.Info()
		if err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolve(map[string]any{
			"documentCount": info.DocumentCount,
			"fallback":      info.Fallback,
		})
	}

	return utils.CreatePromise(promiseFn)
}

// LogoutJS stops the sync loop and removes all locally cached data: the
// document database, the flat store, and the encrypted credentials.
//
// Returns a promise:
//   - Resolves to nothing on success (void).
//   - Rejected with an error if purging fails.
func (c *LearnClient) LogoutJS(js.Value, []js.Value) any {
	promiseFn := func(resolve, reject func(args ...any) js.Value) {
		c.replayer.Stop()
		if err := c.creds.Clear(); err != nil {
			reject(utils.JsTrace(err))
			return
		}
		if err := storage.Purge(docstore.DatabaseName); err != nil {
			reject(utils.JsTrace(err))
			return
		}
		resolve()
	}

	return utils.CreatePromise(promiseFn)
}
