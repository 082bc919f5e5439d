////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package syncqueue records mutations performed while offline and replays them
// against the remote API once connectivity returns.
package syncqueue

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gitlab.com/classhub/learndk-wasm/storage"
)

// queueKey is the well-known flat-store key holding the ordered action list.
const queueKey = "learndkSyncQueue"

// Action types dispatched by the replayer.
const (
	TypeEnroll         = "enroll"
	TypeQuizSubmission = "quiz_submission"
	TypeVideoProgress  = "video_progress"
	TypeProfileUpdate  = "profile_update"
)

// Item is a recorded intention to mutate remote state. It is removed from
// the queue only once confirmed applied.
type Item struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	UserID    string          `json:"userId"`
}

// Queue is the ordered record of offline-performed mutations, persisted as
// a single list in the flat store.
type Queue struct {
	kv storage.KeyValue
}

// NewQueue creates a Queue over the flat store.
func NewQueue(kv storage.KeyValue) *Queue {
	return &Queue{kv: kv}
}

// Enqueue appends an action to the queue and returns it with its assigned
// ID and timestamp. A storage write failure is returned to the caller;
// there is no secondary buffering.
func (q *Queue) Enqueue(
	actionType string, data json.RawMessage, userID string) (Item, error) {
	item := Item{
		ID:        uuid.NewString(),
		Type:      actionType,
		Data:      data,
		Timestamp: time.Now(),
		UserID:    userID,
	}

	items, err := q.List()
	if err != nil {
		return Item{}, err
	}

	if err = q.replace(append(items, item)); err != nil {
		return Item{}, err
	}
	return item, nil
}

// List returns the queued actions in enqueue order. An empty queue is not
// an error.
func (q *Queue) List() ([]Item, error) {
	data, err := q.kv.Get(queueKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load sync queue")
	}

	var items []Item
	if err = json.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal sync queue")
	}
	return items, nil
}

// Len returns the number of queued actions.
func (q *Queue) Len() (int, error) {
	items, err := q.List()
	return len(items), err
}

// Remove deletes the action with the given ID, if present.
func (q *Queue) Remove(id string) error {
	items, err := q.List()
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return q.replace(kept)
}

// Clear drops every queued action.
func (q *Queue) Clear() error {
	q.kv.Remove(queueKey)
	return nil
}

func (q *Queue) replace(items []Item) error {
	if len(items) == 0 {
		return q.Clear()
	}

	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "failed to marshal sync queue")
	}
	return errors.Wrap(q.kv.Set(queueKey, data),
		"failed to store sync queue")
}
