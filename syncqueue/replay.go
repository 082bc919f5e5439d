////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package syncqueue

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aquilax/truncate"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/classhub/learndk-wasm/offline"
)

// RemoteAPI is the remote collaborator the replayer applies queued actions
// against. Each method corresponds to one action type and returns nil once
// the remote system has confirmed the mutation.
type RemoteAPI interface {
	Enroll(data json.RawMessage) error
	SubmitQuiz(data json.RawMessage) error
	SaveVideoProgress(data json.RawMessage) error
	UpdateProfile(data json.RawMessage) error
}

// Params configures the replayer.
type Params struct {
	// Interval between periodic drains while online.
	Interval time.Duration

	// ReconnectDelay debounces the drain triggered by an offline-to-online
	// transition, letting the network stabilize first.
	ReconnectDelay time.Duration

	// LegacyBatchCommit restores the historical commit policy: the queue is
	// cleared in full when at least one action in the batch succeeded, and
	// left untouched otherwise. The default policy removes each action
	// individually once it is confirmed applied, so failed actions keep
	// their retry opportunity.
	LegacyBatchCommit bool
}

// DefaultParams returns the default replayer configuration.
func DefaultParams() Params {
	return Params{
		Interval:       5 * time.Minute,
		ReconnectDelay: 2 * time.Second,
	}
}

// Report summarizes one drain pass.
type Report struct {
	Attempted int `json:"attempted"`
	Applied   int `json:"applied"`
	Failed    int `json:"failed"`
	Remaining int `json:"remaining"`
}

// Replayer drains the sync queue against the remote API on a periodic
// timer and on reconnect events. A single in-flight flag prevents
// overlapping drains within one client; cross-tab overlap is not guarded.
type Replayer struct {
	queue  *Queue
	api    RemoteAPI
	conn   offline.Connectivity
	params Params

	mux       sync.Mutex
	inFlight  bool
	listeners []func(Report)
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewReplayer creates a Replayer over the queue, remote API, and
// connectivity signal. It does not start draining; call Start.
func NewReplayer(queue *Queue, api RemoteAPI, conn offline.Connectivity,
	params Params) *Replayer {
	return &Replayer{
		queue:  queue,
		api:    api,
		conn:   conn,
		params: params,
		stop:   make(chan struct{}),
	}
}

// OnSyncComplete registers a listener invoked after every completed drain
// pass, including passes that applied nothing.
func (r *Replayer) OnSyncComplete(listener func(Report)) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.listeners = append(r.listeners, listener)
}

// Start launches the periodic drain loop and, when the connectivity signal
// supports change notification, arms the debounced reconnect drain.
func (r *Replayer) Start() {
	if status, ok := r.conn.(*offline.Status); ok {
		status.OnChange(func(online bool) {
			if !online {
				return
			}
			go func() {
				select {
				case <-time.After(r.params.ReconnectDelay):
				case <-r.stop:
					return
				}
				if _, err := r.Drain(); err != nil {
					jww.WARN.Printf(
						"Reconnect drain failed: %+v", err)
				}
			}()
		})
	}

	go func() {
		ticker := time.NewTicker(r.params.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := r.Drain(); err != nil {
					jww.WARN.Printf(
						"Periodic drain failed: %+v", err)
				}
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop tears down the periodic timer and any pending reconnect drain.
// Drains already in flight run to completion.
func (r *Replayer) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Drain applies every queued action against the remote API in enqueue
// order. It is a no-op while offline or while another drain is in flight.
// Handler failures never abort the pass; each failed action is reported
// and left queued per the commit policy.
func (r *Replayer) Drain() (Report, error) {
	if !r.conn.IsOnline() {
		return Report{}, nil
	}

	r.mux.Lock()
	if r.inFlight {
		r.mux.Unlock()
		jww.DEBUG.Print("Skipping drain; another drain is in flight.")
		return Report{}, nil
	}
	r.inFlight = true
	r.mux.Unlock()
	defer func() {
		r.mux.Lock()
		r.inFlight = false
		r.mux.Unlock()
	}()

	items, err := r.queue.List()
	if err != nil {
		return Report{}, err
	}
	if len(items) == 0 {
		r.notify(Report{})
		return Report{}, nil
	}

	jww.INFO.Printf("Draining %d queued action(s).", len(items))

	report := Report{Attempted: len(items)}
	for _, item := range items {
		if err = r.apply(item); err != nil {
			report.Failed++
			jww.WARN.Printf("Failed to apply queued %s action %s: %+v",
				item.Type, item.ID, err)
			continue
		}

		report.Applied++
		if !r.params.LegacyBatchCommit {
			if err = r.queue.Remove(item.ID); err != nil {
				jww.ERROR.Printf(
					"Failed to remove applied action %s: %+v", item.ID, err)
			}
		}
	}

	if r.params.LegacyBatchCommit && report.Applied > 0 {
		if err = r.queue.Clear(); err != nil {
			jww.ERROR.Printf("Failed to clear sync queue: %+v", err)
		}
	}

	if report.Remaining, err = r.queue.Len(); err != nil {
		jww.WARN.Printf("Failed to count remaining actions: %+v", err)
	}

	jww.INFO.Printf("Drain complete: %d applied, %d failed, %d remaining.",
		report.Applied, report.Failed, report.Remaining)

	r.notify(report)
	return report, nil
}

// apply dispatches one action to its handler. Handler panics are converted
// to errors so a misbehaving handler cannot abort the drain.
func (r *Replayer) apply(item Item) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("handler panicked: %+v", rec)
		}
	}()

	jww.DEBUG.Printf("Applying %s action %s with data %s", item.Type,
		item.ID, truncate.Truncate(
			fmt.Sprintf("%q", item.Data), 64, "...", truncate.PositionMiddle))

	switch item.Type {
	case TypeEnroll:
		return r.api.Enroll(item.Data)
	case TypeQuizSubmission:
		return r.api.SubmitQuiz(item.Data)
	case TypeVideoProgress:
		return r.api.SaveVideoProgress(item.Data)
	case TypeProfileUpdate:
		return r.api.UpdateProfile(item.Data)
	default:
		return errors.Errorf("unknown action type %q", item.Type)
	}
}

// notify invokes the sync-complete listeners. A panicking listener is
// logged and skipped.
func (r *Replayer) notify(report Report) {
	r.mux.Lock()
	listeners := make([]func(Report), len(r.listeners))
	copy(listeners, r.listeners)
	r.mux.Unlock()

	for _, listener := range listeners {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					jww.ERROR.Printf(
						"Sync listener panicked: %+v", rec)
				}
			}()
			listener(report)
		}()
	}
}
