////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package offline answers whether the session can function without the
// network and supports the degraded login path over cached identity.
package offline

import (
	"sync"

	jww "github.com/spf13/jwalterweatherman"
)

// Connectivity reports the platform's connectivity signal. It is advisory
// only; storage writes never block on it.
type Connectivity interface {
	IsOnline() bool
}

// Status is a settable Connectivity with change listeners. On the web it is
// fed by the navigator watcher; natively and in tests it is driven
// directly.
type Status struct {
	mux       sync.RWMutex
	online    bool
	listeners []func(online bool)
}

// NewStatus creates a Status with the given initial state.
func NewStatus(online bool) *Status {
	return &Status{online: online}
}

// IsOnline reports the current connectivity state.
func (s *Status) IsOnline() bool {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.online
}

// Set updates the connectivity state. Listeners are notified only on
// transitions.
func (s *Status) Set(online bool) {
	s.mux.Lock()
	if s.online == online {
		s.mux.Unlock()
		return
	}
	s.online = online
	listeners := make([]func(bool), len(s.listeners))
	copy(listeners, s.listeners)
	s.mux.Unlock()

	jww.INFO.Printf("Connectivity changed: online=%t", online)
	for _, listener := range listeners {
		listener(online)
	}
}

// OnChange registers a listener invoked on every connectivity transition.
func (s *Status) OnChange(listener func(online bool)) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.listeners = append(s.listeners, listener)
}
