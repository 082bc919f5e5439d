////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package logging routes jwalterweatherman log output to the browser
// console and to an in-memory log file that support tooling can download.
package logging

import (
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/armon/circbuf"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// logListeners tracks every registered log listener keyed on a unique ID so
// listeners can be added and removed without clobbering each other.
var logListeners = struct {
	sync.Mutex
	listeners map[uint64]jww.LogListener
	currentID uint64
}{listeners: make(map[uint64]jww.LogListener)}

// AddLogListener registers the log listener with jwalterweatherman. Returns
// a unique ID that can be used to remove the listener.
func AddLogListener(ll jww.LogListener) uint64 {
	logListeners.Lock()
	defer logListeners.Unlock()

	id := logListeners.currentID
	logListeners.currentID++
	logListeners.listeners[id] = ll
	setListeners()
	return id
}

// RemoveLogListener unregisters the log listener with the ID from
// jwalterweatherman.
func RemoveLogListener(id uint64) {
	logListeners.Lock()
	defer logListeners.Unlock()

	delete(logListeners.listeners, id)
	setListeners()
}

func setListeners() {
	listeners := make([]jww.LogListener, 0, len(logListeners.listeners))
	for _, ll := range logListeners.listeners {
		listeners = append(listeners, ll)
	}
	jww.SetLogListeners(listeners...)
}

// LogLevel sets the level of logging. All logs at the set level and below
// will be displayed (e.g., when log level is ERROR, only ERROR, CRITICAL,
// and FATAL messages will be printed).
//
// The default log level without updates is INFO.
func LogLevel(threshold jww.Threshold) error {
	if threshold < jww.LevelTrace || threshold > jww.LevelFatal {
		return errors.Errorf("log level is not valid: log level: %d", threshold)
	}

	jww.SetLogThreshold(threshold)
	jww.SetFlags(log.LstdFlags | log.Lmicroseconds)

	printAtLevel(threshold, fmt.Sprintf("Log level set to: %s", threshold))
	return nil
}

// printAtLevel prints the message through the log level matching the
// threshold it describes.
func printAtLevel(threshold jww.Threshold, msg string) {
	switch threshold {
	case jww.LevelTrace:
		fallthrough
	case jww.LevelDebug:
		fallthrough
	case jww.LevelInfo:
		jww.INFO.Print(msg)
	case jww.LevelWarn:
		jww.WARN.Print(msg)
	case jww.LevelError:
		jww.ERROR.Print(msg)
	case jww.LevelCritical:
		jww.CRITICAL.Print(msg)
	case jww.LevelFatal:
		jww.FATAL.Print(msg)
	}
}

// LogFile represents a virtual log file in memory. It contains a circular
// buffer that limits the log file, overwriting the oldest logs.
type LogFile struct {
	name       string
	threshold  jww.Threshold
	b          *circbuf.Buffer
	listenerID uint64
}

// LogToFile starts recording logs at the threshold to a new in-memory log
// file of the given max size. Returns the [LogFile] used to retrieve the
// recorded logs.
func LogToFile(threshold jww.Threshold, logFileName string,
	maxLogFileSize int) (*LogFile, error) {
	if threshold < jww.LevelTrace || threshold > jww.LevelFatal {
		return nil,
			errors.Errorf("log level is not valid: log level: %d", threshold)
	}

	b, err := circbuf.NewBuffer(int64(maxLogFileSize))
	if err != nil {
		return nil, errors.Wrap(err, "could not create new circular buffer")
	}

	lf := &LogFile{
		name:      logFileName,
		threshold: threshold,
		b:         b,
	}
	lf.listenerID = AddLogListener(lf.Listen)

	printAtLevel(threshold, fmt.Sprintf(
		"Outputting log to file %s of max size %d with level %s",
		lf.Name(), lf.MaxSize(), threshold))

	return lf, nil
}

// Listen is called for every logging event. This function adheres to the
// [jwalterweatherman.LogListener] type.
func (lf *LogFile) Listen(t jww.Threshold) io.Writer {
	if t < lf.threshold {
		return nil
	}

	return lf.b
}

// StopLogging stops recording to the file. Once logging is stopped, it
// cannot be resumed; the recorded contents remain retrievable.
func (lf *LogFile) StopLogging() {
	RemoveLogListener(lf.listenerID)
}

// Name returns the name of the log file.
func (lf *LogFile) Name() string { return lf.name }

// Threshold returns the log level threshold used in the file.
func (lf *LogFile) Threshold() jww.Threshold { return lf.threshold }

// GetFile returns the entire log file.
func (lf *LogFile) GetFile() []byte { return lf.b.Bytes() }

// MaxSize returns the max size, in bytes, that the log file is allowed to
// be.
func (lf *LogFile) MaxSize() int { return int(lf.b.Size()) }

// Size returns the number of bytes written to the log file so far.
func (lf *LogFile) Size() int { return int(lf.b.TotalWritten()) }
