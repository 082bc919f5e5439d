////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package logging

import (
	"bytes"
	"testing"

	jww "github.com/spf13/jwalterweatherman"
)

// Tests that logs at or above the threshold land in the log file and logs
// below it do not.
func TestLogToFile(t *testing.T) {
	lf, err := LogToFile(jww.LevelWarn, "test.log", 1024)
	if err != nil {
		t.Fatalf("Failed to start file logging: %+v", err)
	}
	defer lf.StopLogging()

	jww.INFO.Print("below threshold entry")
	jww.ERROR.Print("above threshold entry")

	file := lf.GetFile()
	if !bytes.Contains(file, []byte("above threshold entry")) {
		t.Errorf("Log file missing entry above threshold: %q", file)
	}
	if bytes.Contains(file, []byte("below threshold entry")) {
		t.Errorf("Log file contains entry below threshold: %q", file)
	}
}

// Tests that the log file never exceeds its max size.
func TestLogFile_MaxSize(t *testing.T) {
	const maxSize = 256
	lf, err := LogToFile(jww.LevelError, "test.log", maxSize)
	if err != nil {
		t.Fatalf("Failed to start file logging: %+v", err)
	}
	defer lf.StopLogging()

	for i := 0; i < 64; i++ {
		jww.ERROR.Print("a log entry long enough to overflow the buffer")
	}

	if len(lf.GetFile()) > maxSize {
		t.Errorf("Log file exceeded max size.\nexpected: <= %d\nreceived: %d",
			maxSize, len(lf.GetFile()))
	}
	if lf.Size() <= maxSize {
		t.Errorf("Total written should exceed the buffer size; got %d.",
			lf.Size())
	}
}

// Tests that an invalid threshold is rejected.
func TestLogToFile_InvalidThreshold(t *testing.T) {
	if _, err := LogToFile(jww.LevelFatal+1, "test.log", 1024); err == nil {
		t.Error("Invalid threshold did not error.")
	}
}

// Tests that StopLogging detaches the listener.
func TestLogFile_StopLogging(t *testing.T) {
	lf, err := LogToFile(jww.LevelError, "test.log", 1024)
	if err != nil {
		t.Fatalf("Failed to start file logging: %+v", err)
	}

	lf.StopLogging()
	jww.ERROR.Print("entry after stop")

	if bytes.Contains(lf.GetFile(), []byte("entry after stop")) {
		t.Error("Log file recorded an entry after StopLogging.")
	}
}
