////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

package wasm

import (
	"syscall/js"

	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/classhub/learndk-wasm/logging"
	"gitlab.com/classhub/learndk-wasm/utils"
)

// LogLevelJS sets the level of logging. All logs at the set level and
// below will be displayed (e.g., when log level is ERROR, only ERROR,
// CRITICAL, and FATAL messages will be printed).
//
// Log level options:
//
//	TRACE    - 0
//	DEBUG    - 1
//	INFO     - 2
//	WARN     - 3
//	ERROR    - 4
//	CRITICAL - 5
//	FATAL    - 6
//
// The default log level without updates is INFO.
//
// Parameters:
//   - args[0] - Log level (int).
//
// Returns:
//   - Throws TypeError if the log level is invalid.
func LogLevelJS(_ js.Value, args []js.Value) any {
	threshold := jww.Threshold(args[0].Int())
	if err := logging.LogLevel(threshold); err != nil {
		utils.Throw(utils.TypeError, err)
		return nil
	}

	logging.EnableConsoleLogging(threshold)
	return nil
}

// LogToFileJS starts recording logs at the threshold to an in-memory log
// file that can be retrieved for support requests.
//
// Parameters:
//   - args[0] - Log level (int).
//   - args[1] - Log file name, used in logs only (string).
//   - args[2] - Max log file size, in bytes (int).
//
// Returns:
//   - A Javascript object exposing Name, Threshold, GetFile, MaxSize,
//     Size, and StopLogging.
//   - Throws TypeError if starting the log file fails.
func LogToFileJS(_ js.Value, args []js.Value) any {
	threshold := jww.Threshold(args[0].Int())
	logFileName := args[1].String()
	maxLogFileSize := args[2].Int()

	lf, err := logging.LogToFile(threshold, logFileName, maxLogFileSize)
	if err != nil {
		utils.Throw(utils.TypeError, err)
		return nil
	}

	return newLogFileJS(lf)
}

// newLogFileJS creates a new Javascript compatible object (map[string]any)
// that matches the [logging.LogFile] structure.
func newLogFileJS(lf *logging.LogFile) map[string]any {
	return map[string]any{
		"Name": js.FuncOf(func(js.Value, []js.Value) any {
			return lf.Name()
		}),
		"Threshold": js.FuncOf(func(js.Value, []js.Value) any {
			return lf.Threshold().String()
		}),
		"GetFile": js.FuncOf(func(js.Value, []js.Value) any {
			return string(lf.GetFile())
		}),
		"MaxSize": js.FuncOf(func(js.Value, []js.Value) any {
			return lf.MaxSize()
		}),
		"Size": js.FuncOf(func(js.Value, []js.Value) any {
			return lf.Size()
		}),
		"StopLogging": js.FuncOf(func(js.Value, []js.Value) any {
			lf.StopLogging()
			return nil
		}),
	}
}
