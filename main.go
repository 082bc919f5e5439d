////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

//go:build js && wasm

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"syscall/js"

	"gitlab.com/classhub/learndk-wasm/wasm"
)

func main() {
	fmt.Println("Go Web Assembly")

	// wasm/client.go
	js.Global().Set("NewLearnClient", js.FuncOf(wasm.NewLearnClient))

	// wasm/logging.go
	js.Global().Set("LogLevel", js.FuncOf(wasm.LogLevelJS))
	js.Global().Set("LogToFile", js.FuncOf(wasm.LogToFileJS))

	// wasm/version.go
	js.Global().Set("GetVersion", js.FuncOf(wasm.GetVersionJS))
	js.Global().Set("GetOldVersion", js.FuncOf(wasm.GetOldVersionJS))

	// Wait until the user terminates the program
	c := make(chan os.Signal)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	os.Exit(0)
}
