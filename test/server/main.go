////////////////////////////////////////////////////////////////////////////////
// Copyright © 2024 ClassHub                                                  //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Test harness for the wasm client: serves the browser assets and mocks
// the remote learning API the replay engine drains against. Endpoints
// accept any payload and report success, except when the "fail" query
// parameter is set, which forces a failure response for replay testing.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func main() {
	port := "9090"
	root := "../assets"

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/enroll", mockAction).Methods(http.MethodPost)
	api.HandleFunc("/quiz-submissions", mockQuizSubmission).
		Methods(http.MethodPost)
	api.HandleFunc("/video-progress", mockAction).Methods(http.MethodPost)
	api.HandleFunc("/profile", mockAction).Methods(http.MethodPut)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(root)))

	fmt.Printf("Starting server on port %s from %s\n", port, root)
	fmt.Printf("\thttp://localhost:%s\n", port)

	if err := http.ListenAndServe(":"+port, r); err != nil {
		panic(fmt.Sprintf("Failed to start server: %+v", err))
	}
}

// mockAction acknowledges the mutation, or rejects it when ?fail is set.
func mockAction(w http.ResponseWriter, r *http.Request) {
	respond(w, r, map[string]any{"success": !shouldFail(r)})
}

// mockQuizSubmission acknowledges a quiz submission with a grading stub.
func mockQuizSubmission(w http.ResponseWriter, r *http.Request) {
	if shouldFail(r) {
		respond(w, r, map[string]any{"success": false})
		return
	}
	respond(w, r, map[string]any{
		"success": true,
		"data": map[string]any{
			"score":          85,
			"correctAnswers": 17,
			"totalQuestions": 20,
		},
	})
}

func shouldFail(r *http.Request) bool {
	return r.URL.Query().Has("fail")
}

func respond(w http.ResponseWriter, r *http.Request, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		fmt.Printf("Failed to encode response for %s: %+v\n", r.URL.Path, err)
	}
}
