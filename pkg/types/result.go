// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// LifecycleState is the state of a single tool's upload/convert/download flow.
type LifecycleState string

const (
	StateCollecting LifecycleState = "collecting"
	StateSubmitting LifecycleState = "submitting"
	StateSucceeded  LifecycleState = "succeeded"
	StateFailed     LifecycleState = "failed"
)

// Terminal reports whether no further transition happens without user action.
func (s LifecycleState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

const (
	// CodeNoResponse marks a request that was sent but never answered.
	CodeNoResponse = 0

	// CodeLocal marks a failure before the request was dispatched.
	CodeLocal = -1
)

// ClassifiedError is the normalized failure shown to the user.
type ClassifiedError struct {
	Message string `json:"message" yaml:"message"`

	// Code is the HTTP status, CodeNoResponse, or CodeLocal.
	Code int `json:"code" yaml:"code"`
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}
