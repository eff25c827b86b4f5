// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package invoke

import (
	"fmt"
	"net/http"

	"github.com/pdiddy/pdfbuddy/internal/httputil"
	"github.com/pdiddy/pdfbuddy/pkg/types"
)

const (
	MsgNetwork = "network error, check your connection"
	MsgLocal   = "failed to process, please try again"
)

var statusMessages = map[int]string{
	http.StatusBadRequest:            "invalid request, check your file",
	http.StatusUnauthorized:          "authentication required",
	http.StatusForbidden:             "no permission",
	http.StatusNotFound:              "service unavailable",
	http.StatusRequestEntityTooLarge: "file too large",
	http.StatusInternalServerError:   "server error, try later",
	http.StatusServiceUnavailable:    "service temporarily unavailable",
}

// StatusMessage maps a non-2xx status code to its user-facing message.
func StatusMessage(code int) string {
	if msg, ok := statusMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Error %d: failed to process", code)
}

// Classify turns a failed outcome into the error shown to the user. A
// received status wins over everything else; a request without a response
// is a network error; anything else is a local failure. Successful
// outcomes classify to nil.
func Classify(out httputil.Outcome) *types.ClassifiedError {
	switch out.Kind {
	case httputil.KindOK:
		return nil
	case httputil.KindStatus:
		return &types.ClassifiedError{Message: StatusMessage(out.Status), Code: out.Status}
	case httputil.KindNoResponse:
		return &types.ClassifiedError{Message: MsgNetwork, Code: types.CodeNoResponse}
	default:
		return &types.ClassifiedError{Message: MsgLocal, Code: types.CodeLocal}
	}
}
