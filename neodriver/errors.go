/*
Copyright the neo4j-http-driver-go authors.

Licensed under the Apache License, Version 2.0 (the "License"). You may not use this file except in compliance with
the License. A copy of the License is located at

http://www.apache.org/licenses/LICENSE-2.0

or in the "license" file accompanying this file. This file is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
CONDITIONS OF ANY KIND, either express or implied. See the License for the specific language governing permissions
and limitations under the License.
*/

package neodriver

import (
	"fmt"
)

// ReuseError is returned when a Transaction is appended to or executed
// after its single execution has begun.
type ReuseError struct{}

func (e *ReuseError) Error() string {
	return "transaction already used"
}

// ServerStatusError is returned when the initial statement call comes back
// with a status other than OK or Created. A best-effort rollback has been
// dispatched by the time the caller sees this error.
type ServerStatusError struct {
	StatusCode int
}

func (e *ServerStatusError) Error() string {
	return fmt.Sprintf("query did not return OK or CREATED: status %d", e.StatusCode)
}

// StatementError carries the first error the server reported for the
// submitted statement set.
type StatementError struct {
	Code    string
	Message string
}

func (e *StatementError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return e.Code + ": " + e.Message
}

// CommitError is returned when the finalize call does not return OK. The
// server-side transaction state is ambiguous at this point; it may have
// partially committed.
type CommitError struct {
	StatusCode int
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("transaction commit failed: status %d", e.StatusCode)
}

// RequestError wraps a lower-level failure raised while driving the
// protocol, such as a connection error or a malformed response body.
type RequestError struct {
	message string
	err     error
}

func (e *RequestError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s\ncaused by: %v", e.message, e.err)
	}
	return e.message
}

func (e *RequestError) Unwrap() error {
	return e.err
}
