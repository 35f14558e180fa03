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
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/atomic"
)

// Transaction represents exactly one exchange with the database's
// transactional endpoint. Statements accumulate in append order and are
// submitted together for atomic execution by a single Execute call, which
// finalizes the server-side transaction with a follow-up commit request.
//
// A Transaction is single-use. The used flag flips synchronously when
// Execute is invoked, before any network call is dispatched, so the append
// window is closed even while the request is still in flight. There is no
// reset.
type Transaction struct {
	service    httpService
	endpoint   string
	logger     *driverLogger
	statements []Statement
	used       *atomic.Bool
	results    []StatementResult
	deferred   error
}

func newTransaction(service httpService, endpoint string, logger *driverLogger) *Transaction {
	return &Transaction{
		service:  service,
		endpoint: endpoint,
		logger:   logger,
		used:     atomic.NewBool(false),
	}
}

type txRequest struct {
	Statements []Statement `json:"statements"`
}

type txResponse struct {
	Results []StatementResult `json:"results"`
	Errors  []serverError     `json:"errors"`
	Commit  string            `json:"commit"`
}

type serverError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AddQuery appends a statement and its named parameters to the set that
// Execute will submit, preserving append order. Calls chain. Appending
// after Execute has been invoked is a reuse violation: the statement list
// is left untouched and the violation is reported by Err.
func (txn *Transaction) AddQuery(statement string, parameters map[string]interface{}) *Transaction {
	if txn.used.Load() {
		txn.deferred = &ReuseError{}
		return txn
	}
	txn.statements = append(txn.statements, Statement{Statement: statement, Parameters: parameters})
	return txn
}

// Err returns the reuse violation recorded by an AddQuery call that
// arrived after Execute, or nil.
func (txn *Transaction) Err() error {
	return txn.deferred
}

// Execute submits the accumulated statements to the transactional endpoint
// and, when the server reports no statement errors, finalizes the
// server-side transaction by posting to the commit URL it returned.
//
// The outcome is three-way. A non-OK/non-Created status on the initial
// call dispatches a best-effort rollback DELETE and fails with a
// ServerStatusError. A statement-level error in the response body fails
// with the first error as a StatementError; no rollback is attempted on
// that path. Otherwise the results are recorded and delivered once the
// commit call returns OK; any other commit status fails with a
// CommitError. Lower-level failures surface uniformly as a RequestError
// wrapping the cause.
//
// A second Execute fails with a ReuseError. Nothing is retried.
func (txn *Transaction) Execute(ctx context.Context) ([]StatementResult, error) {
	if !txn.used.CAS(false, true) {
		return nil, &ReuseError{}
	}
	payload, err := json.Marshal(txRequest{Statements: txn.statements})
	if err != nil {
		return nil, &RequestError{message: "could not marshal statements", err: err}
	}
	status, body, err := txn.service.call(ctx, http.MethodPost, txn.endpoint, payload)
	if err != nil {
		return nil, &RequestError{message: "statement request failed", err: err}
	}
	if status != http.StatusOK && status != http.StatusCreated {
		txn.rollback()
		return nil, &ServerStatusError{StatusCode: status}
	}
	var parsed txResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &RequestError{message: "could not decode response body", err: err}
	}
	if len(parsed.Errors) > 0 {
		first := parsed.Errors[0]
		return nil, &StatementError{Code: first.Code, Message: first.Message}
	}
	txn.results = parsed.Results
	commitStatus, _, err := txn.service.call(ctx, http.MethodPost, parsed.Commit, nil)
	if err != nil {
		return nil, &RequestError{message: "commit request failed", err: err}
	}
	if commitStatus != http.StatusOK {
		return nil, &CommitError{StatusCode: commitStatus}
	}
	return txn.results, nil
}

// rollback dispatches a best-effort DELETE to release the implicit
// transaction the failed call may have opened on the server. It is
// fire-and-forget: the outcome is never awaited or surfaced.
func (txn *Transaction) rollback() {
	go func() {
		_, _, err := txn.service.call(context.Background(), http.MethodDelete, txn.endpoint, nil)
		if err != nil {
			txn.logger.log(fmt.Sprint("rollback request failed: ", err), LogDebug)
		}
	}()
}
