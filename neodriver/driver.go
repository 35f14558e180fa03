/*
Copyright the neo4j-http-driver-go authors.

Licensed under the Apache License, Version 2.0 (the "License"). You may not use this file except in compliance with
the License. A copy of the License is located at

http://www.apache.org/licenses/LICENSE-2.0

or in the "license" file accompanying this file. This file is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR
CONDITIONS OF ANY KIND, either express or implied. See the License for the specific language governing permissions
and limitations under the License.
*/

// Package neodriver is a driver for Neo4j's transactional HTTP endpoint.
// Statements batch into single-use Transactions that execute atomically
// and finalize with an explicit commit call.
package neodriver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

var supportedMajorVersions = []string{
	"4",
	"5",
}

// DriverOptions can be used to configure the driver during construction.
type DriverOptions struct {
	_                         struct{}
	Database                  string
	MaxConcurrentTransactions int64
	HTTPClient                *http.Client
	Logger                    Logger
	LoggerVerbosity           LogLevel
}

// Driver connects to a Neo4j server over its transactional HTTP endpoint
// and mints single-use Transactions against it. Timeouts belong to the
// injected HTTP client; the driver imposes none of its own.
type Driver struct {
	endpoint     string
	communicator *communicator
	logger       *driverLogger
	semaphore    *semaphore.Weighted
	isClosed     bool
}

type discoveryDocument struct {
	TX      string `json:"transaction"`
	Version string `json:"neo4j_version"`
	Edition string `json:"neo4j_edition"`
}

// New connects to the server's discovery document at uri, derives the
// Basic credential from username and password, and resolves the
// transactional endpoint for the configured database.
func New(ctx context.Context, uri, username, password string, fns ...func(*DriverOptions)) (*Driver, error) {
	options := &DriverOptions{
		Database:                  "neo4j",
		MaxConcurrentTransactions: 50,
		HTTPClient:                http.DefaultClient,
		Logger:                    defaultLogger{},
		LoggerVerbosity:           LogInfo,
	}
	for _, fn := range fns {
		fn(options)
	}
	if options.MaxConcurrentTransactions < 1 {
		panic("MaxConcurrentTransactions must be 1 or greater.")
	}

	logger := &driverLogger{options.Logger, options.LoggerVerbosity}
	auth := ""
	if username != "" {
		auth = base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	}
	communicator := &communicator{client: options.HTTPClient, auth: auth, logger: logger}

	endpoint, err := discoverEndpoint(ctx, communicator, uri, options.Database)
	if err != nil {
		return nil, err
	}
	logger.log("connected, transaction endpoint "+endpoint, LogDebug)

	return &Driver{
		endpoint:     endpoint,
		communicator: communicator,
		logger:       logger,
		semaphore:    semaphore.NewWeighted(options.MaxConcurrentTransactions),
	}, nil
}

func discoverEndpoint(ctx context.Context, communicator *communicator, uri, database string) (string, error) {
	status, body, err := communicator.call(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return "", errors.WithMessage(err, "failed to fetch discovery document")
	}
	if status != http.StatusOK {
		return "", errors.Errorf("discovery request returned status %d", status)
	}
	var discovery discoveryDocument
	if err := json.Unmarshal(body, &discovery); err != nil {
		return "", errors.WithMessage(err, "failed to unmarshal discovery document")
	}
	if discovery.TX == "" {
		return "", errors.New("server did not advertise a transaction endpoint")
	}
	if !versionIsSupported(strings.Split(discovery.Version, ".")[0]) {
		return "", errors.Errorf("unsupported server version %q, supported major versions are {%s}",
			discovery.Version, strings.Join(supportedMajorVersions, ", "))
	}
	return strings.Replace(discovery.TX, "{databaseName}", database, 1), nil
}

func versionIsSupported(majorVersion string) bool {
	for _, mv := range supportedMajorVersions {
		if mv == majorVersion {
			return true
		}
	}
	return false
}

// Transaction returns a new single-use Transaction against the resolved
// transactional endpoint. Independent Transactions share no mutable state
// and may run concurrently.
func (driver *Driver) Transaction() *Transaction {
	if driver.isClosed {
		panic("Cannot invoke methods on a closed Driver.")
	}
	return newTransaction(driver.communicator, driver.endpoint, driver.logger)
}

// Execute builds a transaction through fn and executes it, bounded by the
// MaxConcurrentTransactions cap.
func (driver *Driver) Execute(ctx context.Context, fn func(txn *Transaction) error) ([]StatementResult, error) {
	if driver.isClosed {
		panic("Cannot invoke methods on a closed Driver.")
	}
	if err := driver.semaphore.Acquire(ctx, 1); err != nil {
		return nil, errors.WithMessage(err, "could not acquire transaction permit")
	}
	defer driver.semaphore.Release(1)
	txn := newTransaction(driver.communicator, driver.endpoint, driver.logger)
	if err := fn(txn); err != nil {
		return nil, err
	}
	return txn.Execute(ctx)
}

// Run executes a single statement in an auto-committed transaction via the
// endpoint's commit shortcut and returns its result.
func (driver *Driver) Run(ctx context.Context, statement string, parameters map[string]interface{}) (*StatementResult, error) {
	if driver.isClosed {
		panic("Cannot invoke methods on a closed Driver.")
	}
	if err := driver.semaphore.Acquire(ctx, 1); err != nil {
		return nil, errors.WithMessage(err, "could not acquire transaction permit")
	}
	defer driver.semaphore.Release(1)

	payload, err := json.Marshal(txRequest{Statements: []Statement{{Statement: statement, Parameters: parameters}}})
	if err != nil {
		return nil, &RequestError{message: "could not marshal statement", err: err}
	}
	status, body, err := driver.communicator.call(ctx, http.MethodPost, driver.endpoint+"/commit", payload)
	if err != nil {
		return nil, &RequestError{message: "statement request failed", err: err}
	}
	if status != http.StatusOK && status != http.StatusCreated {
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
	if len(parsed.Results) == 0 {
		return &StatementResult{}, nil
	}
	return &parsed.Results[0], nil
}

// Close closes the driver from usage.
func (driver *Driver) Close() {
	driver.isClosed = true
}
