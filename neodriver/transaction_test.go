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
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var mockLogger = &driverLogger{defaultLogger{}, LogOff}
var errMock = errors.New("mock")

const mockEndpoint = "http://localhost:7474/db/neo4j/tx"
const mockCommitURL = mockEndpoint + "/7/commit"

func mockSuccessBody(commitURL string) []byte {
	body, _ := json.Marshal(txResponse{
		Results: []StatementResult{{
			Columns: []string{"n"},
			Data:    []Row{{Row: []interface{}{"a"}}},
		}},
		Errors: []serverError{},
		Commit: commitURL,
	})
	return body
}

func TestTransaction(t *testing.T) {
	t.Run("AddQuery preserves append order in the request body", func(t *testing.T) {
		mockService := new(mockHTTPService)
		var captured []byte
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Run(func(args mock.Arguments) {
				captured, _ = args.Get(3).([]byte)
			}).
			Return(http.StatusCreated, mockSuccessBody(mockCommitURL), nil)
		mockService.On("call", mock.Anything, http.MethodPost, mockCommitURL, mock.Anything).
			Return(http.StatusOK, []byte("{}"), nil)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		txn.AddQuery("CREATE (a:Node)", nil).
			AddQuery("CREATE (b:Node)", map[string]interface{}{"x": 1}).
			AddQuery("MATCH (n) RETURN n", nil)

		_, err := txn.Execute(context.Background())
		require.NoError(t, err)

		var sent txRequest
		require.NoError(t, json.Unmarshal(captured, &sent))
		require.Len(t, sent.Statements, 3)
		assert.Equal(t, "CREATE (a:Node)", sent.Statements[0].Statement)
		assert.Equal(t, "CREATE (b:Node)", sent.Statements[1].Statement)
		assert.Equal(t, "MATCH (n) RETURN n", sent.Statements[2].Statement)
	})

	t.Run("success resolves with results after committing", func(t *testing.T) {
		mockService := new(mockHTTPService)
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Return(http.StatusCreated, mockSuccessBody(mockCommitURL), nil)
		mockService.On("call", mock.Anything, http.MethodPost, mockCommitURL, mock.Anything).
			Return(http.StatusOK, []byte("{}"), nil)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		results, err := txn.AddQuery("MATCH (n) RETURN n", nil).Execute(context.Background())
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, []string{"n"}, results[0].Columns)

		mockService.AssertCalled(t, "call", mock.Anything, http.MethodPost, mockCommitURL, mock.Anything)
	})

	t.Run("non-OK status rolls back and never commits", func(t *testing.T) {
		mockService := new(mockHTTPService)
		deleted := make(chan struct{})
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Return(http.StatusInternalServerError, []byte(nil), nil)
		mockService.On("call", mock.Anything, http.MethodDelete, mockEndpoint, mock.Anything).
			Run(func(args mock.Arguments) {
				close(deleted)
			}).
			Return(http.StatusOK, []byte("{}"), nil)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		results, err := txn.AddQuery("MATCH (n) RETURN n", nil).Execute(context.Background())
		assert.Nil(t, results)

		statusErr := &ServerStatusError{}
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)

		select {
		case <-deleted:
		case <-time.After(time.Second):
			t.Fatal("rollback DELETE was never dispatched")
		}
		mockService.AssertNotCalled(t, "call", mock.Anything, http.MethodPost, mockCommitURL, mock.Anything)
	})

	t.Run("statement errors fail with the first error and skip rollback", func(t *testing.T) {
		body, _ := json.Marshal(txResponse{
			Results: []StatementResult{},
			Errors: []serverError{
				{Code: "Neo.ClientError.Statement.SyntaxError", Message: "Invalid input"},
				{Code: "Neo.ClientError.Statement.SemanticError", Message: "second"},
			},
			Commit: mockCommitURL,
		})
		mockService := new(mockHTTPService)
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Return(http.StatusCreated, body, nil)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		results, err := txn.AddQuery("MATCH (n RETURN n", nil).Execute(context.Background())
		assert.Nil(t, results)

		stmtErr := &StatementError{}
		require.True(t, errors.As(err, &stmtErr))
		assert.Equal(t, "Neo.ClientError.Statement.SyntaxError", stmtErr.Code)
		assert.Equal(t, "Invalid input", stmtErr.Message)

		mockService.AssertNotCalled(t, "call", mock.Anything, http.MethodDelete, mockEndpoint, mock.Anything)
		mockService.AssertNotCalled(t, "call", mock.Anything, http.MethodPost, mockCommitURL, mock.Anything)
	})

	t.Run("commit failure surfaces after recording interim results", func(t *testing.T) {
		mockService := new(mockHTTPService)
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Return(http.StatusCreated, mockSuccessBody(mockCommitURL), nil)
		mockService.On("call", mock.Anything, http.MethodPost, mockCommitURL, mock.Anything).
			Return(http.StatusNotFound, []byte(nil), nil)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		results, err := txn.AddQuery("MATCH (n) RETURN n", nil).Execute(context.Background())
		assert.Nil(t, results)

		commitErr := &CommitError{}
		require.True(t, errors.As(err, &commitErr))
		assert.Equal(t, http.StatusNotFound, commitErr.StatusCode)

		// The interim results were recorded, just not delivered.
		require.Len(t, txn.results, 1)
		assert.Equal(t, []string{"n"}, txn.results[0].Columns)
		mockService.AssertNotCalled(t, "call", mock.Anything, http.MethodDelete, mockEndpoint, mock.Anything)
	})

	t.Run("transport errors wrap uniformly", func(t *testing.T) {
		mockService := new(mockHTTPService)
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Return(0, []byte(nil), errMock)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		_, err := txn.AddQuery("MATCH (n) RETURN n", nil).Execute(context.Background())

		reqErr := &RequestError{}
		require.True(t, errors.As(err, &reqErr))
		assert.True(t, errors.Is(err, errMock))
	})

	t.Run("malformed response body wraps uniformly", func(t *testing.T) {
		mockService := new(mockHTTPService)
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Return(http.StatusOK, []byte("{not json"), nil)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		_, err := txn.AddQuery("MATCH (n) RETURN n", nil).Execute(context.Background())

		reqErr := &RequestError{}
		require.True(t, errors.As(err, &reqErr))
	})
}

func TestTransactionSingleUse(t *testing.T) {
	t.Run("AddQuery after Execute is a reuse violation", func(t *testing.T) {
		mockService := new(mockHTTPService)
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Return(http.StatusCreated, mockSuccessBody(mockCommitURL), nil)
		mockService.On("call", mock.Anything, http.MethodPost, mockCommitURL, mock.Anything).
			Return(http.StatusOK, []byte("{}"), nil)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		txn.AddQuery("MATCH (n) RETURN n", nil)
		_, err := txn.Execute(context.Background())
		require.NoError(t, err)

		txn.AddQuery("CREATE (m:Late)", nil)
		reuseErr := &ReuseError{}
		require.True(t, errors.As(txn.Err(), &reuseErr))
		assert.Len(t, txn.statements, 1)
	})

	t.Run("AddQuery after a failed Execute is still a reuse violation", func(t *testing.T) {
		mockService := new(mockHTTPService)
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Return(0, []byte(nil), errMock)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		txn.AddQuery("MATCH (n) RETURN n", nil)
		_, err := txn.Execute(context.Background())
		require.Error(t, err)

		txn.AddQuery("CREATE (m:Late)", nil)
		reuseErr := &ReuseError{}
		require.True(t, errors.As(txn.Err(), &reuseErr))
		assert.Len(t, txn.statements, 1)
	})

	t.Run("a second Execute is a reuse violation", func(t *testing.T) {
		mockService := new(mockHTTPService)
		mockService.On("call", mock.Anything, http.MethodPost, mockEndpoint, mock.Anything).
			Return(http.StatusCreated, mockSuccessBody(mockCommitURL), nil)
		mockService.On("call", mock.Anything, http.MethodPost, mockCommitURL, mock.Anything).
			Return(http.StatusOK, []byte("{}"), nil)

		txn := newTransaction(mockService, mockEndpoint, mockLogger)
		txn.AddQuery("MATCH (n) RETURN n", nil)
		_, err := txn.Execute(context.Background())
		require.NoError(t, err)

		results, err := txn.Execute(context.Background())
		assert.Nil(t, results)
		reuseErr := &ReuseError{}
		require.True(t, errors.As(err, &reuseErr))
		mockService.AssertNumberOfCalls(t, "call", 2)
	})
}

type mockHTTPService struct {
	mock.Mock
}

func (m *mockHTTPService) call(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	args := m.Called(ctx, method, url, body)
	resBody, _ := args.Get(1).([]byte)
	return args.Int(0), resBody, args.Error(2)
}
