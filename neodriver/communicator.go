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
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"github.com/pkg/errors"
)

const version string = "1.0.0"
const userAgentString string = "neo4j-http-driver-go/" + version

// httpService is the transport seam between the Transaction and the
// underlying HTTP client. It issues one request and hands back the status
// code and raw body for the caller to interpret. It never retries.
type httpService interface {
	call(ctx context.Context, method, url string, body []byte) (int, []byte, error)
}

// httpDoer is satisfied by *http.Client.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type communicator struct {
	client httpDoer
	auth   string
	logger *driverLogger
}

func (communicator *communicator) call(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, errors.WithMessage(err, "could not create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json; charset=UTF-8")
	req.Header.Set("User-Agent", userAgentString)
	if communicator.auth != "" {
		req.Header.Set("Authorization", "Basic "+communicator.auth)
	}
	communicator.logger.log(fmt.Sprint(method, " ", url), LogDebug)
	res, err := communicator.client.Do(req)
	if err != nil {
		return 0, nil, errors.WithMessage(err, "could not send request")
	}
	defer res.Body.Close()
	resBody, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, errors.WithMessage(err, "could not read response body")
	}
	communicator.logger.log(fmt.Sprint("response status ", res.StatusCode), LogDebug)
	return res.StatusCode, resBody, nil
}
