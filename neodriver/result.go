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
	"encoding/json"

	"github.com/pkg/errors"
)

// ErrNoRows is returned by extraction helpers when a result carries no
// row data to extract from.
var ErrNoRows = errors.New("result has no rows")

// StatementResult is the per-statement outcome returned by the server:
// column names plus row data, in statement order.
type StatementResult struct {
	Columns []string `json:"columns"`
	Data    []Row    `json:"data"`
}

// Row is one row of a result as returned by the transactional endpoint.
type Row struct {
	Row  []interface{} `json:"row"`
	Meta []interface{} `json:"meta,omitempty"`
}

// Single returns the first column of the first row.
func (r *StatementResult) Single() (interface{}, error) {
	if len(r.Data) == 0 || len(r.Data[0].Row) == 0 {
		return nil, ErrNoRows
	}
	return r.Data[0].Row[0], nil
}

// Column returns every row's value for the named column.
func (r *StatementResult) Column(name string) ([]interface{}, error) {
	index := -1
	for i, column := range r.Columns {
		if column == name {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, errors.Errorf("no such column: %s", name)
	}
	values := make([]interface{}, 0, len(r.Data))
	for _, row := range r.Data {
		if index < len(row.Row) {
			values = append(values, row.Row[index])
		}
	}
	return values, nil
}

// Maps flattens the rows into column-name-keyed maps, one per row.
func (r *StatementResult) Maps() []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(r.Data))
	for _, row := range r.Data {
		m := make(map[string]interface{}, len(r.Columns))
		for i, column := range r.Columns {
			if i < len(row.Row) {
				m[column] = row.Row[i]
			}
		}
		rows = append(rows, m)
	}
	return rows
}

// UnmarshalResult maps the rows of a result onto a slice of structs
// through a JSON round trip. Fields are unmarshalled by column name.
func UnmarshalResult(r *StatementResult, structSlice interface{}) error {
	b, err := json.Marshal(r.Maps())
	if err != nil {
		return errors.WithMessage(err, "failed to marshal rows into json")
	}
	return errors.WithMessage(json.Unmarshal(b, structSlice), "failed to unmarshal rows into struct slice")
}
