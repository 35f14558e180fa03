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
	"strings"
)

// Statement is one Cypher query text plus its named parameter bindings.
// Statements are never mutated once handed to a Transaction.
type Statement struct {
	Statement  string                 `json:"statement"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// QueryBuilder accumulates query text fragments in order and renders them
// into a single statement string. It performs no network interaction.
type QueryBuilder struct {
	fragments []interface{}
}

// NewQueryBuilder returns an empty QueryBuilder.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Append adds fragments to the builder in order. A fragment that is itself
// a sequence is flattened recursively, so Append("A", []interface{}{"B", "C"})
// accumulates the same fragments as three single appends of "A", "B", "C".
// Non-string fragments are accepted and stringified at render time.
func (qb *QueryBuilder) Append(fragments ...interface{}) *QueryBuilder {
	for _, fragment := range fragments {
		switch f := fragment.(type) {
		case []interface{}:
			qb.Append(f...)
		case []string:
			for _, s := range f {
				qb.fragments = append(qb.fragments, s)
			}
		default:
			qb.fragments = append(qb.fragments, fragment)
		}
	}
	return qb
}

// String renders the accumulated fragments into the exact statement text
// used on the wire: fragments are joined with a single space, newline,
// carriage-return and tab characters are stripped, runs of whitespace
// collapse to one space, and leading/trailing whitespace is trimmed.
// Rendering has no side effects; absent further appends it always yields
// the identical string.
func (qb *QueryBuilder) String() string {
	parts := make([]string, len(qb.fragments))
	for i, fragment := range qb.fragments {
		if s, ok := fragment.(string); ok {
			parts[i] = s
		} else {
			parts[i] = fmt.Sprint(fragment)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
