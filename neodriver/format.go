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
	"sort"
	"strconv"
	"strings"
)

// Props renders a property map as a Cypher map literal with keys in
// lexical order, e.g. {age: 3, name: "x"}.
func Props(properties map[string]interface{}) string {
	pairs := make([]string, 0, len(properties))
	for _, key := range sortedKeys(properties) {
		pairs = append(pairs, key+": "+Literal(properties[key]))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}

// SetClause renders assignments for a SET clause against an alias, with
// keys in lexical order, e.g. n.age = 3, n.name = "x".
func SetClause(alias string, properties map[string]interface{}) string {
	pairs := make([]string, 0, len(properties))
	for _, key := range sortedKeys(properties) {
		pairs = append(pairs, alias+"."+key+" = "+Literal(properties[key]))
	}
	return strings.Join(pairs, ", ")
}

// Literal renders a Go value as a Cypher literal. Strings are quoted and
// escaped, sequences become list literals, maps become map literals.
func Literal(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = Literal(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]interface{}:
		return Props(v)
	default:
		return fmt.Sprint(v)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
