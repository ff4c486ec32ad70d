package aggregation

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
)

// lookupPath resolves a dotted field path, ok is false when any part is missing
func lookupPath(document any, path string) (any, bool) {
	current := document

	for _, part := range strings.Split(path, ".") {
		switch value := current.(type) {
		case bson.M:
			next, ok := value[part]
			if !ok {
				return nil, false
			}
			current = next
		case map[string]any:
			next, ok := value[part]
			if !ok {
				return nil, false
			}
			current = next
		case bson.D:
			found := false
			for _, element := range value {
				if element.Key == part {
					current = element.Value
					found = true
					break
				}
			}
			if !found {
				return nil, false
			}
		default:
			return nil, false
		}
	}

	return current, true
}

// withPath returns a shallow copy of document with path set to value,
// intermediate documents along the path are copied too
func withPath(document bson.M, path string, value any) bson.M {
	head, rest, nested := strings.Cut(path, ".")

	clone := make(bson.M, len(document))
	for key, existing := range document {
		clone[key] = existing
	}

	if !nested {
		clone[head] = value
		return clone
	}

	child, _ := asDocument(clone[head])
	clone[head] = withPath(child, rest, value)

	return clone
}

func asDocument(value any) (bson.M, bool) {
	switch document := value.(type) {
	case bson.M:
		return document, true
	case map[string]any:
		return bson.M(document), true
	case bson.D:
		converted := make(bson.M, len(document))
		for _, element := range document {
			converted[element.Key] = element.Value
		}
		return converted, true
	}

	return bson.M{}, false
}

func asArray(value any) ([]any, bool) {
	switch array := value.(type) {
	case bson.A:
		return array, true
	case []any:
		return array, true
	case []string:
		values := make([]any, len(array))
		for i, item := range array {
			values[i] = item
		}
		return values, true
	}

	return nil, false
}

// asInteger returns integer types as int64 without passing through float64
func asInteger(value any) (int64, bool) {
	switch number := value.(type) {
	case int:
		return int64(number), true
	case int32:
		return int64(number), true
	case int64:
		return number, true
	}

	return 0, false
}

func asNumber(value any) (float64, bool, bool) {
	switch number := value.(type) {
	case int:
		return float64(number), true, true
	case int32:
		return float64(number), true, true
	case int64:
		return float64(number), true, true
	case float32:
		return float64(number), false, true
	case float64:
		return number, false, true
	}

	return 0, false, false
}

// typeRank follows the MongoDB comparison order for the types found in segment records
func typeRank(value any) int {
	if value == nil {
		return 0
	}
	if _, _, ok := asNumber(value); ok {
		return 1
	}

	switch value.(type) {
	case string:
		return 2
	case bson.M, map[string]any, bson.D:
		return 3
	case bson.A, []any, []string:
		return 4
	case bool:
		return 6
	case time.Time, primitive.DateTime:
		return 7
	}

	return 8
}

// compareValues returns -1, 0 or 1
func compareValues(a any, b any) int {
	rankA, rankB := typeRank(a), typeRank(b)
	if rankA != rankB {
		if rankA < rankB {
			return -1
		}
		return 1
	}

	switch rankA {
	case 1:
		numberA, _, _ := asNumber(a)
		numberB, _, _ := asNumber(b)
		switch {
		case numberA < numberB:
			return -1
		case numberA > numberB:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.(string), b.(string))
	case 6:
		boolA, boolB := a.(bool), b.(bool)
		switch {
		case boolA == boolB:
			return 0
		case !boolA:
			return -1
		}
		return 1
	case 7:
		timeA, timeB := asTime(a), asTime(b)
		return timeA.Compare(timeB)
	}

	if valuesEqual(a, b) {
		return 0
	}
	return strings.Compare(valueKey(a), valueKey(b))
}

func asTime(value any) time.Time {
	switch t := value.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	}

	return time.Time{}
}

func valuesEqual(a any, b any) bool {
	numberA, _, okA := asNumber(a)
	numberB, _, okB := asNumber(b)
	if okA || okB {
		return okA && okB && numberA == numberB
	}

	return reflect.DeepEqual(normalize(a), normalize(b))
}

// normalize turns numbers into float64 and documents or arrays into comparable plain forms
func normalize(value any) any {
	if number, _, ok := asNumber(value); ok {
		return number
	}

	if array, ok := asArray(value); ok {
		normalized := make([]any, len(array))
		for i, item := range array {
			normalized[i] = normalize(item)
		}
		return normalized
	}

	if document, ok := asDocument(value); ok {
		normalized := make(map[string]any, len(document))
		for key, item := range document {
			normalized[key] = normalize(item)
		}
		return normalized
	}

	return value
}

// valueKey is a canonical string for grouping and set membership. Values are encoded as
// canonical extended JSON so strings stay quoted inside arrays, document keys are sorted.
func valueKey(value any) string {
	normalized := normalize(value)

	encoded, err := bson.MarshalExtJSON(bson.D{{Key: "v", Value: canonical(normalized)}}, true, false)
	if err != nil {
		return fmt.Sprintf("%T:%#v", normalized, normalized)
	}

	return string(encoded)
}

// canonical orders the keys of normalized documents, equal documents encode the same
func canonical(value any) any {
	switch typed := value.(type) {
	case float64:
		if typed == 0 {
			return float64(0)
		}
	case []any:
		array := make(bson.A, len(typed))
		for i, item := range typed {
			array[i] = canonical(item)
		}
		return array
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		slices.Sort(keys)

		document := make(bson.D, 0, len(keys))
		for _, key := range keys {
			document = append(document, bson.E{Key: key, Value: canonical(typed[key])})
		}
		return document
	}

	return value
}

// matchesValue follows MongoDB equality, an array field matches when any element matches
func matchesValue(fieldValue any, expected any) bool {
	if valuesEqual(fieldValue, expected) {
		return true
	}

	if array, ok := asArray(fieldValue); ok {
		for _, item := range array {
			if valuesEqual(item, expected) {
				return true
			}
		}
	}

	return false
}
