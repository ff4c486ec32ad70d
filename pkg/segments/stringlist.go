package segments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StringList is a multi valued field. A single value is stored and rendered as a plain string.
type StringList []string

func (l StringList) String() string {
	return strings.Join(l, "|")
}

func (l StringList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if len(l) == 1 {
		return bson.MarshalValue(l[0])
	}

	return bson.MarshalValue([]string(l))
}

func (l *StringList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bson.TypeString:
		*l = StringList{raw.StringValue()}
	case bson.TypeArray:
		var values []string
		if err := raw.Unmarshal(&values); err != nil {
			return err
		}
		*l = values
	case bson.TypeNull, bson.TypeUndefined:
		*l = nil
	default:
		return fmt.Errorf("cannot decode bson %s into StringList", t)
	}

	return nil
}

func (l StringList) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}

	return json.Marshal([]string(l))
}

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*l = StringList{value}
		return nil
	}

	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*l = values

	return nil
}

func (l StringList) MarshalCSV() (string, error) {
	return l.String(), nil
}
