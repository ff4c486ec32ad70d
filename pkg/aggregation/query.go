package aggregation

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Operator string

const (
	OperatorSum      Operator = "sum"
	OperatorMin      Operator = "min"
	OperatorMax      Operator = "max"
	OperatorAddToSet Operator = "addToSet"
	OperatorCount    Operator = "count"
)

var ErrUnsupportedOperator = errors.New("unsupported accumulator operator")
var ErrInvalidQuery = errors.New("invalid query")

// GroupKeyField is the output field holding the group key
const GroupKeyField = "_id"

// Accumulator is a named reducer applied to every record of a group
type Accumulator struct {
	Name     string
	Operator Operator
	Field    string
}

// Filter matches when the record field equals one of Values
type Filter struct {
	Field  string
	Values []any
}

func Equals(field string, value any) Filter {
	return Filter{Field: field, Values: []any{value}}
}

func In(field string, values ...any) Filter {
	return Filter{Field: field, Values: values}
}

// Query is a read only aggregation: unwind the multi valued fields, filter on equality, group by one field.
type Query struct {
	Name       string
	Collection string

	Unwind       []string
	Match        []Filter
	GroupBy      string
	Accumulators []Accumulator

	// FlattenSets names addToSet accumulators whose collected values may be arrays,
	// the output holds the distinct union of their elements
	FlattenSets []string
}

func (q Query) Validate() error {
	if q.Collection == "" {
		return fmt.Errorf("%w: %s has no collection", ErrInvalidQuery, q.Name)
	}
	if q.GroupBy == "" {
		return fmt.Errorf("%w: %s has no group key", ErrInvalidQuery, q.Name)
	}

	names := map[string]Operator{}
	for _, accumulator := range q.Accumulators {
		switch accumulator.Operator {
		case OperatorSum, OperatorMin, OperatorMax, OperatorAddToSet:
			if accumulator.Field == "" {
				return fmt.Errorf("%w: %s accumulator %s has no field", ErrInvalidQuery, q.Name, accumulator.Name)
			}
		case OperatorCount:
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedOperator, accumulator.Operator)
		}

		if accumulator.Name == "" || accumulator.Name == GroupKeyField {
			return fmt.Errorf("%w: %s accumulator name %q", ErrInvalidQuery, q.Name, accumulator.Name)
		}
		if _, exists := names[accumulator.Name]; exists {
			return fmt.Errorf("%w: %s accumulator %s defined twice", ErrInvalidQuery, q.Name, accumulator.Name)
		}
		names[accumulator.Name] = accumulator.Operator
	}

	for _, name := range q.FlattenSets {
		if names[name] != OperatorAddToSet {
			return fmt.Errorf("%w: %s flattens %s which is not an addToSet accumulator", ErrInvalidQuery, q.Name, name)
		}
	}

	for _, filter := range q.Match {
		if filter.Field == "" || len(filter.Values) == 0 {
			return fmt.Errorf("%w: %s has an empty filter", ErrInvalidQuery, q.Name)
		}
	}

	return nil
}

func fieldPath(field string) string {
	return "$" + field
}

// Pipeline renders the query as MongoDB aggregation stages
func (q Query) Pipeline() mongo.Pipeline {
	pipeline := mongo.Pipeline{}

	for _, field := range q.Unwind {
		pipeline = append(pipeline, bson.D{{Key: "$unwind", Value: fieldPath(field)}})
	}

	if len(q.Match) > 0 {
		match := bson.D{}
		for _, filter := range q.Match {
			if len(filter.Values) == 1 {
				match = append(match, bson.E{Key: filter.Field, Value: filter.Values[0]})
			} else {
				match = append(match, bson.E{Key: filter.Field, Value: bson.M{"$in": bson.A(filter.Values)}})
			}
		}

		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}

	group := bson.D{{Key: GroupKeyField, Value: fieldPath(q.GroupBy)}}
	for _, accumulator := range q.Accumulators {
		var expression any
		switch accumulator.Operator {
		case OperatorCount:
			expression = bson.D{{Key: "$sum", Value: 1}}
		default:
			expression = bson.D{{Key: "$" + string(accumulator.Operator), Value: fieldPath(accumulator.Field)}}
		}

		group = append(group, bson.E{Key: accumulator.Name, Value: expression})
	}
	pipeline = append(pipeline, bson.D{{Key: "$group", Value: group}})

	if len(q.FlattenSets) > 0 {
		set := bson.D{}
		for _, name := range q.FlattenSets {
			set = append(set, bson.E{Key: name, Value: bson.M{
				"$reduce": bson.M{
					"input":        fieldPath(name),
					"initialValue": bson.A{},
					"in": bson.M{
						"$setUnion": bson.A{
							"$$value",
							bson.M{"$cond": bson.A{bson.M{"$isArray": "$$this"}, "$$this", bson.A{"$$this"}}},
						},
					},
				},
			}})
		}

		pipeline = append(pipeline, bson.D{{Key: "$set", Value: set}})
	}

	return pipeline
}
