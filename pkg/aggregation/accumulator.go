package aggregation

import (
	"go.mongodb.org/mongo-driver/bson"
)

type groupState struct {
	key          any
	accumulators []Accumulator
	values       []accumulatorState
}

type accumulatorState interface {
	add(value any, present bool)
	result() any
}

func newGroupState(key any, accumulators []Accumulator) *groupState {
	group := &groupState{
		key:          key,
		accumulators: accumulators,
		values:       make([]accumulatorState, len(accumulators)),
	}

	for i, accumulator := range accumulators {
		switch accumulator.Operator {
		case OperatorSum:
			group.values[i] = &sumState{}
		case OperatorCount:
			group.values[i] = &countState{}
		case OperatorMin:
			group.values[i] = &extremeState{keep: -1}
		case OperatorMax:
			group.values[i] = &extremeState{keep: 1}
		case OperatorAddToSet:
			group.values[i] = newSetState()
		}
	}

	return group
}

func (g *groupState) add(record bson.M) {
	for i, accumulator := range g.accumulators {
		if accumulator.Operator == OperatorCount {
			g.values[i].add(nil, true)
			continue
		}

		value, present := lookupPath(record, accumulator.Field)
		g.values[i].add(value, present)
	}
}

func (g *groupState) result() bson.M {
	row := bson.M{GroupKeyField: g.key}

	for i, accumulator := range g.accumulators {
		row[accumulator.Name] = g.values[i].result()
	}

	return row
}

// sumState keeps integers exact until a floating point value shows up, non numeric values are ignored
type sumState struct {
	integer  int64
	floating float64
	isFloat  bool
}

func (s *sumState) add(value any, present bool) {
	if !present {
		return
	}

	if integer, ok := asInteger(value); ok {
		s.integer += integer
		return
	}

	if number, _, ok := asNumber(value); ok {
		s.floating += number
		s.isFloat = true
	}
}

func (s *sumState) result() any {
	if s.isFloat {
		return float64(s.integer) + s.floating
	}

	return s.integer
}

type countState struct {
	count int64
}

func (s *countState) add(any, bool) {
	s.count++
}

func (s *countState) result() any {
	return s.count
}

// extremeState is min when keep is -1 and max when keep is 1, null and missing values are ignored
type extremeState struct {
	keep  int
	value any
	set   bool
}

func (s *extremeState) add(value any, present bool) {
	if !present || value == nil {
		return
	}

	if !s.set || compareValues(value, s.value) == s.keep {
		s.value = value
		s.set = true
	}
}

func (s *extremeState) result() any {
	return s.value
}

type setState struct {
	seen   map[string]bool
	values bson.A
}

func newSetState() *setState {
	return &setState{seen: map[string]bool{}, values: bson.A{}}
}

func (s *setState) add(value any, present bool) {
	if !present {
		return
	}

	key := valueKey(value)
	if s.seen[key] {
		return
	}

	s.seen[key] = true
	s.values = append(s.values, value)
}

func (s *setState) result() any {
	return s.values
}

// flattenSet unions the elements of every array in the set, scalars are kept as single elements
func flattenSet(value any) bson.A {
	flattened := newSetState()

	values, _ := asArray(value)
	for _, item := range values {
		if array, ok := asArray(item); ok {
			for _, element := range array {
				flattened.add(element, true)
			}
		} else {
			flattened.add(item, true)
		}
	}

	return flattened.values
}
