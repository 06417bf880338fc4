package docstore

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

type Operator string

const (
	Equal          Operator = "=="
	GreaterOrEqual Operator = ">="
	LessOrEqual    Operator = "<="
	Greater        Operator = ">"
	Less           Operator = "<"
)

// PrefixSentinel is appended to a prefix to build the upper bound of a title range.
const PrefixSentinel = "\uf8ff"

type Filter struct {
	Field string
	Op    Operator
	Value any
}

func (f Filter) String() string {
	value, err := json.Marshal(f.Value)
	if err != nil {
		value = []byte(fmt.Sprintf("%v", f.Value))
	}
	return f.Field + string(f.Op) + string(value)
}

// Query is an immutable description of a filtered view over one collection.
// Filters are combined with logical AND.
type Query struct {
	Collection string
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

func Collection(name string) Query {
	return Query{Collection: name}
}

func (q Query) Where(field string, op Operator, value any) Query {
	filters := make([]Filter, 0, len(q.Filters)+1)
	filters = append(filters, q.Filters...)
	q.Filters = append(filters, Filter{Field: field, Op: op, Value: normalize(value)})
	return q
}

// WithPrefix restricts field to the half-open range [prefix, prefix+PrefixSentinel).
func (q Query) WithPrefix(field string, prefix string) Query {
	return q.Where(field, GreaterOrEqual, prefix).Where(field, Less, prefix+PrefixSentinel)
}

func (q Query) Order(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

func (q Query) Take(limit int) Query {
	q.Limit = limit
	return q
}

func (q Query) Validate() error {

	if q.Collection == "" {
		return fmt.Errorf("query has no collection")
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}

	for _, filter := range q.Filters {
		if filter.Field == "" {
			return fmt.Errorf("filter without field in query on %s", q.Collection)
		}
		switch filter.Op {
		case Equal, GreaterOrEqual, LessOrEqual, Greater, Less:
		default:
			return fmt.Errorf("unsupported operator %q", filter.Op)
		}
	}
	return nil
}

// Key is the canonical scope key of the query. Filter order does not change the key.
func (q Query) Key() string {

	parts := make([]string, 0, len(q.Filters))
	for _, filter := range q.Filters {
		parts = append(parts, filter.String())
	}
	sort.Strings(parts)

	key := q.Collection + "?" + strings.Join(parts, "&")
	if q.OrderBy != "" {
		key += "#order=" + q.OrderBy
		if q.Descending {
			key += ":desc"
		}
	}
	if q.Limit > 0 {
		key += "#limit=" + strconv.Itoa(q.Limit)
	}
	return key
}

func (q Query) Matches(doc Document) bool {
	for _, filter := range q.Filters {
		value, ok := doc.Field(filter.Field)
		if !ok {
			return false
		}
		if !filter.matches(value) {
			return false
		}
	}
	return true
}

func (f Filter) matches(value any) bool {

	if f.Op == Equal {
		if cmp, ok := compareValues(value, f.Value); ok {
			return cmp == 0
		}
		return reflect.DeepEqual(value, f.Value)
	}

	cmp, ok := compareValues(value, f.Value)
	if !ok {
		return false
	}

	switch f.Op {
	case GreaterOrEqual:
		return cmp >= 0
	case LessOrEqual:
		return cmp <= 0
	case Greater:
		return cmp > 0
	case Less:
		return cmp < 0
	default:
		return false
	}
}

// compareValues orders two decoded JSON values. Values of different kinds are not comparable.
func compareValues(a, b any) (int, bool) {
	switch left := a.(type) {
	case float64:
		right, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case left < right:
			return -1, true
		case left > right:
			return 1, true
		default:
			return 0, true
		}
	case string:
		right, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(left, right), true
	case bool:
		right, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case left == right:
			return 0, true
		case !left:
			return -1, true
		default:
			return 1, true
		}
	case nil:
		if b == nil {
			return 0, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// normalize brings a filter value into the shape it has inside a decoded document.
func normalize(value any) any {
	data, err := json.Marshal(value)
	if err != nil {
		return value
	}
	var decoded any
	if err = json.Unmarshal(data, &decoded); err != nil {
		return value
	}
	return decoded
}
