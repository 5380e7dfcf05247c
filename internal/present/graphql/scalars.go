package graphql

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateOnly = "2006-01-02"

// DateTime is an RFC 3339 timestamp. Plain dates are accepted on input.
type DateTime struct {
	time.Time
}

func (DateTime) ImplementsGraphQLType(name string) bool {
	return name == "DateTime"
}

func (t *DateTime) UnmarshalGraphQL(input interface{}) error {
	switch input := input.(type) {
	case time.Time:
		t.Time = input.UTC()
		return nil
	case string:
		parsed, err := time.Parse(time.RFC3339, input)
		if err != nil {
			parsed, err = time.Parse(dateOnly, input)
			if err != nil {
				return fmt.Errorf("invalid DateTime %q", input)
			}
		}
		t.Time = parsed.UTC()
		return nil
	case int32:
		t.Time = time.UnixMilli(int64(input)).UTC()
		return nil
	case float64:
		t.Time = time.UnixMilli(int64(input)).UTC()
		return nil
	default:
		return fmt.Errorf("wrong type for DateTime: %T", input)
	}
}

func (t DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
