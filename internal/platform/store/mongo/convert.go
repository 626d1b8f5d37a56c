package mongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// FromJSON decodes a JSON object into an ordered BSON document
// numbers follow relaxed extended JSON: integers stay integers, the rest are doubles
func FromJSON(raw []byte) (bson.D, error) {
	var d bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &d); err != nil {
		return nil, fmt.Errorf("mongo: decode json: %w", err)
	}
	return d, nil
}

// ValueFromJSON decodes any JSON value, arrays and scalars included
func ValueFromJSON(raw []byte) (any, error) {
	wrapped := make([]byte, 0, len(raw)+6)
	wrapped = append(wrapped, `{"v":`...)
	wrapped = append(wrapped, raw...)
	wrapped = append(wrapped, '}')
	d, err := FromJSON(wrapped)
	if err != nil {
		return nil, err
	}
	if len(d) != 1 {
		return nil, fmt.Errorf("mongo: decode json value: %d members", len(d))
	}
	return d[0].Value, nil
}

// ToJSON renders v as relaxed extended JSON
func ToJSON(v any) ([]byte, error) {
	b, err := bson.MarshalExtJSON(v, false, false)
	if err != nil {
		return nil, fmt.Errorf("mongo: encode json: %w", err)
	}
	return b, nil
}

// Set replaces key in d, appending it when missing
func Set(d bson.D, key string, v any) bson.D {
	for i := range d {
		if d[i].Key == key {
			d[i].Value = v
			return d
		}
	}
	return append(d, bson.E{Key: key, Value: v})
}
