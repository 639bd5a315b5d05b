package dto

import "encoding/json"

// Optional distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present in the body.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Ptr returns the value, nil for null, and ok=false when the field was absent.
func (o Optional[T]) Ptr() (value *T, ok bool) {
	if !o.Set {
		return nil, false
	}
	if o.Null {
		return nil, true
	}
	v := o.Value
	return &v, true
}
