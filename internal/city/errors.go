package city

import "errors"

// ErrNoEntities means the document has no CityEntities mapping. It is a
// run-level failure: nothing can be reported without it.
var ErrNoEntities = errors.New("CityEntities not found in JSON")

// ErrInvalidJSON means the input is not a JSON document at all.
var ErrInvalidJSON = errors.New("input is not valid JSON")
