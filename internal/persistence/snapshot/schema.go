package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"cityanalysis/internal/city"
)

// citySchema pins only what the run cannot do without. Everything below
// CityEntities is loosely typed and parsed defensively.
const citySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["CityEntities"],
  "properties": {
    "CityEntities": {"type": "object"}
  }
}`

const citySchemaURL = "city.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiled() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(citySchemaURL, strings.NewReader(citySchema)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(citySchemaURL)
	})
	return schema, schemaErr
}

// Validate checks the top level of a city document. A document without an
// entity mapping fails with city.ErrNoEntities.
func Validate(raw []byte) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("compile city schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%w: %v", city.ErrInvalidJSON, err)
	}
	if err := s.Validate(v); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return fmt.Errorf("%w: %s", city.ErrNoEntities, ve.Error())
		}
		return err
	}
	return nil
}
