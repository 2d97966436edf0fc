// Package matrix holds the inter-company relationship matrix handed to the
// downstream graph stage.
package matrix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Relationship is one typed link between two companies.
type Relationship struct {
	Type     string   `json:"type" yaml:"type"`
	Strength any      `json:"strength,omitempty" yaml:"strength,omitempty"`
	Evidence []string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// Relationships is the extracted relationship record for a company pair.
type Relationships struct {
	CompanyA      string         `json:"company_a" yaml:"company_a"`
	CompanyB      string         `json:"company_b" yaml:"company_b"`
	Relationships []Relationship `json:"relationships" yaml:"relationships"`
}

const relationshipsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["company_a", "company_b", "relationships"],
  "properties": {
    "company_a": {"type": "string", "minLength": 1},
    "company_b": {"type": "string", "minLength": 1},
    "relationships": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": {"type": "string", "minLength": 1},
          "strength": {"type": ["number", "string"]},
          "evidence": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("relationships.json", bytes.NewReader([]byte(relationshipsSchema))); err != nil {
		return nil, fmt.Errorf("load relationships schema: %w", err)
	}
	return compiler.Compile("relationships.json")
})

// ValidateRelationships checks raw JSON against the relationships schema and
// decodes it.
func ValidateRelationships(raw []byte) (Relationships, error) {
	schema, err := compiledSchema()
	if err != nil {
		return Relationships{}, err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Relationships{}, fmt.Errorf("decode relationships: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Relationships{}, fmt.Errorf("relationships do not match schema: %w", err)
	}

	var rels Relationships
	if err := json.Unmarshal(raw, &rels); err != nil {
		return Relationships{}, fmt.Errorf("decode relationships: %w", err)
	}
	return rels, nil
}
