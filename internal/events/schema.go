package events

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const submissionSchemaURL = "https://eventsink.local/schemas/submission.schema.json"

const submissionSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["type", "src", "data"],
	"properties": {
		"type": {"type": "string"},
		"src": {"type": "string"},
		"data": true
	}
}`

// SubmissionSchema checks that a parsed body carries the fields an event
// record needs.
type SubmissionSchema struct {
	schema *jsonschema.Schema
}

// NewSubmissionSchema compiles the submission schema.
func NewSubmissionSchema() (*SubmissionSchema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(submissionSchemaURL, strings.NewReader(submissionSchema)); err != nil {
		return nil, fmt.Errorf("submission schema load failed: %w", err)
	}
	compiled, err := c.Compile(submissionSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("submission schema compile failed: %w", err)
	}
	return &SubmissionSchema{schema: compiled}, nil
}

// Validate converts a parsed body into a Submission.
func (s *SubmissionSchema) Validate(body any) (Submission, error) {
	if err := s.schema.Validate(body); err != nil {
		return Submission{}, classifySchemaError(err)
	}
	obj := body.(map[string]any)
	return Submission{
		Type: obj["type"].(string),
		Src:  obj["src"].(string),
		Data: obj["data"],
	}, nil
}

func classifySchemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return newError(InvalidField, "Invalid event body", err)
	}

	leaves := schemaLeaves(ve, nil)
	for _, leaf := range leaves {
		if strings.HasSuffix(leaf.KeywordLocation, "/required") {
			return newError(MissingRequiredField, fmt.Sprintf("Missing required field (%s)", leaf.Message), err)
		}
	}
	leaf := leaves[0]
	loc := leaf.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return newError(InvalidField, fmt.Sprintf("Invalid event body (%s: %s)", loc, leaf.Message), err)
}

func schemaLeaves(ve *jsonschema.ValidationError, acc []*jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return append(acc, ve)
	}
	for _, c := range ve.Causes {
		acc = schemaLeaves(c, acc)
	}
	return acc
}
