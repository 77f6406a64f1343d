package solve

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sheetsage/sheetsage/pkg/model"
	"google.golang.org/genai"
)

// outputSchema is the contract of the generation flow. It drives both the
// provider's constrained decoding and the local fail-closed validation of
// the response, so the two can never drift apart.
var outputSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"stepByStepGuide": {
			Type:        "string",
			Description: "Step-by-step guide to solve the spreadsheet problem, formatted as clean, semantic HTML using tags like <p>, <ul>, <li>, <strong> and <code>. Must be self-contained and ready for direct rendering.",
		},
		"formula": {
			Type:        "string",
			Description: "The required spreadsheet formula to solve the problem, as plain text, not HTML.",
		},
		"explanation": {
			Type:        "string",
			Description: "Explanation of how the formula works, formatted as clean, semantic HTML using tags like <p>, <ul>, <li>, <strong> and <code>. Must be self-contained and ready for direct rendering.",
		},
	},
	Required: []string{"stepByStepGuide", "formula", "explanation"},
}

// convertJSONSchemaToGenai converts a JSON Schema to a Gemini genai.Schema
func convertJSONSchemaToGenai(schema *jsonschema.Schema) (*genai.Schema, error) {
	if schema == nil {
		return nil, nil
	}

	genaiSchema := &genai.Schema{}

	switch schema.Type {
	case "object":
		genaiSchema.Type = genai.TypeObject
	case "string":
		genaiSchema.Type = genai.TypeString
	case "number", "integer":
		genaiSchema.Type = genai.TypeNumber
	case "boolean":
		genaiSchema.Type = genai.TypeBoolean
	case "array":
		genaiSchema.Type = genai.TypeArray
	default:
		if schema.Type != "" {
			return nil, goerr.New("unsupported schema type", goerr.V("type", schema.Type))
		}
	}

	if schema.Description != "" {
		genaiSchema.Description = schema.Description
	}

	if len(schema.Properties) > 0 {
		genaiSchema.Properties = make(map[string]*genai.Schema)
		for name, propSchema := range schema.Properties {
			converted, err := convertJSONSchemaToGenai(propSchema)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to convert property schema",
					goerr.V("property", name))
			}
			genaiSchema.Properties[name] = converted
		}
	}

	if len(schema.Required) > 0 {
		genaiSchema.Required = schema.Required
	}

	if schema.Items != nil {
		converted, err := convertJSONSchemaToGenai(schema.Items)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to convert items schema")
		}
		genaiSchema.Items = converted
	}

	return genaiSchema, nil
}

// parseSolution validates raw response JSON against the output contract.
// Missing or mistyped fields fail the whole response; no coercion, no
// partially-typed result. Empty strings are allowed.
func parseSolution(raw []byte) (*model.Solution, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, goerr.Wrap(err, "response is not a JSON object", goerr.V("json", string(raw)))
	}

	values := make(map[string]string, len(outputSchema.Required))
	for _, name := range outputSchema.Required {
		rawField, ok := fields[name]
		if !ok {
			return nil, goerr.New("response is missing a required field",
				goerr.V("field", name), goerr.V("json", string(raw)))
		}
		var s string
		if err := json.Unmarshal(rawField, &s); err != nil {
			return nil, goerr.Wrap(err, "response field is not a string",
				goerr.V("field", name), goerr.V("json", string(raw)))
		}
		values[name] = s
	}

	return &model.Solution{
		StepByStepGuide: values["stepByStepGuide"],
		Formula:         values["formula"],
		Explanation:     values["explanation"],
	}, nil
}
