package api

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"instantcredit-agents/internal/underwriting"
)

var turnRequestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"conversationId", "message"},
	"properties": map[string]interface{}{
		"conversationId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"message": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 2000,
		},
	},
	"additionalProperties": false,
}

var evaluateRequestSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"customerId", "loanAmount", "tenure"},
	"properties": map[string]interface{}{
		"customerId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"loanAmount": map[string]interface{}{
			"type":             "number",
			"exclusiveMinimum": 0,
		},
		"tenure": map[string]interface{}{
			"type":    "integer",
			"minimum": 1,
			"maximum": underwriting.MaxTenureYears,
		},
		"salary": map[string]interface{}{
			"type":             "number",
			"exclusiveMinimum": 0,
		},
	},
	"additionalProperties": false,
}

func validateAgainst(schemaMap map[string]interface{}, data map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("request validation failed: %v", errs)
	}

	return nil
}
