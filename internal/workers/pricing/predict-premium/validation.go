// internal/workers/pricing/predict-premium/validation.go
package predictpremium

import "premium-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "properties": {
    "applicantId": {"type": "string", "minLength": 1, "maxLength": 255},
    "applicant":   {"type": "object"}
  },
  "anyOf": [
    {"required": ["applicantId"]},
    {"required": ["applicant"]}
  ]
}`)

// GetInputSchema returns the compiled job input schema.
func GetInputSchema() *validation.Schema {
	return inputSchema
}
