// internal/workers/pricing/send-premium-quote/validation.go
package sendpremiumquote

import "premium-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
  "type": "object",
  "required": ["premium"],
  "properties": {
    "applicantId":      {"type": "string", "minLength": 1, "maxLength": 255},
    "email":            {"type": "string", "format": "email"},
    "phone":            {"type": "string", "pattern": "^\\+[1-9][0-9]{7,14}$"},
    "predictionId":     {"type": "string"},
    "premium":          {"type": "number", "minimum": 0},
    "formattedPremium": {"type": "string"},
    "band":             {"type": "string", "enum": ["young", "adult"]},
    "policyVersion":    {"type": "string"}
  },
  "anyOf": [
    {"required": ["applicantId"]},
    {"required": ["email"]},
    {"required": ["phone"]}
  ]
}`)

func GetInputSchema() *validation.Schema {
	return inputSchema
}
