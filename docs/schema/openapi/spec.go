// Package openapi embeds the auditdesk HTTP API description for runtime
// distribution.
package openapi

import _ "embed"

// APISpec contains the OpenAPI document for the /api/v1 routes.
//
//go:embed auditdesk.yaml
var APISpec []byte

// Spec returns a copy of the embedded OpenAPI YAML.
func Spec() []byte {
	return append([]byte(nil), APISpec...)
}
