// Package fixtures holds mock responses of the upstream feeds served when RETURN_MOCK_DATA is set
// without FIXTURE_DIR or FIXTURE_BUCKET.
package fixtures

import "embed"

//go:embed *.json
var Files embed.FS
