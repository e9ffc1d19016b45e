package convert

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ValidatePDF checks that data is a structurally sound PDF. The
// rendering service is external; a misconfigured endpoint can hand back
// HTML error pages or truncated streams, and those should fail the item
// rather than end up inside the archive.
func ValidatePDF(data []byte) error {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return fmt.Errorf("missing PDF header")
	}
	return api.Validate(bytes.NewReader(data), nil)
}
