package orders

import (
	"strings"

	"github.com/google/uuid"
)

// NewReference generates a short, human-readable order reference. The random
// segment comes from a UUID so both stores can mint references without
// coordinating a sequence.
func NewReference() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}
