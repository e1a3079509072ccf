package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// numberPrefix keeps order numbers human-recognizable on bank
// statements and support tickets.
const numberPrefix = "EC"

// NewOrderNumber returns a candidate order number: prefix, millisecond
// timestamp, and a random suffix. Uniqueness is ultimately enforced by
// the store's unique constraint, not by this function.
func NewOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s%d%s", numberPrefix, time.Now().UnixMilli(), suffix)
}
