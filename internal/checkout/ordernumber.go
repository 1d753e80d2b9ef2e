package checkout

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOrderNumber produces a human-readable order reference of the form
// PREFIX-YYYYMMDD-XXXXXXXX, where the suffix is 8 uppercase hex characters.
// Uniqueness is enforced by the database; callers regenerate on collision.
func GenerateOrderNumber(prefix string, now time.Time) string {
	id := uuid.New()
	suffix := strings.ToUpper(hex.EncodeToString(id[:4]))
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102"), suffix)
}
