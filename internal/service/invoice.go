package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewInvoiceID generates the customer-facing order reference, distinct
// from the database id. Format: INV-YYYYMMDD-XXXXXXXX.
func NewInvoiceID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s", time.Now().Format("20060102"), suffix)
}
