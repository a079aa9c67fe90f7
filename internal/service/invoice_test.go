package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInvoiceID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^INV-\d{8}-[0-9A-F]{8}$`)

	id := NewInvoiceID()
	assert.Regexp(t, pattern, id)
}

func TestNewInvoiceID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewInvoiceID()
		assert.False(t, seen[id], "duplicate invoice id %s", id)
		seen[id] = true
	}
}
