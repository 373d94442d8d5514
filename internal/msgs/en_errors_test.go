package msgs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFfeBadPrefix(t *testing.T) {
	assert.Panics(t, func() {
		ffe("notvalid", "")
	})
}
