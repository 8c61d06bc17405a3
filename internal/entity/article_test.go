package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArticleSucceeded(t *testing.T) {
	assert.False(t, (*Article)(nil).Succeeded())
	assert.False(t, (&Article{}).Succeeded())
	assert.True(t, (&Article{Title: "Headline"}).Succeeded())
	assert.False(t, (&Article{Body: strings.Repeat("a", 500)}).Succeeded(), "exactly 500 is not enough")
	assert.True(t, (&Article{Body: strings.Repeat("a", 501)}).Succeeded())
	// counted in characters, not bytes
	assert.False(t, (&Article{Body: strings.Repeat("é", 300)}).Succeeded())
}
