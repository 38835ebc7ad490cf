package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("/reviews/", "image/jpeg")
	assert.True(t, strings.HasPrefix(key, "reviews/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	other := ObjectKey("reviews", "image/jpeg")
	assert.NotEqual(t, key, other)

	assert.True(t, strings.HasSuffix(ObjectKey("reviews", "application/x-unknown-kind"), ".bin"))
}
