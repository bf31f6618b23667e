package expiration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolveExpiry(t *testing.T) {
	wallTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("BSONDateTime", func(t *testing.T) {
		resolved, ok := ResolveExpiry(primitive.NewDateTimeFromTime(wallTime))
		assert.True(t, ok)
		assert.True(t, resolved.Equal(wallTime))
	})

	t.Run("BSONTimestamp", func(t *testing.T) {
		resolved, ok := ResolveExpiry(primitive.Timestamp{T: uint32(wallTime.Unix())})
		assert.True(t, ok)
		assert.True(t, resolved.Equal(wallTime))
	})

	t.Run("NativeTime", func(t *testing.T) {
		resolved, ok := ResolveExpiry(wallTime)
		assert.True(t, ok)
		assert.True(t, resolved.Equal(wallTime))
	})

	t.Run("TimePointer", func(t *testing.T) {
		resolved, ok := ResolveExpiry(&wallTime)
		assert.True(t, ok)
		assert.True(t, resolved.Equal(wallTime))

		_, ok = ResolveExpiry((*time.Time)(nil))
		assert.False(t, ok)
	})

	t.Run("ISOString", func(t *testing.T) {
		resolved, ok := ResolveExpiry("2020-01-01T00:00:00Z")
		assert.True(t, ok)
		assert.True(t, resolved.Equal(wallTime))

		resolved, ok = ResolveExpiry("2020-01-01")
		assert.True(t, ok)
		assert.True(t, resolved.Equal(wallTime))
	})

	t.Run("Unresolvable", func(t *testing.T) {
		for _, v := range []interface{}{nil, "not-a-date", 42, 3.14, true, map[string]interface{}{}} {
			_, ok := ResolveExpiry(v)
			assert.False(t, ok, "expected %v (%T) to be unresolvable", v, v)
		}
	})
}
