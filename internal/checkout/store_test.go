package checkout_test

import (
	"testing"
	"time"

	"lipa/internal/checkout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddGetRemove(t *testing.T) {
	st := checkout.NewStore(time.Minute)
	sess := checkout.New("abc", &fakeProvider{}, checkout.Options{Timings: fastTimings()})
	sess.UserID = 7

	st.Add(sess)
	got, ok := st.Get("abc")
	require.True(t, ok)
	assert.Equal(t, uint(7), got.UserID)
	assert.Equal(t, 1, st.Len())

	_, ok = st.Get("missing")
	assert.False(t, ok)

	st.Remove("abc")
	_, ok = st.Get("abc")
	assert.False(t, ok)
	assert.Zero(t, st.Len())
}
