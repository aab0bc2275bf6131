package nfc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type flakyReader struct {
	calls int
}

func (f *flakyReader) ReadTag(context.Context) (string, bool, error) {
	f.calls++
	switch f.calls {
	case 1:
		return "", false, errors.New("intent unavailable")
	case 2:
		return "", false, nil
	default:
		return "BNaF2g==", true, nil
	}
}

func TestTagID_Base64(t *testing.T) {
	assert.Equal(t, "BNaF2g==", TagID([]byte{0x04, 0xd6, 0x85, 0xda}))
}

func TestPoller_RetriesAfterErrorThenLatches(t *testing.T) {
	ctx := context.Background()
	r := &flakyReader{}
	p := NewPoller(r, nil)

	_, ok := p.Poll(ctx)
	assert.False(t, ok)
	_, ok = p.Poll(ctx)
	assert.False(t, ok)

	tag, ok := p.Poll(ctx)
	assert.True(t, ok)
	assert.Equal(t, "BNaF2g==", tag)

	tag, ok = p.Poll(ctx)
	assert.True(t, ok)
	assert.Equal(t, "BNaF2g==", tag)
	assert.Equal(t, 3, r.calls, "latched tag is not re-read")

	p.Reset()
	p.Poll(ctx)
	assert.Equal(t, 4, r.calls)
}

func TestQueue_FIFO(t *testing.T) {
	ctx := context.Background()
	q := NewQueue()
	q.Push("a")
	q.Push("b")
	assert.Equal(t, 2, q.Len())

	tag, ok, err := q.ReadTag(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", tag)

	tag, _, _ = q.ReadTag(ctx)
	assert.Equal(t, "b", tag)

	_, ok, err = q.ReadTag(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = q.ReadTag(cancelled)
	assert.Error(t, err)
}

func TestPoller_NilReader(t *testing.T) {
	_, ok := NewPoller(nil, nil).Poll(context.Background())
	assert.False(t, ok)
}
