// Package nfc adapts tag acquisition to the game loop. Reading tags from
// the device is someone else's job; this package only sees identifiers.
package nfc

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/FrankDatema/MindHop/internal/logx"
)

// TagID encodes a raw tag id payload the way tags are written in the catalog.
func TagID(payload []byte) string {
	return base64.StdEncoding.EncodeToString(payload)
}

// Reader delivers scanned tag identifiers. ok is false when no tag is present.
type Reader interface {
	ReadTag(ctx context.Context) (tag string, ok bool, err error)
}

// Poller reads from a Reader once per frame until a tag is found, then
// latches it until Reset.
type Poller struct {
	r     Reader
	log   *logx.Logger
	found bool
	tag   string
}

func NewPoller(r Reader, logger *logx.Logger) *Poller {
	return &Poller{r: r, log: logger}
}

// Poll returns the latched tag, reading once if none is latched yet.
// Read errors are logged and retried on the next call.
func (p *Poller) Poll(ctx context.Context) (string, bool) {
	if p.found {
		return p.tag, true
	}
	if p.r == nil {
		return "", false
	}
	tag, ok, err := p.r.ReadTag(ctx)
	if err != nil {
		p.log.Warn("tag_read_failed", logx.Fields{"error": err})
		return "", false
	}
	tag = strings.TrimSpace(tag)
	if !ok || tag == "" {
		return "", false
	}
	p.found = true
	p.tag = tag
	return tag, true
}

// Reset re-arms the poller for the next tag.
func (p *Poller) Reset() {
	p.found = false
	p.tag = ""
}

// Queue is an in-memory Reader fed by Push.
type Queue struct {
	mu   sync.Mutex
	tags []string
}

func NewQueue() *Queue { return &Queue{} }

func (q *Queue) Push(tag string) {
	q.mu.Lock()
	q.tags = append(q.tags, tag)
	q.mu.Unlock()
}

func (q *Queue) ReadTag(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tags) == 0 {
		return "", false, nil
	}
	tag := q.tags[0]
	q.tags = q.tags[1:]
	return tag, true, nil
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tags)
}
