// Package analytics injects the third-party analytics loader into a page and
// owns the command queue the loader consumes.
package analytics

import (
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/briancabello/briancabello.github.io/dom"
	"github.com/briancabello/briancabello.github.io/log"
	"go.uber.org/zap"
)

const loaderURL = "https://www.googletagmanager.com/gtag/js"

// Call is one command pushed to the queue, e.g. ["config", "G-XXXX"].
type Call []any

// Injector owns the command queue of one page. It must be created with
// NewInjector before any call is queued.
type Injector struct {
	clock func() time.Time
	log   *zap.SugaredLogger

	mu       sync.Mutex
	queue    []Call
	injected string
}

func NewInjector(clock func() time.Time) *Injector {
	if clock == nil {
		clock = time.Now
	}

	return &Injector{
		clock: clock,
		log:   log.S().Named("analytics"),
		queue: []Call{},
	}
}

// Inject adds the asynchronous loader for trackingID to the head of doc,
// queues the "js" and "config" commands and adds an inline script replaying
// the queue into the page. Injecting twice into the same page is a no-op.
func (i *Injector) Inject(doc *dom.Document, trackingID string) error {
	trackingID = strings.TrimSpace(trackingID)
	if trackingID == "" {
		return fmt.Errorf("analytics: empty tracking id")
	}

	i.mu.Lock()
	if i.injected != "" {
		i.mu.Unlock()
		return nil
	}

	i.injected = trackingID
	i.queue = append(i.queue,
		Call{"js", i.clock().UTC()},
		Call{"config", trackingID},
	)
	script, err := i.inlineScript()
	i.mu.Unlock()
	if err != nil {
		return err
	}

	src := loaderURL + "?id=" + url.QueryEscape(trackingID)
	doc.AppendHead(`<script async src="` + html.EscapeString(src) + `"></script>` + script)

	i.log.Infof("analytics loaded: %s", trackingID)
	return nil
}

// Queue returns a copy of the queued commands.
func (i *Injector) Queue() []Call {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]Call(nil), i.queue...)
}

// Called with i.mu held.
func (i *Injector) inlineScript() (string, error) {
	var b strings.Builder
	b.WriteString("<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}")

	for _, call := range i.queue {
		args := make([]string, 0, len(call))
		for _, arg := range call {
			if t, ok := arg.(time.Time); ok {
				args = append(args, fmt.Sprintf("new Date(%d)", t.UnixMilli()))
				continue
			}

			raw, err := json.Marshal(arg)
			if err != nil {
				return "", err
			}
			args = append(args, string(raw))
		}
		b.WriteString("gtag(" + strings.Join(args, ",") + ");")
	}

	b.WriteString("</script>")
	return b.String(), nil
}
