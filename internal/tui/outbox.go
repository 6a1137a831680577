// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdiddy/neurosynth-explorer/internal/controller"
	"github.com/pdiddy/neurosynth-explorer/internal/studies"
)

// Messages produced by Outbox, one per controller.View call.
type (
	loadingMsg struct{ panel controller.Panel }
	noticeMsg  struct {
		panel controller.Panel
		text  string
	}
	clearMsg struct{ panel controller.Panel }
	errorMsg struct {
		panel controller.Panel
		err   error
	}
	termsMsg   struct{ terms []string }
	relatedMsg struct {
		term  string
		terms []string
	}
	studiesMsg struct {
		shown []studies.Record
		total int
	}
)

// Outbox is the controller.View of the terminal UI. The controller calls
// it with its lock held while Update may be calling the controller, so
// Outbox never blocks: it queues messages and Run delivers them to the
// program in order.
type Outbox struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

// NewOutbox returns an empty Outbox.
func NewOutbox() *Outbox {
	return &Outbox{wake: make(chan struct{}, 1)}
}

func (o *Outbox) push(m tea.Msg) {
	o.mu.Lock()
	o.queue = append(o.queue, m)
	o.mu.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Outbox) drain() []tea.Msg {
	o.mu.Lock()
	defer o.mu.Unlock()
	q := o.queue
	o.queue = nil
	return q
}

// Run passes queued messages to send in order until ctx ends.
func (o *Outbox) Run(ctx context.Context, send func(tea.Msg)) {
	for {
		for _, m := range o.drain() {
			if ctx.Err() != nil {
				return
			}
			send(m)
		}
		select {
		case <-ctx.Done():
			return
		case <-o.wake:
		}
	}
}

func (o *Outbox) Loading(p controller.Panel)            { o.push(loadingMsg{p}) }
func (o *Outbox) Notice(p controller.Panel, msg string) { o.push(noticeMsg{p, msg}) }
func (o *Outbox) Clear(p controller.Panel)              { o.push(clearMsg{p}) }
func (o *Outbox) Error(p controller.Panel, err error)   { o.push(errorMsg{p, err}) }
func (o *Outbox) Terms(terms []string)                  { o.push(termsMsg{terms}) }
func (o *Outbox) Related(term string, terms []string)   { o.push(relatedMsg{term, terms}) }
func (o *Outbox) Studies(shown []studies.Record, total int) {
	o.push(studiesMsg{shown, total})
}
