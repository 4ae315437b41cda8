package models

import (
	"container/list"
	"sync"
	"time"

	"github.com/dyike/MoneyScope/consts"
)

// StageEvent reports a pipeline stage changing status.
type StageEvent struct {
	Stage  Stage
	Status string
	Err    error
	At     time.Time
}

type Message struct {
	Timestamp string
	Stage     string
	Content   string
}

// ProgressBuffer collects stage events for display. It keeps the latest status
// of every stage and a bounded log of messages.
type ProgressBuffer struct {
	mu          sync.Mutex
	messages    *list.List
	maxLength   int
	stageStatus map[Stage]string
	current     Stage
}

func NewProgressBuffer(maxLength int) *ProgressBuffer {
	status := make(map[Stage]string, len(Stages))
	for _, s := range Stages {
		status[s] = consts.State_Pending
	}
	return &ProgressBuffer{
		messages:    list.New(),
		maxLength:   maxLength,
		stageStatus: status,
	}
}

// Observe records evt. It matches the pipeline observer signature.
func (b *ProgressBuffer) Observe(evt StageEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stageStatus[evt.Stage] = evt.Status
	if evt.Status == consts.State_Running {
		b.current = evt.Stage
	}

	content := evt.Stage.Title() + ": " + evt.Status
	if evt.Err != nil {
		content += " (" + evt.Err.Error() + ")"
	}
	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}
	b.messages.PushBack(Message{
		Timestamp: at.Format("15:04:05"),
		Stage:     evt.Stage.String(),
		Content:   content,
	})
	for b.maxLength > 0 && b.messages.Len() > b.maxLength {
		b.messages.Remove(b.messages.Front())
	}
}

func (b *ProgressBuffer) Status(s Stage) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stageStatus[s]
}

func (b *ProgressBuffer) Current() Stage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Completed counts stages that finished.
func (b *ProgressBuffer) Completed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, st := range b.stageStatus {
		if st == consts.State_Finished {
			n++
		}
	}
	return n
}

func (b *ProgressBuffer) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, 0, b.messages.Len())
	for e := b.messages.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Message))
	}
	return out
}
