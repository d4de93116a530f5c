// Package timeline is the client-side view of one conversation. It merges
// optimistic sends with server echoes so every message renders once.
package timeline

import (
	"sort"
	"sync"
	"time"

	"github.com/vibehub/backend/internal/models"
)

// Status of a timeline entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Entry is one rendered message. Message.ID is empty until the server
// confirms it.
type Entry struct {
	TempID  string
	Message models.MessageView
	Status  Status

	// Request is kept so a failed send can be retried unchanged
	Request models.SendMessageRequest
}

// Timeline holds the entries of a single conversation, ordered by createdAt.
// It is safe for concurrent use.
type Timeline struct {
	mu             sync.Mutex
	conversationID string
	entries        []Entry
	now            func() time.Time
}

// New starts a timeline from already persisted history.
func New(conversationID string, history []models.MessageView) *Timeline {
	t := &Timeline{conversationID: conversationID, now: time.Now}
	for _, m := range history {
		t.entries = append(t.entries, Entry{Message: m, Status: StatusConfirmed})
	}
	t.sortLocked()
	return t
}

// AddPending records an optimistic entry for a message about to be sent.
func (t *Timeline) AddPending(tempID string, sender models.UserSummary, req models.SendMessageRequest) Entry {
	msg := models.MessageView{Sender: sender, CreatedAt: t.now()}
	if req.PostID != "" {
		// a postId always makes a post share with no text
		msg.Type = models.MessagePost
		msg.PostID = req.PostID
	} else {
		msg.Type = req.Type
		if msg.Type == "" {
			msg.Type = models.MessageText
			if req.FileURL != "" {
				msg.Type = models.KindFromMIME(req.FileType)
			}
		}
		msg.Text = req.Text
		msg.FileURL, msg.FileType, msg.FileName = req.FileURL, req.FileType, req.FileName
	}
	e := Entry{TempID: tempID, Status: StatusPending, Message: msg, Request: req}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, e)
	t.sortLocked()
	return e
}

// Apply merges a receive_message event. An event whose server id or tempId
// is already known is a duplicate and is ignored; a tempId matching a
// pending entry confirms it. Apply reports whether the timeline changed.
func (t *Timeline) Apply(ev models.MessageEvent) bool {
	if ev.ConversationID != t.conversationID {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		e := &t.entries[i]
		if e.Message.ID != "" && e.Message.ID == ev.Message.ID {
			return false
		}
		if ev.TempID != "" && e.TempID == ev.TempID {
			if e.Status == StatusConfirmed {
				return false
			}
			e.Message = ev.Message
			e.Status = StatusConfirmed
			t.sortLocked()
			return true
		}
	}

	t.entries = append(t.entries, Entry{TempID: ev.TempID, Message: ev.Message, Status: StatusConfirmed})
	t.sortLocked()
	return true
}

// Fail marks a pending entry as failed after an error frame for tempID.
func (t *Timeline) Fail(tempID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].TempID == tempID && t.entries[i].Status == StatusPending {
			t.entries[i].Status = StatusFailed
			return true
		}
	}
	return false
}

// Retry moves a failed entry back to pending and returns it so the caller
// can resend its Request with the same tempId.
func (t *Timeline) Retry(tempID string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].TempID == tempID && t.entries[i].Status == StatusFailed {
			t.entries[i].Status = StatusPending
			return t.entries[i], true
		}
	}
	return Entry{}, false
}

// Entries returns a snapshot in display order.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

func (t *Timeline) sortLocked() {
	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].Message.CreatedAt.Before(t.entries[j].Message.CreatedAt)
	})
}
