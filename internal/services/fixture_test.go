package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/store/memory"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.MessageEvent
	to     [][]string
}

func (n *recordingNotifier) MessageAppended(_ context.Context, participants []string, event models.MessageEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	n.to = append(n.to, participants)
}

type fixture struct {
	conversations *memory.ConversationStore
	directory     *memory.Directory
	convs         *ConversationService
	messages      *MessageService
	notifier      *recordingNotifier
	clock         time.Time
}

// newFixture seeds alice, bob and carol, plus carol's post p1.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		conversations: memory.NewConversationStore(),
		directory:     memory.NewDirectory(),
		notifier:      &recordingNotifier{},
		clock:         time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.directory.PutUser(models.User{ID: "alice", Username: "alice", ProfilePic: "https://cdn/alice.png", Following: []string{"bob"}})
	f.directory.PutUser(models.User{ID: "bob", Username: "bob", ProfilePic: "https://cdn/bob.png"})
	f.directory.PutUser(models.User{ID: "carol", Username: "carol"})
	f.directory.PutPost(models.Post{ID: "p1", Author: "carol", Media: []string{"https://cdn/p1.jpg"}, Caption: "sunset"})

	tick := func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}

	f.convs = NewConversationService(f.conversations, f.directory)
	f.convs.now = tick
	f.messages = NewMessageService(f.conversations, f.directory, f.convs)
	f.messages.now = tick
	f.messages.SetNotifier(f.notifier)
	return f
}
