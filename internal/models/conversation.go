package models

import (
	"sort"
	"time"
)

// Conversation is the direct-message thread between exactly two users.
// Messages are kept in insertion order, which is send order.
type Conversation struct {
	// ID is the unique identifier for the conversation and never changes
	ID string `json:"id" bson:"_id"`

	// PairKey is the canonical key of the participant pair, unique per store
	PairKey string `json:"-" bson:"pairKey"`

	Participants []string  `json:"participants" bson:"participants"`
	Messages     []Message `json:"messages" bson:"messages"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`

	// UpdatedAt moves forward on every append and orders conversation lists
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// PairKey returns the order-independent key for the pair {a, b}.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// SortedMessages returns a copy of the log ordered by CreatedAt, keeping
// insertion order between equal timestamps.
func (c *Conversation) SortedMessages() []Message {
	out := make([]Message, len(c.Messages))
	copy(out, c.Messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// LastMessage returns the most recent message, if any.
func (c *Conversation) LastMessage() (Message, bool) {
	msgs := c.SortedMessages()
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// CreateConversationRequest is the request body for opening a conversation
type CreateConversationRequest struct {
	ParticipantA string `json:"participantA"`
	ParticipantB string `json:"participantB"`
}

// ConversationView is a conversation with participants and messages resolved.
type ConversationView struct {
	ID           string        `json:"id"`
	Participants []UserSummary `json:"participants"`
	Messages     []MessageView `json:"messages"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ConversationListItem is one row of a user's inbox.
type ConversationListItem struct {
	ID           string        `json:"id"`
	Participants []UserSummary `json:"participants"`
	LastMessage  *MessageView  `json:"lastMessage"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
