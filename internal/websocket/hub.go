package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/vibehub/backend/internal/apperrors"
	"github.com/vibehub/backend/internal/models"
	"github.com/vibehub/backend/internal/observability"
	"github.com/vibehub/backend/internal/services"
)

// sendTimeout bounds the store work behind one send_message frame
const sendTimeout = 10 * time.Second

// MessageAppender persists a message and triggers its fan-out.
type MessageAppender interface {
	Append(ctx context.Context, in services.AppendInput) (*models.MessageEvent, error)
}

// MembershipChecker authorises conversation channel joins.
type MembershipChecker interface {
	CheckParticipant(ctx context.Context, conversationID, userID string) error
}

// Hub maintains the set of active clients and the channels they listen on.
// Each client may join its personal user channel and any number of
// conversation channels. Membership changes and deliveries are serialised
// through Run.
type Hub struct {
	// channels maps a channel name to the clients subscribed to it
	channels map[string]map[*Client]bool

	// clients maps each registered client to its channels, for cleanup
	clients map[*Client]map[string]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	deliver     chan delivery
	direct      chan directFrame
	stop        chan struct{}

	// mutex guarding the maps for readers outside Run
	mu sync.RWMutex

	broker        Broker
	messages      MessageAppender
	conversations MembershipChecker
	log           *slog.Logger
}

type subscription struct {
	client  *Client
	channel string
}

// delivery is an event coming back from the broker
type delivery struct {
	channel string
	payload []byte
}

// directFrame goes to one client only
type directFrame struct {
	client  *Client
	payload []byte
}

// NewHub creates a new Hub instance
func NewHub(broker Broker, messages MessageAppender, conversations MembershipChecker) *Hub {
	return &Hub{
		channels:      make(map[string]map[*Client]bool),
		clients:       make(map[*Client]map[string]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan subscription),
		unsubscribe:   make(chan subscription),
		deliver:       make(chan delivery, 256),
		direct:        make(chan directFrame, 64),
		stop:          make(chan struct{}),
		broker:        broker,
		messages:      messages,
		conversations: conversations,
		log:           observability.WithFields("component", "websocket"),
	}
}

// Listen subscribes the hub to its broker. Call it once before Run.
func (h *Hub) Listen(ctx context.Context) error {
	return h.broker.Subscribe(ctx, func(channel string, payload []byte) {
		select {
		case h.deliver <- delivery{channel: channel, payload: payload}:
		case <-h.stop:
		}
	})
}

// Run starts the hub's main event loop
// This should be called in a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case sub := <-h.subscribe:
			h.join(sub)

		case sub := <-h.unsubscribe:
			h.leave(sub)

		case d := <-h.deliver:
			h.deliverToChannel(d)

		case f := <-h.direct:
			h.mu.RLock()
			_, ok := h.clients[f.client]
			h.mu.RUnlock()
			if ok {
				h.trySend(f.client, f.payload)
			}

		case <-h.stop:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	close(h.stop)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = make(map[string]bool)
	h.log.Info("client connected", "user_id", client.UserID, "total", len(h.clients))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(client)
}

// dropLocked removes client from every channel and closes its send buffer.
// Must be called with mu held.
func (h *Hub) dropLocked(client *Client) {
	subs, ok := h.clients[client]
	if !ok {
		return
	}
	for ch := range subs {
		if members := h.channels[ch]; members != nil {
			delete(members, client)
			if len(members) == 0 {
				delete(h.channels, ch)
			}
		}
	}
	delete(h.clients, client)
	close(client.send)
	h.log.Info("client disconnected", "user_id", client.UserID, "remaining", len(h.clients))
}

func (h *Hub) join(sub subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.clients[sub.client]
	if !ok {
		return
	}
	if h.channels[sub.channel] == nil {
		h.channels[sub.channel] = make(map[*Client]bool)
	}
	h.channels[sub.channel][sub.client] = true
	subs[sub.channel] = true
}

func (h *Hub) leave(sub subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members := h.channels[sub.channel]; members != nil {
		delete(members, sub.client)
		if len(members) == 0 {
			delete(h.channels, sub.channel)
		}
	}
	if subs, ok := h.clients[sub.client]; ok {
		delete(subs, sub.channel)
	}
}

// deliverToChannel sends an event to every local client on the channel.
// A client whose buffer is full is dropped.
func (h *Hub) deliverToChannel(d delivery) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.channels[d.channel]))
	for c := range h.channels[d.channel] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		h.trySend(c, d.payload)
	}
}

func (h *Hub) trySend(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.log.Warn("send buffer full, dropping client", "user_id", c.UserID)
		h.mu.Lock()
		h.dropLocked(c)
		h.mu.Unlock()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// MessageAppended publishes a receive_message event to the conversation
// channel and to each participant's personal channel. A client listening on
// several of them gets one copy per channel.
func (h *Hub) MessageAppended(ctx context.Context, participants []string, event models.MessageEvent) {
	payload, err := encodeFrame(FrameReceiveMessage, event)
	if err != nil {
		h.log.Error("failed to encode message event", "error", err)
		return
	}

	channels := []string{conversationChannel(event.ConversationID)}
	for _, p := range participants {
		channels = append(channels, userChannel(p))
	}
	for _, ch := range channels {
		if err := h.broker.Publish(ctx, ch, payload); err != nil {
			h.log.Warn("realtime publish failed", "channel", ch, "error", err)
		}
	}
}

// ChannelSize returns how many local clients listen on channel
func (h *Hub) ChannelSize(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// handleFrame processes one inbound frame. It runs on the client's read
// goroutine, so frames from one connection are handled in order.
func (h *Hub) handleFrame(c *Client, raw []byte) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		h.sendError(c, apperrors.InvalidArg("malformed frame"), "")
		return
	}

	switch f.Type {
	case FrameJoinUser:
		var p JoinUserPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil || p.UserID == "" {
			h.sendError(c, apperrors.InvalidArg("userId is required"), "")
			return
		}
		if c.UserID != "" && p.UserID != c.UserID {
			h.sendError(c, apperrors.Forbidden("cannot join another user's channel"), "")
			return
		}
		h.request(h.subscribe, subscription{client: c, channel: userChannel(p.UserID)})

	case FrameJoinConversation, FrameLeaveConversation:
		var p ConversationPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil || p.ConversationID == "" {
			h.sendError(c, apperrors.InvalidArg("conversationId is required"), "")
			return
		}
		sub := subscription{client: c, channel: conversationChannel(p.ConversationID)}
		if f.Type == FrameLeaveConversation {
			h.request(h.unsubscribe, sub)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := h.conversations.CheckParticipant(ctx, p.ConversationID, c.UserID); err != nil {
			h.sendError(c, err, "")
			return
		}
		h.request(h.subscribe, sub)

	case FrameSendMessage:
		h.handleSend(c, f.Payload)

	default:
		h.sendError(c, apperrors.InvalidArg("unknown frame type: "+f.Type), "")
	}
}

func (h *Hub) handleSend(c *Client, raw json.RawMessage) {
	var p SendMessagePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.sendError(c, apperrors.InvalidArg("malformed send_message payload"), "")
		return
	}

	sender := p.Sender
	if c.UserID != "" {
		if sender != "" && sender != c.UserID {
			h.sendError(c, apperrors.Forbidden("sender does not match the authenticated user"), p.TempID)
			return
		}
		sender = c.UserID
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	_, err := h.messages.Append(ctx, services.AppendInput{
		ConversationID: p.ConversationID,
		SenderID:       sender,
		Request:        p.SendMessageRequest,
		TempID:         p.TempID,
	})
	if err != nil {
		h.sendError(c, err, p.TempID)
	}
}

func (h *Hub) request(ch chan subscription, sub subscription) {
	select {
	case ch <- sub:
	case <-h.stop:
	}
}

// sendError reports a failed frame to its sender only.
func (h *Hub) sendError(c *Client, err error, tempID string) {
	body := apperrors.BodyOf(err)
	payload, encErr := encodeFrame(FrameError, ErrorPayload{Code: body.Code, Message: body.Error, TempID: tempID})
	if encErr != nil {
		return
	}
	if body.Code == apperrors.CodeInternal {
		h.log.Error("frame failed", "user_id", c.UserID, "error", err)
	}
	select {
	case h.direct <- directFrame{client: c, payload: payload}:
	case <-h.stop:
	}
}
