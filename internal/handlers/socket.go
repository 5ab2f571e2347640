package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	socketio "github.com/googollee/go-socket.io"
	"github.com/googollee/go-socket.io/engineio"
	"github.com/googollee/go-socket.io/engineio/transport"
	"github.com/googollee/go-socket.io/engineio/transport/polling"
	"github.com/googollee/go-socket.io/engineio/transport/websocket"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/database"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/models"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/services"
	apperrors "github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/errors"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/logger"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/utils"
)

var SocketServer *socketio.Server

// presenceRoom is joined by every connection, authenticated or not, so
// presence transitions reach all clients.
const presenceRoom = "presence"

// Typing throttle: track last typing emit per user to prevent spam
var (
	lastTypingEmit         = make(map[string]time.Time)
	lastTypingMu           sync.Mutex
	typingThrottleDuration = 3 * time.Second
)

func init() {
	go typingCleanup()
}

func typingCleanup() {
	for {
		time.Sleep(time.Minute)
		pruneTypingEntries(time.Now())
	}
}

// pruneTypingEntries drops throttle entries that are too old to still
// throttle anything, so the map does not grow with every sender ever seen.
func pruneTypingEntries(now time.Time) {
	lastTypingMu.Lock()
	for id, last := range lastTypingEmit {
		if now.Sub(last) > 3*time.Minute {
			delete(lastTypingEmit, id)
		}
	}
	lastTypingMu.Unlock()
}

const chatMessagesPerMinute = 30

// Ack is the single result envelope every inbound socket event handler
// returns to the emitting connection. Failures never escape into the
// transport layer.
type Ack struct {
	OK    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *AckError   `json:"error,omitempty"`
}

type AckError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func okAck(data interface{}) Ack {
	return Ack{OK: true, Data: data}
}

func errAck(err error) Ack {
	if appErr, ok := err.(*apperrors.AppError); ok {
		return Ack{OK: false, Error: &AckError{Kind: string(appErr.Kind), Message: appErr.Message}}
	}
	return Ack{OK: false, Error: &AckError{Kind: string(apperrors.KindInternal), Message: "Internal error"}}
}

// Inbound event payloads

type statusCheckPayload struct {
	UserIDToCheck string `json:"userIdToCheck"`
}

type sendMessagePayload struct {
	SenderID         string   `json:"senderId"`
	ReceiverID       string   `json:"receiverId"`
	ConversationID   string   `json:"conversationId"`
	Message          string   `json:"message"`
	NeedsTranslation bool     `json:"needsTranslation"`
	RepliedToMessage *string  `json:"repliedToMessage"`
	AttachmentIDs    []string `json:"attachmentIds"`
}

type editMessagePayload struct {
	MessageID        string `json:"messageId"`
	UpdatedMessage   string `json:"updatedMessage"`
	NeedsTranslation bool   `json:"needsTranslation"`
	SenderID         string `json:"senderId"`
	ReceiverID       string `json:"receiverId"`
}

type toggleDeletionPayload struct {
	MessageID string `json:"messageId"`
	IsDeleted bool   `json:"isDeleted"`
}

type messageAckPayload struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

type typingPayload struct {
	ReceiverID string `json:"receiverId"`
}

// emitToParticipants fans an event out to every live connection of both
// participants. Delivery is best-effort; closed connections are skipped
// by the transport.
func emitToParticipants(server *socketio.Server, senderID, receiverID, event string, payload interface{}) {
	server.BroadcastToRoom("/", senderID, event, payload)
	if receiverID != senderID {
		server.BroadcastToRoom("/", receiverID, event, payload)
	}
}

// InitSocketServer wires the realtime dispatcher. Each connection moves
// Connecting -> Open -> Closed; presence registration happens on Open,
// unregistration on Closed. Closing a connection never cancels in-flight
// message work.
func InitSocketServer(messaging *services.MessagingService, presence *services.PresenceRegistry) *socketio.Server {
	server := socketio.NewServer(&engineio.Options{
		Transports: []transport.Transport{
			&websocket.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
			&polling.Transport{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		},
	})

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		u := s.URL()
		query := u.Query()

		// Prefer a signed token; fall back to a bare userId. A connection
		// carrying neither stays anonymous: it still receives broadcasts
		// but is invisible to presence queries.
		userID := ""
		if token := query.Get("token"); token != "" {
			claims, err := utils.ValidateToken(token)
			if err != nil {
				logger.Warn().Str("conn", s.ID()).Msg("Socket handshake token invalid, treating as anonymous")
			} else {
				userID = claims.UserID
			}
		}
		if userID == "" {
			userID = query.Get("userId")
		}

		s.Join(presenceRoom)

		if userID == "" {
			return nil
		}

		s.SetContext(userID)
		s.Join(userID)

		first := presence.Register(userID, s.ID())
		if first {
			server.BroadcastToRoom("/", presenceRoom, "user_status_changed", map[string]interface{}{
				"userId":   userID,
				"isOnline": true,
			})
		}

		s.Emit("online_users", presence.OnlineUsers())
		return nil
	})

	server.OnEvent("/", "check_user_online_status", func(s socketio.Conn, p statusCheckPayload) Ack {
		if p.UserIDToCheck == "" {
			return errAck(apperrors.Validation("userIdToCheck is required"))
		}
		return okAck(map[string]interface{}{
			"userId":   p.UserIDToCheck,
			"isOnline": presence.IsOnline(p.UserIDToCheck),
		})
	})

	server.OnEvent("/", "get_online_users", func(s socketio.Conn) Ack {
		return okAck(presence.OnlineUsers())
	})

	server.OnEvent("/", "send_message", func(s socketio.Conn, p sendMessagePayload) Ack {
		if database.Redis != nil {
			allowed, err := database.CheckRateLimit(p.SenderID, chatMessagesPerMinute, time.Minute)
			if err == nil && !allowed {
				return errAck(apperrors.ErrRateLimit)
			}
		}

		view, err := messaging.CreateMessage(context.Background(), services.CreateMessageInput{
			ConversationID:     p.ConversationID,
			SenderID:           p.SenderID,
			ReceiverID:         p.ReceiverID,
			Text:               p.Message,
			NeedsTranslation:   p.NeedsTranslation,
			RepliedToMessageID: p.RepliedToMessage,
			AttachmentIDs:      p.AttachmentIDs,
		}, nil)
		if err != nil {
			return errAck(err)
		}

		emitToParticipants(server, view.SenderID, view.ReceiverID, "new_message", map[string]interface{}{
			"message": view,
		})
		return okAck(view)
	})

	server.OnEvent("/", "edit_message", func(s socketio.Conn, p editMessagePayload) Ack {
		view, err := messaging.UpdateContent(context.Background(), p.MessageID, p.UpdatedMessage, p.NeedsTranslation)
		if err != nil {
			return errAck(err)
		}

		emitToParticipants(server, view.SenderID, view.ReceiverID, "message_edited", map[string]interface{}{
			"message": view,
		})
		return okAck(view)
	})

	server.OnEvent("/", "toggle_message_deletion", func(s socketio.Conn, p toggleDeletionPayload) Ack {
		// Look the message up first to discover its participants.
		existing, err := messaging.FindByID(p.MessageID)
		if err != nil {
			return errAck(err)
		}
		if existing == nil {
			return errAck(apperrors.NotFound("Message not found"))
		}

		msg, err := messaging.UpdateIsDeleted(p.MessageID, p.IsDeleted)
		if err != nil {
			return errAck(err)
		}

		emitToParticipants(server, msg.SenderID, msg.ReceiverID, "message_deletion_toggled", map[string]interface{}{
			"messageId": msg.ID,
			"isDeleted": msg.IsDeleted,
		})
		return okAck(msg)
	})

	server.OnEvent("/", "message_ack", func(s socketio.Conn, p messageAckPayload) Ack {
		var status models.MessageStatus
		switch p.Status {
		case "delivered":
			status = models.MessageStatusDelivered
		case "read":
			status = models.MessageStatusRead
		default:
			return errAck(apperrors.Validation("Status must be delivered or read"))
		}

		msg, err := messaging.MarkStatus(p.MessageID, status)
		if err != nil {
			return errAck(err)
		}

		server.BroadcastToRoom("/", msg.SenderID, "message_status", map[string]interface{}{
			"messageId": msg.ID,
			"status":    msg.Status,
		})
		return okAck(nil)
	})

	server.OnEvent("/", "typing", func(s socketio.Conn, p typingPayload) Ack {
		senderID, _ := s.Context().(string)
		if senderID == "" || p.ReceiverID == "" {
			return errAck(apperrors.Validation("Typing requires an authenticated sender and a receiver"))
		}

		lastTypingMu.Lock()
		last, seen := lastTypingEmit[senderID]
		throttled := seen && time.Since(last) < typingThrottleDuration
		if !throttled {
			lastTypingEmit[senderID] = time.Now()
		}
		lastTypingMu.Unlock()

		if !throttled {
			server.BroadcastToRoom("/", p.ReceiverID, "user_typing", map[string]interface{}{
				"userId":    senderID,
				"expiresAt": time.Now().Add(4 * time.Second).Unix(),
			})
		}
		return okAck(nil)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		userID, last := presence.Unregister(s.ID())
		if last {
			server.BroadcastToRoom("/", presenceRoom, "user_status_changed", map[string]interface{}{
				"userId":   userID,
				"isOnline": false,
			})
		}
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		logger.Error().Err(e).Msg("Socket error")
	})

	go server.Serve()
	SocketServer = server
	return server
}

// SocketHandler wraps the socket.io server for gin
func SocketHandler(server *socketio.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		server.ServeHTTP(c.Writer, c.Request)
	}
}
