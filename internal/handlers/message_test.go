package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/models"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/internal/services"
	"github.com/MahadiHasan2903/wedding-backend-app-sub001/pkg/utils"
)

type stubTranslator struct {
	result *services.TranslationResult
}

func (s *stubTranslator) Translate(ctx context.Context, text string) (*services.TranslationResult, error) {
	if s.result != nil {
		return s.result, nil
	}
	return &services.TranslationResult{SourceLanguage: "en", TranslationEn: text}, nil
}

type stubAttachments struct {
	media map[string]models.Media
}

func (s *stubAttachments) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (*models.Media, error) {
	id := utils.NewID()
	m := models.Media{ID: id, URL: "https://cdn.example.com/" + id, Mimetype: header.Header.Get("Content-Type"), Size: header.Size}
	s.media[id] = m
	return &m, nil
}

func (s *stubAttachments) FindByIDs(ids []string) ([]models.Media, error) {
	var out []models.Media
	for _, id := range ids {
		if m, ok := s.media[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubAttachments) Delete(ctx context.Context, mediaID string) error {
	delete(s.media, mediaID)
	return nil
}

// setupHandlerTest wires the handler globals against an in-memory DB.
func setupHandlerTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	assert.NoError(t, err)
	db.Migrator().DropTable(&models.User{}, &models.Conversation{}, &models.Message{}, &models.Media{})
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}, &models.Media{}))

	messaging := services.NewMessagingService(db, &stubTranslator{}, &stubAttachments{media: make(map[string]models.Media)})
	conversations := services.NewConversationService(db, services.NewUserDirectory(db))
	InitServices(messaging, conversations, services.NewPresenceRegistry())
	return db
}

func seedConversation(t *testing.T, db *gorm.DB, id, senderID, receiverID string) {
	t.Helper()
	assert.NoError(t, db.Create(&models.Conversation{
		ID: id, SenderID: senderID, ReceiverID: receiverID,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}).Error)
}

func TestCreateMessage_JSONBody(t *testing.T) {
	db := setupHandlerTest(t)
	seedConversation(t, db, "c1", "alice", "bob")

	body, _ := json.Marshal(map[string]interface{}{
		"conversationId": "c1",
		"receiverId":     "bob",
		"message":        "hello",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("POST", "/api/messages", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("userId", "alice")

	CreateMessage(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Message services.MessageView `json:"message"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "alice", response.Message.SenderID)
	assert.Equal(t, "hello", response.Message.Content.TranslationEn)
	assert.Equal(t, "", response.Message.Content.TranslationFr)

	var conv models.Conversation
	assert.NoError(t, db.First(&conv, "id = ?", "c1").Error)
	assert.Equal(t, "hello", conv.LastMessage)
}

func TestCreateMessage_MissingConversation(t *testing.T) {
	setupHandlerTest(t)

	body, _ := json.Marshal(map[string]interface{}{
		"conversationId": "missing",
		"receiverId":     "bob",
		"message":        "hello",
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("POST", "/api/messages", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("userId", "alice")

	CreateMessage(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetMessage_NotFound(t *testing.T) {
	setupHandlerTest(t)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/api/messages/nope", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	GetMessage(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetConversationMessages_Paginated(t *testing.T) {
	db := setupHandlerTest(t)
	seedConversation(t, db, "c1", "alice", "bob")

	for i := 0; i < 12; i++ {
		_, err := Messaging.CreateMessage(context.Background(), services.CreateMessageInput{
			ConversationID: "c1", SenderID: "alice", ReceiverID: "bob", Text: "m",
		}, nil)
		assert.NoError(t, err)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/api/conversations/c1/messages?page=1&pageSize=10", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set("userId", "alice")

	GetConversationMessages(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Messages   []services.MessageView `json:"messages"`
		Pagination struct {
			TotalItems  int64 `json:"totalItems"`
			TotalPages  int   `json:"totalPages"`
			HasNextPage bool  `json:"hasNextPage"`
			PrevPage    *int  `json:"prevPage"`
		} `json:"pagination"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Messages, 10)
	assert.Equal(t, int64(12), response.Pagination.TotalItems)
	assert.Equal(t, 2, response.Pagination.TotalPages)
	assert.True(t, response.Pagination.HasNextPage)
	assert.Nil(t, response.Pagination.PrevPage)
}

func TestGetConversation_OwnershipChecked(t *testing.T) {
	db := setupHandlerTest(t)
	seedConversation(t, db, "c1", "alice", "bob")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("GET", "/api/conversations/c1", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	c.Set("userId", "intruder")

	GetConversation(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestToggleMessageDeletion_RoundTrip(t *testing.T) {
	db := setupHandlerTest(t)
	seedConversation(t, db, "c1", "alice", "bob")

	view, err := Messaging.CreateMessage(context.Background(), services.CreateMessageInput{
		ConversationID: "c1", SenderID: "alice", ReceiverID: "bob", Text: "bye",
	}, nil)
	assert.NoError(t, err)

	body, _ := json.Marshal(map[string]bool{"isDeleted": true})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest("PATCH", "/api/messages/"+view.ID+"/deletion", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: view.ID}}
	c.Set("userId", "alice")

	ToggleMessageDeletion(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Message
	assert.NoError(t, db.First(&stored, "id = ?", view.ID).Error)
	assert.True(t, stored.IsDeleted)
}
