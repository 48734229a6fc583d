package controllers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
)

// StartChatRequest holds the room creation payload
type StartChatRequest struct {
	VendorID  uint  `json:"vendor_id" binding:"required"`
	ProductID *uint `json:"product_id"`
}

// SendMessageRequest holds the message payload
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// StartChat opens (or returns) the room between the customer and a vendor
func StartChat(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req StartChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid chat data", err.Error())
		return
	}

	var vendor models.Vendor
	if err := config.DB.Where("id = ? AND is_active = ?", req.VendorID, true).First(&vendor).Error; err != nil {
		utils.NotFound(c, "Vendor not found")
		return
	}

	var room models.ChatRoom
	err := config.DB.Where("customer_id = ? AND vendor_id = ?", user.ID, req.VendorID).First(&room).Error
	if err != nil {
		room = models.ChatRoom{
			CustomerID: user.ID,
			VendorID:   req.VendorID,
			ProductID:  req.ProductID,
		}
		if err := config.DB.Create(&room).Error; err != nil {
			utils.InternalServerError(c, "Failed to start chat", nil)
			return
		}
	}

	utils.Success(c, "Chat room ready", gin.H{"room": room})
}

// ListChatRooms returns the user's chat rooms. Vendors see rooms for their
// store, customers see rooms they opened.
func ListChatRooms(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	query := config.DB.Preload("Customer").Preload("Vendor").Where("is_active = ?", true)
	if user.IsVendor() {
		var vendor models.Vendor
		if err := config.DB.Where("user_id = ?", user.ID).First(&vendor).Error; err != nil {
			utils.NotFound(c, "Vendor profile not found")
			return
		}
		query = query.Where("vendor_id = ?", vendor.ID)
	} else {
		query = query.Where("customer_id = ?", user.ID)
	}

	var rooms []models.ChatRoom
	if err := query.Order("updated_at DESC").Find(&rooms).Error; err != nil {
		utils.InternalServerError(c, "Failed to load chats", nil)
		return
	}

	utils.Success(c, "Chat rooms retrieved", gin.H{"rooms": rooms})
}

// SendMessage posts a message to a room. Content is run through the
// moderation filter; violating messages are stored flagged and each
// violation is recorded for admin review.
func SendMessage(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid message", err.Error())
		return
	}

	room, ok := loadRoomForUser(c, user)
	if !ok {
		return
	}

	violations := utils.CheckMessageContent(req.Content)

	message := models.ChatMessage{
		RoomID:   room.ID,
		SenderID: user.ID,
		Content:  req.Content,
	}
	if len(violations) > 0 {
		types := make([]string, 0, len(violations))
		for _, v := range violations {
			types = append(types, v.Type)
		}
		message.IsFlagged = true
		message.FlaggedReason = strings.Join(types, ",")
	}

	tx := config.DB.Begin()
	if err := tx.Create(&message).Error; err != nil {
		tx.Rollback()
		utils.InternalServerError(c, "Failed to send message", nil)
		return
	}
	for _, v := range violations {
		record := models.ChatModeration{
			MessageID:       message.ID,
			ViolationType:   v.Type,
			DetectedContent: v.Detail,
		}
		if err := tx.Create(&record).Error; err != nil {
			tx.Rollback()
			utils.InternalServerError(c, "Failed to send message", nil)
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		utils.InternalServerError(c, "Failed to send message", nil)
		return
	}

	if len(violations) > 0 {
		utils.LogInfo("Flagged message %d in room %d (user %d): %s", message.ID, room.ID, user.ID, message.FlaggedReason)
		go func(sender, content string, v []utils.Violation) {
			if err := utils.SendModerationAlert(sender, content, v); err != nil {
				utils.LogError("Failed to send moderation alert: %v", err)
			}
		}(user.Email, req.Content, violations)
	}

	utils.Created(c, "Message sent", gin.H{"message": message})
}

// ListMessages returns a room's messages, oldest first
func ListMessages(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	room, ok := loadRoomForUser(c, user)
	if !ok {
		return
	}

	pagination := utils.NewPagination(c)

	query := config.DB.Model(&models.ChatMessage{}).Where("room_id = ?", room.ID)
	var total int64
	query.Count(&total)
	pagination.SetTotal(total)

	var messages []models.ChatMessage
	if err := query.Order("created_at ASC").
		Offset(pagination.Offset).Limit(pagination.Limit).
		Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to load messages", nil)
		return
	}

	// Mark the other party's messages as read
	config.DB.Model(&models.ChatMessage{}).
		Where("room_id = ? AND sender_id != ? AND is_read = ?", room.ID, user.ID, false).
		Update("is_read", true)

	utils.SendPaginatedResponse(c, "Messages retrieved", messages, pagination)
}

// loadRoomForUser loads the room from the :id param and verifies the user
// is one of its two parties. Writes the error response itself.
func loadRoomForUser(c *gin.Context, user models.User) (*models.ChatRoom, bool) {
	var room models.ChatRoom
	if err := config.DB.Preload("Vendor").Where("id = ? AND is_active = ?", c.Param("id"), true).First(&room).Error; err != nil {
		utils.NotFound(c, "Chat room not found")
		return nil, false
	}

	if room.CustomerID != user.ID && room.Vendor.UserID != user.ID {
		utils.Forbidden(c, "You are not a participant in this chat")
		return nil, false
	}
	return &room, true
}
