package controllers

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
)

// RegisterRequest holds the registration payload
type RegisterRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=30"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	FullName     string `json:"full_name"`
	MobileNumber string `json:"mobile_number"`
}

// LoginRequest holds the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyOTPRequest holds the OTP verification payload
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	OTP   string `json:"otp" binding:"required,len=6"`
}

// Register creates a new account and sends a verification OTP
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid registration data", err.Error())
		return
	}

	var existing models.User
	if err := config.DB.Where("email = ? OR username = ?", req.Email, req.Username).First(&existing).Error; err == nil {
		utils.Conflict(c, "An account with this email or username already exists", nil)
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	otp := utils.GenerateOTP()
	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		Password:     hashed,
		FullName:     req.FullName,
		MobileNumber: req.MobileNumber,
		Role:         models.RoleCustomer,
		OTP:          otp,
		OTPExpiry:    time.Now().Add(10 * time.Minute),
	}

	if err := config.DB.Create(&user).Error; err != nil {
		utils.LogError("Failed to create user %s: %v", req.Email, err)
		utils.InternalServerError(c, "Failed to create account", nil)
		return
	}

	if err := utils.SendOTP(user.Email, otp); err != nil {
		utils.LogError("Failed to send OTP to %s: %v", user.Email, err)
	}

	session := sessions.Default(c)
	session.Set("pending_email", user.Email)
	if err := session.Save(); err != nil {
		utils.LogDebug("Failed to save session: %v", err)
	}

	utils.LogInfo("User registered: %s (ID: %d)", user.Email, user.ID)
	utils.Created(c, "Registration successful. Please verify your email with the OTP sent.", gin.H{
		"user_id": user.ID,
		"email":   user.Email,
	})
}

// VerifyOTP confirms the email OTP and activates the account
func VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid verification data", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.NotFound(c, "Account not found")
		return
	}

	if user.IsVerified {
		utils.BadRequest(c, "Account is already verified", nil)
		return
	}
	if user.OTP != req.OTP {
		utils.BadRequest(c, "Invalid OTP", nil)
		return
	}
	if time.Now().After(user.OTPExpiry) {
		utils.BadRequest(c, "OTP has expired, please request a new one", nil)
		return
	}

	updates := map[string]interface{}{
		"is_verified": true,
		"otp":         "",
	}
	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.LogError("Failed to verify user %s: %v", user.Email, err)
		utils.InternalServerError(c, "Verification failed", nil)
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate token for %s: %v", user.Email, err)
		utils.InternalServerError(c, "Verification failed", nil)
		return
	}

	utils.LogInfo("User verified: %s", user.Email)
	utils.Success(c, "Email verified successfully", gin.H{
		"token": token,
		"user":  user,
	})
}

// ResendOTP issues a fresh OTP for an unverified account
func ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.NotFound(c, "Account not found")
		return
	}
	if user.IsVerified {
		utils.BadRequest(c, "Account is already verified", nil)
		return
	}

	otp := utils.GenerateOTP()
	if err := config.DB.Model(&user).Updates(map[string]interface{}{
		"otp":        otp,
		"otp_expiry": time.Now().Add(10 * time.Minute),
	}).Error; err != nil {
		utils.InternalServerError(c, "Failed to resend OTP", nil)
		return
	}

	if err := utils.SendOTP(user.Email, otp); err != nil {
		utils.LogError("Failed to send OTP to %s: %v", user.Email, err)
		utils.InternalServerError(c, "Failed to send OTP email", nil)
		return
	}

	utils.Success(c, "A new OTP has been sent to your email", nil)
}

// Login authenticates with email and password and returns a JWT
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid login data", err.Error())
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.LogDebug("Failed login attempt for %s", req.Email)
		utils.Unauthorized(c, "Invalid email or password")
		return
	}
	if user.IsBanned {
		utils.Forbidden(c, "Your account has been suspended")
		return
	}
	if !user.IsVerified {
		utils.Forbidden(c, "Please verify your email before logging in")
		return
	}

	token, err := utils.GenerateToken(&user)
	if err != nil {
		utils.LogError("Failed to generate token for %s: %v", user.Email, err)
		utils.InternalServerError(c, "Login failed", nil)
		return
	}

	config.DB.Model(&user).Update("last_login_at", time.Now())

	utils.LogInfo("User logged in: %s", user.Email)
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

// GetProfile returns the authenticated user's profile with wallet summary
func GetProfile(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	wallet, err := utils.GetOrCreateWallet(config.DB, user.ID)
	if err != nil {
		utils.LogError("Failed to load wallet for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to load profile", nil)
		return
	}

	utils.Success(c, "Profile retrieved", gin.H{
		"user":   user,
		"wallet": wallet,
	})
}

// UpdateProfile updates the authenticated user's editable profile fields
func UpdateProfile(c *gin.Context) {
	user := c.MustGet("user").(models.User)

	var req struct {
		FullName     string `json:"full_name"`
		MobileNumber string `json:"mobile_number"`
		ProfilePhoto string `json:"profile_photo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid profile data", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.FullName != "" {
		updates["full_name"] = req.FullName
	}
	if req.MobileNumber != "" {
		updates["mobile_number"] = req.MobileNumber
	}
	if req.ProfilePhoto != "" {
		updates["profile_photo"] = req.ProfilePhoto
	}
	if len(updates) == 0 {
		utils.BadRequest(c, "Nothing to update", nil)
		return
	}

	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.InternalServerError(c, "Failed to update profile", nil)
		return
	}

	utils.Success(c, "Profile updated", gin.H{"user": user})
}
