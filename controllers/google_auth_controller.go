package controllers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kabaadwala/marketplace/config"
	"github.com/kabaadwala/marketplace/models"
	"github.com/kabaadwala/marketplace/utils"
)

// GoogleLogin redirects the browser to Google's consent page
func GoogleLogin(c *gin.Context) {
	url := config.GoogleOAuthConfig.AuthCodeURL("state")
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback handles the OAuth2 callback, provisioning an account on
// first login. Google accounts skip OTP verification.
func GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		utils.BadRequest(c, "Authorization code missing", nil)
		return
	}

	token, err := config.GoogleOAuthConfig.Exchange(c.Request.Context(), code)
	if err != nil {
		utils.LogError("Google token exchange failed: %v", err)
		utils.Unauthorized(c, "Google authentication failed")
		return
	}

	resp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + token.AccessToken)
	if err != nil {
		utils.LogError("Failed to fetch Google user info: %v", err)
		utils.InternalServerError(c, "Failed to fetch user information", nil)
		return
	}
	defer resp.Body.Close()

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		utils.InternalServerError(c, "Failed to parse user information", nil)
		return
	}

	var user models.User
	err = config.DB.Where("email = ?", googleUser.Email).First(&user).Error
	if err != nil {
		// First Google login: provision the account with a random password
		randomPassword, hashErr := utils.HashPassword(uuid.New().String())
		if hashErr != nil {
			utils.InternalServerError(c, "Failed to create account", nil)
			return
		}
		user = models.User{
			Username:     googleUsername(googleUser.Email),
			Email:        googleUser.Email,
			Password:     randomPassword,
			FullName:     googleUser.Name,
			ProfilePhoto: googleUser.Picture,
			Role:         models.RoleCustomer,
			GoogleID:     googleUser.ID,
			IsVerified:   true,
		}
		if err := config.DB.Create(&user).Error; err != nil {
			utils.LogError("Failed to create Google user %s: %v", googleUser.Email, err)
			utils.InternalServerError(c, "Failed to create account", nil)
			return
		}
		utils.LogInfo("Google account provisioned: %s (ID: %d)", user.Email, user.ID)
	} else if user.GoogleID == "" {
		config.DB.Model(&user).Updates(map[string]interface{}{
			"google_id":   googleUser.ID,
			"is_verified": true,
		})
	}

	if user.IsBanned {
		utils.Forbidden(c, "Your account has been suspended")
		return
	}

	jwtToken, err := utils.GenerateToken(&user)
	if err != nil {
		utils.InternalServerError(c, "Login failed", nil)
		return
	}

	config.DB.Model(&user).Update("last_login_at", time.Now())

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL != "" {
		c.Redirect(http.StatusTemporaryRedirect, frontendURL+"/auth/callback?token="+jwtToken)
		return
	}

	utils.Success(c, "Login successful", gin.H{
		"token": jwtToken,
		"user":  user,
	})
}

func googleUsername(email string) string {
	base := strings.SplitN(email, "@", 2)[0]
	return base + "_" + uuid.New().String()[:6]
}
