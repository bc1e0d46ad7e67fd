package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"askpa/internal/app"
	"askpa/internal/extract"
	"askpa/internal/transport/http/response"
)

const maxDocumentSize = 10 << 20 // 10 MB

type AccountHandler struct {
	authService *app.AuthService
	assistant   *app.AssistantService
}

func NewAccountHandler(authService *app.AuthService, assistant *app.AssistantService) *AccountHandler {
	return &AccountHandler{authService: authService, assistant: assistant}
}

func (h *AccountHandler) Signup(c *gin.Context) {
	firstName := c.PostForm("first_name")
	lastName := c.PostForm("last_name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	about := c.PostForm("about")
	if firstName == "" || lastName == "" || email == "" || password == "" || about == "" {
		response.Message(c, http.StatusBadRequest, "missing required form fields")
		return
	}

	file, err := c.FormFile("document")
	if err != nil {
		response.Message(c, http.StatusBadRequest, "missing document file")
		return
	}

	text, ok := extractDocument(c, file)
	if !ok {
		return
	}

	userID, err := h.assistant.Signup(c.Request.Context(), app.SignupInput{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Password:     password,
		About:        about,
		DocumentText: text,
	})
	if err != nil {
		response.ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User registered successfully",
		"user_id": userID,
	})
}

func (h *AccountHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	if email == "" || password == "" {
		response.Message(c, http.StatusBadRequest, "missing required form fields")
		return
	}

	user, err := h.authService.Login(email, password)
	if err != nil {
		// The credential mismatch is a structured message, not an HTTP error.
		c.JSON(http.StatusOK, gin.H{"message": "Invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user_id": user.ID,
	})
}

// extractDocument opens the uploaded file and extracts its text. On failure
// it writes the error response and returns ok=false.
func extractDocument(c *gin.Context, file *multipart.FileHeader) (string, bool) {
	if file.Size > maxDocumentSize {
		response.Message(c, http.StatusBadRequest, "document too large (max 10MB)")
		return "", false
	}

	f, err := file.Open()
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "failed to read document")
		return "", false
	}
	defer f.Close()

	text, err := extract.Extract(f, file.Filename)
	if err != nil {
		response.Message(c, http.StatusBadRequest, "failed to extract document text: "+err.Error())
		return "", false
	}
	return text, true
}
