package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"askpa/internal/app"
	"askpa/internal/transport/http/response"
)

type AssistantHandler struct {
	assistant *app.AssistantService
}

func NewAssistantHandler(assistant *app.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

func (h *AssistantHandler) Append(c *gin.Context) {
	email := c.PostForm("email")
	about := c.PostForm("about")
	if email == "" || about == "" {
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

	err = h.assistant.Append(c.Request.Context(), app.AppendInput{
		Email:        email,
		About:        about,
		DocumentText: text,
	})
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			response.Message(c, http.StatusNotFound, "User not found")
			return
		}
		response.ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Data appended successfully"})
}

func (h *AssistantHandler) Chat(c *gin.Context) {
	email := c.PostForm("email")
	query := c.PostForm("query")
	if email == "" || query == "" {
		response.Message(c, http.StatusBadRequest, "missing required form fields")
		return
	}

	answer, err := h.assistant.Ask(c.Request.Context(), app.AskInput{
		Email: email,
		Query: query,
	})
	if err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"response": "User not found"})
			return
		}
		response.ServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": answer})
}
