package handler

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"askpa/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Check(c *gin.Context) {
	registryStatus := h.checkRegistryFile()

	statusCode := http.StatusOK
	if !registryStatus.OK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.app.Config.App.Name,
		"env":        h.app.Config.App.Env,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"users":      h.app.Registry.Count(),
		"dependencies": gin.H{
			"registry_file": registryStatus,
			// The embedding/generation and vector index providers are not
			// probed here; a failed provider surfaces on the request itself.
			"llm_configured":      h.app.Config.LLM.APIKey != "",
			"pinecone_configured": h.app.Config.Pinecone.APIKey != "",
		},
	})
}

func (h *HealthHandler) checkRegistryFile() dependencyStatus {
	path := h.app.Config.Registry.File
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			// Not written yet; the first signup creates it.
			return dependencyStatus{OK: true, Message: "not created yet"}
		}
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
