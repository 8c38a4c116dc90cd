package handler

import (
	"fmt"
	"net/http"
)

type homeHandler struct {
	appName string
}

func NewHomeHandler(appName string) *homeHandler {
	return &homeHandler{appName: appName}
}

func (h *homeHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, fmt.Sprintf("%s API is live!", h.appName))
}

func (h *homeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Not found")
}
