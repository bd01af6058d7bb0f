package restserver

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/uvmon/uvmon/internal/log"
	"github.com/uvmon/uvmon/pkg/responseformat"
)

// Handlers contains the HTTP request handlers
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates the handler set for a controller
func NewHandlers(c *Controller) *Handlers {
	return &Handlers{
		controller: c,
		formatter:  responseformat.NewFormatter(),
	}
}

// GetAllStatus returns the latest reading for every device
func (h *Handlers) GetAllStatus(w http.ResponseWriter, req *http.Request) {
	readings := h.controller.status.All()
	if err := h.formatter.WriteResponse(w, req, readings, nil); err != nil {
		log.Errorf("error writing status response: %v", err)
	}
}

// GetDeviceStatus returns the latest reading for one device
func (h *Handlers) GetDeviceStatus(w http.ResponseWriter, req *http.Request) {
	device := mux.Vars(req)["device"]
	reading, ok := h.controller.status.Latest(device)
	if !ok {
		http.Error(w, "no readings for device", http.StatusNotFound)
		return
	}
	if err := h.formatter.WriteResponse(w, req, reading, nil); err != nil {
		log.Errorf("error writing status response: %v", err)
	}
}

// GetHealth is a trivial liveness endpoint
func (h *Handlers) GetHealth(w http.ResponseWriter, req *http.Request) {
	resp := map[string]string{"status": "ok"}
	if err := h.formatter.WriteResponse(w, req, resp, nil); err != nil {
		log.Errorf("error writing health response: %v", err)
	}
}
