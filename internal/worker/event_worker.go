package worker

import (
	"github.com/spec-kit/bloodbank-service/internal/service"
)

// StartEventListener registers post-commit event handlers.
func StartEventListener(listener *service.EventListener) {
	if listener == nil {
		return
	}
	listener.RegisterHandlers()
}
