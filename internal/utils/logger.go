package utils

import (
	"log"
	"strings"
)

// LogEvent writes one line per significant event, tagged with the owning
// module and a request id when one exists. Messages stay short; credentials
// and raw frames never go through here.
func LogEvent(requestID, module, action, message string) {
	id := strings.TrimSpace(requestID)
	if id == "" {
		id = "-"
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s", strings.ToUpper(module), action, id, message)
}
