package utils

import (
	"fmt"
	"log"
	"strings"
)

// LogEvent prints standardized log line with module/action/request_id.
// Avoid logging sensitive payload; message should be summarized.
// Extra key/value pairs are appended as k=v.
func LogEvent(requestID, module, action, message string, kv ...any) {
	req := strings.TrimSpace(requestID)
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	log.Printf("[%s] action=%s request_id=%s msg=%s%s", strings.ToUpper(module), action, req, message, b.String())
}
