package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"rideshare/internal/http/middleware"
	"rideshare/internal/messaging"
	"rideshare/internal/services"

	"github.com/gin-gonic/gin"
)

// Deps holds the collaborators handlers cannot build from the shared DB alone.
type Deps struct {
	Auth     services.AuthService
	Notifier messaging.Notifier
	ETA      services.ETAService
}

var (
	depsMu sync.RWMutex
	deps   Deps
)

// Configure installs the handler dependencies; called once by the router.
func Configure(d Deps) {
	depsMu.Lock()
	defer depsMu.Unlock()
	deps = d
}

func currentDeps() Deps {
	depsMu.RLock()
	defer depsMu.RUnlock()
	return deps
}

// authService returns the configured AuthService bound to this request.
func authService(c *gin.Context) services.AuthService {
	d := currentDeps()
	svc := d.Auth
	svc.RequestID = middleware.GetRequestID(c)
	if svc.Notifier == nil {
		svc.Notifier = d.Notifier
	}
	return svc
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "invalid_body", "request body is empty", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", "invalid payload", err.Error())
		return false
	}
	return true
}

// pathID parses a positive integer path parameter or writes a 400.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_"+name, "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// Stringish tolerates string, number or bool JSON values as text.
type Stringish string

func (s *Stringish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*s = ""
		return nil
	case b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Stringish(str)
		return nil
	default:
		*s = Stringish(string(b))
		return nil
	}
}

func (s Stringish) String() string { return strings.TrimSpace(string(s)) }

// ptr returns nil for an absent value so optional fields stay untouched.
func (s *Stringish) ptr() *string {
	if s == nil {
		return nil
	}
	v := s.String()
	return &v
}
