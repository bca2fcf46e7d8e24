package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tenantdesk-backend/internal/identity"
	"github.com/yungbote/tenantdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/tenantdesk-backend/internal/platform/logger"
)

func TestAttachIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens, err := identity.NewTokens("s3cret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	signed, _, err := tokens.Issue(identity.NewPrincipal("user-7", identity.InTenants("t1")))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	r := gin.New()
	r.Use(NewIdentityMiddleware(logger.Nop(), tokens).AttachIdentity())
	r.GET("/whoami", func(c *gin.Context) {
		if p, ok := identity.FromContext(c.Request.Context()); ok {
			c.String(http.StatusOK, p.Subject())
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	cases := []struct{ header, want string }{
		{header: "", want: "anonymous"},
		{header: "Bearer garbage", want: "anonymous"},
		{header: "Basic dXNlcjpwYXNz", want: "anonymous"},
		{header: "Bearer " + signed, want: "user-7"},
		{header: "bearer   " + signed, want: "user-7"},
	}
	for _, tc := range cases {
		header, want := tc.header, tc.want
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("AttachIdentity(%.16q): status=%d body=%q want=%q", header, rec.Code, rec.Body.String(), want)
		}
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/", func(c *gin.Context) {
		td, ok := ctxutil.TraceFrom(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-123" || rec.Header().Get(headerRequestID) != "req-123" {
		t.Fatalf("request id not propagated: body=%q header=%q", rec.Body.String(), rec.Header().Get(headerRequestID))
	}
	if rec.Header().Get(headerTraceID) == "" {
		t.Fatalf("trace id header missing")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(headerRequestID, strings.Repeat("x", maxHeaderIDLen+1))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get(headerRequestID); len(got) > maxHeaderIDLen {
		t.Fatalf("oversized request id echoed back")
	}
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTimeout(time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		<-c.Request.Context().Done()
		if c.Request.Context().Err() != context.DeadlineExceeded {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusGatewayTimeout)
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("RequestTimeout: status=%d", rec.Code)
	}
}
