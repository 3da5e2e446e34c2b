package factory

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func TestNewModuleLogger(t *testing.T) {
	logger := NewModuleLogger("renewal-engine")
	entry, ok := logger.(*logrus.Entry)
	if !ok {
		t.Fatalf("expected *logrus.Entry, got %T", logger)
	}
	if entry.Data["module"] != "renewal-engine" {
		t.Fatalf("expected module field, got %+v", entry.Data)
	}
}

func TestLoggerWithContextPrefersResponseHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(echo.HeaderXRequestID, "client-1")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Response().Header().Set(echo.HeaderXRequestID, "rest-test-123")

	entry, ok := LoggerWithContext(logrus.NewEntry(logrus.StandardLogger()), ctx).(*logrus.Entry)
	if !ok {
		t.Fatal("expected *logrus.Entry")
	}
	if entry.Data["request_id"] != "rest-test-123" {
		t.Fatalf("expected request_id field, got %+v", entry.Data)
	}
}

func TestLoggerWithContextWithoutRequestID(t *testing.T) {
	e := echo.New()
	ctx := e.NewContext(httptest.NewRequest("GET", "/", nil), httptest.NewRecorder())

	entry, ok := LoggerWithContext(logrus.NewEntry(logrus.StandardLogger()), ctx).(*logrus.Entry)
	if !ok {
		t.Fatal("expected *logrus.Entry")
	}
	if _, found := entry.Data["request_id"]; found {
		t.Fatalf("expected no request_id field, got %+v", entry.Data)
	}
}
