package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
)

var hardeningHeaders = map[string]string{
	"X-Content-Type-Options":    "nosniff",
	"X-Frame-Options":           "DENY",
	"Content-Security-Policy":   "default-src 'none'; frame-ancestors 'none'",
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	"Referrer-Policy":           "no-referrer",
	"Cache-Control":             "no-store",
}

// newHardenedServer mounts the routes a record client hits behind
// SecurityHeaders. The PDF route serves pdfPath as an attachment.
func newHardenedServer(t *testing.T, pdfPath string) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Use(SecurityHeaders())

	g := e.Group("/api/v1")
	g.GET("/forms/:national_id", func(c echo.Context) error {
		if c.Param("national_id") == "000" {
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		}
		return c.JSON(http.StatusOK, map[string]string{"national_id": c.Param("national_id")})
	})
	g.GET("/forms/:national_id/pdf", func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, "application/pdf")
		return c.Attachment(pdfPath, "record-"+c.Param("national_id")+".pdf")
	})
	g.POST("/history", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})
	return e
}

func TestSecurityHeaders_RecordRoutes(t *testing.T) {
	pdf := filepath.Join(t.TempDir(), "record.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.4\n%%EOF\n"), 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	e := newHardenedServer(t, pdf)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
	}{
		{"record read", http.MethodGet, "/api/v1/forms/12345678900", http.StatusOK},
		{"unknown patient", http.MethodGet, "/api/v1/forms/000", http.StatusNotFound},
		{"pdf attachment", http.MethodGet, "/api/v1/forms/12345678900/pdf", http.StatusOK},
		{"history entry", http.MethodPost, "/api/v1/history", http.StatusCreated},
		{"unrouted path", http.MethodGet, "/api/v1/nothing-here", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			for header, want := range hardeningHeaders {
				if got := rec.Header().Get(header); got != want {
					t.Errorf("expected %s %q, got %q", header, want, got)
				}
			}
		})
	}
}

func TestSecurityHeaders_PDFAttachmentNotCached(t *testing.T) {
	pdf := filepath.Join(t.TempDir(), "record.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.4\n%%EOF\n"), 0o600); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	e := newHardenedServer(t, pdf)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/forms/555/pdf", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); got != `attachment; filename="record-555.pdf"` {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected the report to be marked no-store, got %q", got)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected the PDF body to be served")
	}
}
