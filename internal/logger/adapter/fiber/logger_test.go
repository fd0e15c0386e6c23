package fiber_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univhr/hrcore/internal/logger"
	adapter "github.com/univhr/hrcore/internal/logger/adapter/fiber"
)

type accessLine struct {
	IP     string `json:"IP"`
	Status int    `json:"status"`
	URI    string `json:"URI"`
	Method string `json:"method"`
	Host   string `json:"host"`
	Caller *uint  `json:"employee_id"`
	Error  string `json:"error"`
}

func newApp(cfg adapter.Config) *fiber.App {
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		if c.Get("X-Test-Caller") != "" {
			c.Locals("caller_id", uint(42))
		}

		return c.Next()
	})
	app.Use(adapter.New(cfg))
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/checkalive", func(c fiber.Ctx) error {
		return c.SendString("alive")
	})
	app.Get("/boom", func(_ fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "boom")
	})

	return app
}

func TestAccessLog(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		withCaller bool
		want       *accessLine
	}{
		{
			name:   "root",
			target: "/",
			want:   &accessLine{IP: "0.0.0.0", Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:   "query string kept",
			target: "/?test=123",
			want:   &accessLine{IP: "0.0.0.0", Status: 200, URI: "/?test=123", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:   "unknown route",
			target: "/no_path",
			want:   &accessLine{IP: "0.0.0.0", Status: 404, URI: "/no_path", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:   "handler error",
			target: "/boom",
			want: &accessLine{
				IP: "0.0.0.0", Status: 409, URI: "/boom", Method: fiber.MethodGet, Host: "example.com", Error: "boom",
			},
		},
		{
			name:       "caller logged",
			target:     "/",
			withCaller: true,
			want:       &accessLine{IP: "0.0.0.0", Status: 200, URI: "/", Method: fiber.MethodGet, Host: "example.com"},
		},
		{
			name:   "checkalive skipped",
			target: "/checkalive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			app := newApp(adapter.Config{
				Config:        logger.Log{DisableCheckAlive: true},
				CheckAliveURI: "/checkalive",
				CallerLocal:   "caller_id",
				Output:        &out,
			})

			req := httptest.NewRequest(fiber.MethodGet, tt.target, nil)
			if tt.withCaller {
				req.Header.Set("X-Test-Caller", "1")
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Header.Get("X-Performance"))

			if tt.want == nil {
				assert.Empty(t, out.String())
				return
			}

			var got accessLine
			require.NoError(t, json.Unmarshal(out.Bytes(), &got))

			assert.Equal(t, tt.want.IP, got.IP)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.Equal(t, tt.want.URI, got.URI)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, tt.want.Host, got.Host)
			assert.Equal(t, tt.want.Error, got.Error)

			if tt.withCaller {
				require.NotNil(t, got.Caller)
				assert.Equal(t, uint(42), *got.Caller)
			} else {
				assert.Nil(t, got.Caller)
			}
		})
	}
}

func TestAccessLogErrorStatus(t *testing.T) {
	var out bytes.Buffer

	app := newApp(adapter.Config{
		Output:      &out,
		ErrorStatus: func(error) int { return fiber.StatusTeapot },
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	var got accessLine
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, fiber.StatusTeapot, got.Status)
}
