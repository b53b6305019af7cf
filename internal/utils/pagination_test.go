package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func parseVia(t *testing.T, target string) Pagination {
	t.Helper()
	app := fiber.New()

	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	return got
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name   string
		target string
		want   Pagination
	}{
		{"defaults", "/", Pagination{Page: 1, Limit: 50, Offset: 0}},
		{"explicit", "/?page=3&limit=20", Pagination{Page: 3, Limit: 20, Offset: 40}},
		{"limit capped", "/?limit=500", Pagination{Page: 1, Limit: 100, Offset: 0}},
		{"negative values fall back", "/?page=-2&limit=-5", Pagination{Page: 1, Limit: 50, Offset: 0}},
		{"garbage falls back", "/?page=abc&limit=xyz", Pagination{Page: 1, Limit: 50, Offset: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseVia(t, tc.target); got != tc.want {
				b, _ := json.Marshal(got)
				t.Errorf("got %s, want %+v", b, tc.want)
			}
		})
	}
}
