package helper

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func resolveVia(t *testing.T, query string, def, maxPer int) Paging {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(ResolvePaging(c, def, maxPer))
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+query, nil), -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var p Paging
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return p
}

func TestResolvePaging(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		maxPer int
		want   Paging
	}{
		{"defaults", "", 100, Paging{Page: 1, PerPage: 20, Offset: 0, Limit: 20}},
		{"third page", "?page=3&per_page=10", 100, Paging{Page: 3, PerPage: 10, Offset: 20, Limit: 10}},
		{"limit alias", "?limit=5", 100, Paging{Page: 1, PerPage: 5, Offset: 0, Limit: 5}},
		{"garbage", "?page=abc&per_page=-4", 100, Paging{Page: 1, PerPage: 20, Offset: 0, Limit: 20}},
		{"per_page capped", "?per_page=500", 100, Paging{Page: 1, PerPage: 100, Offset: 0, Limit: 100}},
		{"unbounded max falls back", "?per_page=999999", 0, Paging{Page: 1, PerPage: MaxPerPage, Offset: 0, Limit: MaxPerPage}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resolveVia(t, tc.query, 20, tc.maxPer); got != tc.want {
				t.Fatalf("got %+v want %+v", got, tc.want)
			}
		})
	}
}

func TestResolvePagingHugePageDoesNotOverflow(t *testing.T) {
	for _, q := range []string{
		"?page=9223372036854775807&per_page=100",
		"?page=99999999999999999999999&per_page=100",
		"?page=9223372036854775807&per_page=9223372036854775807",
	} {
		got := resolveVia(t, q, 20, 0)
		if got.Offset < 0 {
			t.Fatalf("%s: negative offset %d", q, got.Offset)
		}
		if got.Page != MaxPage {
			t.Fatalf("%s: page=%d want %d", q, got.Page, MaxPage)
		}
		if got.Offset != (MaxPage-1)*got.PerPage {
			t.Fatalf("%s: offset=%d", q, got.Offset)
		}
	}
}
