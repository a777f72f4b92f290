package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(target string) Params {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		target     string
		wantLimit  int
		wantOffset int
	}{
		{"/samples", DefaultLimit, 0},
		{"/samples?limit=25&offset=10", 25, 10},
		{"/samples?limit=0", DefaultLimit, 0},
		{"/samples?limit=-5&offset=-3", DefaultLimit, 0},
		{"/samples?limit=9999", MaxLimit, 0},
		{"/samples?limit=abc&offset=xyz", DefaultLimit, 0},
	}
	for _, tc := range cases {
		p := paramsFor(tc.target)
		if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
			t.Errorf("%s: got %+v, want limit=%d offset=%d", tc.target, p, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	if r := NewResponse(nil, 100, 50, 0); !r.HasMore {
		t.Error("expected more pages at offset 0 of 100")
	}
	if r := NewResponse(nil, 100, 50, 50); r.HasMore {
		t.Error("expected no more pages at offset 50 of 100")
	}
	if r := NewResponse(nil, 0, 50, 0); r.HasMore {
		t.Error("expected no more pages for an empty listing")
	}
}
