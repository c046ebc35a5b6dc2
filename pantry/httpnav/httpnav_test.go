package httpnav

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/routenav/pantry/routenav"
	"github.com/stretchr/testify/assert"
)

func TestRequestQuery(t *testing.T) {
	r := httptest.NewRequest("GET", "/go/home?team=orgA&tab=1&tab=2&keep=0", nil)

	got := RequestQuery(r).CurrentQuery()
	assert.Equal(t, routenav.Query{"team": "orgA", "tab": "1", "keep": "0"}, got)
}

func TestStateQueryDropsControlParams(t *testing.T) {
	r := httptest.NewRequest("GET",
		"/go/dashboard?team=orgA&keep=1&set.lang=en&param.id=7&settings=x", nil)

	got := StateQuery(r).CurrentQuery()
	assert.Equal(t, routenav.Query{"team": "orgA", "settings": "x"}, got)
}

func TestStateQueryFeedsBuild(t *testing.T) {
	r := httptest.NewRequest("GET", "/go/settings?team=orgA&set.team=orgB", nil)

	d := routenav.Build(StateQuery(r), "settings", RouteParams(r), KeepState(r), QueryUpdate(r, SetPrefix))
	assert.Equal(t, routenav.Descriptor{ViewName: "settings", Query: routenav.Query{"team": "orgB"}}, d)

	// The request itself is untouched.
	assert.Equal(t, "orgA", r.URL.Query().Get("team"))
}

func TestQueryUpdate(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want routenav.Query
	}{
		{"none", "/go/home?team=orgA", nil},
		{"single", "/go/home?set.lang=en", routenav.Query{"lang": "en"}},
		{"first value wins", "/go/home?set.lang=en&set.lang=fr", routenav.Query{"lang": "en"}},
		{"empty name skipped", "/go/home?set.=x", nil},
		{"empty value kept", "/go/home?set.team=", routenav.Query{"team": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			assert.Equal(t, tt.want, QueryUpdate(r, SetPrefix))
		})
	}
}

func TestRouteParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/descriptor/dashboard?param.id=7&team=orgA", nil)
	assert.Equal(t, routenav.Params{"id": "7"}, RouteParams(r))

	r = httptest.NewRequest("GET", "/api/descriptor/home", nil)
	assert.Nil(t, RouteParams(r))
}

func TestKeepState(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"keep=1", true},
		{"keep=true", true},
		{"keep=bogus", true},
		{"keep=0", false},
		{"keep=false", false},
		{"keep=No", false},
		{"keep=%20off%20", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/go/home?"+tt.query, nil)
			assert.Equal(t, tt.want, KeepState(r))
		})
	}
}

func TestCurrentPath(t *testing.T) {
	r := httptest.NewRequest("GET", "/dashboard/7?team=orgA", nil)
	assert.Equal(t, "/dashboard/7?team=orgA", CurrentPath(r))

	r = httptest.NewRequest("GET", "/dashboard/7", nil)
	assert.Equal(t, "/dashboard/7", CurrentPath(r))
}
