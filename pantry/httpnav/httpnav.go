// pantry/httpnav/httpnav.go
package httpnav

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/routenav/pantry/routenav"
)

// Control parameters understood by the navigation endpoints. They steer
// descriptor building and are never carried over as state query.
const (
	KeepParam   = "keep"
	SetPrefix   = "set."
	ParamPrefix = "param."
)

// RequestQuery exposes r's query string as a routenav.QuerySource.
// Multi-valued keys contribute their first value.
func RequestQuery(r *http.Request) routenav.QuerySource {
	return requestQuery{r: r}
}

type requestQuery struct {
	r *http.Request
}

func (q requestQuery) CurrentQuery() routenav.Query {
	if q.r == nil || q.r.URL == nil {
		return nil
	}
	return firstValues(q.r.URL.Query())
}

// StateQuery is RequestQuery minus the control parameters (keep, set.*,
// param.*), so they do not leak into the next navigation.
func StateQuery(r *http.Request) routenav.QuerySource {
	return stateQuery{r: r}
}

type stateQuery struct {
	r *http.Request
}

func (q stateQuery) CurrentQuery() routenav.Query {
	all := requestQuery(q).CurrentQuery()
	for k := range all {
		if isControlKey(k) {
			delete(all, k)
		}
	}
	return all
}

// QueryUpdate collects "<prefix><key>=<value>" parameters into an update,
// stripping the prefix. It returns nil when none are present.
func QueryUpdate(r *http.Request, prefix string) routenav.Query {
	return prefixed(r, prefix)
}

// RouteParams collects "param.<name>=<value>" parameters as route params.
// It returns nil when none are present.
func RouteParams(r *http.Request) routenav.Params {
	q := prefixed(r, ParamPrefix)
	if q == nil {
		return nil
	}
	p := make(routenav.Params, len(q))
	for k, v := range q {
		p[k] = v
	}
	return p
}

// KeepState reads the keep= parameter. Missing or unrecognised values keep
// the state query.
func KeepState(r *http.Request) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(KeepParam))) {
	case "0", "false", "no", "off":
		return false
	}
	return true
}

// CurrentPath returns the request path with its raw query, for logging.
func CurrentPath(r *http.Request) string {
	p := r.URL.Path
	if q := r.URL.RawQuery; q != "" {
		p += "?" + q
	}
	return p
}

func prefixed(r *http.Request, prefix string) routenav.Query {
	var out routenav.Query
	for k, vs := range r.URL.Query() {
		name, ok := strings.CutPrefix(k, prefix)
		if !ok || name == "" || len(vs) == 0 {
			continue
		}
		if out == nil {
			out = make(routenav.Query)
		}
		out[name] = vs[0]
	}
	return out
}

func firstValues(v url.Values) routenav.Query {
	out := make(routenav.Query, len(v))
	for k, vs := range v {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}

func isControlKey(k string) bool {
	return k == KeepParam || strings.HasPrefix(k, SetPrefix) || strings.HasPrefix(k, ParamPrefix)
}
