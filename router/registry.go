// router/registry.go
package router

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/dalemusser/routenav/metrics"
	"github.com/dalemusser/routenav/pantry/httpnav"
	"github.com/dalemusser/routenav/pantry/routenav"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	// ErrUnknownView means no route is registered under the descriptor's view name.
	ErrUnknownView = errors.New("router: unknown view")
	// ErrMissingParam means the route pattern needs a parameter the descriptor lacks.
	ErrMissingParam = errors.New("router: missing route parameter")
	// ErrInvalidParam means a parameter value does not match its {name:regex} constraint.
	ErrInvalidParam = errors.New("router: route parameter does not match pattern")
	// ErrUnsafeTarget means the resolved URL is not a same-origin path.
	ErrUnsafeTarget = errors.New("router: unsafe redirect target")
	// ErrDuplicateView is returned by Register for a name already in use.
	ErrDuplicateView = errors.New("router: duplicate view")
	// ErrRouteConflict is returned by Handle when the pattern is already
	// served by the router or chi refuses it.
	ErrRouteConflict = errors.New("router: route conflict")
)

// View is a named route: a view name bound to a chi pattern.
type View struct {
	Name    string `json:"name" yaml:"name"`
	Pattern string `json:"pattern" yaml:"pattern"`
}

// Registry maps view names to chi patterns and turns navigation descriptors
// into URLs. It is the router collaborator for routenav descriptors.
// A Registry is safe for concurrent use.
type Registry struct {
	logger         *zap.Logger
	redirectStatus int

	mu    sync.RWMutex
	views map[string]*compiledView
}

type compiledView struct {
	View
	parts []part
}

// part is either literal text or a placeholder name with its optional
// regex constraint.
type part struct {
	text  string
	param bool
	re    *regexp.Regexp
}

// NewRegistry returns an empty registry. redirectStatus is used by Push;
// 0 selects 303 See Other.
func NewRegistry(logger *zap.Logger, redirectStatus int) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if redirectStatus == 0 {
		redirectStatus = http.StatusSeeOther
	}
	return &Registry{
		logger:         logger,
		redirectStatus: redirectStatus,
		views:          make(map[string]*compiledView),
	}
}

// Register records pattern under name.
func (g *Registry) Register(name, pattern string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("register %q: %w", pattern, routenav.ErrEmptyViewName)
	}
	parts, err := compilePattern(pattern)
	if err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.views[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateView, name)
	}
	g.views[name] = &compiledView{View: View{Name: name, Pattern: pattern}, parts: parts}
	return nil
}

// Handle registers the view and mounts h for GET on r. A pattern r already
// serves for GET is rejected, and a chi panic while mounting is returned as
// ErrRouteConflict with the view unregistered again.
func (g *Registry) Handle(r chi.Router, name, pattern string, h http.HandlerFunc) (err error) {
	if served(r, pattern) {
		return fmt.Errorf("%w: view %q pattern %q is already routed", ErrRouteConflict, name, pattern)
	}
	if err := g.Register(name, pattern); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			g.unregister(name)
			err = fmt.Errorf("%w: view %q: %v", ErrRouteConflict, name, p)
		}
	}()
	r.Get(pattern, h)
	return nil
}

func (g *Registry) unregister(name string) {
	g.mu.Lock()
	delete(g.views, strings.TrimSpace(name))
	g.mu.Unlock()
}

// served reports whether r already has a GET route with exactly pattern.
func served(r chi.Routes, pattern string) bool {
	found := errors.New("found")
	err := chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if method == http.MethodGet && route == pattern {
			return found
		}
		return nil
	})
	return errors.Is(err, found)
}

// Views returns the registered views sorted by name.
func (g *Registry) Views() []View {
	g.mu.RLock()
	out := make([]View, 0, len(g.views))
	for _, v := range g.views {
		out = append(out, v.View)
	}
	g.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether name is registered.
func (g *Registry) Has(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.views[name]
	return ok
}

// Resolve renders d as a local URL: the view's pattern with placeholders
// filled from d.Params, followed by d.Query encoded with sorted keys.
func (g *Registry) Resolve(d routenav.Descriptor) (string, error) {
	if err := d.Validate(); err != nil {
		return "", err
	}

	g.mu.RLock()
	v, ok := g.views[d.ViewName]
	g.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownView, d.ViewName)
	}

	var b strings.Builder
	for _, p := range v.parts {
		if !p.param {
			b.WriteString(p.text)
			continue
		}
		val, ok := d.Params[p.text]
		s := ""
		if ok && val != nil {
			s = fmt.Sprint(val)
		}
		if s == "" {
			return "", fmt.Errorf("%w: view %q needs %q", ErrMissingParam, d.ViewName, p.text)
		}
		if p.re != nil && !p.re.MatchString(s) {
			return "", fmt.Errorf("%w: view %q param %q = %q, want %s", ErrInvalidParam, d.ViewName, p.text, s, p.re)
		}
		b.WriteString(escapeParam(p.text, s))
	}

	target := b.String()
	if len(d.Query) > 0 {
		vals := make(url.Values, len(d.Query))
		for k, val := range d.Query {
			vals.Set(k, val)
		}
		target += "?" + vals.Encode()
	}

	if !isSafeLocal(target) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeTarget, target)
	}
	return target, nil
}

// Push resolves d and redirects the client to it. On failure nothing is
// written and the error is returned for the caller to report.
func (g *Registry) Push(w http.ResponseWriter, r *http.Request, d routenav.Descriptor) error {
	target, err := g.Resolve(d)

	view := d.ViewName
	if !g.Has(view) {
		view = "unknown"
	}
	metrics.ObserveNavigation(view, Outcome(err))

	if err != nil {
		g.logger.Warn("navigation failed",
			zap.String("view", d.ViewName),
			zap.String("from", httpnav.CurrentPath(r)),
			zap.Error(err))
		return err
	}

	g.logger.Debug("navigate",
		zap.String("view", d.ViewName),
		zap.String("from", httpnav.CurrentPath(r)),
		zap.String("target", target),
		zap.Int("query_keys", len(d.Query)))
	http.Redirect(w, r, target, g.redirectStatus)
	return nil
}

// Outcome maps a Resolve/Push error to the label used in metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "redirected"
	case errors.Is(err, ErrUnknownView):
		return "unknown_view"
	case errors.Is(err, ErrMissingParam):
		return "missing_param"
	case errors.Is(err, ErrInvalidParam):
		return "invalid_param"
	case errors.Is(err, ErrUnsafeTarget):
		return "unsafe_target"
	}
	return "invalid"
}

// compilePattern splits a chi pattern into literal text and placeholders.
// "{id}" and "{id:[0-9]+}" yield the param "id"; a trailing "*" yields "*".
// Constraints are anchored and compiled the way chi does, and a placeholder
// name may appear only once.
func compilePattern(pattern string) ([]part, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must begin with '/'", pattern)
	}
	var parts []part
	seen := make(map[string]bool)
	lit := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			depth, end := 0, -1
			for j := i; j < len(pattern); j++ {
				if pattern[j] == '{' {
					depth++
				} else if pattern[j] == '}' {
					depth--
					if depth == 0 {
						end = j
						break
					}
				}
			}
			if end < 0 {
				return nil, fmt.Errorf("unclosed '{' in pattern %q", pattern)
			}
			name, expr, hasExpr := strings.Cut(pattern[i+1:end], ":")
			if name == "" {
				return nil, fmt.Errorf("empty placeholder in pattern %q", pattern)
			}
			if seen[name] {
				return nil, fmt.Errorf("duplicate placeholder %q in pattern %q", name, pattern)
			}
			seen[name] = true
			p := part{text: name, param: true}
			if hasExpr && expr != "" {
				re, err := compileConstraint(expr)
				if err != nil {
					return nil, fmt.Errorf("placeholder %q in pattern %q: %w", name, pattern, err)
				}
				p.re = re
			}
			if lit < i {
				parts = append(parts, part{text: pattern[lit:i]})
			}
			parts = append(parts, p)
			i = end
			lit = end + 1
		case '*':
			if i != len(pattern)-1 {
				return nil, fmt.Errorf("wildcard must be last in pattern %q", pattern)
			}
			if lit < i {
				parts = append(parts, part{text: pattern[lit:i]})
			}
			parts = append(parts, part{text: "*", param: true})
			lit = len(pattern)
		}
	}
	if lit < len(pattern) {
		parts = append(parts, part{text: pattern[lit:]})
	}
	return parts, nil
}

func compileConstraint(expr string) (*regexp.Regexp, error) {
	if !strings.HasPrefix(expr, "^") {
		expr = "^" + expr
	}
	if !strings.HasSuffix(expr, "$") {
		expr += "$"
	}
	return regexp.Compile(expr)
}

// escapeParam path-escapes a value. The wildcard keeps its slashes.
func escapeParam(name, s string) string {
	if name != "*" {
		return url.PathEscape(s)
	}
	segs := strings.Split(s, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}

// isSafeLocal reports whether target is a same-origin absolute path that
// cannot be read as a scheme-relative URL or split a header.
func isSafeLocal(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	if strings.ContainsAny(target, "\r\n\\") {
		return false
	}
	u, err := url.Parse(target)
	return err == nil && !u.IsAbs() && u.Host == ""
}
