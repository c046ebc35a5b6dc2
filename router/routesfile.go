// router/routesfile.go
package router

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// routesFile is the on-disk route table:
//
//	routes:
//	  - name: home
//	    pattern: /
//	  - name: dashboard
//	    pattern: /dashboard/{id}
type routesFile struct {
	Routes []View `yaml:"routes"`
}

// DefaultViews is the table used when no routes file is present.
var DefaultViews = []View{
	{Name: "home", Pattern: "/"},
	{Name: "dashboard", Pattern: "/dashboard/{id}"},
	{Name: "settings", Pattern: "/settings"},
}

// ParseRoutes decodes a YAML route table. Unknown keys are rejected and every
// pattern is checked the way Register checks it.
func ParseRoutes(b []byte) ([]View, error) {
	var f routesFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode routes: %w", err)
	}
	if len(f.Routes) == 0 {
		return nil, fmt.Errorf("decode routes: no routes defined")
	}
	for _, v := range f.Routes {
		if _, err := compilePattern(v.Pattern); err != nil {
			return nil, fmt.Errorf("decode routes: view %q: %w", v.Name, err)
		}
	}
	return f.Routes, nil
}

// ReadRoutesFile reads and decodes the route table at path. A missing file
// is reported with an error wrapping os.ErrNotExist.
func ReadRoutesFile(path string) ([]View, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}
	views, err := ParseRoutes(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return views, nil
}
