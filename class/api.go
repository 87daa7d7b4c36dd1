package class

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/wippyai/gdbind/errors"
)

// API is the part of the engine's JSON API description the binding needs:
// the class list and the singletons.
type API struct {
	Header     APIHeader      `json:"header"`
	Classes    []APIClass     `json:"classes"`
	Singletons []APISingleton `json:"singletons"`
}

// APIHeader identifies the engine build the description came from.
type APIHeader struct {
	VersionMajor    int    `json:"version_major"`
	VersionMinor    int    `json:"version_minor"`
	VersionPatch    int    `json:"version_patch"`
	VersionFullName string `json:"version_full_name"`
}

// APIClass is one entry of the "classes" array.
type APIClass struct {
	Name           string `json:"name"`
	Inherits       string `json:"inherits"`
	APIType        string `json:"api_type"`
	IsRefCounted   bool   `json:"is_refcounted"`
	IsInstantiable bool   `json:"is_instantiable"`
}

// APISingleton is one entry of the "singletons" array.
type APISingleton struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// LoadAPI decodes an API description.
func LoadAPI(r io.Reader) (*API, error) {
	var api API
	dec := json.NewDecoder(r)
	if err := dec.Decode(&api); err != nil {
		return nil, errors.ParseFailed("api description", err)
	}
	if len(api.Classes) == 0 {
		return nil, errors.Load("api description has no classes", nil)
	}
	return &api, nil
}

// Descriptors converts the class list into descriptors ordered so that
// every base precedes its subclasses. Classes whose base is missing from
// the description are reported as an error.
func (a *API) Descriptors() ([]*Descriptor, error) {
	singletons := make(map[string]bool, len(a.Singletons))
	for _, s := range a.Singletons {
		singletons[s.Type] = true
	}

	byName := make(map[string]APIClass, len(a.Classes))
	for _, c := range a.Classes {
		if c.Name == "" {
			return nil, errors.InvalidData(errors.PhaseLoad, "class entry without a name")
		}
		if _, dup := byName[c.Name]; dup {
			return nil, errors.Duplicate("class", c.Name)
		}
		byName[c.Name] = c
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Descriptor, 0, len(names))
	state := make(map[string]int, len(names)) // 1 visiting, 2 done
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case 1:
			return errors.InvalidData(errors.PhaseLoad, fmt.Sprintf("inheritance cycle through %q", name))
		case 2:
			return nil
		}
		c, ok := byName[name]
		if !ok {
			return errors.NotFound(errors.PhaseLoad, "base class", name)
		}
		state[name] = 1
		if c.Inherits != "" {
			if err := visit(c.Inherits); err != nil {
				return err
			}
		}
		state[name] = 2
		out = append(out, &Descriptor{
			Name:         c.Name,
			Base:         c.Inherits,
			Memory:       apiMemory(c),
			Domain:       DomainEngine,
			Instantiable: c.IsInstantiable,
			Singleton:    singletons[c.Name],
		})
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func apiMemory(c APIClass) MemoryCategory {
	switch {
	case c.Name == RootObject:
		return MemoryDynamic
	case c.IsRefCounted:
		return MemoryRefCounted
	default:
		return MemoryManual
	}
}

// RegisterAPI registers every class of api in reg.
func RegisterAPI(reg *Registry, api *API) error {
	descs, err := api.Descriptors()
	if err != nil {
		return err
	}
	for _, d := range descs {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}
