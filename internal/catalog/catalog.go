package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kode4food/kubetour/pkg/api"
	"github.com/kode4food/kubetour/pkg/util"
)

type (
	// Catalog is the immutable set of lookup tables
	Catalog struct {
		tours      map[api.TourID]*api.Tour
		tourOrder  []api.TourID
		components map[api.ComponentID]*api.Component
		compOrder  []api.ComponentID
		mappings   *util.PathTree[*api.FieldMapping]
		questions  map[api.Difficulty][]*api.Question
	}

	document struct {
		Components    []*api.Component    `yaml:"components"`
		Tours         []*api.Tour         `yaml:"tours"`
		FieldMappings []*api.FieldMapping `yaml:"field_mappings"`
		Questions     []*api.Question     `yaml:"questions"`
	}
)

var (
	ErrTourNotFound      = errors.New("tour not found")
	ErrComponentNotFound = errors.New("component not found")
	ErrTourDupe          = errors.New("tour ID repeated")
	ErrComponentDupe     = errors.New("component ID repeated")
	ErrMappingDupe       = errors.New("field mapping path repeated")
	ErrQuestionDupe      = errors.New("question ID repeated")
	ErrUnknownTag        = errors.New("active tag names no component")
	ErrUnknownComponent  = errors.New("field mapping names no component")
)

//go:embed content.yaml
var content []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded content
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = MustLoad(content)
	})
	return defaultCatalog
}

// MustLoad is Load that panics on error
func MustLoad(data []byte) *Catalog {
	c, err := Load(data)
	if err != nil {
		panic(fmt.Errorf("catalog: %w", err))
	}
	return c
}

// Load decodes and validates a catalog document
func Load(data []byte) (*Catalog, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	c := &Catalog{
		tours:      map[api.TourID]*api.Tour{},
		components: map[api.ComponentID]*api.Component{},
		mappings:   util.NewPathTree[*api.FieldMapping](),
		questions:  map[api.Difficulty][]*api.Question{},
	}
	if err := c.addComponents(doc.Components); err != nil {
		return nil, err
	}
	if err := c.addTours(doc.Tours); err != nil {
		return nil, err
	}
	if err := c.addMappings(doc.FieldMappings); err != nil {
		return nil, err
	}
	if err := c.addQuestions(doc.Questions); err != nil {
		return nil, err
	}
	return c, nil
}

// Tour returns the tour with the given ID
func (c *Catalog) Tour(id api.TourID) (*api.Tour, error) {
	if t, ok := c.tours[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTourNotFound, id)
}

// Tours returns every tour in document order
func (c *Catalog) Tours() []*api.Tour {
	res := make([]*api.Tour, 0, len(c.tourOrder))
	for _, id := range c.tourOrder {
		res = append(res, c.tours[id])
	}
	return res
}

// Component returns the component with the given ID
func (c *Catalog) Component(id api.ComponentID) (*api.Component, error) {
	if comp, ok := c.components[id]; ok {
		return comp, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, id)
}

// Components returns every component in document order
func (c *Catalog) Components() []*api.Component {
	res := make([]*api.Component, 0, len(c.compOrder))
	for _, id := range c.compOrder {
		res = append(res, c.components[id])
	}
	return res
}

// HasComponent reports whether id names a known component
func (c *Catalog) HasComponent(id api.ComponentID) bool {
	_, ok := c.components[id]
	return ok
}

// FieldMapping returns the mapping for a dotted path. List indexes in the
// path are written as the list marker
func (c *Catalog) FieldMapping(path string) (*api.FieldMapping, bool) {
	return c.mappings.Get(api.SplitPath(path))
}

// MatchField returns the mapping stored at exactly segments
func (c *Catalog) MatchField(segments []string) (*api.FieldMapping, bool) {
	return c.mappings.Get(segments)
}

// IsMappedPrefix reports whether any mapping is stored at or below segments
func (c *Catalog) IsMappedPrefix(segments []string) bool {
	return c.mappings.HasPrefix(segments)
}

// FieldMappings returns every mapping in path order
func (c *Catalog) FieldMappings() []*api.FieldMapping {
	var res []*api.FieldMapping
	c.mappings.Walk(func(_ []string, m *api.FieldMapping) {
		res = append(res, m)
	})
	return res
}

// Questions returns the question bank for a difficulty
func (c *Catalog) Questions(d api.Difficulty) ([]*api.Question, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return c.questions[d], nil
}

// ToursFeaturing returns the tours with a step highlighting id
func (c *Catalog) ToursFeaturing(id api.ComponentID) []api.TourID {
	var res []api.TourID
	for _, tid := range c.tourOrder {
		for _, st := range c.tours[tid].Steps {
			if st.IsActive(id) {
				res = append(res, tid)
				break
			}
		}
	}
	return res
}

func (c *Catalog) addComponents(comps []*api.Component) error {
	for _, comp := range comps {
		if err := comp.Validate(); err != nil {
			return err
		}
		if _, ok := c.components[comp.ID]; ok {
			return fmt.Errorf("%w: %s", ErrComponentDupe, comp.ID)
		}
		c.components[comp.ID] = comp
		c.compOrder = append(c.compOrder, comp.ID)
	}
	return nil
}

func (c *Catalog) addTours(tours []*api.Tour) error {
	for _, t := range tours {
		t.Steps = api.Indexed(t.Steps)
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tour %s: %w", t.ID, err)
		}
		if _, ok := c.tours[t.ID]; ok {
			return fmt.Errorf("%w: %s", ErrTourDupe, t.ID)
		}
		for _, st := range t.Steps {
			for _, tag := range st.ActiveTags {
				if !c.HasComponent(tag) {
					return fmt.Errorf("tour %s, step %d: %w: %s",
						t.ID, st.Index, ErrUnknownTag, tag)
				}
			}
		}
		c.tours[t.ID] = t
		c.tourOrder = append(c.tourOrder, t.ID)
	}
	return nil
}

func (c *Catalog) addMappings(mappings []*api.FieldMapping) error {
	for _, m := range mappings {
		if err := m.Validate(); err != nil {
			return err
		}
		if !c.HasComponent(m.Component) {
			return fmt.Errorf("%w: %s -> %s",
				ErrUnknownComponent, m.Path, m.Component)
		}
		segs := m.Segments()
		if _, ok := c.mappings.Get(segs); ok {
			return fmt.Errorf("%w: %s", ErrMappingDupe, m.Path)
		}
		c.mappings.Insert(segs, m)
	}
	return nil
}

func (c *Catalog) addQuestions(questions []*api.Question) error {
	seen := util.Set[string]{}
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
		if seen.Contains(q.ID) {
			return fmt.Errorf("%w: %s", ErrQuestionDupe, q.ID)
		}
		seen.Add(q.ID)
		c.questions[q.Difficulty] = append(c.questions[q.Difficulty], q)
	}
	return nil
}
