package pattern

import (
	"sort"

	"github.com/pkg/errors"
)

//Template represent the seeding template which can be stamped on the editor grid
type Template struct {
	Name        string  //template name
	Descr       string  //template descr
	Coordinates [][]int //array of [row, col] coordinates relative to the top left corner
}

var ErrUnknownTemplate = errors.New("unknown template")

var templates = map[string]Template{}

//Register adds the template to the registry, the template with the same name is replaced
func Register(tmpl Template) {
	if tmpl.Name == "" {
		return
	}
	templates[tmpl.Name] = tmpl
}

//Lookup returns the registered template
func Lookup(name string) (Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return Template{}, errors.Wrapf(ErrUnknownTemplate, "%q", name)
	}
	return tmpl, nil
}

//Names returns the sorted names of the registered templates
func Names() []string {
	names := make([]string, 0, len(templates))
	for k := range templates {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(Template{"block", "still life 2x2", [][]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}})
	Register(Template{"blinker", "period 2 oscillator", [][]int{{0, 0}, {0, 1}, {0, 2}}})
	Register(Template{"toad", "period 2 oscillator", [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 0}, {1, 1}, {1, 2}}})
	Register(Template{"beacon", "period 2 oscillator", [][]int{{0, 0}, {0, 1}, {1, 0}, {2, 3}, {3, 2}, {3, 3}}})
	Register(Template{"glider", "spaceship moving down-right", [][]int{{0, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}}})
	Register(Template{"lwss", "lightweight spaceship", [][]int{
		{0, 1}, {0, 4},
		{1, 0},
		{2, 0}, {2, 4},
		{3, 0}, {3, 1}, {3, 2}, {3, 3},
	}})
	Register(Template{"sample", "the test sample with 3 stable patterns", [][]int{
		{1, 1}, {2, 1},
		{1, 2}, {2, 2},
		{3, 3},
		{2, 4},
		{3, 4},
		{3, 5},
	}})
}
