// Package taxonomy loads the customer-journey stage definitions that drive
// prompt construction and label validation.
package taxonomy

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Eserhimas/customer-journey-risk-radar/internal/domain"
)

// Stage is one journey stage with the material shown to the oracle.
type Stage struct {
	Name        string   `yaml:"stage" json:"stage" validate:"required"`
	Description string   `yaml:"description" json:"description"`
	Examples    []string `yaml:"examples" json:"examples" validate:"required,min=1,dive,required"`
}

type document struct {
	Tasks []Stage `yaml:"tasks" validate:"required,min=1,dive"`
}

// Taxonomy is an ordered, immutable set of stages. It is safe for concurrent reads.
type Taxonomy struct {
	stages []Stage
	index  map[string]int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a taxonomy document (YAML or JSON) from disk.
func Load(path string) (*Taxonomy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Source: path, Reason: "cannot read taxonomy", Err: err}
	}
	return Parse(raw, path)
}

// Parse decodes a `tasks:` document and validates it.
func Parse(raw []byte, source string) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, &domain.ConfigError{Source: source, Reason: "malformed taxonomy", Err: err}
	}
	if len(doc.Tasks) == 0 {
		return nil, &domain.ConfigError{Source: source, Reason: "taxonomy has no stages"}
	}
	if err := validate.Struct(doc); err != nil {
		return nil, &domain.ConfigError{Source: source, Reason: describeValidation(err, doc.Tasks)}
	}
	tax, err := New(doc.Tasks)
	if err != nil {
		var cfgErr *domain.ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Source = source
		}
		return nil, err
	}
	return tax, nil
}

// New builds a taxonomy from stages, keeping their order.
func New(stages []Stage) (*Taxonomy, error) {
	if len(stages) == 0 {
		return nil, &domain.ConfigError{Reason: "taxonomy has no stages"}
	}

	t := &Taxonomy{
		stages: make([]Stage, 0, len(stages)),
		index:  make(map[string]int, len(stages)),
	}
	for i, st := range stages {
		switch {
		case strings.TrimSpace(st.Name) == "":
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("stage #%d has an empty name", i+1)}
		case strings.TrimSpace(st.Name) != st.Name:
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("stage %q has surrounding whitespace", st.Name)}
		case st.Name == domain.UnknownStage:
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("stage name %q is reserved", st.Name)}
		case len(st.Examples) == 0:
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("stage %q has no examples", st.Name)}
		}
		if _, dup := t.index[st.Name]; dup {
			return nil, &domain.ConfigError{Reason: fmt.Sprintf("duplicate stage %q", st.Name)}
		}

		t.index[st.Name] = i
		t.stages = append(t.stages, Stage{
			Name:        st.Name,
			Description: st.Description,
			Examples:    append([]string(nil), st.Examples...),
		})
	}
	return t, nil
}

// Stages returns a copy of the stages in document order.
func (t *Taxonomy) Stages() []Stage {
	out := make([]Stage, len(t.stages))
	for i, st := range t.stages {
		st.Examples = append([]string(nil), st.Examples...)
		out[i] = st
	}
	return out
}

// Names lists stage names in document order.
func (t *Taxonomy) Names() []string {
	names := make([]string, len(t.stages))
	for i, st := range t.stages {
		names[i] = st.Name
	}
	return names
}

// Lookup matches a stage by exact, case-sensitive name.
func (t *Taxonomy) Lookup(name string) (Stage, bool) {
	i, ok := t.index[name]
	if !ok {
		return Stage{}, false
	}
	return t.stages[i], true
}

// Len reports the number of stages.
func (t *Taxonomy) Len() int {
	if t == nil {
		return 0
	}
	return len(t.stages)
}

func describeValidation(err error, stages []Stage) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	stage := stageFromNamespace(fe.Namespace(), stages)
	switch fe.StructField() {
	case "Name":
		return fmt.Sprintf("stage %s has an empty name", stage)
	case "Examples":
		return fmt.Sprintf("stage %s has no examples", stage)
	}
	if strings.HasPrefix(fe.StructField(), "Examples[") {
		return fmt.Sprintf("stage %s has an empty example", stage)
	}
	return fe.Error()
}

// stageFromNamespace turns "document.Tasks[2].Examples" into a readable stage reference.
func stageFromNamespace(ns string, stages []Stage) string {
	start := strings.Index(ns, "Tasks[")
	if start < 0 {
		return "?"
	}
	rest := ns[start+len("Tasks["):]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return "?"
	}
	var idx int
	if _, err := fmt.Sscanf(rest[:end], "%d", &idx); err != nil || idx < 0 || idx >= len(stages) {
		return "?"
	}
	if name := stages[idx].Name; name != "" {
		return fmt.Sprintf("%q", name)
	}
	return fmt.Sprintf("#%d", idx+1)
}
