// Package yaml loads run configuration from YAML files using gopkg.in/yaml.v3,
// validates it with go-playground/validator and overlays querier settings
// from the environment with koanf.
//
// The profiles, details and outputs sections are ordered mappings: their
// order in the file is the order of processing, of detail fields and of
// sinks.
package yaml

import (
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/CodeBeast357/downdrag"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Top-level configuration keys.
const (
	KeyQuerier   = "querier"
	KeyProfiles  = "profiles"
	KeyDetails   = "details"
	KeyOutputs   = "outputs"
	KeyTimeRules = "timerules"
)

// Load reads, decodes and validates the configuration file at path, then
// applies the environment overlay.
func Load(path string) (*downdrag.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode decodes a configuration document. It does not validate.
func Decode(r io.Reader) (*downdrag.Config, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, downdrag.Errorf(downdrag.EINVALID, "empty configuration")
		}
		return nil, downdrag.Errorf(downdrag.EINVALID, "configuration: %v", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, downdrag.Errorf(downdrag.EINVALID, "configuration must be a mapping")
	}
	root := doc.Content[0]

	cfg := &downdrag.Config{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		var err error
		switch key.Value {
		case KeyQuerier:
			err = decode(value, &cfg.Querier)
		case KeyTimeRules:
			err = decode(value, &cfg.TimeRules)
		case KeyProfiles:
			err = entries(value, func(name string, node *yaml.Node) error {
				var p downdrag.Profile
				if err := decode(node, &p); err != nil {
					return err
				}
				p.Source = name
				cfg.Profiles = append(cfg.Profiles, p)
				return nil
			})
		case KeyDetails:
			err = entries(value, func(name string, node *yaml.Node) error {
				var d downdrag.Detail
				if err := decode(node, &d); err != nil {
					return err
				}
				d.Name = name
				cfg.Details = append(cfg.Details, d)
				return nil
			})
		case KeyOutputs:
			err = entries(value, func(name string, node *yaml.Node) error {
				var o downdrag.Output
				if err := decode(node, &o); err != nil {
					return err
				}
				o.Kind = downdrag.OutputKind(name)
				cfg.Outputs = append(cfg.Outputs, o)
				return nil
			})
		default:
			return nil, downdrag.Errorf(downdrag.EINVALID, "line %d: unknown configuration key %q", key.Line, key.Value)
		}
		if err != nil {
			if downdrag.ErrorCode(err) == downdrag.EINVALID {
				return nil, err
			}
			return nil, downdrag.Errorf(downdrag.EINVALID, "%s: %v", key.Value, err)
		}
	}
	return cfg, nil
}

// entries calls fn for every key of an ordered mapping, in order.
func entries(node *yaml.Node, fn func(name string, value *yaml.Node) error) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return downdrag.Errorf(downdrag.EINVALID, "line %d: expected a mapping", node.Line)
	}
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if seen[key.Value] {
			return downdrag.Errorf(downdrag.EINVALID, "line %d: duplicate entry %q", key.Line, key.Value)
		}
		seen[key.Value] = true
		if err := fn(key.Value, node.Content[i+1]); err != nil {
			return fmt.Errorf("%s: %w", key.Value, err)
		}
	}
	return nil
}

// decode decodes node into v after checking that every mapping key, at any
// depth, names a field of v.
func decode(node *yaml.Node, v any) error {
	if err := knownKeys(node, reflect.TypeOf(v).Elem()); err != nil {
		return err
	}
	return node.Decode(v)
}

// knownKeys returns EINVALID for the first key of a mapping node that no
// field of struct type t decodes. Nested mappings are checked against the
// field they decode into.
func knownKeys(node *yaml.Node, t reflect.Type) error {
	if node.Kind != yaml.MappingNode || t.Kind() != reflect.Struct {
		return nil
	}
	fields := make(map[string]reflect.Type, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		fields[name] = f.Type
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		ft, ok := fields[key.Value]
		if !ok {
			return downdrag.Errorf(downdrag.EINVALID, "line %d: unknown key %q", key.Line, key.Value)
		}
		if err := knownKeys(node.Content[i+1], ft); err != nil {
			return err
		}
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct rules of cfg. Failures are EINVALID and list
// every offending field.
func Validate(cfg *downdrag.Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return downdrag.Errorf(downdrag.EINVALID, "configuration: %v", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = describe(fe)
	}
	return downdrag.Errorf(downdrag.EINVALID, "configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	ns := strings.TrimPrefix(fe.Namespace(), "Config.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s fails %s=%s (got %v)", ns, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s fails %s", ns, fe.Tag())
}
