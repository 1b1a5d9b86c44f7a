// Package config loads pgdict configuration from CUE.
//
//	translator: raw_text_equality: true
//	mappings: [
//		{store_type: "citext", shape: "string"},
//	]
//
// The file is unified with a closed schema, so misspelled fields are
// reported with their position rather than silently ignored.
package config

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/pgdict/internal/translate"
	"github.com/roach88/pgdict/internal/typemap"
)

const schema = `
#Config: {
	translator?: {
		raw_text_equality?: bool
	}
	mappings?: [...#Mapping]
}

#Mapping: {
	store_type: string & != ""
	shape:      string & != ""
}
`

// Error codes of LoadError.
const (
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeSchema      = "E201" // Value does not match the schema
	ErrCodeShape       = "E202" // Unparseable shape
	ErrCodeRegistry    = "E203" // Mappings do not form a registry
)

// LoadError describes a configuration problem, positioned when possible.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Config is the loaded configuration.
type Config struct {
	Translator TranslatorConfig

	// Mappings are registered ahead of the built-in mappings, so a
	// configured mapping becomes the default for its shape.
	Mappings []Mapping
}

// TranslatorConfig holds translate.Options.
type TranslatorConfig struct {
	RawTextEquality bool
}

// Mapping is a configured (store type, shape) pair.
type Mapping struct {
	StoreType string
	Shape     typemap.Shape
	Pos       token.Pos
}

// Default returns the configuration used without a config file.
func Default() *Config {
	return &Config{}
}

// Load reads and parses the CUE file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse parses CUE source. filename is used in positions.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()
	def := ctx.CompileString(schema).LookupPath(cue.ParsePath("#Config"))
	if err := def.Err(); err != nil {
		// The schema is a constant; failing to compile it is a programming error.
		panic(fmt.Sprintf("config: schema: %v", err))
	}

	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cueError(ErrCodeBuildFailed, err)
	}
	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueError(ErrCodeSchema, err)
	}

	cfg := Default()
	if raw := v.LookupPath(cue.ParsePath("translator.raw_text_equality")); raw.Exists() {
		b, err := raw.Bool()
		if err != nil {
			return nil, cueError(ErrCodeSchema, err)
		}
		cfg.Translator.RawTextEquality = b
	}

	mappings := v.LookupPath(cue.ParsePath("mappings"))
	if !mappings.Exists() {
		return cfg, nil
	}
	iter, err := mappings.List()
	if err != nil {
		return nil, cueError(ErrCodeSchema, err)
	}
	for iter.Next() {
		m, err := parseMapping(iter.Value())
		if err != nil {
			return nil, err
		}
		cfg.Mappings = append(cfg.Mappings, m)
	}
	return cfg, nil
}

func parseMapping(v cue.Value) (Mapping, error) {
	store, err := v.LookupPath(cue.ParsePath("store_type")).String()
	if err != nil {
		return Mapping{}, cueError(ErrCodeSchema, err)
	}
	shapeVal := v.LookupPath(cue.ParsePath("shape"))
	shapeText, err := shapeVal.String()
	if err != nil {
		return Mapping{}, cueError(ErrCodeSchema, err)
	}
	shape, err := typemap.ParseShape(shapeText)
	if err != nil {
		return Mapping{}, &LoadError{Code: ErrCodeShape, Message: err.Error(), Pos: shapeVal.Pos()}
	}
	return Mapping{StoreType: store, Shape: shape, Pos: v.Pos()}, nil
}

func cueError(code string, err error) *LoadError {
	le := &LoadError{Code: code, Message: err.Error()}
	if pos := cueerrors.Positions(err); len(pos) > 0 {
		le.Pos = pos[0]
	}
	return le
}

// Registry builds the type mapping registry: configured mappings first,
// then every built-in mapping not shadowed by an identical one.
func (c *Config) Registry() (*typemap.Registry, error) {
	var all []*typemap.Mapping
	seen := make(map[Mapping]bool)
	for _, m := range c.Mappings {
		key := Mapping{StoreType: m.StoreType, Shape: m.Shape}
		if seen[key] {
			return nil, &LoadError{Code: ErrCodeRegistry, Message: fmt.Sprintf("duplicate mapping %s:%s", m.StoreType, m.Shape), Pos: m.Pos}
		}
		seen[key] = true
		all = append(all, typemap.NewMapping(m.StoreType, m.Shape))
	}
	for _, m := range typemap.DefaultMappings() {
		if !seen[Mapping{StoreType: m.StoreType(), Shape: m.Shape()}] {
			all = append(all, m)
		}
	}

	reg, err := typemap.NewRegistry(all...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRegistry, Message: err.Error()}
	}
	return reg, nil
}

// TranslateOptions returns the translator options.
func (c *Config) TranslateOptions() translate.Options {
	return translate.Options{RawTextEquality: c.Translator.RawTextEquality}
}

// NewTranslator builds a Translator from the configuration.
func (c *Config) NewTranslator() (*translate.Translator, *typemap.Registry, error) {
	reg, err := c.Registry()
	if err != nil {
		return nil, nil, err
	}
	tr, err := translate.New(reg, c.TranslateOptions())
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeRegistry, Message: err.Error()}
	}
	return tr, reg, nil
}
