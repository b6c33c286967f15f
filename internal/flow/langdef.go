package flow

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/seerlab/seer/pkg/parser"
)

// languageDefinition is the YAML shape for a user-supplied fallback pattern
// set, used when the built-in tables don't cover a language or need
// project-specific overrides.
type languageDefinition struct {
	Language string            `yaml:"language"`
	Version  string            `yaml:"version"`
	Patterns map[string]string `yaml:"patterns"`
	Keywords []string          `yaml:"keywords"`
}

// langDefSchema validates language definition files before regexes are
// compiled, so a malformed file fails with a field-level message instead of
// a regex panic.
const langDefSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["language", "patterns"],
  "properties": {
    "language": {"type": "string", "minLength": 1},
    "version": {"type": "string"},
    "patterns": {
      "type": "object",
      "minProperties": 1,
      "propertyNames": {
        "enum": ["if", "while", "for", "switch", "try", "catch", "return", "throw"]
      },
      "additionalProperties": {"type": "string", "minLength": 1}
    },
    "keywords": {
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "additionalProperties": false
}`

// patternOrder fixes the evaluation order of custom pattern sets; more
// specific constructs are tested before generic ones.
var patternOrder = []string{"if", "while", "for", "switch", "try", "catch", "return", "throw"}

var langDefValidator = mustCompileLangDefSchema()

func mustCompileLangDefSchema() *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(langDefSchema))
	if err != nil {
		panic(fmt.Sprintf("language definition schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("langdef.schema.json", doc); err != nil {
		panic(fmt.Sprintf("language definition schema: %v", err))
	}
	sch, err := c.Compile("langdef.schema.json")
	if err != nil {
		panic(fmt.Sprintf("language definition schema: %v", err))
	}
	return sch
}

// LoadLanguageDefinition parses and validates one YAML language definition
// and compiles it into a pattern set.
func LoadLanguageDefinition(data []byte) (parser.Language, patternSet, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return "", patternSet{}, fmt.Errorf("failed to parse language definition: %w", err)
	}
	if err := langDefValidator.Validate(raw); err != nil {
		return "", patternSet{}, fmt.Errorf("invalid language definition: %w", err)
	}

	var def languageDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return "", patternSet{}, fmt.Errorf("failed to parse language definition: %w", err)
	}

	set := patternSet{keywords: keywordSet(def.Keywords...)}
	for _, name := range patternOrder {
		expr, ok := def.Patterns[name]
		if !ok {
			continue
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return "", patternSet{}, fmt.Errorf("invalid %q pattern for %s: %w", name, def.Language, err)
		}
		set.patterns = append(set.patterns, linePattern{name: name, re: re})
	}

	return parser.Language(def.Language), set, nil
}

// LoadLanguageDefinitions loads every *.yaml/*.yml definition in a
// directory. A missing directory is not an error.
func LoadLanguageDefinitions(dir string) (map[parser.Language]patternSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	sets := make(map[parser.Language]patternSet)
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		lang, set, err := LoadLanguageDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		sets[lang] = set
	}
	return sets, nil
}
