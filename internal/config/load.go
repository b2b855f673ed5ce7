package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "toggles.schema.json"

var compiledSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("add toggles schema: %v", err))
	}
	compiledSchema = compiler.MustCompile(schemaURL)
}

// #region load
// Load reads toggles from a .json, .yaml or .yml file. The document is
// validated against the toggles schema and decoded over Default(), so keys
// left out keep their stock values.
func Load(path string) (Toggles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Toggles{}, fmt.Errorf("read toggles %s: %w", path, err)
	}
	t, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Toggles{}, fmt.Errorf("toggles %s: %w", path, err)
	}
	return t, nil
}

// Parse decodes a toggles document. ext selects the format (".yaml"/".yml"
// for YAML, anything else is JSON).
func Parse(data []byte, ext string) (Toggles, error) {
	raw := data
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		converted, err := yamlToJSON(data)
		if err != nil {
			return Toggles{}, err
		}
		raw = converted
	}

	if err := Validate(raw); err != nil {
		return Toggles{}, err
	}

	t := Default()
	if err := json.Unmarshal(raw, &t); err != nil {
		return Toggles{}, fmt.Errorf("decode: %w", err)
	}
	return t, nil
}

// Validate checks a JSON toggles document against the embedded schema.
func Validate(raw []byte) error {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := compiledSchema.Validate(payload); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

// #endregion load

// #region helpers
func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return []byte("{}"), nil
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}

// #endregion helpers
