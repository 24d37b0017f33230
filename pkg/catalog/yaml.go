package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// schemaFile is the on-disk YAML schema format.
//
//	tables:
//	  - name: orders
//	    schema: main
//	    columns:
//	      - name: id
//	        type: integer
//	      - name: _rowid
//	        hidden: true
type schemaFile struct {
	Tables []struct {
		Catalog string `yaml:"catalog"`
		Schema  string `yaml:"schema"`
		Name    string `yaml:"name"`
		Columns []struct {
			Name   string `yaml:"name"`
			Type   string `yaml:"type"`
			Hidden bool   `yaml:"hidden"`
		} `yaml:"columns"`
	} `yaml:"tables"`
}

// LoadFile reads a YAML schema file into an in-memory provider.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return Load(data)
}

// Load parses YAML schema data into an in-memory provider.
func Load(data []byte) (*Memory, error) {
	var doc schemaFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}

	m := NewMemory()
	for _, t := range doc.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("parsing schema file: table with empty name")
		}
		def := TableDef{Catalog: t.Catalog, Schema: t.Schema, Name: t.Name}
		for _, c := range t.Columns {
			def.Columns = append(def.Columns, Attribute{
				Name:   c.Name,
				Type:   c.Type,
				Hidden: c.Hidden,
			})
		}
		m.Add(def)
	}
	return m, nil
}
