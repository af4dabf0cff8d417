package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type metaDataFile struct {
	Schema string      `yaml:"schema"`
	Enums  []enumFile  `yaml:"enums"`
	Tables []tableFile `yaml:"tables"`
}

type enumFile struct {
	Name          string   `yaml:"name"`
	Schema        string   `yaml:"schema"`
	InheritSchema bool     `yaml:"inherit_schema"`
	Values        []string `yaml:"values"`
}

type tableFile struct {
	Name    string       `yaml:"name"`
	Schema  string       `yaml:"schema"`
	Columns []columnFile `yaml:"columns"`
}

type columnFile struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Enum  string `yaml:"enum"`
	Array bool   `yaml:"array"`
}

// LoadMetaData reads a declared models file.
func LoadMetaData(path string) (*MetaData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read models file: %w", err)
	}
	meta, err := ParseMetaData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

// ParseMetaData decodes the YAML models format. Columns refer to enums by
// name; enums no column uses are kept as standalone declarations.
func ParseMetaData(data []byte) (*MetaData, error) {
	var f metaDataFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse models: %w", err)
	}

	enums := make(map[string]*EnumType, len(f.Enums))
	for _, e := range f.Enums {
		if e.Name == "" {
			return nil, fmt.Errorf("enum without a name")
		}
		if _, dup := enums[e.Name]; dup {
			return nil, fmt.Errorf("enum %q defined twice", e.Name)
		}
		seen := make(map[string]bool, len(e.Values))
		for _, v := range e.Values {
			if seen[v] {
				return nil, fmt.Errorf("enum %q: duplicate value %q", e.Name, v)
			}
			seen[v] = true
		}
		enums[e.Name] = &EnumType{
			Name:          e.Name,
			Schema:        e.Schema,
			InheritSchema: e.InheritSchema,
			Values:        e.Values,
		}
	}

	meta := &MetaData{Schema: f.Schema}
	used := make(map[string]bool)
	for _, t := range f.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("table without a name")
		}
		table := &Table{Schema: t.Schema, Name: t.Name}
		for _, c := range t.Columns {
			col := &Column{Name: c.Name, DataType: c.Type, Array: c.Array}
			if c.Enum != "" {
				e, ok := enums[c.Enum]
				if !ok {
					return nil, fmt.Errorf("table %q column %q: unknown enum %q", t.Name, c.Name, c.Enum)
				}
				col.Enum = e
				used[c.Enum] = true
			}
			table.Columns = append(table.Columns, col)
		}
		meta.Tables = append(meta.Tables, table)
	}
	for _, e := range f.Enums {
		if !used[e.Name] {
			meta.Enums = append(meta.Enums, enums[e.Name])
		}
	}
	return meta, nil
}
