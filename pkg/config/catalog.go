package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// CatalogFile is the on-disk shape of a schema catalog:
//
//	tables:
//	  invoices:
//	    commonColumns: [id, number, amount]
//	    relationships: ["Many-to-one with customers"]
//	    examples: ["SELECT number FROM invoices"]
type CatalogFile struct {
	Tables map[string]types.SchemaInfo `yaml:"tables" json:"tables"`
}

// LoadCatalog reads table schema records from a YAML or JSON file.
func LoadCatalog(filename string) (map[string]types.SchemaInfo, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog file %s", filename)
	}

	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		if jsonErr := json.Unmarshal(data, &file); jsonErr != nil {
			return nil, errors.Wrapf(err, "failed to parse catalog file %s", filename)
		}
	}

	for name := range file.Tables {
		if strings.TrimSpace(name) == "" {
			return nil, errors.Errorf("catalog file %s has an entry with an empty table name", filename)
		}
	}
	return file.Tables, nil
}
