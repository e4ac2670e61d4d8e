package types

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Dialect represents the SQL dialect a statement targets
type Dialect int32

const (
	Dialect_UNSPECIFIED Dialect = 0
	Dialect_POSTGRESQL  Dialect = 1
	Dialect_MYSQL       Dialect = 2
	Dialect_SQLITE      Dialect = 3
	Dialect_MSSQL       Dialect = 4
	Dialect_ORACLE      Dialect = 5
)

// DefaultDialect is used whenever no dialect is given.
const DefaultDialect = Dialect_POSTGRESQL

// Dialects lists the supported dialects in display order.
var Dialects = []Dialect{
	Dialect_MYSQL,
	Dialect_POSTGRESQL,
	Dialect_SQLITE,
	Dialect_MSSQL,
	Dialect_ORACLE,
}

func (d Dialect) String() string {
	switch d {
	case Dialect_POSTGRESQL:
		return "postgresql"
	case Dialect_MYSQL:
		return "mysql"
	case Dialect_SQLITE:
		return "sqlite"
	case Dialect_MSSQL:
		return "mssql"
	case Dialect_ORACLE:
		return "oracle"
	default:
		return "unspecified"
	}
}

// OrDefault returns the dialect, substituting DefaultDialect for the zero value.
func (d Dialect) OrDefault() Dialect {
	if d == Dialect_UNSPECIFIED {
		return DefaultDialect
	}
	return d
}

// ParseDialect converts a dialect name into a Dialect.
// An empty string yields DefaultDialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultDialect, nil
	case "postgresql", "postgres", "pg":
		return Dialect_POSTGRESQL, nil
	case "mysql", "mariadb":
		return Dialect_MYSQL, nil
	case "sqlite", "sqlite3":
		return Dialect_SQLITE, nil
	case "mssql", "sqlserver":
		return Dialect_MSSQL, nil
	case "oracle":
		return Dialect_ORACLE, nil
	default:
		return Dialect_UNSPECIFIED, errors.Errorf("unsupported SQL dialect: %s", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Dialect
func (d *Dialect) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseDialect(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Dialect
func (d *Dialect) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDialect(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON implements json.Marshaler for Dialect
func (d Dialect) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalYAML implements yaml.Marshaler for Dialect
func (d Dialect) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}
