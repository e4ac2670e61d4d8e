package sqltools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// FallbackRelationship is reported for table types the assistant knows nothing about.
const FallbackRelationship = "Depends on your specific database schema"

var knownSchemas = map[string]types.SchemaInfo{
	"users": {
		CommonColumns: []string{"id", "email", "username", "password_hash", "first_name", "last_name", "is_active", "created_at", "updated_at"},
		Relationships: []string{
			"One-to-many with orders (users.id = orders.user_id)",
			"One-to-one with user_profiles (users.id = user_profiles.user_id)",
		},
		Examples: []string{
			"SELECT id, email, username FROM users WHERE is_active = true",
			"SELECT u.username, COUNT(o.id) AS order_count FROM users u LEFT JOIN orders o ON o.user_id = u.id GROUP BY u.username",
		},
	},
	"products": {
		CommonColumns: []string{"id", "name", "description", "price", "sku", "stock_quantity", "category_id", "created_at", "updated_at"},
		Relationships: []string{
			"Many-to-one with categories (products.category_id = categories.id)",
			"One-to-many with order_items (products.id = order_items.product_id)",
		},
		Examples: []string{
			"SELECT name, price FROM products WHERE stock_quantity > 0 ORDER BY price",
			"SELECT c.name, AVG(p.price) AS avg_price FROM products p INNER JOIN categories c ON c.id = p.category_id GROUP BY c.name",
		},
	},
	"orders": {
		CommonColumns: []string{"id", "user_id", "status", "total_amount", "shipping_address", "created_at", "updated_at"},
		Relationships: []string{
			"Many-to-one with users (orders.user_id = users.id)",
			"One-to-many with order_items (orders.id = order_items.order_id)",
		},
		Examples: []string{
			"SELECT id, status, total_amount FROM orders WHERE user_id = 42 ORDER BY created_at DESC",
			"SELECT status, SUM(total_amount) AS revenue FROM orders GROUP BY status",
		},
	},
}

// GetSchemaInfo returns the common columns, relationships and example queries
// for a table type. Lookup is an exact match on the lower-cased name; unknown
// types get a generic record whose example uses the name as given.
func GetSchemaInfo(tableType string) *types.SchemaInfo {
	if info, ok := knownSchemas[strings.ToLower(tableType)]; ok {
		return info.Clone()
	}
	return &types.SchemaInfo{
		CommonColumns: []string{"id", "name", "created_at", "updated_at"},
		Relationships: []string{FallbackRelationship},
		Examples:      []string{fmt.Sprintf("SELECT * FROM %s LIMIT 10", tableType)},
	}
}

// KnownTableTypes returns the table types with a dedicated schema record.
func KnownTableTypes() []string {
	names := make([]string, 0, len(knownSchemas))
	for name := range knownSchemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SuggestTableType returns a known table type that is the singular or plural
// form of name. It reports false when name is already known or nothing matches.
func SuggestTableType(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return "", false
	}
	if _, ok := knownSchemas[key]; ok {
		return "", false
	}
	for _, candidate := range []string{inflection.Plural(key), inflection.Singular(key)} {
		if _, ok := knownSchemas[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

// Catalog overlays user-defined schema records on top of the built-in ones.
// It is read-only after construction.
type Catalog struct {
	entries map[string]types.SchemaInfo
}

// NewCatalog builds a catalog from entries keyed by table type. Keys are
// matched case-insensitively.
func NewCatalog(entries map[string]types.SchemaInfo) *Catalog {
	c := &Catalog{entries: make(map[string]types.SchemaInfo, len(entries))}
	for name, info := range entries {
		c.entries[strings.ToLower(name)] = *info.Clone()
	}
	return c
}

// Lookup returns the catalog entry for tableType, or GetSchemaInfo's answer
// when the catalog has none.
func (c *Catalog) Lookup(tableType string) *types.SchemaInfo {
	if c != nil {
		if info, ok := c.entries[strings.ToLower(tableType)]; ok {
			return info.Clone()
		}
	}
	return GetSchemaInfo(tableType)
}

// Len returns the number of user-defined entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Match returns the user-defined table type that word names, directly or in
// its singular or plural form.
func (c *Catalog) Match(word string) (string, bool) {
	if c == nil {
		return "", false
	}
	key := strings.ToLower(strings.TrimSpace(word))
	if key == "" {
		return "", false
	}
	for _, candidate := range []string{key, inflection.Plural(key), inflection.Singular(key)} {
		if _, ok := c.entries[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}
