package data

import (
	"fmt"
	"regexp"
	"strings"
)

// Dialect captures the DDL differences between supported backends.
type Dialect struct {
	Name string
	// Serial is the column definition of an auto-assigned integer primary key.
	Serial string
	// Ref is the type of a column referencing a Serial key.
	Ref string
	// KeyText is a case-sensitive text type that can carry a UNIQUE index.
	KeyText string
	// Text is an unbounded text type.
	Text string
	// Timestamp is the type used for saved_at style columns.
	Timestamp string
}

var (
	SQLite = Dialect{
		Name:      "sqlite",
		Serial:    "INTEGER PRIMARY KEY AUTOINCREMENT",
		Ref:       "INTEGER",
		KeyText:   "TEXT",
		Text:      "TEXT",
		Timestamp: "TIMESTAMP",
	}
	MySQL = Dialect{
		Name:      "mysql",
		Serial:    "BIGINT PRIMARY KEY AUTO_INCREMENT",
		Ref:       "BIGINT",
		KeyText:   "VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin",
		Text:      "TEXT",
		Timestamp: "DATETIME(6)",
	}
)

// DialectFor returns the dialect matching a database/sql driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	}
	return Dialect{}, fmt.Errorf("unsupported driver %q", driverName)
}

// Schema describes how a record type maps onto its table.
type Schema struct {
	Table string
	// Columns lists every column except the "id" key, in the order used by
	// Record.Values and after the key in Record.Fields.
	Columns []string
	// DDL builds the CREATE TABLE statement for a dialect.
	DDL func(d Dialect) string
	// OrderBy is injected into select fragments that do not order their rows.
	OrderBy string
}

// CreateSQL returns the CREATE TABLE statement for d.
func (s *Schema) CreateSQL(d Dialect) string { return s.DDL(d) }

// DropSQL returns the statement removing the table if it exists.
func (s *Schema) DropSQL() string { return "DROP TABLE IF EXISTS " + s.Table }

// SelectSQL builds "SELECT <columns> FROM <table> <fragment>". Fragments
// lacking an ORDER BY gain the schema's default ordering.
func (s *Schema) SelectSQL(fragment string) string {
	cols := append([]string{"id"}, s.Columns...)
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), s.Table)
	if f := InjectOrder(fragment, s.OrderBy); f != "" {
		q += " " + f
	}
	return q
}

// CountSQL builds "SELECT COUNT(*) FROM <table> <fragment>".
func (s *Schema) CountSQL(fragment string) string {
	q := "SELECT COUNT(*) FROM " + s.Table
	if f := strings.TrimSpace(fragment); f != "" {
		q += " " + f
	}
	return q
}

// InsertSQL returns the INSERT statement for every non-key column.
func (s *Schema) InsertSQL() string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(s.Columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.Table, strings.Join(s.Columns, ", "), marks)
}

// UpdateSQL returns the UPDATE-by-id statement for every non-key column.
func (s *Schema) UpdateSQL() string {
	sets := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		sets[i] = c + " = ?"
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", s.Table, strings.Join(sets, ", "))
}

// DeleteSQL returns the DELETE-by-id statement.
func (s *Schema) DeleteSQL() string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = ?", s.Table)
}

var (
	orderByClause = regexp.MustCompile(`(?i)\bORDER\s+BY\b`)
	limitClause   = regexp.MustCompile(`(?i)\b(LIMIT|OFFSET)\b`)
)

// InjectOrder adds "ORDER BY orderBy" to fragment unless it already orders
// its rows. The clause goes before the first LIMIT or OFFSET keyword, or at
// the end. Applying it twice gives the same result as applying it once.
//
// Only keywords of the fragment itself count: quoted text and anything
// inside parentheses, such as a subquery, is skipped.
func InjectOrder(fragment, orderBy string) string {
	fragment = strings.TrimSpace(fragment)
	if orderBy == "" {
		return fragment
	}
	top := topLevel(fragment)
	if orderByClause.MatchString(top) {
		return fragment
	}
	clause := "ORDER BY " + orderBy
	if loc := limitClause.FindStringIndex(top); loc != nil {
		head := strings.TrimSpace(fragment[:loc[0]])
		if head == "" {
			return clause + " " + fragment[loc[0]:]
		}
		return head + " " + clause + " " + fragment[loc[0]:]
	}
	if fragment == "" {
		return clause
	}
	return fragment + " " + clause
}

// topLevel returns fragment with quoted literals, quoted identifiers and
// parenthesized text blanked out. Byte offsets are unchanged.
func topLevel(fragment string) string {
	b := []byte(fragment)
	depth := 0
	var quote byte
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case quote != 0:
			if c == quote {
				// A doubled quote is an escaped quote character.
				if i+1 < len(b) && b[i+1] == quote {
					b[i], b[i+1] = ' ', ' '
					i++
					continue
				}
				quote = 0
			}
			b[i] = ' '
		case c == '\'' || c == '"' || c == '`':
			quote = c
			b[i] = ' '
		case c == '(':
			depth++
			b[i] = ' '
		case c == ')':
			if depth > 0 {
				depth--
			}
			b[i] = ' '
		case depth > 0:
			b[i] = ' '
		}
	}
	return string(b)
}

// Registry maps table names to schemas and remembers registration order,
// which is also the order tables are created in.
type Registry struct {
	byTable map[string]*Schema
	order   []*Schema
}

// NewRegistry creates a registry holding schemas. It panics on a duplicate
// table, which is a programming error.
func NewRegistry(schemas ...*Schema) *Registry {
	r := &Registry{byTable: make(map[string]*Schema)}
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a schema. Tables must be registered after the tables they reference.
func (r *Registry) Register(s *Schema) error {
	if _, ok := r.byTable[s.Table]; ok {
		return fmt.Errorf("table %s already registered", s.Table)
	}
	r.byTable[s.Table] = s
	r.order = append(r.order, s)
	return nil
}

// Lookup returns the schema registered for table.
func (r *Registry) Lookup(table string) (*Schema, bool) {
	s, ok := r.byTable[table]
	return s, ok
}

// All returns the schemas in registration order.
func (r *Registry) All() []*Schema {
	out := make([]*Schema, len(r.order))
	copy(out, r.order)
	return out
}
