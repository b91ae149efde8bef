// Package backup implements the backup/restore engine. It exports the entire
// relational state plus all uploaded media into a single zip archive, and can
// rebuild a live database and media tree from such an archive.
package backup

// TableOrder lists tables leaf-first: every table appears after the tables it
// references. Inserting in this order and deleting in the reverse order never
// violates a foreign key constraint.
type TableOrder []string

// DefaultTableOrder mirrors the schema in internal/database. It is maintained
// by hand: a table added to the schema must be appended here after everything
// it references, or backups silently stop covering it.
var DefaultTableOrder = TableOrder{
	"users",
	"humidors",
	"brands",
	"sizes",
	"ring_gauges",
	"strengths",
	"origins",
	"cigars",
	"favorites",
	"wish_list",
	"humidor_shares",
}

// Reversed returns the truncate-safe ordering, most dependent tables first.
func (o TableOrder) Reversed() TableOrder {
	rev := make(TableOrder, len(o))
	for i, t := range o {
		rev[len(o)-1-i] = t
	}
	return rev
}

// quoteIdent wraps an identifier in double quotes. Table names only ever come
// from a TableOrder and column names from the live schema, but quoting keeps
// statement assembly uniform.
func quoteIdent(name string) string {
	return `"` + name + `"`
}
