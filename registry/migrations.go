package registry

// migrations holds the ordered schema migrations. Never reorder or edit a
// shipped entry; append a new version instead.
var migrations = [][]string{
	{
		`CREATE TABLE schemas (
			name TEXT PRIMARY KEY,
			document BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	},
}
