package config

// Default paths
const (
	// DefaultDatabasePath is the default path for the local library database
	DefaultDatabasePath = "./kindle2markdown.db"

	// DefaultClippingsPath is where a mounted Kindle usually exposes the file
	DefaultClippingsPath = "/Volumes/Kindle/documents/My Clippings.txt"
)
