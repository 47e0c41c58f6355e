package badger

// NewMemoryRepositories creates in-memory note and vector repositories for testing.
// Caller must close the returned Repositories when done.
func NewMemoryRepositories() (*Repositories, error) {
	return openRepositories("", true, nil)
}
