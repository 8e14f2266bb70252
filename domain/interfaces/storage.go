package interfaces

// ArtifactStore records files captured while tests run
type ArtifactStore interface {
	// PathFor returns a fresh path for an artifact of a test
	PathFor(test, kind, ext string) (string, error)

	// Record associates a captured file with a test of the store's run
	Record(test, path string) error

	// Artifacts returns the files recorded during one run, per test
	Artifacts(runID string) (map[string][]string, error)
}
