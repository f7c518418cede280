package ports

// Watcher monitors files or directories and reports changes. Only one Watch
// call should be active at a time.
type Watcher interface {
	// Watch starts monitoring path. A directory is watched recursively; a
	// regular file is watched through its parent directory. onChange is called
	// with the absolute path of each changed file and may be invoked from any
	// goroutine. Returns an error if path doesn't exist or permissions are
	// insufficient.
	Watch(path string, onChange func(filePath string)) error

	// Stop ends monitoring and releases all resources. After Stop returns,
	// no further onChange calls will fire. Safe to call multiple times.
	Stop() error
}
