package ports

// EmailFilter is the front-end that feeds messages into the analyzer.
type EmailFilter interface {
	// Start begins accepting messages.
	Start() error

	// Stop shuts the filter down.
	Stop() error
}
