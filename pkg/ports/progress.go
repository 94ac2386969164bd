package ports

// Progress reports the advance of a long loop, such as frame encoding.
type Progress interface {
	// Start begins a new bar of total steps.
	Start(total int, description string)

	// Add advances the bar by n steps.
	Add(n int)

	// Finish completes the bar.
	Finish()
}
