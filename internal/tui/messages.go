package tui

// StepUpdateMsg updates one install step's status line.
type StepUpdateMsg struct {
	Step   string
	Status string
	Detail string
}

// DownloadProgressMsg reports transfer progress. Total is -1 when unknown.
type DownloadProgressMsg struct {
	Written int64
	Total   int64
}

// WorkDoneMsg signals the background work finished.
type WorkDoneMsg struct{}

// ErrorMsg signals the background work failed.
type ErrorMsg struct {
	Err error
}
