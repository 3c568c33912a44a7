package core

// StepID identifies a build step within a step log
type StepID string

// StepType names the kind of change a build step describes
type StepType string

const (
	// StepCreateFile creates or overwrites a file at the step's path
	StepCreateFile StepType = "CreateFile"
	// StepCreateFolder, StepEditFile, StepDeleteFile and StepRunScript are carried
	// through the step log but never change the file tree.
	StepCreateFolder StepType = "CreateFolder"
	StepEditFile     StepType = "EditFile"
	StepDeleteFile   StepType = "DeleteFile"
	StepRunScript    StepType = "RunScript"
)

// StepStatus tracks a build step's lifecycle. Steps move from pending to
// completed once and never go back.
type StepStatus string

const (
	StatusPending    StepStatus = "pending"
	StatusInProgress StepStatus = "in-progress"
	StatusCompleted  StepStatus = "completed"
)

// BuildStep is one instruction emitted by the step source.
type BuildStep struct {
	ID          StepID     `json:"id" yaml:"id"`
	Title       string     `json:"title,omitempty" yaml:"title,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Type        StepType   `json:"type" yaml:"type"`
	Status      StepStatus `json:"status" yaml:"status"`
	Path        string     `json:"path,omitempty" yaml:"path,omitempty"`
	Code        string     `json:"code,omitempty" yaml:"code,omitempty"`
}

// IsPending reports whether the step still waits to be reconciled.
func (s BuildStep) IsPending() bool {
	return s.Status == StatusPending
}

// ServerReady is the readiness notification reported by a sandbox once its
// dev server listens. Values are passed through as reported.
type ServerReady struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	URL  string `json:"url"`
}
