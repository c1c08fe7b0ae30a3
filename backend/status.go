package backend

// JobStatus is the state of an asynchronous analysis job.
type JobStatus int

const (
	// Unknown is assigned by the client when a status could not be read or
	// was not recognized. Servers never report it.
	Unknown JobStatus = iota
	Submitted
	Running
	Succeeded
	Failed
	TimedOut
	Cancelled
)

var statusNames = map[JobStatus]string{
	Unknown:   "unknown",
	Submitted: "submitted",
	Running:   "running",
	Succeeded: "succeeded",
	Failed:    "failed",
	TimedOut:  "timed-out",
	Cancelled: "cancelled",
}

func (s JobStatus) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown"
}

// Pending reports whether the job may still change status.
func (s JobStatus) Pending() bool {
	return s == Submitted || s == Running || s == Unknown
}

// Terminal is the opposite of Pending.
func (s JobStatus) Terminal() bool {
	return !s.Pending()
}

// ParseJobStatus maps a geoprocessing status string to a JobStatus.
func ParseJobStatus(s string) JobStatus {
	switch s {
	case "esriJobNew", "esriJobSubmitted", "esriJobWaiting":
		return Submitted
	case "esriJobExecuting", "esriJobCancelling":
		return Running
	case "esriJobSucceeded":
		return Succeeded
	case "esriJobFailed":
		return Failed
	case "esriJobTimedOut":
		return TimedOut
	case "esriJobCancelled":
		return Cancelled
	}
	return Unknown
}

// Job identifies a submitted analysis job and the status it was last seen
// in.
type Job struct {
	ID     string
	Status JobStatus
}
