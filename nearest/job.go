package nearest

import (
	"fmt"

	"github.com/domino14/wanderer/backend"
)

// JobError reports an analysis job that ended without a result.
type JobError struct {
	JobID  string
	Status backend.JobStatus
}

func (e *JobError) Error() string {
	return fmt.Sprintf("job %s ended with status %s", e.JobID, e.Status)
}

// Is makes a JobError match backend.ErrJobFailed.
func (e *JobError) Is(target error) bool {
	return target == backend.ErrJobFailed
}
