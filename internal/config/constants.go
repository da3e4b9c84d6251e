package config

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

const (
	KeyMaxRetries = "max_retries"
	KeyBaseTime   = "base_time"

	DefaultMaxRetries = 3
	DefaultBaseTime   = 2
	DefaultWorkers    = 2
)

var (
	AllowedStates     = []JobStatus{JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed}
	AllowedConfigKeys = []string{KeyMaxRetries, KeyBaseTime}
)

// ParseJobStatus reports whether s names one of the job states.
func ParseJobStatus(s string) (JobStatus, bool) {
	for _, st := range AllowedStates {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}
