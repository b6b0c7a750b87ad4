package core

import (
	"strings"
	"time"
)

// Maintenance job ids match the command message types the worker executes.
const (
	JobIDDeduplicateLeads = "buscarlead.command.maintenance.deduplicate"
	JobIDResetAll         = "buscarlead.command.maintenance.reset"
)

// IsMaintenanceJob reports whether jobID names a maintenance job.
func IsMaintenanceJob(jobID string) bool {
	switch strings.TrimSpace(jobID) {
	case JobIDDeduplicateLeads, JobIDResetAll:
		return true
	default:
		return false
	}
}

// NewMaintenanceJobMessage builds a queue message for one maintenance job.
// An empty correlation id falls back to the job id, so repeated requests
// for the same job collapse while one is still pending.
func NewMaintenanceJobMessage(jobID string, correlationID string) *JobExecutionMessage {
	jobID = strings.TrimSpace(jobID)
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		correlationID = jobID
	}
	return &JobExecutionMessage{
		JobID:         jobID,
		Parameters:    map[string]any{"requested_at": time.Now().UTC().Format(time.RFC3339)},
		CorrelationID: correlationID,
	}
}
