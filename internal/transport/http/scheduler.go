package http

import (
	"net/http"
	"time"

	"github.com/sgmusicchat/newsite/internal/scheduler"
)

// JobLister is the minimal interface needed to list scheduled jobs.
type JobLister interface {
	Jobs() []scheduler.JobInfo
}

// HandleSchedulerJobs returns an HTTP handler listing registered jobs and
// their next run times.
func HandleSchedulerJobs(sched JobLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		jobs := sched.Jobs()
		resp := schedulerJobsResponse{Jobs: make([]jobInfoResponse, 0, len(jobs))}
		for _, j := range jobs {
			info := jobInfoResponse{ID: j.ID, Name: j.Name}
			if !j.NextRun.IsZero() {
				info.NextRun = j.NextRun.UTC().Format(time.RFC3339)
			}
			resp.Jobs = append(resp.Jobs, info)
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

type schedulerJobsResponse struct {
	Jobs []jobInfoResponse `json:"jobs"`
}

type jobInfoResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	NextRun string `json:"next_run,omitempty"`
}
