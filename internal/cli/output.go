package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/joshu-sajeev/queuectl/internal/dto"
	"gopkg.in/yaml.v3"
)

// render prints v in the selected format. table draws the human view.
func (o *options) render(v any, table func(w *tabwriter.Writer)) error {
	switch o.output {
	case "json":
		enc := json.NewEncoder(o.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(o.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		tw := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
		table(tw)
		return tw.Flush()
	}
}

func jobsTable(jobs []dto.JobResponseDTO) func(w *tabwriter.Writer) {
	return func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tSTATE\tATTEMPTS\tCOMMAND\tCREATED\tUPDATED")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%d/%d\t%s\t%s\t%s\n",
				j.ID, j.State, j.Attempts, j.MaxRetries, j.Command,
				formatTime(j.CreatedAt), formatTime(j.UpdatedAt))
		}
	}
}

func jobDetail(j *dto.JobResponseDTO) func(w *tabwriter.Writer) {
	return func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "ID:\t%s\n", j.ID)
		fmt.Fprintf(w, "Command:\t%s\n", j.Command)
		fmt.Fprintf(w, "State:\t%s\n", j.State)
		fmt.Fprintf(w, "Attempts:\t%d/%d\n", j.Attempts, j.MaxRetries)
		fmt.Fprintf(w, "Base time:\t%d\n", j.BaseTime)
		if j.LastError != "" {
			fmt.Fprintf(w, "Last error:\t%s\n", j.LastError)
		}
		if len(j.Result) > 0 {
			fmt.Fprintf(w, "Result:\t%s\n", j.Result)
		}
		fmt.Fprintf(w, "Created:\t%s\n", formatTime(j.CreatedAt))
		fmt.Fprintf(w, "Updated:\t%s\n", formatTime(j.UpdatedAt))
	}
}

func workerTable(s *dto.WorkerStatusDTO) func(w *tabwriter.Writer) {
	return func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "RUNNING\tGENERATION\tSLOTS\tACTIVE\tIN FLIGHT\tQUEUED")
		fmt.Fprintf(w, "%t\t%d\t%d\t%d\t%d\t%d\n",
			s.Running, s.Generation, s.Slots, s.Active, s.InFlight, s.Queued)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
