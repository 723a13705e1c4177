package jobs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jobtrackhq/jobtrack/cmd/cli/config"
	"github.com/jobtrackhq/jobtrack/cmd/cli/output"
	"github.com/jobtrackhq/jobtrack/internal/models"
)

// InitJobs registers the jobs command tree on the root command.
func InitJobs(rootCmd *cobra.Command) {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage job applications",
	}

	jobsCmd.AddCommand(
		listJobsCmd(),
		createJobCmd(),
		getJobCmd(),
		updateJobCmd(),
		deleteJobCmd(),
	)

	rootCmd.AddCommand(jobsCmd)
}

// ==========================
// LIST
// ==========================
func listJobsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your job applications",
		Run: func(cmd *cobra.Command, args []string) {
			var out struct {
				Jobs  []models.Job `json:"jobs"`
				Count int          `json:"count"`
			}
			if err := doRequest("GET", "/api/v1/jobs", nil, &out); err != nil {
				fmt.Println(err)
				return
			}

			rows := make([][]interface{}, 0, len(out.Jobs))
			for _, j := range out.Jobs {
				rows = append(rows, []interface{}{
					j.ID, j.Company, j.Position, j.Status, j.CreatedAt.Format("2006-01-02"),
				})
			}
			output.RenderTable([]string{"ID", "Company", "Position", "Status", "Created"}, rows)
			fmt.Printf("%d application(s)\n", out.Count)
		},
	}
}

// ==========================
// CREATE
// ==========================
func createJobCmd() *cobra.Command {
	var company, position, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Track a new job application",
		Run: func(cmd *cobra.Command, args []string) {
			payload := map[string]string{
				"company":  company,
				"position": position,
			}
			if status != "" {
				payload["status"] = status
			}

			var out struct {
				Job models.Job `json:"job"`
			}
			if err := doRequest("POST", "/api/v1/jobs", payload, &out); err != nil {
				fmt.Println(err)
				return
			}
			fmt.Printf("Created job %d (%s, %s)\n", out.Job.ID, out.Job.Company, out.Job.Position)
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name")
	cmd.Flags().StringVar(&position, "position", "", "position title")
	cmd.Flags().StringVar(&status, "status", "", "status (pending|interview|declined)")

	return cmd
}

// ==========================
// GET
// ==========================
func getJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one job application",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var out struct {
				Job models.Job `json:"job"`
			}
			if err := doRequest("GET", "/api/v1/jobs/"+args[0], nil, &out); err != nil {
				fmt.Println(err)
				return
			}
			b, _ := json.MarshalIndent(out.Job, "", "  ")
			fmt.Println(string(b))
		},
	}
}

// ==========================
// UPDATE
// ==========================
func updateJobCmd() *cobra.Command {
	var company, position, status string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a job application (only the provided fields change)",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			payload := map[string]string{}
			if company != "" {
				payload["company"] = company
			}
			if position != "" {
				payload["position"] = position
			}
			if status != "" {
				payload["status"] = status
			}
			if len(payload) == 0 {
				fmt.Println("nothing to update")
				return
			}

			var out struct {
				Job models.Job `json:"job"`
			}
			if err := doRequest("PATCH", "/api/v1/jobs/"+args[0], payload, &out); err != nil {
				fmt.Println(err)
				return
			}
			fmt.Printf("Updated job %d (status %s)\n", out.Job.ID, out.Job.Status)
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company name")
	cmd.Flags().StringVar(&position, "position", "", "position title")
	cmd.Flags().StringVar(&status, "status", "", "status (pending|interview|declined)")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deleteJobCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a job application",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var out struct {
				Job models.Job `json:"job"`
			}
			if err := doRequest("DELETE", "/api/v1/jobs/"+args[0], nil, &out); err != nil {
				fmt.Println(err)
				return
			}
			fmt.Printf("Deleted job %d (%s)\n", out.Job.ID, out.Job.Company)
		},
	}
}

// doRequest performs an authenticated API call and decodes the JSON response into out.
func doRequest(method, path string, payload interface{}, out interface{}) error {
	token, err := config.LoadToken()
	if err != nil {
		return fmt.Errorf("please login first")
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, config.APIURL()+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return err
		}
	}
	return nil
}
