package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jobtrackhq/jobtrack/cmd/cli/config"
)

// InitAuth registers auth-related CLI commands on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(registerCmd(), loginCmd(), logoutCmd())
}

func registerCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and store the returned token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || email == "" || password == "" {
				return fmt.Errorf("name, email and password are required")
			}

			var out struct {
				Token string `json:"token"`
			}
			payload := map[string]string{"name": name, "email": email, "password": password}
			if err := callJSONEndpoint(http.DefaultClient, "/api/v1/auth/register", payload, &out); err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			if out.Token == "" {
				return fmt.Errorf("registration succeeded but no token returned")
			}
			if err := config.SaveToken(out.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Registered. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")

	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the jobtrack API",
		Long:  "Authenticate with the jobtrack API and store a bearer token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			var out struct {
				Token string `json:"token"`
			}
			payload := map[string]string{"email": email, "password": password}
			if err := callJSONEndpoint(http.DefaultClient, "/api/v1/auth/login", payload, &out); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if out.Token == "" {
				return fmt.Errorf("login succeeded but no token returned")
			}
			if err := config.SaveToken(out.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Println("Login successful. Token stored locally.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the locally stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func callJSONEndpoint(client *http.Client, path string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", config.APIURL()+path, bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return err
		}
	}

	return nil
}
