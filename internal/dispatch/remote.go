package dispatch

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-resty/resty/v2"

	"dielsweep/internal/ctxlog"
)

const defaultPollInterval = 10 * time.Second

// remoteCredentials come from the environment so tokens never live in the
// workflow config file.
type remoteCredentials struct {
	Token string `env:"DIELSWEEP_AGENT_TOKEN"`
}

// remoteClient talks to an HTTP batch agent: submit, poll, download.
// Forward and common files must be regular files; directories cannot be
// shipped to a remote agent.
type remoteClient struct {
	http         *resty.Client
	pollInterval time.Duration
}

func newRemoteClient(m Machine) (*remoteClient, error) {
	var creds remoteCredentials
	if err := env.Parse(&creds); err != nil {
		return nil, fmt.Errorf("dispatch: read agent credentials: %w", err)
	}

	c := resty.New().
		SetBaseURL(m.BaseURL).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second)
	if creds.Token != "" {
		c.SetAuthToken(creds.Token)
	}

	interval := m.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &remoteClient{http: c, pollInterval: interval}, nil
}

// Wire types of the agent API. File contents travel base64-encoded, which
// encoding/json does for []byte automatically.
type remoteTask struct {
	WorkPath      string            `json:"work_path"`
	Command       string            `json:"command"`
	Outlog        string            `json:"outlog"`
	BackwardFiles []string          `json:"backward_files"`
	Files         map[string][]byte `json:"files"`
}

type remoteResources struct {
	Nodes        int               `json:"nodes"`
	TasksPerNode int               `json:"tasks_per_node"`
	Queue        string            `json:"queue,omitempty"`
	Custom       map[string]string `json:"custom,omitempty"`
}

type remoteSubmission struct {
	ID          string            `json:"id"`
	Resources   remoteResources   `json:"resources"`
	Tasks       []remoteTask      `json:"tasks"`
	CommonFiles map[string][]byte `json:"common_files,omitempty"`
}

type remoteStatus struct {
	State  string `json:"state"`
	Detail string `json:"detail,omitempty"`
}

func (c *remoteClient) run(ctx context.Context, s *Submission) error {
	logger := ctxlog.FromContext(ctx).With("submission", s.ID)

	payload, err := c.buildPayload(s)
	if err != nil {
		return err
	}
	resp, err := c.http.R().SetContext(ctx).SetBody(payload).Post("/api/v1/submissions")
	if err != nil {
		return fmt.Errorf("dispatch: submit to agent: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("dispatch: agent rejected submission: %s", resp.Status())
	}
	logger.Info("Submission accepted by agent.", "tasks", len(s.Tasks))

	if err := c.await(ctx, s.ID); err != nil {
		return err
	}
	logger.Info("Submission finished, downloading backward files.")
	return c.download(ctx, s)
}

func (c *remoteClient) buildPayload(s *Submission) (*remoteSubmission, error) {
	payload := &remoteSubmission{
		ID: s.ID,
		Resources: remoteResources{
			Nodes:        s.Resources.Nodes,
			TasksPerNode: s.Resources.TasksPerNode,
			Queue:        s.Resources.Queue,
			Custom:       s.Resources.Custom,
		},
	}
	for _, name := range s.ForwardCommonFiles {
		data, err := os.ReadFile(filepath.Join(s.WorkBase, name))
		if err != nil {
			return nil, fmt.Errorf("dispatch: read common file %s: %w", name, err)
		}
		if payload.CommonFiles == nil {
			payload.CommonFiles = make(map[string][]byte)
		}
		payload.CommonFiles[name] = data
	}
	for _, t := range s.Tasks {
		rt := remoteTask{
			WorkPath:      t.WorkPath,
			Command:       t.Command,
			Outlog:        t.Outlog,
			BackwardFiles: append([]string(nil), t.BackwardFiles...),
			Files:         make(map[string][]byte, len(t.ForwardFiles)),
		}
		for _, name := range t.ForwardFiles {
			data, err := os.ReadFile(filepath.Join(s.WorkBase, t.WorkPath, name))
			if err != nil {
				return nil, fmt.Errorf("dispatch: read forward file %s of task %s: %w", name, t.WorkPath, err)
			}
			rt.Files[name] = data
		}
		payload.Tasks = append(payload.Tasks, rt)
	}
	return payload, nil
}

func (c *remoteClient) await(ctx context.Context, id string) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		var status remoteStatus
		resp, err := c.http.R().SetContext(ctx).SetResult(&status).
			Get("/api/v1/submissions/" + url.PathEscape(id))
		if err != nil {
			return fmt.Errorf("dispatch: poll agent: %w", err)
		}
		if resp.IsError() {
			return fmt.Errorf("dispatch: agent status query failed: %s", resp.Status())
		}
		switch status.State {
		case "finished":
			return nil
		case "failed":
			return fmt.Errorf("dispatch: submission failed on agent: %s", status.Detail)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *remoteClient) download(ctx context.Context, s *Submission) error {
	for _, t := range s.Tasks {
		for _, name := range t.BackwardFiles {
			target := filepath.Join(s.WorkBase, t.WorkPath, name)
			resp, err := c.http.R().SetContext(ctx).SetOutput(target).
				Get("/api/v1/submissions/" + url.PathEscape(s.ID) +
					"/tasks/" + url.PathEscape(t.WorkPath) +
					"/files/" + url.PathEscape(name))
			if err != nil {
				return fmt.Errorf("dispatch: download %s of task %s: %w", name, t.WorkPath, err)
			}
			if resp.IsError() {
				return fmt.Errorf("dispatch: agent returned %s for %s of task %s", resp.Status(), name, t.WorkPath)
			}
		}
	}
	return nil
}
