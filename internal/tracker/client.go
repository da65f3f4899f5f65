package tracker

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
)

// Client is a GraphQL client for the external ticket-tracking API.
// It implements Fetcher with paginated issue queries and a flat
// workflow-state query per team.
type Client struct {
	gql   *graphql.Client
	token string
}

// ClientConfig configures the tracker client.
type ClientConfig struct {
	// Endpoint is the GraphQL endpoint URL.
	Endpoint string
	// Token is the API key sent as the Authorization header.
	Token string
	// Timeout bounds each HTTP request. Zero means 30s.
	Timeout time.Duration
}

// NewClient creates a tracker API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("tracker endpoint is required")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("tracker API token is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: timeout}
	return &Client{
		gql:   graphql.NewClient(cfg.Endpoint, graphql.WithHTTPClient(httpClient)),
		token: cfg.Token,
	}, nil
}

// makeRequest executes a GraphQL request with authentication.
func (c *Client) makeRequest(ctx context.Context, req *graphql.Request, resp interface{}) error {
	req.Header.Set("Authorization", c.token)
	return c.gql.Run(ctx, req, resp)
}

// issuePageSize is the tracker API's maximum page size for issue queries.
const issuePageSize = 250

// Issues fetches all issues for a team, following pagination cursors
// until the tracker reports no further pages.
func (c *Client) Issues(ctx context.Context, teamID string) ([]Issue, error) {
	var all []Issue
	cursor := ""

	for {
		req := graphql.NewRequest(`
			query($teamId: String!, $first: Int!, $after: String) {
				team(id: $teamId) {
					issues(first: $first, after: $after) {
						nodes {
							id
							identifier
							title
							state {
								id
								name
								type
								position
							}
							parent {
								id
							}
							subIssueCount
						}
						pageInfo {
							hasNextPage
							endCursor
						}
					}
				}
			}
		`)
		req.Var("teamId", teamID)
		req.Var("first", issuePageSize)
		if cursor != "" {
			req.Var("after", cursor)
		}

		var resp struct {
			Team struct {
				Issues struct {
					Nodes []struct {
						ID         string        `json:"id"`
						Identifier string        `json:"identifier"`
						Title      string        `json:"title"`
						State      WorkflowState `json:"state"`
						Parent     *struct {
							ID string `json:"id"`
						} `json:"parent"`
						SubIssueCount int `json:"subIssueCount"`
					} `json:"nodes"`
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
				} `json:"issues"`
			} `json:"team"`
		}

		if err := c.makeRequest(ctx, req, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch issues for team %s: %w", teamID, err)
		}

		for _, n := range resp.Team.Issues.Nodes {
			issue := Issue{
				ID:            n.ID,
				Identifier:    n.Identifier,
				Title:         n.Title,
				State:         n.State,
				SubIssueCount: n.SubIssueCount,
			}
			if n.Parent != nil {
				issue.ParentID = n.Parent.ID
			}
			all = append(all, issue)
		}

		if !resp.Team.Issues.PageInfo.HasNextPage {
			break
		}
		cursor = resp.Team.Issues.PageInfo.EndCursor
	}

	return all, nil
}

// WorkflowStates fetches the team's workflow states ordered by position.
func (c *Client) WorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error) {
	req := graphql.NewRequest(`
		query($teamId: String!) {
			team(id: $teamId) {
				states {
					nodes {
						id
						name
						type
						position
					}
				}
			}
		}
	`)
	req.Var("teamId", teamID)

	var resp struct {
		Team struct {
			States struct {
				Nodes []WorkflowState `json:"nodes"`
			} `json:"states"`
		} `json:"team"`
	}

	if err := c.makeRequest(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch workflow states for team %s: %w", teamID, err)
	}

	return resp.Team.States.Nodes, nil
}
