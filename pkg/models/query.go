package models

// ExecuteQueryRequest is the body of POST /api/execute-query.
type ExecuteQueryRequest struct {
	Query      string `json:"query"`
	DatabaseID int    `json:"database_id"`
}

// QueryResult is the gateway's answer to an execution. Results is the raw
// tab-separated payload; Duration is displayed verbatim.
type QueryResult struct {
	ExitCode int    `json:"exitCode"`
	Results  string `json:"results"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// Succeeded reports a zero exit code.
func (r QueryResult) Succeeded() bool {
	return r.ExitCode == 0
}

// AgentStatusReport is the body of GET /api/agent-status.
type AgentStatusReport struct {
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}
