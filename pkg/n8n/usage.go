package n8n

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tripchat/domain/chat"
	apperrors "tripchat/pkg/errors"
)

// Workflow node names holding token and timing data. The names depend on
// which of the two pipelines handled the turn.
const (
	modelNodeMCP   = "Google Gemini Chat Model"
	modelNodeNoMCP = "Google Gemini Chat Model2"
	agentNodeMCP   = "AI Agent1"
	agentNodeNoMCP = "AI Agent2"
)

// executionRecord mirrors the slice of the workflow engine's execution
// document that usage aggregation reads.
type executionRecord struct {
	Data struct {
		ResultData struct {
			RunData map[string]json.RawMessage `json:"runData"`
		} `json:"resultData"`
	} `json:"data"`
}

type modelRun struct {
	Data struct {
		AILanguageModel [][]struct {
			JSON struct {
				TokenUsage *tokenUsage `json:"tokenUsage"`
			} `json:"json"`
		} `json:"ai_languageModel"`
	} `json:"data"`
}

type tokenUsage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

type agentRun struct {
	ExecutionTime float64 `json:"executionTime"`
}

// RetrieveUsage fetches the execution record for a completed workflow run
// and reduces it to a normalized usage summary. Token counts are summed over
// every run of the model node; execution time comes from the agent node's
// first run, in milliseconds. Absent or empty sections yield zeroes.
func (c *Client) RetrieveUsage(ctx context.Context, executionID, tag string) (chat.Usage, error) {
	var usage chat.Usage

	endpoint := fmt.Sprintf("%s/api/v1/executions/%s?includeData=true", c.cfg.BaseURL, executionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return usage, err
	}
	req.Header.Set("X-N8N-API-KEY", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return usage, apperrors.NewExternalError("n8n", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return usage, apperrors.NewExternalError("n8n",
			fmt.Errorf("executions API returned status %d", resp.StatusCode))
	}

	var record executionRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return usage, apperrors.NewExternalError("n8n",
			fmt.Errorf("malformed execution record: %w", err))
	}

	modelNode, agentNode := modelNodeMCP, agentNodeMCP
	if tag == TagNoMCP {
		modelNode, agentNode = modelNodeNoMCP, agentNodeNoMCP
	}

	runData := record.Data.ResultData.RunData

	if raw, ok := runData[modelNode]; ok {
		var runs []modelRun
		if err := json.Unmarshal(raw, &runs); err != nil {
			return usage, apperrors.NewExternalError("n8n",
				fmt.Errorf("malformed model run data: %w", err))
		}
		for _, run := range runs {
			if len(run.Data.AILanguageModel) == 0 || len(run.Data.AILanguageModel[0]) == 0 {
				continue
			}
			if tu := run.Data.AILanguageModel[0][0].JSON.TokenUsage; tu != nil {
				usage.InputTokens += tu.PromptTokens
				usage.OutputTokens += tu.CompletionTokens
				usage.TotalTokens += tu.TotalTokens
			}
		}
	}

	if raw, ok := runData[agentNode]; ok {
		var runs []agentRun
		if err := json.Unmarshal(raw, &runs); err != nil {
			return usage, apperrors.NewExternalError("n8n",
				fmt.Errorf("malformed agent run data: %w", err))
		}
		// A workflow that errored before logging produces zero agent runs;
		// treat that as zero duration instead of faulting.
		if len(runs) > 0 {
			usage.ExecutionTimeSeconds = runs[0].ExecutionTime / 1000
		}
	}

	c.logger.Debug("Usage aggregated",
		zap.String("executionID", executionID),
		zap.Int("totalTokens", usage.TotalTokens),
		zap.Float64("executionTimeSeconds", usage.ExecutionTimeSeconds),
	)

	return usage, nil
}
