package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/adilhn/supportflow/db"
	"github.com/adilhn/supportflow/services/llm_service"
)

// maxSubqueries caps the decomposition regardless of how many subqueries
// the model emits.
const maxSubqueries = 5

// PersonalDataStore is the slice of the relational store the personalised
// handler needs: idempotent CSV ingestion and raw read access.
type PersonalDataStore interface {
	LoadPersonalData(ctx context.Context, dataDir string) error
	Query(ctx context.Context, query string) ([]map[string]interface{}, error)
}

// PersonalisedRAGStep answers questions about the user's own data with a
// five-stage pipeline: ensure the CSV-backed tables are loaded, describe
// their schema, decompose the query into subqueries, generate and execute
// one SQL statement per subquery concurrently, then synthesize an answer
// from the collected rows. Any fatal condition becomes the apology fallback.
type PersonalisedRAGStep struct {
	LLMService llm_service.LLMService
	Store      PersonalDataStore
	DataDir    string
	Logger     *slog.Logger
}

type subqueryResult struct {
	Subquery string
	SQL      string
	Rows     []map[string]interface{}
	Err      error
}

func (s *PersonalisedRAGStep) Execute(ctx context.Context, state *State) error {
	state.PersonalisedRAGMessages = append(state.PersonalisedRAGMessages,
		"Processing query about personal user data...")

	if err := s.run(ctx, state); err != nil {
		state.PersonalisedRAGMessages = append(state.PersonalisedRAGMessages,
			fmt.Sprintf("Error processing query: %v", err))
		state.FinalResponse = fmt.Sprintf("I apologize, but I encountered an error while retrieving your personal data. "+
			"Please try again or contact support if the issue persists. Error: %v", err)
	}
	return nil
}

func (s *PersonalisedRAGStep) Name() string {
	return AgentPersonalisedRAG
}

func (s *PersonalisedRAGStep) run(ctx context.Context, state *State) error {
	// Stage 1: make sure the personal-data tables exist
	if err := s.Store.LoadPersonalData(ctx, s.DataDir); err != nil {
		return fmt.Errorf("personal data ingestion failed: %w", err)
	}

	// Stage 2: schema description from the CSV headers
	schema, err := db.DescribePersonalSchema(s.DataDir)
	if err != nil {
		return fmt.Errorf("schema introspection failed: %w", err)
	}

	// Stage 3: subquery decomposition
	state.PersonalisedRAGMessages = append(state.PersonalisedRAGMessages,
		"Breaking the query into database subqueries...")

	subqueries, err := s.decompose(ctx, state.UserQuery, schema)
	if err != nil {
		return err
	}
	if len(subqueries) == 0 {
		return fmt.Errorf("query decomposition produced no subqueries")
	}
	if len(subqueries) > maxSubqueries {
		subqueries = subqueries[:maxSubqueries]
	}
	state.PersonalisedRAGMessages = append(state.PersonalisedRAGMessages,
		fmt.Sprintf("Decomposed into %d subqueries", len(subqueries)))

	// Stage 4: generate and execute SQL, fanning out per subquery. Workers
	// record their own failure instead of returning it, so one bad
	// subquery never cancels its siblings; Wait is the fan-in barrier.
	results := make([]subqueryResult, len(subqueries))
	for i, sq := range subqueries {
		results[i].Subquery = sq
	}

	var genGroup errgroup.Group
	for i := range results {
		genGroup.Go(func() error {
			sqlQuery, err := s.generateSQL(ctx, results[i].Subquery, schema)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].SQL = sqlQuery
			return nil
		})
	}
	genGroup.Wait()

	valid := 0
	for i := range results {
		if results[i].Err != nil {
			s.Logger.Warn("SQL generation failed for subquery",
				slog.String("subquery", results[i].Subquery),
				slog.String("error", results[i].Err.Error()))
			continue
		}
		if results[i].SQL == "" {
			results[i].Err = fmt.Errorf("model returned no SQL statement")
			continue
		}
		valid++
	}
	if valid == 0 {
		return fmt.Errorf("no valid SQL statements could be generated")
	}
	state.PersonalisedRAGMessages = append(state.PersonalisedRAGMessages,
		fmt.Sprintf("Generated %d SQL statements", valid))

	var execGroup errgroup.Group
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		execGroup.Go(func() error {
			rows, err := s.Store.Query(ctx, results[i].SQL)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Rows = rows
			return nil
		})
	}
	execGroup.Wait()

	// Stage 5: synthesize the personalized answer from successful results
	answer, err := s.synthesize(ctx, state.UserQuery, results)
	if err != nil {
		return err
	}

	state.PersonalisedRAGMessages = append(state.PersonalisedRAGMessages,
		"Response generated successfully")
	state.FinalResponse = answer
	return nil
}

func (s *PersonalisedRAGStep) decompose(ctx context.Context, userQuery, schema string) ([]string, error) {
	userPrompt := fmt.Sprintf(`User Query: %s

Available tables:
%s

Break the query into subqueries.`, userQuery, schema)

	messages := []llm_service.Message{
		{Role: "system", Content: SubqueryDecompositionPrompt},
		{Role: "user", Content: userPrompt},
	}

	response, err := s.LLMService.CallChat(ctx, messages, 0.2)
	if err != nil {
		return nil, fmt.Errorf("subquery decomposition call failed: %w", err)
	}

	var result struct {
		Subqueries []string `json:"subqueries"`
		Reasoning  string   `json:"reasoning"`
	}
	if err := ParseJSONResponse(response, &result); err != nil {
		return nil, fmt.Errorf("subquery decomposition: %w", err)
	}
	return result.Subqueries, nil
}

func (s *PersonalisedRAGStep) generateSQL(ctx context.Context, subquery, schema string) (string, error) {
	userPrompt := fmt.Sprintf(`Subquery: %s

Available tables:
%s

Write the SQL statement.`, subquery, schema)

	messages := []llm_service.Message{
		{Role: "system", Content: SQLGenerationPrompt},
		{Role: "user", Content: userPrompt},
	}

	response, err := s.LLMService.CallChat(ctx, messages, 0.2)
	if err != nil {
		return "", err
	}

	var result struct {
		SQLQuery string `json:"sql_query"`
	}
	if err := ParseJSONResponse(response, &result); err != nil {
		return "", err
	}
	return strings.TrimSpace(result.SQLQuery), nil
}

func (s *PersonalisedRAGStep) synthesize(ctx context.Context, userQuery string, results []subqueryResult) (string, error) {
	var contextParts []string
	for _, r := range results {
		if r.Err != nil || r.SQL == "" {
			continue
		}
		rowsJSON, err := json.Marshal(r.Rows)
		if err != nil {
			rowsJSON = []byte("[]")
		}
		contextParts = append(contextParts, fmt.Sprintf("Subquery: %s\nSQL: %s\nResults: %s",
			r.Subquery, r.SQL, string(rowsJSON)))
	}

	answerPrompt := fmt.Sprintf(`User Query: %s

Retrieved Data:
%s

Please provide a personalized answer to the user's query based on the above data.`,
		userQuery, strings.Join(contextParts, "\n\n"))

	messages := []llm_service.Message{
		{Role: "system", Content: PersonalisedAnswerPrompt},
		{Role: "user", Content: answerPrompt},
	}

	return s.LLMService.CallChat(ctx, messages, 0.3)
}
