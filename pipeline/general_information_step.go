package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adilhn/supportflow/docstore"
	"github.com/adilhn/supportflow/services/llm_service"
)

// GeneralInformationStep answers platform questions with a three-stage
// retrieval pipeline over the static document categories: category
// selection, per-category document selection, then answer synthesis. Every
// stage may fail; the step converts any failure into the apology fallback
// instead of propagating.
type GeneralInformationStep struct {
	LLMService llm_service.LLMService
	Store      *docstore.Store
	Logger     *slog.Logger
}

func (s *GeneralInformationStep) Execute(ctx context.Context, state *State) error {
	state.GeneralInformationMessages = append(state.GeneralInformationMessages,
		"Processing query about platform information...")

	if err := s.run(ctx, state); err != nil {
		state.GeneralInformationMessages = append(state.GeneralInformationMessages,
			fmt.Sprintf("Error processing query: %v", err))
		state.FinalResponse = fmt.Sprintf("I apologize, but I encountered an error while processing your query. "+
			"Please try again or contact support if the issue persists. Error: %v", err)
	}
	return nil
}

func (s *GeneralInformationStep) Name() string {
	return AgentGeneralInformation
}

func (s *GeneralInformationStep) run(ctx context.Context, state *State) error {
	// Stage 1: category selection
	state.GeneralInformationMessages = append(state.GeneralInformationMessages,
		"Step 1: Selecting relevant categories...")

	selectedCategories, err := s.selectCategories(ctx, state)
	if err != nil {
		return err
	}
	state.GeneralInformationMessages = append(state.GeneralInformationMessages,
		fmt.Sprintf("Selected categories: %s", strings.Join(selectedCategories, ", ")))

	// Stage 2: document selection per category
	var allSelectedDocIDs []string
	for _, category := range selectedCategories {
		if !s.Store.KnownCategory(category) {
			s.Logger.Warn("Model selected an unknown category", slog.String("category", category))
			state.GeneralInformationMessages = append(state.GeneralInformationMessages,
				fmt.Sprintf("Warning: Unknown category '%s', skipping...", category))
			continue
		}

		state.GeneralInformationMessages = append(state.GeneralInformationMessages,
			fmt.Sprintf("Step 2: Selecting documents from %s...", category))

		validated, err := s.selectDocuments(ctx, state, category)
		if err != nil {
			return err
		}

		allSelectedDocIDs = append(allSelectedDocIDs, validated...)
		state.GeneralInformationMessages = append(state.GeneralInformationMessages,
			fmt.Sprintf("Selected %d documents from %s", len(validated), category))
		if len(validated) > 0 {
			state.GeneralInformationMessages = append(state.GeneralInformationMessages,
				fmt.Sprintf("Doc IDs from %s: %s", category, strings.Join(validated, ", ")))
		}
	}
	state.GeneralInformationMessages = append(state.GeneralInformationMessages,
		fmt.Sprintf("Total documents selected: %d", len(allSelectedDocIDs)))

	// Stage 3: extract content and generate the final answer
	state.GeneralInformationMessages = append(state.GeneralInformationMessages,
		"Step 3: Generating final answer...")

	answer, err := s.synthesizeAnswer(ctx, state, selectedCategories, allSelectedDocIDs)
	if err != nil {
		return err
	}

	state.GeneralInformationMessages = append(state.GeneralInformationMessages,
		"Response generated successfully")
	state.FinalResponse = answer
	return nil
}

func (s *GeneralInformationStep) selectCategories(ctx context.Context, state *State) ([]string, error) {
	messages := []llm_service.Message{
		{Role: "system", Content: CategorySelectionPrompt},
		{Role: "user", Content: fmt.Sprintf("User Query: %s", state.UserQuery)},
	}

	response, err := s.LLMService.CallChat(ctx, messages, 0.2)
	if err != nil {
		return nil, fmt.Errorf("category selection call failed: %w", err)
	}

	var result struct {
		SelectedCategories []string `json:"selected_categories"`
		Reasoning          string   `json:"reasoning"`
	}
	if err := ParseJSONResponse(response, &result); err != nil {
		return nil, fmt.Errorf("category selection: %w", err)
	}

	return result.SelectedCategories, nil
}

func (s *GeneralInformationStep) selectDocuments(ctx context.Context, state *State, category string) ([]string, error) {
	documents, err := s.Store.LoadCategory(category)
	if err != nil {
		return nil, err
	}

	metadataJSON, err := json.MarshalIndent(docstore.MetadataView(documents), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshaling document metadata: %w", err)
	}

	selectionPrompt := fmt.Sprintf(`User Query: %s

Category: %s

Available Documents:
%s

Select the relevant doc_ids that would help answer the user's query.`,
		state.UserQuery, category, string(metadataJSON))

	messages := []llm_service.Message{
		{Role: "system", Content: DocumentSelectionPrompt},
		{Role: "user", Content: selectionPrompt},
	}

	response, err := s.LLMService.CallChat(ctx, messages, 0.2)
	if err != nil {
		return nil, fmt.Errorf("document selection call failed for %s: %w", category, err)
	}

	var result struct {
		SelectedDocIDs []string `json:"selected_doc_ids"`
		Reasoning      string   `json:"reasoning"`
	}
	if err := ParseJSONResponse(response, &result); err != nil {
		return nil, fmt.Errorf("document selection for %s: %w", category, err)
	}

	// Cross-validate against the actual collection: hallucinated ids are
	// discarded here and never reach the synthesis stage.
	return docstore.ValidateDocIDs(documents, result.SelectedDocIDs), nil
}

func (s *GeneralInformationStep) synthesizeAnswer(ctx context.Context, state *State, categories, docIDs []string) (string, error) {
	var contextParts []string
	for _, category := range categories {
		if !s.Store.KnownCategory(category) {
			continue
		}
		// Intentionally re-read from disk; there is no cross-stage cache.
		documents, err := s.Store.LoadCategory(category)
		if err != nil {
			return "", err
		}
		for _, doc := range docstore.SelectByIDs(documents, docIDs) {
			contextParts = append(contextParts,
				fmt.Sprintf("Document: %s\nContent: %s", doc.Title, doc.Content))
		}
	}

	answerPrompt := fmt.Sprintf(`User Query: %s

Relevant Information:
%s

Please provide a helpful answer to the user's query based on the above information.`,
		state.UserQuery, strings.Join(contextParts, "\n\n"))

	messages := []llm_service.Message{
		{Role: "system", Content: FinalAnswerPrompt},
		{Role: "user", Content: answerPrompt},
	}

	return s.LLMService.CallChat(ctx, messages, 0.3)
}
