package solve

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sheetsage/sheetsage/pkg/adapter"
	"github.com/sheetsage/sheetsage/pkg/model"
	"google.golang.org/genai"
)

//go:embed prompt/solve.md
var solvePromptRaw string

var solvePromptTmpl = template.Must(template.New("solve").Parse(solvePromptRaw))

// Flow wraps one schema-validated prompt call. It is stateless and
// reentrant; concurrent calls are fully independent.
type Flow struct {
	gemini adapter.Gemini
}

func NewFlow(gemini adapter.Gemini) *Flow {
	return &Flow{gemini: gemini}
}

// Generate embeds the problem into the fixed prompt template, requests a
// structured response and validates it against the output schema. One
// attempt, fail-fast: retry is left to the caller resubmitting.
func (f *Flow) Generate(ctx context.Context, problem string) (*model.Solution, error) {
	if strings.TrimSpace(problem) == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "problem must not be empty")
	}

	var buf bytes.Buffer
	if err := solvePromptTmpl.Execute(&buf, map[string]any{
		"Problem": problem,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to execute solve prompt template")
	}

	responseSchema, err := convertJSONSchemaToGenai(outputSchema)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build response schema")
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buf.String(), genai.RoleUser),
	}

	resp, err := f.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(model.ErrGeneration, "provider call failed", goerr.V("cause", err))
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, goerr.Wrap(model.ErrGeneration, "invalid response structure from gemini")
	}

	rawJSON := resp.Candidates[0].Content.Parts[0].Text

	solution, err := parseSolution([]byte(rawJSON))
	if err != nil {
		return nil, goerr.Wrap(model.ErrGeneration, "response failed schema validation", goerr.V("cause", err))
	}

	return solution, nil
}
