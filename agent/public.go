package agent

import (
	"context"
	"fmt"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/docs"
	"github.com/etnz/allocation/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user holds a portfolio of assets with a desired asset allocation. He is here primarily
			to understand how his portfolio compares to that plan, and what to do about the difference.

			Devise a plan of questions to ask to each expert and come up with the best response to the
			user's request.

			The user will assume that you know about his accounts and asset classes, check the
			portfolio reports first to understand what they are.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewResearcher returns the expert for everything outside the portfolio.
func NewResearcher() *Expert {
	return &Expert{
		Name: "Researcher",
		Description: `This is an expert investment researcher,
		very well aware of all the financial products and institutions,
		of index funds, ETFs, savings bonds, expense ratios,
		and of the latest news about the different funds or companies.
		Ask the Researcher whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in investment research, you can search and find about anything related to
			financial institutions, companies, markets, funds etc. You leverage Google Search to
			ground your assertions in a solid truth.
			You can get the latest news too, and you know how to relate them to the user's request.
				`}}},
		},
	}
}

// NewPlanner returns the expert in charge of the user's portfolio. It reads
// the portfolio and performance files through the given loaders, so every
// answer reflects the current state on disk.
func NewPlanner(loadPortfolio func() (*allocation.Portfolio, error), loadTimeline func() (*allocation.Timeline, error)) *Expert {
	lib := []Function{
		allocationFunc(loadPortfolio),
		locationFunc(loadPortfolio),
		whatIfsFunc(loadPortfolio),
		performanceFunc(loadTimeline),
	}

	return &Expert{
		Name: "Planner",
		Description: `This is the Planner. He is in charge of reading the user's portfolio.
		He can report the asset allocation compared to the desired plan, the asset location
		across account types, the hypothetical what ifs currently set, and the performance
		of the portfolio over time.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a portfolio planner in charge of the user's portfolio.
				You know how to use the Tools to extract relevant information about the user's
				portfolio and wealth.
				You are part of a team of experts, yours is everything about the user's portfolio.
				They might ask you questions about it, pardon their approximative language and
				figure out what they meant.

				Use the available tools to get information about the user's portfolio
				  - asset allocation, actual against desired
				  - asset location across account types
				  - hypothetical what ifs
				  - performance over time
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function
type Func struct {
	// Declare this function
	Decl *genai.FunctionDeclaration
	// Call this function
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// markdownResponse describes the response of every report function.
func markdownResponse(description string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeString,
		Description: description,
	}
}

// respond wraps the outcome of a report into the function response envelope.
func respond(id, name string, report func() (string, error)) *genai.FunctionResponse {
	out, err := report()
	if err != nil {
		return &genai.FunctionResponse{
			ID:   id,
			Name: name,
			Response: map[string]any{
				"error": err.Error(),
			},
		}
	}
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"output": out,
		},
	}
}

func allocationFunc(load func() (*allocation.Portfolio, error)) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Allocation",
			Description: `Allocation reports the actual asset allocation of the portfolio against
			the desired one, asset class by asset class, with the money to move to close the gap.`,
			Response: markdownResponse("A markdown table of the asset allocation, one row per leaf asset class, with actual and desired percentages, value and difference."),
		},
		Func: func(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
			return respond(id, "Allocation", func() (string, error) {
				portfolio, err := load()
				if err != nil {
					return "", err
				}
				if err := portfolio.Prefetch(); err != nil {
					return "", err
				}
				compact, err := portfolio.AssetAllocationCompact()
				if err != nil {
					return "", err
				}
				return renderer.AllocationCompactMarkdown(compact), nil
			})
		},
	}
}

func locationFunc(load func() (*allocation.Portfolio, error)) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Location",
			Description: `Location reports the asset location of the portfolio: how much of each
			asset class is held in each account type (taxable, tax-deferred, tax-free).`,
			Response: markdownResponse("A markdown table of the asset location, asset classes split across account types."),
		},
		Func: func(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
			return respond(id, "Location", func() (string, error) {
				portfolio, err := load()
				if err != nil {
					return "", err
				}
				if err := portfolio.Prefetch(); err != nil {
					return "", err
				}
				rows, err := portfolio.AssetLocation()
				if err != nil {
					return "", err
				}
				return renderer.LocationMarkdown(rows), nil
			})
		},
	}
}

func whatIfsFunc(load func() (*allocation.Portfolio, error)) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "WhatIfs",
			Description: `WhatIfs reports the hypothetical changes currently applied to the
			portfolio: cash added to accounts and value moved in or out of assets. The other
			reports include these changes.`,
			Response: markdownResponse("Markdown tables of the hypothetical changes, empty when none are set."),
		},
		Func: func(_ context.Context, id string, _ map[string]any) *genai.FunctionResponse {
			return respond(id, "WhatIfs", func() (string, error) {
				portfolio, err := load()
				if err != nil {
					return "", err
				}
				accounts, assets, err := portfolio.GetWhatIfs()
				if err != nil {
					return "", err
				}
				doc := renderer.WhatIfsMarkdown(accounts, assets)
				if doc == "" {
					doc = "No hypothetical what ifs are set."
				}
				return doc, nil
			})
		},
	}
}

func performanceFunc(load func() (*allocation.Timeline, error)) Function {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Performance",
			Description: `Performance reports how the portfolio performed between two dates:
			beginning and ending balances, money flows, growth and the internal rate of return.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"begin": {
						Type: genai.TypeString,
						Description: `The begin date. Defaults to the first recorded checkpoint.
						Otherwise it uses a flexible date format based on YYYY-MM-DD:

						` + must(docs.GetTopic("dates")),
					},
					"end": {
						Type:        genai.TypeString,
						Description: "The end date, same format as begin. Defaults to the last recorded checkpoint.",
					},
				},
			},
			Response: markdownResponse("A markdown summary of the performance between the two dates."),
		},
		Func: func(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return respond(id, "Performance", func() (string, error) {
				begin, err := parseDate(args, "begin")
				if err != nil {
					return "", err
				}
				end, err := parseDate(args, "end")
				if err != nil {
					return "", err
				}
				timeline, err := load()
				if err != nil {
					return "", err
				}
				info, err := allocation.NewPerformance(timeline).Info(begin, end)
				if err != nil {
					return "", err
				}
				return renderer.PerformanceInfoMarkdown(info), nil
			})
		},
	}
}

// parseDate reads an optional date argument. A missing or empty argument
// returns the zero date, which the reports treat as "use the default".
func parseDate(args map[string]any, key string) (allocation.Date, error) {
	value, ok := args[key]
	if !ok {
		return allocation.Date{}, nil
	}
	str, ok := value.(string)
	if !ok {
		return allocation.Date{}, fmt.Errorf("argument %q is not a string as expected but %T", key, value)
	}
	if str == "" {
		return allocation.Date{}, nil
	}
	date, err := allocation.ParseDate(str)
	if err != nil {
		return allocation.Date{}, fmt.Errorf("argument %q must be a valid date, got %q. Below is the doc about the date format\n\n%s", key, str, must(docs.GetTopic("dates")))
	}
	return date, nil
}
