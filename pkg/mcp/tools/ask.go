package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/insights"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/logging"
	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// DatasetToolDeps contains the dependencies of the dataset tools.
type DatasetToolDeps struct {
	Engine   insights.Engine
	Catalog  insights.FileCatalog
	Profiles insights.ProfileProvider
	Logger   *zap.Logger
}

func (d *DatasetToolDeps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// RegisterDatasetTools registers ask_dataset, list_files and get_file_profile.
func RegisterDatasetTools(s *server.MCPServer, deps *DatasetToolDeps) {
	registerAskDatasetTool(s, deps)
	registerListFilesTool(s, deps)
	registerGetFileProfileTool(s, deps)
}

func registerAskDatasetTool(s *server.MCPServer, deps *DatasetToolDeps) {
	tool := mcp.NewTool(
		"ask_dataset",
		mcp.WithDescription(
			"Answers a plain-English question about an uploaded tabular file, or about every file of a project. "+
				"Supports row and column counts, sums, averages, min/max, distinct and top values, "+
				"grouping ('by <column>'), filters ('where <column> is <value>') and two-column comparisons. "+
				"Example: ask_dataset(question='total charge by country', file_id='...')",
		),
		mcp.WithString(
			"question",
			mcp.Required(),
			mcp.Description("The question, e.g. 'top 5 partners by usage' or 'how many rows'"),
		),
		mcp.WithString(
			"file_id",
			mcp.Description("UUID of the file to ask about. Takes precedence over project_id"),
		),
		mcp.WithString(
			"project_id",
			mcp.Description("UUID of a project; the question is answered across all of its files"),
		),
		mcp.WithString(
			"intent",
			mcp.Description("Optional intent override that skips question classification"),
			mcp.Enum(models.Intents()...),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := req.RequireString("question")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		scope, errResult := scopeArgs(req)
		if errResult != nil {
			return errResult, nil
		}
		intent, errResult := intentArg(req)
		if errResult != nil {
			return errResult, nil
		}
		q := models.Question{Text: strings.TrimSpace(question), Scope: scope, ForcedIntent: intent}

		answer, err := deps.Engine.Ask(ctx, q)
		if err != nil {
			if result := AsInputErrorResult(err); result != nil {
				return result, nil
			}
			deps.logger().Error("ask_dataset failed",
				zap.String("question", logging.SanitizeQuestion(q.Text)),
				zap.String("error", logging.SanitizeError(err)))
			return nil, fmt.Errorf("failed to answer question: %w", err)
		}

		return jsonResult(answer)
	})
}

type fileListing struct {
	ID      uuid.UUID `json:"file_id"`
	Name    string    `json:"name"`
	Columns []string  `json:"columns"`
}

type listFilesResult struct {
	ProjectID uuid.UUID     `json:"project_id"`
	Files     []fileListing `json:"files"`
}

func registerListFilesTool(s *server.MCPServer, deps *DatasetToolDeps) {
	tool := mcp.NewTool(
		"list_files",
		mcp.WithDescription("Lists the files of a project with their column names, oldest first."),
		mcp.WithString(
			"project_id",
			mcp.Required(),
			mcp.Description("UUID of the project"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectID, err := optionalUUID(req, "project_id")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if projectID == uuid.Nil {
			return NewErrorResult("invalid_parameters", "project_id is required"), nil
		}

		files, err := deps.Catalog.ListFilesInProject(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}

		result := listFilesResult{ProjectID: projectID, Files: make([]fileListing, 0, len(files))}
		for _, f := range files {
			cols, err := deps.Catalog.ListColumns(ctx, f.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list columns of %s: %w", f.ID, err)
			}
			result.Files = append(result.Files, fileListing{ID: f.ID, Name: f.Name, Columns: cols})
		}
		return jsonResult(result)
	})
}

func registerGetFileProfileTool(s *server.MCPServer, deps *DatasetToolDeps) {
	tool := mcp.NewTool(
		"get_file_profile",
		mcp.WithDescription(
			"Returns the column profile of a file: row count and which columns are numeric, date or categorical. "+
				"Profiles are cached and rebuilt when the file's columns change.",
		),
		mcp.WithString(
			"file_id",
			mcp.Required(),
			mcp.Description("UUID of the file"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fileID, err := optionalUUID(req, "file_id")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if fileID == uuid.Nil {
			return NewErrorResult("invalid_parameters", "file_id is required"), nil
		}

		profile, err := deps.Profiles.GetOrBuildFileProfile(ctx, fileID)
		if err != nil {
			if result := AsInputErrorResult(err); result != nil {
				return result, nil
			}
			return nil, fmt.Errorf("failed to get profile: %w", err)
		}
		if profile == nil {
			return NewErrorResult("no_profile", "no profile is available for this file"), nil
		}
		return jsonResult(profile)
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
