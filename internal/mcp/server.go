package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/vectorstore"
)

const (
	// MCPVersion is the protocol version we support.
	MCPVersion = "2024-11-05"

	// ServerName is the name of this MCP server.
	ServerName = "meridian"

	// ServerVersion is the version of this server.
	ServerVersion = "1.0.0"
)

// Server is the JSON-RPC/MCP tool server backing AI-agent access to an
// indexed codebase, dispatching to the metadata and vector stores
// directly rather than through a combined store.
type Server struct {
	meta    *metastore.Store
	vectors vectorstore.Store

	reader *bufio.Reader
	writer io.Writer

	initialized bool
}

// NewServer creates a new MCP server over the given stores.
func NewServer(meta *metastore.Store, vectors vectorstore.Store) *Server {
	return &Server{
		meta:    meta,
		vectors: vectors,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
	}
}

// Run starts the MCP server and processes requests until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	log.Info("MCP server starting")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				log.Info("MCP server received EOF, shutting down")
				return nil
			}
			log.Error("failed to read from stdin", "error", err)
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.sendError(nil, ErrorCodeParse, "Parse error", err.Error())
			continue
		}

		s.handleRequest(ctx, req)
	}
}

func (s *Server) handleRequest(ctx context.Context, req Request) {
	log.Debug("received request", "method", req.Method, "id", req.ID)

	var result any
	var err error

	switch req.Method {
	case "initialize":
		result, err = s.handleInitialize(req.Params)
	case "initialized":
		s.initialized = true
		log.Info("MCP server initialized")
		return
	case "tools/list":
		result, err = s.handleListTools()
	case "tools/call":
		result, err = s.handleCallTool(ctx, req.Params)
	case "ping":
		result = map[string]any{}
	default:
		s.sendError(req.ID, ErrorCodeMethodNotFound, "Method not found", req.Method)
		return
	}

	if err != nil {
		s.sendError(req.ID, ErrorCodeInternal, "Internal error", err.Error())
		return
	}

	s.sendResult(req.ID, result)
}

func (s *Server) handleInitialize(params json.RawMessage) (*InitializeResult, error) {
	var p InitializeParams
	if params != nil {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("invalid params: %w", err)
		}
	}

	log.Info("initializing MCP server",
		"clientName", p.ClientInfo.Name,
		"clientVersion", p.ClientInfo.Version,
		"protocolVersion", p.ProtocolVersion,
	)

	return &InitializeResult{
		ProtocolVersion: MCPVersion,
		Capabilities: ServerCapabilities{
			Tools: &ToolsCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
	}, nil
}

// handleListTools returns the three tools this server exposes: a
// semantic query over a repository's indexed chunks, a file listing,
// and a direct read of a chunk's backing source lines.
func (s *Server) handleListTools() (*ListToolsResult, error) {
	tools := []Tool{
		{
			Name:        "query",
			Description: "Semantic search over an indexed repository's chunks using natural language.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"query":      {Type: "string", Description: "Natural language search query"},
					"repository": {Type: "string", Description: "Repository name to search in"},
					"limit":      {Type: "number", Description: "Maximum number of results", Default: 10},
				},
				Required: []string{"query", "repository"},
			},
		},
		{
			Name:        "list_files",
			Description: "List the files tracked for an indexed repository.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"repository": {Type: "string", Description: "Repository name"},
				},
				Required: []string{"repository"},
			},
		},
		{
			Name:        "read_chunk",
			Description: "Read a range of lines directly from a file in an indexed repository.",
			InputSchema: JSONSchema{
				Type: "object",
				Properties: map[string]Property{
					"repository": {Type: "string", Description: "Repository name"},
					"file_path":  {Type: "string", Description: "File path relative to the repository root"},
					"start_line": {Type: "number", Description: "First line to read (1-based)"},
					"end_line":   {Type: "number", Description: "Last line to read (inclusive)"},
				},
				Required: []string{"repository", "file_path"},
			},
		},
	}

	return &ListToolsResult{Tools: tools}, nil
}

func (s *Server) handleCallTool(ctx context.Context, params json.RawMessage) (*CallToolResult, error) {
	var p CallToolParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}

	log.Debug("calling tool", "name", p.Name, "arguments", p.Arguments)

	var resultText string
	var isError bool

	switch p.Name {
	case "query":
		resultText, isError = s.toolQuery(ctx, p.Arguments)
	case "list_files":
		resultText, isError = s.toolListFiles(p.Arguments)
	case "read_chunk":
		resultText, isError = s.toolReadChunk(p.Arguments)
	default:
		return &CallToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Unknown tool: %s", p.Name)}},
			IsError: true,
		}, nil
	}

	return &CallToolResult{
		Content: []ContentBlock{{Type: "text", Text: resultText}},
		IsError: isError,
	}, nil
}

func (s *Server) resolveRepository(name string) (*metastore.Repository, error) {
	repo, err := s.meta.GetRepositoryByName(name)
	if err != nil {
		return nil, err
	}
	if repo == nil {
		repo, err = s.meta.GetRepositoryByPath(name)
		if err != nil {
			return nil, err
		}
	}
	return repo, nil
}

// toolQuery runs a semantic search against a repository's collection.
func (s *Server) toolQuery(ctx context.Context, args map[string]any) (string, bool) {
	query, _ := args["query"].(string)
	if query == "" {
		return "Error: query is required", true
	}
	repoName, _ := args["repository"].(string)
	if repoName == "" {
		return "Error: repository is required", true
	}

	limit := 10
	if l, ok := args["limit"].(float64); ok {
		limit = int(l)
	}

	repo, err := s.resolveRepository(repoName)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	if repo == nil {
		return fmt.Sprintf("Repository '%s' not found.", repoName), true
	}

	results, err := s.vectors.Query(ctx, repo.CollectionName, query, limit)
	if err != nil {
		return fmt.Sprintf("Error: query failed: %v", err), true
	}
	if len(results) == 0 {
		return "No results found.", false
	}

	type hit struct {
		FilePath   string  `json:"file_path"`
		StartLine  int     `json:"start_line"`
		EndLine    int     `json:"end_line"`
		Language   string  `json:"language,omitempty"`
		SymbolName string  `json:"symbol_name,omitempty"`
		SymbolType string  `json:"symbol_type,omitempty"`
		Distance   float32 `json:"distance"`
		Content    string  `json:"content"`
	}

	out := make([]hit, len(results))
	for i, r := range results {
		out[i] = hit{
			FilePath:   r.Metadata["file_path"],
			StartLine:  atoiOr(r.Metadata["start_line"]),
			EndLine:    atoiOr(r.Metadata["end_line"]),
			Language:   r.Metadata["language"],
			SymbolName: r.Metadata["symbol_name"],
			SymbolType: r.Metadata["symbol_type"],
			Distance:   r.Distance,
			Content:    r.Document,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return string(data), false
}

// toolListFiles lists the tracked files for a repository.
func (s *Server) toolListFiles(args map[string]any) (string, bool) {
	repoName, _ := args["repository"].(string)
	if repoName == "" {
		return "Error: repository is required", true
	}

	repo, err := s.resolveRepository(repoName)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	if repo == nil {
		return fmt.Sprintf("Repository '%s' not found.", repoName), true
	}

	files, err := s.meta.ListFiles(repo.ID)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.FilePath
	}

	data, err := json.MarshalIndent(map[string]any{
		"repository": repo.Name,
		"total":      len(paths),
		"files":      paths,
	}, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return string(data), false
}

// toolReadChunk reads a line range directly off disk for a tracked file.
func (s *Server) toolReadChunk(args map[string]any) (string, bool) {
	repoName, _ := args["repository"].(string)
	filePath, _ := args["file_path"].(string)
	if repoName == "" || filePath == "" {
		return "Error: repository and file_path are required", true
	}

	repo, err := s.resolveRepository(repoName)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	if repo == nil {
		return fmt.Sprintf("Repository '%s' not found.", repoName), true
	}

	absPath := filepath.Join(repo.Path, filePath)
	content, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err), true
	}

	lines := strings.Split(string(content), "\n")
	start, end := 1, len(lines)
	if v, ok := args["start_line"]; ok {
		start = intArg(v, start)
	}
	if v, ok := args["end_line"]; ok {
		end = intArg(v, end)
	}
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return "Error: start_line is after end_line", true
	}

	selected := strings.Join(lines[start-1:end], "\n")
	data, err := json.MarshalIndent(map[string]any{
		"repository": repo.Name,
		"file_path":  filePath,
		"start_line": start,
		"end_line":   end,
		"content":    selected,
	}, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return string(data), false
}

func intArg(v any, fallback int) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil {
			return n
		}
	}
	return fallback
}

func atoiOr(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) sendResult(id any, result any) {
	resp := Response{JSONRPC: "2.0", ID: id, Result: result}
	s.send(resp)
}

func (s *Server) sendError(id any, code int, message, data string) {
	resp := Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	}
	s.send(resp)
}

func (s *Server) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error("failed to marshal response", "error", err)
		return
	}
	fmt.Fprintln(s.writer, string(data))
}
