// Package editorrpc is the HTTP client for the editor's collaborator
// contract: every editor-backed tool (open file, go-to-definition, apply
// edits, ...) is a POST of a JSON body to editor_url + a fixed path.
package editorrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/symborch/core/internal/llmtypes"
)

// Client speaks the editor RPC contract described in spec.md §6.1, grounded
// on haasonsaas/nexus's provider HTTP clients (explicit timeout, context
// cancellation, no retries at this layer — retries are a tool-level
// decision).
type Client struct {
	baseURL string
	http    *http.Client
}

// New constructs an editor RPC client against baseURL (no trailing slash
// required).
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient allows overriding the transport, used by tests to inject
// a fake editor.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: baseURL, http: hc}
}

func (c *Client) post(ctx context.Context, path string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: encoding request for %s: %v", llmtypes.ErrDecode, path, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: building request for %s: %v", ErrCommunicatingWithEditor, path, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCommunicatingWithEditor, path, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response from %s: %v", ErrCommunicatingWithEditor, path, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d: %s", ErrCommunicatingWithEditor, path, httpResp.StatusCode, string(raw))
	}
	if resp == nil {
		return nil
	}
	if err := json.Unmarshal(raw, resp); err != nil {
		return fmt.Errorf("%w: decoding response from %s: %v", ErrSerdeConversionFailed, path, err)
	}
	return nil
}

// Position is a 0-based line/character/byte_offset location, required to be
// mutually consistent at construction (spec.md §6.1).
type Position struct {
	Line       int `json:"line"`
	Character  int `json:"character"`
	ByteOffset int `json:"byte_offset"`
}

// Range is a half-open [Start, End) span over a file.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// FileOpenRequest is the /file_open request body.
type FileOpenRequest struct {
	FsFilePath string `json:"fs_file_path"`
}

// FileOpenResponse is the /file_open response body.
type FileOpenResponse struct {
	FsFilePath string `json:"fs_file_path"`
	Contents   string `json:"contents"`
	Language   string `json:"language"`
	Exists     bool   `json:"exists"`
}

// FileOpen fetches a file's contents from the editor.
func (c *Client) FileOpen(ctx context.Context, fsFilePath string) (FileOpenResponse, error) {
	var resp FileOpenResponse
	err := c.post(ctx, "/file_open", FileOpenRequest{FsFilePath: fsFilePath}, &resp)
	return resp, err
}

// FindInFileRequest is the /find_in_file request body.
type FindInFileRequest struct {
	FileContent string `json:"file_content"`
	Symbol      string `json:"symbol"`
}

// FindInFileResponse is the /find_in_file response body.
type FindInFileResponse struct {
	Position *Position `json:"position,omitempty"`
}

// FindInFile locates a symbol's position within already-loaded file content.
func (c *Client) FindInFile(ctx context.Context, fileContent, symbol string) (FindInFileResponse, error) {
	var resp FindInFileResponse
	err := c.post(ctx, "/find_in_file", FindInFileRequest{FileContent: fileContent, Symbol: symbol}, &resp)
	return resp, err
}

// PositionRequest is shared by go-to-definition and go-to-implementation.
type PositionRequest struct {
	FsFilePath string   `json:"fs_file_path"`
	Position   Position `json:"position"`
}

// Location is a single definition/implementation hit.
type Location struct {
	FsFilePath string `json:"fs_file_path"`
	Range      Range  `json:"range"`
}

// GoToDefinitionResponse is the /go_to_definition response body.
type GoToDefinitionResponse struct {
	Definitions []Location `json:"definitions"`
}

// GoToDefinition resolves the definition(s) of the symbol at a position.
func (c *Client) GoToDefinition(ctx context.Context, fsFilePath string, pos Position) (GoToDefinitionResponse, error) {
	var resp GoToDefinitionResponse
	err := c.post(ctx, "/go_to_definition", PositionRequest{FsFilePath: fsFilePath, Position: pos}, &resp)
	return resp, err
}

// GoToImplementationResponse is the /go_to_implementation response body.
type GoToImplementationResponse struct {
	Implementations []Location `json:"implementations"`
}

// GoToImplementation resolves the implementation(s) of the symbol at a position.
func (c *Client) GoToImplementation(ctx context.Context, fsFilePath string, pos Position) (GoToImplementationResponse, error) {
	var resp GoToImplementationResponse
	err := c.post(ctx, "/go_to_implementation", PositionRequest{FsFilePath: fsFilePath, Position: pos}, &resp)
	return resp, err
}

// CreateFileRequest is the /create_file request body.
type CreateFileRequest struct {
	FsFilePath string `json:"fs_file_path"`
}

// CreateFileResponse is the /create_file response body.
type CreateFileResponse struct {
	Done       bool   `json:"done"`
	FsFilePath string `json:"fs_file_path"`
}

// CreateFile asks the editor to create an empty file at fsFilePath.
func (c *Client) CreateFile(ctx context.Context, fsFilePath string) (CreateFileResponse, error) {
	var resp CreateFileResponse
	err := c.post(ctx, "/create_file", CreateFileRequest{FsFilePath: fsFilePath}, &resp)
	return resp, err
}

// RipGrepPathResponse is the /rip_grep_path response body.
type RipGrepPathResponse struct {
	RipGrepPath string `json:"rip_grep_path"`
}

// RipGrepPath fetches the path to the editor's bundled ripgrep-like binary.
func (c *Client) RipGrepPath(ctx context.Context) (RipGrepPathResponse, error) {
	var resp RipGrepPathResponse
	err := c.post(ctx, "/rip_grep_path", struct{}{}, &resp)
	return resp, err
}

// DiagnosticsRequest is the /diagnostics request body.
type DiagnosticsRequest struct {
	FsFilePaths []string `json:"fs_file_paths"`
}

// Diagnostic is a single LSP diagnostic entry.
type Diagnostic struct {
	FsFilePath string `json:"fs_file_path"`
	Range      Range  `json:"range"`
	Message    string `json:"message"`
	Snippet    string `json:"snippet"`
}

// DiagnosticsResponse is the /diagnostics response body.
type DiagnosticsResponse struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Diagnostics fetches LSP diagnostics for a set of files.
func (c *Client) Diagnostics(ctx context.Context, fsFilePaths []string) (DiagnosticsResponse, error) {
	var resp DiagnosticsResponse
	err := c.post(ctx, "/diagnostics", DiagnosticsRequest{FsFilePaths: fsFilePaths}, &resp)
	return resp, err
}

// QuickFixListRequest is the /quick_fix_list request body.
type QuickFixListRequest struct {
	FsFilePath string `json:"fs_file_path"`
	Range      Range  `json:"range"`
}

// QuickFix is a single actionable fix the editor can apply.
type QuickFix struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// QuickFixListResponse is the /quick_fix_list response body.
type QuickFixListResponse struct {
	QuickFixes []QuickFix `json:"quick_fixes"`
}

// QuickFixList fetches the quick fixes available at a range.
func (c *Client) QuickFixList(ctx context.Context, fsFilePath string, r Range) (QuickFixListResponse, error) {
	var resp QuickFixListResponse
	err := c.post(ctx, "/quick_fix_list", QuickFixListRequest{FsFilePath: fsFilePath, Range: r}, &resp)
	return resp, err
}

// QuickFixApplyRequest is the /quick_fix_apply request body.
type QuickFixApplyRequest struct {
	FsFilePath string `json:"fs_file_path"`
	QuickFixID string `json:"quick_fix_id"`
}

// QuickFixApplyResponse is the /quick_fix_apply response body.
type QuickFixApplyResponse struct {
	Applied bool `json:"applied"`
}

// QuickFixApply asks the editor to apply a previously listed quick fix.
func (c *Client) QuickFixApply(ctx context.Context, fsFilePath, quickFixID string) (QuickFixApplyResponse, error) {
	var resp QuickFixApplyResponse
	err := c.post(ctx, "/quick_fix_apply", QuickFixApplyRequest{FsFilePath: fsFilePath, QuickFixID: quickFixID}, &resp)
	return resp, err
}

// Edit is a single textual replacement the editor should apply.
type Edit struct {
	Range   Range  `json:"range"`
	NewText string `json:"new_text"`
}

// ApplyEditsRequest is the /apply_edits request body.
type ApplyEditsRequest struct {
	FsFilePath string `json:"fs_file_path"`
	Edits      []Edit `json:"edits"`
}

// ApplyEditsResponse is the /apply_edits response body.
type ApplyEditsResponse struct {
	Applied bool `json:"applied"`
}

// ApplyEdits sends a batch of edits for the editor to apply atomically.
func (c *Client) ApplyEdits(ctx context.Context, fsFilePath string, edits []Edit) (ApplyEditsResponse, error) {
	var resp ApplyEditsResponse
	err := c.post(ctx, "/apply_edits", ApplyEditsRequest{FsFilePath: fsFilePath, Edits: edits}, &resp)
	return resp, err
}

// GoToReferencesResponse is the /go_to_references response body. This
// endpoint is not enumerated in spec.md's table but follows the same shape
// as /go_to_definition and /go_to_implementation to cover the
// go-to-references ToolType.
type GoToReferencesResponse struct {
	References []Location `json:"references"`
}

// GoToReferences resolves the references of the symbol at a position.
func (c *Client) GoToReferences(ctx context.Context, fsFilePath string, pos Position) (GoToReferencesResponse, error) {
	var resp GoToReferencesResponse
	err := c.post(ctx, "/go_to_references", PositionRequest{FsFilePath: fsFilePath, Position: pos}, &resp)
	return resp, err
}

// GoToTypeDefinitionResponse is the /go_to_type_definition response body.
type GoToTypeDefinitionResponse struct {
	Definitions []Location `json:"definitions"`
}

// GoToTypeDefinition resolves the type definition of the symbol at a position.
func (c *Client) GoToTypeDefinition(ctx context.Context, fsFilePath string, pos Position) (GoToTypeDefinitionResponse, error) {
	var resp GoToTypeDefinitionResponse
	err := c.post(ctx, "/go_to_type_definition", PositionRequest{FsFilePath: fsFilePath, Position: pos}, &resp)
	return resp, err
}

// GoToPreviousWordResponse is the /go_to_previous_word response body.
type GoToPreviousWordResponse struct {
	Word     string   `json:"word"`
	Position Position `json:"position"`
}

// GoToPreviousWord resolves the word immediately preceding a position.
func (c *Client) GoToPreviousWord(ctx context.Context, fsFilePath string, pos Position) (GoToPreviousWordResponse, error) {
	var resp GoToPreviousWordResponse
	err := c.post(ctx, "/go_to_previous_word", PositionRequest{FsFilePath: fsFilePath, Position: pos}, &resp)
	return resp, err
}

// ListFilesRequest is the /list_files request body.
type ListFilesRequest struct {
	Directory string `json:"directory"`
}

// ListFilesResponse is the /list_files response body.
type ListFilesResponse struct {
	FsFilePaths []string `json:"fs_file_paths"`
}

// ListFiles lists files under a directory as known to the editor's project
// index.
func (c *Client) ListFiles(ctx context.Context, directory string) (ListFilesResponse, error) {
	var resp ListFilesResponse
	err := c.post(ctx, "/list_files", ListFilesRequest{Directory: directory}, &resp)
	return resp, err
}
