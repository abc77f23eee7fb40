package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
)

func newTestServer(t *testing.T, corpus string) *Server {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	dir := t.TempDir()
	if corpus != "" {
		if err := os.WriteFile(filepath.Join(dir, "abc.txt"), []byte(corpus), 0644); err != nil {
			t.Fatalf("failed to write corpus: %v", err)
		}
	}

	params := config.NewStore()
	params.SetString(config.StringSystemLoc, dir)
	params.SetString(config.StringAlphabetID, "abc")

	catalog := alphabet.NewCatalog()
	catalog.Register(alphabet.Info{
		ID:           "abc",
		TrainingFile: "abc.txt",
		Symbols:      []alphabet.SymbolInfo{{Text: "a"}, {Text: "b"}, {Text: "c"}},
	})

	s := NewServer(params, catalog)
	s.logger = log.New(io.Discard, "", 0)
	return s
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) string {
	t.Helper()
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(result.Content) == 0 {
		t.Fatal("handler returned no content")
	}
	textContent, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", result.Content[0])
	}
	return textContent.Text
}

func TestRegisterTools(t *testing.T) {
	s := newTestServer(t, "")
	tools := s.mcpServer.ListTools()

	for _, name := range []string{"zoomtype_predict", "zoomtype_train", "zoomtype_alphabets"} {
		if _, ok := tools[name]; !ok {
			t.Fatalf("tool %q not registered", name)
		}
	}

	schema := tools["zoomtype_predict"].Tool.InputSchema
	if schema.Type != "object" {
		t.Fatalf("expected schema type object, got %q", schema.Type)
	}
	prop, ok := schema.Properties["context"].(map[string]any)
	if !ok {
		t.Fatalf("context property missing or not an object: %v", schema.Properties["context"])
	}
	if prop["type"] != "string" {
		t.Fatalf("expected context type string, got %v", prop["type"])
	}
	found := false
	for _, r := range schema.Required {
		if r == "context" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected context to be required, got %v", schema.Required)
	}
}

func TestPredictFollowsCorpus(t *testing.T) {
	s := newTestServer(t, strings.Repeat("ab", 50))

	out := callTool(t, s.handlePredict, map[string]any{"context": "a", "limit": float64(2)})

	var preds []Prediction
	if err := json.Unmarshal([]byte(out), &preds); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if len(preds) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(preds))
	}
	if preds[0].Text != "b" {
		t.Fatalf("expected %q first after %q, got %+v", "b", "a", preds)
	}
	if preds[0].Probability <= preds[1].Probability {
		t.Fatalf("expected predictions ordered by probability, got %+v", preds)
	}
}

func TestPredictRequiresContext(t *testing.T) {
	s := newTestServer(t, "")
	req := mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: map[string]any{}}}
	result, err := s.handlePredict(context.Background(), req)
	if err != nil {
		t.Fatalf("handlePredict returned error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected an error result without context")
	}
}

func TestPredictUnknownAlphabet(t *testing.T) {
	s := newTestServer(t, "")
	out := callTool(t, s.handlePredict, map[string]any{"context": "a", "alphabet": "Klingon"})
	if !strings.Contains(out, "failed to load model") {
		t.Fatalf("expected load failure, got %q", out)
	}
}

func TestTrainChangesPredictions(t *testing.T) {
	s := newTestServer(t, "")

	out := callTool(t, s.handleTrain, map[string]any{"text": strings.Repeat("ac", 40), "save": true})
	var res TrainResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if res.Symbols != 80 {
		t.Fatalf("expected 80 symbols learned, got %d", res.Symbols)
	}
	if res.Saved == "" {
		t.Fatal("expected the snapshot path to be reported")
	}
	if _, err := os.Stat(res.Saved); err != nil {
		t.Fatalf("expected snapshot on disk: %v", err)
	}

	text := callTool(t, s.handlePredict, map[string]any{"context": "a", "format": "text"})
	if !strings.HasPrefix(text, `"c"`) {
		t.Fatalf("expected %q first after training, got %q", "c", text)
	}
}

func TestSnapshotReusedByNewServer(t *testing.T) {
	s := newTestServer(t, "")
	callTool(t, s.handleTrain, map[string]any{"text": strings.Repeat("ca", 40), "save": true})

	fresh := NewServer(s.params, s.catalog)
	fresh.logger = s.logger
	out := callTool(t, fresh.handlePredict, map[string]any{"context": "c", "limit": float64(1)})
	var preds []Prediction
	if err := json.Unmarshal([]byte(out), &preds); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	if len(preds) != 1 || preds[0].Text != "a" {
		t.Fatalf("expected %q from the saved snapshot, got %+v", "a", preds)
	}
}

func TestAlphabetsListsCatalog(t *testing.T) {
	s := newTestServer(t, "")
	out := callTool(t, s.handleAlphabets, map[string]any{})

	var infos []AlphabetInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	found := false
	for _, info := range infos {
		if info.ID == "abc" {
			found = true
			if info.Symbols != 3 || info.TrainingFile != "abc.txt" {
				t.Fatalf("unexpected abc entry: %+v", info)
			}
		}
	}
	if !found {
		t.Fatalf("expected abc in %+v", infos)
	}

	text := callTool(t, s.handleAlphabets, map[string]any{"format": "text"})
	if !strings.Contains(text, "abc (3 symbols, western)") {
		t.Fatalf("expected text listing for abc, got %q", text)
	}
}
