// Package mcp exposes the prediction model to agents over the Model
// Context Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/lm"
	"github.com/yoanbernabeu/zoomtype/session"
)

const (
	serverName    = "zoomtype"
	serverVersion = "1.0.0"
	defaultTop    = 5
	maxTop        = 100
)

// Server answers tool calls with per-alphabet language models, trained
// lazily from the configured training locations.
type Server struct {
	mcpServer *server.MCPServer
	params    *config.Store
	catalog   *alphabet.Catalog
	logger    *log.Logger

	mu     sync.Mutex
	models map[string]*loadedModel
}

type loadedModel struct {
	alphabet *alphabet.Alphabet
	model    lm.Model
	trainer  *lm.Trainer
	learned  lm.Sources
}

// Prediction is one candidate next symbol.
type Prediction struct {
	Symbol      int     `json:"symbol"`
	Text        string  `json:"text"`
	Display     string  `json:"display,omitempty"`
	Probability float64 `json:"probability"`
}

// AlphabetInfo summarises a catalogue entry.
type AlphabetInfo struct {
	ID           string `json:"id"`
	Symbols      int    `json:"symbols"`
	Type         string `json:"type"`
	Orientation  int64  `json:"orientation"`
	TrainingFile string `json:"training_file,omitempty"`
	Palette      string `json:"palette,omitempty"`
}

// TrainResult reports what zoomtype_train learned.
type TrainResult struct {
	Alphabet string `json:"alphabet"`
	Symbols  int    `json:"symbols"`
	Saved    string `json:"saved,omitempty"`
}

// NewServer builds a server over params and catalog; nil values get
// defaults.
func NewServer(params *config.Store, catalog *alphabet.Catalog) *Server {
	if params == nil {
		params = config.NewStore()
	}
	if catalog == nil {
		catalog = alphabet.NewCatalog()
	}
	s := &Server{
		params:  params,
		catalog: catalog,
		logger:  log.Default(),
		models:  make(map[string]*loadedModel),
	}
	s.mcpServer = server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(true))
	s.registerTools()
	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	predictTool := mcp.NewTool("zoomtype_predict",
		mcp.WithDescription("Predict the most likely next symbols after a piece of text, "+
			"using the same language model that sizes the zooming boxes."),
		mcp.WithString("context",
			mcp.Required(),
			mcp.Description("Text typed so far; only the trailing symbols the model looks at are used"),
		),
		mcp.WithString("alphabet",
			mcp.Description("Alphabet id (default: the configured alphabet)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of predictions to return (default: 5)"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'json' (default) or 'text'"),
		),
	)
	s.mcpServer.AddTool(predictTool, s.handlePredict)

	trainTool := mcp.NewTool("zoomtype_train",
		mcp.WithDescription("Teach the language model a piece of text so later predictions favour it."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to learn"),
		),
		mcp.WithString("alphabet",
			mcp.Description("Alphabet id (default: the configured alphabet)"),
		),
		mcp.WithBoolean("save",
			mcp.Description("Also write the trained model snapshot to disk (default: false)"),
		),
	)
	s.mcpServer.AddTool(trainTool, s.handleTrain)

	alphabetsTool := mcp.NewTool("zoomtype_alphabets",
		mcp.WithDescription("List the alphabets available for prediction and training."),
		mcp.WithString("format",
			mcp.Description("Output format: 'json' (default) or 'text'"),
		),
	)
	s.mcpServer.AddTool(alphabetsTool, s.handleAlphabets)
}

func (s *Server) alphabetID(req mcp.CallToolRequest) string {
	if id := req.GetString("alphabet", ""); id != "" {
		return id
	}
	return s.params.GetString(config.StringAlphabetID)
}

// model returns the trained model for id, training it on first use.
func (s *Server) model(ctx context.Context, id string) (*loadedModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.models[id]; ok {
		return m, nil
	}

	info, err := s.catalog.Info(id)
	if err != nil {
		return nil, err
	}
	a := alphabet.New(info)
	lang := lm.New(s.params.GetLong(config.LongLanguageModelID), a.NumberSymbols(),
		int(s.params.GetLong(config.LongLMOrder)), int(s.params.GetLong(config.LongUniform)))

	learned := s.loadSnapshot(ctx, lang, id)
	tr := lm.NewTrainer(lang)
	for _, loc := range []config.Param{config.StringSystemLoc, config.StringUserLoc} {
		dir := s.params.GetString(loc)
		if dir == "" || a.TrainingFile() == "" {
			continue
		}
		key := session.SourceKey(filepath.Join(dir, a.TrainingFile()))
		_, end, err := session.TrainPathFrom(key, learned[key], a, tr)
		if err != nil {
			s.logger.Printf("Training file %s not used: %v", key, err)
			continue
		}
		learned[key] = end
	}

	m := &loadedModel{alphabet: a, model: lang, trainer: lm.NewTrainer(lang), learned: learned}
	s.models[id] = m
	return m, nil
}

// loadSnapshot fills lang from the saved snapshot and returns the training
// text it covers, empty when none was used.
func (s *Server) loadSnapshot(ctx context.Context, lang lm.Model, id string) lm.Sources {
	ppm, ok := lang.(*lm.PPM)
	if !ok {
		return lm.Sources{}
	}
	learned, err := lm.NewGOBStore(config.GetModelCachePath(id)).LoadSources(ctx, ppm, id)
	if err != nil {
		s.logger.Printf("Warning: model snapshot for %s ignored: %v", id, err)
		return lm.Sources{}
	}
	return learned
}

func (s *Server) handlePredict(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("context")
	if err != nil {
		return mcp.NewToolResultError("context parameter is required"), nil
	}
	limit := req.GetInt("limit", defaultTop)
	if limit <= 0 {
		limit = defaultTop
	}
	if limit > maxTop {
		limit = maxTop
	}

	id := s.alphabetID(req)
	m, err := s.model(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load model for %q: %v", id, err)), nil
	}

	s.mu.Lock()
	preds := predict(m, text, limit)
	s.mu.Unlock()

	if req.GetString("format", "json") == "text" {
		var sb strings.Builder
		for _, p := range preds {
			sb.WriteString(fmt.Sprintf("%q %.4f\n", p.Text, p.Probability))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
	return jsonResult(preds)
}

// predict ranks the symbols that may follow text, most likely first.
func predict(m *loadedModel, text string, limit int) []Prediction {
	syms, _ := m.alphabet.Symbols(text, false)
	if order := m.model.Order(); len(syms) > order {
		syms = syms[len(syms)-order:]
	}
	dist := m.model.Distribution(syms)

	var total float64
	for _, p := range dist {
		total += float64(p.Weight)
	}
	sort.SliceStable(dist, func(i, j int) bool {
		if dist[i].Weight != dist[j].Weight {
			return dist[i].Weight > dist[j].Weight
		}
		return dist[i].Symbol < dist[j].Symbol
	})
	if len(dist) > limit {
		dist = dist[:limit]
	}

	out := make([]Prediction, 0, len(dist))
	for _, p := range dist {
		pred := Prediction{
			Symbol: int(p.Symbol),
			Text:   m.alphabet.Text(p.Symbol),
		}
		if d := m.alphabet.DisplayText(p.Symbol); d != pred.Text {
			pred.Display = d
		}
		if total > 0 {
			pred.Probability = float64(p.Weight) / total
		}
		out = append(out, pred)
	}
	return out
}

func (s *Server) handleTrain(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text parameter is required"), nil
	}

	id := s.alphabetID(req)
	m, err := s.model(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load model for %q: %v", id, err)), nil
	}

	s.mu.Lock()
	syms, _ := m.alphabet.Symbols(text, false)
	m.trainer.Train(syms)
	s.mu.Unlock()

	result := TrainResult{Alphabet: id, Symbols: len(syms)}
	if req.GetBool("save", false) {
		ppm, ok := m.model.(*lm.PPM)
		if !ok {
			return mcp.NewToolResultError("the configured language model cannot be saved"), nil
		}
		store := lm.NewGOBStore(config.GetModelCachePath(id))
		s.mu.Lock()
		err := store.PersistSources(ctx, ppm, id, m.learned)
		s.mu.Unlock()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to save model: %v", err)), nil
		}
		result.Saved = store.Path()
	}
	return jsonResult(result)
}

func (s *Server) handleAlphabets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var infos []AlphabetInfo
	for _, id := range s.catalog.Alphabets() {
		info, err := s.catalog.Info(id)
		if err != nil {
			continue
		}
		infos = append(infos, AlphabetInfo{
			ID:           info.ID,
			Symbols:      len(info.Symbols),
			Type:         info.Type.String(),
			Orientation:  info.Orientation,
			TrainingFile: info.TrainingFile,
			Palette:      info.Palette,
		})
	}

	if req.GetString("format", "json") == "text" {
		var sb strings.Builder
		for _, info := range infos {
			sb.WriteString(fmt.Sprintf("%s (%d symbols, %s)\n", info.ID, info.Symbols, info.Type))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
	return jsonResult(infos)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
