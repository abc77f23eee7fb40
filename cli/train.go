package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/lm"
	"github.com/yoanbernabeu/zoomtype/session"
	"github.com/yoanbernabeu/zoomtype/watcher"
)

var (
	trainAlphabet string
	trainJobs     int
	trainOutput   string
	trainFresh    bool
	trainQuiet    bool
)

var trainCmd = &cobra.Command{
	Use:   "train [dir]",
	Short: "Train the language model on a directory of text",
	Long: `Read every text file under dir (default: the user training location)
and save the trained model so the next typing session starts from it.

Files matched by .gitignore or .zoomtypeignore are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainAlphabet, "alphabet", "", "Alphabet to train (default: configured alphabet)")
	trainCmd.Flags().IntVarP(&trainJobs, "jobs", "j", runtime.NumCPU(), "Files decoded in parallel")
	trainCmd.Flags().StringVarP(&trainOutput, "output", "o", "", "Snapshot file (default: ~/.zoomtype/models/<alphabet>.gob)")
	trainCmd.Flags().BoolVar(&trainFresh, "fresh", false, "Start from an empty model instead of the saved snapshot")
	trainCmd.Flags().BoolVarP(&trainQuiet, "quiet", "q", false, "Only print the summary")
}

type trainOptions struct {
	root     string
	alphabet *alphabet.Alphabet
	model    *lm.PPM
	store    *lm.GOBStore
	jobs     int
	fresh    bool
	progress io.Writer
}

type trainSummary struct {
	files    int
	symbols  int
	contexts int
	path     string
}

func runTrain(cmd *cobra.Command, args []string) error {
	params, err := loadParams()
	if err != nil {
		return err
	}

	id := trainAlphabet
	if id == "" {
		id = params.GetString(config.StringAlphabetID)
	}
	info, err := alphabet.NewCatalog().Info(id)
	if err != nil {
		return err
	}
	a := alphabet.New(info)

	lang := lm.New(params.GetLong(config.LongLanguageModelID), a.NumberSymbols(),
		int(params.GetLong(config.LongLMOrder)), int(params.GetLong(config.LongUniform)))
	ppm, ok := lang.(*lm.PPM)
	if !ok {
		return fmt.Errorf("the configured language model does not learn; set language_model_id to 0 or 1")
	}

	root := params.GetString(config.StringUserLoc)
	if len(args) > 0 {
		root = args[0]
	}
	path := trainOutput
	if path == "" {
		path = config.GetModelCachePath(id)
	}

	var progress io.Writer
	if shouldShowProgress(isTerminalFD(os.Stdout), trainQuiet) {
		progress = cmd.OutOrStdout()
	}

	summary, err := trainCorpus(cmd.Context(), trainOptions{
		root:     root,
		alphabet: a,
		model:    ppm,
		store:    lm.NewGOBStore(path),
		jobs:     trainJobs,
		fresh:    trainFresh,
		progress: progress,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Trained %s on %d file(s), %d symbols, %d contexts\n",
		id, summary.files, summary.symbols, summary.contexts)
	fmt.Fprintf(cmd.OutOrStdout(), "Saved model to %s\n", summary.path)
	return nil
}

// trainCorpus decodes the corpus files concurrently, then learns them in
// path order so the result does not depend on scheduling. Text the
// snapshot already learned is skipped, so retraining an unchanged corpus
// adds nothing.
func trainCorpus(ctx context.Context, opts trainOptions) (trainSummary, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	learned := lm.Sources{}
	if !opts.fresh {
		src, err := opts.store.LoadSources(ctx, opts.model, opts.alphabet.ID())
		if err != nil {
			log.Printf("Warning: starting from an empty model: %v", err)
		} else {
			learned = src
		}
	}

	files, err := watcher.Discover(opts.root)
	if err != nil {
		return trainSummary{}, fmt.Errorf("failed to list training files: %w", err)
	}

	decoded := make([][]alphabet.Symbol, len(files))
	sizes := make([]int64, len(files))
	g, gCtx := errgroup.WithContext(ctx)
	jobs := opts.jobs
	if jobs < 1 {
		jobs = 1
	}
	g.SetLimit(jobs)
	for i, rel := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			path := filepath.Join(opts.root, rel)
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", rel, err)
			}
			sizes[i] = int64(len(data))
			if off := learned[session.SourceKey(path)]; off <= sizes[i] {
				data = data[off:]
			}
			decoded[i], _ = opts.alphabet.Symbols(string(data), false)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return trainSummary{}, err
	}

	summary := trainSummary{files: len(files), path: opts.store.Path()}
	for i, syms := range decoded {
		learned[session.SourceKey(filepath.Join(opts.root, files[i]))] = sizes[i]
		lm.Train(opts.model, syms)
		summary.symbols += len(syms)
		if opts.progress != nil {
			fmt.Fprintf(opts.progress, "[%d/%d] %s: %d symbols\n", i+1, len(files), files[i], len(syms))
		}
	}
	summary.contexts = opts.model.Contexts()

	if err := opts.store.PersistSources(ctx, opts.model, opts.alphabet.ID(), learned); err != nil {
		return trainSummary{}, fmt.Errorf("failed to save model: %w", err)
	}
	return summary, nil
}
