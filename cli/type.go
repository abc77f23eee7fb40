package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/session"
	"github.com/yoanbernabeu/zoomtype/userlog"
	"github.com/yoanbernabeu/zoomtype/watcher"
)

var (
	typeInput    string
	typeAlphabet string
	typeColours  string
	typeSpeed    int64
	typePulsing  bool
	typeWatch    bool
	typeNoSave   bool
)

var typeCmd = &cobra.Command{
	Use:   "type",
	Short: "Write text by steering through the zooming tree",
	Long: `Open the typing screen.

With --input mouse (default) the pointer steers: right of the crosshair
zooms in, left of it backs off. Click or press space to start and stop.

With --input switches two keys are enough: space flips between the upper
and lower target, b holds back-off until pressed again.

Text you write is appended to the training file of the alphabet so the
model keeps learning. With --watch, edits to the training directory are
picked up while typing.`,
	Args: cobra.NoArgs,
	RunE: runType,
}

func init() {
	typeCmd.Flags().StringVarP(&typeInput, "input", "i", inputMouse, "Input mode: mouse or switches")
	typeCmd.Flags().StringVar(&typeAlphabet, "alphabet", "", "Alphabet for this run")
	typeCmd.Flags().StringVar(&typeColours, "colours", "", "Colour scheme for this run")
	typeCmd.Flags().Int64Var(&typeSpeed, "speed", 0, "Speed in hundredths of a nat per second for this run")
	typeCmd.Flags().BoolVar(&typePulsing, "pulsing", false, "Ease switch targets in from the centre for this run")
	typeCmd.Flags().BoolVarP(&typeWatch, "watch", "w", false, "Retrain when files in the training directory change")
	typeCmd.Flags().BoolVar(&typeNoSave, "no-save", false, "Do not save setting changes made while typing")
}

func runType(cmd *cobra.Command, args []string) error {
	input, ok := normalizeInputMode(typeInput)
	if !ok {
		return fmt.Errorf("invalid --input %q (use mouse or switches)", typeInput)
	}
	if !isInteractiveTerminal() {
		return fmt.Errorf("type needs an interactive terminal")
	}

	params, err := loadParams()
	if err != nil {
		return err
	}
	undoFlags := applyTypeFlags(cmd, params)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sink := session.NewFileSink(params)
	sess := newTypeSession(params, sink)

	model := newTypeUIModel(sess, params, input, time.Now())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())

	go func() {
		select {
		case <-sigCh:
			p.Quit()
		case <-ctx.Done():
		}
	}()

	restoreLogs := captureTypeUILogs(p.Send)

	watchErrCh := make(chan error, 1)
	if typeWatch {
		root := params.GetString(config.StringUserLoc)
		w := watcher.New(root, sess, watcher.WithSkip(func(path string) bool {
			return filepath.Clean(path) == filepath.Clean(sink.Path())
		}))
		go func() {
			watchErrCh <- w.Run(ctx, func() {
				log.Printf("Watching %s for training text", root)
			})
		}()
	} else {
		watchErrCh <- nil
	}

	_, runErr := p.Run()
	cancel()
	watchErr := <-watchErrCh
	restoreLogs()

	closeErr := sess.Close()
	undoFlags()
	if !typeNoSave && params.Path() != "" {
		if err := params.Save(); err != nil {
			log.Printf("Warning: failed to save settings: %v", err)
		}
	}

	if runErr != nil {
		return runErr
	}
	if watchErr != nil && !errors.Is(watchErr, context.Canceled) {
		return watchErr
	}
	return closeErr
}

// typeOverride is a setting changed by a flag, kept so the saved value
// can be put back.
type typeOverride struct {
	param   config.Param
	saved   string
	applied string
}

// applyTypeFlags overrides settings given on the command line before the
// session is realized. The returned func puts back the saved value of
// every override still in force, leaving settings changed while typing.
func applyTypeFlags(cmd *cobra.Command, params *config.Store) func() {
	var overrides []typeOverride
	set := func(p config.Param, apply func()) {
		saved := params.Format(p)
		apply()
		overrides = append(overrides, typeOverride{param: p, saved: saved, applied: params.Format(p)})
	}

	if typeAlphabet != "" {
		set(config.StringAlphabetID, func() { params.SetString(config.StringAlphabetID, typeAlphabet) })
	}
	if typeColours != "" {
		set(config.StringColourID, func() { params.SetString(config.StringColourID, typeColours) })
	}
	if typeSpeed > 0 {
		set(config.LongMaxBitrate, func() {
			params.SetLong(config.LongMaxBitrate, max(minSpeed, min(maxSpeed, typeSpeed)))
		})
	}
	if cmd.Flags().Changed("pulsing") {
		set(config.BoolButtonPulsing, func() { params.SetBool(config.BoolButtonPulsing, typePulsing) })
		set(config.BoolButtonSteady, func() { params.SetBool(config.BoolButtonSteady, !typePulsing) })
	}

	return func() {
		for _, o := range overrides {
			if params.Format(o.param) != o.applied {
				continue
			}
			if err := params.SetFromString(o.param.Key(), o.saved); err != nil {
				log.Printf("Warning: failed to restore %s: %v", o.param.Key(), err)
			}
		}
	}
}

// newTypeSession wires the terminal collaborators into a session. It
// logs through the standard logger so the UI capture sees it.
func newTypeSession(params *config.Store, sink session.TrainingSink) *session.Session {
	return session.New(session.Options{
		Params:  params,
		Catalog: alphabet.NewCatalog(),
		Logger:  log.Default(),
		Sink:    sink,
		NewView: newViewFactory(params),
		NewActivity: func(level int64, a *alphabet.Alphabet) (session.ActivityLogger, error) {
			return userlog.New(userlog.DefaultPath(time.Now()), level, a), nil
		},
		SnapshotPath: config.GetModelCachePath,
	})
}
