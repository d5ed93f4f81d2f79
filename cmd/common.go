package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/loomstat/internal/dataset"
	"github.com/KaramelBytes/loomstat/internal/logger"
	"github.com/KaramelBytes/loomstat/internal/output"
	"github.com/spf13/pflag"
)

// inputFlags are shared by every analysis command.
type inputFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (in *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&in.delimiter, "delimiter", "", "CSV delimiter: ',', ';', or 'tab' (default by extension)")
	fs.StringVar(&in.decimal, "decimal", "", "decimal separator: '.' or 'comma' (default auto); a trailing '%' is dropped, so 12% reads as 12")
	fs.StringVar(&in.thousands, "thousands", "", "thousands separator: ',', '.', or 'space' (default auto); only accepted between 3-digit groups")
	fs.IntVar(&in.maxRows, "max-rows", 0, "stop reading after this many rows")
	fs.StringVar(&in.sheetName, "sheet-name", "", "XLSX sheet name")
	fs.IntVar(&in.sheetIndex, "sheet-index", 0, "XLSX sheet index (1-based)")
}

func (in *inputFlags) options() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	if in.maxRows > 0 {
		opt.MaxRows = in.maxRows
	}
	switch in.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", in.delimiter)
	}
	switch strings.ToLower(strings.TrimSpace(in.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", in.decimal)
	}
	switch strings.ToLower(in.thousands) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", in.thousands)
	}
	return opt, nil
}

func (in *inputFlags) loadTable(path string) (*dataset.Table, error) {
	opt, err := in.options()
	if err != nil {
		return nil, err
	}
	t, err := dataset.Load(path, opt, in.sheetName, in.sheetIndex)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded %s: %d rows, %d columns", t.Name, t.Len(), len(t.Columns))
	if t.Truncated {
		logger.Warn("%s truncated at %d rows", t.Name, opt.MaxRows)
	}
	return t, nil
}

// loadCorpus reads documents from a directory of text files or from the id
// and text columns of a table.
func (in *inputFlags) loadCorpus(path, idCol, textCol string) ([]dataset.Document, error) {
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		docs, err := dataset.LoadDocumentsDir(path)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded %d documents from %s", len(docs), path)
		return docs, nil
	}
	t, err := in.loadTable(path)
	if err != nil {
		return nil, err
	}
	return t.Documents(idCol, textCol)
}

// startRun opens the output directory for a command.
func startRun(command, input string, params map[string]any) (*output.Run, error) {
	run, err := output.NewRun(cfg.OutDir, command, input, params)
	if err != nil {
		return nil, err
	}
	logger.Debug("run %s writing to %s", run.ID(), run.Dir)
	return run, nil
}

// finishRun writes the manifest and, when a store is configured, records the run.
func finishRun(ctx context.Context, run *output.Run) error {
	m, err := run.Close()
	if err != nil {
		return err
	}
	for _, a := range m.Artifacts {
		fmt.Printf("✓ Saved %s\n", a.Path)
	}
	if cfg.StorePath == "" {
		return nil
	}
	store, err := output.OpenStore(cfg.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Record(ctx, m); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	logger.Info("recorded run %s in %s", m.RunID, store.Path())
	return nil
}
