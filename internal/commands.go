package internal

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/parser"
	"github.com/starford/harvest/internal/storage"
)

// ListOptions selects what RunList prints.
type ListOptions struct {
	Query string
	Tags  []string
	Mode  string
}

// RunList filters the configured catalog once and prints the result as a table,
// or the map placeholder in map mode.
func RunList(w io.Writer, cfg *Config, opts ListOptions) error {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	src, err := openSource(cfg.Catalog, logger)
	if err != nil {
		return err
	}

	state := catalog.NewState()
	state.Query = opts.Query
	state.Tags = catalog.NewTagSet(opts.Tags...)
	if opts.Mode != "" {
		mode, err := catalog.ParseViewMode(opts.Mode)
		if err != nil {
			return err
		}
		state.Mode = mode
	}

	out, err := renderView(catalog.Present(src.Catalog(), state))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func renderView(v catalog.View) (string, error) {
	footer := fmt.Sprintf("%d of %d farms\n", v.Matched, v.Total)
	if v.Placeholder != nil {
		return v.Placeholder.Message + "\n" + footer, nil
	}

	rows := pterm.TableData{{"Name", "Rating", "Distance", "Tags", "Description", "Location", "Contact", "Delivers to"}}
	for _, f := range v.Farms {
		rows = append(rows, []string{
			f.Name,
			strconv.FormatFloat(f.Rating, 'f', 1, 64),
			f.DistanceLabel,
			strings.Join(f.Tags, ", "),
			f.Description,
			f.Location,
			f.Contact,
			f.DeliveryAreasLabel(),
		})
	}
	table, err := pterm.DefaultTable.WithBoxed(true).WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	return table + "\n" + footer, nil
}

// RunSeed writes the built-in farms into dir as farm files. Existing files are
// left untouched. It returns the paths written.
func RunSeed(dir string) ([]string, error) {
	store, err := storage.NewFS(dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	var written []string
	for _, f := range catalog.Seed() {
		path := catalog.FileName(f.Name)
		if _, err := store.Read(path); err == nil {
			continue
		}
		data, err := parser.Render(f)
		if err != nil {
			return written, err
		}
		if err := store.Write(path, data); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
