package common

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/procrawler/internal/config"
	"github.com/spf13/cobra"
)

// InputFlags are the run input flags shared by crawl and schedule.
type InputFlags struct {
	Profession    string
	Location      string
	ResultsWanted int
	MaxPages      int
	Dedupe        bool
	StartURLs     []string
	InputFile     string
}

// Register adds the flags to cmd.
func (f *InputFlags) Register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.Profession, "profession", "", "profession to search for, e.g. \"kitchen remodeling\"")
	flags.StringVar(&f.Location, "location", "", "location to search in, e.g. \"austin tx\"")
	flags.IntVar(&f.ResultsWanted, "results-wanted", config.DefaultResultsWanted, "maximum number of professionals to save")
	flags.IntVar(&f.MaxPages, "max-pages", config.DefaultMaxPages, "maximum listing pages per start URL")
	flags.BoolVar(&f.Dedupe, "dedupe", true, "drop professionals already saved in this run")
	flags.StringArrayVar(&f.StartURLs, "start-url", nil, "listing URL to start from (repeatable)")
	flags.StringVar(&f.InputFile, "input", "", "YAML or JSON run input file")
}

// Resolve layers config file input, the input file and explicitly set flags, in that order.
func (f *InputFlags) Resolve(cmd *cobra.Command, base config.RawInput) (config.Input, error) {
	raw := &base
	if f.InputFile != "" {
		fromFile, err := config.LoadInputFile(f.InputFile)
		if err != nil {
			return config.Input{}, err
		}
		raw = raw.Merge(fromFile)
	}

	flags := cmd.Flags()
	fromFlags := &config.RawInput{}
	if flags.Changed("profession") {
		fromFlags.Profession = f.Profession
	}
	if flags.Changed("location") {
		fromFlags.Location = f.Location
	}
	if flags.Changed("results-wanted") {
		fromFlags.ResultsWanted = f.ResultsWanted
	}
	if flags.Changed("max-pages") {
		fromFlags.MaxPages = f.MaxPages
	}
	if flags.Changed("dedupe") {
		dedupe := f.Dedupe
		fromFlags.Dedupe = &dedupe
	}
	for _, u := range f.StartURLs {
		fromFlags.StartURLs = append(fromFlags.StartURLs, u)
	}

	in, err := raw.Merge(fromFlags).Resolve()
	if err != nil {
		return config.Input{}, fmt.Errorf("resolve run input: %w", err)
	}
	return in, nil
}
