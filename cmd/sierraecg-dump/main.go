// Command sierraecg-dump prints a summary of a Sierra ECG / Philips ECG
// file, or the raw samples of one lead.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/sierraecg/sierraecg"
)

var (
	flagIncludeRepbeats = pflag.BoolP("include-repbeats", "r", false, "Decode representative-beat waveforms.")
	flagLead            = pflag.StringP("lead", "l", "", "Dump raw samples for the named lead instead of printing a summary.")
	flagHelp            = pflag.BoolP("help", "h", false, "Display help text.")
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: sierraecg-dump [OPTION]... FILE...")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Flags:")
	pflag.PrintDefaults()
}

func main() {
	pflag.Usage = usage
	pflag.Parse()
	if *flagHelp || pflag.NArg() < 1 {
		pflag.Usage()
		os.Exit(1)
	}
	for _, path := range pflag.Args() {
		if err := dump(path); err != nil {
			log.Fatalln(err)
		}
	}
}

func dump(path string) error {
	var opts []sierraecg.Option
	if *flagIncludeRepbeats {
		opts = append(opts, sierraecg.WithRepbeats())
	}

	f, err := sierraecg.ReadFile(path, opts...)
	if err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}

	if *flagLead != "" {
		return dumpLead(f, *flagLead)
	}
	return summarize(path, f)
}

func summarize(path string, f *sierraecg.EcgFile) error {
	fmt.Printf("%s: %s %s, %d leads\n", path, f.DocType, f.DocVer, len(f.Leads))
	for _, lead := range f.Leads {
		fmt.Printf("  %-6s %5d samples @ %d Hz\n", lead.Label, len(lead.Samples), lead.SamplingFreq)
	}
	if len(f.Repbeats) > 0 {
		fmt.Printf("  %d representative beats\n", len(f.Repbeats))
	}
	return nil
}

func dumpLead(f *sierraecg.EcgFile, label string) error {
	for _, lead := range f.Leads {
		if lead.Label == label {
			for _, s := range lead.Samples {
				fmt.Println(s)
			}
			return nil
		}
	}
	return errors.Errorf("lead %q not found", label)
}
