package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/zedseven/stegtext"
)

// Program entry point

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("steg", pflag.ContinueOnError)
	digToggle := flags.Bool("dig", false, "Extract a hidden payload instead of hiding one")
	imgPath := flags.StringP("img", "i", "", "The filepath to the image on disk")
	text := flags.StringP("text", "t", "", "The text to hide")
	filePath := flags.StringP("file", "f", "", "The filepath to a file whose contents to hide instead of --text")
	outPath := flags.StringP("out", "o", "", "Where to write the steg image (hide) or the recovered payload (dig; stdout if empty)")
	verbose := flags.CountP("verbose", "v", "Increase output detail (repeatable)")
	quiet := flags.BoolP("quiet", "q", false, "Suppress all progress output")
	showVersion := flags.Bool("version", false, "Print the version and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Printf("steg %s\n", stegtext.Version())
		return 0
	}

	level := min(stegtext.OutputSteps+stegtext.OutputLevel(*verbose), stegtext.OutputDebug)
	if *quiet {
		level = stegtext.OutputNone
	}
	logger := stegtext.NewLogger(os.Stderr, level)

	if len(*imgPath) <= 0 {
		flags.PrintDefaults()
		return 2
	}

	if *digToggle {
		payload, err := stegtext.Dig(stegtext.DigConfig{ImagePath: *imgPath, OutPath: *outPath}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		if len(*outPath) <= 0 {
			os.Stdout.Write(payload)
		}
		return 0
	}

	config := &stegtext.HideConfig{ImagePath: *imgPath, Text: *text, FilePath: *filePath, OutPath: *outPath}
	if err := stegtext.Hide(config, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
