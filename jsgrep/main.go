package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/faustbrian/jsgrep/cache"
	"github.com/faustbrian/jsgrep/regex"
)

var matchColors = []*color.Color{
	color.New(color.FgRed),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
	color.New(color.FgCyan),
}

var cli struct {
	Pattern string   `arg:"" name:"pattern" help:"Pattern in /pattern/flags notation (or a bare pattern)." type:"string"`
	Paths   []string `arg:"" optional:"" name:"path" help:"Paths to search" type:"path"`
}

func main() {
	kong.Parse(&cli,
		kong.Name("jsgrep"),
		kong.Description("Recursively searches the current directory for lines matching an ECMA-262 regex pattern."),
		kong.UsageOnError(),
	)

	source, flagStr := splitPattern(cli.Pattern)
	flags, err := regex.ParseFlags(flagStr)
	if err != nil {
		log.Fatalf("invalid flags %q: %v", flagStr, err)
	}
	re, err := cache.Compile(source, flags)
	if err != nil {
		log.Fatalf("failed to build regex: %v", err)
	}

	if len(cli.Paths) == 0 {
		cli.Paths = []string{"."}
	}

	for _, path := range cli.Paths {
		info, err := os.Lstat(path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}

		if info.IsDir() {
			err = recursivelySearchDir(path, re)
		} else {
			err = searchFile(path, re)
		}

		if err != nil {
			log.Fatalf("%v", err)
		}
	}
}

// splitPattern strips the /pattern/flags delimiters when present; the
// engine itself only accepts pre-split source and flags.
func splitPattern(arg string) (source, flags string) {
	if len(arg) < 2 || arg[0] != '/' {
		return arg, ""
	}
	end := strings.LastIndexByte(arg[1:], '/')
	if end < 0 {
		return arg, ""
	}
	end++
	return arg[1:end], arg[end+1:]
}

func recursivelySearchDir(path string, re *regex.Pattern) error {
	err := filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
		if d.IsDir() {
			return nil
		}

		// resolve symlinks
		var info os.FileInfo
		for {
			info, err = os.Stat(path)
			// symlinks may be broken, in that case, just ignore them
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if info.Mode()&fs.ModeSymlink != fs.ModeSymlink {
				break
			}

			path, err = os.Readlink(path)
			if err != nil {
				return err
			}
		}

		// symlink may resolve to a directory, in which case we just ignore it
		if info.IsDir() {
			return nil
		}

		return searchFile(path, re)
	})

	return err
}

func searchFile(path string, re *regex.Pattern) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	printFileHeader := false
	for i, line := range strings.Split(string(content), "\n") {
		matches := re.MatchAll(line)
		if len(matches) == 0 {
			continue
		}

		if !printFileHeader {
			printFileHeader = true
			fmt.Println(path, ":")
		}

		out := strings.Builder{}
		lastMatchEnd := 0
		for _, m := range matches {
			out.WriteString(line[lastMatchEnd:m.Index])
			out.WriteString(formatMatch(m))
			lastMatchEnd = m.Index + len(m.Match)
		}
		out.WriteString(line[lastMatchEnd:])
		fmt.Printf("%d:%s\n", i+1, out.String())
	}

	if printFileHeader {
		fmt.Println()
	}

	return nil
}

// formatMatch colorizes the whole match, giving each participating
// capture group its own color when there are few enough of them.
func formatMatch(m regex.MatchResult) string {
	if len(m.Captures) == 0 || len(m.Captures) >= len(matchColors) {
		return matchColors[0].Sprint(m.Match)
	}

	out := strings.Builder{}
	off := m.Index
	end := m.Index + len(m.Match)
	for i, c := range m.Captures {
		// lookaround captures can lie outside the matched span
		if !c.Defined() || c.Start < off || c.End > end {
			continue
		}
		matchColors[0].Fprint(&out, m.Input[off:c.Start])
		matchColors[i+1].Fprint(&out, c.Value)
		off = c.End
	}
	matchColors[0].Fprint(&out, m.Input[off:end])
	return out.String()
}
