package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/juanco-itmu/arkaan-taal/internal/config"
	"github.com/juanco-itmu/arkaan-taal/internal/replstore"
)

// colorEnabled gates ANSI color on NO_COLOR and isatty.IsTerminal,
// trimmed to the single true/false question the REPL prompt needs (no
// 256-color/truecolor tiering, since the prompt only ever uses basic
// fg codes).
func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func ansi(code, s string) string {
	if !colorEnabled() {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

const historyFile = "arkaan_geskiedenis.db"

func runREPL() {
	fmt.Printf("arkaan %s — tik ':hulp' vir opdragte\n", config.Version)

	store, err := replstore.Open(historyPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "kon nie geskiedenis open nie: %s\n", err)
	} else {
		defer store.Close()
	}

	sess := newSession()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(ansi("36", ">> "))
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case ":verlaat", ":q":
			return
		case ":hulp":
			printHelp()
			continue
		case ":geskiedenis":
			printHistory(store)
			continue
		}

		result, err := sess.run(line)
		if err != nil {
			fmt.Println(ansi("31", err.Error()))
			if store != nil {
				_ = store.Record(line, err.Error())
			}
			continue
		}

		out := result.Inspect()
		fmt.Println(ansi("32", out))
		if store != nil {
			_ = store.Record(line, out)
		}
	}
}

func printHelp() {
	fmt.Println("opdragte:")
	fmt.Println("  :hulp         wys hierdie boodskap")
	fmt.Println("  :geskiedenis  wys vorige invoer en uitset")
	fmt.Println("  :verlaat, :q  sluit af")
}

func printHistory(store *replstore.Store) {
	if store == nil {
		fmt.Println("geen geskiedenis beskikbaar nie")
		return
	}
	entries, err := store.Recent(50)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kon nie geskiedenis lees nie: %s\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("(leeg)")
		return
	}
	for _, e := range entries {
		fmt.Printf("[%d] %s => %s\n", e.ID, e.Input, e.Output)
	}
}

// historyPath resolves the history file relative to the working
// directory so multiple REPL sessions started from different project
// directories don't share one global log.
func historyPath() string {
	wd, err := os.Getwd()
	if err != nil {
		return historyFile
	}
	return filepath.Join(wd, historyFile)
}
