// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kmsctl/kmsctl/internal/command"
	"github.com/kmsctl/kmsctl/internal/config"
	"github.com/kmsctl/kmsctl/internal/log"
	"github.com/kmsctl/kmsctl/internal/version"
)

var ctx = context.Background()

func main() {
	os.Exit(realMain())
}

// handleVersion checks for --version/-v and returns whether it was handled.
func handleVersion(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-v" {
			fmt.Println(version.Version)
			return true
		}
	}
	return false
}

// handleNakedCommand appends --help if no command is provided.
func handleNakedCommand(args []string) []string {
	if len(args) <= 1 {
		return append(args, "--help")
	}
	return args
}

// processCommandArgs handles command-specific argument processing.
func processCommandArgs(args []string) []string {
	switch {
	case len(args) > 1 && args[1] == "completion":
		// Short-circuit completion: pass args directly.
		return args
	default:
		// Expand @set first, then let explicit flags override the expansion.
		args = processSetOnly(args)
		log.Debugf("args after set processing: args=%v", args)

		args = deduplicateFlags(args)
		log.Debugf("args after dedupe: args=%v", args)

		return args
	}
}

// initAndRunApp initializes the app and runs it, returning the exit code.
func initAndRunApp(args []string) int {
	app, err := command.InitApp(ctx, args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app init err: err=%v", err)
		return 1
	}

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		log.Debugf("app run err: err=%v", err)

		// Commands signal partial failure through an ExitCoder.
		var coder cli.ExitCoder
		if errors.As(err, &coder) {
			return coder.ExitCode()
		}
		return 2
	}

	return 0
}

func realMain() int {
	log.InitLogger()

	args := os.Args
	log.Debugf("args captured: args=%v", args)

	if handleVersion(args) {
		return 0
	}

	args = handleNakedCommand(args)

	// If --help appears anywhere, skip command processing and let the CLI handle it.
	helpFound := false
	for _, a := range args {
		if a == "--help" || a == "-h" {
			helpFound = true
			break
		}
	}

	if !helpFound {
		args = processCommandArgs(args)
	}

	return initAndRunApp(args)
}

// valueFlags names the flags that consume a separate value token. Boolean
// flags stay out of this set so a positional following one (a KeyId, say) is
// never absorbed as a flag value and lost in deduplication.
var valueFlags = map[string]bool{
	"attrs": true, "a": true,
	"filter": true, "f": true,
	"output": true, "o": true,
	"sort": true, "s": true,
	"region": true, "r": true,
	"profile": true, "p": true,
	"parallelism": true,
	"timeout":     true,
}

// deduplicateFlags keeps the last occurrence of each flag so @set-expanded
// defaults lose to flags the user typed. Positional arguments are preserved
// in place.
func deduplicateFlags(args []string) []string {
	if len(args) <= 2 {
		return args
	}

	head := args[:2]
	rest := args[2:]

	type occurrence struct {
		flag  string   // canonical flag token, "" for positionals
		parts []string // the tokens making up this occurrence
	}

	var occurrences []occurrence
	for i := 0; i < len(rest); i++ {
		a := rest[i]
		if !strings.HasPrefix(a, "-") {
			occurrences = append(occurrences, occurrence{parts: []string{a}})
			continue
		}

		name := a
		parts := []string{a}
		if idx := strings.Index(a, "="); idx != -1 {
			name = a[:idx]
		} else if valueFlags[strings.TrimLeft(a, "-")] &&
			i+1 < len(rest) && !strings.HasPrefix(rest[i+1], "-") {
			// Treat the following token as this flag's value.
			parts = append(parts, rest[i+1])
			i++
		}
		occurrences = append(occurrences, occurrence{flag: name, parts: parts})
	}

	last := make(map[string]int)
	for i, o := range occurrences {
		if o.flag != "" {
			last[o.flag] = i
		}
	}

	result := append([]string{}, head...)
	for i, o := range occurrences {
		if o.flag != "" && last[o.flag] != i {
			continue
		}
		result = append(result, o.parts...)
	}
	return result
}

// processSetOnly handles the @set logic for all commands, expanding set arguments at the @set position.
func processSetOnly(args []string) []string {
	// Look for an explicit @set argument starting from index 2.
	idx := 2
	set := "defaults"
	removeIdx := -1
	for i, a := range args[idx:] {
		if strings.HasPrefix(a, "@") {
			set = a[1:]
			removeIdx = idx + i
			break
		}
	}
	if removeIdx != -1 {
		// Remove the @set argument.
		args = append(args[:removeIdx], args[removeIdx+1:]...)
		// Expand the set arguments at the removeIdx position.
		setArgs, _ := config.GetStringSlice(args[1] + "." + set)
		for _, arg := range setArgs {
			parts := strings.Fields(arg)
			args = append(args[:removeIdx], append(parts, args[removeIdx:]...)...)
			removeIdx += len(parts)
		}
	}
	return args
}
