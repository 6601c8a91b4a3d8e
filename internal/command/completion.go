// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/kmsctl/kmsctl/internal/meta"
)

const bashCompletionScript = `# bash completion for kmsctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_kmsctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "kq pq pr completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"

    case "$cmd" in
        kq)
      local opts="$common --schema --region -r --profile -p --parallelism"
            ;;
        pq)
      local opts="$common --schema --region -r --profile -p --parallelism"
            ;;
        pr)
      local opts="$common --schema --region -r --profile -p --parallelism --dry-run --dedupe --timeout"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

  COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
  return 0
}

complete -F _kmsctl kmsctl
`

const zshCompletionScript = `#compdef kmsctl

_kmsctl() {
  local -a cmds
  cmds=(
    'kq:key query'
    'pq:policy query'
    'pr:policy reconcile'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'kmsctl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    kq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--parallelism[bound on concurrent lookups]':parallelism \
        '(-r --region)'{-r,--region}'[AWS region]' \
        '(-p --profile)'{-p,--profile}'[AWS profile]'
      ;;
    pq)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--parallelism[bound on concurrent lookups]':parallelism \
        '(-r --region)'{-r,--region}'[AWS region]' \
        '(-p --profile)'{-p,--profile}'[AWS profile]'
      ;;
    pr)
      _arguments -C \
        $common \
        '--schema[dump schema]' \
        '--dry-run[report without writing]' \
        '--dedupe[skip already administered keys]' \
        '--parallelism[bound on concurrent updates]':parallelism \
        '--timeout[overall deadline]':timeout \
        '(-r --region)'{-r,--region}'[AWS region]' \
        '(-p --profile)'{-p,--profile}'[AWS profile]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys
# is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _kmsctl kmsctl kmsctl
`

func completionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		switch {
		case strings.HasSuffix(sh, "zsh"):
			fmt.Fprint(os.Stdout, zshCompletionScript)
		case strings.HasSuffix(sh, "bash"):
			fmt.Fprint(os.Stdout, bashCompletionScript)
		default:
			fmt.Fprintln(os.Stderr, "usage: kmsctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func completionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "kmsctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: completionCommandAction,
	}
}
