package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/gnolang/weave/internal/lexer"
	"github.com/gnolang/weave/internal/token"
)

const tokenTextWidth = 24

var tokensLanguage string

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the tokens and trivia of a file, for writing scripts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		an, err := analyzerFor(path, tokensLanguage)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tokens, err := an.Tokenize(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		printTokens(cmd.OutOrStdout(), tokens)
		return nil
	},
}

func init() {
	tokensCmd.Flags().StringVarP(&tokensLanguage, "language", "l", "", "Analyzer to use instead of the one chosen by extension")
}

func analyzerFor(path, language string) (lexer.Analyzer, error) {
	if language != "" {
		return lexer.Lookup(language)
	}
	return lexer.ForFile(path)
}

var kindStyle = color.New(color.FgCyan)

// printTokens writes one line per token: ordinal, kind, quoted text and the
// trivia around it.
func printTokens(w io.Writer, tokens []token.Token) {
	for i, tok := range tokens {
		text := runewidth.Truncate(strconv.Quote(tok.Text), tokenTextWidth, "…")
		fmt.Fprintf(w, "%4d %s %s", i, kindStyle.Sprintf("%-8s", tok.Type), runewidth.FillRight(text, tokenTextWidth))
		if s := formatTrivia(tok.Leading); s != "" {
			fmt.Fprintf(w, " leading=%s", s)
		}
		if s := formatTrivia(tok.Trailing); s != "" {
			fmt.Fprintf(w, " trailing=%s", s)
		}
		fmt.Fprintln(w)
	}
}

func formatTrivia(list []token.Trivia) string {
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, 0, len(list))
	for _, tr := range list {
		parts = append(parts, fmt.Sprintf("%s(%q)", tr.Kind, tr.Content))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
