package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"legalassist-backend/app"
	"legalassist-backend/export"
	"legalassist-backend/legifrance"
	"legalassist-backend/models"
	"legalassist-backend/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const fallbackExcerptRunes = 250

var (
	askQuestion string
	askCode     string
	askPDFDir   string

	askCmd = &cobra.Command{
		Use:   "ask",
		Short: "Ask a question, interactively or once with --question",
		RunE:  runAsk,
	}
)

func init() {
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer once, without prompting")
	askCmd.Flags().StringVarP(&askCode, "code", "c", "", "code number or label to search (default: all codes)")
	askCmd.Flags().StringVar(&askPDFDir, "pdf-dir", ".", "directory where PDF analyses are written")
}

// questionAsker is the part of the assistant the session needs
type questionAsker interface {
	Ask(ctx context.Context, question string, code *string) (*models.ChatResponse, error)
}

// askSession runs questions against the assistant, falling back to a plain search when it is unavailable
type askSession struct {
	assistant questionAsker
	searcher  service.ArticleSearcher
	pdfDir    string
	out       io.Writer
	now       func() time.Time
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s := &askSession{pdfDir: askPDFDir, out: cmd.OutOrStdout(), now: time.Now}

	components, err := app.Build(ctx, cfg, logger, nil)
	if err != nil {
		logger.Warn("assistant unavailable, using plain search", zap.Error(err))
		fmt.Fprintf(s.out, "⚠ Assistant indisponible (%v). Recherche simple uniquement.\n", err)
		search, serr := app.NewSearchClient(cfg, logger)
		if serr != nil {
			return fmt.Errorf("failed to create search client: %w", serr)
		}
		s.searcher = search
	} else {
		defer components.Close()
		s.assistant = components.Assistant
		s.searcher = components.Search
	}

	if askQuestion != "" {
		var code *string
		if askCode != "" {
			c, ok := legifrance.LookupCode(askCode)
			if !ok {
				return fmt.Errorf("unknown code %q", askCode)
			}
			code = &c.Label
		}
		s.answer(ctx, askQuestion, code, nil)
		return nil
	}
	return s.interactive(ctx, cmd.InOrStdin())
}

// interactive reads questions until EOF or an exit word
func (s *askSession) interactive(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(s.out, "=== Assistant juridique Légifrance ===")

	for {
		fmt.Fprint(s.out, "\nVotre question (ou 'quit' pour quitter) : ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(s.out, "Au revoir.")
			return nil
		}

		fmt.Fprintln(s.out, "\nCodes disponibles :")
		for _, c := range legifrance.Codes() {
			fmt.Fprintf(s.out, "  %s. %s\n", c.ID, c.Label)
		}
		fmt.Fprint(s.out, "Choisissez un code (numéro) ou 'tous' : ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		code := chooseCode(scanner.Text(), s.out)

		s.answer(ctx, question, code, scanner)
	}
}

// chooseCode maps the user's choice to a code label. "tous", blank and unknown choices search every code.
func chooseCode(choice string, out io.Writer) *string {
	choice = strings.TrimSpace(choice)
	if choice == "" || strings.EqualFold(choice, "tous") {
		return nil
	}
	c, ok := legifrance.LookupCode(choice)
	if !ok {
		fmt.Fprintf(out, "Choix %q inconnu, recherche dans tous les codes.\n", choice)
		return nil
	}
	return &c.Label
}

// answer runs one question. A non-nil scanner enables the PDF prompt.
func (s *askSession) answer(ctx context.Context, question string, code *string, scanner *bufio.Scanner) {
	codeFilter := ""
	if code != nil {
		codeFilter = *code
	}

	if s.assistant == nil {
		s.fallback(ctx, question, codeFilter)
		return
	}

	fmt.Fprintln(s.out, "\nAnalyse en cours...")
	resp, err := s.assistant.Ask(ctx, question, code)
	if err != nil {
		fmt.Fprintf(s.out, "Erreur : %v\n", err)
		s.fallback(ctx, question, codeFilter)
		return
	}
	if resp.Analysis.Metadata.CriticalError != "" {
		fmt.Fprintf(s.out, "Erreur du pipeline : %s\n", resp.Analysis.Metadata.CriticalError)
		s.fallback(ctx, question, codeFilter)
		return
	}

	fmt.Fprintln(s.out, service.FormatAnalysisForDisplay(resp.Analysis))

	if scanner == nil {
		return
	}
	fmt.Fprint(s.out, "Exporter l'analyse en PDF ? (o/n) : ")
	if !scanner.Scan() {
		return
	}
	if reply := strings.ToLower(strings.TrimSpace(scanner.Text())); reply != "o" && reply != "oui" {
		return
	}
	path, err := s.writePDF(resp)
	if err != nil {
		fmt.Fprintf(s.out, "Échec de l'export PDF : %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "PDF enregistré : %s\n", path)
}

func (s *askSession) writePDF(resp *models.ChatResponse) (string, error) {
	pdf, err := export.BuildAnalysisPDF(resp.Question, resp.Analysis)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.pdfDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.pdfDir, "analyse_"+s.now().Format("20060102_150405")+".pdf")
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// fallback prints the articles found by a plain keyword search
func (s *askSession) fallback(ctx context.Context, question, codeFilter string) {
	fmt.Fprintln(s.out, "\nRecherche simple par mots-clés...")
	articles, err := service.NaiveSearch(ctx, s.searcher, question, codeFilter)
	if err != nil {
		fmt.Fprintf(s.out, "Recherche impossible : %v\n", err)
		return
	}
	if len(articles) == 0 {
		fmt.Fprintln(s.out, "Aucun article trouvé.")
		return
	}
	for i, a := range articles {
		fmt.Fprintf(s.out, "\n%d. %s (%s)\n", i+1, a.Title, a.CodeName)
		fmt.Fprintln(s.out, excerpt(a.Content, fallbackExcerptRunes))
	}
}

func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
