package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/KaramelBytes/paperstack-cli/internal/archive"
	"github.com/KaramelBytes/paperstack-cli/internal/pipeline"
	"github.com/KaramelBytes/paperstack-cli/internal/runner"
	"github.com/KaramelBytes/paperstack-cli/internal/stack"
	"github.com/KaramelBytes/paperstack-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	genTechnology string
	genName       string
	genOutput     string
	genJSON       bool
	genRun        bool
)

// cliExtensions are accepted for local files in addition to uploads.
var cliExtensions = []string{"pdf", "txt", "md", "markdown"}

type generateOutput struct {
	GenerationID string   `json:"generation_id"`
	Technology   string   `json:"technology"`
	Fallback     bool     `json:"technology_fallback,omitempty"`
	ProjectName  string   `json:"project_name"`
	Keywords     []string `json:"keywords"`
	Terms        []string `json:"technical_terms"`
	Features     []string `json:"features"`
	Files        []string `json:"project_structure"`
	ZipPath      string   `json:"zip_path"`
	ZipSize      int64    `json:"zip_size"`
	PublishedURL string   `json:"published_url,omitempty"`
}

var generateCmd = &cobra.Command{
	Use:   "generate <paper>",
	Short: "Generate a project archive from a research paper",
	Example: `  paperstack generate paper.pdf -t flask
  paperstack generate notes.md -t "spring boot" -n lab-app -o ./out --json
  paperstack generate paper.pdf -t lamp --run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read paper: %w", err)
		}
		if err := utils.EnsureDir(genOutput); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := buildServices(ctx, c, serviceOptions{OutputDir: genOutput, AllowedExtensions: cliExtensions})
		if err != nil {
			return err
		}
		defer svc.Close()

		out := svc.pipe.Run(ctx, pipeline.Request{
			Filename:    filepath.Base(args[0]),
			Data:        data,
			Technology:  technologyLabel(genTechnology),
			ProjectName: genName,
		})
		if !out.OK() {
			return out.Err
		}
		res := out.Result

		w := cmd.OutOrStdout()
		if genJSON {
			b, err := utils.PrettyJSON(generateOutput{
				GenerationID: res.GenerationID,
				Technology:   string(res.Technology),
				Fallback:     res.Fallback,
				ProjectName:  res.ProjectName,
				Keywords:     nonNil(res.Concepts.Keywords),
				Terms:        nonNil(res.Concepts.TechnicalTerms),
				Features:     nonNil(res.Concepts.Features),
				Files:        res.Project.Paths(),
				ZipPath:      res.Archive.Path,
				ZipSize:      res.Archive.Size,
				PublishedURL: res.PublishedURL,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
		} else {
			if res.Fallback {
				fmt.Fprintf(w, "⚠ Unknown technology %q, using %s\n", genTechnology, res.Technology)
			}
			fmt.Fprint(w, res.Concepts.Markdown())
			fmt.Fprintf(w, "✓ Generated %s project '%s' (%d files)\n", res.Technology, res.ProjectName, len(res.Project.Paths()))
			fmt.Fprintf(w, "✓ ZIP file: %s (%s)\n", res.Archive.Path, utils.HumanSize(res.Archive.Size))
			if res.PublishedURL != "" {
				fmt.Fprintf(w, "✓ Published to %s\n", res.PublishedURL)
			}
		}

		if !genRun {
			return nil
		}
		return runArchive(ctx, cmd, res, time.Duration(c.RunTimeoutSec)*time.Second)
	},
}

// runArchive extracts the archive next to it and supervises the stack's
// install and start commands until they exit or ctx is canceled.
func runArchive(ctx context.Context, cmd *cobra.Command, res *pipeline.Result, timeout time.Duration) error {
	st, ok := stack.Get(res.Technology)
	if !ok {
		return fmt.Errorf("unknown technology: %s", res.Technology)
	}
	dir := strings.TrimSuffix(res.Archive.Path, filepath.Ext(res.Archive.Path))
	if err := archive.Extract(res.Archive.Path, dir); err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Running %s in %s\n", st.ID, dir)

	sup := runner.NewSupervisor(timeout, nil)
	task := sup.Start(ctx, dir, runner.RecipeFor(st))
	<-task.Done()
	fmt.Fprint(w, task.Output())
	if err := task.Err(); err != nil {
		if errors.Is(err, runner.ErrCanceled) {
			fmt.Fprintln(w, "⚠ Run canceled")
			return nil
		}
		return fmt.Errorf("run %s: %w", st.ID, err)
	}
	fmt.Fprintln(w, "✓ Run finished")
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genTechnology, "technology", "t", "", "technology stack (name, alias or menu number)")
	generateCmd.Flags().StringVarP(&genName, "name", "n", "", "project name (default from config)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", ".", "directory for the ZIP archive")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "print the result as JSON")
	generateCmd.Flags().BoolVar(&genRun, "run", false, "extract the archive and run the stack's install and start commands")
}
