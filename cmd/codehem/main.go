// Command codehem is the thin CLI front-end of spec.md §6.3: `detect`,
// `extract` and `patch` subcommands driving the root codehem package.
//
// Grounded on demo/cmd/main.go's cobra.Command tree (root + subcommands,
// no generated docs/completions) from the teacher repository; see
// DESIGN.md.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/codehem/codehem-go"
	"github.com/codehem/codehem-go/errs"
	"github.com/codehem/codehem-go/internal/clilog"
	"github.com/codehem/codehem-go/internal/config"
	"github.com/codehem/codehem-go/manipulator"
)

// Exit codes (spec §6.3): 0 success, 2 path not found, 3 conflict,
// 4 I/O error, 5 usage error.
const (
	exitOK           = 0
	exitPathNotFound = 2
	exitConflict     = 3
	exitIOError      = 4
	exitUsageError   = 5
)

var log = clilog.FromEnv()

func main() {
	if cwd, err := os.Getwd(); err == nil {
		config.LoadDotEnv(cwd)
	}

	root := &cobra.Command{
		Use:   "codehem",
		Short: "Syntax-aware source code query and patching engine",
	}
	root.AddCommand(detectCmd(), extractCmd(), patchCmd())

	if err := root.Execute(); err != nil {
		os.Exit(exitUsageError)
	}
}

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Print the detected language code for a file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			file := args[0]
			source, err := os.ReadFile(file)
			if err != nil {
				log.Error("reading %s: %v", file, err)
				os.Exit(exitIOError)
			}
			code, err := detectWithOverride(file, source)
			if err != nil {
				log.Error("%v", err)
				os.Exit(exitUsageError)
			}
			fmt.Println(code)
		},
	}
}

func extractCmd() *cobra.Command {
	var summary, rawJSON, recursive bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the Element Tree for a file",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			target := args[0]
			files := []string{target}
			projectRoot := filepath.Dir(target)
			isDir := false
			if recursive {
				info, err := os.Stat(target)
				if err != nil {
					log.Error("%v", err)
					os.Exit(exitIOError)
				}
				isDir = info.IsDir()
				if isDir {
					projectRoot = target
				}
			}

			project, err := config.LoadProject(projectRoot)
			if err != nil {
				log.Error("loading .codehem.toml: %v", err)
				os.Exit(exitIOError)
			}

			if isDir {
				files = nil
				_ = filepath.WalkDir(target, func(p string, d os.DirEntry, err error) error {
					if err != nil {
						return nil
					}
					rel, relErr := filepath.Rel(projectRoot, p)
					if relErr != nil {
						rel = p
					}
					if ignoredByProject(project, rel) {
						if d.IsDir() && rel != "." {
							return filepath.SkipDir
						}
						return nil
					}
					if !d.IsDir() {
						files = append(files, p)
					}
					return nil
				})
			}

			for _, file := range files {
				source, err := os.ReadFile(file)
				if err != nil {
					log.Error("reading %s: %v", file, err)
					os.Exit(exitIOError)
				}
				code, ok := project.Extensions[filepath.Ext(file)]
				if !ok {
					code, err = codehem.Detect(file, source)
					if err != nil {
						log.Debug("skipping %s: %v", file, err)
						continue
					}
				}
				tree, err := codehem.Extract(source, code)
				if err != nil {
					log.Error("%s: %v", file, err)
					exitForErr(err)
				}
				if rawJSON {
					data, _ := json.MarshalIndent(tree, "", "  ")
					fmt.Println(string(data))
					continue
				}
				for _, e := range tree.All() {
					if e.Name == "" {
						continue
					}
					if summary {
						fmt.Printf("%s %s %s (%s)\n", file, e.Kind, e.Name, e.Range)
					} else {
						fmt.Printf("%s\t%s\t%s\n", e.Kind, e.Name, e.Range)
					}
				}
			}
		},
	}
	cmd.Flags().BoolVar(&summary, "summary", false, "print a one-line-per-element summary")
	cmd.Flags().BoolVar(&rawJSON, "raw-json", false, "print the full Element Tree as JSON")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "recurse into directories")
	return cmd
}

func patchCmd() *cobra.Command {
	var xpath, newCodeFile, mode string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "patch <file>",
		Short: "Apply a patch to a file at a path expression",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			file := args[0]
			if xpath == "" || newCodeFile == "" {
				log.Error("--xpath and --file are required")
				os.Exit(exitUsageError)
			}
			newCode, err := os.ReadFile(newCodeFile)
			if err != nil {
				log.Error("reading %s: %v", newCodeFile, err)
				os.Exit(exitIOError)
			}
			source, err := os.ReadFile(file)
			if err != nil {
				log.Error("reading %s: %v", file, err)
				os.Exit(exitIOError)
			}
			code, err := detectWithOverride(file, source)
			if err != nil {
				log.Error("%v", err)
				os.Exit(exitUsageError)
			}

			result, err := codehem.ApplyPatch(source, code, xpath, string(newCode), manipulator.Mode(mode), "", dryRun)
			if err != nil {
				exitForErr(err)
			}

			if dryRun {
				fmt.Print(result.Diff)
				return
			}
			if !bytes.Equal(result.Buffer, source) {
				if err := os.WriteFile(file, result.Buffer, 0o644); err != nil {
					log.Error("writing %s: %v", file, err)
					os.Exit(exitIOError)
				}
			}
			fmt.Printf("%s lines_added=%d lines_removed=%d hash=%s\n", file, result.LinesAdded, result.LinesRemoved, result.NewHash)
		},
	}
	cmd.Flags().StringVar(&xpath, "xpath", "", "path expression identifying the target element")
	cmd.Flags().StringVar(&newCodeFile, "file", "", "file containing the replacement/appended/prepended code")
	cmd.Flags().StringVar(&mode, "mode", "replace", "replace|append|prepend")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show a diff instead of writing")
	return cmd
}

// detectWithOverride prefers a .codehem.toml per-extension override
// (SPEC_FULL.md §6.3) found alongside file over codehem.Detect's own
// extension/sniffing logic.
func detectWithOverride(file string, source []byte) (string, error) {
	project, err := config.LoadProject(filepath.Dir(file))
	if err != nil {
		return "", err
	}
	if code, ok := project.Extensions[filepath.Ext(file)]; ok {
		return code, nil
	}
	return codehem.Detect(file, source)
}

// ignoredByProject reports whether rel (project-root-relative) matches one
// of project's .codehem.toml ignore-pattern globs (SPEC_FULL.md §6.3).
func ignoredByProject(project config.Project, rel string) bool {
	for _, pattern := range project.Ignore {
		if matched, err := doublestar.PathMatch(pattern, rel); err == nil && matched {
			return true
		}
	}
	return false
}

func exitForErr(err error) {
	kind, ok := errs.KindOf(err)
	if !ok {
		os.Exit(exitUsageError)
	}
	switch kind {
	case errs.KindElementNotFoundError:
		os.Exit(exitPathNotFound)
	case errs.KindWriteConflictError:
		os.Exit(exitConflict)
	case errs.KindIOError:
		os.Exit(exitIOError)
	default:
		os.Exit(exitUsageError)
	}
}
