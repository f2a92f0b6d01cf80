// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/hbollon/go-edlib"
	"github.com/mdhender/newick"
	"github.com/mdhender/newick/adapters"
	"github.com/mdhender/newick/files"
	"github.com/mdhender/newick/model"
	"github.com/mdhender/newick/pipelines/stages"
	"github.com/mdhender/newick/renderer"
	store "github.com/mdhender/newick/stores/sqlite"
	"github.com/mdhender/newick/web/handlers"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	fs  = afero.NewOsFs()
	cfg = defaultConfig()
)

func main() {
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().String("config", "", "load configuration from TOML file")
		cmd.PersistentFlags().Bool("debug", false, "log debugging information")
		cmd.PersistentFlags().String("encoding", "", "text encoding of input and output files")
		cmd.PersistentFlags().Bool("log-with-default-flags", false, "log with default flags")
		cmd.PersistentFlags().Bool("log-with-shortfile", false, "log with short file name")
		cmd.PersistentFlags().Bool("log-with-timestamp", false, "log with timestamp")
		cmd.PersistentFlags().Bool("quiet", false, "log less information")
		cmd.PersistentFlags().Bool("show-version", false, "show version")
		cmd.PersistentFlags().Bool("strip-comments", false, "discard comments while parsing")
		cmd.PersistentFlags().Bool("verbose", false, "log more information")
		return nil
	}
	var cmdRoot = &cobra.Command{
		Use:   "newick",
		Short: "Newick tree utility",
		Long:  `Parse, format, draw and store phylogenetic trees in Newick format`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logWithDefaultFlags, _ := cmd.Flags().GetBool("log-with-default-flags")
			logWithShortFileName, _ := cmd.Flags().GetBool("log-with-shortfile")
			logWithTimestamp, _ := cmd.Flags().GetBool("log-with-timestamp")
			logFlags := 0
			if logWithShortFileName {
				logFlags |= log.Lshortfile
			}
			if logWithTimestamp {
				logFlags |= log.Ltime
			}
			if logWithDefaultFlags {
				logFlags = log.LstdFlags
			}
			log.SetFlags(logFlags)

			level := slog.LevelWarn
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = slog.LevelInfo
			}
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				level = slog.LevelDebug
			}
			if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
				level = slog.LevelError
			}
			slog.SetLogLoggerLevel(level)

			if showVersion, _ := cmd.Flags().GetBool("show-version"); showVersion {
				fmt.Printf("newick: version %q\n", newick.Version().Core())
			}

			configFile, _ := cmd.Flags().GetString("config")
			loaded, err := loadConfig(fs, configFile)
			if err != nil {
				return err
			}
			cfg = loaded
			if cmd.Flags().Changed("encoding") {
				cfg.Encoding, _ = cmd.Flags().GetString("encoding")
			}
			if cmd.Flags().Changed("strip-comments") {
				cfg.StripComments, _ = cmd.Flags().GetBool("strip-comments")
			}
			return nil
		},
	}
	cmdRoot.AddCommand(cmdParse())
	cmdRoot.AddCommand(cmdFormat())
	cmdRoot.AddCommand(cmdAscii())
	cmdRoot.AddCommand(cmdFind())
	cmdRoot.AddCommand(cmdInitDB())
	cmdRoot.AddCommand(cmdCompactDB())
	cmdRoot.AddCommand(cmdIngest())
	cmdRoot.AddCommand(cmdServe())
	cmdRoot.AddCommand(cmdStats())
	cmdRoot.AddCommand(cmdVersion())
	if err := addFlags(cmdRoot); err != nil {
		log.Fatal(err)
	}

	if err := cmdRoot.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadTrees reads a Newick file, printing a diagnostic for syntax errors.
func loadTrees(path string) ([]*newick.Node, error) {
	text, err := files.ReadFile(fs, path, cfg.Encoding)
	if err != nil {
		return nil, err
	}
	options := append(cfg.parserOptions(), newick.WithLogger(slog.Default()))
	trees, err := newick.ParseBytes(path, []byte(text), options...)
	if err != nil {
		var se *newick.SyntaxError
		if errors.As(err, &se) {
			newick.PrintDiagnostic(os.Stderr, se.Diagnostic(), path, []byte(text))
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return trees, nil
}

func cmdParse() *cobra.Command {
	asJSON := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&asJSON, "json", asJSON, "print the nodes of every tree as JSON")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "parse <newick-file> [<newick-file>...]",
		Short:        "parse Newick files and summarize their trees",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				trees, err := loadTrees(path)
				if err != nil {
					return err
				}
				if asJSON {
					var rows [][]model.NodeRow
					for _, tree := range trees {
						rows = append(rows, adapters.TreeToRows(tree))
					}
					data, err := json.MarshalIndent(rows, "", "  ")
					if err != nil {
						return err
					}
					fmt.Println(string(data))
					continue
				}
				for i, tree := range trees {
					fmt.Printf("%s: tree %d: root %q: nodes %d: leaves %d: binary %v\n",
						path, i+1, tree.UnquotedName(), len(tree.Walk()), len(tree.Leaves()), tree.IsBinary())
				}
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdFormat() *cobra.Command {
	var outputFile string
	var prune, renames []string
	inverse := false
	removeComments, removeNames, removeInternalNames, removeLeafNames, removeLengths := false, false, false, false, false
	removeRedundant, preserveLengths, keepLeafName := false, false, false
	resolvePolytomies := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVarP(&outputFile, "output", "o", outputFile, "save trees to file")
		cmd.Flags().StringSliceVar(&prune, "prune", prune, "remove the named nodes")
		cmd.Flags().BoolVar(&inverse, "inverse", inverse, "keep only the nodes named by --prune")
		cmd.Flags().StringSliceVar(&renames, "rename", renames, "rename nodes, given as old=new")
		cmd.Flags().BoolVar(&removeComments, "remove-comments", removeComments, "remove all comments")
		cmd.Flags().BoolVar(&removeNames, "remove-names", removeNames, "remove all names")
		cmd.Flags().BoolVar(&removeInternalNames, "remove-internal-names", removeInternalNames, "remove names of internal nodes")
		cmd.Flags().BoolVar(&removeLeafNames, "remove-leaf-names", removeLeafNames, "remove names of leaves")
		cmd.Flags().BoolVar(&removeLengths, "remove-lengths", removeLengths, "remove all branch lengths")
		cmd.Flags().BoolVar(&removeRedundant, "remove-redundant", removeRedundant, "remove nodes with a single child")
		cmd.Flags().BoolVar(&preserveLengths, "preserve-lengths", preserveLengths, "add lengths of removed redundant nodes")
		cmd.Flags().BoolVar(&keepLeafName, "keep-leaf-name", keepLeafName, "keep the leaf name when a root collapses to a leaf")
		cmd.Flags().BoolVar(&resolvePolytomies, "resolve-polytomies", resolvePolytomies, "make the trees binary")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "format <newick-file>",
		Short:        "transform the trees in a Newick file and write them out",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := parseRenames(renames)
			if err != nil {
				return err
			}
			trees, err := loadTrees(args[0])
			if err != nil {
				return err
			}
			for i, tree := range trees {
				if len(prune) != 0 {
					tree.PruneByNames(prune, inverse)
				}
				if len(mapping) != 0 {
					if err := tree.Rename(mapping); err != nil {
						return fmt.Errorf("tree %d: %w", i+1, err)
					}
				}
				if removeComments {
					tree.StripComments()
				}
				if removeNames {
					tree.RemoveNames()
				}
				if removeInternalNames {
					tree.RemoveInternalNames()
				}
				if removeLeafNames {
					tree.RemoveLeafNames()
				}
				if removeLengths {
					tree.RemoveLengths()
				}
				if removeRedundant {
					if err := tree.RemoveRedundantNodes(preserveLengths, keepLeafName); err != nil {
						return fmt.Errorf("tree %d: %w", i+1, err)
					}
				}
				if resolvePolytomies {
					tree.ResolvePolytomies()
				}
			}
			if outputFile == "" {
				fmt.Println(newick.Dumps(trees...))
				return nil
			}
			if err := files.Save(fs, outputFile, cfg.Encoding, trees...); err != nil {
				return err
			}
			slog.Info("format", "output", outputFile, "trees", len(trees))
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

// parseRenames turns old=new pairs into a rename mapping.
func parseRenames(pairs []string) (map[string]string, error) {
	mapping := map[string]string{}
	for _, pair := range pairs {
		from, to, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("rename %q: want old=new", pair)
		}
		mapping[from] = to
	}
	return mapping, nil
}

func cmdAscii() *cobra.Command {
	var strict, showInternal bool
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&strict, "strict", false, "draw with ASCII characters only")
		cmd.Flags().BoolVar(&showInternal, "show-internal", true, "show the names of internal nodes")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "ascii <newick-file>",
		Short:        "draw the trees in a Newick file",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("strict") {
				strict = cfg.Render.Strict
			}
			if !cmd.Flags().Changed("show-internal") {
				showInternal = cfg.Render.ShowInternal
			}
			r, err := renderer.New(renderer.WithStrict(strict), renderer.WithShowInternal(showInternal))
			if err != nil {
				return err
			}
			trees, err := loadTrees(args[0])
			if err != nil {
				return err
			}
			for i, tree := range trees {
				if i != 0 {
					fmt.Println()
				}
				fmt.Println(r.Render(tree))
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdFind() *cobra.Command {
	var dbPath string
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "search the database instead of a file")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "find <name> [<newick-file>]",
		Short:        "find nodes by name",
		SilenceUsage: true,
		Args:         cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if len(args) == 1 {
				return findInDatabase(cmd.Context(), databasePath(dbPath), name)
			}
			trees, err := loadTrees(args[1])
			if err != nil {
				return err
			}
			var names []string
			found := 0
			for i, tree := range trees {
				for _, n := range tree.Walk() {
					if n.UnquotedName() == name {
						found++
						fmt.Printf("%s: tree %d: %s\n", args[1], i+1, n.Newick())
					} else if n.HasName() {
						names = append(names, n.UnquotedName())
					}
				}
			}
			if found == 0 {
				return notFound(name, names)
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func findInDatabase(ctx context.Context, path, name string) error {
	s, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: path})
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.FindNodes(ctx, name)
	if err != nil {
		return err
	}
	for _, row := range rows {
		fmt.Printf("tree %d: node %d: name %s: length %q: leaf %v\n", row.TreeID, row.Seq, row.Name, row.Length, row.IsLeaf)
	}
	if len(rows) != 0 {
		return nil
	}
	names, err := s.NodeNames(ctx)
	if err != nil {
		return err
	}
	return notFound(name, names)
}

func notFound(name string, names []string) error {
	if suggestions := suggest(name, names); len(suggestions) != 0 {
		return fmt.Errorf("%q not found: did you mean %s?", name, strings.Join(suggestions, ", "))
	}
	return fmt.Errorf("%q not found", name)
}

// suggest returns up to three names similar to name, most similar first.
func suggest(name string, names []string) []string {
	type candidate struct {
		name  string
		score float32
	}
	seen := map[string]bool{}
	var candidates []candidate
	for _, other := range names {
		if seen[other] {
			continue
		}
		seen[other] = true
		score, err := edlib.StringsSimilarity(strings.ToLower(name), strings.ToLower(other), edlib.Levenshtein)
		if err != nil || score < 0.5 {
			continue
		}
		candidates = append(candidates, candidate{name: other, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	var list []string
	for i := 0; i < len(candidates) && i < 3; i++ {
		list = append(list, candidates[i].name)
	}
	return list
}

// databasePath returns the flag value, or the configured database.
func databasePath(flag string) string {
	if flag != "" {
		return flag
	}
	if cfg.Database != "" {
		return cfg.Database
	}
	return "newick.db"
}

func cmdInitDB() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "init-db [<database-file>]",
		Short:        "create a new tree database",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := databasePath("")
			if len(args) == 1 {
				path = args[0]
			}
			if err := store.InitDatabase(path); err != nil {
				return err
			}
			slog.Info("init-db", "path", path)
			return nil
		},
	}
	return cmd
}

func cmdCompactDB() *cobra.Command {
	var cmd = &cobra.Command{
		Use:          "compact-db [<database-file>]",
		Short:        "checkpoint and vacuum a tree database",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := databasePath("")
			if len(args) == 1 {
				path = args[0]
			}
			return store.CompactDatabase(path)
		},
	}
	return cmd
}

func cmdIngest() *cobra.Command {
	var dbPath string
	workers := 0
	retryFailed := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "database file")
		cmd.Flags().IntVar(&workers, "workers", workers, "number of concurrent readers and parsers")
		cmd.Flags().BoolVar(&retryFailed, "retry-failed", retryFailed, "queue documents that failed to parse again")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "ingest <glob-pattern> [<glob-pattern>...]",
		Short:        "store Newick files in the database and parse them",
		Long:         `Store every file matching the patterns (which may use **) and parse the queued documents.`,
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers < 1 {
				workers = cfg.Workers
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: databasePath(dbPath)})
			if err != nil {
				return err
			}
			defer s.Close()

			if retryFailed {
				n, err := s.ResetFailedWork(ctx, model.WorkStageParse)
				if err != nil {
					return err
				}
				slog.Info("ingest", "requeued", n)
			}

			svc := stages.NewIngestService(s)
			svc.SetFS(fs)
			svc.SetLimit(workers)
			results, err := svc.IngestGlob(ctx, args...)
			if err != nil {
				return err
			}
			for _, result := range results {
				fmt.Println(result)
			}

			w := stages.NewWorkerService(s, "", cfg.parserOptions()...)
			processed, err := w.Drain(ctx, model.WorkStageParse, workers)
			if err != nil {
				return err
			}
			summary, err := s.GetWorkSummary(ctx)
			if err != nil {
				return err
			}
			counts := summary[model.WorkStageParse]
			fmt.Printf("parsed %d documents: %d ok: %d failed\n", processed, counts[model.WorkStatusOk], counts[model.WorkStatusFailed])
			if counts[model.WorkStatusFailed] != 0 {
				failed, err := s.GetFailedWork(ctx, model.WorkStageParse)
				if err != nil {
					return err
				}
				for _, work := range failed {
					if work.ErrorMessage != nil {
						fmt.Printf("document %d: %s\n", work.DocumentID, *work.ErrorMessage)
					}
				}
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdServe() *cobra.Command {
	var dbPath string
	addr := ":8787"
	var timeout time.Duration
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&addr, "addr", addr, "HTTP listen address")
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "database file (empty = in-memory)")
		cmd.Flags().DurationVar(&timeout, "timeout", 0, "auto-shutdown after duration (e.g., 5s, 1m)")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "serve",
		Short:        "serve the tree database over HTTP",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var s *store.SQLiteStore
			var err error
			if dbPath != "" {
				log.Printf("store: using file-based SQLite: %s", dbPath)
				s, err = store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: dbPath})
			} else {
				log.Printf("store: using in-memory SQLite")
				s, err = store.NewSQLiteStore()
			}
			if err != nil {
				return fmt.Errorf("failed to create SQLite store: %w", err)
			}
			defer s.Close()

			r, err := renderer.New(renderer.WithStrict(cfg.Render.Strict), renderer.WithShowInternal(cfg.Render.ShowInternal))
			if err != nil {
				return err
			}
			h := handlers.New(s, r, cfg.parserOptions()...)

			server := &http.Server{
				Addr:         addr,
				Handler:      h.Routes(),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if timeout > 0 {
				log.Printf("server: will auto-shutdown in %v", timeout)
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			go func() {
				log.Printf("server: listening on %s", addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Printf("server: %v", err)
					stop()
				}
			}()

			<-ctx.Done()
			log.Printf("server: shutting down gracefully")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server: shutdown error: %w", err)
			}
			log.Printf("server: stopped")
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdStats() *cobra.Command {
	var dbPath string
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().StringVar(&dbPath, "db", dbPath, "database file")
		return nil
	}
	var cmd = &cobra.Command{
		Use:          "stats",
		Short:        "show database statistics",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.NewSQLiteStoreWithConfig(store.StoreConfig{Path: databasePath(dbPath)})
			if err != nil {
				return err
			}
			defer s.Close()

			stats, err := s.TableStats(cmd.Context())
			if err != nil {
				return err
			}
			var tables []string
			for table := range stats {
				tables = append(tables, table)
			}
			sort.Strings(tables)
			for _, table := range tables {
				fmt.Printf("%-12s %8d\n", table, stats[table])
			}

			docs, err := s.GetDocumentStatus(cmd.Context(), model.WorkStageParse)
			if err != nil {
				return err
			}
			for _, doc := range docs {
				status := doc.Status
				if status == "" {
					status = "not queued"
				}
				fmt.Printf("document %d: %s: trees %d: %s\n", doc.DocumentID, doc.Name, doc.Trees, status)
				if doc.ErrorMessage != nil {
					fmt.Printf("    %s\n", *doc.ErrorMessage)
				}
			}
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}

func cmdVersion() *cobra.Command {
	showBuildInfo := false
	addFlags := func(cmd *cobra.Command) error {
		cmd.Flags().BoolVar(&showBuildInfo, "build-info", showBuildInfo, "show build information")
		return nil
	}
	var cmd = &cobra.Command{
		Use:   "version",
		Short: "display the application's version number",
		RunE: func(cmd *cobra.Command, args []string) error {
			if showBuildInfo {
				fmt.Println(newick.Version().String())
				return nil
			}
			fmt.Println(newick.Version().Core())
			return nil
		},
	}
	if err := addFlags(cmd); err != nil {
		log.Fatal(err)
	}
	return cmd
}
