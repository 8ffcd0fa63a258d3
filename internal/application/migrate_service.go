package application

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abdidvp/fixie2nunit/internal/domain"
	"github.com/abdidvp/fixie2nunit/internal/domain/migrate"
	"github.com/abdidvp/fixie2nunit/internal/domain/syntax"
)

// MigrateService orchestrates a migration run:
// config → workspace → pass 1 (classify, import, write) → reload → pass 2 (format) → cache, history.
type MigrateService struct {
	loader       domain.WorkspaceLoader
	parser       domain.SourceParser
	store        domain.FileStore
	formatter    domain.Formatter
	configLoader domain.ConfigLoader
	cache        domain.CacheStore
	history      domain.RunHistory
	git          domain.GitInfo
	differ       domain.Differ
	logger       *slog.Logger
	workers      int
}

// NewMigrateService wires the service. cache, history, git and differ may be
// nil, which turns the matching feature off.
func NewMigrateService(
	loader domain.WorkspaceLoader,
	parser domain.SourceParser,
	store domain.FileStore,
	formatter domain.Formatter,
	configLoader domain.ConfigLoader,
	cache domain.CacheStore,
	history domain.RunHistory,
	git domain.GitInfo,
	differ domain.Differ,
	logger *slog.Logger,
) *MigrateService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &MigrateService{
		loader:       loader,
		parser:       parser,
		store:        store,
		formatter:    formatter,
		configLoader: configLoader,
		cache:        cache,
		history:      history,
		git:          git,
		differ:       differ,
		logger:       logger,
		workers:      runtime.GOMAXPROCS(0),
	}
}

// document tracks one source file through both passes.
type document struct {
	abs      string
	result   domain.FileResult
	original []byte
	final    []byte
	// done marks cached and failed files, which later stages leave alone.
	done bool
}

// Migrate runs both passes over the workspace named by descriptor. Only
// configuration, guard and workspace errors are returned; a file that fails is
// recorded in the report and the run continues.
func (s *MigrateService) Migrate(ctx context.Context, descriptor string, opts domain.MigrateOptions) (*domain.MigrationReport, error) {
	path, err := s.loader.Resolve(descriptor)
	if err != nil {
		return nil, err
	}
	root := filepath.Dir(path)

	// 0. Load config
	cfg, err := s.configLoader.Load(root)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.RequireClean {
		if err := s.checkClean(root); err != nil {
			return nil, err
		}
	}

	// 1. Load workspace
	ws, err := s.loader.Load(ctx, path, cfg.ExcludePaths...)
	if err != nil {
		return nil, fmt.Errorf("loading workspace: %w", err)
	}
	for _, d := range ws.Diagnostics {
		s.logger.Warn("workspace diagnostic", "path", d.Path, "message", d.Message)
	}

	projects := selectProjects(ws, cfg)
	if len(projects) == 0 {
		s.logger.Warn("no projects to migrate", "descriptor", path, "test_project_segment", cfg.TestProjectSegment)
	}

	conv := cfg.Conventions()
	fingerprint := cfg.Fingerprint()
	previous := s.loadCache(root, fingerprint, opts)

	store := s.store
	if opts.DryRun {
		store = newOverlayStore(s.store)
	}

	// 2. Pass 1: classify and write back changed files
	docs := collectDocuments(root, projects)
	s.logger.Info("pass 1: classifying", "descriptor", path, "projects", len(projects), "files", len(docs))
	err = s.each(ctx, docs, func(ctx context.Context, d *document) {
		s.classifyDocument(ctx, store, conv, previous, d)
	})
	if err != nil {
		return nil, err
	}

	// 3. Pass 2: format files that import the target namespace
	formatting := !opts.NoFormat && !cfg.Formatter.Disabled
	if formatting {
		if err := s.formatPass(ctx, store, path, cfg, docs); err != nil {
			return nil, err
		}
	}

	// 4. Settle outcomes
	s.settle(store, docs, opts)
	if formatting && !opts.DryRun {
		s.saveCache(root, fingerprint, previous, docs)
	}

	report := &domain.MigrationReport{
		RunID:       uuid.NewString(),
		Descriptor:  path,
		Kind:        ws.Kind,
		Target:      cfg.Target,
		DryRun:      opts.DryRun,
		Diagnostics: ws.Diagnostics,
		Timestamp:   time.Now().UTC(),
	}
	for _, p := range projects {
		report.Projects = append(report.Projects, p.Name)
	}
	for _, d := range docs {
		report.Files = append(report.Files, d.result)
	}
	report.Tally()
	s.record(root, report)

	s.logger.Info("migration finished",
		"files", report.Summary.Files,
		"changed", report.Summary.Changed,
		"formatted", report.Summary.Formatted,
		"cached", report.Summary.Cached,
		"failed", report.Summary.Failed,
		"dry_run", opts.DryRun,
	)
	return report, nil
}

// MigrateSource runs pass 1 on a single in-memory file. Configuration is read
// from the file's directory.
func (s *MigrateService) MigrateSource(ctx context.Context, path string, src []byte) (*domain.SourceResult, error) {
	cfg, err := s.configLoader.Load(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	unit, err := s.parser.Parse(ctx, path, src)
	if err != nil {
		return nil, err
	}

	res, err := rewrite(unit, cfg.Conventions())
	if err != nil {
		return nil, fmt.Errorf("printing %s: %w", path, err)
	}

	result := &domain.SourceResult{Path: path, Output: string(src)}
	if !res.changed {
		return result, nil
	}
	result.Changed = true
	result.UsingAdded = res.usingAdded
	result.Changes = res.changes
	result.Output = string(res.output)
	if s.differ != nil {
		diff, err := s.differ.Diff(filepath.ToSlash(filepath.Base(path)), src, res.output)
		if err != nil {
			return nil, fmt.Errorf("diffing %s: %w", path, err)
		}
		result.Diff = diff
	}
	return result, nil
}

type rewriteResult struct {
	changed    bool
	usingAdded bool
	changes    []migrate.Change
	output     []byte
}

// rewrite applies the classification rules and, when the tree changed,
// the import rule. An unchanged tree is never printed.
func rewrite(unit *syntax.CompilationUnit, conv migrate.Conventions) (rewriteResult, error) {
	next := migrate.Classify(unit, conv)
	if next == unit {
		return rewriteResult{}, nil
	}
	next, added := migrate.EnsureUsing(next, conv.Namespace)
	out, err := syntax.Print(next)
	if err != nil {
		return rewriteResult{}, err
	}
	return rewriteResult{
		changed:    true,
		usingAdded: added,
		changes:    migrate.Changes(next),
		output:     out,
	}, nil
}

func (s *MigrateService) classifyDocument(ctx context.Context, store domain.FileStore, conv migrate.Conventions, previous *domain.ProjectCache, d *document) {
	data, err := store.Read(d.abs)
	if err != nil {
		s.fail(d, "read", err)
		return
	}
	d.original = data

	if previous.IsSettled(d.result.Path, contentHash(data)) {
		d.result.Status = domain.StatusCached
		d.done = true
		s.logger.Debug("settled, skipping", "path", d.result.Path)
		return
	}

	unit, err := s.parser.Parse(ctx, d.abs, data)
	if err != nil {
		s.fail(d, "parse", err)
		return
	}

	res, err := rewrite(unit, conv)
	if err != nil {
		s.fail(d, "print", err)
		return
	}
	if !res.changed {
		s.logger.Debug("no test declarations to mark", "path", d.result.Path)
		return
	}

	if err := store.Write(d.abs, res.output); err != nil {
		s.fail(d, "write", err)
		return
	}
	d.result.Changes = res.changes
	d.result.UsingAdded = res.usingAdded
	s.logger.Debug("classified", "path", d.result.Path, "changes", len(res.changes), "using_added", res.usingAdded)
}

// formatPass reloads the workspace, since pass 1 rewrote files behind it,
// and formats every file whose imports include the target namespace.
func (s *MigrateService) formatPass(ctx context.Context, store domain.FileStore, path string, cfg domain.ProjectConfig, docs []*document) error {
	ws, err := s.loader.Load(ctx, path, cfg.ExcludePaths...)
	if err != nil {
		return fmt.Errorf("reloading workspace: %w", err)
	}

	byPath := make(map[string]*document, len(docs))
	for _, d := range docs {
		byPath[d.abs] = d
	}
	var targets []*document
	seen := make(map[*document]bool)
	for _, p := range selectProjects(ws, cfg) {
		for _, doc := range p.Documents {
			d, ok := byPath[doc.Path]
			if !ok || d.done || seen[d] {
				continue
			}
			seen[d] = true
			targets = append(targets, d)
		}
	}

	ns := cfg.Conventions().Namespace
	s.logger.Info("pass 2: formatting", "files", len(targets))
	return s.each(ctx, targets, func(ctx context.Context, d *document) {
		s.formatDocument(ctx, store, cfg.Formatter, ns, d)
	})
}

func (s *MigrateService) formatDocument(ctx context.Context, store domain.FileStore, fc domain.FormatterConfig, ns syntax.QualifiedName, d *document) {
	data, err := store.Read(d.abs)
	if err != nil {
		s.fail(d, "read", err)
		return
	}
	unit, err := s.parser.Parse(ctx, d.abs, data)
	if err != nil {
		s.fail(d, "parse", err)
		return
	}
	if !migrate.HasUsing(unit, ns) {
		return
	}

	out, err := s.formatter.Format(ctx, unit, fc)
	if err != nil {
		s.fail(d, "format", err)
		return
	}
	if bytes.Equal(out, data) {
		return
	}
	if err := store.Write(d.abs, out); err != nil {
		s.fail(d, "write", err)
		return
	}
	d.result.Formatted = true
	s.logger.Debug("formatted", "path", d.result.Path)
}

// settle compares each file's final content with what pass 1 read.
func (s *MigrateService) settle(store domain.FileStore, docs []*document, opts domain.MigrateOptions) {
	for _, d := range docs {
		if d.done {
			continue
		}
		final, err := store.Read(d.abs)
		if err != nil {
			s.fail(d, "read", err)
			continue
		}
		d.final = final
		if bytes.Equal(final, d.original) {
			d.result.Status = domain.StatusUnchanged
			continue
		}
		d.result.Status = domain.StatusChanged

		if opts.Diff && s.differ != nil {
			diff, err := s.differ.Diff(d.result.Path, d.original, final)
			if err != nil {
				s.logger.Warn("diff failed", "path", d.result.Path, "error", err)
				continue
			}
			d.result.Diff = diff
		}
	}
}

func (s *MigrateService) fail(d *document, stage string, err error) {
	d.result.Status = domain.StatusFailed
	d.result.Error = fmt.Sprintf("%s: %v", stage, err)
	d.done = true
	s.logger.Error("file failed", "path", d.result.Path, "stage", stage, "error", err)
}

// each runs fn over docs on a bounded worker pool. fn records its own
// failures; only cancellation stops the pool.
func (s *MigrateService) each(ctx context.Context, docs []*document, fn func(context.Context, *document)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, d := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, d)
			return nil
		})
	}
	return g.Wait()
}

func (s *MigrateService) checkClean(root string) error {
	if s.git == nil || !s.git.IsGitRepo(root) {
		return fmt.Errorf("clean worktree required but %s is not inside a git repository", root)
	}
	clean, err := s.git.IsClean(root)
	if err != nil {
		return fmt.Errorf("checking worktree: %w", err)
	}
	if !clean {
		return domain.ErrDirtyWorktree
	}
	return nil
}

func (s *MigrateService) loadCache(root, fingerprint string, opts domain.MigrateOptions) *domain.ProjectCache {
	if s.cache == nil || opts.NoCache {
		return nil
	}
	c, err := s.cache.Load(root)
	if err != nil {
		s.logger.Warn("ignoring unreadable cache", "error", err)
		return nil
	}
	if c == nil || c.IsInvalidated(fingerprint) {
		return nil
	}
	return c
}

// saveCache records every file whose content is now final. Entries of files
// outside this run are kept.
func (s *MigrateService) saveCache(root, fingerprint string, previous *domain.ProjectCache, docs []*document) {
	if s.cache == nil {
		return
	}
	next := &domain.ProjectCache{
		RootPath:   root,
		ConfigHash: fingerprint,
		Files:      make(map[string]domain.FileFingerprint),
	}
	if previous != nil {
		for k, v := range previous.Files {
			next.Files[k] = v
		}
	}
	for _, d := range docs {
		switch d.result.Status {
		case domain.StatusFailed:
			delete(next.Files, d.result.Path)
		case domain.StatusCached:
		default:
			next.Files[d.result.Path] = domain.FileFingerprint{ContentHash: contentHash(d.final)}
		}
	}
	if err := s.cache.Save(next); err != nil {
		s.logger.Warn("saving cache failed", "error", err)
	}
}

func (s *MigrateService) record(root string, report *domain.MigrationReport) {
	if s.git != nil && s.git.IsGitRepo(root) {
		if hash, err := s.git.CommitHash(root); err == nil {
			report.CommitHash = hash
		}
	}
	if s.history == nil {
		return
	}
	if err := s.history.Save(root, domain.EntryFor(report)); err != nil {
		s.logger.Warn("saving run history failed", "error", err)
	}
}

// selectProjects keeps only test projects when a whole solution was opened.
func selectProjects(ws *domain.Workspace, cfg domain.ProjectConfig) []domain.Project {
	if ws.Kind != domain.DescriptorSolution {
		return ws.Projects
	}
	var out []domain.Project
	for _, p := range ws.Projects {
		if cfg.IsTestProject(p.Name) {
			out = append(out, p)
		}
	}
	return out
}

// collectDocuments lists the documents of all projects once each, in
// project order.
func collectDocuments(root string, projects []domain.Project) []*document {
	var docs []*document
	seen := make(map[string]bool)
	for _, p := range projects {
		for _, doc := range p.Documents {
			if seen[doc.Path] {
				continue
			}
			seen[doc.Path] = true
			rel, err := filepath.Rel(root, doc.Path)
			if err != nil {
				rel = doc.Path
			}
			docs = append(docs, &document{
				abs: doc.Path,
				result: domain.FileResult{
					Path:    filepath.ToSlash(rel),
					Project: p.Name,
					Status:  domain.StatusUnchanged,
				},
			})
		}
	}
	return docs
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
