// Package service implements the thin request/response façade that
// fronts the daemon's core: mapping each wire operation onto the core
// components and translating typed errors into {success, error} shapes.
// The façade is deliberately free of business logic beyond argument
// plumbing and error translation.
package service

import (
	"go.uber.org/zap"

	"centy/internal/centyerr"
	"centy/internal/config"
	"centy/internal/docstore"
	"centy/internal/hashutil"
	"centy/internal/issuestore"
	"centy/internal/manifest"
	"centy/internal/migration"
	"centy/internal/reconcile"
	"centy/internal/registry"
	"centy/internal/semver"
)

// Service wires the core packages behind the daemon's wire-level
// operations. It holds no per-project state; every method takes the
// project path explicitly.
type Service struct {
	HomeDir       string
	DaemonVersion string
	Logger        *zap.SugaredLogger
}

// New builds a Service. homeDir is the resolved ~/.centy directory used
// by the project registry.
func New(homeDir, daemonVersion string, logger *zap.SugaredLogger) *Service {
	return &Service{HomeDir: homeDir, DaemonVersion: daemonVersion, Logger: logger}
}

// track records an access to projectPath in the global registry without
// blocking the caller's response.
func (s *Service) track(projectPath string) {
	registry.TrackAsync(s.HomeDir, projectPath, s.Logger)
}

// Failure is the {success=false, error} wire shape returned for any
// operation that fails.
type Failure struct {
	Success bool
	Error   string
}

// Fail maps a core error to the wire-level failure shape, logging it at
// Error per the ambient logging policy (status-lenient warnings are
// logged lower down, not here).
func (s *Service) Fail(err error) Failure {
	if s.Logger != nil {
		s.Logger.Errorw("operation failed", "error", err)
	}
	return Failure{Success: false, Error: err.Error()}
}

// --- Init / reconciliation ---

// IsInitialized reports whether projectPath has a manifest.
func (s *Service) IsInitialized(projectPath string) (bool, error) {
	s.track(projectPath)
	m, err := manifest.Load(hashutil.CentyDir(projectPath))
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// GetManifest returns the current manifest, or centyerr.NotInitialized.
func (s *Service) GetManifest(projectPath string) (*manifest.Manifest, error) {
	s.track(projectPath)
	m, err := manifest.Load(hashutil.CentyDir(projectPath))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, centyerr.NotInitialized
	}
	return m, nil
}

// GetReconciliationPlan builds a fresh plan without applying it.
func (s *Service) GetReconciliationPlan(projectPath string) (*reconcile.Plan, error) {
	s.track(projectPath)
	return reconcile.BuildPlan(projectPath)
}

// Init runs a force-applied reconciliation, used to bootstrap a project.
func (s *Service) Init(projectPath string) (*reconcile.Result, error) {
	s.track(projectPath)
	return reconcile.Execute(projectPath, reconcile.Decisions{}, true, s.DaemonVersion)
}

// ExecuteReconciliation applies the plan under the caller's decisions.
func (s *Service) ExecuteReconciliation(projectPath string, decisions reconcile.Decisions, force bool) (*reconcile.Result, error) {
	s.track(projectPath)
	return reconcile.Execute(projectPath, decisions, force, s.DaemonVersion)
}

// --- Issues ---

func (s *Service) CreateIssue(projectPath string, opts issuestore.CreateOptions) (*issuestore.CreateResult, error) {
	s.track(projectPath)
	return issuestore.Create(projectPath, opts, s.Logger)
}

func (s *Service) GetIssue(projectPath, id string) (*issuestore.Issue, error) {
	s.track(projectPath)
	return issuestore.Read(projectPath, id)
}

func (s *Service) GetIssueByDisplayNumber(projectPath string, n int) (*issuestore.Issue, error) {
	s.track(projectPath)
	return issuestore.ReadByDisplayNumber(projectPath, n)
}

func (s *Service) ListIssues(projectPath, statusFilter string, priorityFilter int) ([]issuestore.Issue, error) {
	s.track(projectPath)
	return issuestore.List(projectPath, statusFilter, priorityFilter)
}

func (s *Service) UpdateIssue(projectPath, id string, opts issuestore.UpdateOptions) (*issuestore.Issue, error) {
	s.track(projectPath)
	return issuestore.Update(projectPath, id, opts)
}

func (s *Service) DeleteIssue(projectPath, id string) error {
	s.track(projectPath)
	return issuestore.Delete(projectPath, id)
}

// GetNextIssueNumber previews the display number the next Create would
// assign, without mutating anything.
func (s *Service) GetNextIssueNumber(projectPath string) (int, error) {
	s.track(projectPath)
	issues, err := issuestore.List(projectPath, "", 0)
	if err != nil {
		return 0, err
	}
	max := 0
	for _, is := range issues {
		if is.DisplayNumber > max {
			max = is.DisplayNumber
		}
	}
	return max + 1, nil
}

// --- Docs ---

func (s *Service) CreateDoc(projectPath string, opts docstore.CreateOptions) (*docstore.Doc, error) {
	s.track(projectPath)
	return docstore.Create(projectPath, opts)
}

func (s *Service) GetDoc(projectPath, slug string) (*docstore.Doc, error) {
	s.track(projectPath)
	return docstore.Read(projectPath, slug)
}

func (s *Service) ListDocs(projectPath string) ([]docstore.Doc, error) {
	s.track(projectPath)
	return docstore.List(projectPath)
}

func (s *Service) UpdateDoc(projectPath, slug string, opts docstore.UpdateOptions) (*docstore.Doc, error) {
	s.track(projectPath)
	return docstore.Update(projectPath, slug, opts)
}

func (s *Service) DeleteDoc(projectPath, slug string) error {
	s.track(projectPath)
	return docstore.Delete(projectPath, slug)
}

// --- Assets ---

func (s *Service) AddAsset(projectPath, issueID, name string, data []byte) error {
	s.track(projectPath)
	return issuestore.AddAsset(projectPath, issueID, name, data)
}

func (s *Service) GetAsset(projectPath, issueID, name string) ([]byte, error) {
	s.track(projectPath)
	return issuestore.GetAsset(projectPath, issueID, name)
}

func (s *Service) ListAssets(projectPath, issueID string) ([]string, error) {
	s.track(projectPath)
	return issuestore.ListAssets(projectPath, issueID)
}

func (s *Service) DeleteAsset(projectPath, issueID, name string) error {
	s.track(projectPath)
	return issuestore.DeleteAsset(projectPath, issueID, name)
}

func (s *Service) ListSharedAssets(projectPath string) ([]string, error) {
	s.track(projectPath)
	return issuestore.ListSharedAssets(projectPath)
}

// --- Config ---

func (s *Service) GetConfig(projectPath string) (*config.Config, error) {
	s.track(projectPath)
	return config.Load(hashutil.CentyDir(projectPath))
}

// --- Project registry ---

func (s *Service) ListProjects(includeStale bool) ([]registry.EnrichedProject, error) {
	return registry.List(s.HomeDir, includeStale)
}

func (s *Service) RegisterProject(projectPath string) error {
	return registry.Track(s.HomeDir, projectPath)
}

func (s *Service) UntrackProject(projectPath string) error {
	return registry.Untrack(s.HomeDir, projectPath)
}

func (s *Service) GetProjectInfo(projectPath string) (*registry.EnrichedProject, error) {
	return registry.GetProjectInfo(s.HomeDir, projectPath)
}

// --- Versioning ---

// DaemonInfo describes the running daemon, returned by GetDaemonInfo.
type DaemonInfo struct {
	Version string
}

func (s *Service) GetDaemonInfo() DaemonInfo {
	return DaemonInfo{Version: s.DaemonVersion}
}

func (s *Service) GetProjectVersion(projectPath string) (string, error) {
	s.track(projectPath)
	cfg, err := config.Load(hashutil.CentyDir(projectPath))
	if err != nil {
		return "", err
	}
	return config.EffectiveVersion(cfg, s.DaemonVersion), nil
}

func (s *Service) UpdateVersion(projectPath string, target semver.SemVer, migrations *migration.Registry) migration.Result {
	s.track(projectPath)
	return migrations.Migrate(projectPath, target)
}
