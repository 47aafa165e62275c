package rpcserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"centy/internal/docstore"
	"centy/internal/issuestore"
	"centy/internal/reconcile"
	"centy/internal/semver"
	"centy/internal/service"
)

// Handler adapts the service façade to the hand-declared ServiceDesc's
// JSON-map request/response shape. It holds no state of its own beyond the
// façade and the control-plane signal channel used by Shutdown/Restart.
type Handler struct {
	svc     *service.Service
	control chan ControlSignal
}

// NewHandler builds a Handler wrapping svc. control receives the one
// signal the daemon's main loop selects on to decide whether to exit
// cleanly or exit after spawning a replacement process.
func NewHandler(svc *service.Service, control chan ControlSignal) *Handler {
	return &Handler{svc: svc, control: control}
}

type params = map[string]interface{}

func str(p params, key string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func optStr(p params, key string) *string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok {
			return &s
		}
	}
	return nil
}

// num reads a JSON number (decoded as float64 by encoding/json) as an int.
func num(p params, key string) int {
	if v, ok := p[key]; ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return 0
}

func optNum(p params, key string) *int {
	if v, ok := p[key]; ok {
		if f, ok := v.(float64); ok {
			n := int(f)
			return &n
		}
	}
	return nil
}

func boolean(p params, key string) bool {
	if v, ok := p[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func projectPath(p params) string {
	return str(p, "projectPath")
}

func success(data params) params {
	if data == nil {
		data = params{}
	}
	data["success"] = true
	return data
}

func failure(err error) params {
	return params{"success": false, "error": err.Error()}
}

// --- Init / reconciliation ---

func (h *Handler) Init(ctx context.Context, p params) (interface{}, error) {
	result, err := h.svc.Init(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{
		"created":  result.Created,
		"restored": result.Restored,
		"reset":    result.Reset,
		"skipped":  result.Skipped,
	}), nil
}

func (h *Handler) GetReconciliationPlan(ctx context.Context, p params) (interface{}, error) {
	plan, err := h.svc.GetReconciliationPlan(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{
		"toCreate":       plan.ToCreate,
		"toRestore":      plan.ToRestore,
		"toReset":        plan.ToReset,
		"upToDate":       plan.UpToDate,
		"userFiles":      plan.UserFiles,
		"needsDecisions": plan.NeedsDecisions(),
	}), nil
}

func (h *Handler) ExecuteReconciliation(ctx context.Context, p params) (interface{}, error) {
	decisions := reconcile.Decisions{Restore: map[string]bool{}, Reset: map[string]bool{}}
	if raw, ok := p["restore"].(map[string]interface{}); ok {
		for k, v := range raw {
			if b, ok := v.(bool); ok {
				decisions.Restore[k] = b
			}
		}
	}
	if raw, ok := p["reset"].(map[string]interface{}); ok {
		for k, v := range raw {
			if b, ok := v.(bool); ok {
				decisions.Reset[k] = b
			}
		}
	}
	result, err := h.svc.ExecuteReconciliation(projectPath(p), decisions, boolean(p, "force"))
	if err != nil {
		return failure(err), nil
	}
	return success(params{
		"created":  result.Created,
		"restored": result.Restored,
		"reset":    result.Reset,
		"skipped":  result.Skipped,
	}), nil
}

func (h *Handler) IsInitialized(ctx context.Context, p params) (interface{}, error) {
	ok, err := h.svc.IsInitialized(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"initialized": ok}), nil
}

func (h *Handler) GetManifest(ctx context.Context, p params) (interface{}, error) {
	m, err := h.svc.GetManifest(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"manifest": m}), nil
}

// --- Issues ---

func (h *Handler) CreateIssue(ctx context.Context, p params) (interface{}, error) {
	opts := issuestore.CreateOptions{
		Title:       str(p, "title"),
		Description: str(p, "description"),
		Priority:    optNum(p, "priority"),
		Status:      str(p, "status"),
		Template:    str(p, "template"),
	}
	if cf, ok := p["customFields"].(map[string]interface{}); ok {
		opts.CustomFields = cf
	}
	result, err := h.svc.CreateIssue(projectPath(p), opts)
	if err != nil {
		return failure(err), nil
	}
	return success(params{
		"id":            result.ID,
		"displayNumber": result.DisplayNumber,
		"createdFiles":  result.CreatedFiles,
	}), nil
}

func (h *Handler) GetIssue(ctx context.Context, p params) (interface{}, error) {
	issue, err := h.svc.GetIssue(projectPath(p), str(p, "id"))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"issue": issue}), nil
}

func (h *Handler) GetIssueByDisplayNumber(ctx context.Context, p params) (interface{}, error) {
	issue, err := h.svc.GetIssueByDisplayNumber(projectPath(p), num(p, "displayNumber"))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"issue": issue}), nil
}

func (h *Handler) ListIssues(ctx context.Context, p params) (interface{}, error) {
	issues, err := h.svc.ListIssues(projectPath(p), str(p, "status"), num(p, "priority"))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"issues": issues}), nil
}

func (h *Handler) UpdateIssue(ctx context.Context, p params) (interface{}, error) {
	opts := issuestore.UpdateOptions{
		Title:       optStr(p, "title"),
		Description: optStr(p, "description"),
		Priority:    optNum(p, "priority"),
		Status:      optStr(p, "status"),
	}
	if cf, ok := p["customFields"].(map[string]interface{}); ok {
		opts.CustomFields = cf
	}
	issue, err := h.svc.UpdateIssue(projectPath(p), str(p, "id"), opts)
	if err != nil {
		return failure(err), nil
	}
	return success(params{"issue": issue}), nil
}

func (h *Handler) DeleteIssue(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.DeleteIssue(projectPath(p), str(p, "id")); err != nil {
		return failure(err), nil
	}
	return success(nil), nil
}

func (h *Handler) GetNextIssueNumber(ctx context.Context, p params) (interface{}, error) {
	n, err := h.svc.GetNextIssueNumber(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"nextNumber": n}), nil
}

// --- Docs ---

func (h *Handler) CreateDoc(ctx context.Context, p params) (interface{}, error) {
	doc, err := h.svc.CreateDoc(projectPath(p), docstore.CreateOptions{
		Title:   str(p, "title"),
		Slug:    str(p, "slug"),
		Content: str(p, "content"),
	})
	if err != nil {
		return failure(err), nil
	}
	return success(params{"doc": doc}), nil
}

func (h *Handler) GetDoc(ctx context.Context, p params) (interface{}, error) {
	doc, err := h.svc.GetDoc(projectPath(p), str(p, "slug"))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"doc": doc}), nil
}

func (h *Handler) ListDocs(ctx context.Context, p params) (interface{}, error) {
	docs, err := h.svc.ListDocs(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"docs": docs}), nil
}

func (h *Handler) UpdateDoc(ctx context.Context, p params) (interface{}, error) {
	doc, err := h.svc.UpdateDoc(projectPath(p), str(p, "slug"), docstore.UpdateOptions{
		Title:   optStr(p, "title"),
		Content: optStr(p, "content"),
		NewSlug: optStr(p, "newSlug"),
	})
	if err != nil {
		return failure(err), nil
	}
	return success(params{"doc": doc}), nil
}

func (h *Handler) DeleteDoc(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.DeleteDoc(projectPath(p), str(p, "slug")); err != nil {
		return failure(err), nil
	}
	return success(nil), nil
}

// --- Assets ---

func (h *Handler) AddAsset(ctx context.Context, p params) (interface{}, error) {
	data, err := base64.StdEncoding.DecodeString(str(p, "data"))
	if err != nil {
		return failure(fmt.Errorf("data: not valid base64: %w", err)), nil
	}
	if err := h.svc.AddAsset(projectPath(p), str(p, "issueId"), str(p, "name"), data); err != nil {
		return failure(err), nil
	}
	return success(nil), nil
}

func (h *Handler) GetAsset(ctx context.Context, p params) (interface{}, error) {
	data, err := h.svc.GetAsset(projectPath(p), str(p, "issueId"), str(p, "name"))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"data": base64.StdEncoding.EncodeToString(data)}), nil
}

func (h *Handler) ListAssets(ctx context.Context, p params) (interface{}, error) {
	names, err := h.svc.ListAssets(projectPath(p), str(p, "issueId"))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"names": names}), nil
}

func (h *Handler) DeleteAsset(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.DeleteAsset(projectPath(p), str(p, "issueId"), str(p, "name")); err != nil {
		return failure(err), nil
	}
	return success(nil), nil
}

func (h *Handler) ListSharedAssets(ctx context.Context, p params) (interface{}, error) {
	names, err := h.svc.ListSharedAssets(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"names": names}), nil
}

// --- Config ---

func (h *Handler) GetConfig(ctx context.Context, p params) (interface{}, error) {
	cfg, err := h.svc.GetConfig(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"config": cfg}), nil
}

// --- Project registry ---

func (h *Handler) ListProjects(ctx context.Context, p params) (interface{}, error) {
	projects, err := h.svc.ListProjects(boolean(p, "includeStale"))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"projects": projects}), nil
}

func (h *Handler) RegisterProject(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.RegisterProject(projectPath(p)); err != nil {
		return failure(err), nil
	}
	return success(nil), nil
}

func (h *Handler) UntrackProject(ctx context.Context, p params) (interface{}, error) {
	if err := h.svc.UntrackProject(projectPath(p)); err != nil {
		return failure(err), nil
	}
	return success(nil), nil
}

func (h *Handler) GetProjectInfo(ctx context.Context, p params) (interface{}, error) {
	info, err := h.svc.GetProjectInfo(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"project": info}), nil
}

// --- Versioning ---

func (h *Handler) GetDaemonInfo(ctx context.Context, p params) (interface{}, error) {
	info := h.svc.GetDaemonInfo()
	return success(params{"version": info.Version}), nil
}

func (h *Handler) GetProjectVersion(ctx context.Context, p params) (interface{}, error) {
	v, err := h.svc.GetProjectVersion(projectPath(p))
	if err != nil {
		return failure(err), nil
	}
	return success(params{"version": v}), nil
}

func (h *Handler) UpdateVersion(ctx context.Context, p params) (interface{}, error) {
	target, err := semver.Parse(str(p, "targetVersion"))
	if err != nil {
		return failure(fmt.Errorf("targetVersion: %w", err)), nil
	}
	result := h.svc.UpdateVersion(projectPath(p), target, defaultMigrationRegistry())
	if !result.Success {
		return failure(result.Error), nil
	}
	return success(params{
		"fromVersion":       result.FromVersion,
		"toVersion":         result.ToVersion,
		"migrationsApplied": result.MigrationsApplied,
	}), nil
}

// --- Control ---

func (h *Handler) Shutdown(ctx context.Context, p params) (interface{}, error) {
	delay := time.Duration(num(p, "delaySeconds")) * time.Second

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		h.signalControl(ControlSignal{Kind: SignalShutdown})
	}()

	message := "daemon shutting down"
	if delay > 0 {
		message = fmt.Sprintf("daemon will shut down in %s", delay)
	}
	return success(params{"message": message}), nil
}

func (h *Handler) Restart(ctx context.Context, p params) (interface{}, error) {
	delay := time.Duration(num(p, "delaySeconds")) * time.Second

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		if err := spawnDetachedSelf(); err != nil {
			return
		}
		h.signalControl(ControlSignal{Kind: SignalRestart})
	}()

	message := "daemon restarting"
	if delay > 0 {
		message = fmt.Sprintf("daemon will restart in %s", delay)
	}
	return success(params{"message": message}), nil
}

func (h *Handler) signalControl(sig ControlSignal) {
	if h.control == nil {
		return
	}
	select {
	case h.control <- sig:
	default:
	}
}
