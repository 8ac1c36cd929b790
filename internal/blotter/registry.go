package blotter

import (
	"sync"
)

// State is a point-in-time copy of the registry aggregate, safe for the
// caller to hold after the registry moves on.
type State struct {
	Files                []File                     `json:"files"`
	SelectedFile         *File                      `json:"selectedFile"`
	AnalysisResults      map[string]*AnalysisResult `json:"analysisResults"`
	IsUploading          bool                       `json:"isUploading"`
	Progress             int                        `json:"progress"`
	Error                string                     `json:"error,omitempty"`
	HasHydratedFromCloud bool                       `json:"hasHydratedFromCloud"`
	Revision             int64                      `json:"revision"`
}

// Registry is the single source of truth for which blotter files a session
// knows about and what is known about each of them. Every operation is total:
// acting on a name the registry has never seen degrades to a no-op instead of
// an error, because the UI can race its own mutations (remove while an upload
// is in flight) and must never crash for it.
//
// The revision counter increments on every mutation. The cloud reconciler
// uses it to detect an upload landing between its reset and its hydrate, so a
// stale durable record cannot silently clobber a fresher local result.
type Registry struct {
	mu sync.RWMutex

	files                []File
	selected             string // name of selected file, "" when none
	analysisResults      map[string]*AnalysisResult
	isUploading          bool
	progress             int
	err                  string
	hasHydratedFromCloud bool
	revision             int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		analysisResults: make(map[string]*AnalysisResult),
	}
}

// AddFile inserts or replaces a file entry by name and makes it the selected
// file. A name collision overwrites the existing entry (last write wins). Any
// prior analysis result for the name is deliberately left in place so a
// re-upload does not blank the dashboard; callers wanting a clean slate
// remove the file first.
func (r *Registry) AddFile(f File) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f.Source == "" {
		f.Source = SourceLocal
	}
	if f.Status == "" {
		f.Status = StatusPending
	}
	r.upsertLocked(f)
	r.selected = f.Name
	r.revision++
}

// upsertLocked replaces the entry with the same name or appends.
func (r *Registry) upsertLocked(f File) {
	for i := range r.files {
		if r.files[i].Name == f.Name {
			r.files[i] = f
			return
		}
	}
	r.files = append(r.files, f)
}

// RemoveFile deletes a file and its analysis result. If it was selected, the
// selection becomes empty; no other file is auto-selected, the user has to
// pick again explicitly. Unknown names are a no-op.
func (r *Registry) RemoveFile(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.files[:0]
	for _, f := range r.files {
		if f.Name != name {
			kept = append(kept, f)
		}
	}
	r.files = kept
	delete(r.analysisResults, name)
	if r.selected == name {
		r.selected = ""
	}
	r.revision++
}

// SelectFile sets the selection to the named file, or clears it when the name
// is unknown. Never errors.
func (r *Registry) SelectFile(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.selected = ""
	for _, f := range r.files {
		if f.Name == name {
			r.selected = name
			break
		}
	}
	r.revision++
}

// SetAnalysisResult replaces the stored result for a name wholesale and
// clears any pending error. The name does not have to exist in files yet;
// result-before-registration is permitted.
func (r *Registry) SetAnalysisResult(name string, result *AnalysisResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.analysisResults[name] = result
	r.err = ""
	for i := range r.files {
		if r.files[i].Name == name {
			r.files[i].Status = StatusSucceeded
		}
	}
	r.revision++
}

// MarkFileFailed flags a file whose upload did not produce a result.
func (r *Registry) MarkFileFailed(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.files {
		if r.files[i].Name == name {
			r.files[i].Status = StatusFailed
		}
	}
	r.revision++
}

// HydrateFromCloud atomically installs the durable record: file entry
// (source=cloud), selection, analysis result, cleared error and the hydrated
// flag all land under one lock so no reader can observe a half-applied merge.
func (r *Registry) HydrateFromCloud(record CloudRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hydrateLocked(record)
	r.revision++
}

// HydrateFromCloudIfRevision applies the hydrate only if the registry has not
// been mutated since the caller observed baseRevision. Returns false when a
// concurrent mutation (typically an upload finishing) won the race; the
// caller should treat the durable record as stale and leave local state
// alone.
func (r *Registry) HydrateFromCloudIfRevision(baseRevision int64, record CloudRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.revision != baseRevision {
		// Something newer landed locally; still mark hydration complete so
		// reconciliation does not re-run.
		r.hasHydratedFromCloud = true
		r.revision++
		return false
	}
	r.hydrateLocked(record)
	r.revision++
	return true
}

func (r *Registry) hydrateLocked(record CloudRecord) {
	f := File{
		Name:       record.FileName,
		Size:       record.FileSize,
		Source:     SourceCloud,
		Status:     StatusSucceeded,
		UploadedAt: record.UploadedAt,
	}
	r.upsertLocked(f)
	r.selected = f.Name
	r.analysisResults[f.Name] = record.Analysis
	r.err = ""
	r.hasHydratedFromCloud = true
}

// MarkFileSynced flips a file's provenance to cloud and stamps the durable
// upload time. Files never transition back from cloud to local. Unknown
// names are a no-op.
func (r *Registry) MarkFileSynced(name, uploadedAt string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.files {
		if r.files[i].Name == name {
			r.files[i].Source = SourceCloud
			r.files[i].UploadedAt = uploadedAt
			break
		}
	}
	r.revision++
}

// MarkCloudHydrated records that reconciliation completed without data, so
// the UI can tell "checked, nothing there" apart from "not checked yet" and
// the reconciler will not run again.
func (r *Registry) MarkCloudHydrated() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hasHydratedFromCloud = true
	r.revision++
}

// SetUploading flips the single upload-in-flight flag.
func (r *Registry) SetUploading(uploading bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.isUploading = uploading
	if uploading {
		r.progress = 0
	}
	r.revision++
}

// SetProgress clamps and stores upload progress.
func (r *Registry) SetProgress(progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	r.progress = progress
	r.revision++
}

// SetError stores a user-facing error message. A new error overwrites an
// unacknowledged old one; there is a single slot.
func (r *Registry) SetError(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.err = message
	r.revision++
}

// Reset returns the registry to its empty initial state. Used on sign-out so
// no remnant of the previous user's data stays reachable.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.files = nil
	r.selected = ""
	r.analysisResults = make(map[string]*AnalysisResult)
	r.isUploading = false
	r.progress = 0
	r.err = ""
	r.hasHydratedFromCloud = false
	r.revision++
}

// Restore replaces the registry contents from a persisted snapshot.
func (r *Registry) Restore(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.files = append([]File(nil), s.Files...)
	r.selected = ""
	if s.SelectedFile != nil {
		// Selection must reference a present file; drop it otherwise.
		for _, f := range r.files {
			if f.Name == s.SelectedFile.Name {
				r.selected = f.Name
				break
			}
		}
	}
	r.analysisResults = make(map[string]*AnalysisResult, len(s.AnalysisResults))
	for name, result := range s.AnalysisResults {
		r.analysisResults[name] = result
	}
	r.isUploading = false
	r.progress = 0
	r.err = s.Error
	r.hasHydratedFromCloud = s.HasHydratedFromCloud
	r.revision++
}

// Revision returns the current mutation counter.
func (r *Registry) Revision() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.revision
}

// SelectedFile returns a copy of the currently selected file, if any.
func (r *Registry) SelectedFile() (File, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.selected == "" {
		return File{}, false
	}
	for _, f := range r.files {
		if f.Name == r.selected {
			return f, true
		}
	}
	return File{}, false
}

// AnalysisResult returns the stored result for a file name.
func (r *Registry) AnalysisResult(name string) (*AnalysisResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.analysisResults[name]
	return result, ok
}

// Snapshot returns a consistent copy of the whole aggregate.
func (r *Registry) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := State{
		Files:                append([]File(nil), r.files...),
		AnalysisResults:      make(map[string]*AnalysisResult, len(r.analysisResults)),
		IsUploading:          r.isUploading,
		Progress:             r.progress,
		Error:                r.err,
		HasHydratedFromCloud: r.hasHydratedFromCloud,
		Revision:             r.revision,
	}
	for name, result := range r.analysisResults {
		s.AnalysisResults[name] = result
	}
	for i := range s.Files {
		if s.Files[i].Name == r.selected {
			selected := s.Files[i]
			s.SelectedFile = &selected
			break
		}
	}
	return s
}
