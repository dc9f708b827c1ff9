package wizard

import (
	"context"
	"fmt"
	"strings"

	domain "lead-origination/internal/domain/lead"
	"lead-origination/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func documentStep(step int) bool { return step == DocumentsStep || step == RequiredDocsStep }

func knownType(t domain.DocumentType) bool {
	for _, r := range domain.RequiredDocuments {
		if r == t {
			return true
		}
	}
	return false
}

// Uploads lists the uploads of a document step in the order they were added.
func (s *Sequencer) Uploads(ctx context.Context, leadID string, step int) ([]domain.Upload, error) {
	if !documentStep(step) {
		return nil, ErrNotDocumentStep
	}
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	ws := s.workspace(l)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.snapshot(step), nil
}

// AddUpload registers a selected file under the chosen document type. It
// starts Processing and resolves against the file validator after the
// upload delay.
func (s *Sequencer) AddUpload(ctx context.Context, leadID string, step int, docType domain.DocumentType, fileName string) (domain.Upload, error) {
	return s.startUpload(ctx, leadID, step, docType, strings.TrimSpace(fileName), false)
}

// Capture is the camera path: the captured image always validates.
func (s *Sequencer) Capture(ctx context.Context, leadID string, step int, docType domain.DocumentType) (domain.Upload, error) {
	name := fmt.Sprintf("capture_%s_%s.jpg", strings.ToLower(string(docType)), uuid.NewString()[:8])
	return s.startUpload(ctx, leadID, step, docType, name, true)
}

func (s *Sequencer) startUpload(ctx context.Context, leadID string, step int, docType domain.DocumentType, name string, forceOK bool) (domain.Upload, error) {
	if !documentStep(step) {
		return domain.Upload{}, ErrNotDocumentStep
	}
	if docType == "" || !knownType(docType) {
		return domain.Upload{}, ErrDocumentTypeRequired
	}
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return domain.Upload{}, err
	}
	ws := s.workspace(l)

	up := domain.Upload{
		ID:     uuid.NewString(),
		Name:   name,
		Type:   docType,
		Status: domain.UploadProcessing,
	}
	ws.mu.Lock()
	ws.uploads[step] = append(ws.uploads[step], up)
	ws.mu.Unlock()

	s.scheduleResolve(ws, step, up.ID, forceOK)
	s.log.Info("upload started",
		zap.String("lead_id", leadID),
		zap.Int("step", step),
		zap.String("upload_id", up.ID),
		zap.String("type", string(docType)))
	return up, nil
}

// RetryUpload puts a failed upload back into Processing; a retry always resolves to Success.
func (s *Sequencer) RetryUpload(ctx context.Context, leadID string, step int, uploadID string) (domain.Upload, error) {
	if !documentStep(step) {
		return domain.Upload{}, ErrNotDocumentStep
	}
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return domain.Upload{}, err
	}
	ws := s.workspace(l)

	ws.mu.Lock()
	i := ws.find(step, uploadID)
	if i < 0 {
		ws.mu.Unlock()
		return domain.Upload{}, ErrUploadNotFound
	}
	if ws.uploads[step][i].Status != domain.UploadFailed {
		ws.mu.Unlock()
		return domain.Upload{}, ErrNotRetryable
	}
	ws.uploads[step][i].Status = domain.UploadProcessing
	ws.uploads[step][i].Error = ""
	up := ws.uploads[step][i]
	ws.mu.Unlock()

	s.scheduleResolve(ws, step, uploadID, true)
	return up, nil
}

// DeleteUpload removes an upload whatever its status and cancels its pending resolution.
func (s *Sequencer) DeleteUpload(ctx context.Context, leadID string, step int, uploadID string) error {
	if !documentStep(step) {
		return ErrNotDocumentStep
	}
	l, err := s.lead(ctx, leadID)
	if err != nil {
		return err
	}
	ws := s.workspace(l)

	ws.mu.Lock()
	defer ws.mu.Unlock()
	i := ws.find(step, uploadID)
	if i < 0 {
		return ErrUploadNotFound
	}
	s.sched.Cancel(leadID, uploadID)
	ws.uploads[step] = append(ws.uploads[step][:i:i], ws.uploads[step][i+1:]...)
	return nil
}

func (s *Sequencer) scheduleResolve(ws *workspace, step int, uploadID string, forceOK bool) {
	s.sched.Schedule(ws.leadID, uploadID, s.cfg.UploadDelay, func(ctx context.Context) {
		ws.mu.Lock()
		defer ws.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		i := ws.find(step, uploadID)
		if i < 0 || ws.uploads[step][i].Status != domain.UploadProcessing {
			return
		}
		up := &ws.uploads[step][i]
		s.resolve(up, forceOK)
		metrics.DocumentUploads.WithLabelValues(strings.ToLower(string(up.Status))).Inc()
		s.log.Debug("upload resolved",
			zap.String("lead_id", ws.leadID),
			zap.String("upload_id", uploadID),
			zap.String("status", string(up.Status)))
	})
}

func (s *Sequencer) resolve(up *domain.Upload, forceOK bool) {
	if forceOK {
		up.Status = domain.UploadSuccess
		up.Error = ""
		return
	}
	inferred, ok := s.svc.Documents.ValidateDocument(up.Name)
	switch {
	case !ok:
		up.Status = domain.UploadFailed
		up.Error = "invalid document"
	case inferred != up.Type:
		up.Status = domain.UploadFailed
		up.Error = fmt.Sprintf("file looks like %s, expected %s", inferred, up.Type)
	default:
		up.Status = domain.UploadSuccess
		up.Error = ""
	}
}
