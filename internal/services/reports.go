package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ridemap/admin-server/internal/metrics"
	"github.com/ridemap/admin-server/internal/models"
	"github.com/ridemap/admin-server/internal/storage"
	"github.com/ridemap/admin-server/internal/store"
	"github.com/ridemap/admin-server/internal/utils"
)

// Concurrency bound for resolving listed blobs to download URLs.
const resolveWorkers = 8

var (
	// ErrNotImage rejects a batch containing any non-image file.
	ErrNotImage = errors.New("only image files are allowed")
	// ErrNoFiles rejects an empty upload batch.
	ErrNoFiles = errors.New("no files in upload batch")
	// ErrMissingEnroll rejects an ingest without an enrollment number.
	ErrMissingEnroll = errors.New("enrollment number is required")
)

// ReportService owns the reported-rider workflow: listing reports,
// resolving their photo evidence to download URLs, and ingesting new
// evidence batches.
type ReportService struct {
	gateway store.Gateway
	blobs   storage.BlobStore
	metrics *metrics.Metrics
	log     *zap.Logger
	uploads *progressBook

	now func() time.Time
}

func NewReportService(gateway store.Gateway, blobs storage.BlobStore, m *metrics.Metrics, log *zap.Logger) *ReportService {
	return &ReportService{
		gateway: gateway,
		blobs:   blobs,
		metrics: m,
		log:     log,
		uploads: newProgressBook(),
		now:     time.Now,
	}
}

// ReportedUsers lists an institute's reports, newest first.
func (s *ReportService) ReportedUsers(ctx context.Context, institute string) ([]models.ReportedUser, error) {
	return s.gateway.ReportedUsers(ctx, institute)
}

func reportPrefix(institute, enrollNo string) string {
	return fmt.Sprintf("institutes/%s/unknown_users/%s/", institute, enrollNo)
}

// taggedBlob remembers which listing a blob came from, so the
// thumbnail/original split never depends on concatenation order.
type taggedBlob struct {
	key   string
	thumb bool
}

// Images resolves the photo evidence for one enrollment number. Empty
// institute or enrollment number yields (nil, nil), not an error. Valid
// inputs with no uploaded images yield empty (non-nil) slices. Any listing
// or resolution failure yields nil with no partial result.
func (s *ReportService) Images(ctx context.Context, institute, enrollNo string) (*models.ImageSet, error) {
	if institute == "" || enrollNo == "" {
		return nil, nil
	}

	root := reportPrefix(institute, enrollNo)
	listings, errs := utils.RunParallel([]func() ([]string, error){
		func() ([]string, error) { return s.blobs.List(ctx, root+"thumb/", true) },
		// Delimited listing: originals live at the prefix root, thumbnails
		// one level down.
		func() ([]string, error) { return s.blobs.List(ctx, root, false) },
	})
	if err := utils.FirstError(errs); err != nil {
		s.log.Warn("blob listing failed",
			zap.String("institute", institute),
			zap.String("enrollNo", enrollNo),
			zap.Error(err))
		return nil, err
	}

	blobs := make([]taggedBlob, 0, len(listings[0])+len(listings[1]))
	for _, key := range listings[0] {
		blobs = append(blobs, taggedBlob{key: key, thumb: true})
	}
	for _, key := range listings[1] {
		blobs = append(blobs, taggedBlob{key: key})
	}

	urls := make([]string, len(blobs))
	resolveErrs := make([]error, len(blobs))
	pool := utils.NewWorkerPool(resolveWorkers)
	defer pool.Close()
	for i, blob := range blobs {
		i, blob := i, blob
		pool.AddTask(func() {
			urls[i], resolveErrs[i] = s.blobs.ResolveURL(ctx, blob.key)
		})
	}
	pool.Wait()
	if err := utils.FirstError(resolveErrs); err != nil {
		s.log.Warn("download URL resolution failed",
			zap.String("institute", institute),
			zap.String("enrollNo", enrollNo),
			zap.Error(err))
		return nil, err
	}

	set := &models.ImageSet{Thumbnails: []string{}, Originals: []string{}}
	for i, blob := range blobs {
		if blob.thumb {
			set.Thumbnails = append(set.Thumbnails, urls[i])
		} else {
			set.Originals = append(set.Originals, urls[i])
		}
	}
	s.metrics.ImageResolutions.Inc()
	return set, nil
}

// Ingest uploads an evidence batch and upserts the report document. The
// whole batch is validated before any byte is uploaded; all uploads complete
// before the upsert begins. There is no compensating cleanup: when the
// upsert fails after upload, the blobs stay orphaned.
//
// batchID keys the observable upload progress; an empty id gets a generated
// one. The (possibly generated) id is returned either way.
func (s *ReportService) Ingest(ctx context.Context, institute, uploadedBy, enrollNo, batchID string, files []*multipart.FileHeader) (string, error) {
	if enrollNo == "" {
		return "", ErrMissingEnroll
	}
	if len(files) == 0 {
		return "", ErrNoFiles
	}
	for _, file := range files {
		if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
			return "", ErrNotImage
		}
	}

	if batchID == "" {
		batchID = uuid.NewString()
	}

	var total int64
	for _, file := range files {
		total += file.Size
	}
	progress := s.uploads.start(batchID, total)
	ingestFailed := true
	defer func() { s.uploads.finish(batchID, ingestFailed) }()

	prefix := reportPrefix(institute, enrollNo)
	stamp := s.now().UnixMilli()

	tasks := make([]func() (struct{}, error), len(files))
	for i, file := range files {
		file := file
		tasks[i] = func() (struct{}, error) {
			src, err := file.Open()
			if err != nil {
				return struct{}{}, fmt.Errorf("open %q: %w", file.Filename, err)
			}
			defer src.Close()

			object := fmt.Sprintf("%s%d_%s", prefix, stamp, file.Filename)
			reader := &progressReader{
				r:        src,
				progress: progress,
				onRead:   func(n int64) { s.metrics.UploadedBytes.Add(float64(n)) },
			}
			return struct{}{}, s.blobs.Upload(ctx, object, reader, file.Size, file.Header.Get("Content-Type"))
		}
	}
	if _, errs := utils.RunParallel(tasks); utils.FirstError(errs) != nil {
		err := utils.FirstError(errs)
		s.log.Error("report image upload failed",
			zap.String("institute", institute),
			zap.String("enrollNo", enrollNo),
			zap.Error(err))
		return batchID, err
	}

	report := models.ReportedUser{
		ID:         models.ReportedUserID(institute, enrollNo),
		Institute:  institute,
		EnrollNo:   enrollNo,
		Date:       s.now(),
		UploadedBy: uploadedBy,
	}
	if err := s.gateway.UpsertReportedUser(ctx, report); err != nil {
		s.log.Error("report upsert failed after upload",
			zap.String("institute", institute),
			zap.String("enrollNo", enrollNo),
			zap.Error(err))
		return batchID, err
	}

	s.metrics.ReportUploads.Inc()
	ingestFailed = false
	return batchID, nil
}

// Progress reports an upload batch's status.
func (s *ReportService) Progress(batchID string) (BatchStatus, bool) {
	return s.uploads.progress(batchID)
}
