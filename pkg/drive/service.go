// Package drive stores evidence files in Google Drive under a year/month/category tree.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"flux-backend/pkg/metrics"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const folderMIMEType = "application/vnd.google-apps.folder"

// UploadedFile describes an object stored in Drive.
type UploadedFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	WebViewLink string    `json:"web_view_link"`
	Size        int64     `json:"size"`
	CreatedTime time.Time `json:"created_time"`
}

// filesAPI is the subset of the Drive files resource used by Service.
type filesAPI interface {
	FindFolder(ctx context.Context, name, parentID string) (string, bool, error)
	CreateFolder(ctx context.Context, name, parentID string) (string, error)
	Upload(ctx context.Context, data []byte, name, mimeType, parentID string) (*UploadedFile, error)
}

type Service struct {
	files        filesAPI
	rootFolderID string
	now          func() time.Time

	mu      sync.Mutex
	folders map[string]string // parentID + "/" + name -> folder id
}

// NewService builds a Drive-backed evidence store rooted at rootFolderID.
func NewService(ctx context.Context, rootFolderID string, opts ...option.ClientOption) (*Service, error) {
	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive service: %w", err)
	}
	log.Info("[Drive] Service initialized")
	return newService(&driveFiles{srv: srv}, rootFolderID, time.Now), nil
}

func newService(files filesAPI, rootFolderID string, now func() time.Time) *Service {
	return &Service{
		files:        files,
		rootFolderID: rootFolderID,
		now:          now,
		folders:      make(map[string]string),
	}
}

// UploadEvidence files data under root/YYYY/MM/category and returns its metadata.
func (s *Service) UploadEvidence(ctx context.Context, data []byte, filename, mimeType, category string) (*UploadedFile, error) {
	folderID, err := s.OrganizeByDate(ctx, category)
	if err != nil {
		return nil, err
	}
	return s.Upload(ctx, data, filename, mimeType, folderID)
}

// Upload stores data in folderID, or in the root folder when folderID is empty.
func (s *Service) Upload(ctx context.Context, data []byte, filename, mimeType, folderID string) (*UploadedFile, error) {
	if folderID == "" {
		folderID = s.rootFolderID
	}

	start := time.Now()
	file, err := s.files.Upload(ctx, data, filename, mimeType, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file %s: %w", filename, err)
	}
	d := metrics.ObserveCall("drive", "upload", start)

	log.WithFields(log.Fields{"file_id": file.ID, "duration_ms": d.Milliseconds()}).
		Infof("[Drive] Uploaded %s", filename)
	return file, nil
}

// OrganizeByDate returns the folder for category under the current year and month,
// creating missing levels.
func (s *Service) OrganizeByDate(ctx context.Context, category string) (string, error) {
	now := s.now()
	return s.EnsureFolderPath(ctx, now.Format("2006"), now.Format("01"), category)
}

// EnsureFolderPath walks names from the root, reusing existing folders and creating
// the missing ones.
func (s *Service) EnsureFolderPath(ctx context.Context, names ...string) (string, error) {
	parent := s.rootFolderID
	for _, name := range names {
		id, err := s.getOrCreateFolder(ctx, name, parent)
		if err != nil {
			return "", err
		}
		parent = id
	}
	return parent, nil
}

// getOrCreateFolder holds the lock across lookup and creation so two uploads in the
// same process never create twin folders.
func (s *Service) getOrCreateFolder(ctx context.Context, name, parentID string) (string, error) {
	key := parentID + "/" + name

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.folders[key]; ok {
		return id, nil
	}

	id, found, err := s.files.FindFolder(ctx, name, parentID)
	if err != nil {
		return "", fmt.Errorf("failed to look up folder %s: %w", name, err)
	}
	if !found {
		id, err = s.files.CreateFolder(ctx, name, parentID)
		if err != nil {
			return "", fmt.Errorf("failed to create folder %s: %w", name, err)
		}
		log.WithField("folder_id", id).Infof("[Drive] Created folder %s", name)
	}

	s.folders[key] = id
	return id, nil
}

// driveFiles adapts *drive.Service to filesAPI.
type driveFiles struct {
	srv *drive.Service
}

func (d *driveFiles) FindFolder(ctx context.Context, name, parentID string) (string, bool, error) {
	q := fmt.Sprintf("name='%s' and '%s' in parents and mimeType='%s' and trashed=false",
		escapeQuery(name), escapeQuery(parentID), folderMIMEType)

	res, err := d.srv.Files.List().
		Q(q).
		Fields("files(id, name)").
		PageSize(1).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", false, err
	}
	if len(res.Files) == 0 {
		return "", false, nil
	}
	return res.Files[0].Id, true, nil
}

func (d *driveFiles) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	f, err := d.srv.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMIMEType,
		Parents:  []string{parentID},
	}).Fields("id, name").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return f.Id, nil
}

func (d *driveFiles) Upload(ctx context.Context, data []byte, name, mimeType, parentID string) (*UploadedFile, error) {
	f, err := d.srv.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{parentID},
	}).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id, name, webViewLink, size, createdTime").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	return &UploadedFile{
		ID:          f.Id,
		Name:        f.Name,
		WebViewLink: f.WebViewLink,
		Size:        f.Size,
		CreatedTime: parseCreatedTime(f.Id, f.CreatedTime),
	}, nil
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}

// parseCreatedTime reads Drive's RFC 3339 timestamp. The upload already
// succeeded, so an unreadable value leaves the time zero.
func parseCreatedTime(fileID, value string) time.Time {
	created, err := time.Parse(time.RFC3339, value)
	if err != nil {
		log.WithField("file_id", fileID).Debugf("[Drive] Unreadable createdTime %q: %v", value, err)
		return time.Time{}
	}
	return created
}
