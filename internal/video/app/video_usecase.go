package app

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"videoboard/internal/video/domain"
	"videoboard/internal/video/repository"
	"videoboard/pkg/database"
	errprocess "videoboard/pkg/err"
	"videoboard/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// presignExpiry how long a direct-upload grant stays valid
const presignExpiry = 60 * time.Second

// streamExpiry how long a playback link stays valid
const streamExpiry = 15 * time.Minute

// OwnerCounter bumps per-user counters; satisfied by the auth usecase
type OwnerCounter interface {
	AddUploadCount(ctx context.Context, userID string) error
	AddDownloadCount(ctx context.Context, userID string) error
}

// VideoUseCase 這裡封裝了對外提供的應用服務
type VideoUseCase interface {
	Upload(ctx context.Context, up domain.UploadVideoReq) (*domain.Video, error)
	FetchPublic(ctx context.Context) ([]domain.Video, error)
	FetchByID(ctx context.Context, id string) (*domain.Video, error)
	FetchByOwner(ctx context.Context, ownerID string) ([]domain.Video, error)
	Update(ctx context.Context, up domain.UpdateVideoReq) (*domain.Video, error)
	Delete(ctx context.Context, id string) error
	Download(ctx context.Context, id string) (*domain.DownloadRes, error)
	StreamURL(ctx context.Context, id string) (string, error)
	TrackView(ctx context.Context, id string) error
	TrackDownload(ctx context.Context, userID string) error
	PresignUpload(ctx context.Context) (*domain.PresignRes, error)
}

type videoUseCase struct {
	minioClient database.MinIOClientRepo
	videoRepo   repository.VideoRepo
	counter     OwnerCounter
}

// NewVideoUseCase create a new VideoUseCase
func NewVideoUseCase(minIO database.MinIOClientRepo,
	repo repository.VideoRepo,
	counter OwnerCounter,
) VideoUseCase {
	return &videoUseCase{
		minioClient: minIO,
		videoRepo:   repo,
		counter:     counter,
	}
}

// 讓測試可以替換檔案系統操作
var (
	createDir = func(path string) error {
		return os.MkdirAll(path, 0755)
	}

	createFile = func(name string) (*os.File, error) {
		return os.Create(name)
	}

	copyFile = func(dst *os.File, src io.Reader) (written int64, err error) {
		return io.Copy(dst, src)
	}
)

// Upload stage the binaries to ./tmp, push them to the bucket, then create
// the metadata record and bump the owner's upload counter. If the metadata
// write fails after the object write, the object is left dangling.
// TODO reconcile dangling objects against the metadata collection
func (s *videoUseCase) Upload(ctx context.Context, up domain.UploadVideoReq) (*domain.Video, error) {
	videoKey, videoURL, err := s.stageAndPut(ctx, "videos", up.FileName, up.File)
	if err != nil {
		return nil, err
	}

	thumbnail := domain.DefaultThumbnail
	if up.Thumb != nil {
		_, thumbURL, err := s.stageAndPut(ctx, "thumbnails", up.ThumbFileName, up.Thumb)
		if err != nil {
			return nil, err
		}
		thumbnail = thumbURL
	}

	title := up.Title
	if title == "" {
		// fall back to the uploaded file's base name
		title = strings.TrimSuffix(filepath.Base(up.FileName), filepath.Ext(up.FileName))
	}
	if title == "" {
		title = domain.DefaultTitle
	}
	description := up.Description
	if description == "" {
		description = domain.DefaultDescription
	}

	video := domain.Video{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		UploadedBy:  up.OwnerID,
		Key:         videoKey,
		Path:        videoURL,
		IsPrivate:   up.IsPrivate,
		Thumbnail:   thumbnail,
	}

	if err := s.videoRepo.Create(ctx, &video); err != nil {
		errMsg := fmt.Sprintf("fileName[%s] create video record failed : %v", up.FileName, err)
		return nil, errprocess.Set(errMsg)
	}

	if err := s.counter.AddUploadCount(ctx, up.OwnerID); err != nil {
		logger.Log.Errorf("bump upload count err :", err)
	}

	return &video, nil
}

// stageAndPut buffer an upload stream to a temp file, then push it to the
// bucket under a generated key
func (s *videoUseCase) stageAndPut(ctx context.Context, prefix, fileName string, src io.Reader) (string, string, error) {
	tmpDir := "./tmp"
	if err := createDir(tmpDir); err != nil {
		errMsg := fmt.Sprintf("fileName[%s] create tmp dir failed : %v", fileName, err)
		return "", "", errprocess.Set(errMsg)
	}

	ext := filepath.Ext(fileName)
	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)

	tempPath := filepath.Join(tmpDir, filepath.Base(objectName))
	tempFile, err := createFile(tempPath)
	if err != nil {
		errMsg := fmt.Sprintf("fileName[%s] create tmp file failed : %v", fileName, err)
		return "", "", errprocess.Set(errMsg)
	}
	defer tempFile.Close()

	if _, err := copyFile(tempFile, src); err != nil {
		errMsg := fmt.Sprintf("fileName[%s] stage file failed : %v", fileName, err)
		return "", "", errprocess.Set(errMsg)
	}

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := s.minioClient.UploadFile(ctx, objectName, tempPath, contentType); err != nil {
		errMsg := fmt.Sprintf("fileName[%s] upload to bucket failed : %v", fileName, err)
		return "", "", errprocess.Set(errMsg)
	}

	if err := os.Remove(tempPath); err != nil {
		logger.Log.Errorf("clean tmp file err :", err)
	}

	return objectName, s.minioClient.ObjectURL(objectName), nil
}

// FetchPublic the public feed
func (s *videoUseCase) FetchPublic(ctx context.Context) ([]domain.Video, error) {
	return s.videoRepo.FindPublic(ctx)
}

// FetchByID get one video
func (s *videoUseCase) FetchByID(ctx context.Context, id string) (*domain.Video, error) {
	return s.videoRepo.GetByID(ctx, id)
}

// FetchByOwner one user's library
func (s *videoUseCase) FetchByOwner(ctx context.Context, ownerID string) ([]domain.Video, error) {
	return s.videoRepo.FindByOwner(ctx, ownerID)
}

// Update overwrite provided fields; replacement binaries swap the object
// key/path, the previous object stays in the bucket
func (s *videoUseCase) Update(ctx context.Context, up domain.UpdateVideoReq) (*domain.Video, error) {
	set := bson.M{}
	if up.Title != nil {
		set["title"] = *up.Title
	}
	if up.Description != nil {
		set["description"] = *up.Description
	}
	if up.IsPrivate != nil {
		set["is_private"] = *up.IsPrivate
	}

	if up.File != nil {
		key, url, err := s.stageAndPut(ctx, "videos", up.FileName, up.File)
		if err != nil {
			return nil, err
		}
		set["key"] = key
		set["path"] = url
	}
	if up.Thumb != nil {
		_, url, err := s.stageAndPut(ctx, "thumbnails", up.ThumbFileName, up.Thumb)
		if err != nil {
			return nil, err
		}
		set["thumbnail"] = url
	}

	return s.videoRepo.Update(ctx, up.ID, set)
}

// Delete remove the metadata record. The underlying object is not removed
// and ownership is not checked here.
// TODO verify the requester owns the video before deleting
func (s *videoUseCase) Delete(ctx context.Context, id string) error {
	return s.videoRepo.Delete(ctx, id)
}

// Download stream the stored object with what the response headers need
func (s *videoUseCase) Download(ctx context.Context, id string) (*domain.DownloadRes, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	content, contentType, err := s.minioClient.GetObject(ctx, video.Key)
	if err != nil {
		errMsg := fmt.Sprintf("videoID[%s] fetch object failed : %v", id, err)
		return nil, errprocess.Set(errMsg)
	}
	if contentType == "" {
		contentType = "video/mp4"
	}

	fileName := video.Title
	if fileName == "" {
		fileName = "video"
	}

	return &domain.DownloadRes{
		Content:     content,
		ContentType: contentType,
		FileName:    fileName + ".mp4",
	}, nil
}

// StreamURL a short-lived presigned link for playing the stored object
// directly from the bucket, without proxying the bytes through the service
func (s *videoUseCase) StreamURL(ctx context.Context, id string) (string, error) {
	video, err := s.videoRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := s.minioClient.PresignGetURL(ctx, video.Key, streamExpiry)
	if err != nil {
		errMsg := fmt.Sprintf("videoID[%s] presign stream failed : %v", id, err)
		return "", errprocess.Set(errMsg)
	}
	return url, nil
}

// TrackView fire-and-forget view counter, unknown ids succeed
func (s *videoUseCase) TrackView(ctx context.Context, id string) error {
	return s.videoRepo.IncViewCount(ctx, id)
}

// TrackDownload fire-and-forget download counter on the user
func (s *videoUseCase) TrackDownload(ctx context.Context, userID string) error {
	return s.counter.AddDownloadCount(ctx, userID)
}

// PresignUpload a short-lived URL scoped to one fresh object key, letting the
// client push the binary straight to the bucket
func (s *videoUseCase) PresignUpload(ctx context.Context) (*domain.PresignRes, error) {
	key := fmt.Sprintf("VideoBoard/%d-%s.bin", time.Now().UnixMilli(), uuid.New().String()[:8])

	url, err := s.minioClient.PresignPutURL(ctx, key, presignExpiry)
	if err != nil {
		errMsg := fmt.Sprintf("key[%s] presign failed : %v", key, err)
		return nil, errprocess.Set(errMsg)
	}

	return &domain.PresignRes{URL: url, Key: key}, nil
}
