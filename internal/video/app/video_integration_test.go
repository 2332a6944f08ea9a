package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"videoboard/internal/video/domain"
	"videoboard/internal/video/repository"
	"videoboard/pkg/database"
	"videoboard/pkg/logger"
	testtool "videoboard/pkg/test_tool"

	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// **測試用的容器**
var mongoContainer testcontainers.Container
var minioContainer testcontainers.Container

// **UseCase**
var videoUsecase VideoUseCase

var (
	minioUser     = "minioadmin"
	minioPassword = "minioadmin"
	minioBucket   = "videoboard-test"
)

// noopCounter 整合測試不驗證使用者計數
type noopCounter struct{}

func (noopCounter) AddUploadCount(ctx context.Context, userID string) error   { return nil }
func (noopCounter) AddDownloadCount(ctx context.Context, userID string) error { return nil }

// **TestMain - 初始化測試環境**
func TestMain(m *testing.M) {
	ctx := context.Background()
	logger.SetNewNop()

	// **啟動 MongoDB**
	mongoContainer, mongoHost, mongoPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image: "mongo:7",
		Env: map[string]string{
			"MONGO_INITDB_ROOT_USERNAME": "test",
			"MONGO_INITDB_ROOT_PASSWORD": "test",
		},
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start MongoDB: %v", err)
	}
	fmt.Printf("✅ MongoDB running at %s:%s\n", mongoHost, mongoPort)

	// **啟動 MinIO**
	minioContainer, minioHost, minioPort, err := testtool.SetupContainer(ctx, testcontainers.ContainerRequest{
		Image: "minio/minio:latest",
		Cmd:   []string{"server", "/data"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp"),
	})
	if err != nil {
		log.Fatalf("❌ Failed to start MinIO: %v", err)
	}
	fmt.Printf("✅ MinIO running at %s:%s\n", minioHost, minioPort)

	// **初始化資料庫**
	mongoDB, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    fmt.Sprintf("mongodb://test:test@%s:%s", mongoHost, mongoPort),
		RetryCount:    5,
		RetryInterval: 5 * time.Second,
	}, "videoboard_test")
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}

	// **初始化 MinIO 客戶端**
	minioClient, err := database.NewMinioClient(
		fmt.Sprintf("%s:%s", minioHost, minioPort),
		minioUser, minioPassword, minioBucket, false,
	)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MinIO: %v", err)
	}

	videoRepo := repository.NewVideoRepo(mongoDB.Database)
	videoUsecase = NewVideoUseCase(minioClient, videoRepo, noopCounter{})

	// **執行測試**
	code := m.Run()

	// **停止測試容器**
	_ = mongoDB.Close(ctx)
	_ = mongoContainer.Terminate(ctx)
	_ = minioContainer.Terminate(ctx)
	_ = os.RemoveAll("./tmp")

	os.Exit(code)
}

func TestIntegration_UploadAndFetch(t *testing.T) {
	ctx := context.Background()

	video, err := videoUsecase.Upload(ctx, domain.UploadVideoReq{
		OwnerID:     "owner1",
		Title:       "Integration Clip",
		Description: "uploaded from the integration suite",
		FileName:    "clip.mp4",
		File:        bytes.NewReader([]byte("fake mp4 payload")),
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, video.ID)
	assert.True(t, strings.HasPrefix(video.Key, "videos/"))
	assert.Equal(t, domain.DefaultThumbnail, video.Thumbnail)

	got, err := videoUsecase.FetchByID(ctx, video.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Integration Clip", got.Title)

	// 公開影片要出現在 feed，owner 的清單也要有
	feed, err := videoUsecase.FetchPublic(ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, feed)

	mine, err := videoUsecase.FetchByOwner(ctx, "owner1")
	assert.NoError(t, err)
	assert.NotEmpty(t, mine)
}

func TestIntegration_PrivateVideoHiddenFromFeed(t *testing.T) {
	ctx := context.Background()

	video, err := videoUsecase.Upload(ctx, domain.UploadVideoReq{
		OwnerID:   "owner2",
		Title:     "Private Clip",
		IsPrivate: true,
		FileName:  "private.mp4",
		File:      bytes.NewReader([]byte("fake mp4 payload")),
	})
	assert.NoError(t, err)

	feed, err := videoUsecase.FetchPublic(ctx)
	assert.NoError(t, err)
	for _, v := range feed {
		assert.NotEqual(t, video.ID, v.ID, "private video must not show in the public feed")
	}

	mine, err := videoUsecase.FetchByOwner(ctx, "owner2")
	assert.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestIntegration_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()

	video, err := videoUsecase.Upload(ctx, domain.UploadVideoReq{
		OwnerID:  "owner3",
		Title:    "Before",
		FileName: "before.mp4",
		File:     bytes.NewReader([]byte("fake mp4 payload")),
	})
	assert.NoError(t, err)

	title := "After"
	private := true
	updated, err := videoUsecase.Update(ctx, domain.UpdateVideoReq{
		ID:        video.ID,
		Title:     &title,
		IsPrivate: &private,
	})
	assert.NoError(t, err)
	assert.Equal(t, "After", updated.Title)
	assert.True(t, updated.IsPrivate)

	assert.NoError(t, videoUsecase.Delete(ctx, video.ID))

	_, err = videoUsecase.FetchByID(ctx, video.ID)
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)

	// 再刪一次要回 not found
	err = videoUsecase.Delete(ctx, video.ID)
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)
}

func TestIntegration_DownloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	payload := []byte("round trip payload")

	video, err := videoUsecase.Upload(ctx, domain.UploadVideoReq{
		OwnerID:  "owner4",
		Title:    "Round Trip",
		FileName: "roundtrip.mp4",
		File:     bytes.NewReader(payload),
	})
	assert.NoError(t, err)

	res, err := videoUsecase.Download(ctx, video.ID)
	assert.NoError(t, err)
	defer res.Content.Close()

	assert.Equal(t, "Round Trip.mp4", res.FileName)
	body, err := io.ReadAll(res.Content)
	assert.NoError(t, err)
	assert.Equal(t, payload, body)
}

func TestIntegration_TrackViewAndPresign(t *testing.T) {
	ctx := context.Background()

	video, err := videoUsecase.Upload(ctx, domain.UploadVideoReq{
		OwnerID:  "owner5",
		Title:    "Counted",
		FileName: "counted.mp4",
		File:     bytes.NewReader([]byte("fake mp4 payload")),
	})
	assert.NoError(t, err)

	assert.NoError(t, videoUsecase.TrackView(ctx, video.ID))
	assert.NoError(t, videoUsecase.TrackView(ctx, video.ID))

	got, err := videoUsecase.FetchByID(ctx, video.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)

	// 不存在的 id 也要成功
	assert.NoError(t, videoUsecase.TrackView(ctx, "no-such-id"))

	res, err := videoUsecase.PresignUpload(ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, res.URL)
	assert.True(t, strings.HasPrefix(res.Key, "VideoBoard/"))

	// 播放連結要指向已上傳的 object
	streamURL, err := videoUsecase.StreamURL(ctx, video.ID)
	assert.NoError(t, err)
	assert.Contains(t, streamURL, video.Key)

	_, err = videoUsecase.StreamURL(ctx, "no-such-id")
	assert.ErrorIs(t, err, domain.ErrVideoNotFound)
}
