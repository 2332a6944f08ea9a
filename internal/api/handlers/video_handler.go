package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"strings"

	userapp "videoboard/internal/user/app"
	videoapp "videoboard/internal/video/app"
	"videoboard/internal/video/domain"
	"videoboard/pkg/logger"
	"videoboard/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// VideoHandler 處理影片相關的 HTTP 請求
type VideoHandler struct {
	Videos videoapp.VideoUseCase
	Auth   userapp.AuthUseCase
}

// NewVideoHandler create a new VideoHandler
func NewVideoHandler(videos videoapp.VideoUseCase, auth userapp.AuthUseCase) *VideoHandler {
	return &VideoHandler{Videos: videos, Auth: auth}
}

// FetchVideos 取得影片列表
// @Summary List videos
// @Description With a valid bearer token this is the caller's own library,
// otherwise the public feed
// @Tags Videos
// @Produce json
// @Success 200 {object} string "videos"
// @Router /videos [get]
func (h *VideoHandler) FetchVideos(c *fiber.Ctx) error {
	// one path serves both lists: the bearer token decides which
	if bearer := bearerFrom(c); bearer != "" {
		principal, err := h.Auth.Authorize(c.Context(), bearer)
		if err == nil {
			videos, err := h.Videos.FetchByOwner(c.Context(), principal.UserID)
			if err != nil {
				return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
			}
			return respond(c, fiber.StatusOK, true, "Found your videos", fiber.Map{"videos": videos})
		}
	}

	videos, err := h.Videos.FetchPublic(c.Context())
	if err != nil {
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}
	return respond(c, fiber.StatusOK, true, "Fetched videos succesfully", fiber.Map{"videos": videos})
}

// FetchVideoByID 取得單一影片
// @Summary Get one video by id
// @Tags Videos
// @Produce json
// @Param id path string true "Video id"
// @Success 200 {object} string "video"
// @Failure 404 {object} string "not found"
// @Router /video/{id} [get]
func (h *VideoHandler) FetchVideoByID(c *fiber.Ctx) error {
	video, err := h.Videos.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			return respond(c, fiber.StatusNotFound, false, "Video not found", nil)
		}
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}
	return respond(c, fiber.StatusOK, true, "Found your video", fiber.Map{"video": video})
}

// Upload 上傳影片與縮圖
// @Summary Upload a video with an optional thumbnail
// @Tags Videos
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Success 200 {object} string "video uploaded"
// @Failure 400 {object} string "no video file"
// @Router /videos [post]
func (h *VideoHandler) Upload(c *fiber.Ctx) error {
	principal := middlewares.PrincipalFrom(c)
	if principal == nil {
		return respond(c, fiber.StatusBadRequest, false, "Please sign in to continue", nil)
	}

	videoHeader, err := c.FormFile("video")
	if err != nil {
		return respond(c, fiber.StatusBadRequest, false, "Upload failed", nil)
	}

	videoFile, err := videoHeader.Open()
	if err != nil {
		return respond(c, fiber.StatusBadRequest, false, "Upload failed", nil)
	}
	defer videoFile.Close()

	up := domain.UploadVideoReq{
		OwnerID:     principal.UserID,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		IsPrivate:   parseBool(c.FormValue("isPrivate")),
		FileName:    videoHeader.Filename,
		File:        videoFile,
	}

	var thumbFile multipart.File
	if thumbHeader, err := c.FormFile("thumbnail"); err == nil {
		thumbFile, err = thumbHeader.Open()
		if err != nil {
			return respond(c, fiber.StatusBadRequest, false, "Upload failed", nil)
		}
		defer thumbFile.Close()
		up.ThumbFileName = thumbHeader.Filename
		up.Thumb = thumbFile
	}

	logger.Log.Debug("Upload request",
		zap.String("owner", principal.UserID),
		zap.String("file", videoHeader.Filename))

	video, err := h.Videos.Upload(c.Context(), up)
	if err != nil {
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}

	return respond(c, fiber.StatusOK, true, "Video uploaded successfully", fiber.Map{"video": video})
}

// UpdateVideo 更新影片資料
// @Summary Update video fields, optionally replacing the binaries
// @Tags Videos
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video id"
// @Success 200 {object} string "video updated"
// @Failure 404 {object} string "not found"
// @Router /video/{id} [put]
func (h *VideoHandler) UpdateVideo(c *fiber.Ctx) error {
	up := domain.UpdateVideoReq{ID: c.Params("id")}

	if v := c.FormValue("title"); v != "" {
		up.Title = &v
	}
	if v := c.FormValue("description"); v != "" {
		up.Description = &v
	}
	if v := c.FormValue("isPrivate"); v != "" {
		b := parseBool(v)
		up.IsPrivate = &b
	}

	if videoHeader, err := c.FormFile("video"); err == nil {
		videoFile, err := videoHeader.Open()
		if err != nil {
			return respond(c, fiber.StatusBadRequest, false, "Upload failed", nil)
		}
		defer videoFile.Close()
		up.FileName = videoHeader.Filename
		up.File = videoFile
	}
	if thumbHeader, err := c.FormFile("thumbnail"); err == nil {
		thumbFile, err := thumbHeader.Open()
		if err != nil {
			return respond(c, fiber.StatusBadRequest, false, "Upload failed", nil)
		}
		defer thumbFile.Close()
		up.ThumbFileName = thumbHeader.Filename
		up.Thumb = thumbFile
	}

	video, err := h.Videos.Update(c.Context(), up)
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			return respond(c, fiber.StatusNotFound, false, "Video not found", nil)
		}
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}

	return respond(c, fiber.StatusOK, true, "Video updated succesfully", fiber.Map{"video": video})
}

// DeleteVideo 刪除影片
// @Summary Delete a video by id
// @Tags Videos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Video id"
// @Success 200 {object} string "video deleted"
// @Failure 404 {object} string "not found"
// @Router /video/{id} [delete]
func (h *VideoHandler) DeleteVideo(c *fiber.Ctx) error {
	if err := h.Videos.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			return respond(c, fiber.StatusNotFound, false, "video to be deleted does not exist", nil)
		}
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}
	return respond(c, fiber.StatusOK, true, "Video deleted succsfully", nil)
}

// Download 下載影片
// @Summary Stream the stored binary as an attachment
// @Tags Videos
// @Param id path string true "Video id"
// @Success 200 {file} file "binary stream"
// @Failure 404 {object} string "not found"
// @Router /video/{id}/download [get]
func (h *VideoHandler) Download(c *fiber.Ctx) error {
	res, err := h.Videos.Download(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			return respond(c, fiber.StatusNotFound, false, "video not found", nil)
		}
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}

	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, res.FileName))
	c.Set(fiber.HeaderContentType, res.ContentType)
	return c.SendStream(res.Content)
}

// StreamVideo 取得播放連結
// @Summary Presign a playback link
// @Description Returns a short-lived URL serving the binary straight from storage
// @Tags Videos
// @Produce json
// @Param id path string true "Video id"
// @Success 200 {object} string "url"
// @Failure 404 {object} string "not found"
// @Router /video/{id}/stream-url [get]
func (h *VideoHandler) StreamVideo(c *fiber.Ctx) error {
	url, err := h.Videos.StreamURL(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrVideoNotFound) {
			return respond(c, fiber.StatusNotFound, false, "Video not found", nil)
		}
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}
	return respond(c, fiber.StatusOK, true, "Found your video", fiber.Map{"url": url})
}

// TrackView 記錄觀看次數
// @Summary Bump the view counter
// @Description Always succeeds, even for unknown ids
// @Tags Videos
// @Param id path string true "Video id"
// @Success 204 {object} string ""
// @Router /video/{id}/track-view [post]
func (h *VideoHandler) TrackView(c *fiber.Ctx) error {
	if id := c.Params("id"); id != "" {
		if err := h.Videos.TrackView(c.Context(), id); err != nil {
			logger.Log.Errorf("track view err :", err)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// TrackDownload 記錄下載次數
// @Summary Bump the caller's download counter
// @Description Always succeeds, even for unknown users
// @Tags Videos
// @Success 204 {object} string ""
// @Router /video/{id}/track-download [post]
func (h *VideoHandler) TrackDownload(c *fiber.Ctx) error {
	type request struct {
		UserID string `json:"userId"`
	}

	var req request
	if err := c.BodyParser(&req); err == nil && req.UserID != "" {
		if err := h.Videos.TrackDownload(c.Context(), req.UserID); err != nil {
			logger.Log.Errorf("track download err :", err)
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Presign 取得直傳 URL
// @Summary Presign a direct upload
// @Description Returns a short-lived URL scoped to one fresh object key
// @Tags Videos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} string "url and key"
// @Router /upload/presign [get]
func (h *VideoHandler) Presign(c *fiber.Ctx) error {
	res, err := h.Videos.PresignUpload(c.Context())
	if err != nil {
		return respond(c, fiber.StatusInternalServerError, false, "Internal server error", nil)
	}
	return c.JSON(res)
}

func bearerFrom(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}
