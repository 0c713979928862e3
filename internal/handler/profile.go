package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"dayflow/internal/profile"
)

var profileErrors = []errorMapping{
	{profile.ErrNotFound, http.StatusBadRequest, "There is no profile for this user"},
	{profile.ErrEmptyUpload, http.StatusBadRequest, "avatar file is required"},
	{profile.ErrUploadTooBig, http.StatusBadRequest, "avatar file is too large"},
	{profile.ErrUploadsOff, http.StatusServiceUnavailable, "image storage not configured"},
	{profile.ErrUploadFailed, http.StatusBadGateway, "image upload failed"},
}

// ---------- Profile ----------

func (h *Handler) MyProfile(c *gin.Context) {
	p, err := h.profiles.Me(c.Request.Context(), owner(c))
	if err != nil {
		fail(c, err, profileErrors...)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var patch profile.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, err := h.profiles.Update(c.Request.Context(), owner(c), patch)
	if err != nil {
		fail(c, err, profileErrors...)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UploadAvatar expects a multipart form with an "avatar" file.
func (h *Handler) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		badRequest(c, "avatar file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, profile.MaxAvatarBytes+1))
	if err != nil {
		fail(c, err)
		return
	}
	p, err := h.profiles.SetAvatar(c.Request.Context(), owner(c), data, header.Filename)
	if err != nil {
		fail(c, err, profileErrors...)
		return
	}
	c.JSON(http.StatusOK, p)
}
